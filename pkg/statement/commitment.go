package statement

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/innocence-protocol/innocence/pkg/digest"
)

// Commit returns the commitment Hash(secret || nullifier).
func Commit(secret, nullifier common.Hash) common.Hash {
	return digest.Sum(secret[:], nullifier[:])
}

// NullifierHash returns Hash(nullifier), the value revealed to prevent a
// position from being spent twice.
func NullifierHash(nullifier common.Hash) common.Hash {
	return digest.Sum(nullifier[:])
}

// BalanceLeaf returns the balance tree leaf
// Hash(commitment || LE64(assetID) || LE64(balance)).
func BalanceLeaf(commitment common.Hash, assetID, balance uint64) common.Hash {
	var asset, amount [8]byte
	binary.LittleEndian.PutUint64(asset[:], assetID)
	binary.LittleEndian.PutUint64(amount[:], balance)
	return digest.Sum(commitment[:], asset[:], amount[:])
}
