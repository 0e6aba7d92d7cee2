package statement

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/innocence-protocol/innocence/pkg/merkle"
)

// BalanceWitness is the private input of the Balance statement. Proof.Leaf
// is the balance leaf as stored in the tree.
type BalanceWitness struct {
	Secret        common.Hash
	Nullifier     common.Hash
	ActualBalance uint64
	Proof         merkle.Proof
}

// BalanceClaim is the public input of the Balance statement.
type BalanceClaim struct {
	Commitment common.Hash
	MerkleRoot common.Hash
	MinBalance uint64
	AssetID    uint64
}

// BalanceOutput is the public output of the Balance statement.
type BalanceOutput struct {
	Commitment common.Hash
	MerkleRoot common.Hash
	MinBalance uint64
	AssetID    uint64
}

// Kind implements Output.
func (BalanceOutput) Kind() Kind { return KindBalance }

// Balance proves the committed position holds at least MinBalance of AssetID
// and that its balance leaf is included under MerkleRoot.
func Balance(w BalanceWitness, c BalanceClaim) (BalanceOutput, error) {
	if err := checkCommitment(w.Secret, w.Nullifier, c.Commitment); err != nil {
		return BalanceOutput{}, err
	}

	if w.ActualBalance < c.MinBalance {
		return BalanceOutput{}, Reject(ConstraintViolation, "min_balance",
			"balance %d below minimum %d", w.ActualBalance, c.MinBalance)
	}

	leaf := BalanceLeaf(c.Commitment, c.AssetID, w.ActualBalance)
	if leaf != w.Proof.Leaf {
		return BalanceOutput{}, Reject(WitnessMismatch, "balance_leaf",
			"computed %s, supplied %s", leaf.Hex(), w.Proof.Leaf.Hex())
	}

	if len(w.Proof.Path) != len(w.Proof.Indices) {
		return BalanceOutput{}, Reject(StructuralError, "merkle_proof",
			"path has %d siblings, indices has %d", len(w.Proof.Path), len(w.Proof.Indices))
	}
	if !w.Proof.Verify(c.MerkleRoot) {
		return BalanceOutput{}, Reject(WitnessMismatch, "merkle_root",
			"leaf not included under %s", c.MerkleRoot.Hex())
	}

	return BalanceOutput{
		Commitment: c.Commitment,
		MerkleRoot: c.MerkleRoot,
		MinBalance: c.MinBalance,
		AssetID:    c.AssetID,
	}, nil
}
