// Package digest is the single hash primitive shared by commitments, balance
// leaves, Merkle nodes and sanctions leaves. Every component hashes through
// Sum so that values recomputed inside a statement match the values produced
// outside it.
package digest

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/common"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// Sum returns SHA-256 over the concatenation of parts, in order, with no
// separators or length prefixes between them.
func Sum(parts ...[]byte) common.Hash {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}
