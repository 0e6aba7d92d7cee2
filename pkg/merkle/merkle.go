// Package merkle verifies membership in binary SHA-256 Merkle trees and
// builds such trees for callers that maintain them.
//
// Nodes are computed as digest.Sum(left || right). A proof lists siblings
// from the leaf level up to the root together with one direction bit per
// level: false when the running node is the left child, true when it is the
// right child.
package merkle

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/innocence-protocol/innocence/pkg/digest"
)

var (
	// ErrLengthMismatch is returned when a proof's path and indices differ in length.
	ErrLengthMismatch = errors.New("merkle: path and indices length mismatch")

	// ErrInvalidProof is returned when a proof does not reconstruct the root.
	ErrInvalidProof = errors.New("merkle: proof does not reconstruct root")
)

// Proof is an inclusion proof for a single leaf.
type Proof struct {
	Leaf    common.Hash   `json:"leaf"`
	Path    []common.Hash `json:"path"`
	Indices []bool        `json:"indices"`
}

// Verify reports whether leaf hashes up to root along path. A path and
// indices of different lengths never verify; an empty path verifies iff
// leaf equals root.
func Verify(leaf common.Hash, path []common.Hash, indices []bool, root common.Hash) bool {
	if len(path) != len(indices) {
		return false
	}
	current := leaf
	for i, sibling := range path {
		if indices[i] {
			current = digest.Sum(sibling[:], current[:])
		} else {
			current = digest.Sum(current[:], sibling[:])
		}
	}
	return current == root
}

// Verify reports whether the proof reconstructs root.
func (p Proof) Verify(root common.Hash) bool {
	return Verify(p.Leaf, p.Path, p.Indices, root)
}

// Check is like Verify but distinguishes a malformed proof from a wrong one.
func (p Proof) Check(root common.Hash) error {
	if len(p.Path) != len(p.Indices) {
		return ErrLengthMismatch
	}
	if !p.Verify(root) {
		return ErrInvalidProof
	}
	return nil
}

// Depth returns the number of levels between the leaf and the root.
func (p Proof) Depth() int {
	return len(p.Path)
}

// Index returns the leaf position implied by the direction bits.
func (p Proof) Index() uint64 {
	var idx uint64
	for i, right := range p.Indices {
		if right {
			idx |= 1 << uint(i)
		}
	}
	return idx
}
