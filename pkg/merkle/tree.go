package merkle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/innocence-protocol/innocence/pkg/digest"
)

var (
	// ErrEmptyTree is returned when a tree is built from no leaves.
	ErrEmptyTree = errors.New("merkle: cannot build tree with no leaves")

	// ErrIndexOutOfRange is returned when a proof is requested for a missing leaf.
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")
)

// Tree is a complete binary tree. Levels[0] holds the (padded) leaves and
// the last level holds the root.
type Tree struct {
	levels [][]common.Hash
	count  int
}

// NewTree builds a tree over leaves, padding with zero leaves up to the next
// power of two.
func NewTree(leaves []common.Hash) (*Tree, error) {
	return NewTreeWithPadding(leaves, common.Hash{})
}

// NewTreeWithPadding builds a tree over leaves, padding with pad up to the
// next power of two.
func NewTreeWithPadding(leaves []common.Hash, pad common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	width := nextPowerOfTwo(len(leaves))
	level := make([]common.Hash, width)
	copy(level, leaves)
	for i := len(leaves); i < width; i++ {
		level[i] = pad
	}

	t := &Tree{count: len(leaves)}
	t.levels = append(t.levels, level)
	for len(level) > 1 {
		next := make([]common.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = digest.Sum(level[i][:], level[i+1][:])
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t, nil
}

// Root returns the tree root.
func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Len returns the number of leaves supplied to the constructor, excluding padding.
func (t *Tree) Len() int {
	return t.count
}

// Width returns the number of leaves including padding.
func (t *Tree) Width() int {
	return len(t.levels[0])
}

// Leaf returns the leaf at index, padding included.
func (t *Tree) Leaf(index int) (common.Hash, error) {
	if index < 0 || index >= t.Width() {
		return common.Hash{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return t.levels[0][index], nil
}

// Proof returns the inclusion proof for the leaf at index. Padding leaves
// are addressable so that neighbour proofs can reach them.
func (t *Tree) Proof(index int) (Proof, error) {
	leaf, err := t.Leaf(index)
	if err != nil {
		return Proof{}, err
	}
	p := Proof{
		Leaf:    leaf,
		Path:    make([]common.Hash, 0, t.Depth()),
		Indices: make([]bool, 0, t.Depth()),
	}
	for level := 0; level < t.Depth(); level++ {
		right := index%2 == 1
		sibling := index + 1
		if right {
			sibling = index - 1
		}
		p.Path = append(p.Path, t.levels[level][sibling])
		p.Indices = append(p.Indices, right)
		index /= 2
	}
	return p, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
