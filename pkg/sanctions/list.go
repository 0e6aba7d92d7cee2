// Package sanctions maintains the sanctioned address list behind the
// Innocence statement.
//
// A List is an immutable, sorted snapshot committed to by a Merkle root.
// Leaves are Hash(address) in ascending address order, bracketed by the
// all-zero and all-0xff sentinel addresses, so that every unlisted address
// falls strictly between two adjacent leaves. The neighbouring pair and
// their inclusion proofs form an exclusion proof against the root.
package sanctions

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/innocence-protocol/innocence/pkg/digest"
	"github.com/innocence-protocol/innocence/pkg/merkle"
)

var (
	// ErrSanctioned is returned when an exclusion proof is requested for a
	// listed address.
	ErrSanctioned = errors.New("sanctions: address is sanctioned")

	// ErrReservedAddress is returned for the sentinel addresses, which can
	// neither be listed nor proven excluded.
	ErrReservedAddress = errors.New("sanctions: reserved sentinel address")

	// ErrInvalidExclusion is returned when an exclusion proof does not hold.
	ErrInvalidExclusion = errors.New("sanctions: invalid exclusion proof")
)

var (
	minSentinel = common.Address{}
	maxSentinel = common.BytesToAddress(bytes.Repeat([]byte{0xff}, common.AddressLength))
)

// DefaultAddresses is the deny-list the innocence statement shipped with.
var DefaultAddresses = []common.Address{
	common.HexToAddress("0x8589427373D6D84E98730D7795D8f6f8731FDA16"),
	common.HexToAddress("0x722122dF12D4e14e13Ac3b6895a86e84145b6967"),
	common.HexToAddress("0xDD4c48C0B24039969fC16D1cdF626eaB821d3384"),
}

// OracleAddresses is the wider list served by the sanctions oracle.
var OracleAddresses = []common.Address{
	// Tornado Cash
	common.HexToAddress("0x8589427373D6D84E98730D7795D8f6f8731FDA16"),
	common.HexToAddress("0x722122dF12D4e14e13Ac3b6895a86e84145b6967"),
	common.HexToAddress("0xDD4c48C0B24039969fC16D1cdF626eaB821d3384"),
	common.HexToAddress("0xD4B88Df4D29F5CedD6857912842cff3b20C8Cfa3"),
	common.HexToAddress("0x910Cbd523D972eb0a6f4cAe4618aD62622b39DbF"),
	common.HexToAddress("0xA160cdAB225685dA1d56aa342Ad8841c3b53f291"),
	// Lazarus Group
	common.HexToAddress("0x098B716B8Aaf21512996dC57EB0615e2383E2f96"),
	common.HexToAddress("0xa0e1c89Ef1a489c9C7dE96311eD5Ce5D32c20E4B"),
	common.HexToAddress("0x3Cffd56B47B7b41c56258D9C7731ABaDc360E073"),
	common.HexToAddress("0x53b6936513e738f44FB50d2b9476730C0Ab3Bfc1"),
}

// List is an immutable sanctions snapshot.
type List struct {
	// entries holds the sentinels and the sorted, de-duplicated addresses.
	entries []common.Address
	tree    *merkle.Tree
}

// NewList builds a snapshot from addrs. Duplicates are dropped.
func NewList(addrs []common.Address) (*List, error) {
	sorted := make([]common.Address, 0, len(addrs))
	seen := make(map[common.Address]struct{}, len(addrs))
	for _, a := range addrs {
		if a == minSentinel || a == maxSentinel {
			return nil, fmt.Errorf("%w: %s", ErrReservedAddress, a.Hex())
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		sorted = append(sorted, a)
	}
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	entries := make([]common.Address, 0, len(sorted)+2)
	entries = append(entries, minSentinel)
	entries = append(entries, sorted...)
	entries = append(entries, maxSentinel)

	leaves := make([]common.Hash, len(entries))
	for i, a := range entries {
		leaves[i] = Leaf(a)
	}
	tree, err := merkle.NewTreeWithPadding(leaves, Leaf(maxSentinel))
	if err != nil {
		return nil, err
	}
	return &List{entries: entries, tree: tree}, nil
}

// DefaultList returns the snapshot of DefaultAddresses.
func DefaultList() *List {
	l, err := NewList(DefaultAddresses)
	if err != nil {
		panic(err)
	}
	return l
}

// Leaf returns the tree leaf for addr.
func Leaf(addr common.Address) common.Hash {
	return digest.Sum(addr[:])
}

// Root returns the Merkle root identifying this snapshot.
func (l *List) Root() common.Hash {
	return l.tree.Root()
}

// Len returns the number of sanctioned addresses.
func (l *List) Len() int {
	return len(l.entries) - 2
}

// Addresses returns the sanctioned addresses in ascending order.
func (l *List) Addresses() []common.Address {
	out := make([]common.Address, l.Len())
	copy(out, l.entries[1:len(l.entries)-1])
	return out
}

// Contains reports whether addr is sanctioned.
func (l *List) Contains(addr common.Address) bool {
	if addr == minSentinel || addr == maxSentinel {
		return false
	}
	i := l.search(addr)
	return i < len(l.entries) && l.entries[i] == addr
}

// Status implements statement.SanctionsRegistry.
func (l *List) Status(addr common.Address) (bool, common.Hash) {
	return l.Contains(addr), l.Root()
}

// InclusionProof proves that addr is on the list.
func (l *List) InclusionProof(addr common.Address) (merkle.Proof, error) {
	if !l.Contains(addr) {
		return merkle.Proof{}, fmt.Errorf("sanctions: %s is not listed", addr.Hex())
	}
	return l.tree.Proof(l.search(addr))
}

// ProveExclusion returns the neighbours of addr with their inclusion proofs.
func (l *List) ProveExclusion(addr common.Address) (ExclusionProof, error) {
	if addr == minSentinel || addr == maxSentinel {
		return ExclusionProof{}, fmt.Errorf("%w: %s", ErrReservedAddress, addr.Hex())
	}
	i := l.search(addr)
	if l.entries[i] == addr {
		return ExclusionProof{}, fmt.Errorf("%w: %s", ErrSanctioned, addr.Hex())
	}
	lowProof, err := l.tree.Proof(i - 1)
	if err != nil {
		return ExclusionProof{}, err
	}
	highProof, err := l.tree.Proof(i)
	if err != nil {
		return ExclusionProof{}, err
	}
	return ExclusionProof{
		Low:       l.entries[i-1],
		High:      l.entries[i],
		LowProof:  lowProof,
		HighProof: highProof,
	}, nil
}

// with returns a new snapshot with addr added.
func (l *List) with(addr common.Address) (*List, error) {
	return NewList(append(l.Addresses(), addr))
}

// without returns a new snapshot with addr removed.
func (l *List) without(addr common.Address) (*List, error) {
	kept := make([]common.Address, 0, l.Len())
	for _, a := range l.Addresses() {
		if a != addr {
			kept = append(kept, a)
		}
	}
	return NewList(kept)
}

// search returns the index of the first entry >= addr. The max sentinel
// bounds the result.
func (l *List) search(addr common.Address) int {
	return sort.Search(len(l.entries), func(i int) bool { return !less(l.entries[i], addr) })
}

func less(a, b common.Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// ExclusionProof shows that an address lies strictly between two adjacent
// leaves of a sanctions tree.
type ExclusionProof struct {
	Low       common.Address `json:"low"`
	High      common.Address `json:"high"`
	LowProof  merkle.Proof   `json:"lowProof"`
	HighProof merkle.Proof   `json:"highProof"`
}

// VerifyExclusion checks that proof shows addr is absent from the list
// committed to by root.
func VerifyExclusion(root common.Hash, addr common.Address, proof ExclusionProof) error {
	if !less(proof.Low, addr) || !less(addr, proof.High) {
		return fmt.Errorf("%w: %s is not between %s and %s", ErrInvalidExclusion, addr.Hex(), proof.Low.Hex(), proof.High.Hex())
	}
	if proof.LowProof.Leaf != Leaf(proof.Low) || proof.HighProof.Leaf != Leaf(proof.High) {
		return fmt.Errorf("%w: neighbour leaves do not match neighbours", ErrInvalidExclusion)
	}
	if proof.LowProof.Depth() != proof.HighProof.Depth() {
		return fmt.Errorf("%w: proofs have different depths", ErrInvalidExclusion)
	}
	if proof.HighProof.Index() != proof.LowProof.Index()+1 {
		return fmt.Errorf("%w: neighbours are not adjacent", ErrInvalidExclusion)
	}
	if err := proof.LowProof.Check(root); err != nil {
		return fmt.Errorf("%w: low neighbour: %v", ErrInvalidExclusion, err)
	}
	if err := proof.HighProof.Check(root); err != nil {
		return fmt.Errorf("%w: high neighbour: %v", ErrInvalidExclusion, err)
	}
	return nil
}
