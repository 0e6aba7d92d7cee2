package statement

import "github.com/ethereum/go-ethereum/common"

// SanctionsRegistry answers sanctions lookups. Status must report the
// sanctioned flag and the root of the same registry state.
type SanctionsRegistry interface {
	Status(addr common.Address) (sanctioned bool, root common.Hash)
}

// InnocenceClaim is the public input of the Innocence statement. It has no
// private counterpart.
type InnocenceClaim struct {
	Depositor     common.Address
	SanctionsRoot common.Hash
	Timestamp     uint64
}

// InnocenceOutput is the public output of the Innocence statement.
type InnocenceOutput struct {
	Depositor     common.Address
	SanctionsRoot common.Hash
	Timestamp     uint64
	IsInnocent    bool
}

// Kind implements Output.
func (InnocenceOutput) Kind() Kind { return KindInnocence }

// Innocence evaluates the depositor against the registry. The claimed root
// must identify the registry state used for the lookup. A sanctioned
// depositor is not a rejection; the output reports IsInnocent=false.
func Innocence(c InnocenceClaim, registry SanctionsRegistry) (InnocenceOutput, error) {
	if registry == nil {
		return InnocenceOutput{}, Reject(StructuralError, "sanctions_registry", "no registry configured")
	}
	sanctioned, root := registry.Status(c.Depositor)
	if root != c.SanctionsRoot {
		return InnocenceOutput{}, Reject(WitnessMismatch, "sanctions_root",
			"registry root is %s, claim says %s", root.Hex(), c.SanctionsRoot.Hex())
	}
	return InnocenceOutput{
		Depositor:     c.Depositor,
		SanctionsRoot: c.SanctionsRoot,
		Timestamp:     c.Timestamp,
		IsInnocent:    !sanctioned,
	}, nil
}
