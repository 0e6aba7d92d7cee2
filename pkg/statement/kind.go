package statement

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a statement.
type Kind string

const (
	KindOwnership  Kind = "ownership"
	KindBalance    Kind = "balance"
	KindCompliance Kind = "compliance"
	KindInnocence  Kind = "innocence"
	KindTrade      Kind = "trade"
)

// ErrUnknownKind is returned when parsing an unsupported statement name.
var ErrUnknownKind = errors.New("statement: unknown statement kind")

// Kinds lists all statements in a stable order.
var Kinds = []Kind{KindOwnership, KindBalance, KindCompliance, KindInnocence, KindTrade}

// ParseKind parses a statement name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	return string(k)
}

// Output is implemented by the public output record of every statement.
type Output interface {
	Kind() Kind
}
