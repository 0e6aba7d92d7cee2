// Package notes manages the private half of a commitment: the secret and
// nullifier a holder needs to satisfy any commitment-bound statement.
package notes

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"github.com/innocence-protocol/innocence/pkg/statement"
)

// Note is a deposit note.
type Note struct {
	Secret    common.Hash `json:"secret"`
	Nullifier common.Hash `json:"nullifier"`
	AssetID   uint64      `json:"asset_id"`
	Balance   uint64      `json:"balance"`
	CreatedAt time.Time   `json:"created_at"`
}

// New generates a note with a random secret and nullifier.
func New(assetID, balance uint64) (*Note, error) {
	n := &Note{AssetID: assetID, Balance: balance, CreatedAt: time.Now().UTC()}
	if _, err := io.ReadFull(rand.Reader, n.Secret[:]); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, n.Nullifier[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nullifier: %w", err)
	}
	return n, nil
}

// Commitment returns Hash(secret || nullifier).
func (n *Note) Commitment() common.Hash {
	return statement.Commit(n.Secret, n.Nullifier)
}

// NullifierHash returns Hash(nullifier).
func (n *Note) NullifierHash() common.Hash {
	return statement.NullifierHash(n.Nullifier)
}

// BalanceLeaf returns the note's leaf in a balance tree.
func (n *Note) BalanceLeaf() common.Hash {
	return statement.BalanceLeaf(n.Commitment(), n.AssetID, n.Balance)
}

// ID is the base58 encoding of the commitment.
func (n *Note) ID() string {
	c := n.Commitment()
	return base58.Encode(c[:])
}

// OwnershipWitness returns the private input of the ownership statement.
func (n *Note) OwnershipWitness() statement.OwnershipWitness {
	return statement.OwnershipWitness{Secret: n.Secret, Nullifier: n.Nullifier}
}
