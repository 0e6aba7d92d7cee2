package zkproof

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"

	"github.com/innocence-protocol/innocence/pkg/statement"
)

// Assignment returns a full circuit assignment for the given witness and
// public output.
func Assignment(w statement.OwnershipWitness, out statement.OwnershipOutput) *OwnershipCircuit {
	a := publicAssignment(out)
	setBytes(a.Secret[:], w.Secret)
	setBytes(a.Nullifier[:], w.Nullifier)
	return a
}

func publicAssignment(out statement.OwnershipOutput) *OwnershipCircuit {
	var a OwnershipCircuit
	setBytes(a.Commitment[:], out.Commitment)
	setBytes(a.NullifierHash[:], out.NullifierHash)
	// Secret inputs are ignored by PublicOnly witnesses but must be set.
	setBytes(a.Secret[:], common.Hash{})
	setBytes(a.Nullifier[:], common.Hash{})
	return &a
}

func setBytes(dst []frontend.Variable, h common.Hash) {
	for i := range dst {
		dst[i] = h[i]
	}
}

func fullWitness(w statement.OwnershipWitness, out statement.OwnershipOutput) (witness.Witness, error) {
	return frontend.NewWitness(Assignment(w, out), ecc.BN254.ScalarField())
}

func publicWitness(out statement.OwnershipOutput) (witness.Witness, error) {
	return frontend.NewWitness(publicAssignment(out), ecc.BN254.ScalarField(), frontend.PublicOnly())
}
