package zkproof

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark/backend/plonk"

	"github.com/innocence-protocol/innocence/pkg/publicvalues"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

// Prover generates Ownership proofs.
type Prover struct {
	compiled *CompiledCircuit
}

// ProofResult is a serialized proof with the public values it commits to.
type ProofResult struct {
	// Proof is the serialized PLONK proof.
	Proof []byte

	// PublicValues is the ABI encoding of Output.
	PublicValues []byte

	Output statement.OwnershipOutput
}

// NewProver creates a Prover for compiled.
func NewProver(compiled *CompiledCircuit) *Prover {
	return &Prover{compiled: compiled}
}

// Prove evaluates the Ownership statement and, if it holds, proves it.
// A rejected statement returns the *statement.Rejection without proving.
func (p *Prover) Prove(w statement.OwnershipWitness, c statement.OwnershipClaim) (*ProofResult, error) {
	out, err := statement.Ownership(w, c)
	if err != nil {
		return nil, err
	}

	full, err := fullWitness(w, out)
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}

	proof, err := plonk.Prove(p.compiled.ConstraintSystem, p.compiled.ProvingKey, full)
	if err != nil {
		return nil, fmt.Errorf("generate proof: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize proof: %w", err)
	}

	values, err := publicvalues.EncodeOwnership(out)
	if err != nil {
		return nil, fmt.Errorf("encode public values: %w", err)
	}

	return &ProofResult{
		Proof:        buf.Bytes(),
		PublicValues: values,
		Output:       out,
	}, nil
}
