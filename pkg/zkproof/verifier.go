package zkproof

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"

	"github.com/innocence-protocol/innocence/pkg/publicvalues"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

// ErrInvalidProof is returned when a proof does not verify.
var ErrInvalidProof = errors.New("zkproof: proof verification failed")

// Verifier checks Ownership proofs.
type Verifier struct {
	compiled *CompiledCircuit
}

// NewVerifier creates a Verifier for compiled.
func NewVerifier(compiled *CompiledCircuit) *Verifier {
	return &Verifier{compiled: compiled}
}

// Verify checks proofBytes against ABI-encoded public values and returns the
// decoded output.
func (v *Verifier) Verify(proofBytes, publicValues []byte) (statement.OwnershipOutput, error) {
	out, err := publicvalues.DecodeOwnership(publicValues)
	if err != nil {
		return statement.OwnershipOutput{}, err
	}
	if err := v.VerifyOutput(proofBytes, out); err != nil {
		return statement.OwnershipOutput{}, err
	}
	return out, nil
}

// VerifyOutput checks proofBytes against an already decoded output.
func (v *Verifier) VerifyOutput(proofBytes []byte, out statement.OwnershipOutput) error {
	proof := plonk.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("deserialize proof: %w", err)
	}

	public, err := publicWitness(out)
	if err != nil {
		return fmt.Errorf("build public witness: %w", err)
	}

	if err := plonk.Verify(proof, v.compiled.VerifyingKey, public); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return nil
}
