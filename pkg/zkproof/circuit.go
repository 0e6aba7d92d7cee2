// Package zkproof proves the Ownership statement in zero knowledge.
//
// The circuit shows knowledge of a secret and nullifier such that
//
//	SHA-256(secret || nullifier) = Commitment
//	SHA-256(nullifier)           = NullifierHash
//
// with Commitment and NullifierHash public, byte for byte the values that
// statement.Ownership produces and publicvalues encodes.
package zkproof

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/uints"
)

// HashBytes is the width of every circuit input.
const HashBytes = 32

// OwnershipCircuit holds one variable per byte. Byte variables are range
// checked in Define.
type OwnershipCircuit struct {
	// Private witness
	Secret    [HashBytes]frontend.Variable `gnark:",secret"`
	Nullifier [HashBytes]frontend.Variable `gnark:",secret"`

	// Public inputs
	Commitment    [HashBytes]frontend.Variable `gnark:",public"`
	NullifierHash [HashBytes]frontend.Variable `gnark:",public"`
}

// Define implements frontend.Circuit.
func (c *OwnershipCircuit) Define(api frontend.API) error {
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return fmt.Errorf("uints: %w", err)
	}

	secret := toU8(uapi, c.Secret[:])
	nullifier := toU8(uapi, c.Nullifier[:])

	commitHasher, err := sha2.New(api)
	if err != nil {
		return fmt.Errorf("sha2: %w", err)
	}
	commitHasher.Write(secret)
	commitHasher.Write(nullifier)
	assertDigest(api, commitHasher.Sum(), c.Commitment[:])

	nullifierHasher, err := sha2.New(api)
	if err != nil {
		return fmt.Errorf("sha2: %w", err)
	}
	nullifierHasher.Write(nullifier)
	assertDigest(api, nullifierHasher.Sum(), c.NullifierHash[:])

	return nil
}

// toU8 range checks each variable as a byte.
func toU8(uapi *uints.BinaryField[uints.U32], vars []frontend.Variable) []uints.U8 {
	out := make([]uints.U8, len(vars))
	for i, v := range vars {
		out[i] = uapi.ByteValueOf(v)
	}
	return out
}

func assertDigest(api frontend.API, sum []uints.U8, expected []frontend.Variable) {
	for i := range expected {
		api.AssertIsEqual(sum[i].Val, expected[i])
	}
}
