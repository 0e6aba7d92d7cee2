package statement

import "github.com/ethereum/go-ethereum/common"

// OwnershipWitness is the private input of the Ownership statement.
type OwnershipWitness struct {
	Secret    common.Hash
	Nullifier common.Hash
}

// OwnershipClaim is the public input of the Ownership statement.
type OwnershipClaim struct {
	Commitment common.Hash
}

// OwnershipOutput is the public output of the Ownership statement.
type OwnershipOutput struct {
	Commitment    common.Hash
	NullifierHash common.Hash
}

// Kind implements Output.
func (OwnershipOutput) Kind() Kind { return KindOwnership }

// Ownership proves knowledge of the secret and nullifier behind a commitment.
func Ownership(w OwnershipWitness, c OwnershipClaim) (OwnershipOutput, error) {
	if err := checkCommitment(w.Secret, w.Nullifier, c.Commitment); err != nil {
		return OwnershipOutput{}, err
	}
	return OwnershipOutput{
		Commitment:    c.Commitment,
		NullifierHash: NullifierHash(w.Nullifier),
	}, nil
}

// checkCommitment is the first check of every commitment-bound statement.
func checkCommitment(secret, nullifier, expected common.Hash) error {
	if computed := Commit(secret, nullifier); computed != expected {
		return Reject(WitnessMismatch, "commitment", "computed %s, claimed %s", computed.Hex(), expected.Hex())
	}
	return nil
}
