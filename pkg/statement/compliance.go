package statement

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/innocence-protocol/innocence/pkg/digest"
)

// MinCertificateLength is the length of the fixed certificate prefix:
// commitment (32 bytes) followed by little-endian validUntil (8 bytes).
const MinCertificateLength = 40

// ComplianceWitness is the private input of the Compliance statement.
type ComplianceWitness struct {
	Secret          common.Hash
	Nullifier       common.Hash
	CertificateData []byte
	Signature       Signature
}

// ComplianceClaim is the public input of the Compliance statement.
type ComplianceClaim struct {
	Commitment          common.Hash
	ComplianceAuthority common.Address
	ValidUntil          uint64
	CurrentTimestamp    uint64
}

// ComplianceOutput is the public output of the Compliance statement.
type ComplianceOutput struct {
	Commitment          common.Hash
	ComplianceAuthority common.Address
	ValidUntil          uint64
	CertificateHash     common.Hash
}

// Kind implements Output.
func (ComplianceOutput) Kind() Kind { return KindCompliance }

// NewCertificate lays out a certificate: commitment, LE64(validUntil), payload.
func NewCertificate(commitment common.Hash, validUntil uint64, payload []byte) []byte {
	cert := make([]byte, MinCertificateLength, MinCertificateLength+len(payload))
	copy(cert[:32], commitment[:])
	binary.LittleEndian.PutUint64(cert[32:40], validUntil)
	return append(cert, payload...)
}

// Compliance proves the committed position holds an unexpired certificate
// signed by the compliance authority.
//
// Deprecated: use Innocence. Compliance is kept for certificates already
// issued.
func Compliance(w ComplianceWitness, c ComplianceClaim, verifier SignatureVerifier) (ComplianceOutput, error) {
	if err := checkCommitment(w.Secret, w.Nullifier, c.Commitment); err != nil {
		return ComplianceOutput{}, err
	}

	cert := w.CertificateData
	if len(cert) < MinCertificateLength {
		return ComplianceOutput{}, Reject(StructuralError, "certificate_length",
			"got %d bytes, need at least %d", len(cert), MinCertificateLength)
	}
	if !bytes.Equal(cert[:32], c.Commitment[:]) {
		return ComplianceOutput{}, Reject(WitnessMismatch, "certificate_commitment",
			"certificate is bound to %x", cert[:32])
	}
	if validUntil := binary.LittleEndian.Uint64(cert[32:40]); validUntil != c.ValidUntil {
		return ComplianceOutput{}, Reject(WitnessMismatch, "certificate_valid_until",
			"certificate says %d, claim says %d", validUntil, c.ValidUntil)
	}
	if c.CurrentTimestamp > c.ValidUntil {
		return ComplianceOutput{}, Reject(ConstraintViolation, "expired",
			"now %d is after %d", c.CurrentTimestamp, c.ValidUntil)
	}
	if verifier == nil {
		return ComplianceOutput{}, Reject(StructuralError, "signature", "no signature verifier configured")
	}
	if !verifier.Verify(cert, w.Signature, c.ComplianceAuthority) {
		return ComplianceOutput{}, Reject(WitnessMismatch, "signature",
			"certificate not signed by %s", c.ComplianceAuthority.Hex())
	}

	return ComplianceOutput{
		Commitment:          c.Commitment,
		ComplianceAuthority: c.ComplianceAuthority,
		ValidUntil:          c.ValidUntil,
		CertificateHash:     digest.Sum(cert),
	}, nil
}
