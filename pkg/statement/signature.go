package statement

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/innocence-protocol/innocence/pkg/digest"
)

// Signature is a secp256k1 recoverable signature. V is the recovery id,
// accepted either as 0/1 or in the Ethereum 27/28 form.
type Signature struct {
	V uint8
	R common.Hash
	S common.Hash
}

// Bytes returns the 65-byte R || S || V form with V normalized to 0/1.
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.recoveryID()
	return out
}

func (s Signature) recoveryID() byte {
	if s.V >= 27 {
		return s.V - 27
	}
	return s.V
}

// SignatureFromBytes splits a 65-byte R || S || V signature.
func SignatureFromBytes(b []byte) (Signature, bool) {
	if len(b) != 65 {
		return Signature{}, false
	}
	var sig Signature
	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:64])
	sig.V = b[64]
	return sig, true
}

// SignatureVerifier decides whether sig over message was produced by signer.
type SignatureVerifier interface {
	Verify(message []byte, sig Signature, signer common.Address) bool
}

// ECDSAVerifier recovers the signer of Hash(message) and compares it with
// the expected address. High-S signatures are rejected.
type ECDSAVerifier struct{}

// Verify implements SignatureVerifier.
func (ECDSAVerifier) Verify(message []byte, sig Signature, signer common.Address) bool {
	v := sig.recoveryID()
	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return false
	}
	hash := digest.Sum(message)
	pub, err := crypto.SigToPub(hash[:], sig.Bytes())
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == signer
}

// SignCertificate signs Hash(message) with key in the form ECDSAVerifier
// accepts.
func SignCertificate(message []byte, key *ecdsa.PrivateKey) (Signature, error) {
	hash := digest.Sum(message)
	raw, err := crypto.Sign(hash[:], key)
	if err != nil {
		return Signature{}, err
	}
	sig, _ := SignatureFromBytes(raw)
	return sig, nil
}

// SanityVerifier only checks that the recovery id and the first byte of R
// are non-zero. It does not authenticate the signer and exists to replay
// certificates issued before signer recovery was enforced.
type SanityVerifier struct{}

// Verify implements SignatureVerifier.
func (SanityVerifier) Verify(_ []byte, sig Signature, _ common.Address) bool {
	return sig.V != 0 && sig.R[0] != 0
}
