package statement

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innocence-protocol/innocence/pkg/digest"
	"github.com/innocence-protocol/innocence/pkg/merkle"
)

var (
	testSecret    = common.BytesToHash(bytes.Repeat([]byte{0x01}, 32))
	testNullifier = common.BytesToHash(bytes.Repeat([]byte{0x02}, 32))
)

func requireReason(t *testing.T, err error, reason Reason, check string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, reason)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, check, rej.Check)
}

func TestCommit(t *testing.T) {
	t.Run("hash of secret and nullifier", func(t *testing.T) {
		want := digest.Sum(testSecret[:], testNullifier[:])
		assert.Equal(t, want, Commit(testSecret, testNullifier))
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Commit(testSecret, testNullifier), Commit(testSecret, testNullifier))
	})

	t.Run("sensitive to either input", func(t *testing.T) {
		base := Commit(testSecret, testNullifier)
		for i := 0; i < 32; i++ {
			s := testSecret
			s[i] ^= 0x01
			assert.NotEqual(t, base, Commit(s, testNullifier))

			n := testNullifier
			n[i] ^= 0x01
			assert.NotEqual(t, base, Commit(testSecret, n))
		}
	})

	t.Run("order matters", func(t *testing.T) {
		assert.NotEqual(t, Commit(testSecret, testNullifier), Commit(testNullifier, testSecret))
	})
}

func TestNullifierHash(t *testing.T) {
	assert.Equal(t, digest.Sum(testNullifier[:]), NullifierHash(testNullifier))
}

func TestBalanceLeaf(t *testing.T) {
	commitment := Commit(testSecret, testNullifier)
	want := digest.Sum(commitment[:],
		[]byte{7, 0, 0, 0, 0, 0, 0, 0},
		[]byte{0xe8, 0x03, 0, 0, 0, 0, 0, 0})

	assert.Equal(t, want, BalanceLeaf(commitment, 7, 1000))
}

func TestOwnership(t *testing.T) {
	commitment := Commit(testSecret, testNullifier)

	t.Run("accepts matching commitment", func(t *testing.T) {
		out, err := Ownership(OwnershipWitness{Secret: testSecret, Nullifier: testNullifier}, OwnershipClaim{Commitment: commitment})
		require.NoError(t, err)
		assert.Equal(t, commitment, out.Commitment)
		assert.Equal(t, digest.Sum(testNullifier[:]), out.NullifierHash)
		assert.Equal(t, KindOwnership, out.Kind())
	})

	t.Run("rejects any other commitment", func(t *testing.T) {
		other := commitment
		other[31] ^= 0xff
		out, err := Ownership(OwnershipWitness{Secret: testSecret, Nullifier: testNullifier}, OwnershipClaim{Commitment: other})
		requireReason(t, err, WitnessMismatch, "commitment")
		assert.Equal(t, OwnershipOutput{}, out, "no partial output on rejection")
	})
}

// balanceFixture builds a four-leaf tree with the position's leaf first and
// zero leaves after it.
func balanceFixture(t *testing.T, actual uint64, assetID uint64) (BalanceWitness, BalanceClaim) {
	t.Helper()
	commitment := Commit(testSecret, testNullifier)
	leaf := BalanceLeaf(commitment, assetID, actual)
	tree, err := merkle.NewTree([]common.Hash{leaf, {}, {}, {}})
	require.NoError(t, err)
	proof, err := tree.Proof(0)
	require.NoError(t, err)

	return BalanceWitness{
			Secret:        testSecret,
			Nullifier:     testNullifier,
			ActualBalance: actual,
			Proof:         proof,
		}, BalanceClaim{
			Commitment: commitment,
			MerkleRoot: tree.Root(),
			MinBalance: 100,
			AssetID:    assetID,
		}
}

func TestBalance(t *testing.T) {
	t.Run("accepts sufficient balance", func(t *testing.T) {
		w, c := balanceFixture(t, 1000, 0)
		out, err := Balance(w, c)
		require.NoError(t, err)
		assert.Equal(t, BalanceOutput{Commitment: c.Commitment, MerkleRoot: c.MerkleRoot, MinBalance: 100, AssetID: 0}, out)
	})

	t.Run("boundary: equal balance accepts", func(t *testing.T) {
		w, c := balanceFixture(t, 100, 3)
		_, err := Balance(w, c)
		require.NoError(t, err)
	})

	t.Run("boundary: one below minimum rejects", func(t *testing.T) {
		w, c := balanceFixture(t, 99, 3)
		_, err := Balance(w, c)
		requireReason(t, err, ConstraintViolation, "min_balance")
	})

	t.Run("wrong commitment rejects first", func(t *testing.T) {
		w, c := balanceFixture(t, 1, 0)
		w.Secret[0] ^= 1
		_, err := Balance(w, c)
		requireReason(t, err, WitnessMismatch, "commitment")
	})

	t.Run("mismatched proof shape", func(t *testing.T) {
		w, c := balanceFixture(t, 1000, 0)
		w.Proof.Indices = w.Proof.Indices[:1]
		_, err := Balance(w, c)
		requireReason(t, err, StructuralError, "merkle_proof")
	})

	t.Run("wrong leaf reported before proof shape", func(t *testing.T) {
		w, c := balanceFixture(t, 1000, 0)
		w.ActualBalance = 2000
		w.Proof.Indices = w.Proof.Indices[:1]
		_, err := Balance(w, c)
		requireReason(t, err, WitnessMismatch, "balance_leaf")
	})

	t.Run("leaf for a different balance", func(t *testing.T) {
		w, c := balanceFixture(t, 1000, 0)
		w.ActualBalance = 2000
		_, err := Balance(w, c)
		requireReason(t, err, WitnessMismatch, "balance_leaf")
	})

	t.Run("leaf for a different asset", func(t *testing.T) {
		w, c := balanceFixture(t, 1000, 0)
		c.AssetID = 1
		_, err := Balance(w, c)
		requireReason(t, err, WitnessMismatch, "balance_leaf")
	})

	t.Run("wrong root", func(t *testing.T) {
		w, c := balanceFixture(t, 1000, 0)
		c.MerkleRoot[0] ^= 1
		_, err := Balance(w, c)
		requireReason(t, err, WitnessMismatch, "merkle_root")
	})

	t.Run("depth zero tree", func(t *testing.T) {
		commitment := Commit(testSecret, testNullifier)
		leaf := BalanceLeaf(commitment, 0, 500)
		w := BalanceWitness{Secret: testSecret, Nullifier: testNullifier, ActualBalance: 500, Proof: merkle.Proof{Leaf: leaf}}
		_, err := Balance(w, BalanceClaim{Commitment: commitment, MerkleRoot: leaf, MinBalance: 500})
		require.NoError(t, err)
	})
}

func tradeFixture() (TradeWitness, TradeClaim) {
	return TradeWitness{
			Secret:      testSecret,
			Nullifier:   testNullifier,
			FromBalance: 100,
			ToBalance:   0,
		}, TradeClaim{
			Commitment:  Commit(testSecret, testNullifier),
			FromAsset:   0,
			ToAsset:     1,
			FromAmount:  100,
			MinToAmount: 1,
		}
}

func TestTrade(t *testing.T) {
	t.Run("exact spend accepts", func(t *testing.T) {
		w, c := tradeFixture()
		out, err := Trade(w, c)
		require.NoError(t, err)
		assert.Equal(t, TradeOutput{
			Commitment:  c.Commitment,
			FromAsset:   0,
			ToAsset:     1,
			FromAmount:  100,
			MinToAmount: 1,
		}, out)
	})

	t.Run("one short rejects", func(t *testing.T) {
		w, c := tradeFixture()
		w.FromBalance = 99
		_, err := Trade(w, c)
		requireReason(t, err, ConstraintViolation, "from_balance")
	})

	t.Run("zero amount", func(t *testing.T) {
		w, c := tradeFixture()
		c.FromAmount = 0
		_, err := Trade(w, c)
		requireReason(t, err, ConstraintViolation, "from_amount")
	})

	t.Run("zero minimum output", func(t *testing.T) {
		w, c := tradeFixture()
		c.MinToAmount = 0
		_, err := Trade(w, c)
		requireReason(t, err, ConstraintViolation, "min_to_amount")
	})

	t.Run("same asset always rejects", func(t *testing.T) {
		for _, amounts := range [][2]uint64{{1, 1}, {100, 100}, {1 << 40, 5}} {
			w, c := tradeFixture()
			w.FromBalance = amounts[0]
			c.FromAmount = amounts[0]
			c.MinToAmount = amounts[1]
			c.FromAsset, c.ToAsset = 0, 0
			_, err := Trade(w, c)
			requireReason(t, err, ConstraintViolation, "assets")
		}
	})

	t.Run("wrong commitment", func(t *testing.T) {
		w, c := tradeFixture()
		w.Nullifier[5] ^= 1
		_, err := Trade(w, c)
		requireReason(t, err, WitnessMismatch, "commitment")
	})

	t.Run("to balance is unconstrained", func(t *testing.T) {
		w, c := tradeFixture()
		w.ToBalance = ^uint64(0)
		_, err := Trade(w, c)
		require.NoError(t, err)
	})
}

func TestCheckedSub(t *testing.T) {
	v, ok := checkedSub(100, 100)
	assert.True(t, ok)
	assert.Zero(t, v)

	_, ok = checkedSub(99, 100)
	assert.False(t, ok)
}

type complianceFixture struct {
	witness ComplianceWitness
	claim   ComplianceClaim
}

func newComplianceFixture(t *testing.T) complianceFixture {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	commitment := Commit(testSecret, testNullifier)
	validUntil := uint64(1_800_000_000)
	cert := NewCertificate(commitment, validUntil, []byte(`{"level":"basic"}`))
	sig, err := SignCertificate(cert, key)
	require.NoError(t, err)

	return complianceFixture{
		witness: ComplianceWitness{
			Secret:          testSecret,
			Nullifier:       testNullifier,
			CertificateData: cert,
			Signature:       sig,
		},
		claim: ComplianceClaim{
			Commitment:          commitment,
			ComplianceAuthority: crypto.PubkeyToAddress(key.PublicKey),
			ValidUntil:          validUntil,
			CurrentTimestamp:    validUntil - 3600,
		},
	}
}

func TestCompliance(t *testing.T) {
	t.Run("accepts signed certificate", func(t *testing.T) {
		f := newComplianceFixture(t)
		out, err := Compliance(f.witness, f.claim, ECDSAVerifier{})
		require.NoError(t, err)
		assert.Equal(t, f.claim.Commitment, out.Commitment)
		assert.Equal(t, f.claim.ComplianceAuthority, out.ComplianceAuthority)
		assert.Equal(t, f.claim.ValidUntil, out.ValidUntil)
		assert.Equal(t, digest.Sum(f.witness.CertificateData), out.CertificateHash)
	})

	t.Run("last valid second accepts", func(t *testing.T) {
		f := newComplianceFixture(t)
		f.claim.CurrentTimestamp = f.claim.ValidUntil
		_, err := Compliance(f.witness, f.claim, ECDSAVerifier{})
		require.NoError(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		f := newComplianceFixture(t)
		f.claim.CurrentTimestamp = f.claim.ValidUntil + 1
		_, err := Compliance(f.witness, f.claim, ECDSAVerifier{})
		requireReason(t, err, ConstraintViolation, "expired")
	})

	t.Run("short certificate", func(t *testing.T) {
		f := newComplianceFixture(t)
		f.witness.CertificateData = f.witness.CertificateData[:39]
		_, err := Compliance(f.witness, f.claim, ECDSAVerifier{})
		requireReason(t, err, StructuralError, "certificate_length")
	})

	t.Run("certificate for another commitment", func(t *testing.T) {
		f := newComplianceFixture(t)
		f.witness.CertificateData[0] ^= 1
		_, err := Compliance(f.witness, f.claim, ECDSAVerifier{})
		requireReason(t, err, WitnessMismatch, "certificate_commitment")
	})

	t.Run("validity mismatch", func(t *testing.T) {
		f := newComplianceFixture(t)
		f.claim.ValidUntil++
		_, err := Compliance(f.witness, f.claim, ECDSAVerifier{})
		requireReason(t, err, WitnessMismatch, "certificate_valid_until")
	})

	t.Run("signed by someone else", func(t *testing.T) {
		f := newComplianceFixture(t)
		other, err := crypto.GenerateKey()
		require.NoError(t, err)
		f.claim.ComplianceAuthority = crypto.PubkeyToAddress(other.PublicKey)
		_, err = Compliance(f.witness, f.claim, ECDSAVerifier{})
		requireReason(t, err, WitnessMismatch, "signature")
	})

	t.Run("tampered payload", func(t *testing.T) {
		f := newComplianceFixture(t)
		f.witness.CertificateData[len(f.witness.CertificateData)-1] ^= 1
		_, err := Compliance(f.witness, f.claim, ECDSAVerifier{})
		requireReason(t, err, WitnessMismatch, "signature")
	})

	t.Run("missing verifier", func(t *testing.T) {
		f := newComplianceFixture(t)
		_, err := Compliance(f.witness, f.claim, nil)
		requireReason(t, err, StructuralError, "signature")
	})

	t.Run("wrong commitment comes first", func(t *testing.T) {
		f := newComplianceFixture(t)
		f.witness.Secret[0] ^= 1
		f.witness.CertificateData = nil
		_, err := Compliance(f.witness, f.claim, nil)
		requireReason(t, err, WitnessMismatch, "commitment")
	})
}

func TestSignatureVerifiers(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)
	msg := []byte("certificate")

	sig, err := SignCertificate(msg, key)
	require.NoError(t, err)

	t.Run("ecdsa accepts 0/1 and 27/28 recovery ids", func(t *testing.T) {
		assert.True(t, ECDSAVerifier{}.Verify(msg, sig, signer))
		eth := sig
		eth.V += 27
		assert.True(t, ECDSAVerifier{}.Verify(msg, eth, signer))
	})

	t.Run("ecdsa rejects zero signature", func(t *testing.T) {
		assert.False(t, ECDSAVerifier{}.Verify(msg, Signature{}, signer))
	})

	t.Run("sanity verifier ignores the signer", func(t *testing.T) {
		forged := Signature{V: 27, R: common.Hash{0x01}}
		assert.True(t, SanityVerifier{}.Verify(nil, forged, common.Address{}))
		assert.False(t, SanityVerifier{}.Verify(nil, Signature{V: 0, R: common.Hash{0x01}}, common.Address{}))
		assert.False(t, SanityVerifier{}.Verify(nil, Signature{V: 1}, common.Address{}))
	})

	t.Run("bytes round trip", func(t *testing.T) {
		parsed, ok := SignatureFromBytes(sig.Bytes())
		require.True(t, ok)
		assert.Equal(t, sig, parsed)

		_, ok = SignatureFromBytes(make([]byte, 64))
		assert.False(t, ok)
	})
}

type fakeRegistry struct {
	denied map[common.Address]bool
	root   common.Hash
}

func (f fakeRegistry) Status(addr common.Address) (bool, common.Hash) {
	return f.denied[addr], f.root
}

func TestInnocence(t *testing.T) {
	bad := common.HexToAddress("0x8589427373D6D84E98730D7795D8f6f8731FDA16")
	good := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	reg := fakeRegistry{denied: map[common.Address]bool{bad: true}, root: digest.Sum([]byte("root"))}

	t.Run("unlisted depositor is innocent", func(t *testing.T) {
		out, err := Innocence(InnocenceClaim{Depositor: good, SanctionsRoot: reg.root, Timestamp: 42}, reg)
		require.NoError(t, err)
		assert.Equal(t, InnocenceOutput{Depositor: good, SanctionsRoot: reg.root, Timestamp: 42, IsInnocent: true}, out)
	})

	t.Run("listed depositor is reported, not rejected", func(t *testing.T) {
		out, err := Innocence(InnocenceClaim{Depositor: bad, SanctionsRoot: reg.root}, reg)
		require.NoError(t, err)
		assert.False(t, out.IsInnocent)
	})

	t.Run("root must match registry", func(t *testing.T) {
		_, err := Innocence(InnocenceClaim{Depositor: good, SanctionsRoot: common.Hash{}}, reg)
		requireReason(t, err, WitnessMismatch, "sanctions_root")
	})

	t.Run("nil registry", func(t *testing.T) {
		_, err := Innocence(InnocenceClaim{Depositor: good}, nil)
		requireReason(t, err, StructuralError, "sanctions_registry")
	})
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(" " + string(k) + " ")
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseKind("Ownership")
	require.NoError(t, err)
	assert.Equal(t, KindOwnership, got)

	_, err = ParseKind("withdrawal")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestReasonOf(t *testing.T) {
	r, ok := ReasonOf(Reject(StructuralError, "x", "y"))
	assert.True(t, ok)
	assert.Equal(t, StructuralError, r)

	_, ok = ReasonOf(assert.AnError)
	assert.False(t, ok)

	assert.Equal(t, "statement: constraint_violation: assets: same", Reject(ConstraintViolation, "assets", "same").Error())
}
