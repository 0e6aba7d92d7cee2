package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innocence-protocol/innocence/pkg/merkle"
	"github.com/innocence-protocol/innocence/pkg/publicvalues"
	"github.com/innocence-protocol/innocence/pkg/sanctions"
	"github.com/innocence-protocol/innocence/pkg/statement"
	"github.com/innocence-protocol/innocence/pkg/zkproof"
)

var (
	secret     = common.BytesToHash(bytes.Repeat([]byte{0x01}, 32))
	nullifier  = common.BytesToHash(bytes.Repeat([]byte{0x02}, 32))
	commitment = statement.Commit(secret, nullifier)
)

func newTestService(t *testing.T, mutate func(*Options)) *Service {
	t.Helper()
	opts := Options{
		Registry: sanctions.NewRegistry(nil),
		Verifier: statement.ECDSAVerifier{},
		Workers:  2,
		Timeout:  5 * time.Second,
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&opts)
	}
	svc, err := NewService(opts)
	require.NoError(t, err)
	return svc
}

func request(t *testing.T, kind statement.Kind, params any) Request {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return Request{Statement: string(kind), Params: raw}
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Options{Workers: 1, Timeout: time.Second})
	assert.Error(t, err, "registry is required")

	_, err = NewService(Options{Registry: sanctions.NewRegistry(nil), Workers: 0, Timeout: time.Second})
	assert.Error(t, err)

	_, err = NewService(Options{Registry: sanctions.NewRegistry(nil), Workers: 1})
	assert.Error(t, err)

	svc := newTestService(t, nil)
	assert.False(t, svc.ProvingEnabled())
}

func TestEvaluate_Ownership(t *testing.T) {
	svc := newTestService(t, nil)

	resp, err := svc.Evaluate(context.Background(), request(t, statement.KindOwnership, OwnershipParams{
		Secret: secret, Nullifier: nullifier, Commitment: commitment,
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID, "request id is assigned")
	assert.Equal(t, statement.KindOwnership, resp.Statement)
	assert.Len(t, resp.PublicValues, publicvalues.Size(statement.KindOwnership))
	assert.Empty(t, resp.Proof)
	assert.Equal(t, ReceiptID(statement.KindOwnership, resp.PublicValues), resp.ReceiptID)

	decoded, err := publicvalues.DecodeOwnership(resp.PublicValues)
	require.NoError(t, err)
	assert.Equal(t, resp.Output, decoded)
	assert.Equal(t, statement.NullifierHash(nullifier), decoded.NullifierHash)
}

func TestEvaluate_KeepsRequestID(t *testing.T) {
	svc := newTestService(t, nil)
	req := request(t, statement.KindOwnership, OwnershipParams{Secret: secret, Nullifier: nullifier, Commitment: commitment})
	req.ID = "fixed-id"

	resp, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.ID)
}

func TestEvaluate_Balance(t *testing.T) {
	svc := newTestService(t, nil)

	leaf := statement.BalanceLeaf(commitment, 0, 1000)
	tree, err := merkle.NewTree([]common.Hash{leaf})
	require.NoError(t, err)
	proof, err := tree.Proof(0)
	require.NoError(t, err)

	params := BalanceParams{
		Secret:        secret,
		Nullifier:     nullifier,
		ActualBalance: 1000,
		BalanceLeaf:   leaf,
		MerklePath:    proof.Path,
		MerkleIndices: proof.Indices,
		Commitment:    commitment,
		MerkleRoot:    tree.Root(),
		MinBalance:    100,
	}
	resp, err := svc.Evaluate(context.Background(), request(t, statement.KindBalance, params))
	require.NoError(t, err)
	out := resp.Output.(statement.BalanceOutput)
	assert.Equal(t, uint64(100), out.MinBalance)
	assert.Equal(t, tree.Root(), out.MerkleRoot)

	params.MinBalance = 1001
	_, err = svc.Evaluate(context.Background(), request(t, statement.KindBalance, params))
	assert.ErrorIs(t, err, statement.ConstraintViolation)
}

func TestEvaluate_Compliance(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	authority := crypto.PubkeyToAddress(key.PublicKey)

	cert := statement.NewCertificate(commitment, 2000, []byte("kyc-tier-1"))
	sig, err := statement.SignCertificate(cert, key)
	require.NoError(t, err)

	params := ComplianceParams{
		Secret:              secret,
		Nullifier:           nullifier,
		CertificateData:     cert,
		Signature:           sig.Bytes(),
		Commitment:          commitment,
		ComplianceAuthority: authority,
		ValidUntil:          2000,
		CurrentTimestamp:    1500,
	}

	t.Run("ecdsa accepts the authority's signature", func(t *testing.T) {
		svc := newTestService(t, nil)
		resp, err := svc.Evaluate(context.Background(), request(t, statement.KindCompliance, params))
		require.NoError(t, err)
		out := resp.Output.(statement.ComplianceOutput)
		assert.Equal(t, authority, out.ComplianceAuthority)
	})

	t.Run("ecdsa rejects another authority", func(t *testing.T) {
		svc := newTestService(t, nil)
		p := params
		p.ComplianceAuthority = common.HexToAddress("0x1111111111111111111111111111111111111111")
		_, err := svc.Evaluate(context.Background(), request(t, statement.KindCompliance, p))
		assert.ErrorIs(t, err, statement.WitnessMismatch)
	})

	t.Run("expired", func(t *testing.T) {
		svc := newTestService(t, nil)
		p := params
		p.CurrentTimestamp = 2001
		_, err := svc.Evaluate(context.Background(), request(t, statement.KindCompliance, p))
		assert.ErrorIs(t, err, statement.ConstraintViolation)
	})

	t.Run("no verifier", func(t *testing.T) {
		svc := newTestService(t, func(o *Options) { o.Verifier = nil })
		_, err := svc.Evaluate(context.Background(), request(t, statement.KindCompliance, params))
		assert.ErrorIs(t, err, statement.StructuralError)
	})

	t.Run("short signature", func(t *testing.T) {
		svc := newTestService(t, nil)
		p := params
		p.Signature = p.Signature[:64]
		_, err := svc.Evaluate(context.Background(), request(t, statement.KindCompliance, p))
		assert.ErrorIs(t, err, ErrInvalidParams)
	})
}

func TestEvaluate_Innocence(t *testing.T) {
	svc := newTestService(t, nil)
	root := svc.Registry().Root()

	resp, err := svc.Evaluate(context.Background(), request(t, statement.KindInnocence, InnocenceParams{
		Depositor: sanctions.DefaultAddresses[0], SanctionsRoot: root, Timestamp: 1700000000,
	}))
	require.NoError(t, err)
	assert.False(t, resp.Output.(statement.InnocenceOutput).IsInnocent)

	clean := common.HexToAddress("0x1111111111111111111111111111111111111111")
	resp, err = svc.Evaluate(context.Background(), request(t, statement.KindInnocence, InnocenceParams{
		Depositor: clean, SanctionsRoot: root, Timestamp: 1700000000,
	}))
	require.NoError(t, err)
	out := resp.Output.(statement.InnocenceOutput)
	assert.True(t, out.IsInnocent)
	assert.Equal(t, uint64(1700000000), out.Timestamp)

	_, err = svc.Registry().Add(clean)
	require.NoError(t, err)
	_, err = svc.Evaluate(context.Background(), request(t, statement.KindInnocence, InnocenceParams{
		Depositor: clean, SanctionsRoot: root,
	}))
	assert.ErrorIs(t, err, statement.WitnessMismatch, "root from an older snapshot")
}

func TestEvaluate_Trade(t *testing.T) {
	svc := newTestService(t, nil)
	params := TradeParams{
		Secret:      secret,
		Nullifier:   nullifier,
		FromBalance: 500,
		ToBalance:   0,
		Commitment:  commitment,
		FromAsset:   0,
		ToAsset:     1,
		FromAmount:  500,
		MinToAmount: 490,
	}
	resp, err := svc.Evaluate(context.Background(), request(t, statement.KindTrade, params))
	require.NoError(t, err)
	assert.Equal(t, uint64(500), resp.Output.(statement.TradeOutput).FromAmount)

	params.ToAsset = 0
	_, err = svc.Evaluate(context.Background(), request(t, statement.KindTrade, params))
	assert.ErrorIs(t, err, statement.ConstraintViolation)
}

func TestEvaluate_RequestErrors(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, Request{Statement: "solvency", Params: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ErrUnknownStatement)

	_, err = svc.Evaluate(ctx, Request{Statement: "ownership"})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = svc.Evaluate(ctx, Request{Statement: "ownership", Params: json.RawMessage(`{"secret":"0x01","extra":1}`)})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = svc.Evaluate(ctx, Request{Statement: "trade", Params: json.RawMessage(`{"fromAmount":"lots"}`)})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = svc.Evaluate(ctx, Request{Statement: "balance", Params: json.RawMessage(`{}`), Prove: true})
	assert.ErrorIs(t, err, ErrProvingUnsupported)

	_, err = svc.Evaluate(ctx, Request{Statement: "ownership", Params: json.RawMessage(`{}`), Prove: true})
	assert.ErrorIs(t, err, ErrProvingDisabled)
}

func TestEvaluate_WorkerLimit(t *testing.T) {
	svc := newTestService(t, func(o *Options) {
		o.Workers = 1
		o.Timeout = 50 * time.Millisecond
	})

	// Occupy the only slot.
	svc.slots <- struct{}{}
	defer func() { <-svc.slots }()

	_, err := svc.Evaluate(context.Background(), request(t, statement.KindOwnership, OwnershipParams{
		Secret: secret, Nullifier: nullifier, Commitment: commitment,
	}))
	assert.ErrorIs(t, err, ErrProofTimeout)
}

func TestStats(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, request(t, statement.KindOwnership, OwnershipParams{Secret: secret, Nullifier: nullifier, Commitment: commitment}))
	require.NoError(t, err)
	_, err = svc.Evaluate(ctx, request(t, statement.KindOwnership, OwnershipParams{Secret: secret, Nullifier: nullifier}))
	require.Error(t, err)

	stats := svc.Stats()
	assert.Equal(t, uint64(2), stats.Evaluated)
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, sanctions.DefaultList().Root(), stats.SanctionsRoot)
	assert.Equal(t, 3, stats.SanctionsTotal)
	assert.False(t, stats.ProvingEnabled)
}

func TestVerifierByName(t *testing.T) {
	v, err := VerifierByName("ecdsa")
	require.NoError(t, err)
	assert.IsType(t, statement.ECDSAVerifier{}, v)

	v, err = VerifierByName("sanity")
	require.NoError(t, err)
	assert.IsType(t, statement.SanityVerifier{}, v)

	_, err = VerifierByName("none")
	assert.Error(t, err)
}

func TestServiceError(t *testing.T) {
	err := fmt.Errorf("%w: waiting for worker", ErrProofTimeout)
	assert.ErrorIs(t, err, ErrProofTimeout)
	assert.False(t, errors.Is(err, ErrProofGenerationFailed))
	assert.Equal(t, "invalid_params", ErrInvalidParams.Error())
}

func TestEvaluate_ProveOwnership(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode (circuit compilation is slow)")
	}
	compiled, err := zkproof.GetCompiledCircuit()
	require.NoError(t, err)

	svc := newTestService(t, func(o *Options) {
		o.Compiled = compiled
		o.Timeout = 5 * time.Minute
	})
	require.True(t, svc.ProvingEnabled())

	req := request(t, statement.KindOwnership, OwnershipParams{Secret: secret, Nullifier: nullifier, Commitment: commitment})
	req.Prove = true
	resp, err := svc.Evaluate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Proof)

	out, err := svc.VerifyOwnership(context.Background(), resp.Proof, resp.PublicValues)
	require.NoError(t, err)
	assert.Equal(t, commitment, out.Commitment)

	stats := svc.Stats()
	assert.Equal(t, uint64(1), stats.ProofsGenerated)
	assert.Equal(t, uint64(1), stats.ProofsVerified)

	tampered := append([]byte(nil), resp.PublicValues...)
	tampered[0] ^= 0x01
	_, err = svc.VerifyOwnership(context.Background(), resp.Proof, tampered)
	assert.ErrorIs(t, err, ErrProofVerificationFailed)
}

func TestVerifyOwnership_Disabled(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.VerifyOwnership(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrProvingDisabled)
}
