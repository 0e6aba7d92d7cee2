package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innocence-protocol/innocence/internal/prover"
	"github.com/innocence-protocol/innocence/pkg/sanctions"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

var (
	secret     = common.BytesToHash(bytes.Repeat([]byte{0x01}, 32))
	nullifier  = common.BytesToHash(bytes.Repeat([]byte{0x02}, 32))
	commitment = statement.Commit(secret, nullifier)
)

// startServer serves a real prover.Service on a temporary socket.
func startServer(t *testing.T) (*Client, *prover.Service, string) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	svc, err := prover.NewService(prover.Options{
		Registry: sanctions.NewRegistry(nil),
		Verifier: statement.ECDSAVerifier{},
		Workers:  2,
		Timeout:  5 * time.Second,
		Logger:   logger,
	})
	require.NoError(t, err)

	sockPath := filepath.Join(t.TempDir(), "prover.sock")
	server, err := NewServer(sockPath, svc, logger)
	require.NoError(t, err)
	go server.Start()
	t.Cleanup(server.Stop)

	client, err := NewClient(sockPath)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, svc, sockPath
}

func ownershipRequest(t *testing.T, claimed common.Hash) prover.Request {
	t.Helper()
	raw, err := json.Marshal(prover.OwnershipParams{Secret: secret, Nullifier: nullifier, Commitment: claimed})
	require.NoError(t, err)
	return prover.Request{Statement: "ownership", Params: raw}
}

func TestServerStartStop(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "test.sock")
	svc, err := prover.NewService(prover.Options{Registry: sanctions.NewRegistry(nil), Workers: 1, Timeout: time.Second})
	require.NoError(t, err)

	server, err := NewServer(sockPath, svc, nil)
	require.NoError(t, err)
	go server.Start()

	info, err := os.Stat(sockPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	server.Stop()
	_, err = os.Stat(sockPath)
	assert.True(t, os.IsNotExist(err), "socket is removed on stop")
}

func TestNewServer_EmptyPath(t *testing.T) {
	_, err := NewServer("", nil, nil)
	assert.ErrorIs(t, err, ErrEmptySocketPath)
}

func TestNewClient_EmptyPath(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrEmptySocketPath)
}

func TestEvaluate_Accepted(t *testing.T) {
	client, _, _ := startServer(t)

	resp, err := client.Evaluate(context.Background(), ownershipRequest(t, commitment))
	require.NoError(t, err)

	assert.Equal(t, statement.KindOwnership, resp.Statement)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, prover.ReceiptID(statement.KindOwnership, resp.PublicValues), resp.ReceiptID)

	out, ok := resp.Output.(statement.OwnershipOutput)
	require.True(t, ok)
	assert.Equal(t, commitment, out.Commitment)
	assert.Equal(t, statement.NullifierHash(nullifier), out.NullifierHash)
}

func TestEvaluate_Rejected(t *testing.T) {
	client, _, _ := startServer(t)

	_, err := client.Evaluate(context.Background(), ownershipRequest(t, common.Hash{0xaa}))
	require.Error(t, err)
	assert.ErrorIs(t, err, statement.WitnessMismatch)

	var rej *statement.Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "commitment", rej.Check)
	assert.NotEmpty(t, rej.Detail)
}

func TestEvaluate_TradeAmountsSurviveTransport(t *testing.T) {
	client, _, _ := startServer(t)

	// Above 2^53, where float64 numbers would lose precision.
	params := map[string]any{
		"secret":      secret.Hex(),
		"nullifier":   nullifier.Hex(),
		"commitment":  commitment.Hex(),
		"fromBalance": "18446744073709551615",
		"toBalance":   "0",
		"fromAsset":   "0",
		"toAsset":     "1",
		"fromAmount":  "9007199254740993",
		"minToAmount": "1",
	}
	raw, err := json.Marshal(params)
	require.NoError(t, err)

	resp, err := client.Evaluate(context.Background(), prover.Request{Statement: "trade", Params: raw})
	require.NoError(t, err)
	assert.Equal(t, uint64(9007199254740993), resp.Output.(statement.TradeOutput).FromAmount)
}

func TestEvaluate_UnquotedNumbersKeepPrecision(t *testing.T) {
	client, _, _ := startServer(t)
	ctx := context.Background()

	raw := json.RawMessage(`{
		"secret": "` + secret.Hex() + `",
		"nullifier": "` + nullifier.Hex() + `",
		"commitment": "` + commitment.Hex() + `",
		"fromBalance": 18446744073709551615,
		"toBalance": 0,
		"fromAsset": 0,
		"toAsset": 1,
		"fromAmount": 9007199254740993,
		"minToAmount": 1
	}`)
	resp, err := client.Evaluate(ctx, prover.Request{Statement: "trade", Params: raw})
	require.NoError(t, err)
	assert.Equal(t, uint64(9007199254740993), resp.Output.(statement.TradeOutput).FromAmount)

	// A position of 2^53 does not meet a minimum of 2^53+1.
	leaf := statement.BalanceLeaf(commitment, 0, 1<<53)
	raw = json.RawMessage(`{
		"secret": "` + secret.Hex() + `",
		"nullifier": "` + nullifier.Hex() + `",
		"commitment": "` + commitment.Hex() + `",
		"actualBalance": 9007199254740992,
		"balanceLeaf": "` + leaf.Hex() + `",
		"merklePath": [],
		"merkleIndices": [],
		"merkleRoot": "` + leaf.Hex() + `",
		"minBalance": 9007199254740993,
		"assetId": 0
	}`)
	_, err = client.Evaluate(ctx, prover.Request{Statement: "balance", Params: raw})
	assert.ErrorIs(t, err, statement.ConstraintViolation)
}

func TestEvaluate_ServiceErrors(t *testing.T) {
	client, _, _ := startServer(t)
	ctx := context.Background()

	_, err := client.Evaluate(ctx, prover.Request{Statement: "solvency", Params: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, prover.ErrUnknownStatement)

	_, err = client.Evaluate(ctx, prover.Request{Statement: "ownership"})
	assert.ErrorIs(t, err, prover.ErrInvalidParams)

	req := ownershipRequest(t, commitment)
	req.Prove = true
	_, err = client.Evaluate(ctx, req)
	assert.ErrorIs(t, err, prover.ErrProvingDisabled)

	_, err = client.VerifyOwnership(ctx, []byte{1}, make([]byte, 64))
	assert.ErrorIs(t, err, prover.ErrProvingDisabled)
}

func TestStatus(t *testing.T) {
	client, svc, _ := startServer(t)
	ctx := context.Background()

	_, err := client.Evaluate(ctx, ownershipRequest(t, commitment))
	require.NoError(t, err)

	stats, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Evaluated)
	assert.Equal(t, svc.Registry().Root(), stats.SanctionsRoot)
	assert.Equal(t, 3, stats.SanctionsTotal)
	assert.False(t, stats.ProvingEnabled)
	assert.WithinDuration(t, svc.Registry().UpdatedAt(), stats.SanctionsUpdatedAt, time.Millisecond)
}

func TestSanctions(t *testing.T) {
	client, svc, _ := startServer(t)
	ctx := context.Background()

	report, err := client.Sanctions(ctx, sanctions.DefaultAddresses[1])
	require.NoError(t, err)
	assert.True(t, report.Sanctioned)
	assert.Equal(t, sanctions.DefaultAddresses[1], report.Address)

	clean := common.HexToAddress("0x1111111111111111111111111111111111111111")
	report, err = client.Sanctions(ctx, clean)
	require.NoError(t, err)
	assert.False(t, report.Sanctioned)

	root, err := svc.Registry().Add(clean)
	require.NoError(t, err)
	report, err = client.Sanctions(ctx, clean)
	require.NoError(t, err)
	assert.True(t, report.Sanctioned)
	assert.Equal(t, root, report.Root)
	assert.Equal(t, 4, report.Total)
}

func TestClient_NoServer(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = client.Status(ctx)
	assert.Error(t, err)
}
