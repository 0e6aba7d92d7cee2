// Package prover evaluates statement requests for the daemon.
//
// Service decodes request parameters, runs the matching statement
// predicate, encodes the public values and, for ownership requests with
// proving enabled, generates a PLONK proof. Concurrent evaluations are
// bounded by a worker pool and each request runs under a deadline.
//
// Service is safe for concurrent use. Metrics are tracked atomically.
package prover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/innocence-protocol/innocence/internal/config"
	"github.com/innocence-protocol/innocence/pkg/digest"
	"github.com/innocence-protocol/innocence/pkg/publicvalues"
	"github.com/innocence-protocol/innocence/pkg/sanctions"
	"github.com/innocence-protocol/innocence/pkg/statement"
	"github.com/innocence-protocol/innocence/pkg/zkproof"
)

// Options configures a Service.
type Options struct {
	// Registry answers innocence requests. Required.
	Registry *sanctions.Registry

	// Verifier checks compliance certificate signatures. Nil rejects every
	// compliance request as structurally invalid.
	Verifier statement.SignatureVerifier

	// Compiled enables ownership proofs when non-nil.
	Compiled *zkproof.CompiledCircuit

	Workers int
	Timeout time.Duration
	Logger  *slog.Logger
}

// Request asks the service to evaluate one statement.
type Request struct {
	// ID correlates logs; a UUID is assigned when empty.
	ID        string          `json:"id,omitempty"`
	Statement string          `json:"statement"`
	Params    json.RawMessage `json:"params"`
	Prove     bool            `json:"prove,omitempty"`
}

// Response is the result of an accepted statement.
type Response struct {
	ID        string         `json:"id"`
	Statement statement.Kind `json:"statement"`

	// PublicValues is the ABI record of the output.
	PublicValues hexutil.Bytes `json:"publicValues"`

	// Proof is set when a proof was requested.
	Proof hexutil.Bytes `json:"proof,omitempty"`

	// ReceiptID names the public record: base58 of Hash(statement, publicValues).
	ReceiptID string `json:"receiptId"`

	Output statement.Output `json:"-"`
}

// Stats is a snapshot of service metrics and sanctions state.
type Stats struct {
	Evaluated          uint64      `json:"evaluated"`
	Rejected           uint64      `json:"rejected"`
	Failed             uint64      `json:"failed"`
	ProofsGenerated    uint64      `json:"proofsGenerated"`
	ProofsVerified     uint64      `json:"proofsVerified"`
	ProvingEnabled     bool        `json:"provingEnabled"`
	SanctionsRoot      common.Hash `json:"sanctionsRoot"`
	SanctionsTotal     int         `json:"sanctionsTotal"`
	SanctionsUpdatedAt time.Time   `json:"sanctionsUpdatedAt"`
}

// Service evaluates statements.
type Service struct {
	registry *sanctions.Registry
	verifier statement.SignatureVerifier
	prover   *zkproof.Prover
	checker  *zkproof.Verifier
	timeout  time.Duration
	slots    chan struct{}
	logger   *slog.Logger

	evaluated       atomic.Uint64
	rejected        atomic.Uint64
	failed          atomic.Uint64
	proofsGenerated atomic.Uint64
	proofsVerified  atomic.Uint64
}

// NewService creates a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Registry == nil {
		return nil, errors.New("prover: registry is required")
	}
	if opts.Workers < 1 {
		return nil, fmt.Errorf("prover: workers must be positive, got %d", opts.Workers)
	}
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("prover: timeout must be positive, got %v", opts.Timeout)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		registry: opts.Registry,
		verifier: opts.Verifier,
		timeout:  opts.Timeout,
		slots:    make(chan struct{}, opts.Workers),
		logger:   logger,
	}
	if opts.Compiled != nil {
		s.prover = zkproof.NewProver(opts.Compiled)
		s.checker = zkproof.NewVerifier(opts.Compiled)
	}
	return s, nil
}

// VerifierByName returns the signature verifier selected in configuration.
func VerifierByName(name string) (statement.SignatureVerifier, error) {
	switch name {
	case config.VerifierECDSA:
		return statement.ECDSAVerifier{}, nil
	case config.VerifierSanity:
		return statement.SanityVerifier{}, nil
	default:
		return nil, fmt.Errorf("prover: unknown verifier %q", name)
	}
}

// ProvingEnabled reports whether ownership proofs can be generated.
func (s *Service) ProvingEnabled() bool {
	return s.prover != nil
}

// Registry returns the sanctions registry the service evaluates against.
func (s *Service) Registry() *sanctions.Registry {
	return s.registry
}

// Evaluate runs one request. A statement that does not hold returns its
// *statement.Rejection; other failures wrap a ServiceError.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	logger := s.logger.With("request_id", req.ID, "statement", req.Statement)

	kind, err := statement.ParseKind(req.Statement)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatement, req.Statement)
	}
	if req.Prove {
		if kind != statement.KindOwnership {
			return nil, fmt.Errorf("%w: %s", ErrProvingUnsupported, kind)
		}
		if s.prover == nil {
			return nil, ErrProvingDisabled
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.evaluated.Add(1)

	var (
		out   statement.Output
		proof []byte
	)
	if req.Prove {
		out, proof, err = s.prove(ctx, req.Params)
	} else {
		out, err = s.evaluate(ctx, kind, req.Params)
	}
	if err != nil {
		if reason, ok := statement.ReasonOf(err); ok {
			s.rejected.Add(1)
			logger.Info("statement rejected", "reason", reason, "error", err)
		} else {
			s.failed.Add(1)
			logger.Warn("evaluation failed", "error", err)
		}
		return nil, err
	}

	values, err := publicvalues.Encode(out)
	if err != nil {
		s.failed.Add(1)
		return nil, fmt.Errorf("encode public values: %w", err)
	}

	resp := &Response{
		ID:           req.ID,
		Statement:    kind,
		PublicValues: values,
		Proof:        proof,
		ReceiptID:    ReceiptID(kind, values),
		Output:       out,
	}
	logger.Info("statement accepted",
		"receipt_id", resp.ReceiptID,
		"proved", proof != nil,
		"duration", time.Since(start),
	)
	return resp, nil
}

// ReceiptID derives the receipt identifier of a public record.
func ReceiptID(kind statement.Kind, publicValues []byte) string {
	sum := digest.Sum([]byte(kind), publicValues)
	return base58.Encode(sum[:])
}

func (s *Service) acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for worker: %v", ErrProofTimeout, ctx.Err())
	}
}

func (s *Service) evaluate(ctx context.Context, kind statement.Kind, raw json.RawMessage) (statement.Output, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer func() { <-s.slots }()
	return s.dispatch(kind, raw)
}

func (s *Service) dispatch(kind statement.Kind, raw json.RawMessage) (statement.Output, error) {
	switch kind {
	case statement.KindOwnership:
		var p OwnershipParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		out, err := statement.Ownership(p.split())
		if err != nil {
			return nil, err
		}
		return out, nil

	case statement.KindBalance:
		var p BalanceParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		out, err := statement.Balance(p.split())
		if err != nil {
			return nil, err
		}
		return out, nil

	case statement.KindCompliance:
		var p ComplianceParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		w, c, err := p.split()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		out, err := statement.Compliance(w, c, s.verifier)
		if err != nil {
			return nil, err
		}
		return out, nil

	case statement.KindInnocence:
		var p InnocenceParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		out, err := statement.Innocence(p.claim(), s.registry)
		if err != nil {
			return nil, err
		}
		return out, nil

	case statement.KindTrade:
		var p TradeParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		out, err := statement.Trade(p.split())
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStatement, kind)
}

type proofResult struct {
	result *zkproof.ProofResult
	err    error
}

// prove runs the ownership prover in its own goroutine, which owns the
// worker slot until the proof completes even if ctx expires first.
func (s *Service) prove(ctx context.Context, raw json.RawMessage) (statement.Output, []byte, error) {
	var p OwnershipParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, nil, err
	}
	w, c := p.split()

	if err := s.acquire(ctx); err != nil {
		return nil, nil, err
	}
	done := make(chan proofResult, 1)
	go func() {
		defer func() { <-s.slots }()
		r, err := s.prover.Prove(w, c)
		done <- proofResult{result: r, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if _, ok := statement.ReasonOf(r.err); ok {
				return nil, nil, r.err
			}
			return nil, nil, fmt.Errorf("%w: %v", ErrProofGenerationFailed, r.err)
		}
		s.proofsGenerated.Add(1)
		return r.result.Output, r.result.Proof, nil
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w: %v", ErrProofTimeout, ctx.Err())
	}
}

// VerifyOwnership checks an ownership proof against its ABI public values.
func (s *Service) VerifyOwnership(ctx context.Context, proof, publicValues []byte) (statement.OwnershipOutput, error) {
	if s.checker == nil {
		return statement.OwnershipOutput{}, ErrProvingDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.acquire(ctx); err != nil {
		return statement.OwnershipOutput{}, err
	}
	defer func() { <-s.slots }()

	out, err := s.checker.Verify(proof, publicValues)
	if err != nil {
		if _, ok := statement.ReasonOf(err); ok {
			return statement.OwnershipOutput{}, err
		}
		s.failed.Add(1)
		return statement.OwnershipOutput{}, fmt.Errorf("%w: %v", ErrProofVerificationFailed, err)
	}
	s.proofsVerified.Add(1)
	return out, nil
}

// Stats returns current metrics.
func (s *Service) Stats() Stats {
	list := s.registry.Current()
	return Stats{
		Evaluated:          s.evaluated.Load(),
		Rejected:           s.rejected.Load(),
		Failed:             s.failed.Load(),
		ProofsGenerated:    s.proofsGenerated.Load(),
		ProofsVerified:     s.proofsVerified.Load(),
		ProvingEnabled:     s.ProvingEnabled(),
		SanctionsRoot:      list.Root(),
		SanctionsTotal:     list.Len(),
		SanctionsUpdatedAt: s.registry.UpdatedAt(),
	}
}

// Sanctions reports addr against the current sanctions snapshot.
func (s *Service) Sanctions(addr common.Address) sanctions.StatusReport {
	return s.registry.Report(addr)
}
