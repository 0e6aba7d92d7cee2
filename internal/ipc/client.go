package ipc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/innocence-protocol/innocence/internal/prover"
	"github.com/innocence-protocol/innocence/pkg/publicvalues"
	"github.com/innocence-protocol/innocence/pkg/sanctions"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

// DefaultRPCTimeout bounds calls that do not generate proofs.
const DefaultRPCTimeout = 5 * time.Second

// ErrEmptySocketPath is returned when an empty socket path is provided.
var ErrEmptySocketPath = errors.New("socket path cannot be empty")

// Client is the IPC client for the prover daemon.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient creates a client for the daemon listening at sockPath. The
// connection is established lazily on the first call.
func NewClient(sockPath string) (*Client, error) {
	if sockPath == "" {
		return nil, ErrEmptySocketPath
	}

	conn, err := grpc.NewClient(
		"unix://"+sockPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IPC socket: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	req, err := toStruct(in)
	if err != nil {
		return err
	}
	reply := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, reply); err != nil {
		return fromStatus(err)
	}
	return fromStruct(reply, out)
}

// fromStatus restores the ServiceError carried in a status message.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if se, ok := prover.ParseServiceError(st.Message()); ok {
		return fmt.Errorf("%w%s", se, st.Message()[len(se):])
	}
	return fmt.Errorf("%s: %s", st.Code(), st.Message())
}

// Evaluate sends req to the daemon. A rejected statement is returned as a
// *statement.Rejection. The response's Output is decoded from its public
// values.
func (c *Client) Evaluate(ctx context.Context, req prover.Request) (*prover.Response, error) {
	var reply evaluateReply
	if err := c.call(ctx, methodEvaluate, newEvaluateRequest(req), &reply); err != nil {
		return nil, err
	}
	if reply.Rejection != nil {
		return nil, &statement.Rejection{
			Reason: reply.Rejection.Reason,
			Check:  reply.Rejection.Check,
			Detail: reply.Rejection.Detail,
		}
	}
	if reply.Response == nil {
		return nil, errors.New("Evaluate RPC returned empty reply")
	}

	out, err := publicvalues.Decode(reply.Response.Statement, reply.Response.PublicValues)
	if err != nil {
		return nil, fmt.Errorf("decode public values: %w", err)
	}
	reply.Response.Output = out
	return reply.Response, nil
}

// VerifyOwnership asks the daemon to check an ownership proof.
func (c *Client) VerifyOwnership(ctx context.Context, proof, publicValues []byte) (statement.OwnershipOutput, error) {
	var reply verifyReply
	if err := c.call(ctx, methodVerify, verifyRequest{Proof: proof, PublicValues: publicValues}, &reply); err != nil {
		return statement.OwnershipOutput{}, err
	}
	return statement.OwnershipOutput{Commitment: reply.Commitment, NullifierHash: reply.NullifierHash}, nil
}

// Status retrieves daemon metrics and the sanctions snapshot in use.
func (c *Client) Status(ctx context.Context) (prover.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultRPCTimeout)
	defer cancel()

	var stats prover.Stats
	if err := c.call(ctx, methodStatus, empty{}, &stats); err != nil {
		return prover.Stats{}, fmt.Errorf("Status RPC failed: %w", err)
	}
	return stats, nil
}

// Sanctions reports addr against the daemon's sanctions snapshot.
func (c *Client) Sanctions(ctx context.Context, addr common.Address) (sanctions.StatusReport, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultRPCTimeout)
	defer cancel()

	var report sanctions.StatusReport
	if err := c.call(ctx, methodSanctions, sanctionsRequest{Address: addr}, &report); err != nil {
		return sanctions.StatusReport{}, fmt.Errorf("Sanctions RPC failed: %w", err)
	}
	return report, nil
}
