package ipc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/innocence-protocol/innocence/internal/prover"
	"github.com/innocence-protocol/innocence/pkg/sanctions"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

// Backend is the statement service behind the server.
type Backend interface {
	Evaluate(ctx context.Context, req prover.Request) (*prover.Response, error)
	VerifyOwnership(ctx context.Context, proof, publicValues []byte) (statement.OwnershipOutput, error)
	Stats() prover.Stats
	Sanctions(addr common.Address) sanctions.StatusReport
}

// Server is the IPC gRPC server.
type Server struct {
	sockPath string
	backend  Backend
	grpc     *grpc.Server
	listener net.Listener
	logger   *slog.Logger
}

// NewServer listens on a unix socket at sockPath. An existing socket file
// is replaced.
func NewServer(sockPath string, backend Backend, logger *slog.Logger) (*Server, error) {
	if sockPath == "" {
		return nil, ErrEmptySocketPath
	}
	if logger == nil {
		logger = slog.Default()
	}

	os.Remove(sockPath)

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(sockPath, 0600); err != nil {
		listener.Close()
		return nil, err
	}

	s := &Server{
		sockPath: sockPath,
		backend:  backend,
		grpc:     grpc.NewServer(),
		listener: listener,
		logger:   logger,
	}
	s.grpc.RegisterService(&serviceDesc, s)

	return s, nil
}

// Start begins serving requests. It blocks until Stop.
func (s *Server) Start() error {
	return s.grpc.Serve(s.listener)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
	os.Remove(s.sockPath)
}

// proverServer is the handler type of serviceDesc.
type proverServer interface {
	evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	verify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	status(context.Context, *structpb.Struct) (*structpb.Struct, error)
	sanctions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*proverServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler(methodEvaluate, proverServer.evaluate)},
		{MethodName: "Verify", Handler: unaryHandler(methodVerify, proverServer.verify)},
		{MethodName: "Status", Handler: unaryHandler(methodStatus, proverServer.status)},
		{MethodName: "Sanctions", Handler: unaryHandler(methodSanctions, proverServer.sanctions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "innocence/ipc",
}

func unaryHandler(
	method string,
	call func(proverServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(proverServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(proverServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func (s *Server) evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req evaluateRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.backend.Evaluate(ctx, req.request())
	if err != nil {
		var rej *statement.Rejection
		if errors.As(err, &rej) {
			return toStruct(evaluateReply{Rejection: &rejection{
				Reason: rej.Reason,
				Check:  rej.Check,
				Detail: rej.Detail,
			}})
		}
		return nil, toStatus(err)
	}
	return toStruct(evaluateReply{Response: resp})
}

func (s *Server) verify(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req verifyRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out, err := s.backend.VerifyOwnership(ctx, req.Proof, req.PublicValues)
	if err != nil {
		if _, ok := statement.ReasonOf(err); ok {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, toStatus(err)
	}
	return toStruct(verifyReply{Commitment: out.Commitment, NullifierHash: out.NullifierHash})
}

func (s *Server) status(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.backend.Stats())
}

func (s *Server) sanctions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req sanctionsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return toStruct(s.backend.Sanctions(req.Address))
}

// toStatus maps service errors to gRPC codes. The message keeps the
// ServiceError prefix so clients can recover it.
func toStatus(err error) error {
	var se prover.ServiceError
	if !errors.As(err, &se) {
		return status.Error(codes.Internal, err.Error())
	}
	switch se {
	case prover.ErrUnknownStatement, prover.ErrInvalidParams, prover.ErrProvingUnsupported:
		return status.Error(codes.InvalidArgument, err.Error())
	case prover.ErrProvingDisabled:
		return status.Error(codes.FailedPrecondition, err.Error())
	case prover.ErrProofTimeout:
		return status.Error(codes.DeadlineExceeded, err.Error())
	case prover.ErrProofVerificationFailed:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
