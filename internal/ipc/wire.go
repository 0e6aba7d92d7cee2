package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/innocence-protocol/innocence/internal/prover"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

// Messages travel as google.protobuf.Struct. Struct numbers are float64, so
// request params travel verbatim as one string field.

const serviceName = "innocence.ipc.Prover"

// Method paths.
const (
	methodEvaluate  = "/" + serviceName + "/Evaluate"
	methodVerify    = "/" + serviceName + "/Verify"
	methodStatus    = "/" + serviceName + "/Status"
	methodSanctions = "/" + serviceName + "/Sanctions"
)

type evaluateRequest struct {
	ID        string `json:"id,omitempty"`
	Statement string `json:"statement"`
	Params    string `json:"params"`
	Prove     bool   `json:"prove,omitempty"`
}

func newEvaluateRequest(req prover.Request) evaluateRequest {
	return evaluateRequest{
		ID:        req.ID,
		Statement: req.Statement,
		Params:    string(req.Params),
		Prove:     req.Prove,
	}
}

func (r evaluateRequest) request() prover.Request {
	req := prover.Request{ID: r.ID, Statement: r.Statement, Prove: r.Prove}
	if r.Params != "" {
		req.Params = json.RawMessage(r.Params)
	}
	return req
}

// evaluateReply carries either an accepted response or a rejection.
type evaluateReply struct {
	Response  *prover.Response `json:"response,omitempty"`
	Rejection *rejection       `json:"rejection,omitempty"`
}

type rejection struct {
	Reason statement.Reason `json:"reason"`
	Check  string           `json:"check"`
	Detail string           `json:"detail,omitempty"`
}

type verifyRequest struct {
	Proof        hexutil.Bytes `json:"proof"`
	PublicValues hexutil.Bytes `json:"publicValues"`
}

type verifyReply struct {
	Commitment    common.Hash `json:"commitment"`
	NullifierHash common.Hash `json:"nullifierHash"`
}

type sanctionsRequest struct {
	Address common.Address `json:"address"`
}

type empty struct{}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ipc: encode message: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ipc: encode message: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("ipc: encode message: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("ipc: decode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ipc: decode message: %w", err)
	}
	return nil
}
