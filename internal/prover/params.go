package prover

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/innocence-protocol/innocence/pkg/merkle"
	"github.com/innocence-protocol/innocence/pkg/statement"
)

// Amounts are quoted decimal or 0x-hex strings so they survive transports
// that carry numbers as float64.

// OwnershipParams are the inputs of an ownership request.
type OwnershipParams struct {
	Secret     common.Hash `json:"secret"`
	Nullifier  common.Hash `json:"nullifier"`
	Commitment common.Hash `json:"commitment"`
}

// BalanceParams are the inputs of a balance request.
type BalanceParams struct {
	Secret        common.Hash         `json:"secret"`
	Nullifier     common.Hash         `json:"nullifier"`
	ActualBalance math.HexOrDecimal64 `json:"actualBalance"`
	BalanceLeaf   common.Hash         `json:"balanceLeaf"`
	MerklePath    []common.Hash       `json:"merklePath"`
	MerkleIndices []bool              `json:"merkleIndices"`
	Commitment    common.Hash         `json:"commitment"`
	MerkleRoot    common.Hash         `json:"merkleRoot"`
	MinBalance    math.HexOrDecimal64 `json:"minBalance"`
	AssetID       math.HexOrDecimal64 `json:"assetId"`
}

// ComplianceParams are the inputs of a compliance request. Signature is
// the 65-byte [R || S || V] encoding.
type ComplianceParams struct {
	Secret              common.Hash         `json:"secret"`
	Nullifier           common.Hash         `json:"nullifier"`
	CertificateData     hexutil.Bytes       `json:"certificateData"`
	Signature           hexutil.Bytes       `json:"signature"`
	Commitment          common.Hash         `json:"commitment"`
	ComplianceAuthority common.Address      `json:"complianceAuthority"`
	ValidUntil          math.HexOrDecimal64 `json:"validUntil"`
	CurrentTimestamp    math.HexOrDecimal64 `json:"currentTimestamp"`
}

// InnocenceParams are the inputs of an innocence request.
type InnocenceParams struct {
	Depositor     common.Address      `json:"depositor"`
	SanctionsRoot common.Hash         `json:"sanctionsRoot"`
	Timestamp     math.HexOrDecimal64 `json:"timestamp"`
}

// TradeParams are the inputs of a trade request.
type TradeParams struct {
	Secret      common.Hash         `json:"secret"`
	Nullifier   common.Hash         `json:"nullifier"`
	FromBalance math.HexOrDecimal64 `json:"fromBalance"`
	ToBalance   math.HexOrDecimal64 `json:"toBalance"`
	Commitment  common.Hash         `json:"commitment"`
	FromAsset   math.HexOrDecimal64 `json:"fromAsset"`
	ToAsset     math.HexOrDecimal64 `json:"toAsset"`
	FromAmount  math.HexOrDecimal64 `json:"fromAmount"`
	MinToAmount math.HexOrDecimal64 `json:"minToAmount"`
}

func (p OwnershipParams) split() (statement.OwnershipWitness, statement.OwnershipClaim) {
	return statement.OwnershipWitness{Secret: p.Secret, Nullifier: p.Nullifier},
		statement.OwnershipClaim{Commitment: p.Commitment}
}

func (p BalanceParams) split() (statement.BalanceWitness, statement.BalanceClaim) {
	w := statement.BalanceWitness{
		Secret:        p.Secret,
		Nullifier:     p.Nullifier,
		ActualBalance: uint64(p.ActualBalance),
		Proof: merkle.Proof{
			Leaf:    p.BalanceLeaf,
			Path:    p.MerklePath,
			Indices: p.MerkleIndices,
		},
	}
	c := statement.BalanceClaim{
		Commitment: p.Commitment,
		MerkleRoot: p.MerkleRoot,
		MinBalance: uint64(p.MinBalance),
		AssetID:    uint64(p.AssetID),
	}
	return w, c
}

func (p ComplianceParams) split() (statement.ComplianceWitness, statement.ComplianceClaim, error) {
	sig, ok := statement.SignatureFromBytes(p.Signature)
	if !ok {
		return statement.ComplianceWitness{}, statement.ComplianceClaim{},
			fmt.Errorf("signature must be 65 bytes, got %d", len(p.Signature))
	}
	w := statement.ComplianceWitness{
		Secret:          p.Secret,
		Nullifier:       p.Nullifier,
		CertificateData: p.CertificateData,
		Signature:       sig,
	}
	c := statement.ComplianceClaim{
		Commitment:          p.Commitment,
		ComplianceAuthority: p.ComplianceAuthority,
		ValidUntil:          uint64(p.ValidUntil),
		CurrentTimestamp:    uint64(p.CurrentTimestamp),
	}
	return w, c, nil
}

func (p InnocenceParams) claim() statement.InnocenceClaim {
	return statement.InnocenceClaim{
		Depositor:     p.Depositor,
		SanctionsRoot: p.SanctionsRoot,
		Timestamp:     uint64(p.Timestamp),
	}
}

func (p TradeParams) split() (statement.TradeWitness, statement.TradeClaim) {
	w := statement.TradeWitness{
		Secret:      p.Secret,
		Nullifier:   p.Nullifier,
		FromBalance: uint64(p.FromBalance),
		ToBalance:   uint64(p.ToBalance),
	}
	c := statement.TradeClaim{
		Commitment:  p.Commitment,
		FromAsset:   uint64(p.FromAsset),
		ToAsset:     uint64(p.ToAsset),
		FromAmount:  uint64(p.FromAmount),
		MinToAmount: uint64(p.MinToAmount),
	}
	return w, c
}

// decodeParams strictly decodes raw into v.
func decodeParams(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%w: missing params", ErrInvalidParams)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
