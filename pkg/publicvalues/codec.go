// Package publicvalues encodes statement outputs into the Solidity ABI
// tuples that on-chain verifiers decode, and decodes them back.
//
// All layouts are static: one 32-byte word per field. 64-bit amounts and
// timestamps are widened to uint256 by zero extension; asset ids stay
// uint64 as in the verifier contracts.
//
//	ownership  (bytes32 commitment, bytes32 nullifierHash)
//	balance    (bytes32 commitment, bytes32 merkleRoot, uint256 minBalance, uint64 assetId)
//	compliance (bytes32 commitment, address complianceAuthority, uint256 validUntil, bytes32 certificateHash)
//	innocence  (address depositor, bytes32 sanctionsRoot, uint256 timestamp, bool isInnocent)
//	trade      (bytes32 commitment, uint64 fromAsset, uint64 toAsset, uint256 fromAmount, uint256 minToAmount)
package publicvalues

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/innocence-protocol/innocence/pkg/statement"
)

// WordSize is the width of one ABI word.
const WordSize = 32

// Addresses are right-aligned in their word; the leading bytes must be zero.
const addressPadding = WordSize - common.AddressLength

var zeroPadding = make([]byte, addressPadding)

var (
	bytes32Type = mustType("bytes32")
	addressType = mustType("address")
	uint256Type = mustType("uint256")
	uint64Type  = mustType("uint64")
	boolType    = mustType("bool")
)

var layouts = map[statement.Kind]abi.Arguments{
	statement.KindOwnership: {
		{Name: "commitment", Type: bytes32Type},
		{Name: "nullifierHash", Type: bytes32Type},
	},
	statement.KindBalance: {
		{Name: "commitment", Type: bytes32Type},
		{Name: "merkleRoot", Type: bytes32Type},
		{Name: "minBalance", Type: uint256Type},
		{Name: "assetId", Type: uint64Type},
	},
	statement.KindCompliance: {
		{Name: "commitment", Type: bytes32Type},
		{Name: "complianceAuthority", Type: addressType},
		{Name: "validUntil", Type: uint256Type},
		{Name: "certificateHash", Type: bytes32Type},
	},
	statement.KindInnocence: {
		{Name: "depositor", Type: addressType},
		{Name: "sanctionsRoot", Type: bytes32Type},
		{Name: "timestamp", Type: uint256Type},
		{Name: "isInnocent", Type: boolType},
	},
	statement.KindTrade: {
		{Name: "commitment", Type: bytes32Type},
		{Name: "fromAsset", Type: uint64Type},
		{Name: "toAsset", Type: uint64Type},
		{Name: "fromAmount", Type: uint256Type},
		{Name: "minToAmount", Type: uint256Type},
	},
}

func mustType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(fmt.Sprintf("publicvalues: abi type %s: %v", name, err))
	}
	return t
}

// Size returns the encoded length of kind's record, or 0 for an unknown kind.
func Size(kind statement.Kind) int {
	return len(layouts[kind]) * WordSize
}

// Fields returns the ABI field names of kind's record in wire order.
func Fields(kind statement.Kind) []string {
	args := layouts[kind]
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return names
}

// Encode serializes a statement output.
func Encode(out statement.Output) ([]byte, error) {
	switch o := out.(type) {
	case statement.OwnershipOutput:
		return EncodeOwnership(o)
	case statement.BalanceOutput:
		return EncodeBalance(o)
	case statement.ComplianceOutput:
		return EncodeCompliance(o)
	case statement.InnocenceOutput:
		return EncodeInnocence(o)
	case statement.TradeOutput:
		return EncodeTrade(o)
	default:
		return nil, fmt.Errorf("publicvalues: unsupported output %T", out)
	}
}

// Decode parses a record of the given kind.
func Decode(kind statement.Kind, data []byte) (statement.Output, error) {
	switch kind {
	case statement.KindOwnership:
		return DecodeOwnership(data)
	case statement.KindBalance:
		return DecodeBalance(data)
	case statement.KindCompliance:
		return DecodeCompliance(data)
	case statement.KindInnocence:
		return DecodeInnocence(data)
	case statement.KindTrade:
		return DecodeTrade(data)
	default:
		return nil, statement.Reject(statement.StructuralError, "record_kind", "unsupported kind %q", kind)
	}
}

func EncodeOwnership(o statement.OwnershipOutput) ([]byte, error) {
	return pack(statement.KindOwnership, [32]byte(o.Commitment), [32]byte(o.NullifierHash))
}

func DecodeOwnership(data []byte) (statement.OwnershipOutput, error) {
	vals, err := unpack(statement.KindOwnership, data)
	if err != nil {
		return statement.OwnershipOutput{}, err
	}
	return statement.OwnershipOutput{
		Commitment:    common.Hash(vals[0].([32]byte)),
		NullifierHash: common.Hash(vals[1].([32]byte)),
	}, nil
}

func EncodeBalance(o statement.BalanceOutput) ([]byte, error) {
	return pack(statement.KindBalance,
		[32]byte(o.Commitment), [32]byte(o.MerkleRoot), widen(o.MinBalance), o.AssetID)
}

func DecodeBalance(data []byte) (statement.BalanceOutput, error) {
	vals, err := unpack(statement.KindBalance, data)
	if err != nil {
		return statement.BalanceOutput{}, err
	}
	minBalance, err := narrow("minBalance", vals[2])
	if err != nil {
		return statement.BalanceOutput{}, err
	}
	return statement.BalanceOutput{
		Commitment: common.Hash(vals[0].([32]byte)),
		MerkleRoot: common.Hash(vals[1].([32]byte)),
		MinBalance: minBalance,
		AssetID:    vals[3].(uint64),
	}, nil
}

func EncodeCompliance(o statement.ComplianceOutput) ([]byte, error) {
	return pack(statement.KindCompliance,
		[32]byte(o.Commitment), o.ComplianceAuthority, widen(o.ValidUntil), [32]byte(o.CertificateHash))
}

func DecodeCompliance(data []byte) (statement.ComplianceOutput, error) {
	vals, err := unpack(statement.KindCompliance, data)
	if err != nil {
		return statement.ComplianceOutput{}, err
	}
	validUntil, err := narrow("validUntil", vals[2])
	if err != nil {
		return statement.ComplianceOutput{}, err
	}
	return statement.ComplianceOutput{
		Commitment:          common.Hash(vals[0].([32]byte)),
		ComplianceAuthority: vals[1].(common.Address),
		ValidUntil:          validUntil,
		CertificateHash:     common.Hash(vals[3].([32]byte)),
	}, nil
}

func EncodeInnocence(o statement.InnocenceOutput) ([]byte, error) {
	return pack(statement.KindInnocence,
		o.Depositor, [32]byte(o.SanctionsRoot), widen(o.Timestamp), o.IsInnocent)
}

func DecodeInnocence(data []byte) (statement.InnocenceOutput, error) {
	vals, err := unpack(statement.KindInnocence, data)
	if err != nil {
		return statement.InnocenceOutput{}, err
	}
	timestamp, err := narrow("timestamp", vals[2])
	if err != nil {
		return statement.InnocenceOutput{}, err
	}
	return statement.InnocenceOutput{
		Depositor:     vals[0].(common.Address),
		SanctionsRoot: common.Hash(vals[1].([32]byte)),
		Timestamp:     timestamp,
		IsInnocent:    vals[3].(bool),
	}, nil
}

func EncodeTrade(o statement.TradeOutput) ([]byte, error) {
	return pack(statement.KindTrade,
		[32]byte(o.Commitment), o.FromAsset, o.ToAsset, widen(o.FromAmount), widen(o.MinToAmount))
}

func DecodeTrade(data []byte) (statement.TradeOutput, error) {
	vals, err := unpack(statement.KindTrade, data)
	if err != nil {
		return statement.TradeOutput{}, err
	}
	fromAmount, err := narrow("fromAmount", vals[3])
	if err != nil {
		return statement.TradeOutput{}, err
	}
	minToAmount, err := narrow("minToAmount", vals[4])
	if err != nil {
		return statement.TradeOutput{}, err
	}
	return statement.TradeOutput{
		Commitment:  common.Hash(vals[0].([32]byte)),
		FromAsset:   vals[1].(uint64),
		ToAsset:     vals[2].(uint64),
		FromAmount:  fromAmount,
		MinToAmount: minToAmount,
	}, nil
}

func pack(kind statement.Kind, values ...any) ([]byte, error) {
	data, err := layouts[kind].Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("publicvalues: encode %s: %w", kind, err)
	}
	return data, nil
}

// unpack insists on the exact record length so that truncated or padded
// input never yields a partially populated record.
func unpack(kind statement.Kind, data []byte) ([]any, error) {
	if want := Size(kind); len(data) != want {
		return nil, statement.Reject(statement.StructuralError, "record_length",
			"%s record is %d bytes, got %d", kind, want, len(data))
	}
	for i, arg := range layouts[kind] {
		if arg.Type.T != abi.AddressTy {
			continue
		}
		pad := data[i*WordSize : i*WordSize+addressPadding]
		if !bytes.Equal(pad, zeroPadding) {
			return nil, statement.Reject(statement.StructuralError, arg.Name,
				"address word has non-zero padding")
		}
	}
	vals, err := layouts[kind].Unpack(data)
	if err != nil {
		return nil, statement.Reject(statement.StructuralError, "record_encoding", "%s: %v", kind, err)
	}
	return vals, nil
}

func widen(v uint64) *big.Int {
	return uint256.NewInt(v).ToBig()
}

func narrow(field string, v any) (uint64, error) {
	b, ok := v.(*big.Int)
	if !ok {
		return 0, statement.Reject(statement.StructuralError, field, "unexpected type %T", v)
	}
	u, overflow := uint256.FromBig(b)
	if overflow || !u.IsUint64() {
		return 0, statement.Reject(statement.StructuralError, field, "value %s exceeds 64 bits", b)
	}
	return u.Uint64(), nil
}
