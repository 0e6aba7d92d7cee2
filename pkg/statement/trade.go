package statement

import "github.com/ethereum/go-ethereum/common"

// TradeWitness is the private input of the Trade statement. ToBalance is
// carried for completeness and not constrained.
type TradeWitness struct {
	Secret      common.Hash
	Nullifier   common.Hash
	FromBalance uint64
	ToBalance   uint64
}

// TradeClaim is the public input of the Trade statement.
type TradeClaim struct {
	Commitment  common.Hash
	FromAsset   uint64
	ToAsset     uint64
	FromAmount  uint64
	MinToAmount uint64
}

// TradeOutput is the public output of the Trade statement.
type TradeOutput struct {
	Commitment  common.Hash
	FromAsset   uint64
	ToAsset     uint64
	FromAmount  uint64
	MinToAmount uint64
}

// Kind implements Output.
func (TradeOutput) Kind() Kind { return KindTrade }

// Trade proves the committed position can fund a swap of FromAmount of
// FromAsset into at least MinToAmount of ToAsset.
func Trade(w TradeWitness, c TradeClaim) (TradeOutput, error) {
	if err := checkCommitment(w.Secret, w.Nullifier, c.Commitment); err != nil {
		return TradeOutput{}, err
	}
	if w.FromBalance < c.FromAmount {
		return TradeOutput{}, Reject(ConstraintViolation, "from_balance",
			"balance %d below trade amount %d", w.FromBalance, c.FromAmount)
	}
	if c.FromAmount == 0 {
		return TradeOutput{}, Reject(ConstraintViolation, "from_amount", "must be greater than zero")
	}
	if c.MinToAmount == 0 {
		return TradeOutput{}, Reject(ConstraintViolation, "min_to_amount", "must be greater than zero")
	}
	if c.FromAsset == c.ToAsset {
		return TradeOutput{}, Reject(ConstraintViolation, "assets", "cannot trade asset %d for itself", c.FromAsset)
	}
	if _, ok := checkedSub(w.FromBalance, c.FromAmount); !ok {
		return TradeOutput{}, Reject(ConstraintViolation, "underflow",
			"%d - %d underflows", w.FromBalance, c.FromAmount)
	}

	return TradeOutput{
		Commitment:  c.Commitment,
		FromAsset:   c.FromAsset,
		ToAsset:     c.ToAsset,
		FromAmount:  c.FromAmount,
		MinToAmount: c.MinToAmount,
	}, nil
}

func checkedSub(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}
