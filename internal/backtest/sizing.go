package backtest

import (
	"math"

	"github.com/marlinhq/marlin/internal/core"
)

// SizeResult is the outcome of a position sizing call. A zero Shares value
// means the entry opportunity must be skipped.
type SizeResult struct {
	Shares     int64
	StopPrice  float64
	RiskAmount float64 // actual risk: shares x stop distance
}

// Size converts account equity and volatility into a share quantity and a
// protective stop. The binding constraint rule takes the tighter of the
// risk-based and the capital-based quantity:
//
//	shares-from-risk = floor(equity x riskPct / stopDistance)
//	shares-from-cap  = floor(equity x maxPositionPct / entryPrice)
//
// where stopDistance = atr x atrMultiplier. Non-positive inputs or a zero
// stop distance yield a zero-size result instead of dividing by zero.
func Size(equity, entryPrice, atr, riskPct, maxPositionPct, atrMultiplier float64, side core.Side) SizeResult {
	if equity <= 0 || entryPrice <= 0 || atr <= 0 || riskPct <= 0 || maxPositionPct <= 0 || atrMultiplier <= 0 {
		return SizeResult{}
	}

	stopDistance := atr * atrMultiplier
	if stopDistance <= 0 {
		return SizeResult{}
	}

	sharesFromRisk := int64(math.Floor(equity * riskPct / stopDistance))
	sharesFromCap := int64(math.Floor(equity * maxPositionPct / entryPrice))

	shares := sharesFromRisk
	if sharesFromCap < shares {
		shares = sharesFromCap
	}
	if shares <= 0 {
		return SizeResult{}
	}

	stopPrice := entryPrice - stopDistance
	if side == core.SideShort {
		stopPrice = entryPrice + stopDistance
	}
	if stopPrice < 0 {
		stopPrice = 0
	}

	return SizeResult{
		Shares:     shares,
		StopPrice:  stopPrice,
		RiskAmount: float64(shares) * stopDistance,
	}
}
