package backtest

import (
	"github.com/marlinhq/marlin/internal/core"
	"github.com/marlinhq/marlin/internal/indicator"
	"github.com/marlinhq/marlin/internal/strategy"
)

// Ledger is the simulation state machine. It walks a bar history exactly
// once in chronological order, applies strategy signals through position
// sizing, and produces the trade log and equity curve.
//
// Open positions live in a fixed-capacity slot arena sized to MaxPositions,
// which makes the position-cap invariant structural. Per-slot lifecycle is
// Flat -> Entered -> Closed, with the slot reusable after close.
//
// Exit conditions on a bar are resolved in fixed priority order:
// stop > target > signal > time. The protective stop taking precedence is
// the conservative assumption when one bar's range satisfies several.
type Ledger struct {
	cfg    Config
	symbol string
	bars   []core.Bar
	ind    *indicator.Set

	slots  []*OpenPosition
	cash   float64
	peak   float64
	trades []ClosedTrade
	curve  []EquityPoint
}

// NewLedger creates a ledger for one run. Each run owns its own instance;
// nothing is shared between runs.
func NewLedger(cfg Config, symbol string, bars []core.Bar) *Ledger {
	return &Ledger{
		cfg:    cfg,
		symbol: symbol,
		bars:   bars,
		slots:  make([]*OpenPosition, cfg.MaxPositions),
		cash:   cfg.InitialCapital,
		peak:   cfg.InitialCapital,
	}
}

// Run replays the strategy over the bar history. It returns the closed
// trade log (every run ends fully closed) and the per-bar equity curve.
func (l *Ledger) Run(strat strategy.Strategy, params strategy.Params) ([]ClosedTrade, []EquityPoint) {
	l.ind = indicator.NewSet(l.bars)
	l.trades = nil
	l.curve = make([]EquityPoint, 0, len(l.bars))

	last := len(l.bars) - 1
	for i, bar := range l.bars {
		sig := strat.Evaluate(i, l.ind, params)

		l.processExits(i, bar, sig, params)

		// Entries on the final bar would be force-closed on the same bar,
		// producing trades with no holding period; skip them.
		if sig.IsEntry() && i < last {
			l.tryEnter(i, bar, sig, params)
		}

		if i == last {
			l.forceCloseAll(i, bar)
		}

		l.markEquity(bar)
	}

	return l.trades, l.curve
}

// processExits checks every entered slot against the bar, in the fixed
// stop > target > signal > time priority. Positions opened on this bar are
// not exit-checked until the next one.
func (l *Ledger) processExits(i int, bar core.Bar, sig core.Signal, params strategy.Params) {
	for idx, pos := range l.slots {
		if pos == nil || pos.EntryIndex >= i {
			continue
		}
		holding := i - pos.EntryIndex

		switch {
		case l.stopHit(pos, bar):
			l.closePosition(idx, bar, pos.StopPrice, core.ExitStop, holding)
		case l.targetHit(pos, bar):
			l.closePosition(idx, bar, pos.TargetPrice, core.ExitTarget, holding)
		case sig == core.SignalExit && holding >= params.MinHoldingDays:
			l.closePosition(idx, bar, bar.Close, core.ExitSignal, holding)
		case params.MaxHoldingDays > 0 && holding >= params.MaxHoldingDays:
			l.closePosition(idx, bar, bar.Close, core.ExitTime, holding)
		}
	}
}

func (l *Ledger) stopHit(pos *OpenPosition, bar core.Bar) bool {
	if pos.StopPrice <= 0 {
		return false
	}
	if pos.Side == core.SideLong {
		return bar.Low <= pos.StopPrice
	}
	return bar.High >= pos.StopPrice
}

func (l *Ledger) targetHit(pos *OpenPosition, bar core.Bar) bool {
	if pos.TargetPrice <= 0 {
		return false
	}
	if pos.Side == core.SideLong {
		return bar.High >= pos.TargetPrice
	}
	return bar.Low <= pos.TargetPrice
}

// tryEnter opens a position if a slot is free and sizing yields at least
// one share. An entry signal against open positions of the opposite side
// first reverses them out (a signal exit, still subject to the minimum
// holding period).
func (l *Ledger) tryEnter(i int, bar core.Bar, sig core.Signal, params strategy.Params) {
	side := core.SideLong
	if sig == core.SignalEnterShort {
		side = core.SideShort
	}

	for idx, pos := range l.slots {
		if pos != nil && pos.Side != side && pos.EntryIndex < i &&
			i-pos.EntryIndex >= params.MinHoldingDays {
			l.closePosition(idx, bar, bar.Close, core.ExitSignal, i-pos.EntryIndex)
		}
	}

	slot := l.freeSlot()
	if slot < 0 {
		return
	}

	atr, ok := l.ind.ATR(params.ATRPeriod).At(i)
	if !ok {
		return
	}

	entryPrice := l.fillPrice(bar.Close, side, true)
	equity := l.equityAt(bar.Close)
	sized := Size(equity, entryPrice, atr, l.cfg.RiskPct, l.cfg.MaxPositionPct, params.ATRMultiplier, side)
	if sized.Shares <= 0 {
		return // zero ATR or degenerate sizing: skip the opportunity
	}

	shares := sized.Shares
	if side == core.SideLong {
		// A long cannot spend more cash than the account holds.
		affordable := int64((l.cash - l.cfg.Commission) / entryPrice)
		if affordable < shares {
			shares = affordable
		}
		if shares <= 0 {
			return
		}
	}

	stop := sized.StopPrice
	if l.cfg.StopLossPct > 0 {
		pctStop := entryPrice * (1 - l.cfg.StopLossPct)
		if side == core.SideShort {
			pctStop = entryPrice * (1 + l.cfg.StopLossPct)
		}
		if (side == core.SideLong && pctStop > stop) || (side == core.SideShort && pctStop < stop) {
			stop = pctStop
		}
	}

	var target float64
	if l.cfg.TakeProfitPct > 0 {
		if side == core.SideLong {
			target = entryPrice * (1 + l.cfg.TakeProfitPct)
		} else {
			target = entryPrice * (1 - l.cfg.TakeProfitPct)
		}
	}

	if side == core.SideLong {
		l.cash -= float64(shares)*entryPrice + l.cfg.Commission
	} else {
		l.cash += float64(shares)*entryPrice - l.cfg.Commission
	}

	l.slots[slot] = &OpenPosition{
		Symbol:      l.symbol,
		Side:        side,
		EntryTime:   bar.Time,
		EntryPrice:  entryPrice,
		Quantity:    shares,
		StopPrice:   stop,
		TargetPrice: target,
		EntryIndex:  i,
	}
}

// closePosition fills the exit at the trigger price with unfavorable
// slippage, updates cash, emits one ClosedTrade and frees the slot.
func (l *Ledger) closePosition(idx int, bar core.Bar, price float64, reason core.ExitReason, holding int) {
	pos := l.slots[idx]
	exitPrice := l.fillPrice(price, pos.Side, false)

	var pnl float64
	if pos.Side == core.SideLong {
		l.cash += float64(pos.Quantity)*exitPrice - l.cfg.Commission
		pnl = float64(pos.Quantity)*(exitPrice-pos.EntryPrice) - 2*l.cfg.Commission
	} else {
		l.cash -= float64(pos.Quantity)*exitPrice + l.cfg.Commission
		pnl = float64(pos.Quantity)*(pos.EntryPrice-exitPrice) - 2*l.cfg.Commission
	}

	cost := float64(pos.Quantity) * pos.EntryPrice
	var pnlPct float64
	if cost > 0 {
		pnlPct = pnl / cost * 100
	}

	l.trades = append(l.trades, ClosedTrade{
		Symbol:      pos.Symbol,
		Side:        pos.Side,
		EntryTime:   pos.EntryTime,
		EntryPrice:  pos.EntryPrice,
		ExitTime:    bar.Time,
		ExitPrice:   exitPrice,
		Quantity:    pos.Quantity,
		PnL:         pnl,
		PnLPct:      pnlPct,
		HoldingDays: holding,
		ExitReason:  reason,
	})
	l.slots[idx] = nil
}

// forceCloseAll closes anything still open at the final bar's close so that
// every run yields a fully closed trade log.
func (l *Ledger) forceCloseAll(i int, bar core.Bar) {
	for idx, pos := range l.slots {
		if pos != nil {
			l.closePosition(idx, bar, bar.Close, core.ExitTime, i-pos.EntryIndex)
		}
	}
}

// fillPrice applies slippage in the unfavorable direction: buys fill above
// the reference price, sells below it.
func (l *Ledger) fillPrice(price float64, side core.Side, entry bool) float64 {
	adj := l.cfg.SlippageBps / 10000
	if (side == core.SideLong) == entry {
		return price * (1 + adj)
	}
	return price * (1 - adj)
}

// equityAt marks all open positions to the given close price and adds cash.
func (l *Ledger) equityAt(close float64) float64 {
	equity := l.cash
	for _, pos := range l.slots {
		if pos == nil {
			continue
		}
		if pos.Side == core.SideLong {
			equity += float64(pos.Quantity) * close
		} else {
			equity -= float64(pos.Quantity) * close
		}
	}
	return equity
}

// markEquity appends one EquityPoint. The drawdown peak only ever rises.
func (l *Ledger) markEquity(bar core.Bar) {
	equity := l.equityAt(bar.Close)
	if equity > l.peak {
		l.peak = equity
	}
	var dd float64
	if l.peak > 0 {
		dd = (l.peak - equity) / l.peak
	}
	l.curve = append(l.curve, EquityPoint{Time: bar.Time, Equity: equity, Drawdown: dd})
}

func (l *Ledger) freeSlot() int {
	for i, pos := range l.slots {
		if pos == nil {
			return i
		}
	}
	return -1
}
