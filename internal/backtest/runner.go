package backtest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"antigravity/internal/config"
	"antigravity/internal/engine"
	"antigravity/internal/models"
)

// Replay verdicts on top of the filter's FIRE/WAIT/REJECT vocabulary.
// SKIP marks ticks the window discipline dropped or that never reached the
// filter; HOLD marks post-fire ticks with the simulated position still
// open; CLOSE marks the exit tick.
const (
	VerdictSkip  = "SKIP"
	VerdictHold  = "HOLD"
	VerdictClose = "CLOSE"
)

// Rejection reasons the replay adds on top of the filter's own.
const (
	ReasonOutOfOrder     = "out_of_order"
	ReasonSymbolMismatch = "symbol_mismatch"
	ReasonPositionOpen   = "position_open"
	ReasonDisarmed       = "disarmed"
)

// CloseEnd marks a simulated position still open when the ticks ran out.
const CloseEnd = "END"

// Request is one replay: a plan and the recorded ticks to walk it through,
// oldest first.
type Request struct {
	Strategy models.ActiveStrategy `json:"strategy"`
	Ticks    []models.Tick         `json:"ticks"`
	Confirm  *ConfirmOverride      `json:"confirmation,omitempty"`
}

// ConfirmOverride adjusts filter knobs for one run. Nil fields keep the
// configured values.
type ConfirmOverride struct {
	MaxSpread        *float64 `json:"max_spread,omitempty"`
	RequireZoneProbe *bool    `json:"require_zone_probe,omitempty"`
	MinZoneTicks     *int     `json:"min_zone_ticks,omitempty"`
	ProbeLookback    *int     `json:"probe_lookback,omitempty"`
	RSIOverbought    *float64 `json:"rsi_overbought,omitempty"`
	RSIOversold      *float64 `json:"rsi_oversold,omitempty"`
}

// TracePoint is one tick's verdict in replay order.
type TracePoint struct {
	Index   int     `json:"index"`
	Mid     float64 `json:"mid"`
	Verdict string  `json:"verdict"`
	Reason  string  `json:"reason,omitempty"`
}

// Result summarises a replay. FiringIndex and CloseIndex are -1 when the
// plan never fired or never closed. Pips are raw price points.
type Result struct {
	TotalTicks      int              `json:"total_ticks"`
	Fired           bool             `json:"fired"`
	FiringIndex     int              `json:"firing_index"`
	Direction       models.Direction `json:"direction"`
	EntryPrice      float64          `json:"entry_price,omitempty"`
	CloseReason     string           `json:"close_reason,omitempty"`
	ClosePrice      float64          `json:"close_price,omitempty"`
	CloseIndex      int              `json:"close_index"`
	ProfitPips      float64          `json:"profit_pips"`
	MaxDrawdownPips float64          `json:"max_drawdown_pips"`
	Rejections      map[string]int   `json:"rejections"`
	Trace           []TracePoint     `json:"trace"`
}

// Runner replays recorded ticks through the live confirmation filter with
// no governor and no bridge. It applies the engine's window discipline
// (per-symbol window, out-of-order discard, evaluate before push) and
// consumes the plan on the first fire, so identical inputs yield the
// engine's decisions.
type Runner struct {
	confirm config.ConfirmConfig
	bufSize int
	logger  *zap.Logger
}

func NewRunner(cfg config.Config, logger *zap.Logger) *Runner {
	size := cfg.Engine.BufferSize
	if size <= 0 {
		size = 30
	}
	return &Runner{confirm: cfg.Confirm, bufSize: size, logger: logger}
}

func (r *Runner) Run(req Request) (*Result, error) {
	if err := req.Strategy.Validate(); err != nil {
		return nil, err
	}
	if len(req.Ticks) == 0 {
		return nil, fmt.Errorf("at least one tick is required")
	}
	for i := range req.Ticks {
		if err := req.Ticks[i].Validate(); err != nil {
			return nil, fmt.Errorf("tick %d: %w", i, err)
		}
	}

	strat := req.Strategy
	cfg := r.effectiveConfig(req.Confirm)
	buf := engine.NewTickBuffer(r.bufSize)

	res := &Result{
		TotalTicks:  len(req.Ticks),
		FiringIndex: -1,
		CloseIndex:  -1,
		Direction:   strat.Direction,
		Rejections:  make(map[string]int),
		Trace:       make([]TracePoint, 0, len(req.Ticks)),
	}

	var (
		symbol    string
		lastTime  time.Time
		fired     bool
		closed    bool
		entry     float64
		peak      float64
		lastExit  float64
		lastIndex int
	)

	for i := range req.Ticks {
		tick := req.Ticks[i]
		mid := tick.Mid()

		if tick.Symbol != symbol {
			symbol = tick.Symbol
			buf.Clear()
			lastTime = time.Time{}
		}
		if !lastTime.IsZero() && tick.Time.Before(lastTime) {
			res.Rejections[ReasonOutOfOrder]++
			res.Trace = append(res.Trace, TracePoint{Index: i, Mid: mid, Verdict: VerdictSkip, Reason: ReasonOutOfOrder})
			continue
		}
		lastTime = tick.Time

		prior := buf.Snapshot()
		buf.Push(tick)

		switch {
		case fired && closed:
			res.Rejections[ReasonDisarmed]++
			res.Trace = append(res.Trace, TracePoint{Index: i, Mid: mid, Verdict: VerdictSkip, Reason: ReasonDisarmed})

		case fired:
			if reason, price, hit := exitHit(strat, tick); hit {
				closed = true
				settled := profitPoints(strat.Direction, entry, price)
				peak, res.MaxDrawdownPips = track(peak, settled, res.MaxDrawdownPips)
				res.CloseReason = reason
				res.ClosePrice = price
				res.CloseIndex = i
				res.ProfitPips = settled
				res.Trace = append(res.Trace, TracePoint{Index: i, Mid: mid, Verdict: VerdictClose, Reason: reason})
				continue
			}
			lastExit = exitSide(strat.Direction, tick)
			lastIndex = i
			pnl := profitPoints(strat.Direction, entry, lastExit)
			peak, res.MaxDrawdownPips = track(peak, pnl, res.MaxDrawdownPips)
			res.Rejections[ReasonPositionOpen]++
			res.Trace = append(res.Trace, TracePoint{Index: i, Mid: mid, Verdict: VerdictHold, Reason: ReasonPositionOpen})

		case tick.Symbol != strat.Symbol:
			res.Rejections[ReasonSymbolMismatch]++
			res.Trace = append(res.Trace, TracePoint{Index: i, Mid: mid, Verdict: VerdictSkip, Reason: ReasonSymbolMismatch})

		default:
			d := engine.Evaluate(&strat, tick, prior, cfg)
			if d.Verdict == engine.VerdictFire {
				fired = true
				res.Fired = true
				res.FiringIndex = i
				entry = mid
				res.EntryPrice = entry
				peak = 0
				lastExit = entry
				lastIndex = i
				res.Trace = append(res.Trace, TracePoint{Index: i, Mid: mid, Verdict: string(d.Verdict)})
				continue
			}
			res.Rejections[d.Reason]++
			res.Trace = append(res.Trace, TracePoint{Index: i, Mid: mid, Verdict: string(d.Verdict), Reason: d.Reason})
		}
	}

	// A position the replay never exited closes at the last quote it saw.
	if fired && !closed {
		settled := profitPoints(strat.Direction, entry, lastExit)
		_, res.MaxDrawdownPips = track(peak, settled, res.MaxDrawdownPips)
		res.CloseReason = CloseEnd
		res.ClosePrice = lastExit
		res.CloseIndex = lastIndex
		res.ProfitPips = settled
	}

	if r.logger != nil {
		r.logger.Info("backtest finished",
			zap.Int("total_ticks", res.TotalTicks),
			zap.Bool("fired", res.Fired),
			zap.Int("firing_index", res.FiringIndex),
			zap.String("close_reason", res.CloseReason),
			zap.Float64("profit_pips", res.ProfitPips),
		)
	}
	return res, nil
}

func (r *Runner) effectiveConfig(ov *ConfirmOverride) config.ConfirmConfig {
	cfg := r.confirm
	if ov == nil {
		return cfg
	}
	if ov.MaxSpread != nil {
		cfg.MaxSpread = *ov.MaxSpread
	}
	if ov.RequireZoneProbe != nil {
		cfg.RequireZoneProbe = *ov.RequireZoneProbe
	}
	if ov.MinZoneTicks != nil {
		cfg.MinZoneTicks = *ov.MinZoneTicks
	}
	if ov.ProbeLookback != nil {
		cfg.ProbeLookback = *ov.ProbeLookback
	}
	if ov.RSIOverbought != nil {
		cfg.RSIOverbought = *ov.RSIOverbought
	}
	if ov.RSIOversold != nil {
		cfg.RSIOversold = *ov.RSIOversold
	}
	return cfg
}

// exitHit checks the simulated position against the tick's closing side:
// a long exits on the bid, a short on the ask. Fills land exactly on the
// TP/SL level.
func exitHit(s models.ActiveStrategy, tick models.Tick) (string, float64, bool) {
	if s.Direction == models.DirectionSell {
		if tick.Ask <= s.TakeProfit {
			return models.CloseReasonTP, s.TakeProfit, true
		}
		if tick.Ask >= s.StopLoss {
			return models.CloseReasonSL, s.StopLoss, true
		}
		return "", 0, false
	}
	if tick.Bid >= s.TakeProfit {
		return models.CloseReasonTP, s.TakeProfit, true
	}
	if tick.Bid <= s.StopLoss {
		return models.CloseReasonSL, s.StopLoss, true
	}
	return "", 0, false
}

func exitSide(d models.Direction, tick models.Tick) float64 {
	if d == models.DirectionSell {
		return tick.Ask
	}
	return tick.Bid
}

func profitPoints(d models.Direction, entry, exit float64) float64 {
	if d == models.DirectionSell {
		return entry - exit
	}
	return exit - entry
}

// track folds one PnL sample into the running peak and max drawdown.
func track(peak, pnl, maxDD float64) (float64, float64) {
	if pnl > peak {
		peak = pnl
	}
	if dd := peak - pnl; dd > maxDD {
		maxDD = dd
	}
	return peak, maxDD
}
