package engine

import (
	"antigravity/internal/config"
	"antigravity/internal/models"
)

// Verdict is the outcome of one confirmation pass.
type Verdict string

const (
	// VerdictFire means every layer passed and the trade should dispatch.
	VerdictFire Verdict = "FIRE"
	// VerdictWait means a layer failed but may pass on a later tick.
	VerdictWait Verdict = "WAIT"
	// VerdictReject means the strategy can never fire.
	VerdictReject Verdict = "REJECT"
)

// Machine-readable reasons attached to WAIT and REJECT decisions.
const (
	ReasonNoTrade           = "no_trade"
	ReasonSpreadTooWide     = "spread_too_wide"
	ReasonOutsideZone       = "outside_zone"
	ReasonNoProbe           = "no_probe"
	ReasonInsufficientDwell = "insufficient_dwell"
	ReasonRSIOutOfRange     = "rsi_out_of_range"
)

// Decision is what the confirmation filter returns for a single tick.
type Decision struct {
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason,omitempty"`
}

func fire() Decision                { return Decision{Verdict: VerdictFire} }
func wait(reason string) Decision   { return Decision{Verdict: VerdictWait, Reason: reason} }
func reject(reason string) Decision { return Decision{Verdict: VerdictReject, Reason: reason} }

// Evaluate runs the layered confirmation filter for one tick.
//
// prior is the tick window as it stood before the current tick, oldest
// first; the current tick must not be in it. The layers short-circuit in
// a fixed order so every decision carries the first failing reason:
//
//	no_trade -> spread -> zone containment -> zone probe -> zone dwell -> RSI
//
// Evaluate is pure: it never mutates its inputs and uses no clock, so the
// backtest driver and the live engine share it verbatim.
func Evaluate(s *models.ActiveStrategy, tick models.Tick, prior []models.Tick, cfg config.ConfirmConfig) Decision {
	if s == nil || s.Direction == models.DirectionNoTrade {
		return reject(ReasonNoTrade)
	}

	if tick.Spread() > cfg.MaxSpread {
		return wait(ReasonSpreadTooWide)
	}

	mid := tick.Mid()
	if !s.EntryZone.Contains(mid) {
		return wait(ReasonOutsideZone)
	}

	if cfg.RequireZoneProbe && !probed(s, prior, cfg.ProbeLookback) {
		return wait(ReasonNoProbe)
	}

	// The current tick is inside the zone by now, so it always counts.
	if dwell := zoneDwell(s, prior) + 1; dwell < cfg.MinZoneTicks {
		return wait(ReasonInsufficientDwell)
	}

	if tick.RSI14 != nil {
		rsi := *tick.RSI14
		switch s.Direction {
		case models.DirectionBuy:
			if rsi >= cfg.RSIOverbought {
				return wait(ReasonRSIOutOfRange)
			}
		case models.DirectionSell:
			if rsi <= cfg.RSIOversold {
				return wait(ReasonRSIOutOfRange)
			}
		}
	}

	return fire()
}

// probed reports whether any of the last lookback prior ticks traded
// beyond the zone edge the entry direction cares about: below the low
// for BUY, above the high for SELL.
func probed(s *models.ActiveStrategy, prior []models.Tick, lookback int) bool {
	if lookback <= 0 || lookback > len(prior) {
		lookback = len(prior)
	}
	window := prior[len(prior)-lookback:]
	for i := len(window) - 1; i >= 0; i-- {
		mid := window[i].Mid()
		switch s.Direction {
		case models.DirectionBuy:
			if mid < s.EntryZone.Low {
				return true
			}
		case models.DirectionSell:
			if mid > s.EntryZone.High {
				return true
			}
		}
	}
	return false
}

// zoneDwell counts how many trailing prior ticks sat inside the entry
// zone without interruption. The streak breaks at the first tick outside.
func zoneDwell(s *models.ActiveStrategy, prior []models.Tick) int {
	n := 0
	for i := len(prior) - 1; i >= 0; i-- {
		if !s.EntryZone.Contains(prior[i].Mid()) {
			break
		}
		n++
	}
	return n
}
