package risk

import (
	"time"

	"antigravity/internal/config"
	"antigravity/internal/models"
)

// KillReasonConsecutiveFailures marks an automatic kill after too many
// failed fires in a row.
const KillReasonConsecutiveFailures = "consecutive_failures"

// Block reasons returned by Check. A killed block is prefixed with
// "killed: " followed by the kill reason.
const (
	BlockCooldown   = "cooldown"
	BlockDailyLimit = "daily_limit"
	killedPrefix    = "killed: "
)

// Governor is the last gate before a fire dispatches. It carries no lock
// of its own: every call happens under the engine's mutex, so reads and
// writes here are already serialized.
type Governor struct {
	Config config.RiskConfig

	killed              bool
	killReason          string
	tradesToday         int
	consecutiveFailures int
	lastTradeAt         time.Time
	cooldownUntil       time.Time
}

func NewGovernor(cfg config.RiskConfig) *Governor {
	return &Governor{Config: cfg}
}

// Check reports whether a fire may proceed at now. The gates run in a
// fixed order after the lazy daily reset: kill switch, cooldown, daily
// budget. Blocked checks return a machine-readable reason.
func (g *Governor) Check(now time.Time) (bool, string) {
	g.resetDaily(now)

	if g.killed {
		return false, killedPrefix + g.killReason
	}
	if now.Before(g.cooldownUntil) {
		return false, BlockCooldown
	}
	if g.Config.MaxTradesPerDay > 0 && g.tradesToday >= g.Config.MaxTradesPerDay {
		return false, BlockDailyLimit
	}
	return true, ""
}

// RecordFire counts a dispatched trade against the daily budget.
func (g *Governor) RecordFire(now time.Time) {
	g.resetDaily(now)
	g.tradesToday++
	g.lastTradeAt = now
}

// RecordOutcome feeds the bridge verdict back. CONFIRMED clears the
// failure streak; FAILED extends it, starts the cooldown, and may trip
// the auto-kill. Returns true when this call flipped the kill switch.
func (g *Governor) RecordOutcome(status string, now time.Time) bool {
	switch status {
	case models.TradeStatusConfirmed:
		g.consecutiveFailures = 0
	case models.TradeStatusFailed:
		g.consecutiveFailures++
		g.cooldownUntil = now.Add(g.Config.Cooldown())
		if g.Config.MaxConsecutiveFails > 0 &&
			g.consecutiveFailures >= g.Config.MaxConsecutiveFails &&
			!g.killed {
			g.killed = true
			g.killReason = KillReasonConsecutiveFailures
			return true
		}
	}
	return false
}

// Kill activates the switch. Returns false when it was already active.
func (g *Governor) Kill(reason string) bool {
	if g.killed {
		return false
	}
	g.killed = true
	g.killReason = reason
	return true
}

// Rearm deactivates the switch and clears the failure streak and any
// pending cooldown. Returns false when the switch was not active.
func (g *Governor) Rearm() bool {
	wasKilled := g.killed
	g.killed = false
	g.killReason = ""
	g.consecutiveFailures = 0
	g.cooldownUntil = time.Time{}
	return wasKilled
}

// Snapshot copies the current state for events and the status endpoint.
func (g *Governor) Snapshot() models.RiskState {
	s := models.RiskState{
		IsKilled:            g.killed,
		KillReason:          g.killReason,
		TradesToday:         g.tradesToday,
		ConsecutiveFailures: g.consecutiveFailures,
	}
	if !g.lastTradeAt.IsZero() {
		t := g.lastTradeAt
		s.LastTradeAt = &t
	}
	if !g.cooldownUntil.IsZero() {
		t := g.cooldownUntil
		s.CooldownUntil = &t
	}
	return s
}

// resetDaily zeroes the daily counter once the UTC date moves past the
// last recorded trade.
func (g *Governor) resetDaily(now time.Time) {
	if g.lastTradeAt.IsZero() {
		return
	}
	ly, lm, ld := g.lastTradeAt.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	if ly != ny || lm != nm || ld != nd {
		g.tradesToday = 0
	}
}
