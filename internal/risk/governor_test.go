package risk

import (
	"testing"
	"time"

	"antigravity/internal/config"
	"antigravity/internal/models"
)

func riskCfg() config.RiskConfig {
	return config.RiskConfig{
		MaxTradesPerDay:     10,
		MaxConsecutiveFails: 3,
		CooldownSecs:        300,
	}
}

var t0 = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestCheck_AllowsByDefault(t *testing.T) {
	g := NewGovernor(riskCfg())
	ok, reason := g.Check(t0)
	if !ok {
		t.Fatalf("fresh governor blocked: %s", reason)
	}
}

func TestCheck_DailyLimit(t *testing.T) {
	cfg := riskCfg()
	cfg.MaxTradesPerDay = 2
	g := NewGovernor(cfg)

	g.RecordFire(t0)
	g.RecordFire(t0.Add(time.Minute))

	ok, reason := g.Check(t0.Add(2 * time.Minute))
	if ok {
		t.Fatalf("expected daily limit block")
	}
	if reason != BlockDailyLimit {
		t.Fatalf("reason=%s want=%s", reason, BlockDailyLimit)
	}
}

func TestCheck_DailyCounterResetsOnUTCDate(t *testing.T) {
	cfg := riskCfg()
	cfg.MaxTradesPerDay = 1
	g := NewGovernor(cfg)

	g.RecordFire(t0)
	if ok, _ := g.Check(t0.Add(time.Hour)); ok {
		t.Fatalf("same-day check should block at the cap")
	}

	nextDay := t0.Add(24 * time.Hour)
	ok, reason := g.Check(nextDay)
	if !ok {
		t.Fatalf("next-day check blocked: %s", reason)
	}
	if got := g.Snapshot().TradesToday; got != 0 {
		t.Fatalf("trades_today=%d want=0 after reset", got)
	}
}

func TestCheck_ZeroDailyLimitMeansUnlimited(t *testing.T) {
	cfg := riskCfg()
	cfg.MaxTradesPerDay = 0
	g := NewGovernor(cfg)

	for i := 0; i < 50; i++ {
		g.RecordFire(t0.Add(time.Duration(i) * time.Minute))
	}
	if ok, reason := g.Check(t0.Add(time.Hour)); !ok {
		t.Fatalf("unlimited budget blocked: %s", reason)
	}
}

func TestRecordOutcome_FailureStartsCooldown(t *testing.T) {
	g := NewGovernor(riskCfg())

	g.RecordFire(t0)
	g.RecordOutcome(models.TradeStatusFailed, t0)

	ok, reason := g.Check(t0.Add(100 * time.Second))
	if ok {
		t.Fatalf("expected cooldown block at +100s")
	}
	if reason != BlockCooldown {
		t.Fatalf("reason=%s want=%s", reason, BlockCooldown)
	}

	if ok, reason := g.Check(t0.Add(301 * time.Second)); !ok {
		t.Fatalf("blocked after cooldown elapsed: %s", reason)
	}
}

func TestRecordOutcome_AutoKillAfterMaxFailures(t *testing.T) {
	g := NewGovernor(riskCfg())

	now := t0
	for i := 0; i < 2; i++ {
		g.RecordFire(now)
		if tripped := g.RecordOutcome(models.TradeStatusFailed, now); tripped {
			t.Fatalf("auto-kill tripped early at failure %d", i+1)
		}
		now = now.Add(10 * time.Minute)
	}

	g.RecordFire(now)
	if tripped := g.RecordOutcome(models.TradeStatusFailed, now); !tripped {
		t.Fatalf("third failure should trip the auto-kill")
	}

	ok, reason := g.Check(now.Add(time.Hour))
	if ok {
		t.Fatalf("killed governor approved a fire")
	}
	if reason != "killed: consecutive_failures" {
		t.Fatalf("reason=%s want=killed: consecutive_failures", reason)
	}

	snap := g.Snapshot()
	if !snap.IsKilled || snap.KillReason != KillReasonConsecutiveFailures {
		t.Fatalf("snapshot=%+v want killed with reason %s", snap, KillReasonConsecutiveFailures)
	}

	// A fourth failure must not report a second trip.
	if tripped := g.RecordOutcome(models.TradeStatusFailed, now); tripped {
		t.Fatalf("already-killed governor reported another trip")
	}
}

func TestRecordOutcome_ConfirmedResetsStreak(t *testing.T) {
	g := NewGovernor(riskCfg())

	g.RecordOutcome(models.TradeStatusFailed, t0)
	g.RecordOutcome(models.TradeStatusFailed, t0.Add(time.Minute))
	g.RecordOutcome(models.TradeStatusConfirmed, t0.Add(2*time.Minute))

	if got := g.Snapshot().ConsecutiveFailures; got != 0 {
		t.Fatalf("consecutive_failures=%d want=0 after confirm", got)
	}
	if tripped := g.RecordOutcome(models.TradeStatusFailed, t0.Add(3*time.Minute)); tripped {
		t.Fatalf("single failure after confirm tripped the kill")
	}
	if g.Snapshot().IsKilled {
		t.Fatalf("governor killed with streak below the max")
	}
}

func TestRecordOutcome_PendingIgnored(t *testing.T) {
	g := NewGovernor(riskCfg())
	if tripped := g.RecordOutcome(models.TradeStatusPending, t0); tripped {
		t.Fatalf("pending outcome tripped the kill")
	}
	snap := g.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.CooldownUntil != nil {
		t.Fatalf("pending outcome mutated state: %+v", snap)
	}
}

func TestKillRearm_Idempotent(t *testing.T) {
	g := NewGovernor(riskCfg())

	if !g.Kill("manual") {
		t.Fatalf("first kill reported no change")
	}
	if g.Kill("again") {
		t.Fatalf("second kill reported a change")
	}
	if got := g.Snapshot().KillReason; got != "manual" {
		t.Fatalf("kill_reason=%s want=manual (first reason sticks)", got)
	}

	if !g.Rearm() {
		t.Fatalf("rearm of killed governor reported no change")
	}
	if g.Rearm() {
		t.Fatalf("second rearm reported a change")
	}

	ok, reason := g.Check(t0)
	if !ok {
		t.Fatalf("rearmed governor blocked: %s", reason)
	}
}

func TestRearm_ClearsCooldownAndStreak(t *testing.T) {
	g := NewGovernor(riskCfg())

	g.RecordOutcome(models.TradeStatusFailed, t0)
	g.RecordOutcome(models.TradeStatusFailed, t0.Add(time.Second))
	g.Kill("manual")
	g.Rearm()

	snap := g.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("consecutive_failures=%d want=0 after rearm", snap.ConsecutiveFailures)
	}
	if snap.CooldownUntil != nil {
		t.Fatalf("cooldown_until=%v want=nil after rearm", snap.CooldownUntil)
	}
	if ok, reason := g.Check(t0.Add(2 * time.Second)); !ok {
		t.Fatalf("rearm left a block in place: %s", reason)
	}
}

func TestCheck_KillBeatsCooldownBeatsDailyLimit(t *testing.T) {
	cfg := riskCfg()
	cfg.MaxTradesPerDay = 1
	g := NewGovernor(cfg)

	// At the daily cap and inside a cooldown window.
	g.RecordFire(t0)
	g.RecordOutcome(models.TradeStatusFailed, t0)

	if _, reason := g.Check(t0.Add(time.Second)); reason != BlockCooldown {
		t.Fatalf("reason=%s want=%s (cooldown before daily limit)", reason, BlockCooldown)
	}

	g.Kill("manual")
	if _, reason := g.Check(t0.Add(time.Second)); reason != "killed: manual" {
		t.Fatalf("reason=%s want=killed: manual (kill first)", reason)
	}

	g.Rearm()
	// Cooldown cleared by rearm, daily cap still in force.
	if _, reason := g.Check(t0.Add(time.Second)); reason != BlockDailyLimit {
		t.Fatalf("reason=%s want=%s", reason, BlockDailyLimit)
	}
}

func TestSnapshot_InCooldownHelper(t *testing.T) {
	g := NewGovernor(riskCfg())
	g.RecordOutcome(models.TradeStatusFailed, t0)

	snap := g.Snapshot()
	if !snap.InCooldown(t0.Add(100 * time.Second)) {
		t.Fatalf("expected in_cooldown at +100s")
	}
	if snap.InCooldown(t0.Add(301 * time.Second)) {
		t.Fatalf("expected cooldown over at +301s")
	}
}
