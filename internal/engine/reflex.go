package engine

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"antigravity/internal/bridge"
	"antigravity/internal/bus"
	"antigravity/internal/config"
	"antigravity/internal/models"
	"antigravity/internal/repository"
	"antigravity/internal/risk"
)

// State is the reflex loop's lifecycle phase.
type State string

const (
	StateDisarmed   State = "DISARMED"
	StateArmed      State = "ARMED"
	StateFiring     State = "FIRING"
	StateInPosition State = "IN_POSITION"
)

// Tick ingest response actions.
const (
	ActionNone           = "NO_ACTION"
	ActionTradeTriggered = "TRADE_TRIGGERED"
	ActionClosePosition  = "CLOSE_POSITION"
	ActionRiskBlocked    = "RISK_BLOCKED"
)

// Outcomes of a strategy ingest.
const (
	ArmAccepted = "armed"
	ArmReplaced = "replaced"
	ArmNoop     = "noop"
	ArmDisarmed = "disarmed"
)

// FireDetails is the TRADE_TRIGGERED payload for the tick response.
type FireDetails struct {
	TradeID    string           `json:"trade_id"`
	StrategyID string           `json:"strategy_id"`
	Symbol     string           `json:"symbol"`
	Direction  models.Direction `json:"direction"`
	EntryPrice float64          `json:"entry_price"`
	TakeProfit float64          `json:"tp"`
	StopLoss   float64          `json:"sl"`
	LotSize    float64          `json:"lot_size"`
}

// TickResult is what one tick ingest decided.
type TickResult struct {
	Action       string
	Reason       string
	Fire         *FireDetails
	BrokerTicket int64
}

// CloseNotice is the bridge's report that the broker closed the position.
type CloseNotice struct {
	BrokerTicket int64   `json:"broker_ticket,omitempty"`
	Symbol       string  `json:"symbol"`
	ClosePrice   float64 `json:"close_price"`
	ProfitPips   float64 `json:"profit_pips"`
	CloseReason  string  `json:"close_reason"`
}

// Stats is the engine's counter snapshot for health and SERVER_STATS.
type Stats struct {
	State       State   `json:"state"`
	Symbol      string  `json:"symbol"`
	TickCount   uint64  `json:"tick_count"`
	TradeCount  uint64  `json:"trade_count"`
	OutOfOrder  uint64  `json:"out_of_order_ticks"`
	BufferLen   int     `json:"buffer_len"`
	HasStrategy bool    `json:"has_strategy"`
	HasPosition bool    `json:"has_position"`
	UptimeSecs  float64 `json:"uptime_secs"`
}

// firingTrade is the in-flight fire the bridge has not acked yet.
type firingTrade struct {
	record   models.TradeRecord
	strategy models.ActiveStrategy
	entry    float64
}

// fireJob is handed to the dispatch goroutine outside the lock.
type fireJob struct {
	tradeID string
	order   bridge.OrderRequest
}

// Engine is the reflex state machine. One mutex covers strategy slot,
// position, tick window, candles, counters and the governor; bridge I/O
// and sink writes happen outside it.
type Engine struct {
	cfg        config.EngineConfig
	confirmCfg config.ConfirmConfig
	magic      int

	gov    *risk.Governor
	bridge bridge.Dispatcher
	bus    *bus.Bus
	repo   repository.Repository
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	strategy   *models.ActiveStrategy
	position   *models.OpenPosition
	firing     *firingTrade
	buffer     *TickBuffer
	candles    *CandleBuilder
	symbol     string
	lastTickAt time.Time

	tickCount   uint64
	tradeCount  uint64
	outOfOrder  uint64
	bailoutSent bool

	startedAt time.Time
	clock     func() time.Time
}

func New(cfg config.Config, gov *risk.Governor, disp bridge.Dispatcher, b *bus.Bus, repo repository.Repository, logger *zap.Logger) *Engine {
	ackTimeout := cfg.Engine.AckTimeout
	if ackTimeout <= 0 {
		ackTimeout = 5 * time.Second
	}
	engCfg := cfg.Engine
	engCfg.AckTimeout = ackTimeout
	return &Engine{
		cfg:        engCfg,
		confirmCfg: cfg.Confirm,
		magic:      cfg.Bridge.Magic,
		gov:        gov,
		bridge:     disp,
		bus:        b,
		repo:       repo,
		logger:     logger,
		state:      StateDisarmed,
		buffer:     NewTickBuffer(cfg.Engine.BufferSize),
		candles:    NewCandleBuilder(cfg.Engine.CandleHistory),
		startedAt:  time.Now(),
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// OnTick runs the hot path for one quote: window upkeep, lazy expiry, the
// confirmation filter, the risk gate, and at most one fire.
func (e *Engine) OnTick(ctx context.Context, tick models.Tick) TickResult {
	now := e.clock()

	var (
		logEntries []models.StrategyLogEntry
		riskEvents []models.RiskEvent
		pendingRec *models.TradeRecord
		job        *fireJob
		closeJob   *bridge.CloseRequest
	)

	e.mu.Lock()

	// The window is per-symbol; a switch restarts it.
	if e.symbol != tick.Symbol {
		e.symbol = tick.Symbol
		e.buffer.Clear()
		e.candles.Clear()
		e.lastTickAt = time.Time{}
	}

	// Ticks must not move backwards within a session.
	if !e.lastTickAt.IsZero() && tick.Time.Before(e.lastTickAt) {
		e.outOfOrder++
		last := e.lastTickAt
		e.mu.Unlock()
		if e.logger != nil {
			e.logger.Debug("tick out of order, discarded",
				zap.String("symbol", tick.Symbol),
				zap.Time("tick_time", tick.Time),
				zap.Time("last_time", last),
			)
		}
		return TickResult{Action: ActionNone}
	}
	e.lastTickAt = tick.Time
	e.tickCount++

	// The filter sees the window as it stood before this tick.
	prior := e.buffer.Snapshot()
	e.buffer.Push(tick)
	e.candles.Push(tick)

	if entry := e.expireStrategyLocked(now); entry != nil {
		logEntries = append(logEntries, *entry)
	}

	result := TickResult{Action: ActionNone}

	switch e.state {
	case StateInPosition:
		// Opposing-zone bailout: answer CLOSE_POSITION, dispatch one close
		// command, and leave the state alone until the bridge reports back.
		pos := e.position
		if pos != nil && pos.OpposingZone != nil && pos.Symbol == tick.Symbol &&
			pos.OpposingZone.Contains(tick.Mid()) {
			result = TickResult{
				Action:       ActionClosePosition,
				Reason:       "opposing_zone",
				BrokerTicket: pos.BrokerTicket,
			}
			if !e.bailoutSent {
				e.bailoutSent = true
				closeJob = &bridge.CloseRequest{
					Symbol: pos.Symbol,
					Ticket: pos.BrokerTicket,
					Reason: "opposing_zone",
				}
			}
		}

	case StateFiring, StateDisarmed:
		// Buffer upkeep only.

	case StateArmed:
		if e.strategy == nil || e.strategy.Symbol != tick.Symbol {
			break
		}
		decision := Evaluate(e.strategy, tick, prior, e.confirmCfg)
		if decision.Verdict != VerdictFire {
			if e.logger != nil {
				e.logger.Debug("confirmation held fire",
					zap.String("verdict", string(decision.Verdict)),
					zap.String("reason", decision.Reason),
					zap.Float64("mid", tick.Mid()),
				)
			}
			break
		}

		allowed, reason := e.gov.Check(now)
		if !allowed {
			e.bus.Publish(bus.TradeBlocked(tick.Symbol, reason))
			riskEvents = append(riskEvents, models.RiskEvent{
				Kind:   models.RiskEventBlock,
				Reason: reason,
				Details: mustJSON(map[string]any{
					"symbol":      tick.Symbol,
					"strategy_id": e.strategy.StrategyID,
				}),
			})
			result = TickResult{Action: ActionRiskBlocked, Reason: reason}
			break
		}

		strat := *e.strategy
		e.strategy = nil
		e.state = StateFiring
		e.tradeCount++

		entry := tick.Mid()
		rec := models.TradeRecord{
			TradeID:    uuid.NewString(),
			StrategyID: strat.StrategyID,
			Symbol:     strat.Symbol,
			Direction:  string(strat.Direction),
			EntryPrice: decimal.NewFromFloat(entry),
			LotSize:    decimal.NewFromFloat(strat.LotSize),
			TakeProfit: decimal.NewFromFloat(strat.TakeProfit),
			StopLoss:   decimal.NewFromFloat(strat.StopLoss),
			Status:     models.TradeStatusPending,
			Rationale:  strat.Rationale,
			FiredAt:    now,
		}
		e.firing = &firingTrade{record: rec, strategy: strat, entry: entry}
		e.gov.RecordFire(now)
		e.bus.Publish(bus.TradeFiring(&rec))

		logEntries = append(logEntries, newStrategyLog(strat, models.StrategyActionFired))
		pendingRec = &rec
		job = &fireJob{
			tradeID: rec.TradeID,
			order: bridge.OrderRequest{
				Symbol:     strat.Symbol,
				Action:     orderAction(strat.Direction),
				Volume:     strat.LotSize,
				Price:      entry,
				SL:         strat.StopLoss,
				TP:         strat.TakeProfit,
				Comment:    orderComment(rec.TradeID),
				Magic:      e.magic,
				StrategyID: strat.StrategyID,
			},
		}
		result = TickResult{
			Action: ActionTradeTriggered,
			Fire: &FireDetails{
				TradeID:    rec.TradeID,
				StrategyID: strat.StrategyID,
				Symbol:     strat.Symbol,
				Direction:  strat.Direction,
				EntryPrice: entry,
				TakeProfit: strat.TakeProfit,
				StopLoss:   strat.StopLoss,
				LotSize:    strat.LotSize,
			},
		}
	}

	e.mu.Unlock()

	if pendingRec != nil {
		if err := e.repo.InsertTradeRecord(ctx, pendingRec); err != nil && e.logger != nil {
			e.logger.Error("persist pending trade record failed",
				zap.String("trade_id", pendingRec.TradeID), zap.Error(err))
		}
	}
	e.persistSideEffects(ctx, logEntries, riskEvents)

	if job != nil {
		if e.logger != nil {
			e.logger.Info("trade firing",
				zap.String("trade_id", job.tradeID),
				zap.String("symbol", job.order.Symbol),
				zap.String("action", job.order.Action),
				zap.Float64("entry_price", job.order.Price),
			)
		}
		go e.dispatch(*job)
	}
	if closeJob != nil {
		go e.dispatchClose(*closeJob)
	}

	return result
}

// dispatch sends the fire order and feeds the verdict back in. The context
// deadline is the ack timeout: a silent bridge counts as FAILED so FIRING
// can never leak.
func (e *Engine) dispatch(job fireJob) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.AckTimeout)
	defer cancel()

	resp, err := e.bridge.SendOrder(ctx, job.order)
	e.resolveFire(job.tradeID, resp, err)
}

func (e *Engine) dispatchClose(req bridge.CloseRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.AckTimeout)
	defer cancel()

	if err := e.bridge.CloseOrder(ctx, req); err != nil && e.logger != nil {
		e.logger.Warn("bailout close dispatch failed",
			zap.Int64("ticket", req.Ticket), zap.Error(err))
	}
}

// resolveFire is the second critical section: the bridge verdict re-enters
// the state machine here.
func (e *Engine) resolveFire(tradeID string, resp *bridge.OrderResponse, err error) {
	now := e.clock()

	var (
		updates    map[string]any
		riskEvents []models.RiskEvent
	)

	e.mu.Lock()
	if e.firing == nil || e.firing.record.TradeID != tradeID {
		e.mu.Unlock()
		if e.logger != nil {
			e.logger.Warn("late bridge ack ignored", zap.String("trade_id", tradeID))
		}
		return
	}
	ft := *e.firing
	e.firing = nil

	if err == nil && resp.Confirmed() {
		msg := resp.Comment
		if msg == "" {
			msg = "request completed"
		}
		pos := &models.OpenPosition{
			PositionID:   uuid.NewString(),
			TradeID:      ft.record.TradeID,
			StrategyID:   ft.strategy.StrategyID,
			Symbol:       ft.strategy.Symbol,
			Direction:    ft.strategy.Direction,
			EntryPrice:   ft.entry,
			LotSize:      ft.strategy.LotSize,
			TakeProfit:   ft.strategy.TakeProfit,
			StopLoss:     ft.strategy.StopLoss,
			BrokerTicket: resp.Ticket,
			OpposingZone: ft.strategy.OpposingZone,
			OpenedAt:     now,
		}
		e.position = pos
		e.bailoutSent = false
		e.state = StateInPosition
		e.gov.RecordOutcome(models.TradeStatusConfirmed, now)
		e.bus.Publish(bus.PositionOpened(pos))

		updates = map[string]any{
			"status":         models.TradeStatusConfirmed,
			"broker_ticket":  resp.Ticket,
			"status_message": msg,
		}
		if e.logger != nil {
			e.logger.Info("position opened",
				zap.String("trade_id", tradeID),
				zap.Int64("ticket", resp.Ticket),
				zap.String("symbol", pos.Symbol),
			)
		}
	} else {
		msg := "bridge rejected order"
		switch {
		case err != nil:
			msg = err.Error()
		case resp != nil && resp.Comment != "":
			msg = resp.Comment
		}

		e.state = StateDisarmed
		if e.strategy != nil {
			e.state = StateArmed
		}
		tripped := e.gov.RecordOutcome(models.TradeStatusFailed, now)

		failed := ft.record
		failed.Status = models.TradeStatusFailed
		failed.StatusMessage = msg
		e.bus.Publish(bus.TradeFailed(&failed))

		updates = map[string]any{
			"status":         models.TradeStatusFailed,
			"status_message": msg,
		}
		riskEvents = append(riskEvents, models.RiskEvent{
			Kind:   models.RiskEventFailure,
			Reason: msg,
			Details: mustJSON(map[string]any{
				"trade_id": tradeID,
				"symbol":   ft.record.Symbol,
			}),
		})
		if tripped {
			e.bus.Publish(bus.RiskKilled(risk.KillReasonConsecutiveFailures))
			riskEvents = append(riskEvents, models.RiskEvent{
				Kind:   models.RiskEventAutoKill,
				Reason: risk.KillReasonConsecutiveFailures,
			})
		}
		if e.logger != nil {
			e.logger.Warn("trade failed",
				zap.String("trade_id", tradeID),
				zap.String("message", msg),
				zap.Bool("auto_killed", tripped),
			)
		}
	}
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.repo.UpdateTradeRecord(ctx, tradeID, updates); err != nil && e.logger != nil {
		e.logger.Error("update trade record failed",
			zap.String("trade_id", tradeID), zap.Error(err))
	}
	e.persistSideEffects(ctx, nil, riskEvents)
}

// SetStrategy arms, replaces, or (for NO_TRADE) disarms. Re-posting the
// held strategy_id is a no-op.
func (e *Engine) SetStrategy(ctx context.Context, s models.ActiveStrategy) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	now := e.clock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}

	var logEntries []models.StrategyLogEntry

	e.mu.Lock()
	if entry := e.expireStrategyLocked(now); entry != nil {
		logEntries = append(logEntries, *entry)
	}

	outcome := ArmAccepted
	switch {
	case s.Direction == models.DirectionNoTrade:
		outcome = ArmDisarmed
		if e.strategy != nil {
			e.strategy = nil
			if e.state == StateArmed {
				e.state = StateDisarmed
			}
			e.bus.Publish(bus.StrategyCleared("no_trade"))
		}
		logEntries = append(logEntries, newStrategyLog(s, models.StrategyActionCleared))

	case e.strategy != nil && e.strategy.StrategyID == s.StrategyID:
		outcome = ArmNoop

	default:
		action := models.StrategyActionArmed
		if e.strategy != nil {
			action = models.StrategyActionReplaced
			outcome = ArmReplaced
		}
		e.strategy = &s
		if e.state == StateDisarmed {
			e.state = StateArmed
		}
		e.bus.Publish(bus.StrategyUpdated(&s))
		logEntries = append(logEntries, newStrategyLog(s, action))
	}
	e.mu.Unlock()

	e.persistSideEffects(ctx, logEntries, nil)

	if e.logger != nil && outcome != ArmNoop {
		e.logger.Info("strategy ingest",
			zap.String("strategy_id", s.StrategyID),
			zap.String("symbol", s.Symbol),
			zap.String("direction", string(s.Direction)),
			zap.String("outcome", outcome),
		)
	}
	return outcome, nil
}

// ClearStrategy empties the slot. Reports whether anything was held.
func (e *Engine) ClearStrategy(ctx context.Context) bool {
	now := e.clock()

	var logEntries []models.StrategyLogEntry

	e.mu.Lock()
	if entry := e.expireStrategyLocked(now); entry != nil {
		logEntries = append(logEntries, *entry)
	}
	cleared := false
	if e.strategy != nil {
		logEntries = append(logEntries, newStrategyLog(*e.strategy, models.StrategyActionCleared))
		e.strategy = nil
		if e.state == StateArmed {
			e.state = StateDisarmed
		}
		e.bus.Publish(bus.StrategyCleared("cleared"))
		cleared = true
	}
	e.mu.Unlock()

	e.persistSideEffects(ctx, logEntries, nil)
	return cleared
}

// Strategy returns a copy of the held strategy after the lazy expiry check.
func (e *Engine) Strategy() *models.ActiveStrategy {
	now := e.clock()

	var logEntries []models.StrategyLogEntry

	e.mu.Lock()
	if entry := e.expireStrategyLocked(now); entry != nil {
		logEntries = append(logEntries, *entry)
	}
	var out *models.ActiveStrategy
	if e.strategy != nil {
		s := *e.strategy
		out = &s
	}
	e.mu.Unlock()

	e.persistSideEffects(context.Background(), logEntries, nil)
	return out
}

// OnPositionClose ingests the bridge's close report. Returns false when
// there is nothing to close or the notice does not match the live
// position, which makes retries harmless.
func (e *Engine) OnPositionClose(ctx context.Context, n CloseNotice) bool {
	now := e.clock()

	e.mu.Lock()
	pos := e.position
	if pos == nil {
		e.mu.Unlock()
		return false
	}
	if n.Symbol != "" && n.Symbol != pos.Symbol {
		e.mu.Unlock()
		return false
	}
	if n.BrokerTicket != 0 && pos.BrokerTicket != 0 && n.BrokerTicket != pos.BrokerTicket {
		e.mu.Unlock()
		if e.logger != nil {
			e.logger.Warn("close notice for unknown ticket ignored",
				zap.Int64("ticket", n.BrokerTicket),
				zap.Int64("open_ticket", pos.BrokerTicket),
			)
		}
		return false
	}

	closed := *pos
	e.position = nil
	e.bailoutSent = false
	if e.strategy != nil {
		e.state = StateArmed
	} else {
		e.state = StateDisarmed
	}
	reason := normalizeCloseReason(n.CloseReason)
	e.bus.Publish(bus.PositionClosed(
		closed.PositionID, closed.Symbol, string(closed.Direction),
		n.ClosePrice, n.ProfitPips, reason,
	))
	e.mu.Unlock()

	updates := map[string]any{
		"close_price":  decimal.NewFromFloat(n.ClosePrice),
		"profit_pips":  decimal.NewFromFloat(n.ProfitPips),
		"close_reason": reason,
		"closed_at":    now,
	}
	if err := e.repo.UpdateTradeRecord(ctx, closed.TradeID, updates); err != nil && e.logger != nil {
		e.logger.Error("persist position close failed",
			zap.String("trade_id", closed.TradeID), zap.Error(err))
	}
	if e.logger != nil {
		e.logger.Info("position closed",
			zap.String("position_id", closed.PositionID),
			zap.String("symbol", closed.Symbol),
			zap.Float64("close_price", n.ClosePrice),
			zap.Float64("profit_pips", n.ProfitPips),
			zap.String("close_reason", reason),
		)
	}
	return true
}

// Kill flips the kill switch. Idempotent; only the first call emits.
func (e *Engine) Kill(ctx context.Context, reason string) models.RiskState {
	e.mu.Lock()
	changed := e.gov.Kill(reason)
	snap := e.gov.Snapshot()
	if changed {
		e.bus.Publish(bus.RiskKilled(reason))
	}
	e.mu.Unlock()

	if changed {
		e.persistSideEffects(ctx, nil, []models.RiskEvent{{
			Kind:   models.RiskEventKill,
			Reason: reason,
		}})
		if e.logger != nil {
			e.logger.Warn("kill switch activated", zap.String("reason", reason))
		}
	}
	return snap
}

// Rearm clears the kill switch, the failure streak and any cooldown.
func (e *Engine) Rearm(ctx context.Context) models.RiskState {
	e.mu.Lock()
	changed := e.gov.Rearm()
	snap := e.gov.Snapshot()
	if changed {
		e.bus.Publish(bus.RiskRearmed())
	}
	e.mu.Unlock()

	if changed {
		e.persistSideEffects(ctx, nil, []models.RiskEvent{{
			Kind: models.RiskEventRearm,
		}})
		if e.logger != nil {
			e.logger.Info("kill switch cleared, governor rearmed")
		}
	}
	return snap
}

// RiskState snapshots the governor under the engine lock.
func (e *Engine) RiskState() models.RiskState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gov.Snapshot()
}

// Position returns a copy of the open position, nil when flat.
func (e *Engine) Position() *models.OpenPosition {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.position == nil {
		return nil
	}
	p := *e.position
	return &p
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Candles returns up to the last k closed minute bars, oldest first.
func (e *Engine) Candles(k int) []models.Candle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.candles.Recent(k)
}

// Stats snapshots the counters for health checks and SERVER_STATS.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		State:       e.state,
		Symbol:      e.symbol,
		TickCount:   e.tickCount,
		TradeCount:  e.tradeCount,
		OutOfOrder:  e.outOfOrder,
		BufferLen:   e.buffer.Len(),
		HasStrategy: e.strategy != nil,
		HasPosition: e.position != nil,
		UptimeSecs:  time.Since(e.startedAt).Seconds(),
	}
}

// expireStrategyLocked drops a stale slot. Caller holds the lock and must
// persist the returned log entry after releasing it.
func (e *Engine) expireStrategyLocked(now time.Time) *models.StrategyLogEntry {
	if e.strategy == nil || !e.strategy.Expired(now) {
		return nil
	}
	expired := *e.strategy
	e.strategy = nil
	if e.state == StateArmed {
		e.state = StateDisarmed
	}
	e.bus.Publish(bus.StrategyCleared("expired"))
	if e.logger != nil {
		e.logger.Info("strategy expired",
			zap.String("strategy_id", expired.StrategyID),
			zap.Timep("expires_at", expired.ExpiresAt),
		)
	}
	entry := newStrategyLog(expired, models.StrategyActionExpired)
	return &entry
}

// persistSideEffects writes sink rows after the lock is released. Failures
// are logged and never undo in-memory transitions.
func (e *Engine) persistSideEffects(ctx context.Context, logs []models.StrategyLogEntry, events []models.RiskEvent) {
	if e.repo == nil {
		return
	}
	for i := range logs {
		if err := e.repo.InsertStrategyLog(ctx, &logs[i]); err != nil && e.logger != nil {
			e.logger.Error("persist strategy log failed",
				zap.String("strategy_id", logs[i].StrategyID),
				zap.String("action", logs[i].Action),
				zap.Error(err),
			)
		}
	}
	for i := range events {
		if err := e.repo.InsertRiskEvent(ctx, &events[i]); err != nil && e.logger != nil {
			e.logger.Error("persist risk event failed",
				zap.String("kind", events[i].Kind), zap.Error(err))
		}
	}
}

func newStrategyLog(s models.ActiveStrategy, action string) models.StrategyLogEntry {
	return models.StrategyLogEntry{
		StrategyID: s.StrategyID,
		Action:     action,
		Payload:    mustJSON(s),
	}
}

func mustJSON(v any) datatypes.JSON {
	raw, _ := json.Marshal(v)
	return datatypes.JSON(raw)
}

func orderAction(d models.Direction) string {
	if d == models.DirectionSell {
		return bridge.ActionSell
	}
	return bridge.ActionBuy
}

func orderComment(tradeID string) string {
	id := strings.ReplaceAll(tradeID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "AGV-" + id
}

func normalizeCloseReason(reason string) string {
	switch strings.ToUpper(strings.TrimSpace(reason)) {
	case models.CloseReasonTP:
		return models.CloseReasonTP
	case models.CloseReasonSL:
		return models.CloseReasonSL
	case models.CloseReasonManual:
		return models.CloseReasonManual
	case models.CloseReasonExpert:
		return models.CloseReasonExpert
	default:
		return models.CloseReasonOther
	}
}
