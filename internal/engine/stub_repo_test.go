package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"antigravity/internal/models"
	"antigravity/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// Engine goroutines write to it concurrently, so every method holds the
// mutex; tests read back through the snapshot helpers.
type stubRepo struct {
	mu      sync.Mutex
	records map[string]*models.TradeRecord
	order   []string
	events  []models.RiskEvent
	logs    []models.StrategyLogEntry
}

var _ repository.Repository = (*stubRepo)(nil)

func newStubRepo() *stubRepo {
	return &stubRepo{records: make(map[string]*models.TradeRecord)}
}

func (s *stubRepo) InsertTradeRecord(_ context.Context, item *models.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[item.TradeID]; ok {
		return fmt.Errorf("duplicate trade_id %s", item.TradeID)
	}
	rec := *item
	s.records[item.TradeID] = &rec
	s.order = append(s.order, item.TradeID)
	return nil
}

func (s *stubRepo) UpdateTradeRecord(_ context.Context, tradeID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tradeID]
	if !ok {
		return fmt.Errorf("trade_id %s not found", tradeID)
	}
	if v, ok := fields["status"].(string); ok {
		rec.Status = v
	}
	if v, ok := fields["status_message"].(string); ok {
		rec.StatusMessage = v
	}
	if v, ok := fields["broker_ticket"].(int64); ok {
		rec.BrokerTicket = v
	}
	if v, ok := fields["close_price"].(decimal.Decimal); ok {
		rec.ClosePrice = v
	}
	if v, ok := fields["profit_pips"].(decimal.Decimal); ok {
		rec.ProfitPips = v
	}
	if v, ok := fields["close_reason"].(string); ok {
		rec.CloseReason = v
	}
	if v, ok := fields["closed_at"].(time.Time); ok {
		at := v
		rec.ClosedAt = &at
	}
	return nil
}

func (s *stubRepo) GetTradeRecordByTradeID(_ context.Context, tradeID string) (*models.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tradeID]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (s *stubRepo) ListTradeRecords(_ context.Context, params repository.ListTradeRecordsParams) ([]models.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TradeRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.records[s.order[i]]
		if params.Status != "" && rec.Status != params.Status {
			continue
		}
		if params.Symbol != "" && rec.Symbol != params.Symbol {
			continue
		}
		out = append(out, *rec)
		if params.Limit > 0 && len(out) >= params.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) TradeStats(_ context.Context) (*repository.TradeStats, error) {
	return &repository.TradeStats{}, nil
}

func (s *stubRepo) InsertRiskEvent(_ context.Context, item *models.RiskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *item)
	return nil
}

func (s *stubRepo) ListRiskEvents(_ context.Context, limit int) ([]models.RiskEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RiskEvent, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		out = append(out, s.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) InsertStrategyLog(_ context.Context, item *models.StrategyLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *item)
	return nil
}

func (s *stubRepo) ListStrategyLog(_ context.Context, params repository.ListStrategyLogParams) ([]models.StrategyLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StrategyLogEntry, 0, len(s.logs))
	for i := len(s.logs) - 1; i >= 0; i-- {
		if params.StrategyID != "" && s.logs[i].StrategyID != params.StrategyID {
			continue
		}
		out = append(out, s.logs[i])
		if params.Limit > 0 && len(out) >= params.Limit {
			break
		}
	}
	return out, nil
}

// trade returns a copy of the stored record, nil when absent.
func (s *stubRepo) trade(tradeID string) *models.TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tradeID]
	if !ok {
		return nil
	}
	out := *rec
	return &out
}

// riskKinds returns the kinds of all persisted risk events, oldest first.
func (s *stubRepo) riskKinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Kind)
	}
	return out
}

// logActions returns the actions of all strategy log rows, oldest first.
func (s *stubRepo) logActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.logs))
	for _, entry := range s.logs {
		out = append(out, entry.Action)
	}
	return out
}
