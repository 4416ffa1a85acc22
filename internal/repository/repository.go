package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"antigravity/internal/models"
)

type ListTradeRecordsParams struct {
	Limit  int
	Status string
	Symbol string
}

type ListStrategyLogParams struct {
	Limit      int
	StrategyID string
}

// TradeStats aggregates trade history for the monitor stats endpoint.
// Wins and Losses count closed trades only.
type TradeStats struct {
	Total           int64           `json:"total"`
	Confirmed       int64           `json:"confirmed"`
	Failed          int64           `json:"failed"`
	Closed          int64           `json:"closed"`
	Wins            int64           `json:"wins"`
	Losses          int64           `json:"losses"`
	TotalProfitPips decimal.Decimal `json:"total_profit_pips"`
	WinRate         float64         `json:"win_rate"`
}

// Repository is the narrow surface over the three append-only sinks. The
// engine treats every write as fire-and-forget: sink errors are logged by
// the caller and never roll back in-memory state.
type Repository interface {
	// Trade records.
	InsertTradeRecord(ctx context.Context, item *models.TradeRecord) error
	UpdateTradeRecord(ctx context.Context, tradeID string, fields map[string]any) error
	GetTradeRecordByTradeID(ctx context.Context, tradeID string) (*models.TradeRecord, error)
	ListTradeRecords(ctx context.Context, params ListTradeRecordsParams) ([]models.TradeRecord, error)
	TradeStats(ctx context.Context) (*TradeStats, error)

	// Risk events.
	InsertRiskEvent(ctx context.Context, item *models.RiskEvent) error
	ListRiskEvents(ctx context.Context, limit int) ([]models.RiskEvent, error)

	// Strategy log.
	InsertStrategyLog(ctx context.Context, item *models.StrategyLogEntry) error
	ListStrategyLog(ctx context.Context, params ListStrategyLogParams) ([]models.StrategyLogEntry, error)
}
