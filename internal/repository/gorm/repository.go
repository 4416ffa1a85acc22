package gormrepository

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"antigravity/internal/models"
	"antigravity/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

// --- Trade records -----------------------------------------------------------

func (s *Store) InsertTradeRecord(ctx context.Context, item *models.TradeRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.TradeID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trade_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "status_message", "broker_ticket",
			"close_price", "profit_pips", "close_reason", "closed_at",
		}),
	}).Create(item).Error
}

func (s *Store) UpdateTradeRecord(ctx context.Context, tradeID string, fields map[string]any) error {
	if s == nil || s.db == nil || len(fields) == 0 {
		return nil
	}
	if strings.TrimSpace(tradeID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.TradeRecord{}).
		Where("trade_id = ?", tradeID).
		Updates(fields).Error
}

func (s *Store) GetTradeRecordByTradeID(ctx context.Context, tradeID string) (*models.TradeRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if strings.TrimSpace(tradeID) == "" {
		return nil, nil
	}
	var item models.TradeRecord
	err := s.db.WithContext(ctx).
		Where("trade_id = ?", tradeID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTradeRecords(ctx context.Context, params repository.ListTradeRecordsParams) ([]models.TradeRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	q := s.db.WithContext(ctx).Model(&models.TradeRecord{})
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Symbol != "" {
		q = q.Where("symbol = ?", params.Symbol)
	}
	var items []models.TradeRecord
	err := q.Order("fired_at DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (s *Store) TradeStats(ctx context.Context) (*repository.TradeStats, error) {
	if s == nil || s.db == nil {
		return &repository.TradeStats{TotalProfitPips: decimal.Zero}, nil
	}
	stats := &repository.TradeStats{TotalProfitPips: decimal.Zero}

	type row struct {
		Status string
		N      int64
	}
	var byStatus []row
	if err := s.db.WithContext(ctx).
		Model(&models.TradeRecord{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, r := range byStatus {
		stats.Total += r.N
		switch r.Status {
		case models.TradeStatusConfirmed:
			stats.Confirmed = r.N
		case models.TradeStatusFailed:
			stats.Failed = r.N
		}
	}

	closed := s.db.WithContext(ctx).
		Model(&models.TradeRecord{}).
		Where("closed_at IS NOT NULL")
	if err := closed.Count(&stats.Closed).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.TradeRecord{}).
		Where("closed_at IS NOT NULL AND profit_pips > 0").
		Count(&stats.Wins).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.TradeRecord{}).
		Where("closed_at IS NOT NULL AND profit_pips < 0").
		Count(&stats.Losses).Error; err != nil {
		return nil, err
	}

	var pips float64
	if err := s.db.WithContext(ctx).
		Model(&models.TradeRecord{}).
		Select("COALESCE(SUM(profit_pips),0)").
		Where("closed_at IS NOT NULL").
		Scan(&pips).Error; err != nil {
		return nil, err
	}
	stats.TotalProfitPips = decimal.NewFromFloat(pips)
	if stats.Closed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Closed)
	}
	return stats, nil
}

// --- Risk events ---------------------------------------------------------------

func (s *Store) InsertRiskEvent(ctx context.Context, item *models.RiskEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListRiskEvents(ctx context.Context, limit int) ([]models.RiskEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	var items []models.RiskEvent
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// --- Strategy log ----------------------------------------------------------------

func (s *Store) InsertStrategyLog(ctx context.Context, item *models.StrategyLogEntry) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListStrategyLog(ctx context.Context, params repository.ListStrategyLogParams) ([]models.StrategyLogEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	q := s.db.WithContext(ctx).Model(&models.StrategyLogEntry{})
	if params.StrategyID != "" {
		q = q.Where("strategy_id = ?", params.StrategyID)
	}
	var items []models.StrategyLogEntry
	err := q.Order("created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}
