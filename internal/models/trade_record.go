package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TradeStatusPending   = "PENDING"
	TradeStatusConfirmed = "CONFIRMED"
	TradeStatusFailed    = "FAILED"
)

const (
	CloseReasonTP     = "TP"
	CloseReasonSL     = "SL"
	CloseReasonManual = "MANUAL"
	CloseReasonExpert = "EXPERT"
	CloseReasonOther  = "OTHER"
)

// TradeRecord is the append-only history row for one fire attempt and its
// eventual close. Rows are created PENDING at dispatch time and updated as
// the bridge reports back.
type TradeRecord struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	TradeID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"trade_id"`

	StrategyID string `gorm:"type:varchar(64);not null;index" json:"strategy_id"`
	Symbol     string `gorm:"type:varchar(20);not null;index" json:"symbol"`
	Direction  string `gorm:"type:varchar(10);not null" json:"direction"`

	EntryPrice decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"entry_price"`
	LotSize    decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"lot_size"`
	TakeProfit decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"take_profit"`
	StopLoss   decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"stop_loss"`

	BrokerTicket  int64  `gorm:"default:0" json:"broker_ticket"`
	Status        string `gorm:"type:varchar(20);not null;index" json:"status"`
	StatusMessage string `gorm:"type:text" json:"status_message,omitempty"`
	Rationale     string `gorm:"type:text" json:"rationale,omitempty"`

	FiredAt     time.Time       `gorm:"type:timestamptz;not null;index" json:"fired_at"`
	ClosePrice  decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"close_price"`
	ProfitPips  decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0" json:"profit_pips"`
	CloseReason string          `gorm:"type:varchar(20)" json:"close_reason,omitempty"`
	ClosedAt    *time.Time      `gorm:"type:timestamptz" json:"closed_at,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"-"`
}

func (TradeRecord) TableName() string {
	return "trade_records"
}
