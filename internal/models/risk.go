package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RiskEventKill     = "KILL"
	RiskEventRearm    = "REARM"
	RiskEventAutoKill = "AUTO_KILL"
	RiskEventBlock    = "BLOCK"
	RiskEventFailure  = "FAILURE"
)

// RiskEvent is the append-only audit row for governor transitions.
type RiskEvent struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind      string         `gorm:"type:varchar(20);not null;index" json:"kind"`
	Reason    string         `gorm:"type:text" json:"reason"`
	Details   datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt time.Time      `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (RiskEvent) TableName() string {
	return "risk_events"
}

// RiskState is the governor's in-memory state as exposed on the status
// endpoint and in events. Copies only; the governor owns the original.
type RiskState struct {
	IsKilled            bool       `json:"is_killed"`
	KillReason          string     `json:"kill_reason,omitempty"`
	TradesToday         int        `json:"trades_today"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastTradeAt         *time.Time `json:"last_trade_at,omitempty"`
	CooldownUntil       *time.Time `json:"cooldown_until,omitempty"`
}

func (s RiskState) InCooldown(now time.Time) bool {
	return s.CooldownUntil != nil && now.Before(*s.CooldownUntil)
}
