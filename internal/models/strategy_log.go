package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StrategyActionArmed    = "ARMED"
	StrategyActionReplaced = "REPLACED"
	StrategyActionCleared  = "CLEARED"
	StrategyActionExpired  = "EXPIRED"
	StrategyActionFired    = "FIRED"
)

// StrategyLogEntry records every arm/replace/clear/expire/fire with a JSON
// snapshot of the plan, so advisor behavior can be audited later.
type StrategyLogEntry struct {
	ID         uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	StrategyID string         `gorm:"type:varchar(64);not null;index" json:"strategy_id"`
	Action     string         `gorm:"type:varchar(20);not null;index" json:"action"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (StrategyLogEntry) TableName() string {
	return "strategy_log"
}
