package db

import (
	"antigravity/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.TradeRecord{},
		&models.RiskEvent{},
		&models.StrategyLogEntry{},
	)
}
