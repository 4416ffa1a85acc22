package models

import (
	"fmt"
	"time"
)

type Direction string

const (
	DirectionBuy     Direction = "BUY"
	DirectionSell    Direction = "SELL"
	DirectionNoTrade Direction = "NO_TRADE"
)

func (d Direction) Valid() bool {
	switch d {
	case DirectionBuy, DirectionSell, DirectionNoTrade:
		return true
	}
	return false
}

// EntryZone is a closed price interval; boundary prices count as inside.
type EntryZone struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (z EntryZone) Contains(price float64) bool {
	return price >= z.Low && price <= z.High
}

// ActiveStrategy is the plan the engine is armed with. At most one exists
// at any instant; it is consumed by the first fire.
type ActiveStrategy struct {
	StrategyID   string     `json:"strategy_id"`
	Symbol       string     `json:"symbol"`
	Direction    Direction  `json:"direction"`
	EntryZone    EntryZone  `json:"entry_zone"`
	TakeProfit   float64    `json:"take_profit"`
	StopLoss     float64    `json:"stop_loss"`
	LotSize      float64    `json:"lot_size"`
	Rationale    string     `json:"rationale,omitempty"`
	OpposingZone *EntryZone `json:"opposing_zone,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Validate enforces the arming invariants. NO_TRADE plans skip the zone
// geometry checks; they exist only to disarm.
func (s *ActiveStrategy) Validate() error {
	if !s.Direction.Valid() {
		return fmt.Errorf("direction %q is not one of BUY, SELL, NO_TRADE", s.Direction)
	}
	if s.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if s.Direction == DirectionNoTrade {
		return nil
	}
	if s.EntryZone.Low > s.EntryZone.High {
		return fmt.Errorf("entry zone inverted: low %.5f > high %.5f", s.EntryZone.Low, s.EntryZone.High)
	}
	if s.LotSize <= 0 {
		return fmt.Errorf("lot size must be positive, got %.5f", s.LotSize)
	}
	switch s.Direction {
	case DirectionBuy:
		if s.TakeProfit <= s.EntryZone.High {
			return fmt.Errorf("BUY take profit %.5f must sit above zone high %.5f", s.TakeProfit, s.EntryZone.High)
		}
		if s.StopLoss >= s.EntryZone.Low {
			return fmt.Errorf("BUY stop loss %.5f must sit below zone low %.5f", s.StopLoss, s.EntryZone.Low)
		}
	case DirectionSell:
		if s.TakeProfit >= s.EntryZone.Low {
			return fmt.Errorf("SELL take profit %.5f must sit below zone low %.5f", s.TakeProfit, s.EntryZone.Low)
		}
		if s.StopLoss <= s.EntryZone.High {
			return fmt.Errorf("SELL stop loss %.5f must sit above zone high %.5f", s.StopLoss, s.EntryZone.High)
		}
	}
	if s.OpposingZone != nil && s.OpposingZone.Low > s.OpposingZone.High {
		return fmt.Errorf("opposing zone inverted: low %.5f > high %.5f", s.OpposingZone.Low, s.OpposingZone.High)
	}
	return nil
}

func (s *ActiveStrategy) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
