package models

import (
	"time"
)

// OpenPosition is the single live position, held in memory by the engine.
// Presence of one forbids new fires. BrokerTicket stays zero until the
// bridge confirms the order.
type OpenPosition struct {
	PositionID   string     `json:"position_id"`
	TradeID      string     `json:"trade_id"`
	StrategyID   string     `json:"strategy_id"`
	Symbol       string     `json:"symbol"`
	Direction    Direction  `json:"direction"`
	EntryPrice   float64    `json:"entry_price"`
	LotSize      float64    `json:"lot_size"`
	TakeProfit   float64    `json:"take_profit"`
	StopLoss     float64    `json:"stop_loss"`
	BrokerTicket int64      `json:"broker_ticket,omitempty"`
	OpposingZone *EntryZone `json:"opposing_zone,omitempty"`
	SLMovedToBE  bool       `json:"sl_moved_to_be"`
	OpenedAt     time.Time  `json:"opened_at"`
}
