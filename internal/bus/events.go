package bus

import (
	"encoding/json"

	"antigravity/internal/models"
)

// Event types fanned out to monitor subscribers. The wire form is a flat
// JSON object carrying an "event" discriminator.
const (
	EventSnapshot        = "SNAPSHOT"
	EventStrategyUpdated = "STRATEGY_UPDATED"
	EventStrategyCleared = "STRATEGY_CLEARED"
	EventTradeFiring     = "TRADE_FIRING"
	EventPositionOpened  = "POSITION_OPENED"
	EventPositionClosed  = "POSITION_CLOSED"
	EventTradeFailed     = "TRADE_FAILED"
	EventTradeBlocked    = "TRADE_BLOCKED"
	EventRiskKilled      = "RISK_KILLED"
	EventRiskRearmed     = "RISK_REARMED"
	EventServerStats     = "SERVER_STATS"
)

// Event is one bus message. Data is rendered once at construction so
// fan-out to N subscribers never re-marshals.
type Event struct {
	Type string
	Data []byte
}

func render(event string, fields map[string]any) []byte {
	doc := make(map[string]any, len(fields)+1)
	doc["event"] = event
	for k, v := range fields {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return []byte(`{"event":"SERIALIZATION_ERROR"}`)
	}
	return raw
}

// Snapshot is sent to a new subscriber only, never broadcast.
func Snapshot(fields map[string]any) Event {
	return Event{Type: EventSnapshot, Data: render(EventSnapshot, fields)}
}

func StrategyUpdated(s *models.ActiveStrategy) Event {
	return Event{Type: EventStrategyUpdated, Data: render(EventStrategyUpdated, map[string]any{
		"strategy": s,
	})}
}

// StrategyCleared carries why the slot emptied: "cleared", "expired" or
// "no_trade".
func StrategyCleared(reason string) Event {
	return Event{Type: EventStrategyCleared, Data: render(EventStrategyCleared, map[string]any{
		"reason": reason,
	})}
}

func TradeFiring(rec *models.TradeRecord) Event {
	return Event{Type: EventTradeFiring, Data: render(EventTradeFiring, map[string]any{
		"record": rec,
	})}
}

func PositionOpened(p *models.OpenPosition) Event {
	return Event{Type: EventPositionOpened, Data: render(EventPositionOpened, map[string]any{
		"position": p,
	})}
}

func PositionClosed(positionID, symbol, direction string, closePrice, profitPips float64, closeReason string) Event {
	return Event{Type: EventPositionClosed, Data: render(EventPositionClosed, map[string]any{
		"position_id":  positionID,
		"symbol":       symbol,
		"direction":    direction,
		"close_price":  closePrice,
		"profit_pips":  profitPips,
		"close_reason": closeReason,
	})}
}

func TradeFailed(rec *models.TradeRecord) Event {
	return Event{Type: EventTradeFailed, Data: render(EventTradeFailed, map[string]any{
		"record": rec,
	})}
}

func TradeBlocked(symbol, reason string) Event {
	return Event{Type: EventTradeBlocked, Data: render(EventTradeBlocked, map[string]any{
		"symbol": symbol,
		"reason": reason,
	})}
}

func RiskKilled(reason string) Event {
	return Event{Type: EventRiskKilled, Data: render(EventRiskKilled, map[string]any{
		"reason": reason,
	})}
}

func RiskRearmed() Event {
	return Event{Type: EventRiskRearmed, Data: render(EventRiskRearmed, nil)}
}

// Stats is the periodic SERVER_STATS payload, emitted by the cron runner
// so dashboards stay alive between trades.
type Stats struct {
	TickCount     uint64  `json:"tick_count"`
	TradeCount    uint64  `json:"trade_count"`
	Subscribers   int     `json:"subscribers"`
	EventsDropped uint64  `json:"events_dropped"`
	State         string  `json:"state"`
	UptimeSecs    float64 `json:"uptime_secs"`
	Symbol        string  `json:"symbol"`
}

func ServerStats(s Stats) Event {
	return Event{Type: EventServerStats, Data: render(EventServerStats, map[string]any{
		"tick_count":     s.TickCount,
		"trade_count":    s.TradeCount,
		"subscribers":    s.Subscribers,
		"events_dropped": s.EventsDropped,
		"state":          s.State,
		"uptime_secs":    s.UptimeSecs,
		"symbol":         s.Symbol,
	})}
}
