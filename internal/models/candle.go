package models

import (
	"math"
	"time"
)

// Candle is a one-minute OHLC bar folded from tick mid prices.
type Candle struct {
	Symbol    string    `json:"symbol"`
	StartAt   time.Time `json:"start_at"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	TickCount int       `json:"tick_count"`
}

func NewCandle(symbol string, at time.Time, price float64) Candle {
	return Candle{
		Symbol:    symbol,
		StartAt:   at.Truncate(time.Minute),
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		TickCount: 1,
	}
}

func (c *Candle) Update(price float64) {
	if price > c.High {
		c.High = price
	}
	if price < c.Low {
		c.Low = price
	}
	c.Close = price
	c.TickCount++
}

// RejectionWick reports whether the bar closed with a counter-directional
// wick of at least minWickRatio of the bar's range: a long lower wick with
// a non-red close for BUY, the mirror for SELL.
func (c Candle) RejectionWick(direction Direction, minWickRatio float64) bool {
	totalRange := c.High - c.Low
	if totalRange == 0 {
		return false
	}
	bodyTop := math.Max(c.Open, c.Close)
	bodyBottom := math.Min(c.Open, c.Close)
	switch direction {
	case DirectionBuy:
		return (bodyBottom-c.Low)/totalRange >= minWickRatio && c.Close >= c.Open
	case DirectionSell:
		return (c.High-bodyTop)/totalRange >= minWickRatio && c.Close <= c.Open
	}
	return false
}
