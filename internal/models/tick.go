package models

import (
	"fmt"
	"time"
)

// Tick is one top-of-book quote as delivered by the broker bridge.
// Indicator fields are optional; the bridge only attaches them when the
// terminal computes them.
type Tick struct {
	Symbol string    `json:"symbol"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	Volume float64   `json:"volume,omitempty"`
	Time   time.Time `json:"time"`

	RSI14 *float64 `json:"rsi_14,omitempty"`
	MA20  *float64 `json:"ma_20,omitempty"`
	MA50  *float64 `json:"ma_50,omitempty"`
}

func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

func (t Tick) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("tick symbol is required")
	}
	if t.Ask < t.Bid {
		return fmt.Errorf("tick ask %.5f below bid %.5f", t.Ask, t.Bid)
	}
	return nil
}
