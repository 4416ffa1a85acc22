package engine

import (
	"time"

	"antigravity/internal/models"
)

// CandleBuilder folds ticks into one-minute candles and keeps a bounded
// history of closed bars for the monitor surface. Like TickBuffer it is
// guarded by the engine's lock.
type CandleBuilder struct {
	current *models.Candle
	closed  []models.Candle
	keep    int
}

func NewCandleBuilder(keep int) *CandleBuilder {
	if keep <= 0 {
		keep = 120
	}
	return &CandleBuilder{closed: make([]models.Candle, 0, keep), keep: keep}
}

// Push folds one tick into the forming bar. When the tick opens a new
// minute (or a new symbol) the previous bar closes and is returned.
func (cb *CandleBuilder) Push(t models.Tick) *models.Candle {
	mid := t.Mid()
	if cb.current == nil {
		c := models.NewCandle(t.Symbol, t.Time, mid)
		cb.current = &c
		return nil
	}
	minute := t.Time.Truncate(time.Minute)
	if cb.current.Symbol == t.Symbol && cb.current.StartAt.Equal(minute) {
		cb.current.Update(mid)
		return nil
	}
	done := *cb.current
	if len(cb.closed) == cb.keep {
		copy(cb.closed, cb.closed[1:])
		cb.closed[len(cb.closed)-1] = done
	} else {
		cb.closed = append(cb.closed, done)
	}
	c := models.NewCandle(t.Symbol, t.Time, mid)
	cb.current = &c
	return &done
}

// Recent returns up to the last k closed bars, oldest first, as a copy.
func (cb *CandleBuilder) Recent(k int) []models.Candle {
	if k <= 0 || len(cb.closed) == 0 {
		return nil
	}
	if k > len(cb.closed) {
		k = len(cb.closed)
	}
	out := make([]models.Candle, k)
	copy(out, cb.closed[len(cb.closed)-k:])
	return out
}

// Current returns a copy of the forming bar, if any.
func (cb *CandleBuilder) Current() *models.Candle {
	if cb.current == nil {
		return nil
	}
	c := *cb.current
	return &c
}

func (cb *CandleBuilder) Clear() {
	cb.current = nil
	cb.closed = cb.closed[:0]
}
