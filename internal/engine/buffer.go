package engine

import (
	"antigravity/internal/models"
)

// TickBuffer is a fixed-capacity window of recent ticks, oldest first.
// Not safe for concurrent use; the engine's lock guards it.
type TickBuffer struct {
	ticks []models.Tick
	cap   int
}

func NewTickBuffer(capacity int) *TickBuffer {
	if capacity <= 0 {
		capacity = 30
	}
	return &TickBuffer{ticks: make([]models.Tick, 0, capacity), cap: capacity}
}

func (b *TickBuffer) Push(t models.Tick) {
	if len(b.ticks) == b.cap {
		copy(b.ticks, b.ticks[1:])
		b.ticks[len(b.ticks)-1] = t
		return
	}
	b.ticks = append(b.ticks, t)
}

// Recent returns up to the last k ticks, newest last, as a copy.
func (b *TickBuffer) Recent(k int) []models.Tick {
	if k <= 0 || len(b.ticks) == 0 {
		return nil
	}
	if k > len(b.ticks) {
		k = len(b.ticks)
	}
	out := make([]models.Tick, k)
	copy(out, b.ticks[len(b.ticks)-k:])
	return out
}

func (b *TickBuffer) Len() int {
	return len(b.ticks)
}

func (b *TickBuffer) Clear() {
	b.ticks = b.ticks[:0]
}

// Snapshot copies the whole window, oldest first.
func (b *TickBuffer) Snapshot() []models.Tick {
	return b.Recent(len(b.ticks))
}
