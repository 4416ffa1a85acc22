package bus

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Bus fans events out to per-subscriber bounded queues. A publisher never
// blocks: when a subscriber's queue is full its oldest event is evicted
// (and counted) to make room. Slow consumers lag, they do not stall the
// engine's tick path.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Event
	nextID uint64
	buf    int

	dropped uint64

	logger *zap.Logger
}

func New(subscriberBuffer int, logger *zap.Logger) *Bus {
	if subscriberBuffer <= 0 {
		subscriberBuffer = 256
	}
	return &Bus{
		subs:   map[uint64]chan Event{},
		buf:    subscriberBuffer,
		logger: logger,
	}
}

// Subscribe registers a new queue and returns its id plus the receive side.
// The caller must Unsubscribe when done or the queue leaks.
func (b *Bus) Subscribe() (uint64, <-chan Event) {
	ch := make(chan Event, b.buf)
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = ch
	b.mu.Unlock()
	if b.logger != nil {
		b.logger.Debug("bus: subscriber added", zap.Uint64("id", id))
	}
	return id, ch
}

// Unsubscribe removes the queue and closes it so range loops terminate.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()
	if ok {
		close(ch)
		if b.logger != nil {
			b.logger.Debug("bus: subscriber removed", zap.Uint64("id", id))
		}
	}
}

// Publish delivers ev to every subscriber without ever blocking.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Queue full: evict the oldest, then retry once.
			select {
			case <-ch:
				atomic.AddUint64(&b.dropped, 1)
			default:
			}
			select {
			case ch <- ev:
			default:
				atomic.AddUint64(&b.dropped, 1)
			}
		}
	}
}

// Dropped returns how many events were evicted from full queues.
func (b *Bus) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return atomic.LoadUint64(&b.dropped)
}

func (b *Bus) Subscribers() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
