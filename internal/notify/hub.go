// Package notify fans change events out to in-process subscribers, an AMQP
// exchange and a Telegram chat.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
)

// DefaultSubscriberBuffer is the per-subscriber channel capacity.
const DefaultSubscriberBuffer = 32

// Hub delivers events to every live subscriber. A subscriber whose buffer is
// full misses the event; it is expected to refetch what it shows.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan domain.ChangeEvent]struct{}
	buffer int
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		subs:   make(map[chan domain.ChangeEvent]struct{}),
		buffer: buffer,
	}
}

var _ portssvc.EventStream = (*Hub)(nil)

// Publish never blocks.
func (h *Hub) Publish(ctx context.Context, event domain.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			middleware.GetLoggerFromCtx(ctx).Debug("Dropping event for slow subscriber",
				slog.String("table", event.Table),
				slog.String("key", event.Key))
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func unregisters it and
// closes the channel; calling it more than once is safe.
func (h *Hub) Subscribe() (<-chan domain.ChangeEvent, func()) {
	ch := make(chan domain.ChangeEvent, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Multi publishes every event to each of its publishers in order.
type Multi []portssvc.EventPublisher

func (m Multi) Publish(ctx context.Context, event domain.ChangeEvent) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}
