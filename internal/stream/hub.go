package stream

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"citypulse/internal/models"
)

// Hub fans terminal publish-history transitions out to dashboard websocket
// subscribers, keyed by business. Slow subscribers drop updates instead of
// blocking the dispatcher.
type Hub struct {
	Logger *zap.Logger

	mu   sync.Mutex
	subs map[string]map[chan models.PublishHistoryItem]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Logger: logger,
		subs:   make(map[string]map[chan models.PublishHistoryItem]struct{}),
	}
}

func (h *Hub) Subscribe(businessID string) (<-chan models.PublishHistoryItem, func()) {
	ch := make(chan models.PublishHistoryItem, 16)

	h.mu.Lock()
	set, ok := h.subs[businessID]
	if !ok {
		set = make(map[chan models.PublishHistoryItem]struct{})
		h.subs[businessID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[businessID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, businessID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) Broadcast(item models.PublishHistoryItem) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[item.BusinessID] {
		select {
		case ch <- item:
		default:
			if h.Logger != nil {
				h.Logger.Debug("history stream subscriber lagging, update dropped",
					zap.String("business_id", item.BusinessID))
			}
		}
	}
}

// Run keeps the hub alive until ctx is done, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.mu.Lock()
	for businessID, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, businessID)
	}
	h.mu.Unlock()
	return ctx.Err()
}
