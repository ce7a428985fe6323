// Package tracking fans driver position updates out to per-delivery
// subscribers, decoupling the tracker from any specific push transport.
package tracking

import (
	"sync"

	"fronteira/internal/model"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

// Hub is an in-process publish/subscribe switchboard keyed by delivery id.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan model.PositionUpdate]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]map[chan model.PositionUpdate]struct{}),
	}
}

// Subscribe registers for position updates on one delivery. The returned
// cancel function must be called to release the subscription.
func (h *Hub) Subscribe(deliveryID uuid.UUID) (<-chan model.PositionUpdate, func()) {
	ch := make(chan model.PositionUpdate, subscriberBuffer)

	h.mu.Lock()
	if h.subs[deliveryID] == nil {
		h.subs[deliveryID] = make(map[chan model.PositionUpdate]struct{})
	}
	h.subs[deliveryID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[deliveryID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, deliveryID)
			}
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers an update to every subscriber of the delivery. Slow
// subscribers drop updates rather than stalling the publisher; positions are
// superseded by the next report anyway.
func (h *Hub) Publish(update model.PositionUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[update.DeliveryID] {
		select {
		case ch <- update:
		default:
		}
	}
}

// SubscriberCount reports the live subscriptions for a delivery.
func (h *Hub) SubscriberCount(deliveryID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[deliveryID])
}
