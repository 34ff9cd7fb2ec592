// Package websocket pushes live calendar updates to connected clients.
package websocket

import (
	"context"
	"sync"

	"github.com/trogers1052/trademind/internal/models"
)

// Hub fans journal events out to the subscriptions of the affected user
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.JournalEvent]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan models.JournalEvent]struct{})}
}

// Subscribe registers interest in userID's events. Events are signals to
// reload, so a slow subscriber only ever holds the latest pending one.
// The returned func unsubscribes.
func (h *Hub) Subscribe(userID string) (<-chan models.JournalEvent, func()) {
	ch := make(chan models.JournalEvent, 1)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan models.JournalEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
		})
	}
}

// Notify delivers event to every subscription of userID without blocking
func (h *Hub) Notify(userID string, event models.JournalEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Publish notifies local subscribers directly. It stands in for the Kafka
// producer when the event stream is disabled.
func (h *Hub) Publish(_ context.Context, event models.JournalEvent) error {
	h.Notify(event.UserID, event)
	return nil
}

// Subscribers returns the number of live subscriptions for userID
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
