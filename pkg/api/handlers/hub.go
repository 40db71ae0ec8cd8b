package handlers

import (
	"sync"

	"github.com/urmzd/switchboard/pkg/device"
)

// Hub fans push events out to every connected socket.
type Hub struct {
	mu          sync.Mutex
	subscribers []chan device.Event
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers a new socket and returns its event channel.
func (h *Hub) Subscribe() chan device.Event {
	ch := make(chan device.Event, 16)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription.
func (h *Hub) Unsubscribe(ch chan device.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subscribers {
		if sub == ch {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// BroadcastExcept sends evt to every subscriber other than skip. A nil skip
// reaches everyone. Full subscribers miss the event.
func (h *Hub) BroadcastExcept(evt device.Event, skip chan device.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subscribers {
		if ch == skip {
			continue
		}
		select {
		case ch <- evt:
		default:
		}
	}
}

// Len returns the number of connected sockets.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
