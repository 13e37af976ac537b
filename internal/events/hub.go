// Package events fans agent progress out to SSE dashboard streams.
package events

import "sync"

// subscriberBuffer bounds how far a slow dashboard tab may fall behind
// before it starts losing progress events.
const subscriberBuffer = 10

type Hub struct {
	mu      sync.Mutex
	streams map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{streams: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	h.streams[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.streams, ch)
	h.mu.Unlock()
	close(ch)
}

// Publish delivers a progress event to every stream that has room.
// Agents never block on a stalled dashboard connection.
func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.streams {
		select {
		case ch <- evt:
		default:
		}
	}
}
