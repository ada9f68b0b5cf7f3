package events

import (
	"context"
	"sync"
	"sync/atomic"
)

const clientBuffer = 16

// Client is one SSE connection's inbox.
type Client struct {
	ownerID string
	ch      chan Event
}

// Events is closed when the client is removed from the hub.
func (c *Client) Events() <-chan Event { return c.ch }

// Hub fans events out to in-process clients. Slow clients lose events rather
// than blocking the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	dropped atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Subscribe registers a client that receives events owned by ownerID.
func (h *Hub) Subscribe(ownerID string) *Client {
	c := &Client{ownerID: ownerID, ch: make(chan Event, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Unsubscribe removes the client and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.ch)
	}
}

// Broadcast delivers ev to every client of its owner.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.ownerID != ev.OwnerID {
			continue
		}
		select {
		case c.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// Publish lets the hub stand in for a Publisher in single-process setups.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.Broadcast(ev)
	return nil
}

// Dropped reports how many deliveries were skipped because a client was full.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client, ending their streams.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.ch)
	}
}
