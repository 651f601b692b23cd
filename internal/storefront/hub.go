package storefront

import (
	"log/slog"
	"sync"

	"bookstore/internal/bookstate"
)

// Hub fans the books selector output out to websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Watch pushes every new selector output of store to attached clients. The
// returned func stops watching.
func (h *Hub) Watch(store *bookstate.Store) func() {
	return store.Subscribe(func(s bookstate.State) {
		payload, err := encodeBooks(bookstate.SelectBooks(s))
		if err != nil {
			slog.Error("books frame marshal error", slog.Any("error", err))
			return
		}
		h.Broadcast(payload)
	})
}

// Attach registers c and queues the frame built by initial as its first
// message. initial runs under the hub lock so no broadcast can slip between
// the snapshot and the registration.
func (h *Hub) Attach(c *Client, initial func() ([]byte, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	payload, err := initial()
	if err != nil {
		return err
	}
	c.send <- payload
	h.clients[c] = struct{}{}
	slog.Info("ws client attached", slog.String("clientId", c.id), slog.Int("clients", len(h.clients)))
	return nil
}

func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	slog.Info("ws client detached", slog.String("clientId", c.id), slog.Int("clients", len(h.clients)))
}

// Broadcast never blocks: a client whose buffer is full is detached. Sends
// happen under the read lock because detaching closes the send channel.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slog.Warn("ws client too slow, dropping", slog.String("clientId", c.id))
			go h.Detach(c)
		}
	}
}

// Len reports the number of attached clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.detachLocked(c)
	}
}
