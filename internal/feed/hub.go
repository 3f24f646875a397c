// Package feed pushes bot activity to connected admin dashboards over
// websockets.
//
// The hub owns the client set. Publish never blocks: a client whose buffer
// is full is dropped rather than slowing down the dispatcher.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one message on the feed. Seq increases by one per published
// event, so a client can detect gaps.
type Event struct {
	ID   string    `json:"id"`
	Kind string    `json:"kind"`
	Data any       `json:"d,omitempty"`
	Seq  int64     `json:"seq"`
	At   time.Time `json:"at"`
}

// Hub tracks connected feed clients and fans events out to them.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	seq atomic.Int64
	now func() time.Time
}

// NewHub creates a Hub. Call Run before serving clients.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run processes registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case <-ctx.Done():
			close(h.quit)
			h.shutdown()
			return
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	h.logger.Info("feed client connected", zap.Int("clients", len(h.clients)))
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info("feed client disconnected", zap.Int("clients", len(h.clients)))
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
	}
	h.clients = make(map[*Client]struct{})
	h.logger.Info("feed hub shut down")
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends an event to every connected client.
func (h *Hub) Publish(kind string, data any) {
	ev := Event{
		ID:   uuid.NewString(),
		Kind: kind,
		Data: data,
		Seq:  h.seq.Add(1),
		At:   h.now().UTC(),
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal feed event", zap.String("kind", kind), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- raw:
		default:
			// Slow client. Unregister off this goroutine; Run holds the
			// write lock while removing.
			go h.leave(c)
		}
	}
}

// join and leave hand a client to Run, giving up once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}
