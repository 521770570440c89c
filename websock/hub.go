package websock

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrHubClosed = errors.New("websocket hub closed")

// Frame is what every connected viewer receives.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub keeps the set of connected viewers and fans events out to them.
// Membership changes and broadcasts are serialized through Run.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled or
// Stop is called. Every client still connected is closed on the way out.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			h.Stop()
			return
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("viewer connected", zap.String("client", c.ID), zap.Int("clients", n))

		case c := <-h.unregister:
			h.remove(c)

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.Send <- data:
				default:
					// buffer full; drop the viewer rather than stall everyone
					close(c.Send)
					delete(h.clients, c)
					h.log.Warn("dropping slow viewer", zap.String("client", c.ID))
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.Send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.log.Info("viewer disconnected", zap.String("client", c.ID), zap.Int("clients", n))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
}

// Stop shuts the hub down. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds a client. It returns false once the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish marshals the event once and queues it for every connected client.
func (h *Hub) Publish(ctx context.Context, event string, payload any) error {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return err
	}
	return h.PublishRaw(ctx, data)
}

// PublishRaw queues an already encoded frame.
func (h *Hub) PublishRaw(ctx context.Context, frame []byte) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}

	select {
	case h.broadcast <- frame:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
