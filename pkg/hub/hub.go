package hub

import (
	"context"
	"sync"

	"github.com/teslashibe/go-centroid/internal/log"
)

// subscriber is anything the hub can queue messages for.
type subscriber interface {
	queue() chan Message
}

// Hub maintains the set of active subscribers and broadcasts messages to them.
type Hub struct {
	name string

	clients    map[subscriber]bool
	broadcast  chan Message
	register   chan subscriber
	unregister chan subscriber

	// Guards count for readers outside the run loop.
	mu    sync.RWMutex
	count int

	done chan struct{}
}

// New creates a hub. Call Run to start it.
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[subscriber]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan subscriber),
		unregister: make(chan subscriber),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled. On exit every client
// queue is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.setCount()
			log.Debug("hub client connected", "hub", h.name, "clients", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				log.Debug("hub client disconnected", "hub", h.name, "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.queue() <- msg:
				default:
					// Slow consumer: its buffer is full.
					h.drop(c)
					log.Warn("hub dropped slow client", "hub", h.name)
				}
			}
		}
	}
}

func (h *Hub) drop(c subscriber) {
	delete(h.clients, c)
	close(c.queue())
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// Broadcast queues msg for all clients. It never blocks; when the hub is
// backed up the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn("hub broadcast channel full, dropping message", "hub", h.name)
	}
}

// BroadcastEvent encodes and broadcasts an event.
func (h *Hub) BroadcastEvent(eventType string, payload any) error {
	msg, err := NewEventMessage(eventType, payload)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c subscriber) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters c unless the hub has stopped.
func (h *Hub) leave(c subscriber) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
