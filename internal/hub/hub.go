// internal/hub/hub.go
package hub

import (
	"log"
	"sync"
)

// Hub maintains the set of live connections and fans broadcast payloads out
// to them. Every accepted connection is a member from Register until
// Unregister; devices receive broadcasts like any other subscriber.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

// Register adds a connection to the subscriber set. It starts receiving
// every subsequent Publish; nothing published earlier is replayed.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	log.Printf("connection %s registered (%d subscribers)", client.ID, h.Count())
}

// Unregister removes a connection and closes its outbound queue. Calling it
// again for the same connection is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	if ok {
		log.Printf("connection %s unregistered (%d subscribers)", client.ID, h.Count())
	}
}

// Publish enqueues one pre-serialized payload to every current member.
// Enqueueing never blocks: a member whose queue is full is dropped from the
// set rather than stalling delivery to the others. Payloads enqueue in
// Publish call order for members that stay registered throughout.
func (h *Hub) Publish(payload []byte) {
	var stalled []*Client

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		log.Printf("connection %s send queue full, dropping subscriber", client.ID)
		h.Unregister(client)
	}
}

// Unicast enqueues a payload for one member only. Used for the handshake
// acknowledgement; no other frame addresses a single connection.
func (h *Hub) Unicast(client *Client, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- payload:
	default:
		log.Printf("connection %s send queue full, unicast dropped", client.ID)
	}
}

// Count reports the current subscriber set size.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
