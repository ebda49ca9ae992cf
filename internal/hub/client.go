// internal/hub/client.go
package hub

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
	// Outbound queue depth per connection.
	sendBuffer = 256
)

// SessionHandler consumes the inbound side of a connection's lifecycle.
// OnFrame receives each raw frame read from the peer; OnClose fires exactly
// when the read pump exits, for any reason.
type SessionHandler interface {
	OnFrame(client *Client, raw []byte)
	OnClose(client *Client)
}

// Client is the middleman between one websocket connection and the hub.
// A Client is not a device: it may emit telemetry frames, or nothing at
// all, and receives broadcasts either way.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Outbound exposes the connection's delivery queue. The write pump drains
// it; tests observe it directly.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// ReadPump pumps frames from the websocket connection to the handler. It
// runs in its own goroutine per connection; a transport error or peer close
// ends the pump and triggers OnClose for this connection only.
func (c *Client) ReadPump(handler SessionHandler) {
	defer func() {
		handler.OnClose(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("connection %s read error: %v", c.ID, err)
			}
			return
		}
		handler.OnFrame(c, raw)
	}
}

// WritePump pumps queued payloads to the websocket connection and keeps the
// peer alive with pings. It exits when the hub closes the send queue or a
// write fails; the transport close then unwinds the read pump too.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("connection %s write error: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
