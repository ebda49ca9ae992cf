// internal/device/session.go
package device

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// State of the session's transport.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Sampler produces one ambient/object temperature pair per report interval.
type Sampler func() (ambientTemp, objectTemp float64)

// Session is the device-side counterpart of the gateway: it dials the
// websocket endpoint, handshakes once, then pushes temperature frames on a
// fixed interval. Any transport error drops it back to Disconnected and a
// fixed backoff later it dials again. Broadcasts arriving from the gateway
// are drained and discarded; the device is a subscriber like everyone else
// but has no use for its own echoes.
type Session struct {
	url        string
	deviceID   string
	deviceName string
	interval   time.Duration
	backoff    time.Duration
	sample     Sampler

	state atomic.Int32
}

func NewSession(url, deviceID, deviceName string, interval, backoff time.Duration, sample Sampler) *Session {
	return &Session{
		url:        url,
		deviceID:   deviceID,
		deviceName: deviceName,
		interval:   interval,
		backoff:    backoff,
		sample:     sample,
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// Run drives the connect/report/reconnect loop until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	defer s.setState(Disconnected)
	for {
		if ctx.Err() != nil {
			return
		}

		s.setState(Connecting)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.setState(Disconnected)
			log.Printf("device %s: dial %s failed: %v", s.deviceID, s.url, err)
			if !sleep(ctx, s.backoff) {
				return
			}
			continue
		}

		s.setState(Connected)
		log.Printf("device %s: connected to %s", s.deviceID, s.url)
		s.reportLoop(ctx, conn)
		s.setState(Disconnected)

		if !sleep(ctx, s.backoff) {
			return
		}
	}
}

func (s *Session) reportLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// The gateway may broadcast at any time; the reader drains those
	// frames and doubles as the transport-error detector.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	if err := s.writeJSON(conn, handshakeFrame{
		Type:       "handshake",
		DeviceID:   s.deviceID,
		DeviceName: s.deviceName,
	}); err != nil {
		log.Printf("device %s: handshake failed: %v", s.deviceID, err)
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case err := <-readErr:
			log.Printf("device %s: connection lost: %v", s.deviceID, err)
			return
		case <-ticker.C:
			ambient, object := s.sample()
			err := s.writeJSON(conn, temperatureFrame{
				Type:        "temperature",
				DeviceID:    s.deviceID,
				AmbientTemp: ambient,
				ObjectTemp:  object,
				Timestamp:   time.Now().UnixMilli(),
			})
			if err != nil {
				log.Printf("device %s: report failed: %v", s.deviceID, err)
				return
			}
		}
	}
}

func (s *Session) writeJSON(conn *websocket.Conn, frame interface{}) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

type handshakeFrame struct {
	Type       string `json:"type"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

type temperatureFrame struct {
	Type        string  `json:"type"`
	DeviceID    string  `json:"deviceId"`
	AmbientTemp float64 `json:"ambientTemp"`
	ObjectTemp  float64 `json:"objectTemp"`
	Timestamp   int64   `json:"timestamp"`
}

// sleep waits d or until ctx is cancelled; reports whether to keep going.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
