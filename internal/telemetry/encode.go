// internal/telemetry/encode.go
package telemetry

import (
	"encoding/json"
	"time"
)

// Outbound envelopes. Each event is serialized exactly once; the broadcast
// path hands the same byte slice to every subscriber.

// EncodeHandshakeAck builds the unicast reply to a handshake frame.
func EncodeHandshakeAck(message string, now time.Time) ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}{
		Type:      "handshake-ack",
		Message:   message,
		Timestamp: now.UnixMilli(),
	})
}

// EncodeTemperatureUpdate builds the broadcast envelope for a fresh reading.
func EncodeTemperatureUpdate(reading DeviceReading, now time.Time) ([]byte, error) {
	return json.Marshal(struct {
		Type      string        `json:"type"`
		Data      DeviceReading `json:"data"`
		Timestamp int64         `json:"timestamp"`
	}{
		Type:      "temperature-update",
		Data:      reading,
		Timestamp: now.UnixMilli(),
	})
}

// EncodeAlert builds the broadcast envelope for an externally injected alert.
func EncodeAlert(deviceID, message string, now time.Time) ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		DeviceID  string `json:"deviceId"`
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}{
		Type:      "alert",
		DeviceID:  deviceID,
		Message:   message,
		Timestamp: now.UnixMilli(),
	})
}
