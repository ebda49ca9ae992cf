// internal/telemetry/frame.go
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	frameTypeHandshake   = "handshake"
	frameTypeTemperature = "temperature"
)

// DecodeFrame parses one raw inbound frame. A decode error means the frame
// must be dropped and logged; the connection stays open either way. now
// supplies the receipt time used when a temperature frame omits its
// timestamp.
func DecodeFrame(raw []byte, now time.Time) (Frame, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch envelope.Type {
	case frameTypeHandshake:
		var payload struct {
			DeviceID   string `json:"deviceId"`
			DeviceName string `json:"deviceName"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("malformed handshake frame: %w", err)
		}
		return HandshakeFrame{DeviceID: payload.DeviceID, DeviceName: payload.DeviceName}, nil

	case frameTypeTemperature:
		return decodeTemperature(raw, now)

	default:
		return UnknownFrame{Type: envelope.Type}, nil
	}
}

func decodeTemperature(raw []byte, now time.Time) (Frame, error) {
	// Pointer fields distinguish "absent" from zero values.
	var payload struct {
		DeviceID    *string  `json:"deviceId"`
		AmbientTemp *float64 `json:"ambientTemp"`
		ObjectTemp  *float64 `json:"objectTemp"`
		Timestamp   *float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("malformed temperature frame: %w", err)
	}
	if payload.DeviceID == nil || *payload.DeviceID == "" {
		return nil, fmt.Errorf("temperature frame missing deviceId")
	}
	if payload.AmbientTemp == nil || payload.ObjectTemp == nil {
		return nil, fmt.Errorf("temperature frame from %q missing ambientTemp/objectTemp", *payload.DeviceID)
	}

	timestamp := now.UnixMilli()
	if payload.Timestamp != nil {
		timestamp = int64(*payload.Timestamp)
	}

	return TemperatureFrame{Reading: DeviceReading{
		DeviceID:    *payload.DeviceID,
		AmbientTemp: *payload.AmbientTemp,
		ObjectTemp:  *payload.ObjectTemp,
		Timestamp:   timestamp,
	}}, nil
}
