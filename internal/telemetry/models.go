// internal/telemetry/models.go
package telemetry

// DeviceReading is the latest temperature sample known for one device.
// Timestamps are epoch milliseconds, as reported by the device clock or
// stamped with gateway receipt time when the device omits them.
type DeviceReading struct {
	DeviceID    string  `json:"deviceId"`
	AmbientTemp float64 `json:"ambientTemp"`
	ObjectTemp  float64 `json:"objectTemp"`
	Timestamp   int64   `json:"timestamp"`
}

// Frame is one decoded inbound message. The closed set of variants is
// HandshakeFrame, TemperatureFrame and UnknownFrame.
type Frame interface {
	isFrame()
}

// HandshakeFrame announces a device on a fresh connection. It is purely
// informational; telemetry from a device that never handshakes is still
// accepted.
type HandshakeFrame struct {
	DeviceID   string
	DeviceName string
}

// TemperatureFrame carries one validated reading.
type TemperatureFrame struct {
	Reading DeviceReading
}

// UnknownFrame is the fallback for any type the gateway does not speak.
// It is ignored without closing the connection.
type UnknownFrame struct {
	Type string
}

func (HandshakeFrame) isFrame()   {}
func (TemperatureFrame) isFrame() {}
func (UnknownFrame) isFrame()     {}
