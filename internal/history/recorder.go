// internal/history/recorder.go
package history

// Recorder receives every accepted temperature reading for durable history.
// Calls are fire and forget: the gateway never waits on, or fails because
// of, the recorder.
type Recorder interface {
	Record(deviceID string, ambientTemp, objectTemp float64, timestampMs int64)
	Close()
}

// Noop discards readings. Used when history recording is disabled.
type Noop struct{}

func (Noop) Record(string, float64, float64, int64) {}
func (Noop) Close()                                 {}
