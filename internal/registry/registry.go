// internal/registry/registry.go
package registry

import (
	"sync"

	"wardtemp-gateway/internal/telemetry"
)

// Registry holds the single most-recent reading per device id. Last write
// wins: a newer arrival fully overwrites the prior entry regardless of the
// timestamps the frames carry.
type Registry struct {
	mu       sync.RWMutex
	readings map[string]telemetry.DeviceReading
}

func New() *Registry {
	return &Registry{
		readings: make(map[string]telemetry.DeviceReading),
	}
}

// Update replaces any existing entry for the reading's device id.
func (r *Registry) Update(reading telemetry.DeviceReading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings[reading.DeviceID] = reading
}

// Latest returns the current reading for a device, if one has been seen.
func (r *Registry) Latest(deviceID string) (telemetry.DeviceReading, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reading, ok := r.readings[deviceID]
	return reading, ok
}

// All returns a point-in-time copy of every reading. Iteration order is
// unspecified.
func (r *Registry) All() []telemetry.DeviceReading {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]telemetry.DeviceReading, 0, len(r.readings))
	for _, reading := range r.readings {
		result = append(result, reading)
	}
	return result
}

// Count reports how many devices have reported at least once.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.readings)
}
