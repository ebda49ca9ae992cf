// internal/gateway/gateway.go
package gateway

import (
	"fmt"
	"log"
	"time"

	"wardtemp-gateway/internal/history"
	"wardtemp-gateway/internal/hub"
	"wardtemp-gateway/internal/registry"
	"wardtemp-gateway/internal/telemetry"
)

const handshakeAckMessage = "connected to ward temperature gateway"

// Gateway is the single entry point for device and dashboard connections.
// It does not distinguish the two by transport: every connection joins the
// subscriber set on accept, and any connection may emit device frames.
type Gateway struct {
	registry *registry.Registry
	hub      *hub.Hub
	recorder history.Recorder
	now      func() time.Time
}

func New(reg *registry.Registry, h *hub.Hub, recorder history.Recorder) *Gateway {
	return &Gateway{
		registry: reg,
		hub:      h,
		recorder: recorder,
		now:      time.Now,
	}
}

// Accept registers a connection unconditionally. From this point it
// receives every broadcast until it closes.
func (g *Gateway) Accept(client *hub.Client) {
	g.hub.Register(client)
}

// OnFrame dispatches one inbound frame. A bad frame is dropped and logged;
// the connection stays open so that one malformed message cannot terminate
// a long-lived device session.
func (g *Gateway) OnFrame(client *hub.Client, raw []byte) {
	frame, err := telemetry.DecodeFrame(raw, g.now())
	if err != nil {
		log.Printf("connection %s: dropping frame: %v", client.ID, err)
		return
	}

	switch f := frame.(type) {
	case telemetry.HandshakeFrame:
		g.handleHandshake(client, f)
	case telemetry.TemperatureFrame:
		g.handleTemperature(f.Reading)
	case telemetry.UnknownFrame:
		// Not a protocol error, just a frame the gateway does not speak.
	}
}

// OnClose removes the connection from the subscriber set. Idempotent.
func (g *Gateway) OnClose(client *hub.Client) {
	g.hub.Unregister(client)
}

func (g *Gateway) handleHandshake(client *hub.Client, frame telemetry.HandshakeFrame) {
	log.Printf("handshake from device %q (%s) on connection %s", frame.DeviceID, frame.DeviceName, client.ID)
	ack, err := telemetry.EncodeHandshakeAck(handshakeAckMessage, g.now())
	if err != nil {
		log.Printf("encoding handshake ack: %v", err)
		return
	}
	// The ack goes to the originating connection only; no other frame is
	// ever addressed to a single connection.
	g.hub.Unicast(client, ack)
}

func (g *Gateway) handleTemperature(reading telemetry.DeviceReading) {
	g.registry.Update(reading)

	// History is fire and forget: a recorder failure must not block the
	// registry update above or the broadcast below.
	g.recorder.Record(reading.DeviceID, reading.AmbientTemp, reading.ObjectTemp, reading.Timestamp)

	update, err := telemetry.EncodeTemperatureUpdate(reading, g.now())
	if err != nil {
		log.Printf("encoding temperature update: %v", err)
		return
	}
	g.hub.Publish(update)
}

// InjectAlert pushes an externally triggered alert through the same fan-out
// path as telemetry. Used by the REST surface on behalf of the alerting
// collaborator.
func (g *Gateway) InjectAlert(deviceID, message string) error {
	payload, err := telemetry.EncodeAlert(deviceID, message, g.now())
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}
	g.hub.Publish(payload)
	return nil
}
