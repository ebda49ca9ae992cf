package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gwebsocket "github.com/gorilla/websocket"

	"wardtemp-gateway/internal/gateway"
	"wardtemp-gateway/internal/history"
	"wardtemp-gateway/internal/hub"
	"wardtemp-gateway/internal/registry"
	"wardtemp-gateway/internal/telemetry"
)

func newTestHandler() (*APIHandler, *registry.Registry) {
	reg := registry.New()
	h := hub.NewHub()
	gw := gateway.New(reg, h, history.Noop{})
	return NewAPIHandler(reg, gw), reg
}

func TestListDevicesEmpty(t *testing.T) {
	handler, _ := newTestHandler()
	router := SetupRouter(handler)

	request := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	if response.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, response.Code)
	}
	var readings []telemetry.DeviceReading
	if err := json.Unmarshal(response.Body.Bytes(), &readings); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(readings) != 0 {
		t.Errorf("expected no readings, got %d", len(readings))
	}
}

func TestGetDeviceReturnsLatestReading(t *testing.T) {
	handler, reg := newTestHandler()
	router := SetupRouter(handler)

	reg.Update(telemetry.DeviceReading{DeviceID: "D1", AmbientTemp: 24.5, ObjectTemp: 32.1, Timestamp: 1699999999000})

	request := httptest.NewRequest(http.MethodGet, "/api/devices/D1", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	if response.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, response.Code)
	}
	var reading telemetry.DeviceReading
	if err := json.Unmarshal(response.Body.Bytes(), &reading); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if reading.DeviceID != "D1" || reading.ObjectTemp != 32.1 {
		t.Errorf("unexpected reading %+v", reading)
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	handler, _ := newTestHandler()
	router := SetupRouter(handler)

	request := httptest.NewRequest(http.MethodGet, "/api/devices/never-seen", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	if response.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, response.Code)
	}
}

func TestInjectAlertRejectsBadBodies(t *testing.T) {
	handler, _ := newTestHandler()
	router := SetupRouter(handler)

	cases := map[string]string{
		"invalid JSON":   `{"deviceId":`,
		"missing fields": `{"deviceId":"D1"}`,
	}
	for name, body := range cases {
		request := httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewBufferString(body))
		request.Header.Set("Content-Type", "application/json")
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		if response.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", name, http.StatusBadRequest, response.Code)
		}
	}
}

func TestInjectAlertAccepted(t *testing.T) {
	handler, _ := newTestHandler()
	router := SetupRouter(handler)

	body := `{"deviceId":"D1","message":"object temperature above threshold"}`
	request := httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewBufferString(body))
	request.Header.Set("Content-Type", "application/json")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	if response.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, response.Code)
	}
}

func TestHealth(t *testing.T) {
	handler, _ := newTestHandler()
	router := SetupRouter(handler)

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	if response.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, response.Code)
	}
}

func dialWS(t *testing.T, server *httptest.Server) *gwebsocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := gwebsocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *gwebsocket.Conn) map[string]json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("invalid envelope %s: %v", raw, err)
	}
	return envelope
}

func envelopeType(t *testing.T, envelope map[string]json.RawMessage) string {
	t.Helper()
	var typ string
	if err := json.Unmarshal(envelope["type"], &typ); err != nil {
		t.Fatalf("envelope without type: %v", err)
	}
	return typ
}

func TestWebSocketEndToEnd(t *testing.T) {
	handler, _ := newTestHandler()
	server := httptest.NewServer(SetupRouter(handler))
	defer server.Close()

	device := dialWS(t, server)
	defer device.Close()
	viewer := dialWS(t, server)
	defer viewer.Close()

	// Handshake both connections first; reading each ack proves both are
	// registered before any broadcast is triggered.
	for _, conn := range []*gwebsocket.Conn{device, viewer} {
		err := conn.WriteMessage(gwebsocket.TextMessage,
			[]byte(`{"type":"handshake","deviceId":"D1","deviceName":"Ward 3 Bed 2"}`))
		if err != nil {
			t.Fatalf("write handshake: %v", err)
		}
		if typ := envelopeType(t, readEnvelope(t, conn)); typ != "handshake-ack" {
			t.Fatalf("expected handshake-ack, got %q", typ)
		}
	}

	// A temperature frame reaches both connections.
	err := device.WriteMessage(gwebsocket.TextMessage,
		[]byte(`{"type":"temperature","deviceId":"D1","ambientTemp":24.5,"objectTemp":32.1}`))
	if err != nil {
		t.Fatalf("write temperature: %v", err)
	}

	for _, conn := range []*gwebsocket.Conn{device, viewer} {
		envelope := readEnvelope(t, conn)
		if typ := envelopeType(t, envelope); typ != "temperature-update" {
			t.Fatalf("expected temperature-update, got %q", typ)
		}
		var reading telemetry.DeviceReading
		if err := json.Unmarshal(envelope["data"], &reading); err != nil {
			t.Fatalf("invalid update data: %v", err)
		}
		if reading.DeviceID != "D1" || reading.AmbientTemp != 24.5 {
			t.Errorf("unexpected reading %+v", reading)
		}
	}

	// The pull-style surface reflects the same registry.
	response, err := http.Get(server.URL + "/api/devices/D1")
	if err != nil {
		t.Fatalf("GET latest: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, response.StatusCode)
	}
}
