package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	gwebsocket "github.com/gorilla/websocket"

	"wardtemp-gateway/internal/gateway"
	"wardtemp-gateway/internal/hub"
	"wardtemp-gateway/internal/registry"
)

var upgrader = gwebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards connect from a separately served frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type APIHandler struct {
	registry *registry.Registry
	gateway  *gateway.Gateway
}

func NewAPIHandler(reg *registry.Registry, gw *gateway.Gateway) *APIHandler {
	return &APIHandler{
		registry: reg,
		gateway:  gw,
	}
}

// HandleWebSocket upgrades a connection and hands it to the gateway. The
// connection is a subscriber immediately; whether it also turns out to be a
// device depends entirely on the frames it sends.
func (h *APIHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := hub.NewClient(conn)
	h.gateway.Accept(client)

	go client.WritePump()
	go client.ReadPump(h.gateway)
}

// HandleListDevices returns the latest reading for every known device.
func (h *APIHandler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.All())
}

// HandleGetDevice returns the latest reading for one device, or 404 when
// the device has never reported.
func (h *APIHandler) HandleGetDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	reading, ok := h.registry.Latest(deviceID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown device"})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// HandleInjectAlert lets the external alerting collaborator push an alert
// through the broadcast path.
func (h *APIHandler) HandleInjectAlert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceID string `json:"deviceId"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.DeviceID == "" || body.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deviceId and message are required"})
		return
	}

	if err := h.gateway.InjectAlert(body.DeviceID, body.Message); err != nil {
		log.Printf("alert injection failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "alert not published"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("error writing response: %v", err)
	}
}
