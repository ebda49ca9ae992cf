package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRouter wires the websocket endpoint and the pull-style REST surface
// onto one router. The push and pull paths share the same registry and
// broadcast router underneath.
func SetupRouter(apiHandler *APIHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ws", apiHandler.HandleWebSocket)
	r.Get("/health", apiHandler.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/devices", apiHandler.HandleListDevices)
		r.Get("/devices/{deviceID}", apiHandler.HandleGetDevice)
		r.Post("/alerts", apiHandler.HandleInjectAlert)
	})

	return r
}
