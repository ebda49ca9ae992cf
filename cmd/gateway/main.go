// cmd/gateway/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"wardtemp-gateway/internal/api"
	"wardtemp-gateway/internal/config"
	"wardtemp-gateway/internal/gateway"
	"wardtemp-gateway/internal/history"
	"wardtemp-gateway/internal/hub"
	"wardtemp-gateway/internal/registry"
)

func main() {
	configPath := flag.String("config", ".", "Path to the configuration file directory")
	flag.Parse()

	// .env is a development convenience; absence is fine.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// --- Initialize Components ---
	reg := registry.New()
	connHub := hub.NewHub()

	var recorder history.Recorder = history.Noop{}
	if cfg.History.Enabled {
		recorder = history.NewInfluxRecorder(cfg.History.URL, cfg.History.Token, cfg.History.Org, cfg.History.Bucket)
		log.Printf("History recording enabled: %s bucket=%s", cfg.History.URL, cfg.History.Bucket)
	}
	defer recorder.Close()

	gw := gateway.New(reg, connHub, recorder)
	apiHandler := api.NewAPIHandler(reg, gw)

	// --- HTTP Server ---
	router := api.SetupRouter(apiHandler)
	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsWrapper.Handler(router),
	}

	go func() {
		log.Printf("Starting ward temperature gateway on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Gateway stopped.")
}
