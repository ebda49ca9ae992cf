// cmd/simulator/main.go
//
// Simulates an embedded temperature sensor: connects to the gateway,
// handshakes, and reports readings that drift around body temperature
// until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wardtemp-gateway/internal/device"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "Gateway websocket endpoint")
	deviceID := flag.String("device", "sim-001", "Device identifier")
	deviceName := flag.String("name", "Simulated Ward Sensor", "Human-readable device name")
	interval := flag.Duration("interval", 2*time.Second, "Reporting interval")
	backoff := flag.Duration("backoff", 3*time.Second, "Reconnect backoff")
	flag.Parse()

	sample := func() (float64, float64) {
		ambient := 23.0 + rand.Float64()*2.0
		object := 36.5 + rand.Float64()*1.5
		return ambient, object
	}

	session := device.NewSession(*url, *deviceID, *deviceName, *interval, *backoff, sample)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	log.Printf("Simulating device %s against %s", *deviceID, *url)
	session.Run(ctx)
	log.Println("Simulator stopped.")
}
