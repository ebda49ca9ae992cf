// internal/history/influx.go
package history

import (
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxRecorder writes readings to InfluxDB through the non-blocking write
// API. Points are batched and flushed in the background; write failures
// surface on the error channel and are logged, never propagated to the
// ingestion path.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	done     chan struct{}
}

func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	client := influxdb2.NewClient(url, token)
	writeAPI := client.WriteAPI(org, bucket)

	r := &InfluxRecorder{
		client:   client,
		writeAPI: writeAPI,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		for err := range writeAPI.Errors() {
			log.Printf("history write error: %v", err)
		}
	}()

	return r
}

func (r *InfluxRecorder) Record(deviceID string, ambientTemp, objectTemp float64, timestampMs int64) {
	point := influxdb2.NewPoint(
		"temperature",
		map[string]string{"device_id": deviceID},
		map[string]interface{}{
			"ambient_c": ambientTemp,
			"object_c":  objectTemp,
		},
		time.UnixMilli(timestampMs),
	)
	r.writeAPI.WritePoint(point)
}

func (r *InfluxRecorder) Close() {
	r.writeAPI.Flush()
	r.client.Close()
	<-r.done
}
