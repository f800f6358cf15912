// Command fleetsim is a traffic generator: it plays the role of a set of GPS
// devices, random-walking each vehicle and posting one location update per
// interval. Failed requests are logged and dropped; the loop never retries a
// specific sample.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var (
	backendURL = flag.String("url", "http://localhost:5001/api/v1/location_update", "location update endpoint")
	interval   = flag.Duration("interval", 5*time.Second, "delay between updates per vehicle")
)

type simVehicle struct {
	id  int64
	lat float64
	lng float64
}

func main() {
	flag.Parse()

	// Starting positions match the seeded fleet, centered on Hyderabad so
	// the markers land on the demo map.
	vehicles := []simVehicle{
		{id: 1, lat: 17.3850, lng: 78.4867},
		{id: 2, lat: 17.3900, lng: 78.4800},
	}

	client := &http.Client{Timeout: 10 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, v := range vehicles {
		wg.Add(1)
		go func(v simVehicle) {
			defer wg.Done()
			simulate(ctx, client, v)
		}(v)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("stopping simulation...")
	cancel()
	wg.Wait()
}

// simulate loops forever for one vehicle: jitter the position, send it,
// sleep, repeat.
func simulate(ctx context.Context, client *http.Client, v simVehicle) {
	log.Printf("starting simulation for vehicle %d", v.id)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		v.lat += (rand.Float64() - 0.5) * 0.001
		v.lng += (rand.Float64() - 0.5) * 0.001

		if err := sendUpdate(ctx, client, v); err != nil {
			log.Printf("vehicle %d: error sending update: %v", v.id, err)
		} else {
			log.Printf("vehicle %d: sent lat=%.6f lng=%.6f", v.id, v.lat, v.lng)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sendUpdate(ctx context.Context, client *http.Client, v simVehicle) error {
	payload := map[string]any{
		"vehicle_id": v.id,
		"latitude":   round6(v.lat),
		"longitude":  round6(v.lng),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *backendURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func round6(f float64) float64 {
	return float64(int64(f*1e6)) / 1e6
}
