package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleet-tracker-backend/internal/api"
	"fleet-tracker-backend/internal/model"
	"fleet-tracker-backend/internal/store"
	"fleet-tracker-backend/internal/ws"
)

// TestIngestBroadcastHistory walks the whole update path: a device posts a
// sample, the row is durable, a connected subscriber receives the broadcast,
// and the history query returns the sample for today.
func TestIngestBroadcastHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:integration_%d?mode=memory&cache=shared", time.Now().UnixNano())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&model.Vehicle{}, &model.Location{}, &model.PushSubscription{}))

	appStore := store.NewGormStore(testDB)
	require.NoError(t, appStore.SeedVehicles(t.Context()))

	hub := ws.NewHub()
	router := api.NewRouter(appStore, hub, &webpush.Options{}, api.RouterOptions{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	})

	server := httptest.NewServer(router)
	defer server.Close()

	// Connect a real-time subscriber before ingesting.
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/locations"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	// Ingest one sample for Bus 101.
	payload := `{"vehicle_id": 1, "latitude": 17.385, "longitude": 78.4867}`
	resp, err := http.Post(server.URL+"/api/v1/location_update", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The subscriber receives the broadcast with the stored timestamp.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event ws.LocationEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, int64(1), event.VehicleID)
	assert.Equal(t, 17.385, event.Latitude)
	assert.Equal(t, 78.4867, event.Longitude)
	eventTime, err := time.Parse(time.RFC3339Nano, event.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), eventTime, 5*time.Second)

	// The sample is durable and visible via the history query for today.
	today := time.Now().UTC().Format("2006-01-02")
	histResp, err := http.Get(server.URL + "/api/v1/history?vehicle_id=1&date=" + today)
	require.NoError(t, err)
	defer histResp.Body.Close()
	require.Equal(t, http.StatusOK, histResp.StatusCode)

	var history []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timestamp string  `json:"timestamp"`
	}
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, 17.385, history[0].Latitude)
	assert.Equal(t, 78.4867, history[0].Longitude)
	assert.Equal(t, event.Timestamp, history[0].Timestamp)

	// The fleet listing matches the seed.
	vehResp, err := http.Get(server.URL + "/api/v1/vehicles")
	require.NoError(t, err)
	defer vehResp.Body.Close()
	require.Equal(t, http.StatusOK, vehResp.StatusCode)

	var vehicles []api.VehicleResponse
	require.NoError(t, json.NewDecoder(vehResp.Body).Decode(&vehicles))
	require.Len(t, vehicles, 2)
	assert.Equal(t, "Bus 101", vehicles[0].Name)
	assert.Equal(t, "Bus 102", vehicles[1].Name)
}

// TestIngestFailuresDoNotTouchTheStore covers the rejection paths end to end.
func TestIngestFailuresDoNotTouchTheStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:integration_rej_%d?mode=memory&cache=shared", time.Now().UnixNano())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&model.Vehicle{}, &model.Location{}, &model.PushSubscription{}))

	appStore := store.NewGormStore(testDB)
	require.NoError(t, appStore.SeedVehicles(t.Context()))

	router := api.NewRouter(appStore, ws.NewHub(), &webpush.Options{}, api.RouterOptions{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	})
	server := httptest.NewServer(router)
	defer server.Close()

	for _, tc := range []struct {
		body       string
		wantStatus int
	}{
		{`{"vehicle_id": 1, "latitude": 17.385}`, http.StatusBadRequest},
		{`{"vehicle_id": 7, "latitude": 17.385, "longitude": 78.4867}`, http.StatusNotFound},
	} {
		resp, err := http.Post(server.URL+"/api/v1/location_update", "application/json", bytes.NewBufferString(tc.body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.wantStatus, resp.StatusCode)
	}

	var count int64
	require.NoError(t, testDB.Model(&model.Location{}).Count(&count).Error)
	assert.Zero(t, count)
}
