package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
	"fleet-tracker-backend/internal/store"
	"fleet-tracker-backend/internal/ws"
)

// newTestRouter builds a router over a fresh in-memory database with the
// fleet seeded.
func newTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Vehicle{}, &model.Location{}, &model.PushSubscription{}))

	s := store.NewGormStore(db)
	require.NoError(t, s.SeedVehicles(t.Context()))

	router := NewRouter(s, ws.NewHub(), &webpush.Options{VAPIDPublicKey: "test-key"}, RouterOptions{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	})
	return router, s
}

func postJSON(router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func locationCount(t *testing.T, s store.Store) int64 {
	t.Helper()
	var count int64
	require.NoError(t, s.DB().Model(&model.Location{}).Count(&count).Error)
	return count
}

func TestPostLocationUpdate(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		wantStatus   int
		wantInserted int64
	}{
		{
			name:         "valid update",
			body:         `{"vehicle_id": 1, "latitude": 17.385, "longitude": 78.4867}`,
			wantStatus:   http.StatusOK,
			wantInserted: 1,
		},
		{
			name:         "zero coordinates are valid",
			body:         `{"vehicle_id": 1, "latitude": 0, "longitude": 0}`,
			wantStatus:   http.StatusOK,
			wantInserted: 1,
		},
		{
			name:         "missing latitude",
			body:         `{"vehicle_id": 1, "longitude": 78.4867}`,
			wantStatus:   http.StatusBadRequest,
			wantInserted: 0,
		},
		{
			name:         "missing longitude",
			body:         `{"vehicle_id": 1, "latitude": 17.385}`,
			wantStatus:   http.StatusBadRequest,
			wantInserted: 0,
		},
		{
			name:         "missing vehicle_id",
			body:         `{"latitude": 17.385, "longitude": 78.4867}`,
			wantStatus:   http.StatusBadRequest,
			wantInserted: 0,
		},
		{
			name:         "malformed body",
			body:         `{"vehicle_id": `,
			wantStatus:   http.StatusBadRequest,
			wantInserted: 0,
		},
		{
			name:         "unknown vehicle",
			body:         `{"vehicle_id": 99, "latitude": 17.385, "longitude": 78.4867}`,
			wantStatus:   http.StatusNotFound,
			wantInserted: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, s := newTestRouter(t)

			w := postJSON(router, "/api/v1/location_update", tc.body)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantInserted, locationCount(t, s))

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, "location updated", resp["message"])
			} else {
				assert.NotEmpty(t, resp["error"])
			}
		})
	}
}

func TestPostLocationUpdate_NotFoundNamesVehicle(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/v1/location_update", `{"vehicle_id": 42, "latitude": 1, "longitude": 2}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestPostLocationUpdate_StoresCoordinates(t *testing.T) {
	router, s := newTestRouter(t)

	w := postJSON(router, "/api/v1/location_update", `{"vehicle_id": 2, "latitude": 17.39, "longitude": 78.48}`)
	require.Equal(t, http.StatusOK, w.Code)

	var loc model.Location
	require.NoError(t, s.DB().First(&loc).Error)
	assert.Equal(t, int64(2), loc.VehicleID)
	assert.Equal(t, 17.39, loc.Latitude)
	assert.Equal(t, 78.48, loc.Longitude)
	assert.WithinDuration(t, time.Now().UTC(), loc.Timestamp, 5*time.Second)
}
