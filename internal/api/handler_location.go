package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-tracker-backend/internal/model"
	"fleet-tracker-backend/internal/store"
	"fleet-tracker-backend/internal/ws"
)

// locationUpdateRequest binds into pointers so that a field absent from the
// body is distinguishable from a legitimate zero value (vehicle id 0 never
// exists, but coordinate 0.0 does).
type locationUpdateRequest struct {
	VehicleID *int64   `json:"vehicle_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PostLocationUpdate handles the POST /api/v1/location_update request. The
// sample is committed before the broadcast, so subscribers only ever see
// durable points.
func (h *Handler) PostLocationUpdate(c *gin.Context) {
	var req locationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing data"})
		return
	}
	if req.VehicleID == nil || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing data"})
		return
	}

	if _, err := h.store.GetVehicle(c.Request.Context(), *req.VehicleID); err != nil {
		if errors.Is(err, store.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("vehicle with id %d not found", *req.VehicleID)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	location := model.Location{
		VehicleID: *req.VehicleID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}
	if err := h.store.InsertLocation(c.Request.Context(), &location); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.hub.Publish(ws.LocationEvent{
		VehicleID: location.VehicleID,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
		Timestamp: location.Timestamp.Format(time.RFC3339Nano),
	})

	c.JSON(http.StatusOK, gin.H{"message": "location updated"})
}
