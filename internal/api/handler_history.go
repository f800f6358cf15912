package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
)

// historyEntry is one sample in the history response.
type historyEntry struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

// GetHistory handles the GET /api/v1/history request. Samples are stored in
// UTC, and the requested date is interpreted as a UTC calendar day.
func GetHistory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		vehicleIDParam := c.Query("vehicle_id")
		dateParam := c.Query("date")
		if vehicleIDParam == "" || dateParam == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing vehicle_id or date parameter"})
			return
		}

		vehicleID, err := strconv.ParseInt(vehicleIDParam, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle_id"})
			return
		}

		day, err := time.ParseInLocation("2006-01-02", dateParam, time.UTC)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD."})
			return
		}
		start := day
		end := start.Add(24 * time.Hour)

		var locations []model.Location
		if err := db.
			Where("vehicle_id = ? AND timestamp >= ? AND timestamp < ?", vehicleID, start, end).
			Order("timestamp asc").
			Find(&locations).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
			return
		}

		entries := make([]historyEntry, 0, len(locations))
		for _, loc := range locations {
			entries = append(entries, historyEntry{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				Timestamp: loc.Timestamp.Format(time.RFC3339Nano),
			})
		}
		c.JSON(http.StatusOK, entries)
	}
}
