package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
)

// VehicleResponse represents the API response for a single vehicle.
type VehicleResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	RouteID string `json:"route_id"`
}

// GetVehicles handles the GET /api/v1/vehicles request.
func GetVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicles []model.Vehicle
		if err := db.Order("id").Find(&vehicles).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicles"})
			return
		}

		responses := make([]VehicleResponse, 0, len(vehicles))
		for _, v := range vehicles {
			responses = append(responses, VehicleResponse{
				ID: v.ID, Name: v.Name, RouteID: v.RouteID,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}
