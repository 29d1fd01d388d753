package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
)

type TelemetryHandler struct {
	finder port.NearbyFinder
}

func NewTelemetryHandler(finder port.NearbyFinder) *TelemetryHandler {
	return &TelemetryHandler{finder: finder}
}

// Nearby lists the ids of vehicles within radius_km of the given point.
func (h *TelemetryHandler) Nearby(c *gin.Context) {
	x, err := strconv.ParseFloat(c.Query("x"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid x coordinate"})
		return
	}
	y, err := strconv.ParseFloat(c.Query("y"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid y coordinate"})
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "10"), 64)
	if err != nil || radius <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radius_km"})
		return
	}

	ids, err := h.finder.FindNearestVehicles(c.Request.Context(), y, x, radius)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query telemetry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicle_ids": ids})
}
