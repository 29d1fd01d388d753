package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/service"
)

// SimulationHandler exposes operator controls over the running simulation.
type SimulationHandler struct {
	engine *service.Engine
	stop   context.CancelFunc
}

func NewSimulationHandler(engine *service.Engine, stop context.CancelFunc) *SimulationHandler {
	return &SimulationHandler{
		engine: engine,
		stop:   stop,
	}
}

// Stop aborts the run. The engine honors cancellation only between tick
// cycles, so no partial settlement is ever observable.
func (h *SimulationHandler) Stop(c *gin.Context) {
	h.stop()
	c.JSON(http.StatusAccepted, gin.H{
		"status": "stopping",
		"round":  h.engine.Round(),
	})
}

func (h *SimulationHandler) Status(c *gin.Context) {
	rep := h.engine.Report()

	active := 0
	for _, v := range rep.Vehicles {
		if v.Status == domain.VehicleStatusActive {
			active++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"round":           rep.Rounds,
		"vehicles":        len(rep.Vehicles),
		"active_vehicles": active,
	})
}
