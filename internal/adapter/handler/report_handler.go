package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
	"github.com/vantutran2k1/tollfleet/internal/core/service"
)

type ReportHandler struct {
	engine *service.Engine
	audit  port.AuditStore
}

func NewReportHandler(engine *service.Engine, audit port.AuditStore) *ReportHandler {
	return &ReportHandler{
		engine: engine,
		audit:  audit,
	}
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Report())
}

func (h *ReportHandler) ListVehicles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vehicles": h.engine.Report().Vehicles})
}

func (h *ReportHandler) GetVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}

	vr, err := h.engine.VehicleReport(id)
	if err != nil {
		if errors.Is(err, domain.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, vr)
}

type auditRecord struct {
	ID         string  `json:"id"`
	VehicleID  string  `json:"vehicle_id"`
	Owner      string  `json:"owner"`
	Round      int     `json:"round"`
	DistanceKm float64 `json:"distance_km"`
	Charge     string  `json:"charge"`
	Outcome    string  `json:"outcome"`
	Balance    string  `json:"balance"`
	CreatedAt  string  `json:"created_at"`
}

func (h *ReportHandler) ListAudit(c *gin.Context) {
	var (
		recs []domain.TollRecord
		err  error
	)

	if vid := c.Query("vehicle_id"); vid != "" {
		id, perr := uuid.Parse(vid)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
			return
		}
		recs, err = h.audit.ListByVehicle(c.Request.Context(), id)
	} else {
		recs, err = h.audit.ListAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit records"})
		return
	}

	out := make([]auditRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, auditRecord{
			ID:         r.ID,
			VehicleID:  r.VehicleID.String(),
			Owner:      r.Owner,
			Round:      r.Round,
			DistanceKm: r.DistanceKm,
			Charge:     r.Charge.StringFixed(2),
			Outcome:    string(r.Outcome),
			Balance:    r.Balance.StringFixed(2),
			CreatedAt:  r.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}

	c.JSON(http.StatusOK, gin.H{"records": out})
}
