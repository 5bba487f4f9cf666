package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mateatletas/backend/internal/infrastructure/scheduler"
	"github.com/mateatletas/backend/internal/interfaces/http/dto"
)

// ScanController controls the scheduled delinquency scan
type ScanController interface {
	TriggerManualRun() error
	GetStatus() scheduler.Status
}

// SnapshotReader reads stored scan snapshots by calendar day
type SnapshotReader interface {
	Snapshot(ctx context.Context, date string) ([]byte, error)
}

// ScanHandler serves the admin endpoints of the daily delinquency scan.
// Either collaborator may be nil; the router only mounts what is available.
type ScanHandler struct {
	BaseHandler
	scans     ScanController
	snapshots SnapshotReader
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scans ScanController, snapshots SnapshotReader) *ScanHandler {
	return &ScanHandler{scans: scans, snapshots: snapshots}
}

// GetStatus returns the scheduler state and the last scan summary
//
// GET /pagos/morosidad/escaneo
func (h *ScanHandler) GetStatus(c *gin.Context) {
	h.Success(c, dto.NewScanStatusResponse(h.scans.GetStatus()))
}

// Trigger starts a scan outside the schedule
//
// POST /pagos/morosidad/escaneo
func (h *ScanHandler) Trigger(c *gin.Context) {
	if err := h.scans.TriggerManualRun(); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.ScanTriggeredResponse{Message: "Escaneo de morosidad iniciado"})
}

// GetSnapshot returns the stored snapshot of one day as-is
//
// GET /pagos/morosidad/escaneo/snapshots/:fecha
func (h *ScanHandler) GetSnapshot(c *gin.Context) {
	body, err := h.snapshots.Snapshot(c.Request.Context(), c.Param("fecha"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
