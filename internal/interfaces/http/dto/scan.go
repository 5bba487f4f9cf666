package dto

import (
	"time"

	"github.com/mateatletas/backend/internal/infrastructure/scheduler"
)

// ScanStatusResponse describes the daily delinquency scan
type ScanStatusResponse struct {
	Running     bool                 `json:"activo"`
	Schedule    string               `json:"programacion"`
	Location    string               `json:"zonaHoraria"`
	LastRunAt   *time.Time           `json:"ultimaEjecucion"`
	LastStatus  string               `json:"ultimoEstado"`
	LastError   string               `json:"ultimoError,omitempty"`
	NextRunAt   *time.Time           `json:"proximaEjecucion"`
	LastSummary *ScanSummaryResponse `json:"ultimoResumen,omitempty"`
}

// ScanSummaryResponse is the outcome of one successful scan
type ScanSummaryResponse struct {
	RanAt              time.Time `json:"ejecutadoEn"`
	DelinquentStudents int       `json:"estudiantesMorosos"`
	OverdueObligations int       `json:"cuotasVencidas"`
	TotalOwed          float64   `json:"totalAdeudado"`
	SnapshotKey        string    `json:"snapshot,omitempty"`
	DurationMs         int64     `json:"duracionMs"`
}

// ScanTriggeredResponse acknowledges a manual scan
type ScanTriggeredResponse struct {
	Message string `json:"mensaje"`
}

// NewScanStatusResponse converts a scheduler status
func NewScanStatusResponse(s scheduler.Status) ScanStatusResponse {
	resp := ScanStatusResponse{
		Running:    s.Running,
		Schedule:   s.Schedule,
		Location:   s.Location,
		LastRunAt:  s.LastRunAt,
		LastStatus: string(s.LastStatus),
		LastError:  s.LastError,
		NextRunAt:  s.NextRunAt,
	}
	if sum := s.LastSummary; sum != nil {
		resp.LastSummary = &ScanSummaryResponse{
			RanAt:              sum.RanAt,
			DelinquentStudents: sum.DelinquentStudents,
			OverdueObligations: sum.OverdueObligations,
			TotalOwed:          money(sum.TotalOwed),
			SnapshotKey:        sum.SnapshotKey,
			DurationMs:         sum.Duration.Milliseconds(),
		}
	}
	return resp
}
