package scheduler

import (
	"time"

	"github.com/mateatletas/backend/internal/application/delinquency"
)

// ScanMetrics is the metrics sink of scan runs
type ScanMetrics interface {
	ObserveScan(at time.Time, students, overdue int, totalOwed float64, elapsed time.Duration, err error)
}

// MetricsScanRecorder forwards scan outcomes to a metrics sink
type MetricsScanRecorder struct {
	metrics ScanMetrics
}

var _ delinquency.ScanRecorder = (*MetricsScanRecorder)(nil)

// NewMetricsScanRecorder creates a recorder publishing to metrics
func NewMetricsScanRecorder(metrics ScanMetrics) *MetricsScanRecorder {
	return &MetricsScanRecorder{metrics: metrics}
}

// RecordScan implements delinquency.ScanRecorder
func (r *MetricsScanRecorder) RecordScan(summary delinquency.ScanSummary, err error) {
	r.metrics.ObserveScan(
		summary.RanAt,
		summary.DelinquentStudents,
		summary.OverdueObligations,
		summary.TotalOwed.Round(2).InexactFloat64(),
		summary.Duration,
		err,
	)
}
