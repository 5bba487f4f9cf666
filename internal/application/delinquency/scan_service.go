package delinquency

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SnapshotStore persists report snapshots (object storage in production)
type SnapshotStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// ErrSnapshotsDisabled is returned by Snapshot when no store is configured
var ErrSnapshotsDisabled = shared.NewDomainError(shared.ErrUnavailable.Code, "Report snapshots are not enabled")

// ScanRecorder receives the outcome of every scan (metrics in production)
type ScanRecorder interface {
	RecordScan(summary ScanSummary, err error)
}

// ScanSummary aggregates one run of the system-wide scan
type ScanSummary struct {
	RanAt              time.Time
	DelinquentStudents int
	OverdueObligations int
	TotalOwed          decimal.Decimal
	SnapshotKey        string // empty when no snapshot was stored
	Duration           time.Duration
}

// ScanService runs the periodic system-wide delinquency scan.
// It only reads obligations; payment status is never touched.
type ScanService struct {
	reports  *ReportService
	store    SnapshotStore
	recorder ScanRecorder
	prefix   string
	loc      *time.Location
	clock    shared.Clock
	logger   *zap.Logger
}

// ScanOption configures a ScanService
type ScanOption func(*ScanService)

// WithSnapshotStore stores a JSON snapshot of every scan under prefix
func WithSnapshotStore(store SnapshotStore, prefix string) ScanOption {
	return func(s *ScanService) {
		s.store = store
		s.prefix = prefix
	}
}

// WithScanRecorder reports every scan to recorder
func WithScanRecorder(recorder ScanRecorder) ScanOption {
	return func(s *ScanService) {
		s.recorder = recorder
	}
}

// NewScanService creates a new ScanService. Snapshot keys are dated in loc.
func NewScanService(reports *ReportService, loc *time.Location, clock shared.Clock, logger *zap.Logger, opts ...ScanOption) *ScanService {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ScanService{
		reports: reports,
		loc:     loc,
		clock:   clock,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run builds the system-wide report once, records it and stores a snapshot
func (s *ScanService) Run(ctx context.Context) (*ScanSummary, error) {
	started := s.clock.Now()

	debts, err := s.reports.DelinquentStudentsAt(ctx, started)
	if err != nil {
		s.record(ScanSummary{RanAt: started}, err)
		return nil, fmt.Errorf("delinquency scan failed: %w", err)
	}

	summary := ScanSummary{
		RanAt:              started,
		DelinquentStudents: len(debts),
		TotalOwed:          decimal.Zero,
	}
	for _, d := range debts {
		summary.OverdueObligations += len(d.Result.Overdue)
		summary.TotalOwed = summary.TotalOwed.Add(d.Result.TotalOwed)
	}

	if s.store != nil {
		key := s.SnapshotKey(started)
		body, err := json.Marshal(newSnapshot(summary, debts))
		if err != nil {
			s.record(summary, err)
			return nil, fmt.Errorf("failed to encode delinquency snapshot: %w", err)
		}
		if err := s.store.Upload(ctx, key, body, "application/json"); err != nil {
			s.record(summary, err)
			return nil, fmt.Errorf("failed to upload delinquency snapshot: %w", err)
		}
		summary.SnapshotKey = key
	}

	summary.Duration = s.clock.Now().Sub(started)
	s.record(summary, nil)

	s.logger.Info("Delinquency scan completed",
		zap.Int("estudiantes_morosos", summary.DelinquentStudents),
		zap.Int("cuotas_vencidas", summary.OverdueObligations),
		zap.String("total_adeudado", summary.TotalOwed.StringFixed(2)),
		zap.String("snapshot_key", summary.SnapshotKey),
		zap.Duration("duration", summary.Duration),
	)
	return &summary, nil
}

// Snapshot returns the stored snapshot of the scan that ran on date
// ("YYYY-MM-DD", a calendar day in the scan location).
func (s *ScanService) Snapshot(ctx context.Context, date string) ([]byte, error) {
	if s.store == nil {
		return nil, ErrSnapshotsDisabled
	}
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("Invalid snapshot date %q, expected YYYY-MM-DD", date))
	}

	key := s.SnapshotKey(day)
	exists, err := s.store.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up snapshot %s: %w", key, err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("No delinquency snapshot for %s", date))
	}
	body, err := s.store.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return body, nil
}

// SnapshotKey returns the object key of the snapshot taken at t
func (s *ScanService) SnapshotKey(t time.Time) string {
	return path.Join(s.prefix, "reports", "morosidad", t.In(s.loc).Format("2006-01-02")+".json")
}

func (s *ScanService) record(summary ScanSummary, err error) {
	if s.recorder != nil {
		s.recorder.RecordScan(summary, err)
	}
}

type snapshot struct {
	GeneratedAt        time.Time         `json:"generadoEn"`
	DelinquentStudents int               `json:"estudiantesMorosos"`
	OverdueObligations int               `json:"cuotasVencidas"`
	TotalOwed          decimal.Decimal   `json:"totalAdeudado"`
	Students           []snapshotStudent `json:"estudiantes"`
}

type snapshotStudent struct {
	ID        string            `json:"id"`
	Name      string            `json:"nombre"`
	TutorID   string            `json:"tutorId"`
	TotalOwed decimal.Decimal   `json:"totalAdeudado"`
	Debts     []snapshotDebtRow `json:"detalleDeuda"`
}

type snapshotDebtRow struct {
	Period      string          `json:"periodo"`
	Amount      decimal.Decimal `json:"monto"`
	DueDate     string          `json:"fechaVencimiento"`
	DaysOverdue int             `json:"diasVencido"`
}

func newSnapshot(summary ScanSummary, debts []StudentDebt) snapshot {
	out := snapshot{
		GeneratedAt:        summary.RanAt,
		DelinquentStudents: summary.DelinquentStudents,
		OverdueObligations: summary.OverdueObligations,
		TotalOwed:          summary.TotalOwed,
		Students:           make([]snapshotStudent, len(debts)),
	}
	for i, d := range debts {
		rows := make([]snapshotDebtRow, len(d.Result.Overdue))
		for j, o := range d.Result.Overdue {
			rows[j] = snapshotDebtRow{
				Period:      o.Period,
				Amount:      o.Amount,
				DueDate:     o.DueDay().Format("2006-01-02"),
				DaysOverdue: o.DaysOverdue,
			}
		}
		out.Students[i] = snapshotStudent{
			ID:        d.Student.ID,
			Name:      d.Student.FullName(),
			TutorID:   d.Student.TutorID,
			TotalOwed: d.Result.TotalOwed,
			Debts:     rows,
		}
	}
	return out
}
