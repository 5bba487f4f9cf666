package delinquency

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultReportWorkers bounds the parallel per-student evaluations of the system-wide report
const DefaultReportWorkers = 4

// TutorReport is the delinquency view of one payer across all of their students
type TutorReport struct {
	TutorID          string
	Delinquent       bool
	OverdueCount     int
	TotalOwed        decimal.Decimal
	AffectedStudents int
	Lines            []TutorReportLine
	GeneratedAt      time.Time
}

// TutorReportLine is one overdue obligation in a TutorReport
type TutorReportLine struct {
	StudentID   string
	StudentName string
	Period      string
	Amount      decimal.Decimal
	DueDate     time.Time
	DaysOverdue int
}

// StudentDebt is one entry of the system-wide report
type StudentDebt struct {
	Student delinquency.Student
	Tutor   *delinquency.Tutor // nil when the tutor record is missing
	Result  delinquency.Result
}

// ReportService builds delinquency reports for administrators and payers
type ReportService struct {
	obligations delinquency.ObligationReader
	directory   delinquency.Directory
	evaluator   *delinquency.Evaluator
	clock       shared.Clock
	workers     int
	logger      *zap.Logger
}

// NewReportService creates a new ReportService.
// workers <= 0 uses DefaultReportWorkers.
func NewReportService(
	obligations delinquency.ObligationReader,
	directory delinquency.Directory,
	evaluator *delinquency.Evaluator,
	clock shared.Clock,
	workers int,
	logger *zap.Logger,
) *ReportService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if workers <= 0 {
		workers = DefaultReportWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		obligations: obligations,
		directory:   directory,
		evaluator:   evaluator,
		clock:       clock,
		workers:     workers,
		logger:      logger,
	}
}

// TutorReport evaluates the union of a tutor's students' obligations as one set.
// Unknown tutors yield ErrSubjectNotFound.
func (s *ReportService) TutorReport(ctx context.Context, tutorID string) (*TutorReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "delinquency", "tutor_report")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTutorID, tutorID)

	if _, err := s.directory.FindTutor(ctx, tutorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.clock.Now()
	obligations, err := s.obligations.FindOutstandingByTutor(ctx, tutorID, s.evaluator.Policy().OutstandingStatuses())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load obligations for tutor %s: %w", tutorID, err)
	}

	result := s.evaluator.Evaluate(obligations, now)
	logMalformed(s.logger, result)

	names, err := s.studentNames(ctx, result.Overdue)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	overdue := append([]delinquency.OverdueObligation(nil), result.Overdue...)
	sort.SliceStable(overdue, func(i, j int) bool {
		a, b := overdue[i], overdue[j]
		if da, db := a.DueDay(), b.DueDay(); !da.Equal(db) {
			return da.Before(db)
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return a.StudentID < b.StudentID
	})

	lines := make([]TutorReportLine, len(overdue))
	for i, o := range overdue {
		lines[i] = TutorReportLine{
			StudentID:   o.StudentID,
			StudentName: names[o.StudentID],
			Period:      o.Period,
			Amount:      o.Amount,
			DueDate:     o.DueDate,
			DaysOverdue: o.DaysOverdue,
		}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOverdueCount, len(result.Overdue))
	return &TutorReport{
		TutorID:          tutorID,
		Delinquent:       result.Delinquent,
		OverdueCount:     len(result.Overdue),
		TotalOwed:        result.TotalOwed,
		AffectedStudents: result.AffectedStudents(),
		Lines:            lines,
		GeneratedAt:      now,
	}, nil
}

// DelinquentStudents evaluates every student with outstanding obligations and
// returns the delinquent ones, ordered by total owed descending, then by name
// and id. Students whose obligations are not yet due are left out.
func (s *ReportService) DelinquentStudents(ctx context.Context) ([]StudentDebt, error) {
	return s.DelinquentStudentsAt(ctx, s.clock.Now())
}

// DelinquentStudentsAt is DelinquentStudents evaluated at now
func (s *ReportService) DelinquentStudentsAt(ctx context.Context, now time.Time) ([]StudentDebt, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "delinquency", "delinquent_students")
	defer span.End()

	obligations, err := s.obligations.FindAllOutstanding(ctx, s.evaluator.Policy().OutstandingStatuses())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load outstanding obligations: %w", err)
	}

	studentIDs, byStudent := groupByStudent(obligations)
	results := make([]delinquency.Result, len(studentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range studentIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.evaluator.Evaluate(byStudent[id], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var delinquentIDs []string
	resultByStudent := make(map[string]delinquency.Result)
	for i, id := range studentIDs {
		logMalformed(s.logger, results[i])
		if results[i].Delinquent {
			delinquentIDs = append(delinquentIDs, id)
			resultByStudent[id] = results[i]
		}
	}
	if len(delinquentIDs) == 0 {
		return []StudentDebt{}, nil
	}

	debts, err := s.attachDirectory(ctx, delinquentIDs, byStudent, resultByStudent)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	sortStudentDebts(debts)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrStudentsScanned, len(studentIDs),
		telemetry.SpanAttrDelinquentCount, len(debts),
	)
	return debts, nil
}

func (s *ReportService) attachDirectory(
	ctx context.Context,
	studentIDs []string,
	byStudent map[string][]delinquency.Obligation,
	results map[string]delinquency.Result,
) ([]StudentDebt, error) {
	students, err := s.directory.FindStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	studentByID := make(map[string]delinquency.Student, len(students))
	for _, st := range students {
		studentByID[st.ID] = st
	}

	tutorIDs := make([]string, 0, len(studentIDs))
	seenTutor := make(map[string]bool)
	debts := make([]StudentDebt, 0, len(studentIDs))
	for _, id := range studentIDs {
		st, ok := studentByID[id]
		if !ok {
			s.logger.Warn("Delinquent student missing from directory", zap.String("student_id", id))
			st = delinquency.Student{ID: id}
		}
		if st.TutorID == "" {
			st.TutorID = byStudent[id][0].TutorID
		}
		if st.TutorID != "" && !seenTutor[st.TutorID] {
			seenTutor[st.TutorID] = true
			tutorIDs = append(tutorIDs, st.TutorID)
		}
		debts = append(debts, StudentDebt{Student: st, Result: results[id]})
	}

	tutors, err := s.directory.FindTutorsByIDs(ctx, tutorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tutors: %w", err)
	}
	tutorByID := make(map[string]*delinquency.Tutor, len(tutors))
	for i := range tutors {
		tutorByID[tutors[i].ID] = &tutors[i]
	}
	for i := range debts {
		debts[i].Tutor = tutorByID[debts[i].Student.TutorID]
	}
	return debts, nil
}

func (s *ReportService) studentNames(ctx context.Context, overdue []delinquency.OverdueObligation) (map[string]string, error) {
	names := make(map[string]string)
	if len(overdue) == 0 {
		return names, nil
	}
	var ids []string
	for _, o := range overdue {
		if _, ok := names[o.StudentID]; !ok {
			names[o.StudentID] = ""
			ids = append(ids, o.StudentID)
		}
	}
	students, err := s.directory.FindStudentsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	for _, st := range students {
		names[st.ID] = st.FullName()
	}
	return names, nil
}

// groupByStudent splits obligations per student, keeping first-seen order of students
func groupByStudent(obligations []delinquency.Obligation) ([]string, map[string][]delinquency.Obligation) {
	var ids []string
	grouped := make(map[string][]delinquency.Obligation)
	for _, o := range obligations {
		if _, ok := grouped[o.StudentID]; !ok {
			ids = append(ids, o.StudentID)
		}
		grouped[o.StudentID] = append(grouped[o.StudentID], o)
	}
	return ids, grouped
}

func sortStudentDebts(debts []StudentDebt) {
	col := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(debts, func(i, j int) bool {
		a, b := debts[i], debts[j]
		if c := a.Result.TotalOwed.Cmp(b.Result.TotalOwed); c != 0 {
			return c > 0
		}
		if c := col.CompareString(a.Student.FullName(), b.Student.FullName()); c != 0 {
			return c < 0
		}
		return a.Student.ID < b.Student.ID
	})
}
