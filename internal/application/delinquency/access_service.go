package delinquency

import (
	"context"
	"fmt"
	"time"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Messages returned with an access decision
const (
	MessageAccessAllowed = "Estudiante al día con los pagos"
	MessageAccessBlocked = "Acceso bloqueado por pagos pendientes"
)

// Principal is the authenticated caller of a gated request
type Principal struct {
	UserID string
	Role   shared.Role
}

// AccessDecision is the outcome of the payment gate for one student
type AccessDecision struct {
	Allowed bool
	Message string
	Denial  *DenialDetails // set only when Allowed is false
}

// DenialDetails describes the debt that blocked a student
type DenialDetails struct {
	OverdueCount  int
	TotalOwed     decimal.Decimal
	Periods       []string // oldest first
	FirstDebt     string
	OldestDueDate time.Time
}

// AccessService decides whether a student may use the platform
type AccessService struct {
	obligations delinquency.ObligationReader
	directory   delinquency.Directory
	evaluator   *delinquency.Evaluator
	clock       shared.Clock
	logger      *zap.Logger
}

// NewAccessService creates a new AccessService
func NewAccessService(
	obligations delinquency.ObligationReader,
	directory delinquency.Directory,
	evaluator *delinquency.Evaluator,
	clock shared.Clock,
	logger *zap.Logger,
) *AccessService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{
		obligations: obligations,
		directory:   directory,
		evaluator:   evaluator,
		clock:       clock,
		logger:      logger,
	}
}

// CheckPrincipal applies the payment gate to an authenticated principal.
// Only students are gated; every other role is allowed without a lookup.
func (s *AccessService) CheckPrincipal(ctx context.Context, p Principal) (*AccessDecision, error) {
	if p.Role != shared.RoleStudent {
		return allowed(), nil
	}
	return s.decide(ctx, p.UserID)
}

// VerifyStudentAccess returns the gate decision for a student looked up by id.
// Unknown students yield ErrSubjectNotFound.
func (s *AccessService) VerifyStudentAccess(ctx context.Context, studentID string) (*AccessDecision, error) {
	if _, err := s.directory.FindStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.decide(ctx, studentID)
}

// IsStudentDelinquent reports whether the student has at least one overdue obligation
func (s *AccessService) IsStudentDelinquent(ctx context.Context, studentID string) (bool, error) {
	result, err := s.evaluateStudent(ctx, studentID, s.clock.Now())
	if err != nil {
		return false, err
	}
	return result.Delinquent, nil
}

func (s *AccessService) decide(ctx context.Context, studentID string) (*AccessDecision, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "delinquency", "verify_access")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrStudentID, studentID)

	result, err := s.evaluateStudent(ctx, studentID, s.clock.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !result.Delinquent {
		telemetry.SetAttributes(span, telemetry.SpanAttrAccessAllowed, true)
		return allowed(), nil
	}

	oldest, _ := result.Oldest()
	decision := &AccessDecision{
		Allowed: false,
		Message: MessageAccessBlocked,
		Denial: &DenialDetails{
			OverdueCount:  len(result.Overdue),
			TotalOwed:     result.TotalOwed,
			Periods:       result.Periods(),
			FirstDebt:     oldest.Period,
			OldestDueDate: oldest.DueDate,
		},
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccessAllowed, false,
		telemetry.SpanAttrOverdueCount, len(result.Overdue),
	)
	s.logger.Info("Access blocked by overdue payments",
		zap.String("student_id", studentID),
		zap.Int("cuotas_vencidas", len(result.Overdue)),
		zap.String("total_adeudado", result.TotalOwed.StringFixed(2)),
		zap.String("primera_deuda", oldest.Period),
	)
	return decision, nil
}

func (s *AccessService) evaluateStudent(ctx context.Context, studentID string, now time.Time) (delinquency.Result, error) {
	obligations, err := s.obligations.FindOutstandingByStudent(ctx, studentID, s.evaluator.Policy().OutstandingStatuses())
	if err != nil {
		return delinquency.Result{}, fmt.Errorf("failed to load obligations for student %s: %w", studentID, err)
	}
	result := s.evaluator.Evaluate(obligations, now)
	logMalformed(s.logger, result)
	return result, nil
}

func allowed() *AccessDecision {
	return &AccessDecision{Allowed: true, Message: MessageAccessAllowed}
}

func logMalformed(logger *zap.Logger, result delinquency.Result) {
	for _, m := range result.Malformed {
		logger.Warn("Skipping obligation with malformed period",
			zap.String("obligation_id", m.Obligation.ID),
			zap.String("student_id", m.Obligation.StudentID),
			zap.String("periodo", m.Obligation.Period),
			zap.Error(m.Err),
		)
	}
}
