package delinquency

import (
	"context"
	"time"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockObligationReader struct {
	mock.Mock
}

func (m *MockObligationReader) FindOutstandingByStudent(ctx context.Context, studentID string, statuses []delinquency.PaymentStatus) ([]delinquency.Obligation, error) {
	args := m.Called(ctx, studentID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]delinquency.Obligation), args.Error(1)
}

func (m *MockObligationReader) FindOutstandingByTutor(ctx context.Context, tutorID string, statuses []delinquency.PaymentStatus) ([]delinquency.Obligation, error) {
	args := m.Called(ctx, tutorID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]delinquency.Obligation), args.Error(1)
}

func (m *MockObligationReader) FindAllOutstanding(ctx context.Context, statuses []delinquency.PaymentStatus) ([]delinquency.Obligation, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]delinquency.Obligation), args.Error(1)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FindStudent(ctx context.Context, id string) (*delinquency.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delinquency.Student), args.Error(1)
}

func (m *MockDirectory) FindTutor(ctx context.Context, id string) (*delinquency.Tutor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delinquency.Tutor), args.Error(1)
}

func (m *MockDirectory) FindStudentsByIDs(ctx context.Context, ids []string) ([]delinquency.Student, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]delinquency.Student), args.Error(1)
}

func (m *MockDirectory) FindTutorsByIDs(ctx context.Context, ids []string) ([]delinquency.Tutor, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]delinquency.Tutor), args.Error(1)
}

// April 15 2024, mid-morning
var testNow = time.Date(2024, time.April, 15, 10, 0, 0, 0, time.UTC)

func testEvaluator() *delinquency.Evaluator {
	return delinquency.NewEvaluator(delinquency.NewDueDateResolver(time.UTC), delinquency.StatusPolicyPendingOrOverdue)
}

func obligation(id, studentID, tutorID, period string, amount int64) delinquency.Obligation {
	return delinquency.Obligation{
		ID:        id,
		StudentID: studentID,
		TutorID:   tutorID,
		Period:    period,
		Status:    delinquency.PaymentStatusPending,
		Amount:    decimal.NewFromInt(amount),
	}
}
