package persistence

import (
	"context"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormObligationRepository reads monthly enrollments as obligations
type GormObligationRepository struct {
	db *gorm.DB
}

var _ delinquency.ObligationReader = (*GormObligationRepository)(nil)

// NewGormObligationRepository creates a new GormObligationRepository
func NewGormObligationRepository(db *gorm.DB) *GormObligationRepository {
	return &GormObligationRepository{db: db}
}

// FindOutstandingByStudent loads one student's enrollments in the given statuses
func (r *GormObligationRepository) FindOutstandingByStudent(ctx context.Context, studentID string, statuses []delinquency.PaymentStatus) ([]delinquency.Obligation, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("estudiante_id = ?", studentID), statuses)
}

// FindOutstandingByTutor loads the enrollments billed to a tutor in the given statuses
func (r *GormObligationRepository) FindOutstandingByTutor(ctx context.Context, tutorID string, statuses []delinquency.PaymentStatus) ([]delinquency.Obligation, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("tutor_id = ?", tutorID), statuses)
}

// FindAllOutstanding loads every enrollment in the given statuses
func (r *GormObligationRepository) FindAllOutstanding(ctx context.Context, statuses []delinquency.PaymentStatus) ([]delinquency.Obligation, error) {
	return r.find(ctx, r.db.WithContext(ctx), statuses)
}

func (r *GormObligationRepository) find(_ context.Context, query *gorm.DB, statuses []delinquency.PaymentStatus) ([]delinquency.Obligation, error) {
	if len(statuses) == 0 {
		return []delinquency.Obligation{}, nil
	}

	var rows []models.MonthlyEnrollmentModel
	if err := query.
		Where("estado_pago IN ?", statusStrings(statuses)).
		Order("estudiante_id ASC, periodo ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	obligations := make([]delinquency.Obligation, len(rows))
	for i := range rows {
		obligations[i] = rows[i].ToDomain()
	}
	return obligations, nil
}

func statusStrings(statuses []delinquency.PaymentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
