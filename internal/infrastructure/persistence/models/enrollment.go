package models

import (
	"time"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/shopspring/decimal"
)

// MonthlyEnrollmentModel is one monthly fee of a student (inscripciones_mensuales)
type MonthlyEnrollmentModel struct {
	ID              string                    `gorm:"column:id;primaryKey"`
	StudentID       string                    `gorm:"column:estudiante_id;not null;index:idx_inscripciones_estudiante_estado,priority:1"`
	TutorID         string                    `gorm:"column:tutor_id;not null;index:idx_inscripciones_tutor_estado,priority:1"`
	Period          string                    `gorm:"column:periodo;type:varchar(7);not null"`
	FinalPrice      decimal.Decimal           `gorm:"column:precio_final;type:numeric(12,2);not null"`
	PaymentStatus   delinquency.PaymentStatus `gorm:"column:estado_pago;type:varchar(20);not null;index:idx_inscripciones_estudiante_estado,priority:2;index:idx_inscripciones_tutor_estado,priority:2"`
	ExplicitDueDate *time.Time                `gorm:"column:fecha_vencimiento;type:date"`
	CreatedAt       time.Time                 `gorm:"column:created_at"`
	UpdatedAt       time.Time                 `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (MonthlyEnrollmentModel) TableName() string {
	return "inscripciones_mensuales"
}

// ToDomain converts the row to an Obligation
func (m *MonthlyEnrollmentModel) ToDomain() delinquency.Obligation {
	return delinquency.Obligation{
		ID:              m.ID,
		StudentID:       m.StudentID,
		TutorID:         m.TutorID,
		Period:          m.Period,
		Status:          m.PaymentStatus,
		Amount:          m.FinalPrice,
		ExplicitDueDate: m.ExplicitDueDate,
	}
}
