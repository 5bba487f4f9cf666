package models

import "github.com/mateatletas/backend/internal/domain/delinquency"

// StudentModel maps the estudiantes table
type StudentModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	FirstName string `gorm:"column:nombre;not null"`
	LastName  string `gorm:"column:apellido;not null"`
	Age       int    `gorm:"column:edad"`
	TutorID   string `gorm:"column:tutor_id;not null;index"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "estudiantes"
}

// ToDomain converts the row to a Student
func (m *StudentModel) ToDomain() delinquency.Student {
	return delinquency.Student{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Age:       m.Age,
		TutorID:   m.TutorID,
	}
}

// TutorModel maps the tutores table
type TutorModel struct {
	ID        string  `gorm:"column:id;primaryKey"`
	FirstName string  `gorm:"column:nombre;not null"`
	LastName  string  `gorm:"column:apellido;not null"`
	Email     *string `gorm:"column:email"`
	Phone     *string `gorm:"column:telefono"`
}

// TableName returns the table name for GORM
func (TutorModel) TableName() string {
	return "tutores"
}

// ToDomain converts the row to a Tutor
func (m *TutorModel) ToDomain() delinquency.Tutor {
	return delinquency.Tutor{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
	}
}
