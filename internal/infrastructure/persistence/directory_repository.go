package persistence

import (
	"context"
	"errors"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDirectoryRepository resolves students and tutors
type GormDirectoryRepository struct {
	db *gorm.DB
}

var _ delinquency.Directory = (*GormDirectoryRepository)(nil)

// NewGormDirectoryRepository creates a new GormDirectoryRepository
func NewGormDirectoryRepository(db *gorm.DB) *GormDirectoryRepository {
	return &GormDirectoryRepository{db: db}
}

// FindStudent finds a student by ID
func (r *GormDirectoryRepository) FindStudent(ctx context.Context, id string) (*delinquency.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, delinquency.StudentNotFound(id)
		}
		return nil, err
	}
	student := model.ToDomain()
	return &student, nil
}

// FindTutor finds a tutor by ID
func (r *GormDirectoryRepository) FindTutor(ctx context.Context, id string) (*delinquency.Tutor, error) {
	var model models.TutorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, delinquency.TutorNotFound(id)
		}
		return nil, err
	}
	tutor := model.ToDomain()
	return &tutor, nil
}

// FindStudentsByIDs loads the students matching ids; unknown ids are skipped
func (r *GormDirectoryRepository) FindStudentsByIDs(ctx context.Context, ids []string) ([]delinquency.Student, error) {
	if len(ids) == 0 {
		return []delinquency.Student{}, nil
	}
	var rows []models.StudentModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	students := make([]delinquency.Student, len(rows))
	for i := range rows {
		students[i] = rows[i].ToDomain()
	}
	return students, nil
}

// FindTutorsByIDs loads the tutors matching ids; unknown ids are skipped
func (r *GormDirectoryRepository) FindTutorsByIDs(ctx context.Context, ids []string) ([]delinquency.Tutor, error) {
	if len(ids) == 0 {
		return []delinquency.Tutor{}, nil
	}
	var rows []models.TutorModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	tutors := make([]delinquency.Tutor, len(rows))
	for i := range rows {
		tutors[i] = rows[i].ToDomain()
	}
	return tutors, nil
}
