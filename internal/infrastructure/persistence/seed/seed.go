// Package seed generates realistic demo data for local development and load tests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidOptions is returned for options that cannot produce a dataset
var ErrInvalidOptions = errors.New("invalid seed options")

// Options controls the shape of a generated dataset
type Options struct {
	Tutors              int
	MaxStudentsPerTutor int
	// Months is how many monthly periods, ending with the current one, each student is billed for
	Months int
	// UnpaidRate is the probability that a past period is left unpaid
	UnpaidRate float64
	// ExplicitDueDateRate is the probability that an obligation carries its own due date
	ExplicitDueDateRate float64
	MinPrice            float64
	MaxPrice            float64
	Now                 time.Time
	Location            *time.Location
	// Seed makes generation reproducible; 0 picks a random seed
	Seed uint64
}

// DefaultOptions returns a small dataset billed over the last six months
func DefaultOptions() Options {
	return Options{
		Tutors:              20,
		MaxStudentsPerTutor: 3,
		Months:              6,
		UnpaidRate:          0.15,
		ExplicitDueDateRate: 0.1,
		MinPrice:            15000,
		MaxPrice:            45000,
		Now:                 time.Now(),
		Location:            time.UTC,
	}
}

func (o Options) validate() error {
	switch {
	case o.Tutors <= 0:
		return fmt.Errorf("%w: tutors must be positive", ErrInvalidOptions)
	case o.MaxStudentsPerTutor <= 0:
		return fmt.Errorf("%w: max students per tutor must be positive", ErrInvalidOptions)
	case o.Months <= 0:
		return fmt.Errorf("%w: months must be positive", ErrInvalidOptions)
	case o.UnpaidRate < 0 || o.UnpaidRate > 1:
		return fmt.Errorf("%w: unpaid rate must be between 0 and 1", ErrInvalidOptions)
	case o.ExplicitDueDateRate < 0 || o.ExplicitDueDateRate > 1:
		return fmt.Errorf("%w: explicit due date rate must be between 0 and 1", ErrInvalidOptions)
	case o.MinPrice <= 0 || o.MaxPrice < o.MinPrice:
		return fmt.Errorf("%w: price range is invalid", ErrInvalidOptions)
	}
	return nil
}

// Dataset is one generated set of rows
type Dataset struct {
	Tutors      []models.TutorModel
	Students    []models.StudentModel
	Enrollments []models.MonthlyEnrollmentModel
}

// Generate builds a dataset. The current period is always pending; earlier
// periods are paid unless they fall within UnpaidRate.
func Generate(opts Options) (*Dataset, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now.In(loc)
	f := gofakeit.New(opts.Seed)

	periods := make([]delinquency.Period, opts.Months)
	current := delinquency.PeriodOf(now)
	for i := range periods {
		periods[i] = current.AddMonths(i - opts.Months + 1)
	}

	ds := &Dataset{}
	for range opts.Tutors {
		lastName := f.LastName()
		tutor := models.TutorModel{
			ID:        f.UUID(),
			FirstName: f.FirstName(),
			LastName:  lastName,
		}
		if f.Bool() {
			email := f.Email()
			tutor.Email = &email
		}
		if f.Bool() {
			phone := f.Phone()
			tutor.Phone = &phone
		}
		ds.Tutors = append(ds.Tutors, tutor)

		for range f.Number(1, opts.MaxStudentsPerTutor) {
			student := models.StudentModel{
				ID:        f.UUID(),
				FirstName: f.FirstName(),
				LastName:  lastName,
				Age:       f.Number(6, 17),
				TutorID:   tutor.ID,
			}
			ds.Students = append(ds.Students, student)

			price := decimal.NewFromFloat(f.Float64Range(opts.MinPrice, opts.MaxPrice)).Round(2)
			for _, p := range periods {
				ds.Enrollments = append(ds.Enrollments, newEnrollment(f, opts, student, p, current, price, loc, now))
			}
		}
	}
	return ds, nil
}

func newEnrollment(
	f *gofakeit.Faker,
	opts Options,
	student models.StudentModel,
	p, current delinquency.Period,
	price decimal.Decimal,
	loc *time.Location,
	now time.Time,
) models.MonthlyEnrollmentModel {
	status := delinquency.PaymentStatusPaid
	switch {
	case p == current:
		status = delinquency.PaymentStatusPending
	case f.Float64() < opts.UnpaidRate:
		status = delinquency.PaymentStatusPending
		if f.Bool() {
			status = delinquency.PaymentStatusOverdue
		}
	}

	e := models.MonthlyEnrollmentModel{
		ID:            f.UUID(),
		StudentID:     student.ID,
		TutorID:       student.TutorID,
		Period:        p.String(),
		FinalPrice:    price,
		PaymentStatus: status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if f.Float64() < opts.ExplicitDueDateRate {
		// billed with a grace period up to the 10th of the next month
		due := p.AddMonths(1).FirstDay(loc).AddDate(0, 0, 9)
		e.ExplicitDueDate = &due
	}
	return e
}

// Insert writes the dataset in a single transaction
func Insert(ctx context.Context, db *gorm.DB, ds *Dataset) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ds.Tutors) > 0 {
			if err := tx.CreateInBatches(ds.Tutors, 500).Error; err != nil {
				return fmt.Errorf("failed to insert tutors: %w", err)
			}
		}
		if len(ds.Students) > 0 {
			if err := tx.CreateInBatches(ds.Students, 500).Error; err != nil {
				return fmt.Errorf("failed to insert students: %w", err)
			}
		}
		if len(ds.Enrollments) > 0 {
			if err := tx.CreateInBatches(ds.Enrollments, 500).Error; err != nil {
				return fmt.Errorf("failed to insert enrollments: %w", err)
			}
		}
		return nil
	})
}
