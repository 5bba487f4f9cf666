package seed

import (
	"context"
	"testing"
	"time"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/infrastructure/persistence"
	"github.com/mateatletas/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Tutors = 5
	opts.Now = time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC)
	opts.Seed = 42
	return opts
}

func TestGenerate_Shape(t *testing.T) {
	opts := testOptions()
	ds, err := Generate(opts)
	require.NoError(t, err)

	assert.Len(t, ds.Tutors, 5)
	require.NotEmpty(t, ds.Students)
	assert.LessOrEqual(t, len(ds.Students), 5*opts.MaxStudentsPerTutor)
	assert.Len(t, ds.Enrollments, len(ds.Students)*opts.Months)

	tutors := map[string]bool{}
	for _, tt := range ds.Tutors {
		tutors[tt.ID] = true
	}
	students := map[string]models.StudentModel{}
	for _, s := range ds.Students {
		assert.True(t, tutors[s.TutorID], "student %s has unknown tutor", s.ID)
		assert.GreaterOrEqual(t, s.Age, 6)
		assert.LessOrEqual(t, s.Age, 17)
		students[s.ID] = s
	}

	for _, e := range ds.Enrollments {
		s, ok := students[e.StudentID]
		require.True(t, ok)
		assert.Equal(t, s.TutorID, e.TutorID)
		assert.True(t, e.PaymentStatus.IsValid())

		p, err := delinquency.ParsePeriod(e.Period)
		require.NoError(t, err)
		assert.False(t, p.FirstDay(time.UTC).After(opts.Now))
		assert.False(t, p.FirstDay(time.UTC).Before(time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)))
		if e.Period == "2024-04" {
			assert.Equal(t, delinquency.PaymentStatusPending, e.PaymentStatus)
		}
		assert.True(t, e.FinalPrice.Equal(e.FinalPrice.Round(2)))
		assert.True(t, e.FinalPrice.InexactFloat64() >= opts.MinPrice && e.FinalPrice.InexactFloat64() <= opts.MaxPrice)
	}
}

func TestGenerate_IsReproducible(t *testing.T) {
	a, err := Generate(testOptions())
	require.NoError(t, err)
	b, err := Generate(testOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Tutors, b.Tutors)
	assert.Equal(t, a.Students, b.Students)
	assert.Equal(t, len(a.Enrollments), len(b.Enrollments))
}

func TestGenerate_AllPaid(t *testing.T) {
	opts := testOptions()
	opts.UnpaidRate = 0
	ds, err := Generate(opts)
	require.NoError(t, err)

	for _, e := range ds.Enrollments {
		if e.Period != "2024-04" {
			assert.Equal(t, delinquency.PaymentStatusPaid, e.PaymentStatus)
		}
	}
}

func TestGenerate_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no tutors", func(o *Options) { o.Tutors = 0 }},
		{"no students", func(o *Options) { o.MaxStudentsPerTutor = 0 }},
		{"no months", func(o *Options) { o.Months = 0 }},
		{"unpaid rate above one", func(o *Options) { o.UnpaidRate = 1.5 }},
		{"negative due date rate", func(o *Options) { o.ExplicitDueDateRate = -0.1 }},
		{"inverted price range", func(o *Options) { o.MinPrice, o.MaxPrice = 100, 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)
			_, err := Generate(opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestInsert(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.TutorModel{}, &models.StudentModel{}, &models.MonthlyEnrollmentModel{}))

	opts := testOptions()
	opts.UnpaidRate = 1
	ds, err := Generate(opts)
	require.NoError(t, err)
	require.NoError(t, Insert(context.Background(), db, ds))

	var count int64
	require.NoError(t, db.Model(&models.MonthlyEnrollmentModel{}).Count(&count).Error)
	assert.Equal(t, int64(len(ds.Enrollments)), count)

	repo := persistence.NewGormObligationRepository(db)
	outstanding, err := repo.FindAllOutstanding(context.Background(), delinquency.StatusPolicyPendingOrOverdue.OutstandingStatuses())
	require.NoError(t, err)
	assert.Len(t, outstanding, len(ds.Enrollments))
}
