//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mateatletas/backend/internal/domain/delinquency"
	"github.com/mateatletas/backend/internal/infrastructure/migration"
	"github.com/mateatletas/backend/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "github.com/lib/pq"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("mateatletas_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	status, err := m.Status()
	require.NoError(t, err)
	assert.True(t, status.Applied)
	assert.False(t, status.Dirty)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestIntegration_OutstandingObligations(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(`INSERT INTO tutores (id, nombre, apellido) VALUES ('t1', 'Ana', 'Gómez')`).Error)
	require.NoError(t, db.Exec(`INSERT INTO estudiantes (id, nombre, apellido, edad, tutor_id) VALUES ('s1', 'Juan', 'Pérez', 10, 't1')`).Error)
	require.NoError(t, db.Exec(`
		INSERT INTO inscripciones_mensuales (id, estudiante_id, tutor_id, periodo, precio_final, estado_pago, fecha_vencimiento) VALUES
		('i1', 's1', 't1', '2024-01', 1000.00, 'Pendiente', NULL),
		('i2', 's1', 't1', '2024-02', 1250.50, 'Vencido', '2024-03-10'),
		('i3', 's1', 't1', '2024-03', 900.00, 'Pagado', NULL)`).Error)

	obligations := NewGormObligationRepository(db)
	directory := NewGormDirectoryRepository(db)

	got, err := obligations.FindOutstandingByStudent(ctx, "s1", delinquency.StatusPolicyPendingOrOverdue.OutstandingStatuses())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01", got[0].Period)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(got[1].Amount))
	require.NotNil(t, got[1].ExplicitDueDate)
	assert.Equal(t, "2024-03-10", got[1].ExplicitDueDate.Format("2006-01-02"))

	student, err := directory.FindStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "t1", student.TutorID)

	_, err = directory.FindTutor(ctx, "missing")
	assert.ErrorIs(t, err, delinquency.ErrSubjectNotFound)
}
