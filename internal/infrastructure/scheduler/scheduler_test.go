package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	calls   atomic.Int32
	fail    int32 // number of leading calls that fail
	block   chan struct{}
	started chan struct{}
}

func (r *fakeRunner) Run(ctx context.Context) (*delinquency.ScanSummary, error) {
	n := r.calls.Add(1)
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= r.fail {
		return nil, errors.New("database unavailable")
	}
	return &delinquency.ScanSummary{DelinquentStudents: 3}, nil
}

// slowRunner ignores cancellation so a run outliving Stop is observable
type slowRunner struct {
	inFlight atomic.Int32
}

func (r *slowRunner) Run(ctx context.Context) (*delinquency.ScanSummary, error) {
	r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	time.Sleep(5 * time.Millisecond)
	return &delinquency.ScanSummary{}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestNewDelinquencyScanScheduler_Validation(t *testing.T) {
	t.Run("invalid schedule", func(t *testing.T) {
		cfg := testConfig()
		cfg.Schedule = "every day at six"
		_, err := NewDelinquencyScanScheduler(cfg, &fakeRunner{}, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing runner", func(t *testing.T) {
		_, err := NewDelinquencyScanScheduler(testConfig(), nil, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("negative retries", func(t *testing.T) {
		cfg := testConfig()
		cfg.RetryAttempts = -1
		_, err := NewDelinquencyScanScheduler(cfg, &fakeRunner{}, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0 6 * * *", cfg.Schedule)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 2, cfg.RetryAttempts)
}

func TestRunOnce(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		runner := &fakeRunner{}
		s, err := NewDelinquencyScanScheduler(testConfig(), runner, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.RunOnce(context.Background()))
		assert.Equal(t, int32(1), runner.calls.Load())
		assert.Equal(t, 3, s.LastSummary().DelinquentStudents)
		assert.NotNil(t, s.GetLastRunAt())
		assert.Equal(t, JobStatusSuccess, s.GetStatus().LastStatus)
	})

	t.Run("recovers after a retry", func(t *testing.T) {
		runner := &fakeRunner{fail: 1}
		s, err := NewDelinquencyScanScheduler(testConfig(), runner, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.RunOnce(context.Background()))
		assert.Equal(t, int32(2), runner.calls.Load())
	})

	t.Run("gives up after retries", func(t *testing.T) {
		runner := &fakeRunner{fail: 10}
		s, err := NewDelinquencyScanScheduler(testConfig(), runner, zap.NewNop())
		require.NoError(t, err)

		err = s.RunOnce(context.Background())
		require.Error(t, err)
		assert.Equal(t, int32(3), runner.calls.Load())
		assert.Nil(t, s.LastSummary())

		status := s.GetStatus()
		assert.Equal(t, JobStatusFailed, status.LastStatus)
		assert.Equal(t, "database unavailable", status.LastError)
	})

	t.Run("attempt is bounded by the job timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.JobTimeout = 10 * time.Millisecond
		cfg.RetryAttempts = 0
		runner := &fakeRunner{block: make(chan struct{})}
		s, err := NewDelinquencyScanScheduler(cfg, runner, zap.NewNop())
		require.NoError(t, err)

		assert.ErrorIs(t, s.RunOnce(context.Background()), context.DeadlineExceeded)
	})
}

func TestTriggerManualRun(t *testing.T) {
	t.Run("requires a started scheduler", func(t *testing.T) {
		s, err := NewDelinquencyScanScheduler(testConfig(), &fakeRunner{}, zap.NewNop())
		require.NoError(t, err)

		assert.ErrorIs(t, s.TriggerManualRun(), ErrSchedulerNotRunning)
	})

	t.Run("runs do not overlap", func(t *testing.T) {
		runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{}, 1)}
		s, err := NewDelinquencyScanScheduler(testConfig(), runner, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, s.Start(context.Background()))

		require.NoError(t, s.TriggerManualRun())
		<-runner.started
		assert.ErrorIs(t, s.TriggerManualRun(), ErrScanAlreadyRunning)
		assert.ErrorIs(t, s.RunOnce(context.Background()), ErrScanAlreadyRunning)

		close(runner.block)
		require.Eventually(t, func() bool {
			return s.GetStatus().LastStatus == JobStatusSuccess
		}, time.Second, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
		assert.Equal(t, int32(1), runner.calls.Load())
	})
}

func TestTriggerManualRun_ConcurrentStop(t *testing.T) {
	for i := 0; i < 50; i++ {
		runner := &slowRunner{}
		s, err := NewDelinquencyScanScheduler(testConfig(), runner, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, s.Start(context.Background()))

		triggered := make(chan error, 1)
		go func() { triggered <- s.TriggerManualRun() }()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, s.Stop(ctx))
		cancel()
		assert.Zero(t, runner.inFlight.Load(), "a run outlived Stop")

		if err := <-triggered; err != nil {
			assert.ErrorIs(t, err, ErrSchedulerNotRunning)
		}
	}
}

func TestStartStop(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Location = loc

	s, err := NewDelinquencyScanScheduler(cfg, &fakeRunner{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, s.GetNextRunAt())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return s.GetNextRunAt() != nil }, time.Second, 5*time.Millisecond)
	next := s.GetNextRunAt().In(loc)
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, s.GetStatus().Running)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.GetStatus().Running)
}

type fakeScanMetrics struct {
	mu        sync.Mutex
	students  int
	overdue   int
	totalOwed float64
	err       error
}

func (m *fakeScanMetrics) ObserveScan(_ time.Time, students, overdue int, totalOwed float64, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students, m.overdue, m.totalOwed, m.err = students, overdue, totalOwed, err
}

func TestMetricsScanRecorder(t *testing.T) {
	metrics := &fakeScanMetrics{}
	recorder := NewMetricsScanRecorder(metrics)

	recorder.RecordScan(delinquency.ScanSummary{
		DelinquentStudents: 2,
		OverdueObligations: 5,
		TotalOwed:          decimal.RequireFromString("1234.565"),
	}, nil)

	assert.Equal(t, 2, metrics.students)
	assert.Equal(t, 5, metrics.overdue)
	assert.Equal(t, 1234.57, metrics.totalOwed)
	assert.NoError(t, metrics.err)

	scanErr := errors.New("boom")
	recorder.RecordScan(delinquency.ScanSummary{}, scanErr)
	assert.ErrorIs(t, metrics.err, scanErr)
}
