package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mateatletas/backend/internal/application/delinquency"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the status of the last scan run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// ScanRunner runs one system-wide delinquency scan
type ScanRunner interface {
	Run(ctx context.Context) (*delinquency.ScanSummary, error)
}

// Config holds configuration for the delinquency scan scheduler
type Config struct {
	// Schedule is a standard 5-field cron expression, evaluated in Location
	Schedule string
	Location *time.Location
	// JobTimeout bounds a single attempt
	JobTimeout time.Duration
	// RetryAttempts is the number of extra attempts after a failed run
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns the default schedule: 06:00 daily in UTC
func DefaultConfig() Config {
	return Config{
		Schedule:      "0 6 * * *",
		Location:      time.UTC,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Minute,
	}
}

// DelinquencyScanScheduler runs the delinquency scan on a cron schedule.
// Runs never overlap: a tick that fires while a scan is running is skipped.
type DelinquencyScanScheduler struct {
	config  Config
	runner  ScanRunner
	logger  *zap.Logger
	cron    *cron.Cron
	entryID cron.EntryID

	running sync.Mutex // held for the duration of one scan
	manual  sync.WaitGroup

	mu          sync.Mutex
	isRunning   bool
	cancel      context.CancelFunc
	ctx         context.Context
	lastRunAt   *time.Time
	lastStatus  JobStatus
	lastError   string
	lastSummary *delinquency.ScanSummary
}

// NewDelinquencyScanScheduler validates the schedule and creates a stopped scheduler
func NewDelinquencyScanScheduler(config Config, runner ScanRunner, logger *zap.Logger) (*DelinquencyScanScheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("%w: scan runner is required", ErrInvalidConfig)
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	if config.RetryAttempts < 0 {
		return nil, fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &DelinquencyScanScheduler{
		config:     config,
		runner:     runner,
		logger:     logger,
		lastStatus: JobStatusPending,
	}
	s.cron = cron.New(
		cron.WithLocation(config.Location),
		cron.WithLogger(newCronLogger(logger)),
		cron.WithChain(cron.Recover(newCronLogger(logger))),
	)
	id, err := s.cron.AddFunc(config.Schedule, s.tick)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, config.Schedule, err)
	}
	s.entryID = id
	return s, nil
}

// Start starts the cron engine. Scans run under a context derived from ctx.
func (s *DelinquencyScanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.mu.Unlock()

	s.cron.Start()

	s.logger.Info("Delinquency scan scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.String("location", s.config.Location.String()),
		zap.Timep("next_run_at", s.GetNextRunAt()),
	)
	return nil
}

// Stop stops scheduling, cancels a running scan and waits for it to return
func (s *DelinquencyScanScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.manual.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Delinquency scan scheduler stop timed out")
		return ctx.Err()
	}

	s.logger.Info("Delinquency scan scheduler stopped")
	return nil
}

// TriggerManualRun starts a scan outside the schedule and returns immediately
func (s *DelinquencyScanScheduler) TriggerManualRun() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	if !s.running.TryLock() {
		return ErrScanAlreadyRunning
	}
	// Add under mu so Stop, which flips isRunning under mu, always waits for it
	s.manual.Add(1)
	ctx := s.ctx
	go func() {
		defer s.manual.Done()
		defer s.running.Unlock()
		_ = s.runWithRetry(ctx)
	}()
	return nil
}

// RunOnce runs a scan synchronously, retrying per configuration
func (s *DelinquencyScanScheduler) RunOnce(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrScanAlreadyRunning
	}
	defer s.running.Unlock()
	return s.runWithRetry(ctx)
}

func (s *DelinquencyScanScheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}

	if !s.running.TryLock() {
		s.logger.Warn("Skipping delinquency scan, previous run still in progress")
		return
	}
	defer s.running.Unlock()
	_ = s.runWithRetry(ctx)
}

func (s *DelinquencyScanScheduler) runWithRetry(ctx context.Context) error {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.lastStatus = JobStatusRunning
	s.mu.Unlock()

	var err error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying delinquency scan",
				zap.Int("attempt", attempt),
				zap.Duration("delay", s.config.RetryDelay),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				s.finish(nil, ctx.Err())
				return ctx.Err()
			case <-time.After(s.config.RetryDelay):
			}
		}

		var summary *delinquency.ScanSummary
		summary, err = s.runAttempt(ctx)
		if err == nil {
			s.finish(summary, nil)
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	s.logger.Error("Delinquency scan failed", zap.Error(err))
	s.finish(nil, err)
	return err
}

func (s *DelinquencyScanScheduler) runAttempt(ctx context.Context) (*delinquency.ScanSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	return s.runner.Run(ctx)
}

func (s *DelinquencyScanScheduler) finish(summary *delinquency.ScanSummary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastStatus = JobStatusFailed
		s.lastError = err.Error()
		return
	}
	s.lastStatus = JobStatusSuccess
	s.lastError = ""
	s.lastSummary = summary
}

// GetNextRunAt returns when the next scheduled run will occur, or nil when stopped
func (s *DelinquencyScanScheduler) GetNextRunAt() *time.Time {
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// GetLastRunAt returns when the last run started
func (s *DelinquencyScanScheduler) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}

// LastSummary returns the summary of the last successful run
func (s *DelinquencyScanScheduler) LastSummary() *delinquency.ScanSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSummary
}

// Status is a point-in-time view of the scheduler
type Status struct {
	Running     bool
	Schedule    string
	Location    string
	LastRunAt   *time.Time
	LastStatus  JobStatus
	LastError   string
	NextRunAt   *time.Time
	LastSummary *delinquency.ScanSummary
}

// GetStatus returns the current status of the scheduler
func (s *DelinquencyScanScheduler) GetStatus() Status {
	next := s.GetNextRunAt()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:     s.isRunning,
		Schedule:    s.config.Schedule,
		Location:    s.config.Location.String(),
		LastRunAt:   s.lastRunAt,
		LastStatus:  s.lastStatus,
		LastError:   s.lastError,
		NextRunAt:   next,
		LastSummary: s.lastSummary,
	}
}

// cronLogger routes robfig/cron logs to zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func newCronLogger(logger *zap.Logger) cron.Logger {
	return cronLogger{logger: logger.Named("cron").Sugar()}
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
