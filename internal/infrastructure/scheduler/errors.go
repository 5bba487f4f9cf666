package scheduler

import (
	"errors"

	"github.com/mateatletas/backend/internal/domain/shared"
)

var (
	// ErrSchedulerNotRunning is returned when triggering a run on a stopped scheduler
	ErrSchedulerNotRunning = shared.NewDomainError(shared.ErrUnavailable.Code, "Delinquency scan scheduler is not running")

	// ErrScanAlreadyRunning is returned when a manual run overlaps a running scan
	ErrScanAlreadyRunning = shared.NewDomainError(shared.ErrConflict.Code, "Delinquency scan already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
