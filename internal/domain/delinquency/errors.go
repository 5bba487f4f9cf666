package delinquency

import (
	"fmt"

	"github.com/mateatletas/backend/internal/domain/shared"
)

// Error codes specific to delinquency evaluation
const (
	CodeMalformedPeriod = "MALFORMED_PERIOD"
	CodeSubjectNotFound = "SUBJECT_NOT_FOUND"
)

var (
	// ErrMalformedPeriod is returned when a period token is not a valid "YYYY-MM"
	ErrMalformedPeriod = shared.NewDomainError(CodeMalformedPeriod, "Malformed billing period")
	// ErrSubjectNotFound is returned when no student or tutor matches an id
	ErrSubjectNotFound = shared.NewDomainError(CodeSubjectNotFound, "Student or tutor not found")
)

func malformedPeriod(period, reason string) error {
	return shared.NewDomainError(CodeMalformedPeriod,
		fmt.Sprintf("Invalid period %q for due date calculation: %s", period, reason))
}

// StudentNotFound builds a not-found error naming the student id
func StudentNotFound(id string) error {
	return shared.NewDomainError(CodeSubjectNotFound, fmt.Sprintf("Student %s not found", id))
}

// TutorNotFound builds a not-found error naming the tutor id
func TutorNotFound(id string) error {
	return shared.NewDomainError(CodeSubjectNotFound, fmt.Sprintf("Tutor %s not found", id))
}
