package delinquency

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Obligation is one billing period's fee for a student (read model).
// Obligations are owned by the enrollment store; this package never mutates them.
type Obligation struct {
	ID              string
	StudentID       string // who owes
	TutorID         string // who is billed
	Period          string // "YYYY-MM"
	Status          PaymentStatus
	Amount          decimal.Decimal
	ExplicitDueDate *time.Time // calendar date; nil means derive from Period
}

// Student is the subject of an obligation
type Student struct {
	ID        string
	FirstName string
	LastName  string
	Age       int
	TutorID   string
}

// FullName returns "first last"
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// Tutor is the payer billed for one or more students
type Tutor struct {
	ID        string
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
}

// FullName returns "first last"
func (t Tutor) FullName() string {
	return joinName(t.FirstName, t.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
