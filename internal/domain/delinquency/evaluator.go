package delinquency

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// OverdueObligation is an outstanding obligation whose due date has passed
type OverdueObligation struct {
	ObligationID string
	StudentID    string
	TutorID      string
	Period       string
	Amount       decimal.Decimal
	DueDate      time.Time
	DaysOverdue  int
}

// DueDay returns the calendar day of DueDate
func (o OverdueObligation) DueDay() time.Time {
	return civilDate(o.DueDate)
}

// MalformedObligation is an obligation left out of a Result because its due
// date could not be determined
type MalformedObligation struct {
	Obligation Obligation
	Err        error
}

// Result is the outcome of evaluating one set of obligations.
// It is computed fresh on every call and never stored.
type Result struct {
	Delinquent bool
	// Overdue is ordered by due date ascending, then by period
	Overdue   []OverdueObligation
	TotalOwed decimal.Decimal
	Malformed []MalformedObligation
}

// Periods returns the period tokens of the overdue obligations, oldest first
func (r Result) Periods() []string {
	periods := make([]string, len(r.Overdue))
	for i, o := range r.Overdue {
		periods[i] = o.Period
	}
	return periods
}

// Oldest returns the overdue obligation with the earliest due date
func (r Result) Oldest() (OverdueObligation, bool) {
	if len(r.Overdue) == 0 {
		return OverdueObligation{}, false
	}
	return r.Overdue[0], true
}

// AffectedStudents counts the distinct students among the overdue obligations
func (r Result) AffectedStudents() int {
	seen := make(map[string]struct{}, len(r.Overdue))
	for _, o := range r.Overdue {
		seen[o.StudentID] = struct{}{}
	}
	return len(seen)
}

// Evaluator partitions obligations into overdue and current
type Evaluator struct {
	resolver *DueDateResolver
	policy   StatusPolicy
}

// NewEvaluator creates an Evaluator. An invalid policy falls back to DefaultStatusPolicy.
func NewEvaluator(resolver *DueDateResolver, policy StatusPolicy) *Evaluator {
	if resolver == nil {
		resolver = NewDueDateResolver(nil)
	}
	if !policy.IsValid() {
		policy = DefaultStatusPolicy
	}
	return &Evaluator{resolver: resolver, policy: policy}
}

// Policy returns the status policy used to select outstanding obligations
func (e *Evaluator) Policy() StatusPolicy {
	return e.policy
}

// Location returns the calendar location of the evaluation
func (e *Evaluator) Location() *time.Location {
	return e.resolver.Location()
}

// Evaluate keeps the outstanding obligations whose due day ended before the
// calendar day of now. An obligation is never overdue on its due date itself.
// Obligations with an unparsable period are reported in Result.Malformed.
func (e *Evaluator) Evaluate(obligations []Obligation, now time.Time) Result {
	today := civilDate(now.In(e.resolver.Location()))

	result := Result{
		Overdue:   []OverdueObligation{},
		TotalOwed: decimal.Zero,
	}

	for _, o := range obligations {
		if !e.policy.IsOutstanding(o.Status) {
			continue
		}

		dueDate, err := e.resolver.Resolve(o.Period, o.ExplicitDueDate)
		if err != nil {
			result.Malformed = append(result.Malformed, MalformedObligation{Obligation: o, Err: err})
			continue
		}

		dueDay := civilDate(dueDate)
		if !dueDay.Before(today) {
			continue
		}

		result.Overdue = append(result.Overdue, OverdueObligation{
			ObligationID: o.ID,
			StudentID:    o.StudentID,
			TutorID:      o.TutorID,
			Period:       o.Period,
			Amount:       o.Amount,
			DueDate:      dueDate,
			DaysOverdue:  daysBetween(dueDay, today) - 1,
		})
	}

	sort.SliceStable(result.Overdue, func(i, j int) bool {
		a, b := result.Overdue[i], result.Overdue[j]
		da, db := a.DueDay(), b.DueDay()
		if !da.Equal(db) {
			return da.Before(db)
		}
		return a.Period < b.Period
	})

	for _, o := range result.Overdue {
		result.TotalOwed = result.TotalOwed.Add(o.Amount)
	}
	result.Delinquent = len(result.Overdue) > 0

	return result
}

// civilDate drops the clock part of t, keeping t's own calendar day
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b; both must be civil dates
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
