package delinquency

import "time"

// DueDateResolver computes the due date of an obligation
type DueDateResolver struct {
	loc *time.Location
}

// NewDueDateResolver creates a resolver that derives due dates in loc.
// A nil location means UTC.
func NewDueDateResolver(loc *time.Location) *DueDateResolver {
	if loc == nil {
		loc = time.UTC
	}
	return &DueDateResolver{loc: loc}
}

// Location returns the calendar location used for derived due dates
func (r *DueDateResolver) Location() *time.Location {
	return r.loc
}

// Resolve returns explicitDueDate unchanged when present. Otherwise the due
// date is the last calendar day of period, or ErrMalformedPeriod.
func (r *DueDateResolver) Resolve(period string, explicitDueDate *time.Time) (time.Time, error) {
	if explicitDueDate != nil {
		return *explicitDueDate, nil
	}
	p, err := ParsePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	return p.LastDay(r.loc), nil
}
