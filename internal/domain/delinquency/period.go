package delinquency

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period identifies a monthly billing cycle ("YYYY-MM")
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a "YYYY-MM" token. Both parts must be unsigned integers
// and the month must be in 1..12.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Period{}, malformedPeriod(s, "expected YYYY-MM")
	}
	year, ok := parseDigits(parts[0])
	if !ok || year < 1 {
		return Period{}, malformedPeriod(s, "year is not a positive integer")
	}
	month, ok := parseDigits(parts[1])
	if !ok {
		return Period{}, malformedPeriod(s, "month is not an integer")
	}
	if month < 1 || month > 12 {
		return Period{}, malformedPeriod(s, "month out of range 1-12")
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the period containing t, in t's location
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// String formats the period as "YYYY-MM"
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// LastDay returns the last calendar day of the period at 00:00 in loc
// (day zero of the following month).
func (p Period) LastDay(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, loc)
}

// FirstDay returns the first calendar day of the period at 00:00 in loc
func (p Period) FirstDay(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// AddMonths returns the period n months later (earlier when n is negative)
func (p Period) AddMonths(n int) Period {
	t := time.Date(p.Year, p.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: t.Year(), Month: t.Month()}
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
