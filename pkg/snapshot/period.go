package snapshot

import (
	"fmt"
	"time"
)

// DateLayout is the canonical rendering of a snapshot date
const DateLayout = "2006-01-02"

// Period is the expected spacing between consecutive snapshots.
type Period string

const (
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
	PeriodDay   Period = "day"
	// PeriodNone accepts any strictly increasing sequence of dates
	PeriodNone Period = "none"
)

// ParsePeriod validates a period name
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodMonth, PeriodWeek, PeriodDay, PeriodNone:
		return p, nil
	case "":
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Next returns t advanced by one period. For PeriodNone it returns t.
func (p Period) Next(t time.Time) time.Time {
	switch p {
	case PeriodMonth:
		return t.AddDate(0, 1, 0)
	case PeriodWeek:
		return t.AddDate(0, 0, 7)
	case PeriodDay:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// Consecutive reports whether next is exactly one period after prev
func (p Period) Consecutive(prev, next time.Time) bool {
	if p == PeriodNone {
		return next.After(prev)
	}
	return p.Next(prev).Equal(next)
}
