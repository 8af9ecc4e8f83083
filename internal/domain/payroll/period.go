package payroll

import (
	"fmt"
	"time"

	"hrpay/internal/domain/catalog"
)

// MaxPeriodDays bounds a single pay period; an annual settlement is the longest.
const MaxPeriodDays = 366

// Period is immutable once built; DaysWorked counts both ends.
type Period struct {
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	DaysWorked int                `json:"daysWorked"`
	Type       catalog.PeriodType `json:"periodType"`
}

func NewPeriod(start, end time.Time) (Period, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if start.IsZero() || end.IsZero() {
		return Period{}, fmt.Errorf("%w: start and end dates are required", ErrInvalidPeriod)
	}
	if end.Before(start) {
		return Period{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidPeriod, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if end.After(start.AddDate(0, 0, MaxPeriodDays-1)) {
		return Period{}, fmt.Errorf("%w: period %s..%s is longer than %d days", ErrInvalidPeriod, start.Format("2006-01-02"), end.Format("2006-01-02"), MaxPeriodDays)
	}
	days := int(end.Sub(start).Hours()/24) + 1
	return Period{Start: start, End: end, DaysWorked: days, Type: periodTypeFor(days)}, nil
}

func periodTypeFor(days int) catalog.PeriodType {
	switch {
	case days <= 7:
		return catalog.PeriodWeekly
	case days <= 16:
		return catalog.PeriodBiweekly
	default:
		return catalog.PeriodMonthly
	}
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
