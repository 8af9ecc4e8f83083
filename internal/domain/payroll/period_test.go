package payroll

import (
	"errors"
	"testing"
	"time"

	"hrpay/internal/domain/catalog"
)

func TestNewPeriodDerivesDaysAndType(t *testing.T) {
	cases := []struct {
		start, end time.Time
		days       int
		kind       catalog.PeriodType
	}{
		{date(2025, 3, 3), date(2025, 3, 9), 7, catalog.PeriodWeekly},
		{date(2025, 3, 1), date(2025, 3, 15), 15, catalog.PeriodBiweekly},
		{date(2025, 3, 16), date(2025, 3, 31), 16, catalog.PeriodBiweekly},
		{date(2025, 2, 1), date(2025, 2, 28), 28, catalog.PeriodMonthly},
		{date(2025, 3, 1), date(2025, 3, 1), 1, catalog.PeriodWeekly},
	}
	for _, tc := range cases {
		p, err := NewPeriod(tc.start, tc.end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.DaysWorked != tc.days {
			t.Fatalf("expected %d days for %s..%s, got %d", tc.days, tc.start.Format("2006-01-02"), tc.end.Format("2006-01-02"), p.DaysWorked)
		}
		if p.Type != tc.kind {
			t.Fatalf("expected %s, got %s", tc.kind, p.Type)
		}
	}
}

func TestNewPeriodIgnoresTimeOfDay(t *testing.T) {
	p, err := NewPeriod(time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC), time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.DaysWorked != 2 {
		t.Fatalf("expected 2 days, got %d", p.DaysWorked)
	}
}

func TestNewPeriodInvalid(t *testing.T) {
	if _, err := NewPeriod(date(2025, 3, 2), date(2025, 3, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := NewPeriod(time.Time{}, date(2025, 3, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod for zero start, got %v", err)
	}
}

func TestNewPeriodBoundsLength(t *testing.T) {
	p, err := NewPeriod(date(2024, 1, 1), date(2024, 12, 31))
	if err != nil {
		t.Fatalf("unexpected error for a leap year: %v", err)
	}
	if p.DaysWorked != MaxPeriodDays {
		t.Fatalf("expected %d days, got %d", MaxPeriodDays, p.DaysWorked)
	}
	if _, err := NewPeriod(date(2024, 1, 1), date(2025, 1, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod past the bound, got %v", err)
	}
	// a 400 year range would saturate a time.Duration
	if _, err := NewPeriod(date(1700, 1, 1), date(2100, 1, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod for a multi-century range, got %v", err)
	}
}
