package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Snapshot is every piece of reference data one calculation needs, resolved up front
// so the calculators never perform lookups.
type Snapshot struct {
	Date          time.Time
	PeriodType    PeriodType
	ReferenceUnit ReferenceUnit
	Perceptions   PerceptionCatalog
	IncomeTax     BracketTable
	// Subsidy is nil when no employment-subsidy table is in force.
	Subsidy       *BracketTable
	Contributions ContributionSchedule
	// PayrollTax is nil when the jurisdiction levies no payroll tax.
	PayrollTax *BracketTable
}

func Resolve(ctx context.Context, store Store, date time.Time, periodType PeriodType, jurisdiction string) (Snapshot, error) {
	if !periodType.Valid() {
		return Snapshot{}, fmt.Errorf("%w: unknown period type %q", ErrInvalidData, periodType)
	}
	snap := Snapshot{Date: date, PeriodType: periodType}

	var err error
	if snap.ReferenceUnit, err = store.ReferenceUnit(ctx, date); err != nil {
		return Snapshot{}, err
	}
	if snap.Perceptions, err = store.Perceptions(ctx, date); err != nil {
		return Snapshot{}, err
	}
	if snap.IncomeTax, err = store.TaxTable(ctx, KindIncomeTax, string(periodType), date); err != nil {
		return Snapshot{}, err
	}
	if snap.Contributions, err = store.ContributionSchedule(ctx, date); err != nil {
		return Snapshot{}, err
	}

	subsidy, err := store.TaxTable(ctx, KindSubsidy, string(periodType), date)
	switch {
	case err == nil:
		snap.Subsidy = &subsidy
	case !errors.Is(err, ErrNotFound):
		return Snapshot{}, err
	}

	if jurisdiction != "" {
		payrollTax, err := store.TaxTable(ctx, KindPayrollTax, jurisdiction, date)
		switch {
		case err == nil:
			snap.PayrollTax = &payrollTax
		case !errors.Is(err, ErrNotFound):
			return Snapshot{}, err
		}
	}
	return snap, nil
}
