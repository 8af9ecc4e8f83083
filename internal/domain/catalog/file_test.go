package catalog

import (
	"context"
	"errors"
	"testing"
)

const testCatalog = `
[[reference_units]]
effective_from = "2025-02-01"
daily_value = "113.14"

[[tables]]
kind = "income_tax"
key = "monthly"
effective_from = "2025-01-01"
rows = [
  { lower = "0.01", upper = "746.05", rate = "0.0192", base = "0" },
  { lower = "746.05", rate = "0.064", base = "14.32" },
]

[[tables]]
kind = "payroll_tax"
key = "CDMX"
effective_from = "2025-01-01"
rows = [ { lower = "0", rate = "0.04" } ]

[[perceptions]]
effective_from = "2025-01-01"

  [[perceptions.concepts]]
  code = "P003"
  name = "Overtime"
  treatment = "capped"
  exempt_units = "5"
  exempt_ratio = "0.5"

[[schedules]]
effective_from = "2025-01-01"
base_ceiling_units = "25"

  [[schedules.categories]]
  code = "WORK_RISK"
  party = "employer"
  risk_rates = { I = "0.0054355", V = "0.0758875" }
`

func TestDecodeBuildsStore(t *testing.T) {
	store, err := Decode(testCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	date := day(2025, 3, 15)

	unit, err := store.ReferenceUnit(ctx, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unit.DailyValue.String() != "113.14" {
		t.Fatalf("expected 113.14, got %s", unit.DailyValue)
	}

	table, err := store.TaxTable(ctx, KindIncomeTax, "monthly", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 2 || table.Rows[1].UpperBound != nil {
		t.Fatalf("expected two rows with unbounded last row, got %+v", table.Rows)
	}

	perceptions, err := store.Perceptions(ctx, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	concept, ok := perceptions.Lookup("P003")
	if !ok || concept.Treatment != TreatmentCapped || concept.ExemptRatio.String() != "0.5" {
		t.Fatalf("unexpected concept %+v", concept)
	}

	schedule, err := store.ContributionSchedule(ctx, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedule.Categories) != 1 || !schedule.Categories[0].RiskBased() {
		t.Fatalf("expected one risk based category, got %+v", schedule.Categories)
	}
	if schedule.Categories[0].Base != BaseSalary {
		t.Fatalf("expected salary base default, got %s", schedule.Categories[0].Base)
	}
}

func TestDecodeRejectsBadDecimals(t *testing.T) {
	_, err := Decode(`
[[reference_units]]
effective_from = "2025-02-01"
daily_value = "abc"
`)
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestResolveSnapshot(t *testing.T) {
	store, err := Decode(testCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	snap, err := Resolve(ctx, store, day(2025, 3, 15), PeriodMonthly, "CDMX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.PayrollTax == nil {
		t.Fatal("expected payroll tax table for CDMX")
	}
	if snap.Subsidy != nil {
		t.Fatal("expected no subsidy table")
	}

	snap, err = Resolve(ctx, store, day(2025, 3, 15), PeriodMonthly, "ZZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.PayrollTax != nil {
		t.Fatal("expected unregistered jurisdiction to resolve without a table")
	}

	if _, err := Resolve(ctx, store, day(2025, 3, 15), PeriodWeekly, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing weekly table, got %v", err)
	}
	if _, err := Resolve(ctx, store, day(2025, 1, 15), PeriodMonthly, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before reference unit, got %v", err)
	}
}

func TestDecodeRejectsImpossibleCatalogValues(t *testing.T) {
	const header = `
[[reference_units]]
effective_from = "2025-01-01"
daily_value = "100"
`
	tests := []struct {
		name string
		doc  string
	}{
		{"negative exempt units", `
[[perceptions]]
effective_from = "2025-01-01"
  [[perceptions.concepts]]
  code = "BONUS"
  treatment = "capped"
  exempt_units = "-10"
`},
		{"ratio above one", `
[[perceptions]]
effective_from = "2025-01-01"
  [[perceptions.concepts]]
  code = "OVERTIME"
  treatment = "capped"
  exempt_units = "5"
  exempt_ratio = "1.5"
`},
		{"capped without ceiling", `
[[perceptions]]
effective_from = "2025-01-01"
  [[perceptions.concepts]]
  code = "BONUS"
  treatment = "capped"
`},
		{"unknown treatment", `
[[perceptions]]
effective_from = "2025-01-01"
  [[perceptions.concepts]]
  code = "BONUS"
  treatment = "partial"
`},
		{"negative rate", `
[[schedules]]
effective_from = "2025-01-01"
  [[schedules.categories]]
  code = "HEALTH"
  party = "employee"
  rate = "-0.01"
`},
		{"negative risk rate", `
[[schedules]]
effective_from = "2025-01-01"
  [[schedules.categories]]
  code = "WORK_RISK"
  party = "employer"
  risk_rates = { I = "-0.005" }
`},
		{"negative ceiling units", `
[[schedules]]
effective_from = "2025-01-01"
  [[schedules.categories]]
  code = "DL_EE"
  party = "employee"
  rate = "0.00625"
  ceiling_units = "-25"
`},
		{"negative base ceiling", `
[[schedules]]
effective_from = "2025-01-01"
base_ceiling_units = "-1"
`},
		{"unknown party", `
[[schedules]]
effective_from = "2025-01-01"
  [[schedules.categories]]
  code = "HEALTH"
  party = "union"
  rate = "0.01"
`},
		{"unknown base", `
[[schedules]]
effective_from = "2025-01-01"
  [[schedules.categories]]
  code = "HEALTH"
  party = "employee"
  rate = "0.01"
  base = "hours"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(header + tt.doc); !errors.Is(err, ErrInvalidData) {
				t.Fatalf("expected ErrInvalidData, got %v", err)
			}
		})
	}
}

func TestNewMemoryStoreRejectsMismatchedConceptKey(t *testing.T) {
	data := Data{
		Perceptions: []PerceptionCatalog{{
			EffectiveFrom: day(2025, 1, 1),
			Concepts: map[string]PerceptionConcept{
				"BONUS": {Code: "SALARY", Treatment: TreatmentTaxable},
			},
		}},
	}
	if _, err := NewMemoryStore(data); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}
