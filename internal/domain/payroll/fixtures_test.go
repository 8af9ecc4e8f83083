package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"hrpay/internal/domain/catalog"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// A reference unit of 100 keeps the expected figures readable.
func testUnit() catalog.ReferenceUnit {
	return catalog.ReferenceUnit{EffectiveFrom: date(2025, 1, 1), DailyValue: dec("100")}
}

func testPerceptions() catalog.PerceptionCatalog {
	return catalog.PerceptionCatalog{
		EffectiveFrom: date(2025, 1, 1),
		Concepts: map[string]catalog.PerceptionConcept{
			"SALARY":   {Code: "SALARY", Treatment: catalog.TreatmentTaxable},
			"BONUS":    {Code: "BONUS", Treatment: catalog.TreatmentCapped, ExemptUnits: dec("30")},
			"OVERTIME": {Code: "OVERTIME", Treatment: catalog.TreatmentCapped, ExemptUnits: dec("5"), ExemptRatio: dec("0.5")},
			"REIMB":    {Code: "REIMB", Treatment: catalog.TreatmentExempt},
		},
	}
}

func testIncomeTax() catalog.BracketTable {
	return catalog.BracketTable{
		Kind:          catalog.KindIncomeTax,
		Key:           string(catalog.PeriodMonthly),
		EffectiveFrom: date(2025, 1, 1),
		Rows: []catalog.Bracket{
			{LowerBound: dec("0.01"), UpperBound: decPtr("1000"), Rate: dec("0.02"), CumulativeBase: dec("0")},
			{LowerBound: dec("1000"), UpperBound: decPtr("10000"), Rate: dec("0.10"), CumulativeBase: dec("20")},
			{LowerBound: dec("10000"), Rate: dec("0.30"), CumulativeBase: dec("920")},
		},
	}
}

func testSubsidy() *catalog.BracketTable {
	return &catalog.BracketTable{
		Kind:          catalog.KindSubsidy,
		Key:           string(catalog.PeriodMonthly),
		EffectiveFrom: date(2025, 1, 1),
		Rows: []catalog.Bracket{
			{LowerBound: dec("0"), UpperBound: decPtr("3000"), CumulativeBase: dec("200")},
			{LowerBound: dec("3000"), CumulativeBase: dec("0")},
		},
	}
}

func testSchedule() catalog.ContributionSchedule {
	return catalog.ContributionSchedule{
		EffectiveFrom:    date(2025, 1, 1),
		BaseCeilingUnits: dec("25"),
		Categories: []catalog.ContributionCategory{
			{Code: "FIXED", Party: catalog.PartyEmployer, Rate: dec("0.20"), Base: catalog.BaseReferenceUnit},
			{Code: "EXCESS_EE", Party: catalog.PartyEmployee, Rate: dec("0.004"), Base: catalog.BaseSalary, ExcessOverUnits: dec("3")},
			{Code: "CASH_EE", Party: catalog.PartyEmployee, Rate: dec("0.0025"), Base: catalog.BaseSalary},
			{Code: "DL_EE", Party: catalog.PartyEmployee, Rate: dec("0.00625"), Base: catalog.BaseSalary, CeilingUnits: dec("10")},
			{Code: "RISK", Party: catalog.PartyEmployer, Base: catalog.BaseSalary, RiskRates: map[string]decimal.Decimal{
				catalog.RiskClassI: dec("0.005"),
				catalog.RiskClassV: dec("0.075"),
			}},
			{Code: "HOUSING", Party: catalog.PartyEmployer, Rate: dec("0.05"), Base: catalog.BaseSalary},
		},
	}
}

func testPayrollTax() *catalog.BracketTable {
	return &catalog.BracketTable{
		Kind:          catalog.KindPayrollTax,
		Key:           "CDMX",
		EffectiveFrom: date(2025, 1, 1),
		Rows:          []catalog.Bracket{{LowerBound: dec("0"), Rate: dec("0.03"), CumulativeBase: dec("0")}},
	}
}

func testSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Date:          date(2025, 3, 31),
		PeriodType:    catalog.PeriodMonthly,
		ReferenceUnit: testUnit(),
		Perceptions:   testPerceptions(),
		IncomeTax:     testIncomeTax(),
		Subsidy:       testSubsidy(),
		Contributions: testSchedule(),
		PayrollTax:    testPayrollTax(),
	}
}

func testData() catalog.Data {
	return catalog.Data{
		ReferenceUnits: []catalog.ReferenceUnit{testUnit()},
		Tables:         []catalog.BracketTable{testIncomeTax(), *testSubsidy(), *testPayrollTax()},
		Perceptions:    []catalog.PerceptionCatalog{testPerceptions()},
		Schedules:      []catalog.ContributionSchedule{testSchedule()},
	}
}

func marchPeriod() Period {
	p, err := NewPeriod(date(2025, 3, 1), date(2025, 3, 31))
	if err != nil {
		panic(err)
	}
	return p
}
