package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/money"
)

// ComputeIncomeTax applies the progressive table to periodized taxable income.
// The subsidy table uses the same bracket selection; a nil table means no subsidy.
func ComputeIncomeTax(taxable decimal.Decimal, table catalog.BracketTable, subsidy *catalog.BracketTable) (IncomeTax, error) {
	if err := money.Validate(taxable); err != nil {
		return IncomeTax{}, fmt.Errorf("taxable income: %w", err)
	}
	result := IncomeTax{
		TaxableIncome: taxable,
		GrossTax:      bracketAmount(table, taxable),
		Subsidy:       decimal.Zero,
	}
	if subsidy != nil {
		result.Subsidy = bracketAmount(*subsidy, taxable)
	}
	result.NetTax = money.Max(decimal.Zero, result.GrossTax.Sub(result.Subsidy))
	result.SubsidyPaid = money.Max(decimal.Zero, result.Subsidy.Sub(result.GrossTax))
	return result, nil
}

// bracketAmount is cumulativeBase + (x - lowerBound) x rate, rounded once.
func bracketAmount(table catalog.BracketTable, x decimal.Decimal) decimal.Decimal {
	row, ok := table.Select(x)
	if !ok {
		return decimal.Zero
	}
	return money.Round(row.CumulativeBase.Add(x.Sub(row.LowerBound).Mul(row.Rate)))
}
