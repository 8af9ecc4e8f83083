package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/money"
)

// ComputePayrollTax taxes total payroll cost for a jurisdiction. A nil table means
// the jurisdiction levies no payroll tax and the result is zero.
func ComputePayrollTax(jurisdiction string, totalPayroll decimal.Decimal, table *catalog.BracketTable) (PayrollTax, error) {
	if err := money.Validate(totalPayroll); err != nil {
		return PayrollTax{}, fmt.Errorf("payroll tax base: %w", err)
	}
	result := PayrollTax{Jurisdiction: jurisdiction, Base: totalPayroll, Amount: decimal.Zero}
	if table == nil {
		return result, nil
	}
	result.Amount = bracketAmount(*table, totalPayroll)
	return result, nil
}
