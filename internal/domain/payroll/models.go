package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"hrpay/internal/domain/catalog"
)

type PerceptionInput struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// PerceptionLine keeps Taxable + Exempt == Gross exactly.
type PerceptionLine struct {
	Code    string          `json:"code"`
	Gross   decimal.Decimal `json:"grossAmount"`
	Taxable decimal.Decimal `json:"taxableAmount"`
	Exempt  decimal.Decimal `json:"exemptAmount"`
}

type DeductionLine struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
}

type Request struct {
	EmployeeID  string
	Period      Period
	PaymentDate time.Time
	Perceptions []PerceptionInput
	Deductions  []DeductionLine
	// BaseSalary is the daily wage base for social contributions.
	BaseSalary   decimal.Decimal
	RiskClass    string
	Jurisdiction string
	// DaysWorked overrides the period length when absences reduce it; zero means the full period.
	DaysWorked int
}

// CalculationDate is the date reference data is resolved for.
func (r Request) CalculationDate() time.Time {
	if !r.PaymentDate.IsZero() {
		return dateOnly(r.PaymentDate)
	}
	return r.Period.End
}

func (r Request) EffectiveDays() int {
	if r.DaysWorked > 0 {
		return r.DaysWorked
	}
	return r.Period.DaysWorked
}

type IncomeTax struct {
	TaxableIncome decimal.Decimal `json:"taxableIncome"`
	GrossTax      decimal.Decimal `json:"grossTax"`
	Subsidy       decimal.Decimal `json:"subsidy"`
	NetTax        decimal.Decimal `json:"netTax"`
	// SubsidyPaid is the credit in excess of the tax, paid to the employee.
	SubsidyPaid decimal.Decimal `json:"subsidyPaid"`
}

type ContributionLine struct {
	Code      string          `json:"code"`
	Name      string          `json:"name,omitempty"`
	Party     catalog.Party   `json:"party"`
	DailyBase decimal.Decimal `json:"dailyBase"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
}

type Contributions struct {
	BaseSalary    decimal.Decimal    `json:"baseSalary"`
	Days          int                `json:"days"`
	RiskClass     string             `json:"riskClass"`
	Employee      []ContributionLine `json:"employee"`
	Employer      []ContributionLine `json:"employer"`
	EmployeeTotal decimal.Decimal    `json:"employeeTotal"`
	EmployerTotal decimal.Decimal    `json:"employerTotal"`
}

type PayrollTax struct {
	Jurisdiction string          `json:"jurisdiction"`
	Base         decimal.Decimal `json:"base"`
	Amount       decimal.Decimal `json:"amount"`
}

type Result struct {
	EmployeeID       string           `json:"employeeId"`
	Period           Period           `json:"period"`
	Stage            Stage            `json:"stage"`
	Perceptions      []PerceptionLine `json:"perceptions"`
	Deductions       []DeductionLine  `json:"deductions"`
	TotalPerceptions decimal.Decimal  `json:"totalPerceptions"`
	TotalTaxable     decimal.Decimal  `json:"totalTaxable"`
	TotalExempt      decimal.Decimal  `json:"totalExempt"`
	TotalDeductions  decimal.Decimal  `json:"totalDeductions"`
	SubsidyPaid      decimal.Decimal  `json:"subsidyPaid"`
	NetPay           decimal.Decimal  `json:"netPay"`
	IncomeTax        IncomeTax        `json:"incomeTax"`
	Contributions    Contributions    `json:"contributions"`
	PayrollTax       PayrollTax       `json:"payrollTax"`
	// EmployerCost is employer contributions plus payroll tax; it never reaches net pay.
	EmployerCost decimal.Decimal `json:"employerCost"`
}
