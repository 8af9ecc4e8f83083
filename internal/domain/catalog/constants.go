package catalog

type PeriodType string

const (
	PeriodWeekly   PeriodType = "weekly"
	PeriodBiweekly PeriodType = "biweekly"
	PeriodMonthly  PeriodType = "monthly"
)

func (p PeriodType) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly:
		return true
	}
	return false
}

type TableKind string

const (
	KindIncomeTax  TableKind = "income_tax"
	KindSubsidy    TableKind = "subsidy"
	KindPayrollTax TableKind = "payroll_tax"
)

type Treatment string

const (
	TreatmentTaxable Treatment = "taxable"
	TreatmentExempt  Treatment = "exempt"
	TreatmentCapped  Treatment = "capped"
)

type Party string

const (
	PartyEmployee Party = "employee"
	PartyEmployer Party = "employer"
)

type BaseKind string

const (
	BaseSalary        BaseKind = "salary"
	BaseReferenceUnit BaseKind = "reference_unit"
)

const (
	RiskClassI   = "I"
	RiskClassII  = "II"
	RiskClassIII = "III"
	RiskClassIV  = "IV"
	RiskClassV   = "V"
)
