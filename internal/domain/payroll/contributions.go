package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/money"
)

// CapBaseSalary limits the daily base to the schedule's overall ceiling.
func CapBaseSalary(schedule catalog.ContributionSchedule, unit catalog.ReferenceUnit, base decimal.Decimal) decimal.Decimal {
	if !schedule.BaseCeilingUnits.IsPositive() {
		return base
	}
	return money.Min(base, unit.Times(schedule.BaseCeilingUnits))
}

// ComputeContributions itemizes employee and employer social contributions.
// Each category applies its own floor, ceiling and excess threshold to the capped
// base; the daily amount is multiplied by days and rounded per category.
func ComputeContributions(schedule catalog.ContributionSchedule, unit catalog.ReferenceUnit, baseSalary decimal.Decimal, riskClass string, days int) (Contributions, error) {
	if err := money.Validate(baseSalary); err != nil {
		return Contributions{}, fmt.Errorf("base salary: %w", err)
	}
	if days < 0 {
		return Contributions{}, fmt.Errorf("%w: negative days worked %d", ErrInvalidAmount, days)
	}

	capped := CapBaseSalary(schedule, unit, baseSalary)
	result := Contributions{
		BaseSalary: capped,
		Days:       days,
		RiskClass:  riskClass,
	}
	dayCount := decimal.NewFromInt(int64(days))

	for _, category := range schedule.Categories {
		rate := category.Rate
		if category.RiskBased() {
			r, ok := category.RiskRates[riskClass]
			if !ok {
				return Contributions{}, fmt.Errorf("%w: %q for %s", ErrInvalidRiskClass, riskClass, category.Code)
			}
			rate = r
		}

		daily := categoryBase(category, unit, capped)
		line := ContributionLine{
			Code:      category.Code,
			Name:      category.Name,
			Party:     category.Party,
			DailyBase: daily,
			Rate:      rate,
			Amount:    money.Round(daily.Mul(rate).Mul(dayCount)),
		}
		switch category.Party {
		case catalog.PartyEmployee:
			result.Employee = append(result.Employee, line)
		case catalog.PartyEmployer:
			result.Employer = append(result.Employer, line)
		default:
			return Contributions{}, fmt.Errorf("%w: category %s has party %q", catalog.ErrInvalidData, category.Code, category.Party)
		}
	}

	result.EmployeeTotal = sumContributions(result.Employee)
	result.EmployerTotal = sumContributions(result.Employer)
	return result, nil
}

func categoryBase(category catalog.ContributionCategory, unit catalog.ReferenceUnit, capped decimal.Decimal) decimal.Decimal {
	base := capped
	if category.Base == catalog.BaseReferenceUnit {
		base = unit.DailyValue
	}
	if category.FloorUnits.IsPositive() {
		base = money.Max(base, unit.Times(category.FloorUnits))
	}
	if category.CeilingUnits.IsPositive() {
		base = money.Min(base, unit.Times(category.CeilingUnits))
	}
	if category.ExcessOverUnits.IsPositive() {
		base = money.Max(decimal.Zero, base.Sub(unit.Times(category.ExcessOverUnits)))
	}
	return base
}

func sumContributions(lines []ContributionLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	return total
}
