package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/money"
)

// SplitPerception divides a gross perception into taxable and exempt parts.
// Capped concepts exempt min(gross x ratio, N reference units).
func SplitPerception(concepts catalog.PerceptionCatalog, unit catalog.ReferenceUnit, code string, gross decimal.Decimal) (PerceptionLine, error) {
	if err := money.Validate(gross); err != nil {
		return PerceptionLine{}, fmt.Errorf("perception %s: %w", code, err)
	}
	concept, ok := concepts.Lookup(code)
	if !ok {
		return PerceptionLine{}, fmt.Errorf("%w: perception %q", ErrUnknownCatalogCode, code)
	}

	gross = money.Round(gross)
	line := PerceptionLine{Code: code, Gross: gross}
	switch concept.Treatment {
	case catalog.TreatmentExempt:
		line.Exempt = gross
	case catalog.TreatmentCapped:
		exempt := gross
		if concept.ExemptRatio.IsPositive() && concept.ExemptRatio.LessThan(decimal.NewFromInt(1)) {
			exempt = money.Round(gross.Mul(concept.ExemptRatio))
		}
		ceiling := money.Round(unit.Times(concept.ExemptUnits))
		line.Exempt = money.Min(exempt, ceiling)
	case catalog.TreatmentTaxable:
		line.Exempt = decimal.Zero
	default:
		return PerceptionLine{}, fmt.Errorf("%w: perception %q has treatment %q", catalog.ErrInvalidData, code, concept.Treatment)
	}
	line.Taxable = gross.Sub(line.Exempt)
	return line, nil
}

// taxableLine is the fallback for callers that accept unknown codes as fully taxable.
func taxableLine(code string, gross decimal.Decimal) PerceptionLine {
	gross = money.Round(gross)
	return PerceptionLine{Code: code, Gross: gross, Taxable: gross, Exempt: decimal.Zero}
}
