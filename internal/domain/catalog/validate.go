package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func (t Treatment) Valid() bool {
	switch t {
	case TreatmentTaxable, TreatmentExempt, TreatmentCapped:
		return true
	}
	return false
}

func (p Party) Valid() bool {
	return p == PartyEmployee || p == PartyEmployer
}

func (b BaseKind) Valid() bool {
	return b == BaseSalary || b == BaseReferenceUnit
}

// Validate rejects concepts whose split could exempt more than the gross amount.
func (c PerceptionConcept) Validate() error {
	if !c.Treatment.Valid() {
		return fmt.Errorf("%w: perception %q has treatment %q", ErrInvalidData, c.Code, c.Treatment)
	}
	if c.ExemptUnits.IsNegative() {
		return fmt.Errorf("%w: perception %q exempt units must not be negative", ErrInvalidData, c.Code)
	}
	if c.ExemptRatio.IsNegative() || c.ExemptRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: perception %q exempt ratio must be between 0 and 1", ErrInvalidData, c.Code)
	}
	if c.Treatment == TreatmentCapped && !c.ExemptUnits.IsPositive() {
		return fmt.Errorf("%w: capped perception %q needs a positive exemption ceiling", ErrInvalidData, c.Code)
	}
	return nil
}

func (c PerceptionCatalog) Validate() error {
	for code, concept := range c.Concepts {
		if code != concept.Code {
			return fmt.Errorf("%w: perception keyed %q carries code %q", ErrInvalidData, code, concept.Code)
		}
		if err := concept.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c ContributionCategory) Validate() error {
	if !c.Party.Valid() {
		return fmt.Errorf("%w: category %q has party %q", ErrInvalidData, c.Code, c.Party)
	}
	if !c.Base.Valid() {
		return fmt.Errorf("%w: category %q has base %q", ErrInvalidData, c.Code, c.Base)
	}
	if c.Rate.IsNegative() {
		return fmt.Errorf("%w: category %q rate must not be negative", ErrInvalidData, c.Code)
	}
	for class, rate := range c.RiskRates {
		if rate.IsNegative() {
			return fmt.Errorf("%w: category %q risk class %s rate must not be negative", ErrInvalidData, c.Code, class)
		}
	}
	units := map[string]decimal.Decimal{
		"excess_over_units": c.ExcessOverUnits,
		"floor_units":       c.FloorUnits,
		"ceiling_units":     c.CeilingUnits,
	}
	for field, value := range units {
		if value.IsNegative() {
			return fmt.Errorf("%w: category %q %s must not be negative", ErrInvalidData, c.Code, field)
		}
	}
	if c.CeilingUnits.IsPositive() && c.FloorUnits.GreaterThan(c.CeilingUnits) {
		return fmt.Errorf("%w: category %q floor exceeds ceiling", ErrInvalidData, c.Code)
	}
	return nil
}

func (s ContributionSchedule) Validate() error {
	if s.BaseCeilingUnits.IsNegative() {
		return fmt.Errorf("%w: schedule from %s base ceiling must not be negative", ErrInvalidData, s.EffectiveFrom.Format("2006-01-02"))
	}
	for _, category := range s.Categories {
		if err := category.Validate(); err != nil {
			return err
		}
	}
	return nil
}
