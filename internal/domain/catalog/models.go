package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReferenceUnit struct {
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	EffectiveTo   *time.Time      `json:"effectiveTo,omitempty"`
	DailyValue    decimal.Decimal `json:"dailyValue"`
}

func (u ReferenceUnit) Effective() (time.Time, *time.Time) { return u.EffectiveFrom, u.EffectiveTo }

// Times returns n reference units expressed in currency.
func (u ReferenceUnit) Times(n decimal.Decimal) decimal.Decimal {
	return u.DailyValue.Mul(n)
}

// Bracket is one row of a bracket table. A nil UpperBound means unbounded.
// Subsidy tables reuse the shape: the credit lives in CumulativeBase and Rate is zero.
type Bracket struct {
	LowerBound     decimal.Decimal  `json:"lowerBound"`
	UpperBound     *decimal.Decimal `json:"upperBound,omitempty"`
	Rate           decimal.Decimal  `json:"rate"`
	CumulativeBase decimal.Decimal  `json:"cumulativeBase"`
}

// Contains reports lowerBound <= x < upperBound.
func (b Bracket) Contains(x decimal.Decimal) bool {
	if x.LessThan(b.LowerBound) {
		return false
	}
	return b.UpperBound == nil || x.LessThan(*b.UpperBound)
}

type BracketTable struct {
	Kind          TableKind  `json:"kind"`
	Key           string     `json:"key"`
	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
	Rows          []Bracket  `json:"rows"`
}

func (t BracketTable) Effective() (time.Time, *time.Time) { return t.EffectiveFrom, t.EffectiveTo }

type PerceptionConcept struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Treatment Treatment `json:"treatment"`
	// ExemptUnits is the exemption ceiling in reference units (capped concepts).
	ExemptUnits decimal.Decimal `json:"exemptUnits"`
	// ExemptRatio is the exempt share of the gross amount before the ceiling; zero means all of it.
	ExemptRatio decimal.Decimal `json:"exemptRatio"`
}

type PerceptionCatalog struct {
	EffectiveFrom time.Time                    `json:"effectiveFrom"`
	EffectiveTo   *time.Time                   `json:"effectiveTo,omitempty"`
	Concepts      map[string]PerceptionConcept `json:"concepts"`
}

func (c PerceptionCatalog) Effective() (time.Time, *time.Time) { return c.EffectiveFrom, c.EffectiveTo }

func (c PerceptionCatalog) Lookup(code string) (PerceptionConcept, bool) {
	concept, ok := c.Concepts[code]
	return concept, ok
}

type ContributionCategory struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Party Party           `json:"party"`
	Rate  decimal.Decimal `json:"rate"`
	// RiskRates replaces Rate by risk class; only the employer risk premium sets it.
	RiskRates map[string]decimal.Decimal `json:"riskRates,omitempty"`
	Base      BaseKind                   `json:"base"`
	// ExcessOverUnits makes the category apply only to the part of the base above N reference units.
	ExcessOverUnits decimal.Decimal `json:"excessOverUnits"`
	FloorUnits      decimal.Decimal `json:"floorUnits"`
	CeilingUnits    decimal.Decimal `json:"ceilingUnits"`
}

func (c ContributionCategory) RiskBased() bool { return len(c.RiskRates) > 0 }

type ContributionSchedule struct {
	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
	// BaseCeilingUnits caps the base salary figure before any category is applied.
	BaseCeilingUnits decimal.Decimal        `json:"baseCeilingUnits"`
	Categories       []ContributionCategory `json:"categories"`
}

func (s ContributionSchedule) Effective() (time.Time, *time.Time) { return s.EffectiveFrom, s.EffectiveTo }
