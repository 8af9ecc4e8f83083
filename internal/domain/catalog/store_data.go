package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Numerics are read as text and parsed so no value passes through float64.

func (s *PGStore) ReferenceUnit(ctx context.Context, date time.Time) (ReferenceUnit, error) {
	var unit ReferenceUnit
	var daily string
	err := s.DB.QueryRow(ctx, `
    SELECT effective_from, effective_to, daily_value::text
    FROM reference_units
    WHERE effective_from <= $1 AND (effective_to IS NULL OR effective_to >= $1)
    ORDER BY effective_from DESC
    LIMIT 1
  `, date).Scan(&unit.EffectiveFrom, &unit.EffectiveTo, &daily)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReferenceUnit{}, fmt.Errorf("reference unit on %s: %w", date.Format("2006-01-02"), ErrNotFound)
	}
	if err != nil {
		return ReferenceUnit{}, err
	}
	if unit.DailyValue, err = decimal.NewFromString(daily); err != nil {
		return ReferenceUnit{}, fmt.Errorf("%w: reference unit value %q", ErrInvalidData, daily)
	}
	return unit, nil
}

func (s *PGStore) TaxTable(ctx context.Context, kind TableKind, key string, date time.Time) (BracketTable, error) {
	table := BracketTable{Kind: kind, Key: key}
	var tableID string
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, effective_from, effective_to
    FROM tax_tables
    WHERE kind = $1 AND key = $2
      AND effective_from <= $3 AND (effective_to IS NULL OR effective_to >= $3)
    ORDER BY effective_from DESC
    LIMIT 1
  `, string(kind), key, date).Scan(&tableID, &table.EffectiveFrom, &table.EffectiveTo)
	if errors.Is(err, pgx.ErrNoRows) {
		return BracketTable{}, fmt.Errorf("%s table %q on %s: %w", kind, key, date.Format("2006-01-02"), ErrNotFound)
	}
	if err != nil {
		return BracketTable{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT lower_bound::text, upper_bound::text, rate::text, cumulative_base::text
    FROM tax_table_rows
    WHERE table_id = $1
    ORDER BY lower_bound
  `, tableID)
	if err != nil {
		return BracketTable{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var lower, rate, base string
		var upper *string
		if err := rows.Scan(&lower, &upper, &rate, &base); err != nil {
			return BracketTable{}, err
		}
		p := &fieldParser{}
		row := Bracket{
			LowerBound:     p.dec("lower_bound", lower),
			Rate:           p.dec("rate", rate),
			CumulativeBase: p.dec("cumulative_base", base),
		}
		if upper != nil {
			row.UpperBound = p.optDec("upper_bound", *upper)
		}
		if p.err != nil {
			return BracketTable{}, p.err
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return BracketTable{}, err
	}
	if err := table.Validate(); err != nil {
		return BracketTable{}, err
	}
	return table, nil
}

func (s *PGStore) Perceptions(ctx context.Context, date time.Time) (PerceptionCatalog, error) {
	c := PerceptionCatalog{Concepts: map[string]PerceptionConcept{}}
	err := s.DB.QueryRow(ctx, `
    SELECT effective_from, effective_to
    FROM perception_catalogs
    WHERE effective_from <= $1 AND (effective_to IS NULL OR effective_to >= $1)
    ORDER BY effective_from DESC
    LIMIT 1
  `, date).Scan(&c.EffectiveFrom, &c.EffectiveTo)
	if errors.Is(err, pgx.ErrNoRows) {
		return PerceptionCatalog{}, fmt.Errorf("perception catalog on %s: %w", date.Format("2006-01-02"), ErrNotFound)
	}
	if err != nil {
		return PerceptionCatalog{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT code, name, treatment, exempt_units::text, exempt_ratio::text
    FROM perception_concepts
    WHERE catalog_effective_from = $1
  `, c.EffectiveFrom)
	if err != nil {
		return PerceptionCatalog{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var concept PerceptionConcept
		var treatment, units, ratio string
		if err := rows.Scan(&concept.Code, &concept.Name, &treatment, &units, &ratio); err != nil {
			return PerceptionCatalog{}, err
		}
		p := &fieldParser{}
		concept.Treatment = Treatment(treatment)
		concept.ExemptUnits = p.dec("exempt_units", units)
		concept.ExemptRatio = p.dec("exempt_ratio", ratio)
		if p.err != nil {
			return PerceptionCatalog{}, p.err
		}
		c.Concepts[concept.Code] = concept
	}
	if err := rows.Err(); err != nil {
		return PerceptionCatalog{}, err
	}
	if err := c.Validate(); err != nil {
		return PerceptionCatalog{}, err
	}
	return c, nil
}

func (s *PGStore) ContributionSchedule(ctx context.Context, date time.Time) (ContributionSchedule, error) {
	var schedule ContributionSchedule
	var scheduleID, ceiling string
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, effective_from, effective_to, base_ceiling_units::text
    FROM contribution_schedules
    WHERE effective_from <= $1 AND (effective_to IS NULL OR effective_to >= $1)
    ORDER BY effective_from DESC
    LIMIT 1
  `, date).Scan(&scheduleID, &schedule.EffectiveFrom, &schedule.EffectiveTo, &ceiling)
	if errors.Is(err, pgx.ErrNoRows) {
		return ContributionSchedule{}, fmt.Errorf("contribution schedule on %s: %w", date.Format("2006-01-02"), ErrNotFound)
	}
	if err != nil {
		return ContributionSchedule{}, err
	}
	p := &fieldParser{}
	schedule.BaseCeilingUnits = p.dec("base_ceiling_units", ceiling)

	rows, err := s.DB.Query(ctx, `
    SELECT code, name, party, rate::text, base_kind,
           excess_over_units::text, floor_units::text, ceiling_units::text,
           COALESCE(risk_rates_json, '{}'::jsonb)
    FROM contribution_categories
    WHERE schedule_id = $1
    ORDER BY ordinal
  `, scheduleID)
	if err != nil {
		return ContributionSchedule{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var c ContributionCategory
		var party, rate, base, excess, floor, ceil string
		var riskJSON []byte
		if err := rows.Scan(&c.Code, &c.Name, &party, &rate, &base, &excess, &floor, &ceil, &riskJSON); err != nil {
			return ContributionSchedule{}, err
		}
		c.Party = Party(party)
		c.Base = BaseKind(base)
		c.Rate = p.dec("rate", rate)
		c.ExcessOverUnits = p.dec("excess_over_units", excess)
		c.FloorUnits = p.dec("floor_units", floor)
		c.CeilingUnits = p.dec("ceiling_units", ceil)
		var risk map[string]string
		if err := json.Unmarshal(riskJSON, &risk); err != nil {
			return ContributionSchedule{}, fmt.Errorf("%w: risk rates for %s: %v", ErrInvalidData, c.Code, err)
		}
		if len(risk) > 0 {
			c.RiskRates = make(map[string]decimal.Decimal, len(risk))
			for class, value := range risk {
				c.RiskRates[class] = p.dec("risk_rates", value)
			}
		}
		schedule.Categories = append(schedule.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return ContributionSchedule{}, err
	}
	if p.err != nil {
		return ContributionSchedule{}, p.err
	}
	if err := schedule.Validate(); err != nil {
		return ContributionSchedule{}, err
	}
	return schedule, nil
}
