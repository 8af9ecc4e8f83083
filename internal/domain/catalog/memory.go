package catalog

import (
	"context"
	"fmt"
	"time"
)

type Data struct {
	ReferenceUnits []ReferenceUnit
	Tables         []BracketTable
	Perceptions    []PerceptionCatalog
	Schedules      []ContributionSchedule
}

type tableKey struct {
	kind TableKind
	key  string
}

// MemoryStore serves an in-process catalog snapshot. It is immutable after construction.
type MemoryStore struct {
	units       *Index[ReferenceUnit]
	tables      map[tableKey]*Index[BracketTable]
	perceptions *Index[PerceptionCatalog]
	schedules   *Index[ContributionSchedule]
}

func NewMemoryStore(data Data) (*MemoryStore, error) {
	grouped := map[tableKey][]BracketTable{}
	for _, table := range data.Tables {
		if err := table.Validate(); err != nil {
			return nil, err
		}
		k := tableKey{kind: table.Kind, key: table.Key}
		grouped[k] = append(grouped[k], table)
	}
	tables := make(map[tableKey]*Index[BracketTable], len(grouped))
	for k, list := range grouped {
		tables[k] = NewIndex(list)
	}
	for _, unit := range data.ReferenceUnits {
		if !unit.DailyValue.IsPositive() {
			return nil, fmt.Errorf("%w: reference unit from %s must be positive", ErrInvalidData, unit.EffectiveFrom.Format("2006-01-02"))
		}
	}
	for _, c := range data.Perceptions {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	for _, s := range data.Schedules {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return &MemoryStore{
		units:       NewIndex(data.ReferenceUnits),
		tables:      tables,
		perceptions: NewIndex(data.Perceptions),
		schedules:   NewIndex(data.Schedules),
	}, nil
}

func (m *MemoryStore) ReferenceUnit(_ context.Context, date time.Time) (ReferenceUnit, error) {
	unit, err := m.units.At(date)
	if err != nil {
		return ReferenceUnit{}, fmt.Errorf("reference unit on %s: %w", date.Format("2006-01-02"), err)
	}
	return unit, nil
}

func (m *MemoryStore) TaxTable(_ context.Context, kind TableKind, key string, date time.Time) (BracketTable, error) {
	table, err := m.tables[tableKey{kind: kind, key: key}].At(date)
	if err != nil {
		return BracketTable{}, fmt.Errorf("%s table %q on %s: %w", kind, key, date.Format("2006-01-02"), err)
	}
	return table, nil
}

func (m *MemoryStore) Perceptions(_ context.Context, date time.Time) (PerceptionCatalog, error) {
	c, err := m.perceptions.At(date)
	if err != nil {
		return PerceptionCatalog{}, fmt.Errorf("perception catalog on %s: %w", date.Format("2006-01-02"), err)
	}
	return c, nil
}

func (m *MemoryStore) ContributionSchedule(_ context.Context, date time.Time) (ContributionSchedule, error) {
	s, err := m.schedules.At(date)
	if err != nil {
		return ContributionSchedule{}, fmt.Errorf("contribution schedule on %s: %w", date.Format("2006-01-02"), err)
	}
	return s, nil
}
