package catalog

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Decimal values are quoted strings in the file so they never pass through float64.
type fileDoc struct {
	ReferenceUnits []fileUnit     `toml:"reference_units"`
	Tables         []fileTable    `toml:"tables"`
	Perceptions    []filePercept  `toml:"perceptions"`
	Schedules      []fileSchedule `toml:"schedules"`
}

type fileUnit struct {
	EffectiveFrom string `toml:"effective_from"`
	EffectiveTo   string `toml:"effective_to"`
	DailyValue    string `toml:"daily_value"`
}

type fileTable struct {
	Kind          string    `toml:"kind"`
	Key           string    `toml:"key"`
	EffectiveFrom string    `toml:"effective_from"`
	EffectiveTo   string    `toml:"effective_to"`
	Rows          []fileRow `toml:"rows"`
}

type fileRow struct {
	Lower string `toml:"lower"`
	Upper string `toml:"upper"`
	Rate  string `toml:"rate"`
	Base  string `toml:"base"`
}

type filePercept struct {
	EffectiveFrom string        `toml:"effective_from"`
	EffectiveTo   string        `toml:"effective_to"`
	Concepts      []fileConcept `toml:"concepts"`
}

type fileConcept struct {
	Code        string `toml:"code"`
	Name        string `toml:"name"`
	Treatment   string `toml:"treatment"`
	ExemptUnits string `toml:"exempt_units"`
	ExemptRatio string `toml:"exempt_ratio"`
}

type fileSchedule struct {
	EffectiveFrom    string         `toml:"effective_from"`
	EffectiveTo      string         `toml:"effective_to"`
	BaseCeilingUnits string         `toml:"base_ceiling_units"`
	Categories       []fileCategory `toml:"categories"`
}

type fileCategory struct {
	Code            string            `toml:"code"`
	Name            string            `toml:"name"`
	Party           string            `toml:"party"`
	Rate            string            `toml:"rate"`
	RiskRates       map[string]string `toml:"risk_rates"`
	Base            string            `toml:"base"`
	ExcessOverUnits string            `toml:"excess_over_units"`
	FloorUnits      string            `toml:"floor_units"`
	CeilingUnits    string            `toml:"ceiling_units"`
}

// LoadFile reads a TOML catalog snapshot into a MemoryStore.
func LoadFile(path string) (*MemoryStore, error) {
	var doc fileDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	data, err := doc.toData()
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return NewMemoryStore(data)
}

// Decode parses a TOML catalog document held in memory.
func Decode(raw string) (*MemoryStore, error) {
	var doc fileDoc
	if _, err := toml.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	data, err := doc.toData()
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(data)
}

func (doc fileDoc) toData() (Data, error) {
	var data Data
	p := &fieldParser{}

	for _, u := range doc.ReferenceUnits {
		data.ReferenceUnits = append(data.ReferenceUnits, ReferenceUnit{
			EffectiveFrom: p.date("reference_units.effective_from", u.EffectiveFrom),
			EffectiveTo:   p.optDate("reference_units.effective_to", u.EffectiveTo),
			DailyValue:    p.dec("reference_units.daily_value", u.DailyValue),
		})
	}
	for _, t := range doc.Tables {
		table := BracketTable{
			Kind:          TableKind(t.Kind),
			Key:           t.Key,
			EffectiveFrom: p.date("tables.effective_from", t.EffectiveFrom),
			EffectiveTo:   p.optDate("tables.effective_to", t.EffectiveTo),
		}
		for _, r := range t.Rows {
			table.Rows = append(table.Rows, Bracket{
				LowerBound:     p.dec("tables.rows.lower", r.Lower),
				UpperBound:     p.optDec("tables.rows.upper", r.Upper),
				Rate:           p.decOr("tables.rows.rate", r.Rate),
				CumulativeBase: p.decOr("tables.rows.base", r.Base),
			})
		}
		data.Tables = append(data.Tables, table)
	}
	for _, pc := range doc.Perceptions {
		c := PerceptionCatalog{
			EffectiveFrom: p.date("perceptions.effective_from", pc.EffectiveFrom),
			EffectiveTo:   p.optDate("perceptions.effective_to", pc.EffectiveTo),
			Concepts:      make(map[string]PerceptionConcept, len(pc.Concepts)),
		}
		for _, concept := range pc.Concepts {
			c.Concepts[concept.Code] = PerceptionConcept{
				Code:        concept.Code,
				Name:        concept.Name,
				Treatment:   Treatment(concept.Treatment),
				ExemptUnits: p.decOr("perceptions.concepts.exempt_units", concept.ExemptUnits),
				ExemptRatio: p.decOr("perceptions.concepts.exempt_ratio", concept.ExemptRatio),
			}
		}
		data.Perceptions = append(data.Perceptions, c)
	}
	for _, s := range doc.Schedules {
		schedule := ContributionSchedule{
			EffectiveFrom:    p.date("schedules.effective_from", s.EffectiveFrom),
			EffectiveTo:      p.optDate("schedules.effective_to", s.EffectiveTo),
			BaseCeilingUnits: p.decOr("schedules.base_ceiling_units", s.BaseCeilingUnits),
		}
		for _, c := range s.Categories {
			category := ContributionCategory{
				Code:            c.Code,
				Name:            c.Name,
				Party:           Party(c.Party),
				Rate:            p.decOr("schedules.categories.rate", c.Rate),
				Base:            BaseKind(c.Base),
				ExcessOverUnits: p.decOr("schedules.categories.excess_over_units", c.ExcessOverUnits),
				FloorUnits:      p.decOr("schedules.categories.floor_units", c.FloorUnits),
				CeilingUnits:    p.decOr("schedules.categories.ceiling_units", c.CeilingUnits),
			}
			if category.Base == "" {
				category.Base = BaseSalary
			}
			if len(c.RiskRates) > 0 {
				category.RiskRates = make(map[string]decimal.Decimal, len(c.RiskRates))
				for class, rate := range c.RiskRates {
					category.RiskRates[class] = p.dec("schedules.categories.risk_rates", rate)
				}
			}
			schedule.Categories = append(schedule.Categories, category)
		}
		data.Schedules = append(data.Schedules, schedule)
	}
	if p.err != nil {
		return Data{}, p.err
	}
	return data, nil
}

// fieldParser keeps the first parse failure so conversion reads as straight-line code.
type fieldParser struct {
	err error
}

func (p *fieldParser) fail(field, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidData, field, value, err)
	}
}

func (p *fieldParser) date(field, value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		p.fail(field, value, err)
	}
	return t
}

func (p *fieldParser) optDate(field, value string) *time.Time {
	if value == "" {
		return nil
	}
	t := p.date(field, value)
	return &t
}

func (p *fieldParser) dec(field, value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		p.fail(field, value, err)
	}
	return d
}

func (p *fieldParser) decOr(field, value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	return p.dec(field, value)
}

func (p *fieldParser) optDec(field, value string) *decimal.Decimal {
	if value == "" {
		return nil
	}
	d := p.dec(field, value)
	return &d
}
