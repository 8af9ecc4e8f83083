package glrules

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type fileDoc struct {
	Rules []fileRule `toml:"rules"`
}

type fileRule struct {
	Name            string      `toml:"name"`
	Priority        int         `toml:"priority"`
	OverrideType    string      `toml:"override_type"`
	AppliesToDebit  bool        `toml:"applies_to_debit"`
	AppliesToCredit bool        `toml:"applies_to_credit"`
	EffectiveFrom   string      `toml:"effective_from"`
	EffectiveTo     string      `toml:"effective_to"`
	Inactive        bool        `toml:"inactive"`
	Conditions      []Condition `toml:"conditions"`
	DebitAccount    string      `toml:"debit_account"`
	CreditAccount   string      `toml:"credit_account"`
	SegmentIndex    int         `toml:"segment_index"`
	SegmentValue    string      `toml:"segment_value"`
	FullString      string      `toml:"full_string"`
}

// LoadFile reads override rules from a TOML file into a service backed by a
// MemoryStore. Rules are created in file order, so later rules win ties.
func LoadFile(ctx context.Context, path string) (*Service, error) {
	var doc fileDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("decode rules %s: %w", path, err)
	}
	svc := NewService(NewMemoryStore())
	for i, fr := range doc.Rules {
		rule, err := fr.toRule()
		if err != nil {
			return nil, fmt.Errorf("rules %s: rule %d: %w", path, i, err)
		}
		if _, err := svc.Create(ctx, rule); err != nil {
			return nil, fmt.Errorf("rules %s: rule %d (%s): %w", path, i, fr.Name, err)
		}
	}
	return svc, nil
}

func (fr fileRule) toRule() (Rule, error) {
	rule := Rule{
		Name:            fr.Name,
		Priority:        fr.Priority,
		OverrideType:    OverrideType(fr.OverrideType),
		AppliesToDebit:  fr.AppliesToDebit,
		AppliesToCredit: fr.AppliesToCredit,
		Active:          !fr.Inactive,
		Conditions:      fr.Conditions,
		Target: Target{
			DebitAccount:  fr.DebitAccount,
			CreditAccount: fr.CreditAccount,
			SegmentIndex:  fr.SegmentIndex,
			SegmentValue:  fr.SegmentValue,
			FullString:    fr.FullString,
		},
	}
	from, err := time.Parse("2006-01-02", fr.EffectiveFrom)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: effective_from %q", ErrRuleAuthoring, fr.EffectiveFrom)
	}
	rule.EffectiveFrom = from
	if fr.EffectiveTo != "" {
		to, err := time.Parse("2006-01-02", fr.EffectiveTo)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: effective_to %q", ErrRuleAuthoring, fr.EffectiveTo)
		}
		rule.EffectiveTo = &to
	}
	return rule, nil
}
