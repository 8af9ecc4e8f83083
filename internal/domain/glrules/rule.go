package glrules

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Validate rejects rules that cannot be evaluated safely. A rule must carry at
// least one condition; match-everything rules are written with the any operator.
func (r Rule) Validate() error {
	if len(r.Conditions) == 0 {
		return fmt.Errorf("%w: rule %q has no conditions; use the any operator to match every line", ErrRuleAuthoring, r.Name)
	}
	if !r.AppliesToDebit && !r.AppliesToCredit {
		return fmt.Errorf("%w: rule %q applies to neither debit nor credit", ErrRuleAuthoring, r.Name)
	}
	if r.EffectiveFrom.IsZero() {
		return fmt.Errorf("%w: rule %q has no effective date", ErrRuleAuthoring, r.Name)
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(r.EffectiveFrom) {
		return fmt.Errorf("%w: rule %q ends before it starts", ErrRuleAuthoring, r.Name)
	}
	for i, c := range r.Conditions {
		if err := c.validate(); err != nil {
			return fmt.Errorf("%w: rule %q condition %d: %s", ErrRuleAuthoring, r.Name, i+1, err)
		}
	}
	return r.validateTarget()
}

func (r Rule) validateTarget() error {
	t := r.Target
	switch r.OverrideType {
	case OverrideAccount:
		if r.AppliesToDebit && strings.TrimSpace(t.DebitAccount) == "" {
			return fmt.Errorf("%w: rule %q needs a debit account", ErrRuleAuthoring, r.Name)
		}
		if r.AppliesToCredit && strings.TrimSpace(t.CreditAccount) == "" {
			return fmt.Errorf("%w: rule %q needs a credit account", ErrRuleAuthoring, r.Name)
		}
	case OverrideSegment:
		if t.SegmentIndex < 1 || strings.TrimSpace(t.SegmentValue) == "" {
			return fmt.Errorf("%w: rule %q needs a segment index from 1 and a segment value", ErrRuleAuthoring, r.Name)
		}
		if strings.Contains(t.SegmentValue, SegmentDelimiter) {
			return fmt.Errorf("%w: rule %q segment value contains %q", ErrRuleAuthoring, r.Name, SegmentDelimiter)
		}
	case OverrideFullString:
		if strings.TrimSpace(t.FullString) == "" {
			return fmt.Errorf("%w: rule %q needs a full account string", ErrRuleAuthoring, r.Name)
		}
	default:
		return fmt.Errorf("%w: rule %q has override type %q", ErrRuleAuthoring, r.Name, r.OverrideType)
	}
	return nil
}

func (c Condition) validate() error {
	if !c.Dimension.Valid() {
		return fmt.Errorf("unknown dimension %q", c.Dimension)
	}
	switch c.Operator {
	case OperatorAny:
	case OperatorEquals, OperatorNotEquals:
		if c.Value == "" {
			return fmt.Errorf("operator %s needs a value", c.Operator)
		}
	case OperatorIn, OperatorNotIn:
		if len(c.Values) == 0 {
			return fmt.Errorf("operator %s needs a value set", c.Operator)
		}
	default:
		return fmt.Errorf("unknown operator %q", c.Operator)
	}
	return nil
}

// AppliesTo reports whether the rule is in force on date for a line of the given polarity.
func (r Rule) AppliesTo(polarity Polarity, date time.Time) bool {
	if !r.Active {
		return false
	}
	switch polarity {
	case Debit:
		if !r.AppliesToDebit {
			return false
		}
	case Credit:
		if !r.AppliesToCredit {
			return false
		}
	default:
		return false
	}
	day := truncateDay(date)
	if day.Before(truncateDay(r.EffectiveFrom)) {
		return false
	}
	return r.EffectiveTo == nil || !day.After(truncateDay(*r.EffectiveTo))
}

// Matches reports whether every condition holds for the line.
func (r Rule) Matches(line Line) bool {
	if len(r.Conditions) == 0 {
		return false
	}
	for _, c := range r.Conditions {
		if !c.Matches(line) {
			return false
		}
	}
	return true
}

func (c Condition) Matches(line Line) bool {
	value := line.Value(c.Dimension)
	switch c.Operator {
	case OperatorAny:
		return true
	case OperatorEquals:
		return value == c.Value
	case OperatorNotEquals:
		return value != c.Value
	case OperatorIn:
		return slices.Contains(c.Values, value)
	case OperatorNotIn:
		return !slices.Contains(c.Values, value)
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
