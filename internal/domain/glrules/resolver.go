package glrules

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Resolver evaluates a fixed rule set. Rules are kept in evaluation order:
// priority descending, then most recently defined first.
type Resolver struct {
	rules []Rule
}

// NewResolver drops rules that fail validation so they can never act as wildcards.
func NewResolver(rules []Rule) *Resolver {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			slog.Warn("gl override rule skipped", "ruleId", r.ID, "err", err)
			continue
		}
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return evaluatedBefore(kept[i], kept[j])
	})
	return &Resolver{rules: kept}
}

func evaluatedBefore(a, b Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Sequence > b.Sequence
}

func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Resolve returns the first applicable rule for the line, or false when the line
// keeps its original account.
func (r *Resolver) Resolve(line Line, polarity Polarity, date time.Time) (Rule, bool) {
	if r == nil {
		return Rule{}, false
	}
	for _, rule := range r.rules {
		if rule.AppliesTo(polarity, date) && rule.Matches(line) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Post resolves the line and applies the winning rule to its original account.
// When the rule cannot be applied the posting keeps the original account.
func (r *Resolver) Post(line Line, polarity Polarity, date time.Time, original string) (Posting, error) {
	if !polarity.Valid() {
		return Posting{}, ErrInvalidPolarity
	}
	posting := Posting{Account: original, Original: original}
	rule, ok := r.Resolve(line, polarity, date)
	if !ok {
		return posting, nil
	}
	posting.RuleID = rule.ID
	posting.RuleName = rule.Name
	account, err := ApplyTarget(original, rule.OverrideType, rule.Target, polarity)
	if err != nil {
		return posting, fmt.Errorf("rule %q on account %q: %w", rule.Name, original, err)
	}
	posting.Account = account
	posting.Overridden = true
	return posting, nil
}

// ApplyTarget rewrites an account string. Segment indexes start at 1.
func ApplyTarget(original string, kind OverrideType, target Target, polarity Polarity) (string, error) {
	switch kind {
	case OverrideAccount:
		account := target.DebitAccount
		if polarity == Credit {
			account = target.CreditAccount
		}
		if account == "" {
			return original, nil
		}
		return account, nil
	case OverrideSegment:
		segments := strings.Split(original, SegmentDelimiter)
		if target.SegmentIndex < 1 || target.SegmentIndex > len(segments) {
			return "", ErrSegmentOutOfRange
		}
		segments[target.SegmentIndex-1] = target.SegmentValue
		return strings.Join(segments, SegmentDelimiter), nil
	case OverrideFullString:
		return target.FullString, nil
	}
	return original, nil
}
