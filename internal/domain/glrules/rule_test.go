package glrules

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func accountRule(name string, priority int, conditions ...Condition) Rule {
	return Rule{
		ID:              name,
		Name:            name,
		Priority:        priority,
		OverrideType:    OverrideAccount,
		AppliesToDebit:  true,
		AppliesToCredit: true,
		EffectiveFrom:   day(2025, 1, 1),
		Active:          true,
		Conditions:      conditions,
		Target:          Target{DebitAccount: name + "-DR", CreditAccount: name + "-CR"},
		CreatedAt:       day(2025, 1, 1),
	}
}

func TestValidateRejectsRuleWithoutConditions(t *testing.T) {
	err := accountRule("empty", 1).Validate()
	if !errors.Is(err, ErrRuleAuthoring) {
		t.Fatalf("expected ErrRuleAuthoring, got %v", err)
	}

	explicit := accountRule("all", 1, Condition{Dimension: DimensionPayElement, Operator: OperatorAny})
	if err := explicit.Validate(); err != nil {
		t.Fatalf("expected explicit any rule to be valid, got %v", err)
	}
}

func TestValidateRejectsMalformedRules(t *testing.T) {
	valid := Condition{Dimension: DimensionDepartment, Operator: OperatorEquals, Value: "OPS"}
	end := day(2024, 12, 31)

	cases := map[string]func(*Rule){
		"unknown dimension":  func(r *Rule) { r.Conditions[0].Dimension = "planet" },
		"unknown operator":   func(r *Rule) { r.Conditions[0].Operator = "like" },
		"equals no value":    func(r *Rule) { r.Conditions[0].Value = "" },
		"in no values":       func(r *Rule) { r.Conditions[0] = Condition{Dimension: DimensionJob, Operator: OperatorIn} },
		"no polarity":        func(r *Rule) { r.AppliesToDebit, r.AppliesToCredit = false, false },
		"inverted range":     func(r *Rule) { r.EffectiveTo = &end },
		"missing debit":      func(r *Rule) { r.Target.DebitAccount = "" },
		"unknown type":       func(r *Rule) { r.OverrideType = "magic" },
		"segment zero index": func(r *Rule) { r.OverrideType = OverrideSegment; r.Target.SegmentValue = "99" },
		"empty full string":  func(r *Rule) { r.OverrideType = OverrideFullString },
	}
	for name, mutate := range cases {
		rule := accountRule("r", 1, valid)
		mutate(&rule)
		if err := rule.Validate(); !errors.Is(err, ErrRuleAuthoring) {
			t.Fatalf("%s: expected ErrRuleAuthoring, got %v", name, err)
		}
	}
}

func TestConditionOperators(t *testing.T) {
	line := Line{Department: "OPS", Location: "MTY"}

	cases := []struct {
		cond Condition
		want bool
	}{
		{Condition{Dimension: DimensionDepartment, Operator: OperatorEquals, Value: "OPS"}, true},
		{Condition{Dimension: DimensionDepartment, Operator: OperatorEquals, Value: "HR"}, false},
		{Condition{Dimension: DimensionDepartment, Operator: OperatorNotEquals, Value: "HR"}, true},
		{Condition{Dimension: DimensionLocation, Operator: OperatorIn, Values: []string{"GDL", "MTY"}}, true},
		{Condition{Dimension: DimensionLocation, Operator: OperatorNotIn, Values: []string{"GDL", "MTY"}}, false},
		{Condition{Dimension: DimensionCostCenter, Operator: OperatorAny}, true},
		{Condition{Dimension: DimensionCostCenter, Operator: OperatorEquals, Value: "CC1"}, false},
	}
	for _, tc := range cases {
		if got := tc.cond.Matches(line); got != tc.want {
			t.Fatalf("%s %s: expected %v, got %v", tc.cond.Dimension, tc.cond.Operator, tc.want, got)
		}
	}
}

func TestRuleMatchesRequiresAllConditions(t *testing.T) {
	rule := accountRule("r", 1,
		Condition{Dimension: DimensionDepartment, Operator: OperatorEquals, Value: "OPS"},
		Condition{Dimension: DimensionPayElement, Operator: OperatorEquals, Value: "SALARY"},
	)
	if !rule.Matches(Line{Department: "OPS", PayElement: "SALARY"}) {
		t.Fatal("expected both conditions to match")
	}
	if rule.Matches(Line{Department: "OPS", PayElement: "BONUS"}) {
		t.Fatal("expected partial match to fail")
	}
	if accountRule("empty", 1).Matches(Line{}) {
		t.Fatal("expected rule without conditions to never match")
	}
}

func TestRuleAppliesTo(t *testing.T) {
	end := day(2025, 6, 30)
	rule := accountRule("r", 1, Condition{Dimension: DimensionJob, Operator: OperatorAny})
	rule.AppliesToCredit = false
	rule.EffectiveTo = &end

	if !rule.AppliesTo(Debit, day(2025, 6, 30).Add(15*time.Hour)) {
		t.Fatal("expected rule in force on its last day")
	}
	if rule.AppliesTo(Debit, day(2025, 7, 1)) || rule.AppliesTo(Debit, day(2024, 12, 31)) {
		t.Fatal("expected rule out of force outside its range")
	}
	if rule.AppliesTo(Credit, day(2025, 3, 1)) {
		t.Fatal("expected debit-only rule to skip credit lines")
	}
	rule.Active = false
	if rule.AppliesTo(Debit, day(2025, 3, 1)) {
		t.Fatal("expected inactive rule to be skipped")
	}
}
