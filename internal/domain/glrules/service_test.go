package glrules

import (
	"context"
	"errors"
	"testing"
)

func TestServiceRejectsAuthoringErrorsOnSave(t *testing.T) {
	svc := NewService(NewMemoryStore())

	if _, err := svc.Create(context.Background(), accountRule("empty", 1)); !errors.Is(err, ErrRuleAuthoring) {
		t.Fatalf("expected ErrRuleAuthoring on create, got %v", err)
	}

	created, err := svc.Create(context.Background(), accountRule("ok", 1, anyElement))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	broken := created
	broken.Conditions = nil
	if _, err := svc.Update(context.Background(), created.ID, broken); !errors.Is(err, ErrRuleAuthoring) {
		t.Fatalf("expected ErrRuleAuthoring on update, got %v", err)
	}
}

func TestServiceLifecycleAndPosting(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	first, err := svc.Create(ctx, accountRule("first", 5, anyElement))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(ctx, accountRule("second", 5, anyElement))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == second.ID || first.ID == "first" {
		t.Fatalf("expected generated ids, got %q and %q", first.ID, second.ID)
	}

	postings, err := svc.Post(ctx, day(2025, 3, 1), []Entry{{Polarity: Debit, Account: "6000"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if postings[0].RuleID != second.ID || postings[0].Account != "second-DR" {
		t.Fatalf("expected most recently defined rule to win, got %+v", postings[0])
	}

	second.Active = false
	if _, err := svc.Update(ctx, second.ID, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	postings, _ = svc.Post(ctx, day(2025, 3, 1), []Entry{{Polarity: Debit, Account: "6000"}})
	if postings[0].RuleID != first.ID {
		t.Fatalf("expected inactive rule skipped, got %+v", postings[0])
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	postings, _ = svc.Post(ctx, day(2025, 3, 1), []Entry{{Polarity: Debit, Account: "6000"}})
	if postings[0].Overridden || postings[0].Account != "6000" {
		t.Fatalf("expected passthrough with no active rules, got %+v", postings[0])
	}
}

func TestServiceUnknownIDs(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if _, err := svc.Get(context.Background(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "7d9f7d5c-4c55-4a39-9f59-55c2a4a8a111"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServicePostIsolatesEntriesThatCannotBeOverridden(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	rule := accountRule("segment", 5, anyElement)
	rule.OverrideType = OverrideSegment
	rule.Target = Target{SegmentIndex: 3, SegmentValue: "09"}
	created, err := svc.Create(ctx, rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postings, err := svc.Post(ctx, day(2025, 3, 1), []Entry{
		{Polarity: Debit, Account: "6000-100-01"},
		{Polarity: Debit, Account: "6000"},
		{Polarity: Credit, Account: "2100-000-01"},
	})
	if err != nil {
		t.Fatalf("expected per-entry errors only, got %v", err)
	}
	if len(postings) != 3 {
		t.Fatalf("expected three postings, got %d", len(postings))
	}
	if postings[0].Account != "6000-100-09" || postings[0].Error != "" {
		t.Fatalf("expected first entry overridden, got %+v", postings[0])
	}
	short := postings[1]
	if short.Account != "6000" || short.Overridden || short.Error == "" || short.RuleID != created.ID {
		t.Fatalf("expected short account kept with an error, got %+v", short)
	}
	if postings[2].Account != "2100-000-09" {
		t.Fatalf("expected third entry overridden, got %+v", postings[2])
	}
	if got := Failed(postings); got != 1 {
		t.Fatalf("expected one failed posting, got %d", got)
	}
}
