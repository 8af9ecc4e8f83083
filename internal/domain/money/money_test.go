package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundHalfUp(t *testing.T) {
	cases := map[string]string{
		"10.005":  "10.01",
		"10.004":  "10",
		"0.125":   "0.13",
		"99.995":  "100",
		"-1.005":  "-1.01",
		"1234.50": "1234.5",
	}
	for in, want := range cases {
		got := Round(decimal.RequireFromString(in))
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("expected %s to round to %s, got %s", in, want, got)
		}
	}
}

func TestSumRoundsEachLineFirst(t *testing.T) {
	a := decimal.RequireFromString("0.005")
	b := decimal.RequireFromString("0.005")
	got := Sum(a, b)
	if !got.Equal(decimal.RequireFromString("0.02")) {
		t.Fatalf("expected 0.02 from rounded lines, got %s", got)
	}
	if !Round(a.Add(b)).Equal(decimal.RequireFromString("0.01")) {
		t.Fatal("expected the unrounded sum to differ")
	}
}

func TestValidateRejectsNegative(t *testing.T) {
	if err := Validate(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := Validate(decimal.Zero); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := Parse("  "); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for blank, got %v", err)
	}
	d, err := Parse("1500.75")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Cents(d) != 150075 {
		t.Fatalf("expected 150075 cents, got %d", Cents(d))
	}
}
