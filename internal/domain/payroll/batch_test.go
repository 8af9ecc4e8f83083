package payroll

import (
	"context"
	"errors"
	"testing"

	"hrpay/internal/domain/catalog"
)

func staticSnapshot(context.Context, Request) (catalog.Snapshot, error) {
	return testSnapshot(), nil
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	bad := baseRequest()
	bad.EmployeeID = "E2"
	bad.Perceptions = []PerceptionInput{{Code: "MYSTERY", Amount: dec("1")}}
	third := baseRequest()
	third.EmployeeID = "E3"

	results := RunBatch(context.Background(), NewAssembler(), []Request{baseRequest(), bad, third}, staticSnapshot, 2)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, id := range []string{"E1", "E2", "E3"} {
		if results[i].EmployeeID != id {
			t.Fatalf("expected input order preserved, got %s at %d", results[i].EmployeeID, i)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("expected siblings to succeed, got %v / %v", results[0].Err, results[2].Err)
	}
	if !results[0].Result.NetPay.Equal(results[2].Result.NetPay) {
		t.Fatalf("expected equal net pay for equal inputs, got %s and %s", results[0].Result.NetPay, results[2].Result.NetPay)
	}
	if results[1].Result != nil || !errors.Is(results[1].Err, ErrUnknownCatalogCode) {
		t.Fatalf("expected E2 to fail with unknown code, got %+v", results[1])
	}
}

func TestRunBatchResolverFailure(t *testing.T) {
	resolve := func(context.Context, Request) (catalog.Snapshot, error) {
		return catalog.Snapshot{}, catalog.ErrNotFound
	}
	results := RunBatch(context.Background(), NewAssembler(), []Request{baseRequest()}, resolve, 0)

	var ae *AssemblyError
	if !errors.As(results[0].Err, &ae) || ae.Stage != StageCollectingInputs {
		t.Fatalf("expected collecting_inputs failure, got %v", results[0].Err)
	}
	if !errors.Is(results[0].Err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", results[0].Err)
	}
}

func TestRunBatchEmpty(t *testing.T) {
	if got := RunBatch(context.Background(), NewAssembler(), nil, staticSnapshot, 4); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}
