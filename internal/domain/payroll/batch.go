package payroll

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"hrpay/internal/domain/catalog"
)

// BatchResult holds one employee's outcome; exactly one of Result and Err is set.
type BatchResult struct {
	EmployeeID string
	Result     *Result
	Err        error
	// Duration covers this employee's reference data lookup and assembly.
	Duration time.Duration
}

// SnapshotFunc resolves the reference data for one request.
type SnapshotFunc func(ctx context.Context, req Request) (catalog.Snapshot, error)

// RunBatch calculates every request with at most concurrency workers. A failing
// employee never stops its siblings; results keep the input order.
func RunBatch(ctx context.Context, a *Assembler, reqs []Request, resolve SnapshotFunc, concurrency int) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if concurrency <= 0 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = runOne(ctx, a, req, resolve)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runOne(ctx context.Context, a *Assembler, req Request, resolve SnapshotFunc) (out BatchResult) {
	start := time.Now()
	out.EmployeeID = req.EmployeeID
	defer func() { out.Duration = time.Since(start) }()
	snap, err := resolve(ctx, req)
	if err != nil {
		out.Err = &AssemblyError{EmployeeID: req.EmployeeID, Stage: StageCollectingInputs, Err: err}
		slog.Warn("payroll batch item failed", "employeeId", req.EmployeeID, "err", out.Err)
		return out
	}
	result, err := a.Calculate(ctx, req, snap)
	if err != nil {
		out.Err = err
		slog.Warn("payroll batch item failed", "employeeId", req.EmployeeID, "err", err)
		return out
	}
	out.Result = &result
	return out
}
