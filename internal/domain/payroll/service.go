package payroll

import (
	"context"
	"errors"
	"time"

	"hrpay/internal/domain/catalog"
)

// Recorder receives one observation per employee calculation.
type Recorder interface {
	ObserveCalculation(outcome string, stage Stage, duration time.Duration)
}

type Service struct {
	catalog     catalog.Store
	assembler   *Assembler
	recorder    Recorder
	concurrency int
}

func NewService(store catalog.Store, assembler *Assembler, recorder Recorder, concurrency int) *Service {
	if assembler == nil {
		assembler = NewAssembler()
	}
	return &Service{catalog: store, assembler: assembler, recorder: recorder, concurrency: concurrency}
}

// Snapshot resolves the reference data a request needs on its calculation date.
func (s *Service) Snapshot(ctx context.Context, req Request) (catalog.Snapshot, error) {
	return catalog.Resolve(ctx, s.catalog, req.CalculationDate(), req.Period.Type, req.Jurisdiction)
}

func (s *Service) Calculate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	snap, err := s.Snapshot(ctx, req)
	if err != nil {
		err = &AssemblyError{EmployeeID: req.EmployeeID, Stage: StageCollectingInputs, Err: err}
		s.observe(OutcomeFailure, StageCollectingInputs, start)
		return Result{EmployeeID: req.EmployeeID, Period: req.Period, Stage: StageFailed}, err
	}
	result, err := s.assembler.Calculate(ctx, req, snap)
	s.observeResult(result, err, start)
	return result, err
}

func (s *Service) CalculateBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := RunBatch(ctx, s.assembler, reqs, s.Snapshot, s.concurrency)
	for _, r := range results {
		if r.Err != nil {
			s.record(OutcomeFailure, failedStage(r.Err), r.Duration)
			continue
		}
		s.record(OutcomeSuccess, StageComplete, r.Duration)
	}
	return results
}

func (s *Service) observeResult(result Result, err error, start time.Time) {
	if err != nil {
		s.observe(OutcomeFailure, failedStage(err), start)
		return
	}
	s.observe(OutcomeSuccess, result.Stage, start)
}

func (s *Service) observe(outcome string, stage Stage, start time.Time) {
	s.record(outcome, stage, time.Since(start))
}

func (s *Service) record(outcome string, stage Stage, d time.Duration) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveCalculation(outcome, stage, d)
}

// failedStage reports where an assembly stopped, or StageFailed when unknown.
func failedStage(err error) Stage {
	var ae *AssemblyError
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return StageFailed
}
