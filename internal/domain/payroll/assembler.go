package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/money"
)

// Assembler turns one employee's inputs into a net-pay result. It holds no state
// between calls, so one value can serve any number of goroutines.
type Assembler struct {
	// TreatUnknownAsTaxable keeps perceptions with unknown codes as fully taxable
	// instead of failing the employee.
	TreatUnknownAsTaxable bool
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

type assembly struct {
	req   Request
	snap  catalog.Snapshot
	stage Stage

	perceptions  []PerceptionLine
	totalGross   decimal.Decimal
	totalTaxable decimal.Decimal
	totalExempt  decimal.Decimal

	incomeTax     IncomeTax
	contributions Contributions
	payrollTax    PayrollTax
}

// Calculate runs CollectingInputs -> Splitting -> ComputingStatutory -> Merging.
// Any failure returns an *AssemblyError and a Result in StageFailed with no amounts.
func (a *Assembler) Calculate(ctx context.Context, req Request, snap catalog.Snapshot) (Result, error) {
	run := &assembly{req: req, snap: snap, stage: StageCollectingInputs}

	steps := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageCollectingInputs, run.collect},
		{StageSplitting, func(context.Context) error { return run.split(a.TreatUnknownAsTaxable) }},
		{StageComputingStatutory, run.computeStatutory},
	}
	for _, step := range steps {
		run.stage = step.stage
		if err := ctx.Err(); err != nil {
			return run.fail(err)
		}
		if err := step.fn(ctx); err != nil {
			return run.fail(err)
		}
	}

	run.stage = StageMerging
	result := run.merge()
	result.Stage = StageComplete
	return result, nil
}

func (r *assembly) fail(err error) (Result, error) {
	failed := Result{EmployeeID: r.req.EmployeeID, Period: r.req.Period, Stage: StageFailed}
	var assemblyErr *AssemblyError
	if errors.As(err, &assemblyErr) {
		return failed, err
	}
	return failed, &AssemblyError{EmployeeID: r.req.EmployeeID, Stage: r.stage, Err: err}
}

func (r *assembly) collect(context.Context) error {
	if r.req.Period.DaysWorked <= 0 {
		return fmt.Errorf("%w: period has no days", ErrInvalidPeriod)
	}
	if r.req.DaysWorked < 0 || r.req.DaysWorked > r.req.Period.DaysWorked {
		return fmt.Errorf("%w: days worked %d outside period of %d days", ErrInvalidPeriod, r.req.DaysWorked, r.req.Period.DaysWorked)
	}
	if r.snap.PeriodType != "" && r.snap.PeriodType != r.req.Period.Type {
		return fmt.Errorf("%w: catalog resolved for %s, period is %s", ErrInvalidPeriod, r.snap.PeriodType, r.req.Period.Type)
	}
	for _, d := range r.req.Deductions {
		if err := money.Validate(d.Amount); err != nil {
			return fmt.Errorf("deduction %s: %w", d.Code, err)
		}
	}
	return nil
}

func (r *assembly) split(unknownAsTaxable bool) error {
	r.perceptions = make([]PerceptionLine, 0, len(r.req.Perceptions))
	for _, p := range r.req.Perceptions {
		line, err := SplitPerception(r.snap.Perceptions, r.snap.ReferenceUnit, p.Code, p.Amount)
		if err != nil {
			if !unknownAsTaxable || !errors.Is(err, ErrUnknownCatalogCode) {
				return err
			}
			line = taxableLine(p.Code, p.Amount)
		}
		r.perceptions = append(r.perceptions, line)
	}

	r.totalGross, r.totalTaxable, r.totalExempt = decimal.Zero, decimal.Zero, decimal.Zero
	for _, line := range r.perceptions {
		r.totalGross = r.totalGross.Add(line.Gross)
		r.totalTaxable = r.totalTaxable.Add(line.Taxable)
		r.totalExempt = r.totalExempt.Add(line.Exempt)
	}
	return nil
}

// computeStatutory runs the three independent calculators concurrently and joins.
func (r *assembly) computeStatutory(context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		tax, err := ComputeIncomeTax(r.totalTaxable, r.snap.IncomeTax, r.snap.Subsidy)
		if err != nil {
			return fmt.Errorf("income tax: %w", err)
		}
		r.incomeTax = tax
		return nil
	})
	g.Go(func() error {
		contributions, err := ComputeContributions(r.snap.Contributions, r.snap.ReferenceUnit, r.req.BaseSalary, r.req.RiskClass, r.req.EffectiveDays())
		if err != nil {
			return fmt.Errorf("social contributions: %w", err)
		}
		r.contributions = contributions
		return nil
	})
	g.Go(func() error {
		payrollTax, err := ComputePayrollTax(r.req.Jurisdiction, r.totalGross, r.snap.PayrollTax)
		if err != nil {
			return fmt.Errorf("payroll tax: %w", err)
		}
		r.payrollTax = payrollTax
		return nil
	})
	return g.Wait()
}

func (r *assembly) merge() Result {
	deductions := make([]DeductionLine, 0, len(r.req.Deductions)+2)
	for _, d := range r.req.Deductions {
		source := d.Source
		if source == "" {
			source = SourceManual
		}
		deductions = append(deductions, DeductionLine{Code: d.Code, Amount: money.Round(d.Amount), Source: source})
	}
	deductions = append(deductions,
		DeductionLine{Code: DeductionIncomeTax, Amount: r.incomeTax.NetTax, Source: SourceComputed},
		DeductionLine{Code: DeductionSocialSecurity, Amount: r.contributions.EmployeeTotal, Source: SourceComputed},
	)

	totalDeductions := decimal.Zero
	for _, d := range deductions {
		totalDeductions = totalDeductions.Add(d.Amount)
	}

	return Result{
		EmployeeID:       r.req.EmployeeID,
		Period:           r.req.Period,
		Perceptions:      r.perceptions,
		Deductions:       deductions,
		TotalPerceptions: r.totalGross,
		TotalTaxable:     r.totalTaxable,
		TotalExempt:      r.totalExempt,
		TotalDeductions:  totalDeductions,
		SubsidyPaid:      r.incomeTax.SubsidyPaid,
		NetPay:           r.totalGross.Sub(totalDeductions).Add(r.incomeTax.SubsidyPaid),
		IncomeTax:        r.incomeTax,
		Contributions:    r.contributions,
		PayrollTax:       r.payrollTax,
		EmployerCost:     r.contributions.EmployerTotal.Add(r.payrollTax.Amount),
	}
}
