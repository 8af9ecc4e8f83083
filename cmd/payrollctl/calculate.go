package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/payroll"
)

func init() {
	rootCmd.AddCommand(calculateCmd)

	calculateCmd.Flags().StringP("catalog", "c", "configs/catalog.toml", "Path to the TOML reference-data snapshot")
	calculateCmd.Flags().StringP("input", "i", "-", "JSON file with the employees to calculate")
	calculateCmd.Flags().Int("concurrency", 4, "Employees calculated in parallel")
	calculateCmd.Flags().Bool("unknown-taxable", false, "Treat perception codes missing from the catalog as fully taxable")
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate net pay for a batch of employees",
	Long: `Calculate reads {"items": [...]} where each item has employeeId, periodStart,
periodEnd, paymentDate, perceptions, deductions, baseSalary, riskClass,
jurisdiction and daysWorked. One employee failing never stops the others.`,
	Args: cobra.NoArgs,
	RunE: runCalculate,
}

type employeeInput struct {
	EmployeeID   string                    `json:"employeeId"`
	PeriodStart  string                    `json:"periodStart"`
	PeriodEnd    string                    `json:"periodEnd"`
	PaymentDate  string                    `json:"paymentDate"`
	Perceptions  []payroll.PerceptionInput `json:"perceptions"`
	Deductions   []payroll.DeductionLine   `json:"deductions"`
	BaseSalary   decimal.Decimal           `json:"baseSalary"`
	RiskClass    string                    `json:"riskClass"`
	Jurisdiction string                    `json:"jurisdiction"`
	DaysWorked   int                       `json:"daysWorked"`
}

type calculateOutput struct {
	EmployeeID string          `json:"employeeId"`
	Result     *payroll.Result `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	Stage      payroll.Stage   `json:"stage,omitempty"`
}

func (in employeeInput) request() (payroll.Request, error) {
	start, err := parseDay("periodStart", in.PeriodStart)
	if err != nil {
		return payroll.Request{}, err
	}
	end, err := parseDay("periodEnd", in.PeriodEnd)
	if err != nil {
		return payroll.Request{}, err
	}
	period, err := payroll.NewPeriod(start, end)
	if err != nil {
		return payroll.Request{}, err
	}
	req := payroll.Request{
		EmployeeID:   in.EmployeeID,
		Period:       period,
		Perceptions:  in.Perceptions,
		BaseSalary:   in.BaseSalary,
		RiskClass:    strings.ToUpper(in.RiskClass),
		Jurisdiction: strings.ToUpper(in.Jurisdiction),
		DaysWorked:   in.DaysWorked,
	}
	if in.PaymentDate != "" {
		if req.PaymentDate, err = parseDay("paymentDate", in.PaymentDate); err != nil {
			return payroll.Request{}, err
		}
	}
	for _, d := range in.Deductions {
		if d.Source == "" {
			d.Source = payroll.SourceManual
		}
		req.Deductions = append(req.Deductions, d)
	}
	return req, nil
}

func runCalculate(cmd *cobra.Command, _ []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	inputPath, _ := cmd.Flags().GetString("input")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	unknownTaxable, _ := cmd.Flags().GetBool("unknown-taxable")

	store, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, inputPath)
	if err != nil {
		return err
	}
	var input struct {
		Items []employeeInput `json:"items"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	reqs := make([]payroll.Request, 0, len(input.Items))
	for i, item := range input.Items {
		req, err := item.request()
		if err != nil {
			return fmt.Errorf("item %d (%s): %w", i, item.EmployeeID, err)
		}
		reqs = append(reqs, req)
	}

	assembler := payroll.NewAssembler()
	assembler.TreatUnknownAsTaxable = unknownTaxable
	svc := payroll.NewService(store, assembler, nil, concurrency)

	results := svc.CalculateBatch(cmd.Context(), reqs)
	out := make([]calculateOutput, 0, len(results))
	failed := 0
	for _, r := range results {
		o := calculateOutput{EmployeeID: r.EmployeeID, Result: r.Result}
		if r.Err != nil {
			failed++
			o.Error = r.Err.Error()
			var ae *payroll.AssemblyError
			if errors.As(r.Err, &ae) {
				o.Stage = ae.Stage
			}
		}
		out = append(out, o)
	}
	if err := writeJSON(cmd, out); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d calculations failed", failed, len(results))
	}
	return nil
}
