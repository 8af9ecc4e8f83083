package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"hrpay/internal/domain/statutory"
)

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringP("input", "i", "-", "JSON file with the company and its movements")
	encodeCmd.Flags().StringP("output", "o", "", "Write the file here instead of stdout")
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode affiliation movements as a fixed-width statutory file",
	Long: `Encode reads {"company": {...}, "fileDate": "YYYY-MM-DD", "movements": [...]}
and writes the header, detail and trailer records. Skipped movements and
truncated fields are reported on stderr.`,
	Args: cobra.NoArgs,
	RunE: runEncode,
}

type movementInput struct {
	EmployeeNumber       string          `json:"employeeNumber"`
	SocialSecurityNumber string          `json:"socialSecurityNumber"`
	NationalID           string          `json:"nationalId"`
	PaternalSurname      string          `json:"paternalSurname"`
	MaternalSurname      string          `json:"maternalSurname"`
	GivenNames           string          `json:"givenNames"`
	Type                 string          `json:"type"`
	Date                 string          `json:"date"`
	BaseSalary           decimal.Decimal `json:"baseSalary"`
	WorkerType           int             `json:"workerType"`
	TerminationCause     int             `json:"terminationCause"`
	FamilyMedicineUnit   int             `json:"familyMedicineUnit"`
}

func runEncode(cmd *cobra.Command, _ []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	raw, err := readInput(cmd, inputPath)
	if err != nil {
		return err
	}
	var input struct {
		Company   statutory.Company `json:"company"`
		FileDate  string            `json:"fileDate"`
		Movements []movementInput   `json:"movements"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	fileDate := time.Now().UTC()
	if input.FileDate != "" {
		if fileDate, err = parseDay("fileDate", input.FileDate); err != nil {
			return err
		}
	}
	movements := make([]statutory.Movement, 0, len(input.Movements))
	for i, m := range input.Movements {
		var date time.Time
		if m.Date != "" {
			if date, err = parseDay(fmt.Sprintf("movements[%d].date", i), m.Date); err != nil {
				return err
			}
		}
		movements = append(movements, statutory.Movement{
			EmployeeNumber:       m.EmployeeNumber,
			SocialSecurityNumber: m.SocialSecurityNumber,
			NationalID:           m.NationalID,
			PaternalSurname:      m.PaternalSurname,
			MaternalSurname:      m.MaternalSurname,
			GivenNames:           m.GivenNames,
			Type:                 statutory.MovementType(m.Type),
			Date:                 date,
			BaseSalary:           m.BaseSalary,
			WorkerType:           m.WorkerType,
			TerminationCause:     m.TerminationCause,
			FamilyMedicineUnit:   m.FamilyMedicineUnit,
		})
	}

	file, err := statutory.Encode(input.Company, fileDate, movements)
	if err != nil {
		return err
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, file.Content, 0o644); err != nil {
			return err
		}
	} else if _, err := cmd.OutOrStdout().Write(file.Content); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "details: %d (registrations %d, terminations %d, salary changes %d, rehires %d)\n",
		file.Counts.Details, file.Counts.Registrations, file.Counts.Terminations, file.Counts.SalaryChanges, file.Counts.Rehires)
	for _, s := range file.Skipped {
		fmt.Fprintf(stderr, "skipped movement %d (%s): %s\n", s.Index, s.EmployeeNumber, s.Reason)
	}
	for _, o := range file.Overflows {
		fmt.Fprintf(stderr, "truncated %s %d field %s to %d characters\n", o.Record, o.Index, o.Field, o.Width)
	}
	return nil
}
