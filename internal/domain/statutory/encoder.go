package statutory

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hrpay/internal/domain/money"
)

const lineEnd = "\r\n"

// Encode writes the header, one detail line per valid movement in input order, and a
// trailer whose counts cover exactly the emitted detail lines. Invalid movements are
// skipped and reported; oversized fields are truncated and reported.
func Encode(company Company, fileDate time.Time, movements []Movement) (File, error) {
	if strings.TrimSpace(company.Registration) == "" {
		return File{}, fmt.Errorf("%w: company %q has no employer registration", ErrMissingRegistration, company.Name)
	}

	var (
		out  File
		buf  bytes.Buffer
		kind = "header"
		idx  = 0
	)
	overflow := func(field, value string, width int) {
		out.Overflows = append(out.Overflows, Overflow{Record: kind, Index: idx, Field: field, Value: value, Width: width})
		slog.Warn("statutory field truncated", "record", kind, "index", idx, "field", field, "width", width, "err", ErrFieldOverflow)
	}

	buf.WriteString(header(company, fileDate, overflow))
	buf.WriteString(lineEnd)

	kind = "detail"
	for i, m := range movements {
		idx = i
		if err := check(m); err != nil {
			out.Skipped = append(out.Skipped, Skipped{Index: i, EmployeeNumber: m.EmployeeNumber, Reason: err.Error()})
			slog.Warn("statutory movement skipped", "index", i, "employeeNumber", m.EmployeeNumber, "err", err)
			continue
		}
		buf.WriteString(detail(company, m, overflow))
		buf.WriteString(lineEnd)
		out.Counts.add(m.Type)
	}

	kind, idx = "trailer", 0
	buf.WriteString(trailer(company, out.Counts, overflow))
	buf.WriteString(lineEnd)

	out.Content = buf.Bytes()
	return out, nil
}

func check(m Movement) error {
	if _, ok := m.Type.Code(); !ok {
		return fmt.Errorf("%w: unknown movement type %q", ErrMissingField, m.Type)
	}
	if onlyDigits(m.SocialSecurityNumber) == "" {
		return fmt.Errorf("%w: social security number", ErrMissingField)
	}
	if strings.TrimSpace(m.NationalID) == "" {
		return fmt.Errorf("%w: national id", ErrMissingField)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("%w: movement date", ErrMissingField)
	}
	if m.Type.Salaried() && !m.BaseSalary.IsPositive() {
		return fmt.Errorf("%w: base salary", ErrMissingField)
	}
	if m.Type == MovementTermination && m.TerminationCause <= 0 {
		return fmt.Errorf("%w: termination cause", ErrMissingField)
	}
	return nil
}

func header(c Company, fileDate time.Time, overflow overflowFunc) string {
	r := newRecord(headerWidth, overflow)
	r.put(1, 1, "H")
	r.text("employerRegistration", 2, 12, c.Registration)
	r.text("companyTaxId", 13, 25, c.TaxID)
	r.text("companyName", 26, 75, c.Name)
	r.put(76, 83, fileDate.Format("20060102"))
	return r.String()
}

func detail(c Company, m Movement, overflow overflowFunc) string {
	code, _ := m.Type.Code()
	r := newRecord(detailWidth, overflow)
	r.put(1, 1, "D")
	r.text("employerRegistration", 2, 12, c.Registration)
	r.digits("socialSecurityNumber", 13, 23, m.SocialSecurityNumber)
	r.text("nationalId", 24, 41, m.NationalID)
	r.text("paternalSurname", 42, 68, m.PaternalSurname)
	r.text("maternalSurname", 69, 95, m.MaternalSurname)
	r.text("givenNames", 96, 122, m.GivenNames)
	r.numeric("movementCode", 123, 124, int64(code))
	r.put(125, 132, m.Date.Format("02012006"))
	var cents int64
	if m.Type.Salaried() {
		cents = money.Cents(m.BaseSalary)
	}
	r.numeric("baseSalary", 133, 139, cents)
	r.numeric("workerType", 140, 140, int64(m.WorkerType))
	var cause int64
	if m.Type == MovementTermination {
		cause = int64(m.TerminationCause)
	}
	r.numeric("terminationCause", 141, 141, cause)
	r.numeric("familyMedicineUnit", 142, 144, int64(m.FamilyMedicineUnit))
	r.text("employeeNumber", 145, 154, m.EmployeeNumber)
	return r.String()
}

func trailer(c Company, counts Counts, overflow overflowFunc) string {
	r := newRecord(trailerWidth, overflow)
	r.put(1, 1, "T")
	r.text("employerRegistration", 2, 12, c.Registration)
	r.numeric("detailCount", 13, 18, int64(counts.Details))
	r.numeric("registrations", 19, 24, int64(counts.Registrations))
	r.numeric("terminations", 25, 30, int64(counts.Terminations))
	r.numeric("salaryChanges", 31, 36, int64(counts.SalaryChanges))
	r.numeric("rehires", 37, 42, int64(counts.Rehires))
	return r.String()
}
