package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementRegistration MovementType = "registration"
	MovementTermination  MovementType = "termination"
	MovementSalaryChange MovementType = "salary_change"
	MovementRehire       MovementType = "rehire"
)

// Code is the two-digit movement code written to the detail record.
func (m MovementType) Code() (int, bool) {
	switch m {
	case MovementRegistration, MovementRehire:
		return 8, true
	case MovementSalaryChange:
		return 7, true
	case MovementTermination:
		return 2, true
	}
	return 0, false
}

// Salaried movements report the new base salary.
func (m MovementType) Salaried() bool {
	return m == MovementRegistration || m == MovementRehire || m == MovementSalaryChange
}

type Company struct {
	Registration string `json:"registration"`
	TaxID        string `json:"taxId"`
	Name         string `json:"name"`
}

type Movement struct {
	EmployeeNumber       string          `json:"employeeNumber"`
	SocialSecurityNumber string          `json:"socialSecurityNumber"`
	NationalID           string          `json:"nationalId"`
	PaternalSurname      string          `json:"paternalSurname"`
	MaternalSurname      string          `json:"maternalSurname"`
	GivenNames           string          `json:"givenNames"`
	Type                 MovementType    `json:"type"`
	Date                 time.Time       `json:"date"`
	BaseSalary           decimal.Decimal `json:"baseSalary"`
	WorkerType           int             `json:"workerType"`
	TerminationCause     int             `json:"terminationCause"`
	FamilyMedicineUnit   int             `json:"familyMedicineUnit"`
}

// Counts mirrors the trailer record.
type Counts struct {
	Details       int `json:"details"`
	Registrations int `json:"registrations"`
	Terminations  int `json:"terminations"`
	SalaryChanges int `json:"salaryChanges"`
	Rehires       int `json:"rehires"`
}

func (c *Counts) add(m MovementType) {
	c.Details++
	switch m {
	case MovementRegistration:
		c.Registrations++
	case MovementTermination:
		c.Terminations++
	case MovementSalaryChange:
		c.SalaryChanges++
	case MovementRehire:
		c.Rehires++
	}
}

// Skipped records a movement left out of the file.
type Skipped struct {
	Index          int    `json:"index"`
	EmployeeNumber string `json:"employeeNumber"`
	Reason         string `json:"reason"`
}

// Overflow records a field value that was truncated to fit its width.
type Overflow struct {
	Record string `json:"record"`
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Width  int    `json:"width"`
}

type File struct {
	Content   []byte     `json:"-"`
	Counts    Counts     `json:"counts"`
	Skipped   []Skipped  `json:"skipped"`
	Overflows []Overflow `json:"overflows"`
}
