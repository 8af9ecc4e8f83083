package payroll

import (
	"errors"
	"fmt"

	"hrpay/internal/domain/catalog"
	"hrpay/internal/domain/money"
)

var (
	ErrUnknownCatalogCode = errors.New("unknown catalog code")
	ErrInvalidPeriod      = errors.New("invalid pay period")
	ErrInvalidRiskClass   = errors.New("invalid risk class")

	ErrInvalidAmount = money.ErrInvalidAmount
	ErrNotFound      = catalog.ErrNotFound
)

// AssemblyError attaches the employee and the failing stage to a calculation error.
type AssemblyError struct {
	EmployeeID string
	Stage      Stage
	Err        error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("payroll for employee %s failed while %s: %v", e.EmployeeID, e.Stage, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}
