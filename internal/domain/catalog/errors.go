package catalog

import "errors"

var (
	ErrNotFound     = errors.New("reference data not found for effective date")
	ErrInvalidTable = errors.New("invalid bracket table")
	ErrInvalidData  = errors.New("invalid catalog data")
)
