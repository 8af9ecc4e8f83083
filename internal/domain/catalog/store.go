package catalog

import "hrpay/internal/platform/querier"

// PGStore reads reference data from the catalog tables.
type PGStore struct {
	DB querier.Querier
}

func NewPGStore(db querier.Querier) *PGStore {
	return &PGStore{DB: db}
}
