package catalog

import (
	"context"
	"time"
)

// Store is the read-only reference data source. Every lookup returns the single
// row effective on date, or ErrNotFound.
type Store interface {
	ReferenceUnit(ctx context.Context, date time.Time) (ReferenceUnit, error)
	TaxTable(ctx context.Context, kind TableKind, key string, date time.Time) (BracketTable, error)
	Perceptions(ctx context.Context, date time.Time) (PerceptionCatalog, error)
	ContributionSchedule(ctx context.Context, date time.Time) (ContributionSchedule, error)
}
