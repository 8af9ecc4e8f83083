package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Validate checks the rows are contiguous and increasing, with only the last row unbounded.
func (t BracketTable) Validate() error {
	if len(t.Rows) == 0 {
		return fmt.Errorf("%w: %s/%s has no rows", ErrInvalidTable, t.Kind, t.Key)
	}
	for i, row := range t.Rows {
		last := i == len(t.Rows)-1
		if row.UpperBound == nil {
			if !last {
				return fmt.Errorf("%w: %s/%s row %d is unbounded but not last", ErrInvalidTable, t.Kind, t.Key, i)
			}
			continue
		}
		if !row.UpperBound.GreaterThan(row.LowerBound) {
			return fmt.Errorf("%w: %s/%s row %d upper bound must exceed lower bound", ErrInvalidTable, t.Kind, t.Key, i)
		}
		if !last && !row.UpperBound.Equal(t.Rows[i+1].LowerBound) {
			return fmt.Errorf("%w: %s/%s row %d is not contiguous with row %d", ErrInvalidTable, t.Kind, t.Key, i, i+1)
		}
	}
	return nil
}

// Select returns the row with lowerBound <= x < upperBound.
// It reports false when x is below the first row.
func (t BracketTable) Select(x decimal.Decimal) (Bracket, bool) {
	// first row whose lower bound is greater than x; the candidate precedes it
	idx := sort.Search(len(t.Rows), func(i int) bool {
		return t.Rows[i].LowerBound.GreaterThan(x)
	})
	if idx == 0 {
		return Bracket{}, false
	}
	row := t.Rows[idx-1]
	if !row.Contains(x) {
		return Bracket{}, false
	}
	return row, true
}
