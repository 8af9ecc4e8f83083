package catalog

import (
	"sort"
	"time"
)

// Dated is reference data valid from a date, optionally until an inclusive end date.
type Dated interface {
	Effective() (from time.Time, to *time.Time)
}

// Index answers "most recent row at or before date" with a binary search.
type Index[T Dated] struct {
	items []T
}

func NewIndex[T Dated](items []T) *Index[T] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		fi, _ := sorted[i].Effective()
		fj, _ := sorted[j].Effective()
		return fi.Before(fj)
	})
	return &Index[T]{items: sorted}
}

func (ix *Index[T]) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.items)
}

func (ix *Index[T]) At(date time.Time) (T, error) {
	var zero T
	if ix == nil || len(ix.items) == 0 {
		return zero, ErrNotFound
	}
	day := truncateDay(date)
	idx := sort.Search(len(ix.items), func(i int) bool {
		from, _ := ix.items[i].Effective()
		return truncateDay(from).After(day)
	})
	if idx == 0 {
		return zero, ErrNotFound
	}
	item := ix.items[idx-1]
	if _, to := item.Effective(); to != nil && day.After(truncateDay(*to)) {
		return zero, ErrNotFound
	}
	return item, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
