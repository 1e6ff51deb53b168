package filters

import (
	"errors"

	"advisor/internal/catalog"
	"advisor/internal/types"
)

// Chip is one removable filter value.
type Chip struct {
	Key   catalog.Param
	Value string
	Label string
}

// ChipGroup holds the chips of one filter key under its category title.
type ChipGroup struct {
	Key   catalog.Param
	Title string
	Chips []Chip
}

// Chips reduces s to chip groups, one per non-reserved key in key order.
// Values the catalog cannot resolve are left out and reported through the
// returned error, which wraps catalog.ErrCatalogMismatch.
func Chips(s *Set, c *catalog.Catalog) ([]ChipGroup, error) {
	var (
		groups []ChipGroup
		errs   []error
	)
	for _, key := range s.Keys() {
		if IsReserved(key) {
			continue
		}
		param := catalog.Param(key)
		cat, ok := c.Lookup(param)
		if !ok {
			errs = append(errs, &catalog.MismatchError{Param: param, KeyMissing: true})
			continue
		}
		raw, _ := s.Get(key)
		group := ChipGroup{Key: param, Title: cat.Title}
		for _, v := range types.SplitList(raw) {
			label, ok := cat.Label(v)
			if !ok {
				errs = append(errs, &catalog.MismatchError{Param: param, Value: v})
				continue
			}
			group.Chips = append(group.Chips, Chip{Key: param, Value: v, Label: label})
		}
		if len(group.Chips) > 0 {
			groups = append(groups, group)
		}
	}
	return groups, errors.Join(errs...)
}
