// Package query filters, de-duplicates and aggregates record sets. Every
// function is pure: inputs are never mutated and results are fresh slices.
package query

import (
	"strings"

	"github.com/vinodismyname/buzzlens/internal/model"
)

// Filter returns the records matching every predicate of c, in input order.
func Filter(records []model.Record, c model.FilterCriteria) []model.Record {
	cats := set(c.Categories)
	quads := set(c.Quadrants)
	mons := make(map[model.Month]struct{}, len(c.Months))
	for _, m := range c.Months {
		mons[m] = struct{}{}
	}
	needle := strings.ToLower(strings.TrimSpace(c.Keyword))

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if len(cats) > 0 {
			if _, ok := cats[r.Category]; !ok {
				continue
			}
		}
		if c.Year != nil && r.Year != *c.Year {
			continue
		}
		if len(mons) > 0 {
			if _, ok := mons[r.Month]; !ok {
				continue
			}
		}
		if len(quads) > 0 {
			if _, ok := quads[r.Quadrant]; !ok {
				continue
			}
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.Keyword), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func set(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}
