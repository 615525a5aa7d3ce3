// Package schema maps free-form workbook header strings onto canonical fields.
package schema

import (
	"strings"
	"unicode"

	"github.com/vinodismyname/buzzlens/internal/model"
	"golang.org/x/text/width"
)

// Resolver resolves header strings. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	exact      map[string]model.Field
	normalized map[string]model.Field
}

// NewResolver builds a Resolver over a private copy of the given tables.
func NewResolver(a Aliases) *Resolver {
	r := &Resolver{
		exact:      make(map[string]model.Field, len(a.Exact)),
		normalized: make(map[string]model.Field, len(a.Normalized)),
	}
	for k, v := range a.Exact {
		r.exact[k] = v
	}
	for k, v := range a.Normalized {
		r.normalized[k] = v
	}
	return r
}

// Resolve returns the canonical field for a header. The second return is
// false for unresolved headers; unresolved is a normal outcome, not an error.
func (r *Resolver) Resolve(header string) (model.Field, bool) {
	if f, ok := r.exact[header]; ok {
		return f, true
	}
	n := Normalize(header)
	if n == "" {
		return "", false
	}
	if f, ok := r.normalized[n]; ok {
		return f, true
	}
	switch {
	case strings.Contains(n, "YOY"):
		return model.FieldBuzzYoY, true
	case strings.Contains(n, "MOM"):
		return model.FieldBuzzMoM, true
	}
	return "", false
}

// Mapping is the outcome of resolving a whole header row.
type Mapping struct {
	// Columns maps column index to field. When several headers resolve to the
	// same field the leftmost column wins and the others land in Duplicates.
	Columns    map[int]model.Field
	Unresolved []string
	Duplicates []string
}

// Has reports whether any column resolved to f.
func (m Mapping) Has(f model.Field) bool {
	for _, c := range m.Columns {
		if c == f {
			return true
		}
	}
	return false
}

// Missing lists the required fields no column resolved to, in RequiredFields order.
func (m Mapping) Missing() []model.Field {
	var out []model.Field
	for _, f := range model.RequiredFields {
		if !m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// ResolveHeaders resolves every non-blank header cell of a row.
func (r *Resolver) ResolveHeaders(row []string) Mapping {
	m := Mapping{Columns: make(map[int]model.Field, len(row))}
	seen := make(map[model.Field]bool, len(row))
	for i, h := range row {
		if strings.TrimSpace(h) == "" {
			continue
		}
		f, ok := r.Resolve(h)
		if !ok {
			m.Unresolved = append(m.Unresolved, h)
			continue
		}
		if seen[f] {
			m.Duplicates = append(m.Duplicates, h)
			continue
		}
		seen[f] = true
		m.Columns[i] = f
	}
	return m
}

// Normalize folds a header to its lookup form: trimmed, full-width folded to
// half-width, whitespace and the separators _ - . removed, uppercased.
func Normalize(s string) string {
	s = width.Fold.String(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '_' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
