// Package months canonicalizes the month column, which arrives as integers,
// "N月" strings, zero-padded numbers or English names depending on who
// exported the workbook.
package months

import (
	"math"
	"strconv"
	"strings"

	"github.com/vinodismyname/buzzlens/internal/model"
	"golang.org/x/text/width"
)

// Table maps lowercase month names to canonical tokens.
type Table map[string]model.Month

// DefaultTable covers full and abbreviated English names plus "Sept".
func DefaultTable() Table {
	t := Table{"sept": model.September}
	full := []string{"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"}
	for i, name := range full {
		m := model.Months[i]
		t[name] = m
		t[strings.ToLower(string(m))] = m
	}
	return t
}

// Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	names Table
}

// New builds a Normalizer over a copy of t. A nil table uses DefaultTable.
func New(t Table) *Normalizer {
	if t == nil {
		t = DefaultTable()
	}
	names := make(Table, len(t))
	for k, v := range t {
		names[strings.ToLower(k)] = v
	}
	return &Normalizer{names: names}
}

// Normalize returns the canonical token for raw. Inputs it cannot recognize
// come back unchanged as Month(trimmed string form); use Known to detect that.
func (n *Normalizer) Normalize(raw any) model.Month {
	switch v := raw.(type) {
	case nil:
		return ""
	case model.Month:
		return n.fromString(string(v))
	case string:
		return n.fromString(v)
	case int:
		return fromInt(int64(v), strconv.Itoa(v))
	case int8:
		return fromInt(int64(v), strconv.FormatInt(int64(v), 10))
	case int16:
		return fromInt(int64(v), strconv.FormatInt(int64(v), 10))
	case int32:
		return fromInt(int64(v), strconv.FormatInt(int64(v), 10))
	case int64:
		return fromInt(v, strconv.FormatInt(v, 10))
	case uint:
		return fromInt(int64(v), strconv.FormatUint(uint64(v), 10))
	case uint8:
		return fromInt(int64(v), strconv.FormatUint(uint64(v), 10))
	case uint16:
		return fromInt(int64(v), strconv.FormatUint(uint64(v), 10))
	case uint32:
		return fromInt(int64(v), strconv.FormatUint(uint64(v), 10))
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	}
	return ""
}

// Known reports whether m is one of the twelve canonical tokens.
func (n *Normalizer) Known(m model.Month) bool { return m.Canonical() }

func (n *Normalizer) fromString(s string) model.Month {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	folded := width.Fold.String(s)
	digits := strings.TrimSuffix(folded, "月")
	if i, err := strconv.Atoi(strings.TrimSpace(digits)); err == nil {
		if m, ok := model.MonthOf(i); ok {
			return m
		}
		return model.Month(s)
	}
	// spreadsheet cells sometimes carry integral floats as text ("3.0")
	if f, err := strconv.ParseFloat(digits, 64); err == nil && f == math.Trunc(f) {
		if m, ok := model.MonthOf(int(f)); ok {
			return m
		}
		return model.Month(s)
	}
	if m, ok := n.names[strings.ToLower(strings.TrimSuffix(folded, "."))]; ok {
		return m
	}
	return model.Month(s)
}

func fromInt(v int64, text string) model.Month {
	if v >= 1 && v <= 12 {
		m, _ := model.MonthOf(int(v))
		return m
	}
	return model.Month(text)
}

func fromFloat(v float64) model.Month {
	if v == math.Trunc(v) && v >= 1 && v <= 12 {
		m, _ := model.MonthOf(int(v))
		return m
	}
	return model.Month(strconv.FormatFloat(v, 'f', -1, 64))
}
