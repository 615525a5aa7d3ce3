package ingest

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// parseNumber reads a cell as a float regardless of locale formatting:
// thousands separators, currency marks and surrounding spaces are dropped and
// a trailing % divides by 100. Blank cells report ok=false with blank=true.
func parseNumber(s string) (v float64, blank, ok bool) {
	s = strings.TrimSpace(width.Fold.String(s))
	if s == "" || s == "-" {
		return 0, true, false
	}
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', '\u00a5', '\uffe5', ' ', '\u00a0':
			return -1
		default:
			return r
		}
	}, s)
	if strings.HasSuffix(clean, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(clean, "%"), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, false
		}
		return f / 100.0, false, true
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, false
	}
	return f, false, true
}

// parseYear accepts "2024", "2024.0" and "2024年".
func parseYear(s string) (year int, blank, ok bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "年")
	f, blank, ok := parseNumber(s)
	if !ok {
		return 0, blank, false
	}
	if f != math.Trunc(f) || f < 0 || f > 9999 {
		return 0, false, false
	}
	return int(f), false, true
}
