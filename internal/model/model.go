// Package model defines the typed records and result shapes shared by the
// ingestion, query and insights packages.
package model

// Field is a canonical column of the listening workbook.
type Field string

const (
	FieldYear                Field = "year"
	FieldMonth               Field = "month"
	FieldCategory            Field = "category"
	FieldKeyword             Field = "keyword"
	FieldBuzzChannelA        Field = "buzz_channel_a"
	FieldBuzzChannelB        Field = "buzz_channel_b"
	FieldBuzzTotal           Field = "buzz_total"
	FieldBuzzYoY             Field = "buzz_yoy"
	FieldBuzzMoM             Field = "buzz_mom"
	FieldSearchChannelA      Field = "search_channel_a"
	FieldSearchChannelAVsRef Field = "search_channel_a_vs_ref"
	FieldSearchChannelB      Field = "search_channel_b"
	FieldSearchChannelBVsRef Field = "search_channel_b_vs_ref"
	FieldQuadrant            Field = "quadrant"
)

// Fields lists every canonical field in export order.
var Fields = []Field{
	FieldYear, FieldMonth, FieldCategory, FieldKeyword,
	FieldBuzzChannelA, FieldBuzzChannelB, FieldBuzzTotal, FieldBuzzYoY, FieldBuzzMoM,
	FieldSearchChannelA, FieldSearchChannelAVsRef, FieldSearchChannelB, FieldSearchChannelBVsRef,
	FieldQuadrant,
}

// RequiredFields must be present in a header row for an import to be complete.
// Missing ones are reported as warnings, not errors.
var RequiredFields = []Field{FieldYear, FieldMonth, FieldCategory, FieldKeyword, FieldBuzzTotal}

// Valid reports whether f is one of the canonical fields.
func (f Field) Valid() bool {
	for _, c := range Fields {
		if c == f {
			return true
		}
	}
	return false
}

// Numeric reports whether the field holds a float metric.
func (f Field) Numeric() bool {
	switch f {
	case FieldBuzzChannelA, FieldBuzzChannelB, FieldBuzzTotal, FieldBuzzYoY, FieldBuzzMoM,
		FieldSearchChannelA, FieldSearchChannelAVsRef, FieldSearchChannelB, FieldSearchChannelBVsRef:
		return true
	}
	return false
}

// Ratio reports whether the field is a fractional change stored as e.g. 0.15.
func (f Field) Ratio() bool {
	return f == FieldBuzzYoY || f == FieldBuzzMoM
}

// Record is one canonicalized data row.
type Record struct {
	Year                int     `json:"year"`
	Month               Month   `json:"month"`
	Category            string  `json:"category"`
	Keyword             string  `json:"keyword"`
	BuzzChannelA        float64 `json:"buzz_channel_a"`
	BuzzChannelB        float64 `json:"buzz_channel_b"`
	BuzzTotal           float64 `json:"buzz_total"`
	BuzzYoY             float64 `json:"buzz_yoy"`
	BuzzMoM             float64 `json:"buzz_mom"`
	SearchChannelA      float64 `json:"search_channel_a"`
	SearchChannelAVsRef float64 `json:"search_channel_a_vs_ref"`
	SearchChannelB      float64 `json:"search_channel_b"`
	SearchChannelBVsRef float64 `json:"search_channel_b_vs_ref"`
	Quadrant            string  `json:"quadrant"`
}

// Search is the combined search volume over both channels.
func (r Record) Search() float64 { return r.SearchChannelA + r.SearchChannelB }

// Number returns the value of a numeric field; non-numeric fields yield 0.
func (r Record) Number(f Field) float64 {
	switch f {
	case FieldBuzzChannelA:
		return r.BuzzChannelA
	case FieldBuzzChannelB:
		return r.BuzzChannelB
	case FieldBuzzTotal:
		return r.BuzzTotal
	case FieldBuzzYoY:
		return r.BuzzYoY
	case FieldBuzzMoM:
		return r.BuzzMoM
	case FieldSearchChannelA:
		return r.SearchChannelA
	case FieldSearchChannelAVsRef:
		return r.SearchChannelAVsRef
	case FieldSearchChannelB:
		return r.SearchChannelB
	case FieldSearchChannelBVsRef:
		return r.SearchChannelBVsRef
	}
	return 0
}

// SetNumber assigns a numeric field. Non-numeric fields are ignored.
func (r *Record) SetNumber(f Field, v float64) {
	switch f {
	case FieldBuzzChannelA:
		r.BuzzChannelA = v
	case FieldBuzzChannelB:
		r.BuzzChannelB = v
	case FieldBuzzTotal:
		r.BuzzTotal = v
	case FieldBuzzYoY:
		r.BuzzYoY = v
	case FieldBuzzMoM:
		r.BuzzMoM = v
	case FieldSearchChannelA:
		r.SearchChannelA = v
	case FieldSearchChannelAVsRef:
		r.SearchChannelAVsRef = v
	case FieldSearchChannelB:
		r.SearchChannelB = v
	case FieldSearchChannelBVsRef:
		r.SearchChannelBVsRef = v
	}
}

// Before reports whether r is chronologically earlier than o by (year, month ordinal).
func (r Record) Before(o Record) bool {
	if r.Year != o.Year {
		return r.Year < o.Year
	}
	return r.Month.Ordinal() < o.Month.Ordinal()
}

// ToPercent converts a stored ratio to its display percentage.
// Only presentation code calls it; records always keep the fraction.
func ToPercent(x float64) float64 { return x * 100 }
