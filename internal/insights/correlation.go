package insights

import (
	"math"
	"sort"

	"github.com/vinodismyname/buzzlens/internal/model"
)

// DefaultCorrelationMetrics is the metric set used when the caller names none.
var DefaultCorrelationMetrics = []model.Field{
	model.FieldBuzzTotal, model.FieldBuzzYoY, model.FieldBuzzMoM,
	model.FieldSearchChannelA, model.FieldSearchChannelB,
}

// Correlate builds a Pearson matrix over the given numeric fields. The
// diagonal is 1.0; pairs where either side has zero variance report 0.
func Correlate(records []model.Record, fields []model.Field) model.CorrelationMatrix {
	if len(fields) == 0 {
		fields = DefaultCorrelationMetrics
	}
	cols := make([][]float64, len(fields))
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = string(f)
		col := make([]float64, len(records))
		for j, r := range records {
			col[j] = r.Number(f)
		}
		cols[i] = col
	}

	m := make([][]float64, len(fields))
	for i := range m {
		m[i] = make([]float64, len(fields))
		m[i][i] = 1
	}
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			r := pearson(cols[i], cols[j])
			m[i][j], m[j][i] = r, r
		}
	}
	return model.CorrelationMatrix{Labels: labels, Matrix: m}
}

func pearson(x, y []float64) float64 {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r))
}

// Strength bands a correlation coefficient.
type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthMedium Strength = "medium"
	StrengthWeak   Strength = "weak"
)

// Direction is the sign of a correlation.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionNone     Direction = "none"
)

// Strength classifies r using |r| against the strong/medium cutoffs (strict >).
func (t Thresholds) Strength(r float64) (Strength, Direction) {
	dir := DirectionNone
	switch {
	case r > 0:
		dir = DirectionPositive
	case r < 0:
		dir = DirectionNegative
	}
	a := math.Abs(r)
	switch {
	case a > t.CorrelationStrong:
		return StrengthStrong, dir
	case a > t.CorrelationMedium:
		return StrengthMedium, dir
	}
	return StrengthWeak, dir
}

// Pair is one off-diagonal matrix entry.
type Pair struct {
	A         string    `json:"a"`
	B         string    `json:"b"`
	R         float64   `json:"r"`
	Strength  Strength  `json:"strength"`
	Direction Direction `json:"direction"`
}

// TopPairs lists the upper-triangle pairs ordered by |r| descending, keeping n
// (all when n <= 0).
func (t Thresholds) TopPairs(cm model.CorrelationMatrix, n int) []Pair {
	var pairs []Pair
	for i := 0; i < len(cm.Labels); i++ {
		for j := i + 1; j < len(cm.Labels); j++ {
			r := cm.Matrix[i][j]
			s, d := t.Strength(r)
			pairs = append(pairs, Pair{A: cm.Labels[i], B: cm.Labels[j], R: round3(r), Strength: s, Direction: d})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if n > 0 && n < len(pairs) {
		pairs = pairs[:n]
	}
	return pairs
}
