package query

import (
	"sort"

	"github.com/vinodismyname/buzzlens/internal/model"
)

type groupKey struct {
	year     int
	month    model.Month
	category string
}

// Trend groups records by (year, month, category) and emits one point per
// group in ascending (year, month ordinal) order. The metric is summed per
// group; yoy is summed as percentage values. Within a period, categories
// follow first-seen order, or the allowlist order when one is given (and
// categories outside the allowlist are dropped).
func Trend(records []model.Record, metric model.Metric, allowlist []string) []model.AggregatedPoint {
	rank := make(map[string]int)
	for i, c := range allowlist {
		if _, ok := rank[c]; !ok {
			rank[c] = i
		}
	}
	restricted := len(rank) > 0

	sums := make(map[groupKey]float64)
	var order []groupKey
	for _, r := range records {
		if restricted {
			if _, ok := rank[r.Category]; !ok {
				continue
			}
		} else if _, ok := rank[r.Category]; !ok {
			rank[r.Category] = len(rank)
		}
		k := groupKey{year: r.Year, month: r.Month, category: r.Category}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		if metric == model.MetricYoY {
			sums[k] += model.ToPercent(r.BuzzYoY)
		} else {
			sums[k] += metric.Of(r)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.year != b.year {
			return a.year < b.year
		}
		if ao, bo := a.month.Ordinal(), b.month.Ordinal(); ao != bo {
			return ao < bo
		}
		return rank[a.category] < rank[b.category]
	})

	out := make([]model.AggregatedPoint, 0, len(order))
	for _, k := range order {
		out = append(out, model.AggregatedPoint{Year: k.year, Month: k.month, Category: k.category, Value: sums[k]})
	}
	return out
}

// Series extracts one category's values from a trend, preserving order.
func Series(points []model.AggregatedPoint, category string) []float64 {
	var out []float64
	for _, p := range points {
		if p.Category == category {
			out = append(out, p.Value)
		}
	}
	return out
}

// TopN ranks the snapshot by metric, descending, and keeps the first n.
// Equal values have no defined relative order.
func TopN(s Snapshot, metric model.Metric, n int) []model.ChartDataPoint {
	if n <= 0 {
		return nil
	}
	recs := s.Records()
	sort.SliceStable(recs, func(i, j int) bool {
		return metric.Of(recs[i]) > metric.Of(recs[j])
	})
	if n > len(recs) {
		n = len(recs)
	}
	out := make([]model.ChartDataPoint, 0, n)
	for _, r := range recs[:n] {
		out = append(out, model.PointOf(r))
	}
	return out
}

// Summary is the headline block for a filtered view.
type Summary struct {
	TotalBuzz    float64 `json:"total_buzz"`
	AvgYoY       float64 `json:"avg_yoy" jsonschema_description:"Mean YoY over all filtered rows, in percent"`
	TotalSearch  float64 `json:"total_search"`
	KeywordCount int     `json:"keyword_count" jsonschema_description:"Distinct keywords in the latest snapshot"`
	RecordCount  int     `json:"record_count"`
}

// Summarize computes totals over the filtered rows as given (no de-dup);
// only KeywordCount looks at the latest snapshot.
func Summarize(filtered []model.Record) Summary {
	s := Summary{RecordCount: len(filtered)}
	var yoy float64
	for _, r := range filtered {
		s.TotalBuzz += r.BuzzTotal
		s.TotalSearch += r.Search()
		yoy += model.ToPercent(r.BuzzYoY)
	}
	if len(filtered) > 0 {
		s.AvgYoY = yoy / float64(len(filtered))
	}
	s.KeywordCount = len(LatestPerKeyword(filtered))
	return s
}
