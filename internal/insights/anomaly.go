package insights

import (
	"math"
	"sort"

	"github.com/vinodismyname/buzzlens/internal/model"
)

// minAnomalyHistory is the fewest observations a keyword needs to be scored.
const minAnomalyHistory = 3

// DetectAnomalies scores each observation against the rest of its keyword's
// history: deviation = (value - mean(others)) / σ(others), with σ raised to
// AnomalySigmaFloor*|mean(others)| when the others are (nearly) flat.
// |deviation| above AnomalyHighSigma is high, above AnomalyMediumSigma medium.
// Results are ordered by |deviation| descending. Yoy values are reported as
// the stored fraction.
func (t Thresholds) DetectAnomalies(records []model.Record, metric model.Metric) []model.AnomalyRecord {
	byKeyword := make(map[string][]model.Record)
	var order []string
	for _, r := range records {
		if _, ok := byKeyword[r.Keyword]; !ok {
			order = append(order, r.Keyword)
		}
		byKeyword[r.Keyword] = append(byKeyword[r.Keyword], r)
	}

	var out []model.AnomalyRecord
	for _, kw := range order {
		series := byKeyword[kw]
		if len(series) < minAnomalyHistory {
			continue
		}
		sort.SliceStable(series, func(i, j int) bool { return series[i].Before(series[j]) })

		values := make([]float64, len(series))
		for i, r := range series {
			values[i] = metric.Of(r)
		}
		others := make([]float64, 0, len(values)-1)
		for i, v := range values {
			others = append(others[:0], values[:i]...)
			others = append(others, values[i+1:]...)
			m := mean(others)
			sigma := math.Max(stddev(others), t.AnomalySigmaFloor*math.Abs(m))
			if sigma == 0 {
				continue
			}
			dev := (v - m) / sigma
			var sev model.Severity
			switch a := math.Abs(dev); {
			case a > t.AnomalyHighSigma:
				sev = model.SeverityHigh
			case a > t.AnomalyMediumSigma:
				sev = model.SeverityMedium
			default:
				continue
			}
			out = append(out, model.AnomalyRecord{
				Keyword:   kw,
				Year:      series[i].Year,
				Month:     series[i].Month,
				Metric:    metric,
				Value:     v,
				Deviation: round2(dev),
				Severity:  sev,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Deviation), math.Abs(out[j].Deviation)
		if ai != aj {
			return ai > aj
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}
