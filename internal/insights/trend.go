package insights

import (
	"math"

	"github.com/vinodismyname/buzzlens/config"
)

// TrendDirection is the sign of a series' fitted slope once noise is discounted.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TrendClass describes a fitted linear trend.
type TrendClass struct {
	Direction  TrendDirection `json:"direction"`
	Slope      float64        `json:"slope"`
	Confidence float64        `json:"confidence" jsonschema_description:"R-squared of the linear fit, 0..1"`
}

// ClassifyTrend fits a least-squares line over x = 0..n-1. The slope counts
// as up or down only when it exceeds TrendSlopeNoiseRatio times the series'
// standard deviation. ok is false for fewer than config.DefaultTrendMinPoints points.
func (t Thresholds) ClassifyTrend(series []float64) (tc TrendClass, ok bool) {
	n := len(series)
	if n < config.DefaultTrendMinPoints {
		return TrendClass{}, false
	}
	sd := stddev(series)
	if sd == 0 {
		return TrendClass{Direction: TrendStable, Confidence: 1}, true
	}

	xm := float64(n-1) / 2
	ym := mean(series)
	var sxy, sxx float64
	for i, y := range series {
		dx := float64(i) - xm
		sxy += dx * (y - ym)
		sxx += dx * dx
	}
	slope := sxy / sxx
	intercept := ym - slope*xm

	var ssRes, ssTot float64
	for i, y := range series {
		fit := intercept + slope*float64(i)
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - ym) * (y - ym)
	}
	r2 := math.Max(0, math.Min(1, 1-ssRes/ssTot))

	dir := TrendStable
	noise := t.TrendSlopeNoiseRatio * sd
	switch {
	case slope > noise:
		dir = TrendUp
	case slope < -noise:
		dir = TrendDown
	}
	return TrendClass{Direction: dir, Slope: round3(slope), Confidence: round3(r2)}, true
}

// RecommendLogScale reports whether max/min over the positive values exceeds
// multiplier. Series without positive values never need a log axis.
func RecommendLogScale(series []float64, multiplier float64) bool {
	minPos, maxPos := math.Inf(1), 0.0
	for _, v := range series {
		if v <= 0 {
			continue
		}
		minPos = math.Min(minPos, v)
		maxPos = math.Max(maxPos, v)
	}
	if maxPos == 0 {
		return false
	}
	return maxPos/minPos > multiplier
}

// RecommendLogScale applies the configured multiplier.
func (t Thresholds) RecommendLogScale(series []float64) bool {
	return RecommendLogScale(series, t.LogScaleMultiplier)
}
