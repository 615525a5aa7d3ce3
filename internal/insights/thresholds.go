// Package insights computes the statistical views over a record set:
// correlation, anomalies, category rollups, trend direction, scale hints,
// concentration and mix shift. Everything here is pure and recomputed from
// its inputs on every call.
package insights

import (
	"math"

	"github.com/vinodismyname/buzzlens/config"
)

// Thresholds tunes the classifiers in this package.
type Thresholds struct {
	AnomalyHighSigma     float64
	AnomalyMediumSigma   float64
	AnomalySigmaFloor    float64 // fraction of |mean| used when a history has no spread
	LogScaleMultiplier   float64
	CorrelationStrong    float64
	CorrelationMedium    float64
	TrendSlopeNoiseRatio float64
}

// DefaultThresholds mirrors the config defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AnomalyHighSigma:     config.DefaultAnomalyHighSigma,
		AnomalyMediumSigma:   config.DefaultAnomalyMediumSigma,
		AnomalySigmaFloor:    config.DefaultAnomalySigmaFloor,
		LogScaleMultiplier:   config.DefaultLogScaleMultiplier,
		CorrelationStrong:    config.DefaultCorrelationStrong,
		CorrelationMedium:    config.DefaultCorrelationMedium,
		TrendSlopeNoiseRatio: config.DefaultTrendSlopeNoiseRatio,
	}
}

// FromConfig copies the analytic thresholds out of the loaded config.
func FromConfig(c config.ThresholdsConfig) Thresholds {
	return Thresholds{
		AnomalyHighSigma:     c.AnomalyHighSigma,
		AnomalyMediumSigma:   c.AnomalyMediumSigma,
		AnomalySigmaFloor:    c.AnomalySigmaFloor,
		LogScaleMultiplier:   c.LogScaleMultiplier,
		CorrelationStrong:    c.CorrelationStrong,
		CorrelationMedium:    c.CorrelationMedium,
		TrendSlopeNoiseRatio: c.TrendSlopeNoiseRatio,
	}
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round3(x float64) float64 { return math.Round(x*1000) / 1000 }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
