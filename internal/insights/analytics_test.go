package insights

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/buzzlens/internal/model"
)

func series(kw string, buzz ...float64) []model.Record {
	out := make([]model.Record, 0, len(buzz))
	for i, b := range buzz {
		out = append(out, model.Record{Year: 2024, Month: model.Months[i%12], Category: "Tops", Keyword: kw, BuzzTotal: b})
	}
	return out
}

func TestCorrelate_SymmetricUnitDiagonal(t *testing.T) {
	recs := []model.Record{
		{BuzzTotal: 1, SearchChannelA: 2, BuzzYoY: 0.5},
		{BuzzTotal: 2, SearchChannelA: 4, BuzzYoY: 0.5},
		{BuzzTotal: 3, SearchChannelA: 6, BuzzYoY: 0.5},
	}
	cm := Correlate(recs, []model.Field{model.FieldBuzzTotal, model.FieldSearchChannelA, model.FieldBuzzYoY})
	require.Equal(t, []string{"buzz_total", "search_channel_a", "buzz_yoy"}, cm.Labels)
	for i := range cm.Matrix {
		require.Equal(t, 1.0, cm.Matrix[i][i])
		for j := range cm.Matrix {
			require.Equal(t, cm.Matrix[i][j], cm.Matrix[j][i])
		}
	}
	require.InDelta(t, 1.0, cm.Matrix[0][1], 1e-9)
	// constant column has no variance
	require.Equal(t, 0.0, cm.Matrix[0][2])
}

func TestCorrelate_DefaultsAndEmpty(t *testing.T) {
	cm := Correlate(nil, nil)
	require.Len(t, cm.Labels, len(DefaultCorrelationMetrics))
	require.Equal(t, 1.0, cm.Matrix[1][1])
	require.Equal(t, 0.0, cm.Matrix[0][1])
}

func TestStrengthBands(t *testing.T) {
	th := DefaultThresholds()
	s, d := th.Strength(0.71)
	require.Equal(t, StrengthStrong, s)
	require.Equal(t, DirectionPositive, d)

	s, _ = th.Strength(0.7)
	require.Equal(t, StrengthMedium, s)

	s, d = th.Strength(-0.5)
	require.Equal(t, StrengthMedium, s)
	require.Equal(t, DirectionNegative, d)

	s, d = th.Strength(0.4)
	require.Equal(t, StrengthWeak, s)
	require.Equal(t, DirectionPositive, d)

	_, d = th.Strength(0)
	require.Equal(t, DirectionNone, d)
}

func TestTopPairs_OrderedByMagnitude(t *testing.T) {
	cm := model.CorrelationMatrix{
		Labels: []string{"a", "b", "c"},
		Matrix: [][]float64{{1, 0.2, -0.9}, {0.2, 1, 0.5}, {-0.9, 0.5, 1}},
	}
	pairs := DefaultThresholds().TopPairs(cm, 2)
	require.Len(t, pairs, 2)
	require.Equal(t, "a", pairs[0].A)
	require.Equal(t, "c", pairs[0].B)
	require.Equal(t, StrengthStrong, pairs[0].Strength)
	require.Equal(t, DirectionNegative, pairs[0].Direction)
	require.Equal(t, 0.5, pairs[1].R)
}

func TestDetectAnomalies_SpikeIsHigh(t *testing.T) {
	recs := series("K", 100, 100, 100, 100, 500)
	got := DefaultThresholds().DetectAnomalies(recs, model.MetricBuzz)
	require.Len(t, got, 1)
	a := got[0]
	require.Equal(t, "K", a.Keyword)
	require.Equal(t, model.May, a.Month)
	require.Equal(t, 500.0, a.Value)
	require.Equal(t, model.SeverityHigh, a.Severity)
	require.Greater(t, a.Deviation, 3.0)
}

func TestDetectAnomalies_ChronologicalAndMedium(t *testing.T) {
	// history others: mean 100, sd 10 -> value 125 is 2.5σ
	recs := []model.Record{
		{Year: 2024, Month: model.April, Keyword: "K", BuzzTotal: 125},
		{Year: 2024, Month: model.January, Keyword: "K", BuzzTotal: 90},
		{Year: 2024, Month: model.February, Keyword: "K", BuzzTotal: 110},
		{Year: 2024, Month: model.March, Keyword: "K", BuzzTotal: 90},
		{Year: 2023, Month: model.December, Keyword: "K", BuzzTotal: 110},
	}
	got := DefaultThresholds().DetectAnomalies(recs, model.MetricBuzz)
	require.Len(t, got, 1)
	require.Equal(t, model.April, got[0].Month)
	require.Equal(t, model.SeverityMedium, got[0].Severity)
	require.InDelta(t, 2.5, got[0].Deviation, 1e-9)
}

func TestDetectAnomalies_SkipsShortAndFlatHistories(t *testing.T) {
	th := DefaultThresholds()
	require.Empty(t, th.DetectAnomalies(series("short", 1, 1000), model.MetricBuzz))
	require.Empty(t, th.DetectAnomalies(series("flat", 50, 50, 50, 50), model.MetricBuzz))
	require.Empty(t, th.DetectAnomalies(series("zero", 0, 0, 0, 0), model.MetricBuzz))
	require.Empty(t, th.DetectAnomalies(series("drift", 100, 100, 100, 104), model.MetricBuzz))
	require.Empty(t, th.DetectAnomalies(nil, model.MetricYoY))
}

func TestDetectAnomalies_YoYKeepsFraction(t *testing.T) {
	var recs []model.Record
	for i, y := range []float64{0.1, 0.1, 0.1, 0.1, 0.9} {
		recs = append(recs, model.Record{Year: 2024, Month: model.Months[i], Keyword: "K", BuzzYoY: y})
	}
	got := DefaultThresholds().DetectAnomalies(recs, model.MetricYoY)
	require.Len(t, got, 1)
	require.Equal(t, model.MetricYoY, got[0].Metric)
	require.Equal(t, 0.9, got[0].Value)
}

func TestCategoryRollup(t *testing.T) {
	recs := []model.Record{
		{Category: "Tops", Keyword: "a", BuzzTotal: 90, BuzzYoY: 0.10},
		{Category: "Tops", Keyword: "a", BuzzTotal: 9, BuzzYoY: 0.30},
		{Category: "Bottoms", Keyword: "b", BuzzTotal: 0, BuzzYoY: -0.5},
		{Category: "Shoes", Keyword: "c", BuzzTotal: 1, BuzzYoY: 0},
	}
	got := CategoryRollup(recs)
	require.Len(t, got, 3)
	require.Equal(t, "Tops", got[0].Category)
	require.Equal(t, 99.0, got[0].TotalBuzz)
	require.InDelta(t, 20.0, got[0].AvgYoY, 1e-9)
	require.Equal(t, 1, got[0].KeywordCount)
	require.InDelta(t, 99.0, got[0].ShareOfVoice, 1e-9)
	require.InDelta(t, 40.0, got[0].GrowthMomentum, 1e-9)

	require.Equal(t, "Shoes", got[1].Category)
	require.Equal(t, "Bottoms", got[2].Category)
	require.Equal(t, 0.0, got[2].GrowthMomentum)

	require.Empty(t, CategoryRollup(nil))
}

func TestCategoryRollup_SharesSumToHundred(t *testing.T) {
	recs := []model.Record{
		{Category: "Tops", Keyword: "a", BuzzTotal: 333},
		{Category: "Bottoms", Keyword: "b", BuzzTotal: 333},
		{Category: "Shoes", Keyword: "c", BuzzTotal: 334},
		{Category: "Bags", Keyword: "d", BuzzTotal: 0},
		{Category: "Hats", Keyword: "e", BuzzTotal: 17},
	}
	got := CategoryRollup(recs)
	require.Len(t, got, 5)
	var sum float64
	for _, c := range got {
		sum += c.ShareOfVoice
	}
	require.InDelta(t, 100.0, sum, 1e-6)
	require.Equal(t, "Bags", got[4].Category)
	require.Equal(t, 0.0, got[4].ShareOfVoice)
}

func TestSubcategoryRollup_DefaultsToDimension(t *testing.T) {
	recs := []model.Record{
		{Category: "Tops", Keyword: "linen shirt", BuzzTotal: 30},
		{Category: "Tops", Keyword: "cotton tee", BuzzTotal: 10},
		{Category: "Tops", Keyword: "commute blazer", BuzzTotal: 60},
		{Category: "Bottoms", Keyword: "linen pants", BuzzTotal: 1000},
	}
	got := SubcategoryRollup(recs, "Tops", nil)
	require.Len(t, got, 2)
	require.Equal(t, "scene", got[0].Subcategory)
	require.InDelta(t, 60.0, got[0].ShareInCategory, 1e-9)
	require.Equal(t, "material", got[1].Subcategory)
	require.Equal(t, 2, got[1].KeywordCount)
	require.InDelta(t, 40.0, got[1].ShareInCategory, 1e-9)

	byKeyword := SubcategoryRollup(recs, "Tops", func(r model.Record) string { return r.Keyword })
	require.Len(t, byKeyword, 3)
	require.Equal(t, "commute blazer", byKeyword[0].Subcategory)
}

func TestClassifyTrend(t *testing.T) {
	th := DefaultThresholds()

	tc, ok := th.ClassifyTrend([]float64{10, 20, 30, 40})
	require.True(t, ok)
	require.Equal(t, TrendUp, tc.Direction)
	require.Equal(t, 10.0, tc.Slope)
	require.Equal(t, 1.0, tc.Confidence)

	tc, ok = th.ClassifyTrend([]float64{40, 30, 20})
	require.True(t, ok)
	require.Equal(t, TrendDown, tc.Direction)

	tc, ok = th.ClassifyTrend([]float64{5, 5, 5})
	require.True(t, ok)
	require.Equal(t, TrendStable, tc.Direction)
	require.Equal(t, 1.0, tc.Confidence)

	tc, ok = th.ClassifyTrend([]float64{10, 30, 10, 30, 10})
	require.True(t, ok)
	require.Equal(t, TrendStable, tc.Direction)
	require.GreaterOrEqual(t, tc.Confidence, 0.0)
	require.LessOrEqual(t, tc.Confidence, 1.0)

	_, ok = th.ClassifyTrend([]float64{1, 2})
	require.False(t, ok)
}

func TestRecommendLogScale(t *testing.T) {
	require.True(t, RecommendLogScale([]float64{1, 5, 11}, 10))
	require.False(t, RecommendLogScale([]float64{1, 5, 10}, 10))
	require.False(t, RecommendLogScale([]float64{0, -5, 0}, 10))
	require.False(t, RecommendLogScale(nil, 10))
	require.True(t, DefaultThresholds().RecommendLogScale([]float64{0, 2, 100}))
}
