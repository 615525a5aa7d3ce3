package query

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/buzzlens/internal/model"
)

func rec(year int, m model.Month, cat, kw string, buzz, yoy float64) model.Record {
	return model.Record{Year: year, Month: m, Category: cat, Keyword: kw, BuzzTotal: buzz, BuzzYoY: yoy}
}

func sample() []model.Record {
	return []model.Record{
		rec(2024, model.January, "Tops", "Linen Shirt", 100, 0.10),
		rec(2024, model.February, "Tops", "linen shirt", 150, 0.20),
		rec(2024, model.January, "Bottoms", "wide jeans", 80, -0.10),
		rec(2023, model.December, "Tops", "Linen Shirt", 60, 0.05),
		rec(2024, model.February, "Bottoms", "wide jeans", 90, 0.00),
	}
}

func TestFilter_EmptyCriteriaKeepsAll(t *testing.T) {
	in := sample()
	out := Filter(in, model.FilterCriteria{})
	require.Equal(t, in, out)
}

func TestFilter_Predicates(t *testing.T) {
	year := 2024
	out := Filter(sample(), model.FilterCriteria{
		Categories: []string{"Tops"},
		Year:       &year,
		Months:     []model.Month{model.January, model.February},
		Keyword:    "  LINEN ",
	})
	require.Len(t, out, 2)
	require.Equal(t, "Linen Shirt", out[0].Keyword)
	require.Equal(t, "linen shirt", out[1].Keyword)

	out = Filter(sample(), model.FilterCriteria{Quadrants: []string{"Star"}})
	require.Empty(t, out)
}

func TestFilter_IdempotentAndPure(t *testing.T) {
	in := sample()
	c := model.FilterCriteria{Categories: []string{"Bottoms"}}
	once := Filter(in, c)
	require.Equal(t, once, Filter(once, c))
	require.Equal(t, sample(), in)
}

func TestLatestPerKeyword(t *testing.T) {
	recs := []model.Record{
		rec(2024, model.January, "Tops", "K", 100, 0),
		rec(2024, model.February, "Tops", "K", 150, 0),
	}
	got := LatestPerKeyword(recs)
	require.Equal(t, 150.0, got["K"].BuzzTotal)

	top := TopN(Latest(recs), model.MetricBuzz, 1)
	require.Len(t, top, 1)
	require.Equal(t, "K", top[0].Keyword)
	require.Equal(t, 150.0, top[0].Buzz)
}

func TestLatestPerKeyword_YearBeatsMonthAndTiesKeepFirst(t *testing.T) {
	recs := []model.Record{
		rec(2023, model.December, "Tops", "K", 1, 0),
		rec(2024, model.January, "Tops", "K", 2, 0),
		rec(2024, model.January, "Tops", "K", 3, 0),
	}
	require.Equal(t, 2.0, LatestPerKeyword(recs)["K"].BuzzTotal)
}

func TestLatest_FirstSeenOrder(t *testing.T) {
	s := Latest(sample())
	require.Equal(t, []string{"Linen Shirt", "linen shirt", "wide jeans"}, s.Keywords)
	require.Equal(t, 3, s.Len())
	require.Equal(t, 90.0, s.ByKey["wide jeans"].BuzzTotal)
	require.Equal(t, 100.0, s.ByKey["Linen Shirt"].BuzzTotal)
}

func TestTrend_SumsAndOrdering(t *testing.T) {
	pts := Trend(sample(), model.MetricBuzz, nil)
	require.Equal(t, []model.AggregatedPoint{
		{Year: 2023, Month: model.December, Category: "Tops", Value: 60},
		{Year: 2024, Month: model.January, Category: "Tops", Value: 100},
		{Year: 2024, Month: model.January, Category: "Bottoms", Value: 80},
		{Year: 2024, Month: model.February, Category: "Tops", Value: 150},
		{Year: 2024, Month: model.February, Category: "Bottoms", Value: 90},
	}, pts)
}

func TestTrend_AllowlistOrderAndYoYSum(t *testing.T) {
	recs := append(sample(), rec(2024, model.January, "Tops", "tee", 10, 0.30))
	pts := Trend(recs, model.MetricYoY, []string{"Bottoms", "Tops"})
	require.Len(t, pts, 5)
	require.Equal(t, "Tops", pts[0].Category)
	require.Equal(t, model.January, pts[1].Month)
	require.Equal(t, "Bottoms", pts[1].Category)
	require.InDelta(t, -10.0, pts[1].Value, 1e-9)
	require.Equal(t, "Tops", pts[2].Category)
	require.InDelta(t, 40.0, pts[2].Value, 1e-9)

	only := Trend(recs, model.MetricBuzz, []string{"Bottoms"})
	require.Len(t, only, 2)
	require.Equal(t, []float64{80, 90}, Series(only, "Bottoms"))
}

func TestTrend_Search(t *testing.T) {
	recs := []model.Record{
		{Year: 2024, Month: model.March, Category: "Tops", SearchChannelA: 5, SearchChannelB: 7},
		{Year: 2024, Month: model.March, Category: "Tops", SearchChannelA: 1},
	}
	pts := Trend(recs, model.MetricSearch, nil)
	require.Len(t, pts, 1)
	require.Equal(t, 13.0, pts[0].Value)
}

func TestTopN_MembershipAndBounds(t *testing.T) {
	s := Latest(sample())
	top := TopN(s, model.MetricBuzz, 2)
	require.Len(t, top, 2)
	require.Equal(t, "linen shirt", top[0].Keyword)

	names := []string{top[0].Keyword, top[1].Keyword}
	require.ElementsMatch(t, []string{"linen shirt", "Linen Shirt"}, names)

	require.Len(t, TopN(s, model.MetricYoY, 10), 3)
	require.Nil(t, TopN(s, model.MetricBuzz, 0))
}

func TestSummarize_PerRowYoYAndSnapshotCount(t *testing.T) {
	recs := []model.Record{
		rec(2024, model.January, "Tops", "a", 10, 0.10),
		rec(2024, model.February, "Tops", "a", 20, 0.20),
		{Year: 2024, Month: model.March, Category: "Tops", Keyword: "b", BuzzTotal: 30, BuzzYoY: -0.10, SearchChannelA: 4, SearchChannelB: 6},
	}
	s := Summarize(recs)
	require.Equal(t, 60.0, s.TotalBuzz)
	require.InDelta(t, 6.6667, s.AvgYoY, 1e-3)
	require.Equal(t, 10.0, s.TotalSearch)
	require.Equal(t, 2, s.KeywordCount)
	require.Equal(t, 3, s.RecordCount)

	require.Equal(t, Summary{}, Summarize(nil))
}
