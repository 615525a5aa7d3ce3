package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/buzzlens/internal/chunk"
	"github.com/vinodismyname/buzzlens/internal/model"
)

var fullHeader = []string{"年份", "月份", "品类", "关键词", "小红书-BUZZ", "抖音-BUZZ", "TTL Buzz", "TTL Buzz YOY", "TTL Buzz MOM", "小红书-SEARCH", "小红书-SEARCH vs.Jul", "抖音-SEARCH", "抖音-SEARCH vs.Dec", "象限"}

func TestParseSheet_FullRow(t *testing.T) {
	p := NewParser(nil, nil)
	res, err := p.ParseSheet(context.Background(), fullHeader, [][]string{
		{"2024", "3月", "Outerwear", "puffer jacket", "1,200", "800", "2,000", "15%", "-0.05", "300", "1.2", "450", "0.9", "Star"},
	})
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Len(t, res.Records, 1)

	r := res.Records[0]
	require.Equal(t, 2024, r.Year)
	require.Equal(t, model.March, r.Month)
	require.Equal(t, "Outerwear", r.Category)
	require.Equal(t, "puffer jacket", r.Keyword)
	require.Equal(t, 1200.0, r.BuzzChannelA)
	require.Equal(t, 800.0, r.BuzzChannelB)
	require.Equal(t, 2000.0, r.BuzzTotal)
	require.InDelta(t, 0.15, r.BuzzYoY, 1e-9)
	require.InDelta(t, -0.05, r.BuzzMoM, 1e-9)
	require.Equal(t, 750.0, r.Search())
	require.Equal(t, 1.2, r.SearchChannelAVsRef)
	require.Equal(t, 0.9, r.SearchChannelBVsRef)
	require.Equal(t, "Star", r.Quadrant)
}

func TestParseSheet_MissingHeader(t *testing.T) {
	p := NewParser(nil, nil)
	_, err := p.ParseSheet(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrMissingHeader)

	_, err = p.ParseSheet(context.Background(), []string{"", "  "}, [][]string{{"x"}})
	require.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseSheet_HeaderWarnings(t *testing.T) {
	p := NewParser(nil, nil)
	res, err := p.ParseSheet(context.Background(), []string{"关键词", "TTL Buzz", "备注"}, [][]string{{"linen shirt", "10", "n/a"}})
	require.NoError(t, err)
	require.Equal(t, []string{
		`missing required column "year"`,
		`missing required column "month"`,
		`missing required column "category"`,
		`unrecognized column "备注" ignored`,
	}, res.Warnings)
	require.Len(t, res.Records, 1)
	require.Equal(t, "linen shirt", res.Records[0].Keyword)
	require.Equal(t, 10.0, res.Records[0].BuzzTotal)
}

func TestParseSheet_BlankRowsSkippedAndDefaults(t *testing.T) {
	p := NewParser(nil, nil)
	res, err := p.ParseSheet(context.Background(), fullHeader, [][]string{
		{"", "", "  "},
		{"2024", "1", "Tops", "tee"},
		{},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Skipped)
	require.Len(t, res.Records, 1)
	r := res.Records[0]
	require.Equal(t, model.January, r.Month)
	require.Zero(t, r.BuzzTotal)
	require.Empty(t, r.Quadrant)
}

func TestParseSheet_RowWarningsCapped(t *testing.T) {
	p := NewParser(nil, nil)
	rows := make([][]string, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, []string{"2024", "Jan", "Tops", fmt.Sprintf("kw%d", i), "", "", "lots"})
	}
	res, err := p.ParseSheet(context.Background(), fullHeader, rows)
	require.NoError(t, err)
	require.Len(t, res.Records, 15)
	require.Len(t, res.Warnings, 11)
	require.Equal(t, `row 1: buzz_total "lots" is not a number`, res.Warnings[0])
	require.Equal(t, "... 5 more warnings", res.Warnings[10])
}

func TestParseSheet_UnknownMonthPassesThrough(t *testing.T) {
	p := NewParser(nil, nil, WithFirstRow(3))
	res, err := p.ParseSheet(context.Background(), fullHeader, [][]string{{"2024", "Q1", "Tops", "tee", "", "", "5"}})
	require.NoError(t, err)
	require.Equal(t, model.Month("Q1"), res.Records[0].Month)
	require.Equal(t, []string{`row 3: unknown month "Q1" kept as-is`}, res.Warnings)
}

func TestParseSheet_ProgressAndCancel(t *testing.T) {
	rows := make([][]string, 250)
	for i := range rows {
		rows[i] = []string{"2024", "Feb", "Tops", "tee"}
	}
	var events []chunk.Progress
	p := NewParser(nil, nil, WithProgress(func(pr chunk.Progress) { events = append(events, pr) }))
	res, err := p.ParseSheet(context.Background(), fullHeader, rows)
	require.NoError(t, err)
	require.Len(t, res.Records, 250)
	require.Equal(t, []chunk.Progress{{100, 250}, {200, 250}, {250, 250}}, events)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ParseSheet(ctx, fullHeader, rows)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		blank bool
		ok    bool
	}{
		{"1,234.5", 1234.5, false, true},
		{" 12% ", 0.12, false, true},
		{"-3.5%", -0.035, false, true},
		{"$40", 40, false, true},
		{"１２３", 123, false, true},
		{"", 0, true, false},
		{"-", 0, true, false},
		{"abc", 0, false, false},
	}
	for _, tc := range cases {
		v, blank, ok := parseNumber(tc.in)
		require.Equalf(t, tc.ok, ok, "input %q", tc.in)
		require.Equalf(t, tc.blank, blank, "input %q", tc.in)
		require.InDeltaf(t, tc.want, v, 1e-9, "input %q", tc.in)
	}
}

func TestParseYear(t *testing.T) {
	y, _, ok := parseYear("2024年")
	require.True(t, ok)
	require.Equal(t, 2024, y)

	y, _, ok = parseYear("2024.0")
	require.True(t, ok)
	require.Equal(t, 2024, y)

	_, _, ok = parseYear("2024.5")
	require.False(t, ok)
}
