package insights

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/buzzlens/internal/model"
)

func mixRecords() []model.Record {
	return []model.Record{
		{Year: 2024, Month: model.January, Category: "A", BuzzTotal: 50},
		{Year: 2024, Month: model.January, Category: "B", BuzzTotal: 50},
		{Year: 2024, Month: model.February, Category: "A", BuzzTotal: 70},
		{Year: 2024, Month: model.February, Category: "B", BuzzTotal: 30},
		{Year: 2023, Month: model.December, Category: "A", BuzzTotal: 10},
	}
}

func TestMixShift_AutoDetectsLastTwoPeriods(t *testing.T) {
	out, err := MixShift(mixRecords(), MixOptions{})
	require.NoError(t, err)
	require.Equal(t, Period{Year: 2024, Month: model.January}, out.Baseline)
	require.Equal(t, Period{Year: 2024, Month: model.February}, out.Current)
	require.Len(t, out.Groups, 2)

	// equal magnitude changes fall back to name order
	require.Equal(t, "A", out.Groups[0].Name)
	require.Equal(t, 20.0, out.Groups[0].PPChange)
	require.True(t, out.Groups[0].Highlight)
	require.Equal(t, "B", out.Groups[1].Name)
	require.Equal(t, -20.0, out.Groups[1].PPChange)
	require.InDelta(t, 0.0, out.OtherCurrent, 1e-9)
}

func TestMixShift_ExplicitPeriodsAndNewCategory(t *testing.T) {
	out, err := MixShift(mixRecords(), MixOptions{
		Baseline:    Period{Year: 2023, Month: model.December},
		Current:     Period{Year: 2024, Month: model.February},
		ThresholdPP: 50,
	})
	require.NoError(t, err)
	require.Len(t, out.Groups, 2)
	require.Equal(t, "A", out.Groups[0].Name)
	require.Equal(t, -30.0, out.Groups[0].PPChange)
	require.Equal(t, "B", out.Groups[1].Name)
	require.Equal(t, 0.0, out.Groups[1].ShareBaseline)
	require.Equal(t, 30.0, out.Groups[1].PPChange)
	require.False(t, out.Groups[1].Highlight)
}

func TestMixShift_Errors(t *testing.T) {
	_, err := MixShift(mixRecords()[:2], MixOptions{})
	require.ErrorIs(t, err, ErrNotEnoughPeriods)

	_, err = MixShift(mixRecords(), MixOptions{
		Baseline: Period{Year: 2020, Month: model.March},
		Current:  Period{Year: 2024, Month: model.February},
	})
	require.ErrorIs(t, err, ErrNotEnoughPeriods)

	zero := []model.Record{
		{Year: 2024, Month: model.January, Category: "A"},
		{Year: 2024, Month: model.February, Category: "A", BuzzTotal: 5},
	}
	_, err = MixShift(zero, MixOptions{})
	require.Error(t, err)
}
