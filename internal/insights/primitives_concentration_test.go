package insights

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/buzzlens/internal/model"
)

func TestConcentration_HighlyConcentrated(t *testing.T) {
	cms := []model.CategoryMetrics{
		{Category: "B", TotalBuzz: 20},
		{Category: "A", TotalBuzz: 80},
	}
	out, ok := Concentration(cms, 0)
	require.True(t, ok)
	require.Equal(t, 5, out.TopN)
	require.Equal(t, "highly_concentrated", out.Band)
	require.InDelta(t, 0.68, out.HHI, 0.01)
	require.Equal(t, "A", out.Groups[0].Name)
	require.Equal(t, 0.8, out.Groups[0].Share)
	require.Equal(t, 0.0, out.OtherShare)
	// input order untouched
	require.Equal(t, "B", cms[0].Category)
}

func TestConcentration_UnconcentratedWithOther(t *testing.T) {
	var cms []model.CategoryMetrics
	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		cms = append(cms, model.CategoryMetrics{Category: c, TotalBuzz: 10})
	}
	out, ok := Concentration(cms, 3)
	require.True(t, ok)
	require.Len(t, out.Groups, 3)
	require.InDelta(t, 0.7, out.OtherShare, 1e-9)
	require.InDelta(t, 0.1, out.HHI, 1e-9)
	require.Equal(t, "unconcentrated", out.Band)
}

func TestConcentration_ZeroTotal(t *testing.T) {
	_, ok := Concentration([]model.CategoryMetrics{{Category: "a"}}, 5)
	require.False(t, ok)
	_, ok = Concentration(nil, 5)
	require.False(t, ok)
}
