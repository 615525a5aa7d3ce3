package months

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/buzzlens/internal/model"
)

func TestNormalize_Recognized(t *testing.T) {
	n := New(nil)
	cases := []struct {
		raw  any
		want model.Month
	}{
		{1, model.January},
		{int64(12), model.December},
		{uint8(7), model.July},
		{3.0, model.March},
		{float32(4), model.April},
		{"1月", model.January},
		{" 11月 ", model.November},
		{"１２月", model.December},
		{"5", model.May},
		{"05", model.May},
		{"6.0", model.June},
		{"january", model.January},
		{"FEB", model.February},
		{"Sept", model.September},
		{"Oct.", model.October},
		{model.August, model.August},
	}
	for _, tc := range cases {
		got := n.Normalize(tc.raw)
		require.Equalf(t, tc.want, got, "raw %#v", tc.raw)
		require.True(t, n.Known(got))
	}
}

func TestNormalize_PassThrough(t *testing.T) {
	n := New(nil)
	cases := []struct {
		raw  any
		want model.Month
	}{
		{"Q1", "Q1"},
		{" spring ", "spring"},
		{13, "13"},
		{"0月", "0月"},
		{2.5, "2.5"},
		{nil, ""},
	}
	for _, tc := range cases {
		got := n.Normalize(tc.raw)
		require.Equalf(t, tc.want, got, "raw %#v", tc.raw)
		require.False(t, n.Known(got))
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(nil)
	for _, raw := range []any{"3月", 9, "Dec", "unknown", "１０"} {
		once := n.Normalize(raw)
		require.Equal(t, once, n.Normalize(once))
	}
}

func TestNew_CustomTable(t *testing.T) {
	n := New(Table{"Janvier": model.January})
	require.Equal(t, model.January, n.Normalize("JANVIER"))
	// numeric forms do not depend on the table
	require.Equal(t, model.March, n.Normalize("3月"))
	require.Equal(t, model.Month("february"), n.Normalize("february"))
}
