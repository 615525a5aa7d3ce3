package insights

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vinodismyname/buzzlens/internal/model"
)

// ErrNotEnoughPeriods means a mix shift needs at least two distinct periods.
var ErrNotEnoughPeriods = errors.New("insights: not enough distinct periods")

// Period is one (year, month) snapshot.
type Period struct {
	Year  int         `json:"year"`
	Month model.Month `json:"month"`
}

// IsZero reports whether the period was left unset.
func (p Period) IsZero() bool { return p.Year == 0 && p.Month == "" }

func (p Period) String() string { return fmt.Sprintf("%d-%s", p.Year, p.Month) }

func (p Period) before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month.Ordinal() < o.Month.Ordinal()
}

// GroupMix is one category's share of voice in both periods.
type GroupMix struct {
	Name          string  `json:"name"`
	ShareBaseline float64 `json:"share_baseline"`
	ShareCurrent  float64 `json:"share_current"`
	PPChange      float64 `json:"pp_change" jsonschema_description:"Change in percentage points"`
	Highlight     bool    `json:"highlight"`
}

// MixShiftResult reports per-category share movement between two periods.
type MixShiftResult struct {
	Baseline       Period     `json:"baseline"`
	Current        Period     `json:"current"`
	TopN           int        `json:"top_n"`
	MixThresholdPP float64    `json:"mix_threshold_pp"`
	Groups         []GroupMix `json:"groups"`
	OtherBaseline  float64    `json:"other_share_baseline"`
	OtherCurrent   float64    `json:"other_share_current"`
}

// MixOptions tunes MixShift. Zero periods select the last two periods present.
type MixOptions struct {
	Baseline    Period
	Current     Period
	TopN        int
	ThresholdPP float64
}

// MixShift compares each category's share of total buzz between two periods
// and ranks categories by absolute percentage-point change.
func MixShift(records []model.Record, opt MixOptions) (MixShiftResult, error) {
	out := MixShiftResult{TopN: opt.TopN, MixThresholdPP: opt.ThresholdPP}
	if out.TopN <= 0 || out.TopN > 10 {
		out.TopN = 5
	}
	if out.MixThresholdPP <= 0 {
		out.MixThresholdPP = 5.0
	}

	acc := map[Period]map[string]float64{}
	for _, r := range records {
		p := Period{Year: r.Year, Month: r.Month}
		m, ok := acc[p]
		if !ok {
			m = map[string]float64{}
			acc[p] = m
		}
		m[r.Category] += r.BuzzTotal
	}

	base, curr := opt.Baseline, opt.Current
	if base.IsZero() || curr.IsZero() {
		keys := make([]Period, 0, len(acc))
		for k := range acc {
			keys = append(keys, k)
		}
		if len(keys) < 2 {
			return out, fmt.Errorf("%w: need 2, found %d", ErrNotEnoughPeriods, len(keys))
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })
		base, curr = keys[len(keys)-2], keys[len(keys)-1]
	}
	out.Baseline, out.Current = base, curr

	b, c := acc[base], acc[curr]
	if b == nil || c == nil {
		return out, fmt.Errorf("%w: no records for %s or %s", ErrNotEnoughPeriods, base, curr)
	}
	var totBase, totCurr float64
	for _, v := range b {
		totBase += v
	}
	for _, v := range c {
		totCurr += v
	}
	if totBase == 0 || totCurr == 0 {
		return out, fmt.Errorf("zero buzz in baseline or current period")
	}

	uniq := map[string]struct{}{}
	for k := range b {
		uniq[k] = struct{}{}
	}
	for k := range c {
		uniq[k] = struct{}{}
	}
	rows := make([]GroupMix, 0, len(uniq))
	for g := range uniq {
		sb := b[g] / totBase
		sc := c[g] / totCurr
		pp := round2((sc - sb) * 100.0)
		rows = append(rows, GroupMix{
			Name:          g,
			ShareBaseline: round3(sb),
			ShareCurrent:  round3(sc),
			PPChange:      pp,
			Highlight:     math.Abs(pp) >= out.MixThresholdPP,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := math.Abs(rows[i].PPChange), math.Abs(rows[j].PPChange)
		if ai == aj {
			return rows[i].Name < rows[j].Name
		}
		return ai > aj
	})

	keep := min(out.TopN, len(rows))
	var selBase, selCurr float64
	for _, r := range rows[:keep] {
		selBase += r.ShareBaseline
		selCurr += r.ShareCurrent
	}
	out.Groups = rows[:keep]
	out.OtherBaseline = round3(1.0 - selBase)
	out.OtherCurrent = round3(1.0 - selCurr)
	return out, nil
}
