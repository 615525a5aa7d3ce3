package insights

import (
	"sort"

	"github.com/vinodismyname/buzzlens/internal/model"
)

// GroupShare is one category's slice of total buzz.
type GroupShare struct {
	Name  string  `json:"name"`
	Share float64 `json:"share" jsonschema_description:"Fraction of total buzz, 0..1"`
	Total float64 `json:"total"`
}

// ConcentrationResult reports how much of the conversation a few categories own.
type ConcentrationResult struct {
	TopN       int          `json:"top_n"`
	Groups     []GroupShare `json:"groups"`
	OtherShare float64      `json:"other_share"`
	HHI        float64      `json:"hhi" jsonschema_description:"Herfindahl-Hirschman index over category shares, 0..1"`
	Band       string       `json:"band" jsonschema_description:"unconcentrated, moderately_concentrated or highly_concentrated"`
}

// Concentration computes the top-N share breakdown and HHI over a category
// rollup. ok is false when total buzz is zero.
func Concentration(cms []model.CategoryMetrics, topN int) (ConcentrationResult, bool) {
	out := ConcentrationResult{TopN: topN}
	if out.TopN <= 0 || out.TopN > 10 {
		out.TopN = 5
	}
	var total float64
	for _, c := range cms {
		total += c.TotalBuzz
	}
	if total == 0 {
		return out, false
	}

	cms = append([]model.CategoryMetrics(nil), cms...)
	sort.SliceStable(cms, func(i, j int) bool { return cms[i].TotalBuzz > cms[j].TotalBuzz })

	keep := min(out.TopN, len(cms))
	var topShare float64
	for _, c := range cms[:keep] {
		sh := c.TotalBuzz / total
		out.Groups = append(out.Groups, GroupShare{Name: c.Category, Share: round3(sh), Total: c.TotalBuzz})
		topShare += sh
	}
	out.OtherShare = round3(1.0 - topShare)

	var hhi float64
	for _, c := range cms {
		sh := c.TotalBuzz / total
		hhi += sh * sh
	}
	out.HHI = round3(hhi)
	// common antitrust cutoffs
	switch {
	case hhi < 0.15:
		out.Band = "unconcentrated"
	case hhi < 0.25:
		out.Band = "moderately_concentrated"
	default:
		out.Band = "highly_concentrated"
	}
	return out, true
}
