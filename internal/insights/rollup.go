package insights

import (
	"math"
	"sort"

	"github.com/vinodismyname/buzzlens/internal/classify"
	"github.com/vinodismyname/buzzlens/internal/model"
)

type rollupAcc struct {
	name     string
	total    float64
	yoySum   float64
	rows     int
	keywords map[string]struct{}
}

func (a *rollupAcc) add(r model.Record) {
	a.total += r.BuzzTotal
	a.yoySum += model.ToPercent(r.BuzzYoY)
	a.rows++
	a.keywords[r.Keyword] = struct{}{}
}

func (a *rollupAcc) avgYoY() float64 {
	if a.rows == 0 {
		return 0
	}
	return a.yoySum / float64(a.rows)
}

// momentum rewards both growth rate and size while damping the size term.
func momentum(avgYoY, total float64) float64 {
	if total+1 <= 0 {
		return 0
	}
	return avgYoY * math.Log10(total+1)
}

func accumulate(records []model.Record, key func(model.Record) string) ([]*rollupAcc, float64) {
	idx := make(map[string]*rollupAcc)
	var accs []*rollupAcc
	var grand float64
	for _, r := range records {
		k := key(r)
		a, ok := idx[k]
		if !ok {
			a = &rollupAcc{name: k, keywords: make(map[string]struct{})}
			idx[k] = a
			accs = append(accs, a)
		}
		a.add(r)
		grand += r.BuzzTotal
	}
	sort.SliceStable(accs, func(i, j int) bool {
		if accs[i].total != accs[j].total {
			return accs[i].total > accs[j].total
		}
		return accs[i].name < accs[j].name
	})
	return accs, grand
}

func share(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// CategoryRollup aggregates records per category. AvgYoY is in percent and
// ShareOfVoice is relative to the buzz of all given records.
func CategoryRollup(records []model.Record) []model.CategoryMetrics {
	accs, grand := accumulate(records, func(r model.Record) string { return r.Category })
	out := make([]model.CategoryMetrics, 0, len(accs))
	for _, a := range accs {
		avg := a.avgYoY()
		out = append(out, model.CategoryMetrics{
			Category:       a.name,
			TotalBuzz:      a.total,
			AvgYoY:         avg,
			KeywordCount:   len(a.keywords),
			ShareOfVoice:   share(a.total, grand),
			GrowthMomentum: momentum(avg, a.total),
		})
	}
	return out
}

// SubcategoryRollup aggregates the records of one category by key. A nil key
// groups by the keyword's classified dimension.
func SubcategoryRollup(records []model.Record, category string, key func(model.Record) string) []model.SubcategoryMetrics {
	if key == nil {
		c := classify.New(nil)
		key = func(r model.Record) string { return string(c.Classify(r.Keyword)) }
	}
	scoped := make([]model.Record, 0, len(records))
	for _, r := range records {
		if r.Category == category {
			scoped = append(scoped, r)
		}
	}
	accs, catTotal := accumulate(scoped, key)
	out := make([]model.SubcategoryMetrics, 0, len(accs))
	for _, a := range accs {
		avg := a.avgYoY()
		out = append(out, model.SubcategoryMetrics{
			Category:        category,
			Subcategory:     a.name,
			TotalBuzz:       a.total,
			AvgYoY:          avg,
			KeywordCount:    len(a.keywords),
			ShareInCategory: share(a.total, catTotal),
			GrowthMomentum:  momentum(avg, a.total),
		})
	}
	return out
}
