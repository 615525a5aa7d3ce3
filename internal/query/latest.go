package query

import "github.com/vinodismyname/buzzlens/internal/model"

// LatestPerKeyword keeps, for each keyword, the record with the greatest
// (year, month ordinal). On equal keys the first record seen wins.
func LatestPerKeyword(records []model.Record) map[string]model.Record {
	out := make(map[string]model.Record)
	for _, r := range records {
		cur, ok := out[r.Keyword]
		if !ok || cur.Before(r) {
			out[r.Keyword] = r
		}
	}
	return out
}

// Snapshot is a latest-per-keyword view that also remembers the order in
// which keywords first appeared, so callers get deterministic iteration.
type Snapshot struct {
	Keywords []string
	ByKey    map[string]model.Record
}

// Latest builds a Snapshot from records.
func Latest(records []model.Record) Snapshot {
	s := Snapshot{ByKey: make(map[string]model.Record)}
	for _, r := range records {
		cur, ok := s.ByKey[r.Keyword]
		if !ok {
			s.Keywords = append(s.Keywords, r.Keyword)
			s.ByKey[r.Keyword] = r
			continue
		}
		if cur.Before(r) {
			s.ByKey[r.Keyword] = r
		}
	}
	return s
}

// Len is the number of distinct keywords.
func (s Snapshot) Len() int { return len(s.Keywords) }

// Records returns the snapshot records in first-seen keyword order.
func (s Snapshot) Records() []model.Record {
	out := make([]model.Record, 0, len(s.Keywords))
	for _, k := range s.Keywords {
		out = append(out, s.ByKey[k])
	}
	return out
}
