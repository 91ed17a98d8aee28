package pipeline

import (
	"sort"

	"github.com/pankaj-dahiya-devops/shcx/internal/controlid"
	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// Aggregate returns records in canonical order: by the alphabetic prefix of
// the identifier, then by the numeric value of its trailing digits, so
// "AB.2" precedes "AB.10". Identifiers that cannot be keyed are placed after
// every well-formed one, in lexicographic order, and returned in malformed.
// The input slice is not modified.
func Aggregate(records []*models.ControlRecord) (sorted []*models.ControlRecord, malformed []string) {
	type keyed struct {
		rec *models.ControlRecord
		key controlid.SortKey
		ok  bool
	}

	items := make([]keyed, len(records))
	for i, r := range records {
		key, err := controlid.Key(r.ID())
		items[i] = keyed{rec: r, key: key, ok: err == nil}
		if err != nil {
			malformed = append(malformed, r.ID())
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok && a.key != b.key {
			return a.key.Less(b.key)
		}
		return a.rec.ID() < b.rec.ID()
	})

	sorted = make([]*models.ControlRecord, len(items))
	for i, it := range items {
		sorted[i] = it.rec
	}
	sort.Strings(malformed)
	return sorted, malformed
}
