package castles

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SuggestMaxDistance caps how far a name may be from the query to be suggested
var SuggestMaxDistance = 4

// Suggest returns up to max castles whose names are close to the query by
// edit distance, best first with a name tiebreak. It backs the "did you
// mean" hint when a search finds nothing. An empty query suggests nothing.
func (r *Repository) Suggest(query string, max int) []POI {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || max <= 0 {
		return nil
	}

	type scored struct {
		poi  POI
		dist int
	}

	r.RLock()
	candidates := make([]scored, 0, len(r.order))
	for _, id := range r.order {
		poi := r.pois[id]
		d := nameDistance(q, strings.ToLower(poi.Name))
		if d <= SuggestMaxDistance {
			candidates = append(candidates, scored{*poi, d})
		}
	}
	r.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return strings.ToLower(candidates[i].poi.Name) < strings.ToLower(candidates[j].poi.Name)
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	res := make([]POI, 0, len(candidates))
	for _, c := range candidates {
		res = append(res, c.poi)
	}
	return res
}

// nameDistance scores the query against the whole name and against each of
// its words, a query like "obidos" should land on "Castelo de Óbidos"
func nameDistance(q, name string) int {
	best := levenshtein.ComputeDistance(q, name)
	for _, word := range strings.Fields(name) {
		if d := levenshtein.ComputeDistance(q, word); d < best {
			best = d
		}
	}
	return best
}
