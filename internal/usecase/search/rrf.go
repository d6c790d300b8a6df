package search

import (
	"sort"

	"github.com/greenplate/myfridge/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges ranked channels via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank_i(d)) for each ranking where d appears.
// The first channel a document appears in supplies its payload; ties break on
// document id so ordering stays deterministic across runs.
func fuseRRF(channels [][]result.Hit, limit int) []result.Hit {
	type scored struct {
		hit   result.Hit
		score float64
	}

	merged := make(map[string]*scored)

	for _, channel := range channels {
		for rank, h := range channel {
			s := 1.0 / float64(rrfK+rank+1)
			if existing, ok := merged[h.ID()]; ok {
				existing.score += s
			} else {
				merged[h.ID()] = &scored{hit: h, score: s}
			}
		}
	}

	hits := make([]result.Hit, 0, len(merged))
	for _, s := range merged {
		// Rebuild hit with the fused RRF score
		hits = append(hits, result.NewHit(
			s.hit.ID(), s.hit.DishID(), s.hit.RecipeID(), s.hit.DishName(),
			s.hit.Ingredients(), s.score,
		))
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score() != hits[j].Score() {
			return hits[i].Score() > hits[j].Score()
		}
		return hits[i].ID() < hits[j].ID()
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	return hits
}
