package search

import "github.com/greenplate/myfridge/internal/domain/search/result"

// groupByDish collapses recipe-level hits into dish groups. Group order
// follows the rank of each dish's best hit; within a group, recipes keep hit
// order and are truncated to topK. Later duplicates of a (dish, recipe) pair
// are dropped.
func groupByDish(hits []result.Hit, topK int) []result.Group {
	type bucket struct {
		dishName  string
		recipeIDs []int
		seen      map[int]struct{}
	}

	order := make([]int, 0)
	buckets := make(map[int]*bucket)

	for _, h := range hits {
		b, ok := buckets[h.DishID()]
		if !ok {
			b = &bucket{dishName: h.DishName(), seen: make(map[int]struct{})}
			buckets[h.DishID()] = b
			order = append(order, h.DishID())
		}
		if _, dup := b.seen[h.RecipeID()]; dup {
			continue
		}
		if len(b.recipeIDs) >= topK {
			continue
		}
		b.seen[h.RecipeID()] = struct{}{}
		b.recipeIDs = append(b.recipeIDs, h.RecipeID())
	}

	groups := make([]result.Group, 0, len(order))
	for _, dishID := range order {
		b := buckets[dishID]
		groups = append(groups, result.NewGroup(dishID, b.dishName, b.recipeIDs))
	}
	return groups
}
