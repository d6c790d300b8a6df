package search

import (
	"testing"

	"github.com/greenplate/myfridge/internal/domain/search/result"
)

func recipeHit(dishID, recipeID int, dishName string) result.Hit {
	return result.NewHit("", dishID, recipeID, dishName, nil, 1.0)
}

func TestGroupByDish_OrderFollowsBestHit(t *testing.T) {
	hits := []result.Hit{
		recipeHit(2, 20, "Bibimbap"),
		recipeHit(1, 10, "Kimchi Stew"),
		recipeHit(2, 21, "Bibimbap"),
		recipeHit(1, 11, "Kimchi Stew"),
	}

	groups := groupByDish(hits, 3)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].DishID() != 2 || groups[1].DishID() != 1 {
		t.Errorf("expected dish order [2 1], got [%d %d]",
			groups[0].DishID(), groups[1].DishID())
	}
	if groups[0].DishName() != "Bibimbap" {
		t.Errorf("expected dish name Bibimbap, got %q", groups[0].DishName())
	}
	wantRecipes := []int{20, 21}
	got := groups[0].RecipeIDs()
	if len(got) != len(wantRecipes) {
		t.Fatalf("expected %d recipes, got %d", len(wantRecipes), len(got))
	}
	for i, id := range wantRecipes {
		if got[i] != id {
			t.Errorf("recipe %d: expected %d, got %d", i, id, got[i])
		}
	}
}

func TestGroupByDish_TruncatesToTopK(t *testing.T) {
	hits := []result.Hit{
		recipeHit(1, 10, "Kimchi Stew"),
		recipeHit(1, 11, "Kimchi Stew"),
		recipeHit(1, 12, "Kimchi Stew"),
		recipeHit(1, 13, "Kimchi Stew"),
	}

	groups := groupByDish(hits, 2)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	ids := groups[0].RecipeIDs()
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 11 {
		t.Errorf("expected best-ranked recipes [10 11], got %v", ids)
	}
}

func TestGroupByDish_DropsDuplicateRecipes(t *testing.T) {
	hits := []result.Hit{
		recipeHit(1, 10, "Kimchi Stew"),
		recipeHit(1, 10, "Kimchi Stew"),
		recipeHit(1, 11, "Kimchi Stew"),
	}

	groups := groupByDish(hits, 5)

	ids := groups[0].RecipeIDs()
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 11 {
		t.Errorf("expected deduplicated recipes [10 11], got %v", ids)
	}
}

func TestGroupByDish_Empty(t *testing.T) {
	groups := groupByDish(nil, 3)
	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}
