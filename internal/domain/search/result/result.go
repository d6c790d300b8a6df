package result

// Hit is a single recipe-level search hit.
type Hit struct {
	id          string
	dishID      int
	recipeID    int
	dishName    string
	ingredients []string
	score       float64
}

// NewHit creates a recipe-level hit.
func NewHit(
	id string, dishID, recipeID int, dishName string,
	ingredients []string, score float64,
) Hit {
	return Hit{
		id: id, dishID: dishID, recipeID: recipeID, dishName: dishName,
		ingredients: ingredients, score: score,
	}
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// DishID returns the parent dish identifier.
func (h *Hit) DishID() int { return h.dishID }

// RecipeID returns the recipe identifier.
func (h *Hit) RecipeID() int { return h.recipeID }

// DishName returns the dish display name.
func (h *Hit) DishName() string { return h.dishName }

// Ingredients returns the normalized ingredient names of the recipe.
func (h *Hit) Ingredients() []string { return h.ingredients }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Group is a dish with its best-ranked recipes, in hit order.
type Group struct {
	dishID    int
	dishName  string
	recipeIDs []int
}

// NewGroup creates a dish group.
func NewGroup(dishID int, dishName string, recipeIDs []int) Group {
	return Group{dishID: dishID, dishName: dishName, recipeIDs: recipeIDs}
}

// DishID returns the dish identifier.
func (g *Group) DishID() int { return g.dishID }

// DishName returns the dish display name.
func (g *Group) DishName() string { return g.dishName }

// RecipeIDs returns the kept recipe identifiers, best rank first.
func (g *Group) RecipeIDs() []int { return g.recipeIDs }
