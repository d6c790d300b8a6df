// Package document defines the flattened search document: one entry per
// (dish, recipe) pair, derived from the catalog and written to the index.
package document

import (
	"fmt"
	"strings"

	"github.com/greenplate/myfridge/internal/domain/catalog"
	"github.com/greenplate/myfridge/internal/domain/search/filter"
)

// Vector field names shared by the index schema and the retrieval channels.
const (
	// CoreVectorField holds the dish identity embedding.
	CoreVectorField = "core_vec"
	// ContextVectorField holds the instructions/description embedding.
	ContextVectorField = "context_vec"
)

// Document is the search document aggregate (immutable except for vectors,
// which are attached after batch embedding).
type Document struct {
	dishID      int
	recipeID    int
	dishName    string
	recipeName  string
	recipeTitle string
	ingredients []string
	description string
	coreVec     []float32
	contextVec  []float32
}

// New validates and creates a search Document.
// Ingredient names are normalized with the same rules the query side uses.
func New(
	dishID, recipeID int,
	dishName, recipeName, recipeTitle string,
	ingredients []string,
	description string,
) (Document, error) {
	if dishID <= 0 {
		return Document{}, fmt.Errorf("dish id must be positive, got %d", dishID)
	}
	if recipeID <= 0 {
		return Document{}, fmt.Errorf("recipe id must be positive, got %d", recipeID)
	}
	dishName = strings.TrimSpace(dishName)
	if dishName == "" {
		return Document{}, fmt.Errorf("dish name is required")
	}

	return Document{
		dishID:      dishID,
		recipeID:    recipeID,
		dishName:    dishName,
		recipeName:  strings.TrimSpace(recipeName),
		recipeTitle: strings.TrimSpace(recipeTitle),
		ingredients: filter.Normalize(ingredients),
		description: strings.TrimSpace(description),
	}, nil
}

// Derive flattens one catalog recipe into a search Document.
// Description falls back from recipe instructions to the dish's semantic
// description so the context embedding always has text to work with.
func Derive(dish *catalog.Dish, recipe *catalog.Recipe) (Document, error) {
	if dish == nil || recipe == nil {
		return Document{}, fmt.Errorf("dish and recipe are required")
	}
	description := strings.TrimSpace(recipe.Instructions)
	if description == "" {
		description = strings.TrimSpace(dish.SemanticDescription)
	}
	return New(
		int(dish.ID), int(recipe.ID),
		dish.Name, recipe.Name, recipe.Title,
		recipe.IngredientNames(),
		description,
	)
}

// ID returns the index document identifier, unique per (dish, recipe).
func (d *Document) ID() string { return fmt.Sprintf("%d_%d", d.dishID, d.recipeID) }

// DishID returns the parent dish identifier.
func (d *Document) DishID() int { return d.dishID }

// RecipeID returns the recipe identifier.
func (d *Document) RecipeID() int { return d.recipeID }

// DishName returns the dish display name.
func (d *Document) DishName() string { return d.dishName }

// RecipeName returns the recipe name.
func (d *Document) RecipeName() string { return d.recipeName }

// RecipeTitle returns the recipe title.
func (d *Document) RecipeTitle() string { return d.recipeTitle }

// Ingredients returns the normalized ingredient names.
func (d *Document) Ingredients() []string { return d.ingredients }

// Description returns the context text (instructions or dish summary).
func (d *Document) Description() string { return d.description }

// CoreIdentityText returns the text embedded into the core identity vector:
// what the food is, independent of how a particular author cooks it.
func (d *Document) CoreIdentityText() string {
	if len(d.ingredients) == 0 {
		return d.dishName
	}
	return d.dishName + ": " + strings.Join(d.ingredients, ", ")
}

// ContextText returns the text embedded into the context vector.
func (d *Document) ContextText() string {
	if d.description == "" {
		return d.CoreIdentityText()
	}
	return d.description
}

// CoreVector returns the core identity embedding, nil when vectorless.
func (d *Document) CoreVector() []float32 { return d.coreVec }

// ContextVector returns the context embedding, nil when vectorless.
func (d *Document) ContextVector() []float32 { return d.contextVec }

// SetVectors attaches both embeddings (mutation, post batch embed).
func (d *Document) SetVectors(core, context []float32) error {
	if len(core) != len(context) {
		return fmt.Errorf("core dim %d != context dim %d", len(core), len(context))
	}
	d.coreVec = core
	d.contextVec = context
	return nil
}

// HasVectors reports whether both embeddings are attached.
func (d *Document) HasVectors() bool { return len(d.coreVec) > 0 && len(d.contextVec) > 0 }
