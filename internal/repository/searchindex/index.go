package searchindex

import (
	"github.com/greenplate/myfridge/internal/db"
	"github.com/greenplate/myfridge/internal/domain"
	"github.com/greenplate/myfridge/internal/domain/document"
)

// Index and document naming.
const (
	// IndexName is the FT index covering all dish documents.
	IndexName = domain.KeyPrefix + "dishes:idx"
	// DocPrefix is the key prefix of every indexed document.
	DocPrefix = domain.KeyPrefix + "dish:"
)

// Hash field names shared by the schema, the write path and the read path.
const (
	FieldDishID         = "dish_id"
	FieldRecipeID       = "recipe_id"
	FieldDishName       = "dish_name"
	FieldDishNameRaw    = "dish_name_raw"
	FieldRecipeName     = "recipe_name"
	FieldRecipeTitle    = "recipe_title"
	FieldIngredients    = "ingredients"
	FieldIngredientsTok = "ingredients_tok"
	FieldDescription    = "description"
)

// TagSeparator separates ingredient names inside the TAG field. Names can
// contain commas, so a pipe keeps splitting unambiguous.
const TagSeparator = "|"

// Field weights approximating the original relevance profile: dish identity
// dominates, titles and ingredient text follow, long-form description trails.
const (
	weightDishName       = 4.0
	weightRecipeTitle    = 2.5
	weightRecipeName     = 2.5
	weightIngredientsTok = 2.0
	weightDescription    = 1.6
)

// HNSWConfig carries build-time tuning for the two vector fields.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex assembles the FT schema for dish documents.
func buildIndex(vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(IndexName).
		Prefix(DocPrefix).
		Numeric(FieldDishID).
		Numeric(FieldRecipeID).
		TagWithOpts(FieldIngredients, TagSeparator, false).
		Tag(FieldDishNameRaw).
		TextWeighted(FieldDishName, weightDishName).
		TextWeighted(FieldRecipeTitle, weightRecipeTitle).
		TextWeighted(FieldRecipeName, weightRecipeName).
		TextWeighted(FieldIngredientsTok, weightIngredientsTok).
		TextWeighted(FieldDescription, weightDescription).
		VectorHNSW(document.CoreVectorField, vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		VectorHNSW(document.ContextVectorField, vectorDim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
