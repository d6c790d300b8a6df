package searchindex

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/greenplate/myfridge/internal/db"
	"github.com/greenplate/myfridge/internal/domain/document"
	"github.com/greenplate/myfridge/internal/domain/search/result"
)

// buildHashFields converts a search document into a flat map[string]string for HSET.
// Vector fields are omitted entirely for vectorless documents so KNN never
// sees a zero-length blob.
func buildHashFields(doc *document.Document) map[string]string {
	m := map[string]string{
		FieldDishID:         strconv.Itoa(doc.DishID()),
		FieldRecipeID:       strconv.Itoa(doc.RecipeID()),
		FieldDishName:       doc.DishName(),
		FieldDishNameRaw:    strings.ToLower(doc.DishName()),
		FieldRecipeName:     doc.RecipeName(),
		FieldRecipeTitle:    doc.RecipeTitle(),
		FieldIngredients:    strings.Join(doc.Ingredients(), TagSeparator),
		FieldIngredientsTok: strings.Join(doc.Ingredients(), " "),
		FieldDescription:    doc.Description(),
	}
	if doc.HasVectors() {
		m[document.CoreVectorField] = vectorToBytes(doc.CoreVector())
		m[document.ContextVectorField] = vectorToBytes(doc.ContextVector())
	}
	return m
}

// docKey returns the Redis key for a document.
func docKey(doc *document.Document) string {
	return DocPrefix + doc.ID()
}

// parseHit converts one FT.SEARCH entry into a recipe-level hit.
func parseHit(e db.SearchEntry) (result.Hit, error) {
	dishID, err := strconv.Atoi(e.Fields[FieldDishID])
	if err != nil {
		return result.Hit{}, fmt.Errorf("parse dish_id of %s: %w", e.Key, err)
	}
	recipeID, err := strconv.Atoi(e.Fields[FieldRecipeID])
	if err != nil {
		return result.Hit{}, fmt.Errorf("parse recipe_id of %s: %w", e.Key, err)
	}

	var ingredients []string
	if raw := e.Fields[FieldIngredients]; raw != "" {
		ingredients = strings.Split(raw, TagSeparator)
	}

	id := strings.TrimPrefix(e.Key, DocPrefix)
	return result.NewHit(id, dishID, recipeID, e.Fields[FieldDishName], ingredients, e.Score), nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
