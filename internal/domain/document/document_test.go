package document

import (
	"reflect"
	"testing"

	"github.com/greenplate/myfridge/internal/domain/catalog"
)

func TestNew_Valid(t *testing.T) {
	doc, err := New(3, 7, "Kimchi Stew", "grandma style", "Grandma's Kimchi Stew",
		[]string{" Kimchi ", "PORK", "tofu", "kimchi"}, "Boil it all.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "3_7" {
		t.Errorf("ID = %q, want 3_7", doc.ID())
	}
	want := []string{"kimchi", "pork", "tofu"}
	if !reflect.DeepEqual(doc.Ingredients(), want) {
		t.Errorf("Ingredients = %v, want %v", doc.Ingredients(), want)
	}
	if doc.HasVectors() {
		t.Error("new document should be vectorless")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		dishID, recipeID int
		dishName         string
	}{
		{"zero dish id", 0, 1, "stew"},
		{"negative recipe id", 1, -1, "stew"},
		{"blank dish name", 1, 1, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dishID, tt.recipeID, tt.dishName, "", "", nil, "")
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCoreIdentityText(t *testing.T) {
	doc, _ := New(1, 1, "Bibimbap", "", "", []string{"rice", "egg", "gochujang"}, "")
	want := "Bibimbap: rice, egg, gochujang"
	if doc.CoreIdentityText() != want {
		t.Errorf("CoreIdentityText = %q, want %q", doc.CoreIdentityText(), want)
	}

	bare, _ := New(1, 2, "Bibimbap", "", "", nil, "")
	if bare.CoreIdentityText() != "Bibimbap" {
		t.Errorf("CoreIdentityText = %q, want dish name only", bare.CoreIdentityText())
	}
}

func TestContextText_FallsBackToIdentity(t *testing.T) {
	doc, _ := New(1, 1, "Bibimbap", "", "", []string{"rice"}, "")
	if doc.ContextText() != doc.CoreIdentityText() {
		t.Errorf("ContextText = %q, want identity fallback", doc.ContextText())
	}

	withDesc, _ := New(1, 1, "Bibimbap", "", "", []string{"rice"}, "Mix everything in a hot stone bowl.")
	if withDesc.ContextText() != "Mix everything in a hot stone bowl." {
		t.Errorf("ContextText = %q", withDesc.ContextText())
	}
}

func TestDerive(t *testing.T) {
	dish := &catalog.Dish{
		ID:                  10,
		Name:                "Kimchi Stew",
		SemanticDescription: "Spicy fermented cabbage stew.",
	}
	recipe := &catalog.Recipe{
		ID:           42,
		DishID:       10,
		Name:         "quick weeknight version",
		Title:        "15-Minute Kimchi Stew",
		Instructions: "Fry kimchi, add water, simmer.",
		Items: []catalog.RecipeIngredient{
			{Ingredient: catalog.Ingredient{Name: "Kimchi"}},
			{Ingredient: catalog.Ingredient{Name: "Pork"}},
		},
	}

	doc, err := Derive(dish, recipe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "10_42" {
		t.Errorf("ID = %q", doc.ID())
	}
	if doc.Description() != "Fry kimchi, add water, simmer." {
		t.Errorf("Description = %q, want recipe instructions", doc.Description())
	}
	want := []string{"kimchi", "pork"}
	if !reflect.DeepEqual(doc.Ingredients(), want) {
		t.Errorf("Ingredients = %v, want %v", doc.Ingredients(), want)
	}
}

func TestDerive_DescriptionFallback(t *testing.T) {
	dish := &catalog.Dish{ID: 1, Name: "Japchae", SemanticDescription: "Stir-fried glass noodles."}
	recipe := &catalog.Recipe{ID: 2, DishID: 1, Name: "basic"}

	doc, err := Derive(dish, recipe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Description() != "Stir-fried glass noodles." {
		t.Errorf("Description = %q, want dish semantic description", doc.Description())
	}
}

func TestDerive_NilInputs(t *testing.T) {
	if _, err := Derive(nil, &catalog.Recipe{ID: 1}); err == nil {
		t.Error("expected error for nil dish")
	}
	if _, err := Derive(&catalog.Dish{ID: 1, Name: "x"}, nil); err == nil {
		t.Error("expected error for nil recipe")
	}
}

func TestSetVectors(t *testing.T) {
	doc, _ := New(1, 1, "Bibimbap", "", "", nil, "")

	if err := doc.SetVectors([]float32{1, 2}, []float32{3}); err == nil {
		t.Fatal("expected error for mismatched dims")
	}
	if doc.HasVectors() {
		t.Error("failed SetVectors must not attach vectors")
	}

	if err := doc.SetVectors([]float32{1, 2}, []float32{3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.HasVectors() {
		t.Error("expected vectors attached")
	}
}
