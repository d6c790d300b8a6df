// Package catalog is the relational repository for dishes, recipes,
// ingredients and user fridges.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/greenplate/myfridge/internal/domain"
	domcat "github.com/greenplate/myfridge/internal/domain/catalog"
	"github.com/greenplate/myfridge/internal/domain/search/filter"
)

// Repo implements the catalog contracts of the use-case and transport layers.
type Repo struct {
	db *gorm.DB
}

// New creates a catalog repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Migrate creates or updates the schema for all catalog entities.
func (r *Repo) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&domcat.User{},
		&domcat.Ingredient{},
		&domcat.Dish{},
		&domcat.Recipe{},
		&domcat.RecipeIngredient{},
		&domcat.UserIngredient{},
	)
	if err != nil {
		return fmt.Errorf("migrate catalog schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return Ping(ctx, r.db)
}

// DishPage returns one page of dishes with recipes and their ingredients
// eagerly loaded, ordered by id for stable pagination.
func (r *Repo) DishPage(ctx context.Context, offset, limit int) ([]domcat.Dish, error) {
	var dishes []domcat.Dish
	err := r.db.WithContext(ctx).
		Preload("Recipes.Items.Ingredient").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&dishes).Error
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return dishes, nil
}

// RecipePage returns one page of recipes with their dish and ingredients
// eagerly loaded, ordered by id. This is the reindex read path: batches are
// sized in recipe records, not dishes.
func (r *Repo) RecipePage(ctx context.Context, offset, limit int) ([]domcat.Recipe, error) {
	var recipes []domcat.Recipe
	err := r.db.WithContext(ctx).
		Preload("Dish").
		Preload("Items.Ingredient").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// GetDish loads a dish with its recipes.
func (r *Repo) GetDish(ctx context.Context, id uint) (*domcat.Dish, error) {
	var dish domcat.Dish
	err := r.db.WithContext(ctx).
		Preload("Recipes.Items.Ingredient").
		First(&dish, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dish %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get dish %d: %w", id, err)
	}
	return &dish, nil
}

// CreateDish stores a dish together with its recipes, resolving recipe
// ingredient names through get-or-create, all in one transaction.
func (r *Repo) CreateDish(ctx context.Context, dish *domcat.Dish) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipes := dish.Recipes
		dish.Recipes = nil

		if err := tx.Create(dish).Error; err != nil {
			return err
		}

		for i := range recipes {
			recipes[i].DishID = dish.ID
			if err := createRecipe(tx, &recipes[i]); err != nil {
				return err
			}
		}
		dish.Recipes = recipes
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("dish %q: %w", dish.Name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create dish %q: %w", dish.Name, err)
	}
	return nil
}

// AddRecipe stores a recipe under an existing dish.
func (r *Repo) AddRecipe(ctx context.Context, dishID uint, recipe *domcat.Recipe) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dish domcat.Dish
		if err := tx.First(&dish, dishID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("dish %d: %w", dishID, domain.ErrNotFound)
			}
			return err
		}
		recipe.DishID = dish.ID
		return createRecipe(tx, recipe)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("add recipe to dish %d: %w", dishID, err)
	}
	return nil
}

// CreateIngredient stores a master ingredient.
func (r *Repo) CreateIngredient(ctx context.Context, ing *domcat.Ingredient) error {
	ing.Name = filter.NormalizeTerm(ing.Name)
	if ing.Name == "" {
		return fmt.Errorf("ingredient name: %w", domain.ErrValidation)
	}
	if err := r.db.WithContext(ctx).Create(ing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("ingredient %q: %w", ing.Name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create ingredient %q: %w", ing.Name, err)
	}
	return nil
}

// createRecipe inserts a recipe and its ingredient links inside tx. Items may
// reference ingredients by name only; missing master records are created.
func createRecipe(tx *gorm.DB, recipe *domcat.Recipe) error {
	items := recipe.Items
	recipe.Items = nil

	if err := tx.Create(recipe).Error; err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		if item.IngredientID == 0 {
			ing, err := getOrCreateIngredient(tx, item.Ingredient.Name)
			if err != nil {
				return err
			}
			item.Ingredient = ing
			item.IngredientID = ing.ID
		}
		item.RecipeID = recipe.ID
		if err := tx.Create(item).Error; err != nil {
			return err
		}
	}
	recipe.Items = items
	return nil
}

func getOrCreateIngredient(tx *gorm.DB, name string) (domcat.Ingredient, error) {
	name = filter.NormalizeTerm(name)
	if name == "" {
		return domcat.Ingredient{}, fmt.Errorf("ingredient name: %w", domain.ErrValidation)
	}

	var ing domcat.Ingredient
	err := tx.Where(&domcat.Ingredient{Name: name}).
		FirstOrCreate(&ing, &domcat.Ingredient{Name: name}).Error
	if err != nil {
		return domcat.Ingredient{}, fmt.Errorf("get or create ingredient %q: %w", name, err)
	}
	return ing, nil
}
