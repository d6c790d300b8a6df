// Package catalog holds the relational entities the service manages:
// users and their fridge contents, master ingredients, dishes and recipes.
package catalog

import "time"

// User is a registered account.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;size:255;not null"`
	HashedPassword string `gorm:"size:255;not null"`
	Nickname       string `gorm:"size:64"`
	IsActive       bool   `gorm:"default:true"`
	IsAdmin        bool   `gorm:"default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Fridge []UserIngredient `gorm:"foreignKey:UserID"`
}

// Ingredient is a master ingredient record shared by recipes and fridges.
type Ingredient struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:128;not null"`
	Category    string `gorm:"size:64"`
	StorageType string `gorm:"size:32"`
}

// Dish groups recipes that cook the same food.
type Dish struct {
	ID                  uint   `gorm:"primaryKey"`
	Name                string `gorm:"uniqueIndex;size:128;not null"`
	CuisineType         string `gorm:"size:64"`
	SemanticDescription string `gorm:"type:text"`
	ThumbnailURL        string `gorm:"size:512"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Recipes []Recipe `gorm:"foreignKey:DishID"`
}

// Recipe is one concrete way to cook a dish.
type Recipe struct {
	ID             uint   `gorm:"primaryKey"`
	DishID         uint   `gorm:"index;not null"`
	Name           string `gorm:"size:128;not null"`
	Title          string `gorm:"size:255"`
	Author         string `gorm:"size:128"`
	Difficulty     int
	ServingSize    string `gorm:"size:32"`
	CookingTimeMin int
	Instructions   string `gorm:"type:text"`
	YoutubeURL     string `gorm:"size:512"`
	ThumbnailURL   string `gorm:"size:512"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Dish  *Dish              `gorm:"foreignKey:DishID"`
	Items []RecipeIngredient `gorm:"foreignKey:RecipeID"`
}

// RecipeIngredient links a recipe to a master ingredient with a display quantity.
type RecipeIngredient struct {
	RecipeID        uint   `gorm:"primaryKey"`
	IngredientID    uint   `gorm:"primaryKey"`
	QuantityDisplay string `gorm:"size:64"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID"`
}

// UserIngredient is one fridge entry: an ingredient a user currently has.
type UserIngredient struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"index;not null"`
	IngredientID   uint `gorm:"not null"`
	ExpirationDate *time.Time
	CreatedAt      time.Time

	Ingredient Ingredient `gorm:"foreignKey:IngredientID"`
}

// IngredientNames returns the recipe's ingredient names in item order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Ingredient.Name != "" {
			names = append(names, item.Ingredient.Name)
		}
	}
	return names
}
