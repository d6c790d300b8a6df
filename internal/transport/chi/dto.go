package chi

import "time"

// errorCode identifies a machine-readable error category in responses.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeValidationFailed  errorCode = "validation_failed"
	codeNotFound          errorCode = "not_found"
	codeAlreadyExists     errorCode = "already_exists"
	codeReindexRunning    errorCode = "reindex_running"
	codeRateLimited       errorCode = "rate_limited"
	codeEmbeddingProvider errorCode = "embedding_provider_error"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type searchGroupItem struct {
	DishID    int    `json:"dish_id"`
	DishName  string `json:"dish_name"`
	RecipeIDs []int  `json:"recipe_ids"`
}

type searchResponse struct {
	Total   int               `json:"total"`
	Results []searchGroupItem `json:"results"`
}

type reindexStatusResponse struct {
	State         string     `json:"state"`
	Processed     int        `json:"processed"`
	Indexed       int        `json:"indexed"`
	Skipped       int        `json:"skipped"`
	Vectorless    int        `json:"vectorless"`
	FailedBatches int        `json:"failed_batches"`
	Documents     int        `json:"documents"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

type recipeIngredientRequest struct {
	Name            string `json:"name"`
	QuantityDisplay string `json:"quantity_display,omitempty"`
}

type recipeRequest struct {
	Name           string                    `json:"name"`
	Title          string                    `json:"title,omitempty"`
	Author         string                    `json:"author,omitempty"`
	Difficulty     int                       `json:"difficulty,omitempty"`
	ServingSize    string                    `json:"serving_size,omitempty"`
	CookingTimeMin int                       `json:"cooking_time_min,omitempty"`
	Instructions   string                    `json:"instructions,omitempty"`
	YoutubeURL     string                    `json:"youtube_url,omitempty"`
	ThumbnailURL   string                    `json:"thumbnail_url,omitempty"`
	Ingredients    []recipeIngredientRequest `json:"ingredients"`
}

type createDishRequest struct {
	Name                string          `json:"name"`
	CuisineType         string          `json:"cuisine_type,omitempty"`
	SemanticDescription string          `json:"semantic_description,omitempty"`
	ThumbnailURL        string          `json:"thumbnail_url,omitempty"`
	Recipes             []recipeRequest `json:"recipes,omitempty"`
}

type createIngredientRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	StorageType string `json:"storage_type,omitempty"`
}

type ingredientResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	StorageType string `json:"storage_type,omitempty"`
}

type recipeIngredientResponse struct {
	Name            string `json:"name"`
	QuantityDisplay string `json:"quantity_display,omitempty"`
}

type recipeResponse struct {
	ID             uint                       `json:"id"`
	Name           string                     `json:"name"`
	Title          string                     `json:"title,omitempty"`
	Author         string                     `json:"author,omitempty"`
	Difficulty     int                        `json:"difficulty,omitempty"`
	ServingSize    string                     `json:"serving_size,omitempty"`
	CookingTimeMin int                        `json:"cooking_time_min,omitempty"`
	Instructions   string                     `json:"instructions,omitempty"`
	Ingredients    []recipeIngredientResponse `json:"ingredients"`
}

type dishResponse struct {
	ID                  uint             `json:"id"`
	Name                string           `json:"name"`
	CuisineType         string           `json:"cuisine_type,omitempty"`
	SemanticDescription string           `json:"semantic_description,omitempty"`
	Recipes             []recipeResponse `json:"recipes"`
}

type dishListResponse struct {
	Items  []dishResponse `json:"items"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
