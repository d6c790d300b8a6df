package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/greenplate/myfridge/internal/domain"
	domcat "github.com/greenplate/myfridge/internal/domain/catalog"
	domreindex "github.com/greenplate/myfridge/internal/domain/reindex"
	"github.com/greenplate/myfridge/internal/domain/search/mode"
	"github.com/greenplate/myfridge/internal/domain/search/request"
	"github.com/greenplate/myfridge/internal/domain/search/result"
	"github.com/greenplate/myfridge/internal/logger"
	healthuc "github.com/greenplate/myfridge/internal/usecase/health"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Searcher runs a hybrid dish search.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) ([]result.Group, int, error)
}

// Reindexer controls the batch reindex pipeline.
type Reindexer interface {
	Trigger(ctx context.Context) error
	Status() domreindex.Report
}

// Catalog is the relational surface the CRUD handlers need.
type Catalog interface {
	DishPage(ctx context.Context, offset, limit int) ([]domcat.Dish, error)
	GetDish(ctx context.Context, id uint) (*domcat.Dish, error)
	CreateDish(ctx context.Context, dish *domcat.Dish) error
	AddRecipe(ctx context.Context, dishID uint, recipe *domcat.Recipe) error
	CreateIngredient(ctx context.Context, ing *domcat.Ingredient) error
}

// Health reports component readiness.
type Health interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server hosts the HTTP API.
type Server struct {
	search        Searcher
	reindex       Reindexer
	catalog       Catalog
	health        Health
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, reindex Reindexer, catalog Catalog, health Health, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		reindex: reindex,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrReindexRunning, http.StatusConflict, codeReindexRunning),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes mounts all handlers on the router. Middleware is the caller's concern.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chirouter.Router) {
		r.Get("/dishes/search", s.SearchDishes)

		r.Get("/dishes", s.ListDishes)
		r.Post("/dishes", s.CreateDish)
		r.Get("/dishes/{id}", s.GetDish)
		r.Post("/dishes/{id}/recipes", s.AddRecipe)

		r.Post("/ingredients/admin", s.CreateIngredient)

		r.Post("/admin/reindex", s.TriggerReindex)
		r.Get("/admin/reindex/status", s.ReindexStatus)
	})
}

// SearchDishes handles GET /api/v1/dishes/search.
func (s *Server) SearchDishes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var m mode.Mode
	if raw := q.Get("mode"); raw != "" {
		parsed, err := mode.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		m = parsed
	}

	var ratio float64
	if raw := q.Get("ratio"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "ratio must be a number")
			return
		}
		ratio = v
	}

	size, err := parseIntParam(q.Get("size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "size must be an integer")
		return
	}
	topK, err := parseIntParam(q.Get("topk"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "topk must be an integer")
		return
	}

	req, err := request.New(q.Get("q"), parseIngredients(q), m, ratio, size, topK)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	groups, total, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchGroupItem, len(groups))
	for i := range groups {
		items[i] = searchGroupItem{
			DishID:    groups[i].DishID(),
			DishName:  groups[i].DishName(),
			RecipeIDs: groups[i].RecipeIDs(),
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{Total: total, Results: items})
}

// parseIngredients reads the ingredients parameter: repeated values and
// comma-separated lists are both accepted.
func parseIngredients(q map[string][]string) []string {
	var out []string
	for _, raw := range q["ingredients"] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// TriggerReindex handles POST /api/v1/admin/reindex.
func (s *Server) TriggerReindex(w http.ResponseWriter, r *http.Request) {
	if err := s.reindex.Trigger(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// ReindexStatus handles GET /api/v1/admin/reindex/status.
func (s *Server) ReindexStatus(w http.ResponseWriter, r *http.Request) {
	report := s.reindex.Status()

	resp := reindexStatusResponse{
		State:         string(report.State),
		Processed:     report.Processed,
		Indexed:       report.Indexed,
		Skipped:       report.Skipped,
		Vectorless:    report.Vectorless,
		FailedBatches: report.FailedBatches,
		Documents:     report.Documents,
	}
	if !report.StartedAt.IsZero() {
		t := report.StartedAt
		resp.StartedAt = &t
	}
	if !report.FinishedAt.IsZero() {
		t := report.FinishedAt
		resp.FinishedAt = &t
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateDish handles POST /api/v1/dishes.
func (s *Server) CreateDish(w http.ResponseWriter, r *http.Request) {
	var req createDishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "dish name is required")
		return
	}

	dish := dishFromRequest(req)
	if err := s.catalog.CreateDish(r.Context(), dish); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/dishes/"+strconv.FormatUint(uint64(dish.ID), 10))
	writeJSON(w, http.StatusCreated, dishToResponse(dish))
}

// GetDish handles GET /api/v1/dishes/{id}.
func (s *Server) GetDish(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chirouter.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "dish id must be a positive integer")
		return
	}

	dish, err := s.catalog.GetDish(r.Context(), uint(id))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dishToResponse(dish))
}

// ListDishes handles GET /api/v1/dishes.
func (s *Server) ListDishes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset, err := parseIntParam(q.Get("offset"))
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "offset must be a non-negative integer")
		return
	}
	limit, err := parseIntParam(q.Get("limit"))
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a non-negative integer")
		return
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	dishes, err := s.catalog.DishPage(r.Context(), offset, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]dishResponse, len(dishes))
	for i := range dishes {
		items[i] = dishToResponse(&dishes[i])
	}

	writeJSON(w, http.StatusOK, dishListResponse{Items: items, Offset: offset, Limit: limit})
}

// AddRecipe handles POST /api/v1/dishes/{id}/recipes.
func (s *Server) AddRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chirouter.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "dish id must be a positive integer")
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "recipe name is required")
		return
	}

	recipe := recipeFromRequest(req)
	if err := s.catalog.AddRecipe(r.Context(), uint(id), recipe); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, recipeToResponse(recipe))
}

// CreateIngredient handles POST /api/v1/ingredients/admin.
func (s *Server) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req createIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ing := &domcat.Ingredient{
		Name:        req.Name,
		Category:    req.Category,
		StorageType: req.StorageType,
	}
	if err := s.catalog.CreateIngredient(r.Context(), ing); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingredientResponse{
		ID:          ing.ID,
		Name:        ing.Name,
		Category:    ing.Category,
		StorageType: ing.StorageType,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func dishFromRequest(req createDishRequest) *domcat.Dish {
	dish := &domcat.Dish{
		Name:                strings.TrimSpace(req.Name),
		CuisineType:         req.CuisineType,
		SemanticDescription: req.SemanticDescription,
		ThumbnailURL:        req.ThumbnailURL,
	}
	for _, rr := range req.Recipes {
		dish.Recipes = append(dish.Recipes, *recipeFromRequest(rr))
	}
	return dish
}

func recipeFromRequest(req recipeRequest) *domcat.Recipe {
	recipe := &domcat.Recipe{
		Name:           strings.TrimSpace(req.Name),
		Title:          req.Title,
		Author:         req.Author,
		Difficulty:     req.Difficulty,
		ServingSize:    req.ServingSize,
		CookingTimeMin: req.CookingTimeMin,
		Instructions:   req.Instructions,
		YoutubeURL:     req.YoutubeURL,
		ThumbnailURL:   req.ThumbnailURL,
	}
	for _, item := range req.Ingredients {
		recipe.Items = append(recipe.Items, domcat.RecipeIngredient{
			QuantityDisplay: item.QuantityDisplay,
			Ingredient:      domcat.Ingredient{Name: item.Name},
		})
	}
	return recipe
}

func dishToResponse(d *domcat.Dish) dishResponse {
	resp := dishResponse{
		ID:                  d.ID,
		Name:                d.Name,
		CuisineType:         d.CuisineType,
		SemanticDescription: d.SemanticDescription,
		Recipes:             make([]recipeResponse, len(d.Recipes)),
	}
	for i := range d.Recipes {
		resp.Recipes[i] = recipeToResponse(&d.Recipes[i])
	}
	return resp
}

func recipeToResponse(r *domcat.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:             r.ID,
		Name:           r.Name,
		Title:          r.Title,
		Author:         r.Author,
		Difficulty:     r.Difficulty,
		ServingSize:    r.ServingSize,
		CookingTimeMin: r.CookingTimeMin,
		Instructions:   r.Instructions,
		Ingredients:    make([]recipeIngredientResponse, len(r.Items)),
	}
	for i, item := range r.Items {
		resp.Ingredients[i] = recipeIngredientResponse{
			Name:            item.Ingredient.Name,
			QuantityDisplay: item.QuantityDisplay,
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrReindexRunning,
		domain.ErrValidation,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
