package request

import (
	"fmt"
	"strings"

	"github.com/greenplate/myfridge/internal/domain/search/filter"
	"github.com/greenplate/myfridge/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 512
	DefaultSize    = 20
	MaxSize        = 100
	DefaultTopK    = 3
	MaxTopK        = 10
	// DefaultRatio is the overlap share used when mode is Ratio and no ratio
	// was supplied.
	DefaultRatio = 0.6
)

// Request is a validated dish search query.
type Request struct {
	query       string
	ingFilter   filter.Filter
	size        int
	topKPerDish int
}

// New validates and normalizes search parameters.
// Defaults: mode=RATIO with ratio 0.6, size=20, topK=3. Both text query and
// ingredient list are optional; an entirely empty request is still valid and
// resolves to an empty result upstream.
func New(
	query string,
	ingredients []string,
	m mode.Mode,
	ratio float64,
	size, topKPerDish int,
) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Ratio
	}
	if m == mode.Ratio && ratio == 0 {
		ratio = DefaultRatio
	}
	f, err := filter.New(ingredients, m, ratio)
	if err != nil {
		return Request{}, err
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if topKPerDish <= 0 {
		topKPerDish = DefaultTopK
	}
	if topKPerDish > MaxTopK {
		topKPerDish = MaxTopK
	}

	return Request{
		query:       query,
		ingFilter:   f,
		size:        size,
		topKPerDish: topKPerDish,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Filter returns the ingredient constraint.
func (r *Request) Filter() filter.Filter { return r.ingFilter }

// Size returns the maximum number of dish groups to return.
func (r *Request) Size() int { return r.size }

// TopKPerDish returns the maximum recipes kept per dish group.
func (r *Request) TopKPerDish() int { return r.topKPerDish }

// IsEmpty reports whether the request carries no searchable signal.
func (r *Request) IsEmpty() bool { return r.query == "" && r.ingFilter.IsZero() }
