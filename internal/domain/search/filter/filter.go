package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/greenplate/myfridge/internal/domain/search/mode"
)

// MaxTerms is the maximum number of ingredient terms per filter.
const MaxTerms = 64

// Filter is a validated ingredient constraint: a normalized term set plus a
// match mode. The zero value means "no constraint".
type Filter struct {
	terms     []string
	matchMode mode.Mode
	ratio     float64
}

// New validates and creates an ingredient Filter.
// Terms are normalized (trim, lower-case, dedupe); an empty normalized set
// yields the zero Filter regardless of mode. Ratio is only meaningful for
// mode.Ratio and must be in (0, 1].
func New(terms []string, m mode.Mode, ratio float64) (Filter, error) {
	normalized := Normalize(terms)
	if len(normalized) == 0 {
		return Filter{}, nil
	}
	if len(normalized) > MaxTerms {
		return Filter{}, fmt.Errorf("too many ingredient terms (max %d)", MaxTerms)
	}
	if !m.IsValid() {
		return Filter{}, fmt.Errorf("invalid match mode: %q", m)
	}
	if m == mode.Ratio {
		if ratio <= 0 || ratio > 1 {
			return Filter{}, fmt.Errorf("ratio must be in (0, 1], got %v", ratio)
		}
	} else {
		ratio = 0
	}
	return Filter{terms: normalized, matchMode: m, ratio: ratio}, nil
}

// Normalize applies the shared term normalization: trim, lower-case, drop
// blanks, dedupe preserving order. Index writers and query builders must use
// the same normalization or tag matching silently breaks.
func Normalize(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		n := NormalizeTerm(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NormalizeTerm normalizes a single ingredient term.
func NormalizeTerm(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// IsZero reports whether the filter carries no constraint.
func (f Filter) IsZero() bool { return len(f.terms) == 0 }

// Terms returns the normalized ingredient terms.
func (f Filter) Terms() []string { return f.terms }

// Mode returns the match mode.
func (f Filter) Mode() mode.Mode { return f.matchMode }

// Ratio returns the required overlap share for mode.Ratio.
func (f Filter) Ratio() float64 { return f.ratio }

// MinimumMatch returns how many filter terms a document must contain:
// all of them for All, one for Any, ceil(len·ratio) for Ratio.
func (f Filter) MinimumMatch() int {
	if f.IsZero() {
		return 0
	}
	switch f.matchMode {
	case mode.All:
		return len(f.terms)
	case mode.Any:
		return 1
	case mode.Ratio:
		n := int(math.Ceil(float64(len(f.terms)) * f.ratio))
		if n < 1 {
			n = 1
		}
		return n
	}
	return 0
}

// Matches reports whether a document's ingredient list satisfies the filter.
// Document ingredients are assumed already normalized at index time.
func (f Filter) Matches(ingredients []string) bool {
	if f.IsZero() {
		return true
	}
	have := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		have[ing] = struct{}{}
	}
	overlap := 0
	for _, t := range f.terms {
		if _, ok := have[t]; ok {
			overlap++
		}
	}
	return overlap >= f.MinimumMatch()
}
