package filter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/greenplate/myfridge/internal/domain/search/mode"
)

func TestNormalize(t *testing.T) {
	got := Normalize([]string{" Egg ", "ONION", "egg", "", "  ", "tofu"})
	want := []string{"egg", "onion", "tofu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNew_EmptyTermsYieldZeroFilter(t *testing.T) {
	f, err := New([]string{"", "  "}, mode.All, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsZero() {
		t.Error("expected zero filter for blank terms")
	}
	if f.MinimumMatch() != 0 {
		t.Errorf("MinimumMatch = %d, want 0", f.MinimumMatch())
	}
}

func TestNew_TooManyTerms(t *testing.T) {
	terms := make([]string, MaxTerms+1)
	for i := range terms {
		terms[i] = strings.Repeat("x", 3) + string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	_, err := New(terms, mode.Any, 0)
	if err == nil {
		t.Fatal("expected error for too many terms")
	}
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New([]string{"egg"}, "SOME", 0)
	if err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestNew_RatioBounds(t *testing.T) {
	for _, ratio := range []float64{0, -0.5, 1.1} {
		if _, err := New([]string{"egg"}, mode.Ratio, ratio); err == nil {
			t.Errorf("ratio %v: expected error", ratio)
		}
	}
	for _, ratio := range []float64{0.01, 0.6, 1} {
		if _, err := New([]string{"egg"}, mode.Ratio, ratio); err != nil {
			t.Errorf("ratio %v: unexpected error: %v", ratio, err)
		}
	}
}

func TestNew_RatioIgnoredForOtherModes(t *testing.T) {
	f, err := New([]string{"egg"}, mode.All, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Ratio() != 0 {
		t.Errorf("Ratio = %v, want 0 for ALL mode", f.Ratio())
	}
}

func TestMinimumMatch(t *testing.T) {
	terms := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name  string
		mode  mode.Mode
		ratio float64
		want  int
	}{
		{"all", mode.All, 0, 5},
		{"any", mode.Any, 0, 1},
		{"ratio 0.6 of 5", mode.Ratio, 0.6, 3},
		{"ratio 0.5 of 5 rounds up", mode.Ratio, 0.5, 3},
		{"ratio 1.0 equals all", mode.Ratio, 1.0, 5},
		{"tiny ratio still needs one", mode.Ratio, 0.01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(terms, tt.mode, tt.ratio)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.MinimumMatch(); got != tt.want {
				t.Errorf("MinimumMatch = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMinimumMatch_Monotonic(t *testing.T) {
	terms := []string{"a", "b", "c", "d", "e", "f", "g"}
	prev := 0
	for _, ratio := range []float64{0.1, 0.3, 0.5, 0.7, 0.9, 1.0} {
		f, err := New(terms, mode.Ratio, ratio)
		if err != nil {
			t.Fatalf("ratio %v: %v", ratio, err)
		}
		n := f.MinimumMatch()
		if n < prev {
			t.Errorf("MinimumMatch decreased at ratio %v: %d < %d", ratio, n, prev)
		}
		prev = n
	}
}

func TestMatches(t *testing.T) {
	doc := []string{"egg", "onion", "rice", "soy sauce"}

	tests := []struct {
		name  string
		terms []string
		mode  mode.Mode
		ratio float64
		want  bool
	}{
		{"all present", []string{"egg", "rice"}, mode.All, 0, true},
		{"all missing one", []string{"egg", "beef"}, mode.All, 0, false},
		{"any one present", []string{"beef", "rice"}, mode.Any, 0, true},
		{"any none present", []string{"beef", "pork"}, mode.Any, 0, false},
		{"ratio met", []string{"egg", "onion", "beef"}, mode.Ratio, 0.6, true},
		{"ratio not met", []string{"egg", "beef", "pork"}, mode.Ratio, 0.6, false},
		{"ratio full overlap", []string{"egg", "rice"}, mode.Ratio, 1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.terms, tt.mode, tt.ratio)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.Matches(doc); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_ZeroFilterMatchesEverything(t *testing.T) {
	var f Filter
	if !f.Matches(nil) {
		t.Error("zero filter should match an empty document")
	}
	if !f.Matches([]string{"egg"}) {
		t.Error("zero filter should match any document")
	}
}

func TestMatches_RatioEqualsAllAtFullRatio(t *testing.T) {
	terms := []string{"a", "b", "c"}
	all, _ := New(terms, mode.All, 0)
	full, _ := New(terms, mode.Ratio, 1.0)

	docs := [][]string{
		{"a", "b", "c"},
		{"a", "b"},
		{"a", "b", "c", "d"},
		nil,
	}
	for _, doc := range docs {
		if all.Matches(doc) != full.Matches(doc) {
			t.Errorf("doc %v: ALL and RATIO=1.0 disagree", doc)
		}
	}
}
