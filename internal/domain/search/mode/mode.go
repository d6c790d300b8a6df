package mode

import (
	"fmt"
	"strings"
)

// Mode is the ingredient match strategy.
type Mode string

// Ingredient match mode constants.
const (
	// All requires every filter ingredient to be present.
	All Mode = "ALL"
	// Any requires at least one filter ingredient to be present.
	Any Mode = "ANY"
	// Ratio requires a configurable share of filter ingredients to be present.
	Ratio Mode = "RATIO"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == All || m == Any || m == Ratio
}

// Parse resolves a raw string into a Mode at the request boundary.
// Matching is case-insensitive; an unknown value is an error, not a default.
func Parse(raw string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(raw)))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid match mode: %q", raw)
	}
	return m, nil
}
