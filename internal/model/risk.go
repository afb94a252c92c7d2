package model

import (
	"fmt"
	"strings"
)

// Risk represents how much a tracker or fingerprinting technique threatens
// the user's privacy. Values are ordered so that comparisons like
// risk >= RiskMedium work as expected.
type Risk int

const (
	// RiskLow is used for social widgets and tracking parameter matches.
	RiskLow Risk = iota

	// RiskMedium is used for analytics, heatmaps and keyword matches.
	RiskMedium

	// RiskHigh is used for advertising networks and fingerprinting vendors.
	RiskHigh
)

// String returns the lowercase name of the risk level.
func (r Risk) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText encodes the risk as its lowercase name.
func (r Risk) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a risk level name.
func (r *Risk) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "low":
		*r = RiskLow
	case "medium":
		*r = RiskMedium
	case "high":
		*r = RiskHigh
	default:
		return fmt.Errorf("unknown risk level %q", string(text))
	}
	return nil
}

// Risks returns every risk level from high to low.
// Reports use this order when listing counts.
func Risks() []Risk {
	return []Risk{RiskHigh, RiskMedium, RiskLow}
}
