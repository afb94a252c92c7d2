package fingerprint

import (
	"maps"

	"github.com/nao1215/privacygrade/internal/model"
)

// DefaultThreshold applies to techniques missing from the table.
const DefaultThreshold = 1

// Thresholds maps a technique to the signal count needed to detect it.
type Thresholds map[model.Technique]int

// DefaultThresholds returns the built-in threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		model.TechniqueCanvas:    2,
		model.TechniqueWebGL:     3,
		model.TechniqueAudio:     1,
		model.TechniqueFonts:     10,
		model.TechniqueNavigator: 5,
		model.TechniqueScreen:    3,
		model.TechniqueTimezone:  2,
	}
}

// With returns a copy of the table with overrides applied.
// Non-positive overrides are ignored.
func (t Thresholds) With(overrides map[model.Technique]int) Thresholds {
	out := maps.Clone(t)
	if out == nil {
		out = make(Thresholds)
	}
	for technique, n := range overrides {
		if n > 0 {
			out[model.ParseTechnique(string(technique))] = n
		}
	}
	return out
}

// For returns the threshold of a technique.
func (t Thresholds) For(technique model.Technique) int {
	if n, ok := t[technique]; ok && n > 0 {
		return n
	}
	return DefaultThreshold
}

// Detection is the verdict for one technique.
type Detection struct {
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// Evaluate converts a signal count into a Detection.
// Confidence is count/threshold capped at 1.
func (t Thresholds) Evaluate(technique model.Technique, count int) Detection {
	if count <= 0 {
		return Detection{}
	}
	threshold := t.For(technique)
	return Detection{
		Detected:   count >= threshold,
		Confidence: min(float64(count)/float64(threshold), 1.0),
	}
}
