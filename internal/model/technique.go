package model

import "strings"

// Technique is a browser API usage pattern associated with fingerprinting.
type Technique string

// Known fingerprinting techniques.
const (
	TechniqueCanvas    Technique = "canvas"
	TechniqueWebGL     Technique = "webgl"
	TechniqueAudio     Technique = "audio"
	TechniqueFonts     Technique = "fonts"
	TechniqueNavigator Technique = "navigator"
	TechniqueScreen    Technique = "screen"
	TechniqueTimezone  Technique = "timezone"
)

// Techniques returns the known techniques, strong ones first.
func Techniques() []Technique {
	return []Technique{
		TechniqueCanvas,
		TechniqueWebGL,
		TechniqueAudio,
		TechniqueFonts,
		TechniqueNavigator,
		TechniqueScreen,
		TechniqueTimezone,
	}
}

// ParseTechnique normalizes a technique name. Unknown names are kept so
// they can still be counted under a default threshold.
func ParseTechnique(name string) Technique {
	return Technique(strings.ToLower(strings.TrimSpace(name)))
}

// IsStrong reports whether the technique alone identifies a device with
// high accuracy (canvas, webgl and audio).
func (t Technique) IsStrong() bool {
	switch t {
	case TechniqueCanvas, TechniqueWebGL, TechniqueAudio:
		return true
	default:
		return false
	}
}

// IsModerate reports whether the technique is one of the attribute probes
// (fonts, navigator, screen, timezone).
func (t Technique) IsModerate() bool {
	switch t {
	case TechniqueFonts, TechniqueNavigator, TechniqueScreen, TechniqueTimezone:
		return true
	default:
		return false
	}
}
