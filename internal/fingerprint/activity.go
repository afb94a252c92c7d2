package fingerprint

import (
	"maps"
	"slices"

	"github.com/nao1215/privacygrade/internal/model"
)

// Signal is one observed use of a fingerprinting-prone browser API.
type Signal struct {
	Technique model.Technique `json:"technique"`

	// Canvas is set by instrumentation for canvas signals when the
	// canvas dimensions are known.
	Canvas *CanvasSample `json:"canvas,omitempty"`
}

// Activity accumulates fingerprinting signals for one page.
// It is not safe for concurrent use; the owning page serializes access.
type Activity struct {
	thresholds Thresholds
	counts     map[model.Technique]int
	alerted    map[model.Technique]bool
	entropy    float64
}

// NewActivity creates an empty Activity. A nil table means DefaultThresholds.
func NewActivity(thresholds Thresholds) *Activity {
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	return &Activity{
		thresholds: thresholds,
		counts:     make(map[model.Technique]int),
		alerted:    make(map[model.Technique]bool),
	}
}

// Record counts a signal. It returns counted=false when a canvas signal
// fails the size gate, and alert=true the first time the technique is
// detected on this page.
func (a *Activity) Record(sig Signal) (counted, alert bool) {
	technique := model.ParseTechnique(string(sig.Technique))
	if technique == "" {
		return false, false
	}

	if technique == model.TechniqueCanvas && sig.Canvas != nil {
		if !sig.Canvas.Eligible() {
			return false, false
		}
		if len(sig.Canvas.Pixels) > 0 {
			a.entropy = max(a.entropy, Entropy(sig.Canvas.Pixels))
		}
	}

	a.counts[technique]++

	if a.alerted[technique] || !a.Evaluate(technique).Detected {
		return true, false
	}
	a.alerted[technique] = true
	return true, true
}

// Evaluate returns the current Detection of a technique.
func (a *Activity) Evaluate(technique model.Technique) Detection {
	return evaluate(a.thresholds, technique, a.counts[technique], a.entropy)
}

// Counts returns a copy of the signal counts.
func (a *Activity) Counts() map[model.Technique]int {
	return maps.Clone(a.counts)
}

// CanvasEntropy returns the highest canvas entropy observed.
func (a *Activity) CanvasEntropy() float64 {
	return a.entropy
}

// Report summarizes the detected techniques.
func (a *Activity) Report() model.FingerprintReport {
	return a.thresholds.Report(a.counts, a.entropy)
}

// evaluate applies the count threshold and, for canvas, the entropy
// corroboration.
func evaluate(t Thresholds, technique model.Technique, count int, entropy float64) Detection {
	d := t.Evaluate(technique, count)
	if technique == model.TechniqueCanvas && count > 0 && entropy > EntropyThreshold {
		d.Detected = true
		d.Confidence = max(d.Confidence, entropy)
	}
	return d
}

// Report builds a FingerprintReport from raw counts and canvas entropy.
// Known techniques are listed first in their canonical order.
func (t Thresholds) Report(counts map[model.Technique]int, canvasEntropy float64) model.FingerprintReport {
	report := model.FingerprintReport{Detected: make([]model.DetectedTechnique, 0)}

	var confidenceSum float64
	for _, technique := range orderedTechniques(counts) {
		count := counts[technique]
		d := evaluate(t, technique, count, canvasEntropy)
		if !d.Detected {
			continue
		}
		report.Detected = append(report.Detected, model.DetectedTechnique{
			Technique:  technique,
			Count:      count,
			Confidence: d.Confidence,
			Risk:       riskOf(technique, d.Confidence),
		})
		confidenceSum += d.Confidence
	}

	if n := len(report.Detected); n > 0 {
		report.RiskScore = min(n*20, 100)
		report.AverageConfidence = confidenceSum / float64(n)
	}
	return report
}

// riskOf rates a detected technique. Strong techniques with high
// confidence are high risk; anything above even odds is medium.
func riskOf(technique model.Technique, confidence float64) model.Risk {
	switch {
	case technique.IsStrong() && confidence > 0.7:
		return model.RiskHigh
	case confidence > 0.5:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// orderedTechniques lists the techniques present in counts, known ones
// first in canonical order followed by unknown ones sorted by name.
func orderedTechniques(counts map[model.Technique]int) []model.Technique {
	ordered := make([]model.Technique, 0, len(counts))
	known := make(map[model.Technique]bool)
	for _, technique := range model.Techniques() {
		known[technique] = true
		if counts[technique] > 0 {
			ordered = append(ordered, technique)
		}
	}

	var unknown []model.Technique
	for technique, n := range counts {
		if !known[technique] && n > 0 {
			unknown = append(unknown, technique)
		}
	}
	slices.Sort(unknown)
	return append(ordered, unknown...)
}
