package model

// ClassificationResult is the verdict of the domain classifier for one
// request target. It is a value: a fresh one is built for every call.
type ClassificationResult struct {
	IsTracker  bool     `json:"is_tracker"`
	Category   Category `json:"category,omitempty"`
	Domain     string   `json:"domain"`
	Risk       Risk     `json:"risk"`
	Confidence float64  `json:"confidence,omitempty"`

	// Pattern is the list entry, keyword or parameter that matched.
	Pattern string `json:"pattern,omitempty"`
}

// Tag returns the "category:hostname" identifier for a tracker result.
// It returns an empty string when the result is not a tracker.
func (r ClassificationResult) Tag() string {
	if !r.IsTracker {
		return ""
	}
	return r.Category.Tag(r.Domain)
}
