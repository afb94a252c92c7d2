package model

import (
	"maps"
	"slices"
	"time"
)

// FormSignal aggregates the input fields found in a page's forms.
type FormSignal struct {
	Fields    int `json:"fields"`
	Sensitive int `json:"sensitive"`
}

// RequestCounts counts the network requests attributed to a page.
type RequestCounts struct {
	Total      int `json:"total"`
	ThirdParty int `json:"third_party"`
}

// Snapshot is a point-in-time copy of a tracked page.
// It owns all of its slices and maps; callers may keep it freely.
type Snapshot struct {
	// Domain is the hostname of the page's top-level URL.
	Domain string `json:"domain"`

	// URL is the top-level URL of the page.
	URL string `json:"url"`

	// Trackers holds "category:hostname" tags in sorted order.
	Trackers []string `json:"trackers"`

	// Cookies is in first-seen order with unique names.
	Cookies []Cookie `json:"cookies"`

	// Fingerprinting maps each technique to its signal count.
	Fingerprinting map[Technique]int `json:"fingerprinting"`

	// CanvasEntropy is the highest canvas pixel entropy observed.
	CanvasEntropy float64 `json:"canvas_entropy,omitempty"`

	// Permissions holds requested permission names in sorted order.
	Permissions []string `json:"permissions"`

	Forms    FormSignal    `json:"forms"`
	Requests RequestCounts `json:"requests"`

	LastGrade  Grade     `json:"last_grade,omitempty"`
	LastUpdate time.Time `json:"last_update"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Trackers = slices.Clone(s.Trackers)
	c.Cookies = slices.Clone(s.Cookies)
	c.Permissions = slices.Clone(s.Permissions)
	c.Fingerprinting = maps.Clone(s.Fingerprinting)
	if c.Fingerprinting == nil {
		c.Fingerprinting = make(map[Technique]int)
	}
	return c
}

// HasTrackerCategory reports whether any tracker tag belongs to one of
// the given categories.
func (s Snapshot) HasTrackerCategory(categories ...Category) bool {
	for _, tag := range s.Trackers {
		category, _ := ParseTag(tag)
		if slices.Contains(categories, category) {
			return true
		}
	}
	return false
}

// FingerprintSignals returns the total number of fingerprinting signals.
func (s Snapshot) FingerprintSignals() int {
	total := 0
	for _, n := range s.Fingerprinting {
		total += n
	}
	return total
}
