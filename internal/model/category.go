package model

import "strings"

// Category identifies why a third-party host was flagged as a tracker.
type Category string

const (
	// CategoryNone is the zero value used for non-trackers.
	CategoryNone Category = ""
	// CategoryAnalytics covers audience measurement services.
	CategoryAnalytics Category = "analytics"
	// CategoryAdvertising covers ad networks and exchanges.
	CategoryAdvertising Category = "advertising"
	// CategorySocial covers social network widgets and pixels.
	CategorySocial Category = "social"
	// CategoryFingerprinting covers device identification vendors.
	CategoryFingerprinting Category = "fingerprinting"
	// CategoryHeatmaps covers session replay and heatmap services.
	CategoryHeatmaps Category = "heatmaps"
	// CategoryHeuristic is assigned when only a keyword pattern matched.
	CategoryHeuristic Category = "heuristic"
	// CategoryTrackingParams is assigned when only a query parameter matched.
	CategoryTrackingParams Category = "tracking_params"
)

// ListCategories returns the curated list categories in match priority order.
func ListCategories() []Category {
	return []Category{
		CategoryAnalytics,
		CategoryAdvertising,
		CategorySocial,
		CategoryFingerprinting,
		CategoryHeatmaps,
	}
}

// Categories returns every tracker category, list categories first.
func Categories() []Category {
	return append(ListCategories(), CategoryHeuristic, CategoryTrackingParams)
}

// ParseCategory maps a name to a known category.
// Unknown names fall back to CategoryHeuristic.
func ParseCategory(name string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Categories() {
		if c == known {
			return c
		}
	}
	return CategoryHeuristic
}

// Risk returns the risk assigned to trackers of this category.
func (c Category) Risk() Risk {
	switch c {
	case CategoryFingerprinting, CategoryAdvertising:
		return RiskHigh
	case CategoryAnalytics, CategoryHeatmaps, CategoryHeuristic:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Tag builds the "category:hostname" identifier stored on a page.
func (c Category) Tag(hostname string) string {
	return string(c) + ":" + hostname
}

// ParseTag splits a tracker tag into its category and hostname.
// A tag without a separator is treated as a heuristic match on the whole string.
func ParseTag(tag string) (Category, string) {
	name, host, ok := strings.Cut(tag, ":")
	if !ok {
		return CategoryHeuristic, tag
	}
	return ParseCategory(name), host
}
