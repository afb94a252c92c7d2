package tracker

import (
	"slices"

	"github.com/nao1215/privacygrade/internal/model"
)

// Summarize computes tracker statistics from "category:hostname" tags.
func Summarize(tags []string) model.TrackerStats {
	stats := model.TrackerStats{
		ByCategory:    make(map[model.Category]int),
		ByRisk:        make(map[model.Risk]int),
		UniqueDomains: make([]string, 0, len(tags)),
	}

	for _, tag := range tags {
		category, host := model.ParseTag(tag)
		stats.Total++
		stats.ByCategory[category]++
		stats.ByRisk[category.Risk()]++
		if !slices.Contains(stats.UniqueDomains, host) {
			stats.UniqueDomains = append(stats.UniqueDomains, host)
		}
	}
	slices.Sort(stats.UniqueDomains)
	return stats
}
