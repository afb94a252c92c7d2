package observe

import (
	"maps"
	"slices"
	"strings"

	"github.com/nao1215/privacygrade/internal/model"
)

// MergeStrategy selects how Merge reconciles trackers and cookies.
type MergeStrategy int

const (
	// MergeLargest keeps, for trackers and for cookies independently, the
	// whole collection of whichever snapshot holds strictly more items;
	// ties go to the fresh snapshot. Items only the smaller snapshot saw
	// are dropped.
	MergeLargest MergeStrategy = iota

	// MergeUnion keeps every tracker tag and every cookie name seen by
	// either snapshot. Live cookies come first.
	MergeUnion
)

// String returns the configuration name of the strategy.
func (s MergeStrategy) String() string {
	switch s {
	case MergeLargest:
		return "largest"
	case MergeUnion:
		return "union"
	default:
		return "unknown"
	}
}

// ParseMergeStrategy parses a configuration name. An empty name selects
// MergeLargest.
func ParseMergeStrategy(name string) (MergeStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "largest":
		return MergeLargest, nil
	case "union":
		return MergeUnion, nil
	default:
		return MergeLargest, ErrUnknownMergeStrategy
	}
}

// Merge reconciles the continuously maintained live snapshot with a fresh
// point-in-time observation of the same page.
//
// Design decision: MergeLargest replaces a whole collection instead of
// uniting it. The live view and the fresh view each count one source of
// truth, and mixing them item by item would let a page gain points from
// neither view alone. MergeUnion exists for callers that prefer recall.
//
// Cookies are deduplicated by name on both sides before they are counted,
// since a browser jar can return the same name for several domains or
// paths. Trackers and cookies follow the strategy. Fingerprint counts, form
// totals and request counts keep the per-field maximum, permissions are
// united, and the fresh domain and URL win when set. The grade bookkeeping
// comes from the live snapshot. Merge(x, x, s) has the same trackers and
// cookies as x for either strategy.
func Merge(live, fresh model.Snapshot, strategy MergeStrategy) model.Snapshot {
	merged := live.Clone()

	if fresh.Domain != "" {
		merged.Domain = fresh.Domain
	}
	if fresh.URL != "" {
		merged.URL = fresh.URL
	}

	switch strategy {
	case MergeUnion:
		merged.Trackers = unionSorted(live.Trackers, fresh.Trackers)
		merged.Cookies = unionCookies(live.Cookies, fresh.Cookies)
	default:
		if len(fresh.Trackers) >= len(live.Trackers) {
			merged.Trackers = slices.Clone(fresh.Trackers)
		}
		liveCookies := unionCookies(live.Cookies, nil)
		freshCookies := unionCookies(fresh.Cookies, nil)
		merged.Cookies = liveCookies
		if len(freshCookies) >= len(liveCookies) {
			merged.Cookies = freshCookies
		}
	}

	for technique, n := range fresh.Fingerprinting {
		merged.Fingerprinting[technique] = max(merged.Fingerprinting[technique], n)
	}
	merged.CanvasEntropy = max(live.CanvasEntropy, fresh.CanvasEntropy)
	merged.Permissions = unionSorted(live.Permissions, fresh.Permissions)

	merged.Forms.Fields = max(live.Forms.Fields, fresh.Forms.Fields)
	merged.Forms.Sensitive = max(live.Forms.Sensitive, fresh.Forms.Sensitive)
	merged.Requests.Total = max(live.Requests.Total, fresh.Requests.Total)
	merged.Requests.ThirdParty = max(live.Requests.ThirdParty, fresh.Requests.ThirdParty)

	merged.Trackers = orEmpty(merged.Trackers)
	merged.Cookies = orEmpty(merged.Cookies)
	return merged
}

// unionSorted returns the sorted, deduplicated union of a and b.
func unionSorted(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	return orEmpty(slices.Sorted(maps.Keys(set)))
}

// unionCookies appends the cookies of b whose names are not in a.
func unionCookies(a, b []model.Cookie) []model.Cookie {
	out := make([]model.Cookie, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]model.Cookie{a, b} {
		for _, c := range list {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
