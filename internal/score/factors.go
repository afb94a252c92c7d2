package score

import (
	"strings"

	"github.com/nao1215/privacygrade/internal/cookie"
	"github.com/nao1215/privacygrade/internal/model"
)

// trackerPoints scores the number of distinct trackers. Any advertising
// or fingerprinting tracker caps the factor at 5.
func trackerPoints(s model.Snapshot) int {
	var points int
	switch n := len(s.Trackers); {
	case n >= 10:
		points = 0
	case n >= 6:
		points = 8
	case n >= 3:
		points = 12
	default:
		points = 40
	}

	if s.HasTrackerCategory(model.CategoryAdvertising, model.CategoryFingerprinting) {
		points = min(points, 5)
	}
	return points
}

// cookiePoints scores the cookie count, capped to 1 by any tracking
// cookie and to 2 by more than five long-term cookies.
func cookiePoints(cookies []model.Cookie, analyzer *cookie.Analyzer) int {
	var points int
	switch n := len(cookies); {
	case n >= 20:
		points = 0
	case n >= 10:
		points = 1
	case n >= 6:
		points = 2
	case n >= 1:
		points = 4
	default:
		points = 20
	}

	stats := analyzer.Summarize(cookies)
	if stats.Tracking > 0 {
		points = min(points, 1)
	}
	if stats.LongTerm > 5 {
		points = min(points, 2)
	}
	return points
}

// fingerprintPoints scores fingerprinting evidence by raw signal counts.
// Any strong technique is an automatic zero.
func fingerprintPoints(counts map[model.Technique]int) int {
	moderate := 0
	for technique, n := range counts {
		if n <= 0 {
			continue
		}
		if technique.IsStrong() {
			return 0
		}
		if technique.IsModerate() {
			moderate++
		}
	}

	switch {
	case moderate >= 3:
		return 3
	case moderate >= 1:
		return 6
	default:
		return 20
	}
}

// permissionPoints scores the device permissions a page asked for.
func permissionPoints(permissions []string) int {
	points := 10
	for _, name := range permissions {
		switch name = strings.ToLower(name); {
		case isSensitivePermission(name):
			return 0
		case name == "notifications" || name == "persistent-storage":
			points = 2
		}
	}
	return points
}

func isSensitivePermission(name string) bool {
	switch name {
	case "geolocation", "camera", "microphone":
		return true
	default:
		return strings.HasPrefix(name, "clipboard")
	}
}

// formPoints scores sensitive form fields first, then form size.
func formPoints(forms model.FormSignal) int {
	switch {
	case forms.Sensitive > 5:
		return 0
	case forms.Sensitive > 2:
		return 1
	case forms.Sensitive > 0:
		return 3
	case forms.Fields > 10:
		return 5
	default:
		return 10
	}
}
