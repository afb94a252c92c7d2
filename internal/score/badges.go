package score

import (
	"fmt"

	"github.com/nao1215/privacygrade/internal/model"
)

// Badges returns the highlight labels for a snapshot. A page with nothing
// to report gets a single "Privacy Friendly" badge.
func Badges(s model.Snapshot) []model.Badge {
	var badges []model.Badge

	switch n := len(s.Trackers); {
	case n > 10:
		badges = append(badges, model.Badge{Text: fmt.Sprintf("Heavy Tracking (%d)", n), Kind: model.BadgeDanger})
	case n > 5:
		badges = append(badges, model.Badge{Text: fmt.Sprintf("Moderate Tracking (%d)", n), Kind: model.BadgeWarning})
	case n > 0:
		badges = append(badges, model.Badge{Text: fmt.Sprintf("Light Tracking (%d)", n), Kind: model.BadgeInfo})
	}

	switch n := len(s.Cookies); {
	case n > 20:
		badges = append(badges, model.Badge{Text: fmt.Sprintf("Excessive Cookies (%d)", n), Kind: model.BadgeDanger})
	case n > 10:
		badges = append(badges, model.Badge{Text: fmt.Sprintf("Many Cookies (%d)", n), Kind: model.BadgeWarning})
	case n > 0:
		badges = append(badges, model.Badge{Text: fmt.Sprintf("%d Cookies", n), Kind: model.BadgeInfo})
	}

	if s.FingerprintSignals() > 0 {
		badges = append(badges, model.Badge{Text: "Fingerprinting Detected", Kind: model.BadgeWarning})
	}

	if len(badges) == 0 {
		return []model.Badge{{Text: "Privacy Friendly", Kind: model.BadgeInfo}}
	}
	return badges
}
