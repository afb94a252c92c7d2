package observe

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/nao1215/privacygrade/internal/fingerprint"
	"github.com/nao1215/privacygrade/internal/model"
)

// page is the mutable record of one page visit in one tab.
// All fields except generation are guarded by mu.
type page struct {
	mu sync.Mutex

	// generation identifies this visit; it never changes.
	generation uint64

	// closed is set once the tab closes or navigates away.
	closed bool

	domain string
	url    string

	trackers    map[string]struct{}
	cookies     []model.Cookie
	cookieNames map[string]struct{}
	activity    *fingerprint.Activity
	permissions map[string]struct{}
	forms       model.FormSignal
	requests    model.RequestCounts

	lastGrade  model.Grade
	lastUpdate time.Time
}

func newPage(generation uint64, domain, rawURL string, thresholds fingerprint.Thresholds, now time.Time) *page {
	return &page{
		generation:  generation,
		domain:      domain,
		url:         rawURL,
		trackers:    make(map[string]struct{}),
		cookieNames: make(map[string]struct{}),
		activity:    fingerprint.NewActivity(thresholds),
		permissions: make(map[string]struct{}),
		lastUpdate:  now,
	}
}

// addTracker adds a tag and reports whether it was new.
func (p *page) addTracker(tag string) bool {
	if _, ok := p.trackers[tag]; ok {
		return false
	}
	p.trackers[tag] = struct{}{}
	return true
}

// addCookie appends a cookie unless one with the same name exists.
func (p *page) addCookie(c model.Cookie) bool {
	if _, ok := p.cookieNames[c.Name]; ok {
		return false
	}
	p.cookieNames[c.Name] = struct{}{}
	p.cookies = append(p.cookies, c)
	return true
}

// snapshot returns a deep copy of the page. Callers hold mu.
func (p *page) snapshot() model.Snapshot {
	trackers := slices.Sorted(maps.Keys(p.trackers))
	permissions := slices.Sorted(maps.Keys(p.permissions))
	counts := p.activity.Counts()
	if counts == nil {
		counts = make(map[model.Technique]int)
	}

	cookies := make([]model.Cookie, len(p.cookies))
	copy(cookies, p.cookies)

	return model.Snapshot{
		Domain:         p.domain,
		URL:            p.url,
		Trackers:       orEmpty(trackers),
		Cookies:        cookies,
		Fingerprinting: counts,
		CanvasEntropy:  p.activity.CanvasEntropy(),
		Permissions:    orEmpty(permissions),
		Forms:          p.forms,
		Requests:       p.requests,
		LastGrade:      p.lastGrade,
		LastUpdate:     p.lastUpdate,
	}
}

// orEmpty turns a nil slice into an empty one so snapshots encode as [].
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
