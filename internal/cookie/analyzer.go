package cookie

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nao1215/privacygrade/internal/model"
)

// LongTermThreshold is how far in the future an expiry must be for the
// cookie to count as long-term.
const LongTermThreshold = 30 * 24 * time.Hour

// trackingPatterns match against the lowercased "name=value" string.
var trackingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`_ga`),
	regexp.MustCompile(`_gid`),
	regexp.MustCompile(`_gat`),
	regexp.MustCompile(`utm_`),
	regexp.MustCompile(`fbp`),
	regexp.MustCompile(`fbc`),
	regexp.MustCompile(`_fbp`),
	regexp.MustCompile(`doubleclick`),
	regexp.MustCompile(`adsystem`),
	regexp.MustCompile(`analytics`),
	regexp.MustCompile(`tracking`),
}

// expiryLayouts are tried after http.ParseTime fails.
var expiryLayouts = []string{
	time.RFC1123Z,
	"Mon, 02-Jan-2006 15:04:05 MST",
	time.RFC3339,
}

// Classification is the verdict for one cookie.
type Classification struct {
	IsTracking bool `json:"is_tracking"`
	IsLongTerm bool `json:"is_long_term"`
}

// Analyzer classifies cookies against a clock.
type Analyzer struct {
	now func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock sets the clock used to decide whether an expiry is far away.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnalyzer creates an Analyzer using the wall clock by default.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Classify returns the tracking and long-term properties of a cookie.
func (a *Analyzer) Classify(c model.Cookie) Classification {
	return Classification{
		IsTracking: IsTracking(c),
		IsLongTerm: IsLongTerm(c.Expires, a.now()),
	}
}

// Summarize counts tracking and long-term cookies.
func (a *Analyzer) Summarize(cookies []model.Cookie) model.CookieStats {
	stats := model.CookieStats{Total: len(cookies)}
	for _, c := range cookies {
		cls := a.Classify(c)
		if cls.IsTracking {
			stats.Tracking++
		}
		if cls.IsLongTerm {
			stats.LongTerm++
		}
	}
	return stats
}

// IsTracking reports whether a cookie matches a tracking signature.
func IsTracking(c model.Cookie) bool {
	s := strings.ToLower(c.Name + "=" + c.Value)
	for _, p := range trackingPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// IsLongTerm reports whether expires lies more than LongTermThreshold
// after now. Empty and unparseable expiries are short-term.
func IsLongTerm(expires string, now time.Time) bool {
	t, ok := ParseExpiry(expires)
	if !ok {
		return false
	}
	return t.Sub(now) > LongTermThreshold
}

// ParseExpiry parses a cookie expiry in any of the accepted formats.
func ParseExpiry(expires string) (time.Time, bool) {
	expires = strings.TrimSpace(expires)
	if expires == "" {
		return time.Time{}, false
	}
	if t, err := http.ParseTime(expires); err == nil {
		return t, true
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, expires); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
