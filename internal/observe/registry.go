package observe

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/privacygrade/internal/cookie"
	"github.com/nao1215/privacygrade/internal/fingerprint"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/tracker"
)

// TabResolver looks up the current top-level URL of a tab. The registry
// uses it to re-initialize a page when a request arrives for a tab it
// does not know, for example after the engine restarted mid-visit.
type TabResolver interface {
	TabURL(tabID int) (string, bool)
}

// TabResolverFunc adapts a function to TabResolver.
type TabResolverFunc func(tabID int) (string, bool)

// TabURL calls f.
func (f TabResolverFunc) TabURL(tabID int) (string, bool) {
	return f(tabID)
}

// Token identifies one page visit. It is taken before an asynchronous
// collection starts and checked again before its result is used.
type Token struct {
	TabID      int    `json:"tab_id"`
	Generation uint64 `json:"generation"`
	URL        string `json:"url"`
}

// RequestOutcome describes what RecordRequest did.
type RequestOutcome struct {
	// Tracked is false when no page could be attributed.
	Tracked    bool
	ThirdParty bool

	// NewTracker is true when the request added a tag to the page.
	NewTracker bool
	Result     model.ClassificationResult
}

// SignalOutcome describes what RecordFingerprintSignal did.
type SignalOutcome struct {
	Counted bool

	// Alert is true the first time the technique is detected on the page.
	Alert bool
}

// Registry maps tab identifiers to tracked pages.
//
// Each page visit gets a generation number from a registry-wide counter.
// Starting a new visit on a tab replaces its page, and a Token taken for
// the old visit no longer matches.
//
// Design decision: The map is guarded by one RWMutex while every page has
// its own lock. Lookups take the read lock only long enough to find the
// page, so events for different tabs never wait on each other, and a slow
// snapshot of one tab does not block opening another.
//
// Recording methods report whether anything changed so the caller can
// decide whether a repaint is due.
type Registry struct {
	mu         sync.RWMutex
	pages      map[int]*page
	generation uint64

	classifier *tracker.Classifier
	thresholds fingerprint.Thresholds
	resolver   TabResolver
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClassifier sets the domain classifier.
func WithClassifier(c *tracker.Classifier) Option {
	return func(r *Registry) {
		r.classifier = c
	}
}

// WithThresholds sets the fingerprint threshold table used for new pages.
func WithThresholds(t fingerprint.Thresholds) Option {
	return func(r *Registry) {
		r.thresholds = t
	}
}

// WithResolver enables lazy re-initialization of unknown tabs.
func WithResolver(resolver TabResolver) Option {
	return func(r *Registry) {
		r.resolver = resolver
	}
}

// WithClock sets the clock used for timestamps and cookie expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		pages: make(map[int]*page),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.classifier == nil {
		r.classifier = tracker.NewClassifier()
	}
	if r.thresholds == nil {
		r.thresholds = fingerprint.DefaultThresholds()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// trackableURL parses a top-level URL and rejects internal schemes.
func trackableURL(rawURL string) (*url.URL, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

// Open starts a new page visit for the tab, replacing any previous one.
// It returns false, leaving the tab untracked, when the URL cannot be
// parsed or uses an internal scheme.
func (r *Registry) Open(tabID int, rawURL string) bool {
	u, ok := trackableURL(rawURL)

	r.mu.Lock()
	old := r.pages[tabID]
	delete(r.pages, tabID)
	if ok {
		r.generation++
		r.pages[tabID] = newPage(r.generation, strings.ToLower(u.Hostname()), rawURL, r.thresholds, r.now())
	}
	r.mu.Unlock()

	invalidate(old)

	if !ok {
		r.logger.Debug("tab left untracked", "tab", tabID, "url", rawURL)
		return false
	}
	r.logger.Debug("tracking page", "tab", tabID, "url", rawURL)
	return true
}

// Close discards the tab's page visit.
func (r *Registry) Close(tabID int) {
	r.mu.Lock()
	old := r.pages[tabID]
	delete(r.pages, tabID)
	r.mu.Unlock()

	if old != nil {
		invalidate(old)
		r.logger.Debug("stopped tracking page", "tab", tabID)
	}
}

// invalidate marks a replaced page closed so that mutations racing with
// Open or Close are dropped.
func invalidate(p *page) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Len returns the number of tracked tabs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}

func (r *Registry) lookup(tabID int) *page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pages[tabID]
}

// ensure returns the tab's page, creating it from the resolver when missing.
func (r *Registry) ensure(tabID int) *page {
	if p := r.lookup(tabID); p != nil || r.resolver == nil {
		return p
	}

	rawURL, ok := r.resolver.TabURL(tabID)
	if !ok {
		return nil
	}
	u, ok := trackableURL(rawURL)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p := r.pages[tabID]; p != nil {
		return p
	}
	r.generation++
	p := newPage(r.generation, strings.ToLower(u.Hostname()), rawURL, r.thresholds, r.now())
	r.pages[tabID] = p
	r.logger.Debug("re-initialized page", "tab", tabID, "url", rawURL)
	return p
}

// update runs fn with the page locked. It returns false if the page is
// missing or was closed before the lock was acquired.
func update(p *page, fn func(p *page)) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	fn(p)
	return true
}

// RecordRequest attributes a network request to the tab's page.
// Malformed URLs and URLs without a host are ignored.
func (r *Registry) RecordRequest(tabID int, rawURL string) RequestOutcome {
	target, err := url.Parse(rawURL)
	if err != nil || target.Hostname() == "" {
		return RequestOutcome{}
	}
	host := strings.ToLower(target.Hostname())

	var out RequestOutcome
	out.Tracked = update(r.ensure(tabID), func(p *page) {
		p.requests.Total++
		if host == p.domain {
			return
		}
		p.requests.ThirdParty++
		out.ThirdParty = true
		out.Result = r.classifier.Classify(target, true)
		if out.Result.IsTracker {
			out.NewTracker = p.addTracker(out.Result.Tag())
		}
	})

	if out.NewTracker {
		r.logger.Debug("tracker detected",
			"tab", tabID,
			"category", out.Result.Category,
			"domain", out.Result.Domain,
			"url", rawURL,
		)
	}
	return out
}

// RecordSetCookie parses a Set-Cookie header value and appends the cookie
// unless the page already has one with that name.
func (r *Registry) RecordSetCookie(tabID int, header string) bool {
	c := cookie.ParseSetCookie(header, r.now())
	added := false
	update(r.lookup(tabID), func(p *page) {
		added = p.addCookie(c)
	})
	return added
}

// RecordResponseHeaders records every Set-Cookie header in the list and
// returns the number of cookies appended.
func (r *Registry) RecordResponseHeaders(tabID int, headers []model.Header) int {
	added := 0
	for _, h := range headers {
		if !strings.EqualFold(h.Name, "set-cookie") {
			continue
		}
		// Some platforms fold several cookies into one value.
		for _, line := range strings.Split(h.Value, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if r.RecordSetCookie(tabID, line) {
				added++
			}
		}
	}
	return added
}

// RecordCookie appends an already parsed cookie, for example one read
// from the browser's cookie jar.
func (r *Registry) RecordCookie(tabID int, c model.Cookie) bool {
	added := false
	update(r.lookup(tabID), func(p *page) {
		added = p.addCookie(c)
	})
	return added
}

// RecordFingerprintSignal counts a fingerprinting signal.
func (r *Registry) RecordFingerprintSignal(tabID int, sig fingerprint.Signal) SignalOutcome {
	var out SignalOutcome
	update(r.lookup(tabID), func(p *page) {
		out.Counted, out.Alert = p.activity.Record(sig)
	})
	if out.Alert {
		r.logger.Debug("fingerprinting detected", "tab", tabID, "technique", sig.Technique)
	}
	return out
}

// RecordFormSignal records form field totals. Totals are reported as
// absolute values, so each field keeps its maximum.
func (r *Registry) RecordFormSignal(tabID int, forms model.FormSignal) bool {
	return update(r.lookup(tabID), func(p *page) {
		p.forms.Fields = max(p.forms.Fields, forms.Fields)
		p.forms.Sensitive = max(p.forms.Sensitive, forms.Sensitive)
	})
}

// RecordPermission records a permission request and reports whether the
// permission was new for the page.
func (r *Registry) RecordPermission(tabID int, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	added := false
	update(r.lookup(tabID), func(p *page) {
		if _, ok := p.permissions[name]; !ok {
			p.permissions[name] = struct{}{}
			added = true
		}
	})
	return added
}

// Snapshot returns a copy of the tab's page.
func (r *Registry) Snapshot(tabID int) (model.Snapshot, bool) {
	var snap model.Snapshot
	ok := update(r.lookup(tabID), func(p *page) {
		snap = p.snapshot()
	})
	return snap, ok
}

// Repaint recomputes the tab's grade with grade unless fewer than interval
// has passed since the last update. The snapshot is taken and the grade
// stored atomically with respect to other events on the page.
func (r *Registry) Repaint(tabID int, interval time.Duration, grade func(model.Snapshot) model.Grade) (model.Grade, bool) {
	var (
		g       model.Grade
		painted bool
	)
	update(r.lookup(tabID), func(p *page) {
		now := r.now()
		if now.Sub(p.lastUpdate) < interval {
			return
		}
		g = grade(p.snapshot())
		p.lastGrade = g
		p.lastUpdate = now
		painted = true
	})
	return g, painted
}

// Begin takes a token for the tab's current page visit.
func (r *Registry) Begin(tabID int) (Token, bool) {
	var tok Token
	ok := update(r.lookup(tabID), func(p *page) {
		tok = Token{TabID: tabID, Generation: p.generation, URL: p.url}
	})
	return tok, ok
}

// Current reports whether the token still refers to the tab's page visit.
func (r *Registry) Current(tok Token) bool {
	p := r.lookup(tok.TabID)
	return p != nil && p.generation == tok.Generation && update(p, func(*page) {})
}

// MergeFresh merges a fresh observation taken under tok with the live page.
// It returns ErrStaleTab if the tab closed or navigated in the meantime.
// The live page is not modified.
func (r *Registry) MergeFresh(tok Token, fresh model.Snapshot, strategy MergeStrategy) (model.Snapshot, error) {
	var merged model.Snapshot
	p := r.lookup(tok.TabID)
	ok := update(p, func(p *page) {
		if p.generation != tok.Generation {
			return
		}
		merged = Merge(p.snapshot(), fresh, strategy)
	})
	if !ok || p.generation != tok.Generation {
		r.logger.Debug("discarding fresh observation for stale tab", "tab", tok.TabID)
		return model.Snapshot{}, ErrStaleTab
	}
	return merged, nil
}
