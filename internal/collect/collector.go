package collect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/tracker"
	"golang.org/x/net/html"
)

// DefaultMaxBodySize is the largest document the collector reads (5MB).
const DefaultMaxBodySize int64 = 5 * 1024 * 1024

// Collector turns an HTML document into a fresh Snapshot.
type Collector struct {
	classifier  *tracker.Classifier
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithClassifier sets the domain classifier.
func WithClassifier(c *tracker.Classifier) Option {
	return func(col *Collector) {
		col.classifier = c
	}
}

// WithMaxBodySize limits how many bytes of the document are parsed.
func WithMaxBodySize(size int64) Option {
	return func(col *Collector) {
		if size > 0 {
			col.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(col *Collector) {
		col.logger = logger
	}
}

// NewCollector creates a Collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.classifier == nil {
		c.classifier = tracker.NewClassifier()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Collect parses the document served at pageURL and returns what it
// reveals. Cookies are not visible in HTML, so the snapshot has none.
func (c *Collector) Collect(ctx context.Context, pageURL string, body io.Reader) (model.Snapshot, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Hostname() == "" {
		return model.Snapshot{}, fmt.Errorf("invalid page URL %q", pageURL)
	}
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	root, err := html.Parse(io.LimitReader(body, c.maxBodySize))
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	domain := strings.ToLower(base.Hostname())
	snap := model.Snapshot{
		Domain:         domain,
		URL:            pageURL,
		Cookies:        make([]model.Cookie, 0),
		Fingerprinting: make(map[model.Technique]int),
		Permissions:    make([]string, 0),
	}

	tags := make(map[string]struct{})
	for _, u := range resources(root, base) {
		snap.Requests.Total++
		host := strings.ToLower(u.Hostname())
		if host == domain {
			continue
		}
		snap.Requests.ThirdParty++
		if result := c.classifier.Classify(u, true); result.IsTracker {
			tags[result.Tag()] = struct{}{}
		}
	}
	snap.Trackers = append(make([]string, 0, len(tags)), slices.Sorted(maps.Keys(tags))...)

	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		scanScript(s.Text(), snap.Fingerprinting)
	})
	snap.Forms = formSignal(doc)

	c.logger.Debug("collected page",
		"url", pageURL,
		"requests", snap.Requests.Total,
		"trackers", len(snap.Trackers),
		"fingerprint_signals", snap.FingerprintSignals(),
		"form_fields", snap.Forms.Fields,
	)
	return snap, nil
}

// CollectFunc returns a function that collects body for any page URL,
// suitable for monitor.Monitor.FreshReport.
func (c *Collector) CollectFunc(body []byte) func(ctx context.Context, pageURL string) (model.Snapshot, error) {
	return func(ctx context.Context, pageURL string) (model.Snapshot, error) {
		return c.Collect(ctx, pageURL, bytes.NewReader(body))
	}
}
