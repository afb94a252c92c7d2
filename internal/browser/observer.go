package browser

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/nao1215/privacygrade/internal/collect"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/monitor"
)

// bindingName is the function the instrumentation script reports through.
const bindingName = "__privacygradeSignal"

// DefaultSettleDelay is how long a page runs before the fresh
// observation is taken. The script reports forms after three seconds.
const DefaultSettleDelay = 4 * time.Second

//go:embed instrument.js
var instrumentScript string

// Observer loads pages in headless Chrome and feeds what they do into a
// monitor.
//
// An Observer also reports the URL each observed tab last committed, so a
// registry built with it as its resolver can pick a tab back up when the
// page was dropped mid-visit.
type Observer struct {
	allocOpts []chromedp.ExecAllocatorOption
	settle    time.Duration
	collector *collect.Collector
	tabs      *tabURLs
	logger    *slog.Logger
}

// Option configures an Observer.
type Option func(*Observer)

// WithAllocatorOptions replaces the Chrome launch options.
func WithAllocatorOptions(opts ...chromedp.ExecAllocatorOption) Option {
	return func(o *Observer) {
		o.allocOpts = opts
	}
}

// WithSettleDelay sets how long the page runs before it is graded.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Observer) {
		if d >= 0 {
			o.settle = d
		}
	}
}

// WithCollector sets the collector for the fresh observation.
func WithCollector(c *collect.Collector) Option {
	return func(o *Observer) {
		o.collector = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Observer) {
		o.logger = logger
	}
}

// NewObserver creates an Observer that runs Chrome headless.
func NewObserver(opts ...Option) *Observer {
	o := &Observer{
		allocOpts: append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...),
		settle:    DefaultSettleDelay,
		tabs:      newTabURLs(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.collector == nil {
		o.collector = collect.NewCollector(collect.WithLogger(o.logger))
	}
	return o
}

// Observe loads pageURL as tabID, lets it run for the settle delay and
// returns the merged fresh report. The tab is closed in m afterwards.
func (o *Observer) Observe(ctx context.Context, m *monitor.Monitor, tabID int, pageURL string) (model.DetailedReport, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, o.allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	s := &session{monitor: m, tabID: tabID, tabs: o.tabs, logger: o.logger}
	s.open(pageURL)
	defer func() {
		o.tabs.forget(tabID)
		m.OnTabClosed(tabID)
	}()

	chromedp.ListenTarget(browserCtx, s.handle)

	o.logger.Info("loading page", "url", pageURL, "settle", o.settle)
	err := chromedp.Run(browserCtx,
		network.Enable(),
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(instrumentScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(o.settle),
	)
	if err != nil {
		return model.DetailedReport{}, fmt.Errorf("failed to load %s: %w", pageURL, err)
	}

	return m.FreshReport(ctx, tabID, func(ctx context.Context, current string) (model.Snapshot, error) {
		return o.snapshot(ctx, browserCtx, current)
	})
}

// snapshot reads the rendered document and the cookie jar.
func (o *Observer) snapshot(ctx, browserCtx context.Context, pageURL string) (model.Snapshot, error) {
	var (
		dom     string
		cookies []*network.Cookie
	)
	err := chromedp.Run(browserCtx,
		chromedp.OuterHTML("html", &dom, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to read page state: %w", err)
	}

	snap, err := o.collector.Collect(ctx, pageURL, strings.NewReader(dom))
	if err != nil {
		return model.Snapshot{}, err
	}
	snap.Cookies = jarCookies(snap.Cookies, cookies)
	return snap, nil
}

// TabURL returns the URL the tab is currently observing.
func (o *Observer) TabURL(tabID int) (string, bool) {
	return o.tabs.get(tabID)
}

// tabURLs records the current URL of every tab being observed.
type tabURLs struct {
	mu   sync.RWMutex
	urls map[int]string
}

func newTabURLs() *tabURLs {
	return &tabURLs{urls: make(map[int]string)}
}

func (t *tabURLs) set(tabID int, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.urls[tabID] = url
}

func (t *tabURLs) get(tabID int) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	url, ok := t.urls[tabID]
	return url, ok
}

func (t *tabURLs) forget(tabID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.urls, tabID)
}

// session routes the CDP events of one tab into a monitor.
type session struct {
	monitor *monitor.Monitor
	tabID   int
	tabs    *tabURLs
	logger  *slog.Logger

	mu  sync.Mutex
	url string
}

// open starts a page visit unless url is already the current one. Chrome
// commits "https://x" as "https://x/", so URLs are compared normalized.
func (s *session) open(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url == s.url || (s.url != "" && normalizePageURL(url) == normalizePageURL(s.url)) {
		return
	}
	s.url = url
	if s.tabs != nil {
		s.tabs.set(s.tabID, url)
	}
	s.monitor.OnTabLoadStarted(s.tabID, url)
}

func (s *session) handle(ev any) {
	switch ev := ev.(type) {
	case *page.EventFrameNavigated:
		// Redirects and in-page navigations of the main frame start a new visit.
		if ev.Frame != nil && ev.Frame.ParentID == "" {
			s.open(ev.Frame.URL)
		}
	case *network.EventRequestWillBeSent:
		if ev.Request != nil {
			s.monitor.OnRequestObserved(s.tabID, ev.Request.URL)
		}
	case *network.EventResponseReceivedExtraInfo:
		s.monitor.OnResponseHeadersObserved(s.tabID, headerList(ev.Headers))
	case *runtime.EventBindingCalled:
		if ev.Name != bindingName {
			return
		}
		sig, err := decodeSignal(ev.Payload, s.tabID)
		if err != nil {
			s.logger.Debug("ignoring page signal", "error", err)
			return
		}
		if err := s.monitor.Apply(sig); err != nil {
			s.logger.Debug("ignoring page signal", "error", err)
		}
	}
}
