package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/privacygrade/internal/fingerprint"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/observe"
	"github.com/nao1215/privacygrade/internal/score"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type paint struct {
	tabID int
	grade model.Grade
	score int
}

type recordingPainter struct {
	mu     sync.Mutex
	paints []paint
}

func (p *recordingPainter) Paint(tabID int, grade model.Grade, score int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paints = append(p.paints, paint{tabID, grade, score})
}

func (p *recordingPainter) Paints() []paint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]paint(nil), p.paints...)
}

func newTestMonitor(clock *fakeClock, opts ...Option) *Monitor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []Option{
		WithLogger(logger),
		WithRegistry(observe.NewRegistry(observe.WithClock(clock.Now), observe.WithLogger(logger))),
		WithEngine(score.New(score.WithClock(clock.Now), score.WithIDGenerator(func() string { return "r" }))),
	}
	return New(append(base, opts...)...)
}

// replayShopVisit feeds a typical page visit into m for tab 1.
func replayShopVisit(m *Monitor) {
	m.OnTabLoadStarted(1, "https://shop.example/")
	m.OnRequestObserved(1, "https://shop.example/app.js")
	m.OnRequestObserved(1, "https://stats.doubleclick.net/pixel")
	m.OnResponseHeadersObserved(1, []model.Header{
		{Name: "Content-Type", Value: "text/html"},
		{Name: "Set-Cookie", Value: "_ga=GA1.1.42; Max-Age=63072000; Path=/"},
	})
	m.OnFingerprintSignal(1, fingerprint.Signal{
		Technique: model.TechniqueCanvas,
		Canvas:    &fingerprint.CanvasSample{Width: 300, Height: 150},
	})
	m.OnPermissionRequested(1, "notifications")
	m.OnFormsObserved(1, model.FormSignal{Fields: 4, Sensitive: 1})
}

func TestMonitor_UntrackedTabGetsDefault(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(newFakeClock())

	if diff := cmp.Diff(score.Default(), m.GetScore(42)); diff != "" {
		t.Errorf("score mismatch (-want +got):\n%s", diff)
	}

	report := m.GetDetailedReport(42)
	if report.Tracked || report.Grade != model.GradeAPlus || report.FinalScore != 100 {
		t.Errorf("expected untracked A+ / 100 report, got %+v", report)
	}
}

func TestMonitor_AccumulatesEvidence(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(newFakeClock())
	replayShopVisit(m)

	got := m.GetScore(1)
	want := model.CategoryScores{Trackers: 5, Cookies: 1, Fingerprinting: 0, Permissions: 2, Forms: 3}
	if diff := cmp.Diff(want, got.Categories); diff != "" {
		t.Errorf("category mismatch (-want +got):\n%s", diff)
	}
	if got.FinalScore != 11 || got.Grade != model.GradeF {
		t.Errorf("expected 11 / F, got %d / %s", got.FinalScore, got.Grade)
	}

	report := m.GetDetailedReport(1)
	if !report.Tracked || report.Domain != "shop.example" {
		t.Errorf("unexpected report identity %+v", report)
	}
	if report.Summary.ThirdPartyRequests != 1 || report.Summary.Trackers != 1 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
}

func TestMonitor_CloseDropsLaterEvents(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(newFakeClock())
	replayShopVisit(m)
	m.OnTabClosed(1)
	m.OnRequestObserved(1, "https://stats.doubleclick.net/again")
	m.OnPermissionRequested(1, "geolocation")

	if got := m.GetScore(1); got.FinalScore != 100 {
		t.Errorf("expected closed tab to score as untracked, got %d", got.FinalScore)
	}
	if m.Registry().Len() != 0 {
		t.Errorf("expected empty registry, got %d tabs", m.Registry().Len())
	}
}

func TestMonitor_NavigationStartsOver(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(newFakeClock())
	replayShopVisit(m)
	m.OnTabLoadStarted(1, "https://news.example/")

	report := m.GetDetailedReport(1)
	if report.Domain != "news.example" || report.FinalScore != 100 {
		t.Errorf("expected a clean page for the new visit, got %s / %d", report.Domain, report.FinalScore)
	}
}

func TestMonitor_InternalSchemesAreNotTracked(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(newFakeClock())
	m.OnTabLoadStarted(3, "chrome://settings")
	m.OnRequestObserved(3, "https://stats.doubleclick.net/pixel")

	if m.Registry().Len() != 0 {
		t.Error("internal pages must stay untracked")
	}
}

func TestMonitor_RepaintIsDebounced(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	painter := &recordingPainter{}
	m := newTestMonitor(clock, WithPainter(painter))

	m.OnTabLoadStarted(1, "https://shop.example/")

	clock.Advance(time.Second)
	m.OnRequestObserved(1, "https://www.google-analytics.com/collect")
	if n := len(painter.Paints()); n != 0 {
		t.Fatalf("expected no paint within the interval, got %d", n)
	}

	clock.Advance(5 * time.Second)
	m.OnRequestObserved(1, "https://stats.doubleclick.net/pixel")
	paints := painter.Paints()
	if len(paints) != 1 {
		t.Fatalf("expected one paint, got %d", len(paints))
	}
	// Continuous table: two trackers, one advertising.
	if want := (paint{tabID: 1, grade: model.GradeC, score: 65}); paints[0] != want {
		t.Errorf("expected %+v, got %+v", want, paints[0])
	}

	clock.Advance(time.Second)
	m.OnPermissionRequested(1, "geolocation")
	if n := len(painter.Paints()); n != 1 {
		t.Errorf("expected the second update to be debounced, got %d paints", n)
	}

	if got := m.GetScore(1).Categories.Permissions; got != 0 {
		t.Errorf("debounced repaint must not drop evidence, permissions scored %d", got)
	}
}

func TestMonitor_RepaintOnlyOnNewEvidence(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	painter := &recordingPainter{}
	m := newTestMonitor(clock, WithPainter(painter))

	m.OnTabLoadStarted(1, "https://shop.example/")
	clock.Advance(10 * time.Second)
	m.OnRequestObserved(1, "https://shop.example/app.js")
	m.OnFormsObserved(1, model.FormSignal{Fields: 3})
	m.OnFingerprintSignal(1, fingerprint.Signal{Technique: model.TechniqueFonts})

	if n := len(painter.Paints()); n != 0 {
		t.Errorf("expected no paint without new trackers, cookies, alerts or permissions, got %d", n)
	}
}

func TestMonitor_FreshReport(t *testing.T) {
	t.Parallel()

	t.Run("merges the fresh observation without changing the live page", func(t *testing.T) {
		t.Parallel()

		m := newTestMonitor(newFakeClock(), WithMergeStrategy(observe.MergeUnion))
		replayShopVisit(m)

		var collectedURL string
		report, err := m.FreshReport(context.Background(), 1, func(_ context.Context, pageURL string) (model.Snapshot, error) {
			collectedURL = pageURL
			return model.Snapshot{
				Trackers: []string{"social:platform.twitter.com"},
				Requests: model.RequestCounts{Total: 4, ThirdParty: 2},
			}, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if collectedURL != "https://shop.example/" {
			t.Errorf("expected collection of the page URL, got %q", collectedURL)
		}
		if report.Summary.Trackers != 2 || report.Summary.ThirdPartyRequests != 2 {
			t.Errorf("expected merged evidence, got %+v", report.Summary)
		}
		if live := m.GetDetailedReport(1); live.Summary.Trackers != 1 {
			t.Errorf("live page must not change, got %d trackers", live.Summary.Trackers)
		}
	})

	t.Run("untracked tab", func(t *testing.T) {
		t.Parallel()

		m := newTestMonitor(newFakeClock())
		_, err := m.FreshReport(context.Background(), 9, func(context.Context, string) (model.Snapshot, error) {
			t.Error("collect must not run for an untracked tab")
			return model.Snapshot{}, nil
		})
		if !errors.Is(err, ErrUntrackedTab) {
			t.Errorf("expected ErrUntrackedTab, got %v", err)
		}
	})

	t.Run("navigation during collection discards the result", func(t *testing.T) {
		t.Parallel()

		m := newTestMonitor(newFakeClock())
		replayShopVisit(m)
		_, err := m.FreshReport(context.Background(), 1, func(context.Context, string) (model.Snapshot, error) {
			m.OnTabLoadStarted(1, "https://other.example/")
			return model.Snapshot{Trackers: []string{"advertising:ads.example"}}, nil
		})
		if !errors.Is(err, observe.ErrStaleTab) {
			t.Errorf("expected ErrStaleTab, got %v", err)
		}
		if got := m.GetDetailedReport(1).Summary.Trackers; got != 0 {
			t.Errorf("stale result must not be applied, got %d trackers", got)
		}
	})

	t.Run("collection error is wrapped", func(t *testing.T) {
		t.Parallel()

		m := newTestMonitor(newFakeClock())
		m.OnTabLoadStarted(1, "https://shop.example/")
		boom := errors.New("boom")
		_, err := m.FreshReport(context.Background(), 1, func(context.Context, string) (model.Snapshot, error) {
			return model.Snapshot{}, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped collection error, got %v", err)
		}
	})
}

func TestMonitor_ConcurrentEvents(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(newFakeClock())
	m.OnTabLoadStarted(1, "https://shop.example/")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(3)
		go func() {
			defer wg.Done()
			m.OnRequestObserved(1, "https://cdn.example/lib.js")
		}()
		go func() {
			defer wg.Done()
			m.OnResponseHeadersObserved(1, []model.Header{{Name: "set-cookie", Value: "c" + strings.Repeat("x", i%5) + "=1"}})
		}()
		go func() {
			defer wg.Done()
			_ = m.GetScore(1)
		}()
	}
	wg.Wait()

	report := m.GetDetailedReport(1)
	if report.Summary.ThirdPartyRequests != 50 {
		t.Errorf("expected 50 third-party requests, got %d", report.Summary.ThirdPartyRequests)
	}
	if report.Summary.Cookies != 5 {
		t.Errorf("expected 5 distinct cookies, got %d", report.Summary.Cookies)
	}
}
