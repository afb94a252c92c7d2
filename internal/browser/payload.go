package browser

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/monitor"
)

// decodeSignal converts a binding payload into a monitor event for tabID.
// Pages may only report fingerprint, permission and forms events.
func decodeSignal(payload string, tabID int) (monitor.Event, error) {
	var ev monitor.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return monitor.Event{}, fmt.Errorf("failed to decode signal: %w", err)
	}

	switch ev.Type {
	case monitor.EventFingerprint, monitor.EventPermission, monitor.EventForms:
	default:
		return monitor.Event{}, fmt.Errorf("%w: %q from page", monitor.ErrUnknownEvent, ev.Type)
	}
	return monitor.Event{
		Type:       ev.Type,
		TabID:      tabID,
		Technique:  ev.Technique,
		Canvas:     ev.Canvas,
		Forms:      ev.Forms,
		Permission: ev.Permission,
	}, nil
}

// headerList flattens CDP response headers in name order.
func headerList(headers network.Headers) []model.Header {
	out := make([]model.Header, 0, len(headers))
	for name, value := range headers {
		s, ok := value.(string)
		if !ok {
			s = fmt.Sprint(value)
		}
		out = append(out, model.Header{Name: name, Value: s})
	}
	slices.SortFunc(out, func(a, b model.Header) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// cookieFromCDP converts a browser cookie. Session cookies have no expiry.
func cookieFromCDP(c *network.Cookie) model.Cookie {
	out := model.Cookie{Name: c.Name, Value: c.Value}
	if !c.Session && c.Expires > 0 {
		sec, frac := math.Modf(c.Expires)
		out.Expires = time.Unix(int64(sec), int64(frac*1e9)).UTC().Format(time.RFC3339)
	}
	return out
}

// jarCookies appends the browser's cookies to cookies, keeping the first
// cookie of every name. The jar holds one cookie per name, domain and path,
// so the same name can come back several times.
func jarCookies(cookies []model.Cookie, jar []*network.Cookie) []model.Cookie {
	seen := make(map[string]struct{}, len(cookies)+len(jar))
	out := make([]model.Cookie, 0, len(cookies)+len(jar))
	for _, c := range cookies {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	for _, c := range jar {
		if c == nil {
			continue
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, cookieFromCDP(c))
	}
	return out
}

// normalizePageURL returns rawURL the way Chrome commits it: lower-case
// scheme and host, no default port, "/" for an empty path and no
// fragment. Unparseable URLs are returned unchanged.
func normalizePageURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if port := u.Port(); (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = strings.TrimSuffix(u.Host, ":"+port)
	}
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
