package cookie

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/privacygrade/internal/model"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestIsTracking(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		cookie   model.Cookie
		expected bool
	}{
		{"google analytics id", model.Cookie{Name: "_ga", Value: "GA1.2.3"}, true},
		{"google analytics session", model.Cookie{Name: "_gid", Value: "x"}, true},
		{"throttle cookie", model.Cookie{Name: "_gat_UA", Value: "1"}, true},
		{"facebook browser id", model.Cookie{Name: "_fbp", Value: "fb.1.2"}, true},
		{"campaign value", model.Cookie{Name: "src", Value: "UTM_source"}, true},
		{"ad network in value", model.Cookie{Name: "ref", Value: "DoubleClick"}, true},
		{"session id", model.Cookie{Name: "sessionid", Value: "abc123"}, false},
		{"csrf token", model.Cookie{Name: "csrftoken", Value: "xyz"}, false},
		{"empty cookie", model.Cookie{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsTracking(tc.cookie); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestIsLongTerm(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		expires  string
		expected bool
	}{
		// Session cookies are short-term even though sites can re-issue them
		// on every visit to persist indefinitely.
		{"session cookie without expiry is short-term", "", false},
		{"one year ahead in HTTP date format", "Mon, 01 Mar 2027 12:00:00 GMT", true},
		{"netscape format", "Mon, 01-Mar-2027 12:00:00 GMT", true},
		{"rfc3339", "2027-03-01T12:00:00Z", true},
		{"exactly thirty days is not long-term", "2026-03-31T12:00:00Z", false},
		{"thirty days and one second is long-term", "2026-03-31T12:00:01Z", true},
		{"already expired", "Thu, 01 Jan 1970 00:00:00 GMT", false},
		{"unparseable expiry is short-term", "next tuesday", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsLongTerm(tc.expires, fixedNow); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestAnalyzer_Classify(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(WithClock(func() time.Time { return fixedNow }))

	got := a.Classify(model.Cookie{Name: "_ga", Value: "1", Expires: "2028-01-01T00:00:00Z"})
	want := Classification{IsTracking: true, IsLongTerm: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("classification mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_Summarize(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(WithClock(func() time.Time { return fixedNow }))
	stats := a.Summarize([]model.Cookie{
		{Name: "_ga", Value: "1", Expires: "2028-01-01T00:00:00Z"},
		{Name: "prefs", Value: "dark", Expires: "2028-01-01T00:00:00Z"},
		{Name: "sessionid", Value: "abc"},
	})

	want := model.CookieStats{Total: 3, Tracking: 1, LongTerm: 2}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSetCookie(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		header   string
		expected model.Cookie
	}{
		{
			name:     "name and value with attributes",
			header:   "_ga=GA1.2.345; Path=/; Secure",
			expected: model.Cookie{Name: "_ga", Value: "GA1.2.345"},
		},
		{
			name:     "value containing equals sign keeps the remainder",
			header:   "token=a=b=c; HttpOnly",
			expected: model.Cookie{Name: "token", Value: "a=b=c"},
		},
		{
			name:     "missing value defaults to empty",
			header:   "flag",
			expected: model.Cookie{Name: "flag"},
		},
		{
			name:     "empty header yields empty cookie",
			header:   "",
			expected: model.Cookie{},
		},
		{
			name:     "expires attribute is kept",
			header:   "id=1; Expires=Wed, 21 Oct 2026 07:28:00 GMT; Path=/",
			expected: model.Cookie{Name: "id", Value: "1", Expires: "Wed, 21 Oct 2026 07:28:00 GMT"},
		},
		{
			name:     "max-age overrides expires",
			header:   "id=1; Expires=Wed, 21 Oct 2026 07:28:00 GMT; Max-Age=3600",
			expected: model.Cookie{Name: "id", Value: "1", Expires: "2026-03-01T13:00:00Z"},
		},
		{
			name:     "max-age beyond a duration's range stays in the future",
			header:   "id=abc; Max-Age=10000000000",
			expected: model.Cookie{Name: "id", Value: "abc", Expires: "2343-01-20T05:46:40Z"},
		},
		{
			name:     "largest max-age saturates at the last writable date",
			header:   "id=abc; Max-Age=9223372036854775807",
			expected: model.Cookie{Name: "id", Value: "abc", Expires: "9999-12-31T23:59:59Z"},
		},
		{
			name:     "negative max-age expires in the past",
			header:   "id=abc; Max-Age=-60",
			expected: model.Cookie{Name: "id", Value: "abc", Expires: "2026-03-01T11:59:00Z"},
		},
		{
			name:     "invalid max-age is ignored",
			header:   "id=1; max-age=soon",
			expected: model.Cookie{Name: "id", Value: "1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseSetCookie(tc.header, fixedNow)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("cookie mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSetCookie_CenturyCookieIsLongTerm(t *testing.T) {
	t.Parallel()

	c := ParseSetCookie("id=abc; Max-Age=10000000000", fixedNow)
	if !IsLongTerm(c.Expires, fixedNow) {
		t.Errorf("expected %q to be long-term", c.Expires)
	}
}
