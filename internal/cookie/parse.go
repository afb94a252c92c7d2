package cookie

import (
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/privacygrade/internal/model"
)

// ParseSetCookie extracts a cookie from a Set-Cookie header value.
//
// The name and value are the text before and after the first "=" of the
// first ";"-separated segment; missing parts are empty. Expires is kept
// as written, and Max-Age is converted to an absolute expiry relative to
// now, overriding Expires.
func ParseSetCookie(header string, now time.Time) model.Cookie {
	segments := strings.Split(header, ";")
	name, value, _ := strings.Cut(segments[0], "=")

	c := model.Cookie{
		Name:  strings.TrimSpace(name),
		Value: strings.TrimSpace(value),
	}

	var maxAge *int
	for _, segment := range segments[1:] {
		key, val, _ := strings.Cut(segment, "=")
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "expires":
			c.Expires = val
		case "max-age":
			if seconds, err := strconv.Atoi(val); err == nil {
				maxAge = &seconds
			}
		}
	}

	if maxAge != nil {
		c.Expires = expiryAfter(now, *maxAge).Format(time.RFC3339)
	}
	return c
}

// latestExpiry is 9999-12-31T23:59:59Z, the last instant RFC 3339 can write.
const latestExpiry = 253402300799

// expiryAfter returns now plus seconds, saturating at latestExpiry and at
// the Unix epoch. Max-Age values beyond the range of time.Duration are
// common on cookies meant to live "forever".
func expiryAfter(now time.Time, seconds int) time.Time {
	start := now.Unix()
	delta := int64(seconds)
	switch {
	case delta > latestExpiry-start:
		return time.Unix(latestExpiry, 0).UTC()
	case delta < -start:
		return time.Unix(0, 0).UTC()
	default:
		return time.Unix(start+delta, 0).UTC()
	}
}
