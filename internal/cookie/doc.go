// Package cookie classifies cookies observed on a page.
//
// A cookie is "tracking" when its name and value match a known tracking
// signature, and "long-term" when its expiry lies more than 30 days in
// the future. Session cookies without an expiry are short-term, and an
// expiry that cannot be parsed never makes a cookie long-term.
package cookie
