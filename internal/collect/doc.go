// Package collect builds point-in-time observations of a page from its
// HTML.
//
// The live registry only sees what the browser reports while the page
// runs. A fresh collection looks at the document itself: the resources it
// references, fingerprinting API calls in its inline scripts, and the
// fields of its forms. The result is a model.Snapshot that can be merged
// with the live evidence.
package collect
