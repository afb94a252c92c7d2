package pipeline

import "errors"

// ErrNoPageLoad is returned when a capture never loads a page and the
// job does not name a tab.
var ErrNoPageLoad = errors.New("capture contains no page load")
