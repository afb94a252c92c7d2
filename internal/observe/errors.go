package observe

import "errors"

var (
	// ErrStaleTab is returned when a token refers to a page that has been
	// closed or replaced by a navigation since the token was taken.
	ErrStaleTab = errors.New("tab is no longer tracked by this page visit")

	// ErrUnknownMergeStrategy is returned by ParseMergeStrategy.
	ErrUnknownMergeStrategy = errors.New("unknown merge strategy: must be largest or union")
)
