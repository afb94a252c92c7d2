package monitor

import "errors"

var (
	// ErrUnknownEvent is returned by Apply for an unrecognized event type.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrUntrackedTab is returned by FreshReport when the tab has no page visit.
	ErrUntrackedTab = errors.New("tab is not tracked")
)
