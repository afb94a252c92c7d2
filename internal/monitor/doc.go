// Package monitor is the event-facing surface of the privacy engine.
//
// A Monitor receives tab lifecycle, network, and content-signal events
// from whatever observes the browser, routes them into an
// observe.Registry, and answers score and report queries with a
// score.Engine. When accumulated evidence changes, it recomputes the
// tab's grade at most once per repaint interval and hands the result to a
// Painter.
//
// Events can also be replayed from a JSON Lines capture with ParseEvents
// and Apply, which is how recorded sessions are graded offline.
package monitor
