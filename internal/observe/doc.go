// Package observe owns the per-tab observation records.
//
// A Registry maps tab identifiers to tracked pages. Pages are created by
// Open, replaced when the tab navigates, and discarded by Close. Every
// Record* call for a tab is serialized on that tab's page, so events from
// request interception, response interception and content instrumentation
// may arrive concurrently and in any order.
//
// Snapshots are deep copies handed to the scoring engine. Merge reconciles
// a live snapshot with a fresh point-in-time observation of the same page.
package observe
