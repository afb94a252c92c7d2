// Package pipeline grades recorded page visits offline.
//
// A Job names a capture (a JSON Lines file of monitor events) and,
// optionally, the HTML document of the page. A Pipeline runs a fixed
// sequence of steps over a Job: replay the capture into a private
// monitor, merge a fresh observation of the document, and build the
// detailed report. BatchProcessor grades many captures concurrently
// using errgroup.
package pipeline
