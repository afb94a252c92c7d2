// Package model defines the value types shared by the privacygrade engine.
//
// This package contains the following main types:
//   - Snapshot: An immutable copy of everything observed on one page
//   - ClassificationResult: The verdict for one request target
//   - Cookie: A cookie observed through a Set-Cookie header or the cookie jar
//   - ScoreResult: The weighted category score and letter grade for a Snapshot
//   - DetailedReport: A ScoreResult enriched with summary and statistics
//
// Models live in their own package so that the classifier, aggregator,
// scoring and report packages can share them without import cycles.
// Every type here serializes to JSON for the HTTP API and report output.
package model
