// Package tracker classifies third-party request targets as trackers.
//
// Classification works in three tiers, tried in order:
//   - Curated domain lists per category (analytics, advertising, social,
//     fingerprinting, heatmaps). Exact and subdomain matches are tried for
//     every category before any looser substring match.
//   - Keyword patterns matched against the hostname and full URL, which
//     yield the "heuristic" category.
//   - Known tracking query parameters (utm_*, gclid, fbclid, ...), which
//     yield the "tracking_params" category.
//
// First-party targets are never classified. The Classifier is safe for
// concurrent use once constructed.
package tracker
