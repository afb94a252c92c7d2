// Package score turns an observation snapshot into a privacy grade.
//
// Five factors are scored independently (trackers 40, cookies 20,
// fingerprinting 20, permissions 10, forms 10). Their sum is reduced by a
// penalty for the volume of third-party requests, clamped to [0, 100]
// and bucketed into a letter grade.
//
// The penalty table is a parameter of the Engine. Two tables exist
// because grades were historically computed in two places with different
// thresholds: OnDemandPenalties for queries made while the user looks at
// a page, ContinuousPenalties for the background badge. Both are kept and
// the operator chooses one in configuration.
package score
