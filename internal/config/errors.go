package config

import "errors"

// Validation errors returned by Config.Validate.
var (
	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRepaintInterval is returned when the repaint interval is negative.
	ErrInvalidRepaintInterval = errors.New("invalid repaint interval: must be non-negative")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidPenaltyTier is returned for a custom penalty tier with a
	// negative threshold or negative points.
	ErrInvalidPenaltyTier = errors.New("invalid penalty tier: above and points must be non-negative")

	// ErrEmptyListenAddress is returned when the server has nowhere to listen.
	ErrEmptyListenAddress = errors.New("listen address must not be empty")
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
