package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/privacygrade/internal/observe"
	"github.com/nao1215/privacygrade/internal/score"
	"github.com/nao1215/privacygrade/internal/tracker"
)

// Default configuration values.
const (
	// AppName is used for the XDG directory names.
	AppName = "privacygrade"

	// DefaultBatchSize is the number of captures graded concurrently.
	DefaultBatchSize = 10

	// DefaultMaxBodySize limits the HTML read for a fresh observation (5MB).
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultListenAddress keeps the API on the loopback interface.
	DefaultListenAddress = "127.0.0.1:8787"

	// DefaultRepaintInterval debounces badge repaints.
	DefaultRepaintInterval = 5 * time.Second

	// DefaultSettleDelay is how long browse lets a page run before grading it.
	DefaultSettleDelay = 4 * time.Second

	// DefaultPenaltyProfile is the third-party penalty table for queries.
	DefaultPenaltyProfile = score.ProfileOnDemand

	// DefaultMergeStrategy is how fresh observations are merged.
	DefaultMergeStrategy = "largest"
)

// Config holds the options of one privacygrade invocation. It is built
// from defaults, then the configuration file, then command line flags.
type Config struct {
	// Verbose logs at debug level.
	Verbose bool

	// ConfigFilePath is the configuration file given with --config.
	ConfigFilePath string

	// JSONReport and MarkdownReport select the report format. Both false
	// means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is where the report is written. Empty means stdout.
	ReportFile string

	// Targets are the captures or URLs to grade.
	Targets []string

	// Document is the HTML file merged as the fresh observation.
	Document string

	// TabID selects the graded tab of a capture. Zero means the last
	// loaded tab.
	TabID int

	// BatchSize is the number of captures graded concurrently.
	BatchSize int

	// MaxBodySize limits how much HTML is parsed.
	MaxBodySize int64

	// ListenAddress is where serve listens.
	ListenAddress string

	// RepaintInterval is the minimum time between two badge repaints of
	// one tab. Zero repaints on every change.
	RepaintInterval time.Duration

	// SettleDelay is how long browse lets a page run before grading it.
	SettleDelay time.Duration

	// PenaltyProfile names the third-party penalty table used for
	// queries: on-demand or continuous. Ignored when PenaltyTiers is set.
	PenaltyProfile string

	// PenaltyTiers is a custom third-party penalty table.
	PenaltyTiers []score.PenaltyTier

	// MergeStrategy is largest or union.
	MergeStrategy string

	// Trackers maps a category name to extra tracker domains.
	Trackers map[string][]string
}

// NewConfig returns a Config with the defaults.
func NewConfig() *Config {
	return &Config{
		BatchSize:       DefaultBatchSize,
		MaxBodySize:     DefaultMaxBodySize,
		ListenAddress:   DefaultListenAddress,
		RepaintInterval: DefaultRepaintInterval,
		SettleDelay:     DefaultSettleDelay,
		PenaltyProfile:  DefaultPenaltyProfile,
		MergeStrategy:   DefaultMergeStrategy,
		Trackers:        make(map[string][]string),
	}
}

// XDGConfigDir returns the privacygrade directory under the XDG config home.
// On Linux: ~/.config/privacygrade
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the privacygrade directory under the XDG cache home.
// On Linux: ~/.cache/privacygrade
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate returns the first problem found in the configuration.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.RepaintInterval < 0 {
		return ErrInvalidRepaintInterval
	}
	if c.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}
	if c.ListenAddress == "" {
		return ErrEmptyListenAddress
	}
	if _, err := c.Penalties(); err != nil {
		return err
	}
	if _, err := c.Merge(); err != nil {
		return err
	}
	return nil
}

// ApplyFile copies the settings present in f over c.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Penalties.Profile != "" {
		c.PenaltyProfile = f.Penalties.Profile
	}
	if len(f.Penalties.Tiers) > 0 {
		c.PenaltyTiers = slices.Clone(f.Penalties.Tiers)
	}
	if f.Merge != "" {
		c.MergeStrategy = f.Merge
	}
	if f.RepaintInterval != nil {
		c.RepaintInterval = *f.RepaintInterval
	}
	if f.SettleDelay != nil {
		c.SettleDelay = *f.SettleDelay
	}
	if f.Listen != "" {
		c.ListenAddress = f.Listen
	}
	if c.Trackers == nil {
		c.Trackers = make(map[string][]string)
	}
	for category, domains := range f.Trackers {
		c.Trackers[category] = append(c.Trackers[category], domains...)
	}
}

// Penalties returns the third-party penalty table for queries.
func (c *Config) Penalties() (score.PenaltyTable, error) {
	if len(c.PenaltyTiers) > 0 {
		for _, tier := range c.PenaltyTiers {
			if tier.Above < 0 || tier.Points < 0 {
				return nil, fmt.Errorf("%w: %+v", ErrInvalidPenaltyTier, tier)
			}
		}
		return score.PenaltyTable(slices.Clone(c.PenaltyTiers)), nil
	}
	table, err := score.PenaltiesFor(c.PenaltyProfile)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, c.PenaltyProfile)
	}
	return table, nil
}

// Merge returns the configured merge strategy.
func (c *Config) Merge() (observe.MergeStrategy, error) {
	strategy, err := observe.ParseMergeStrategy(c.MergeStrategy)
	if err != nil {
		return strategy, fmt.Errorf("%w: %q", err, c.MergeStrategy)
	}
	return strategy, nil
}

// ClassifierOptions returns the options that add the configured tracker
// domains, in category order.
func (c *Config) ClassifierOptions() []tracker.Option {
	categories := make([]string, 0, len(c.Trackers))
	for category := range c.Trackers {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	opts := make([]tracker.Option, 0, len(categories))
	for _, category := range categories {
		opts = append(opts, tracker.WithDomains(category, c.Trackers[category]...))
	}
	return opts
}
