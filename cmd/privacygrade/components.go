package main

import (
	"log/slog"

	"github.com/nao1215/privacygrade/internal/collect"
	"github.com/nao1215/privacygrade/internal/config"
	"github.com/nao1215/privacygrade/internal/monitor"
	"github.com/nao1215/privacygrade/internal/observe"
	"github.com/nao1215/privacygrade/internal/score"
	"github.com/nao1215/privacygrade/internal/tracker"
)

// components are the grading parts built from one configuration. The
// classifier and collector are shared; every monitor is independent.
type components struct {
	cfg        *config.Config
	classifier *tracker.Classifier
	collector  *collect.Collector
	penalties  score.PenaltyTable
	merge      observe.MergeStrategy
	logger     *slog.Logger
}

// newComponents validates cfg and builds the shared parts.
func newComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	penalties, err := cfg.Penalties()
	if err != nil {
		return nil, err
	}
	merge, err := cfg.Merge()
	if err != nil {
		return nil, err
	}

	logger.Debug("grading settings",
		"penalty_profile", cfg.PenaltyProfile,
		"custom_tiers", len(cfg.PenaltyTiers) > 0,
		"merge", merge.String(),
		"extra_tracker_categories", len(cfg.Trackers),
	)

	classifier := tracker.NewClassifier(cfg.ClassifierOptions()...)
	return &components{
		cfg:        cfg,
		classifier: classifier,
		collector: collect.NewCollector(
			collect.WithClassifier(classifier),
			collect.WithMaxBodySize(cfg.MaxBodySize),
			collect.WithLogger(logger),
		),
		penalties: penalties,
		merge:     merge,
		logger:    logger,
	}, nil
}

// newMonitor creates a monitor with its own registry.
func (c *components) newMonitor(opts ...monitor.Option) *monitor.Monitor {
	return c.newMonitorWith(nil, opts...)
}

// newMonitorWith is newMonitor with a registry that re-creates tabs it does
// not know from resolver. A nil resolver disables that.
func (c *components) newMonitorWith(resolver observe.TabResolver, opts ...monitor.Option) *monitor.Monitor {
	registryOpts := []observe.Option{
		observe.WithClassifier(c.classifier),
		observe.WithLogger(c.logger),
	}
	if resolver != nil {
		registryOpts = append(registryOpts, observe.WithResolver(resolver))
	}
	base := []monitor.Option{
		monitor.WithRegistry(observe.NewRegistry(registryOpts...)),
		monitor.WithEngine(score.New(score.WithPenalties(c.penalties))),
		monitor.WithRepaintInterval(c.cfg.RepaintInterval),
		monitor.WithMergeStrategy(c.merge),
		monitor.WithLogger(c.logger),
	}
	return monitor.New(append(base, opts...)...)
}
