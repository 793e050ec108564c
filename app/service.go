package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gocausal/domain/core"
	"gocausal/domain/effect"
	"gocausal/internal/config"
	"gocausal/internal/logger"
)

// RunResult bundles everything a single run produced.
type RunResult struct {
	Manifest  *effect.Manifest `json:"manifest"`
	Reports   []*effect.Report `json:"reports"`
	RuntimeMs int64            `json:"runtime_ms"`
}

// Report returns the report for a lesson name, if the run produced one.
func (r *RunResult) Report(lessonName string) (*effect.Report, bool) {
	for _, rep := range r.Reports {
		if rep.LessonName == lessonName {
			return rep, true
		}
	}
	return nil, false
}

// Failed reports whether any lesson in the run failed.
func (r *RunResult) Failed() bool {
	for _, rep := range r.Reports {
		if rep.Failed() {
			return true
		}
	}
	return false
}

// Sink consumes a finished run, e.g. a markdown file or a workbook.
type Sink interface {
	Name() string
	Write(ctx context.Context, res *RunResult) error
}

// Service executes the configured lessons under one manifest and fans
// the result out to its sinks.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	sinks []Sink
}

// NewService creates a lesson runner from a validated config.
func NewService(cfg *config.Config, log logger.Logger, sinks ...Sink) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{cfg: cfg, log: log, sinks: sinks}
}

// Seed returns the configured base seed.
func (s *Service) Seed() int64 { return s.cfg.Run.Seed }

// CodeVersion returns the configured code version string.
func (s *Service) CodeVersion() string { return s.cfg.Run.CodeVersion }

// Run executes the configured lessons with the configured seed.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	return s.RunWithSeed(ctx, s.cfg.Run.Seed)
}

// RunWithSeed executes the configured lessons under the given base seed.
// Each lesson gets a seed derived from the base seed and its name, so
// adding or reordering lessons never shifts a sibling's data. Reports
// come back in configured order regardless of completion order. A
// failing lesson is recorded on its own report and does not abort the
// run; cancellation does.
func (s *Service) RunWithSeed(ctx context.Context, seed int64) (*RunResult, error) {
	startTime := time.Now()

	lessons, err := s.cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("resolving lessons: %w", err)
	}

	names := make([]string, len(lessons))
	for i, l := range lessons {
		names[i] = l.Name()
	}

	manifest := effect.NewManifest(core.RunID(core.NewID()), seed, names, s.cfg.Run.CodeVersion)
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("building manifest: %w", err)
	}
	s.log.Infof("run %s started: seed=%d lessons=%v", manifest.RunID, seed, names)

	reports := make([]*effect.Report, len(lessons))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Run.Concurrency)
	for i, l := range lessons {
		g.Go(func() error {
			lessonSeed := core.DeriveSeed(seed, l.Name())
			rep, err := l.Run(gctx, lessonSeed)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Errorf("lesson %s failed: %v", l.Name(), err)
				rep = effect.NewReport(l.Name(), l.Title(), manifest.RunID, lessonSeed)
				rep.Err = err.Error()
			}
			rep.RunID = manifest.RunID
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run %s aborted: %w", manifest.RunID, err)
	}

	for _, rep := range reports {
		if rep.Failed() {
			continue
		}
		if err := rep.Validate(); err != nil {
			return nil, fmt.Errorf("lesson %s produced an invalid report: %w", rep.LessonName, err)
		}
	}

	res := &RunResult{
		Manifest:  manifest,
		Reports:   reports,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, res); err != nil {
			return nil, fmt.Errorf("sink %s: %w", sink.Name(), err)
		}
	}

	s.log.Infof("run %s finished in %dms", manifest.RunID, res.RuntimeMs)
	return res, nil
}
