// Package config loads and validates the toolkit configuration: defaults
// first, then an optional yaml/json file, then GOCAUSAL_ environment
// overrides ("__" separates nesting levels, e.g. GOCAUSAL_RUN__SEED).
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"gocausal/internal/errors"
	"gocausal/internal/lesson"
	"gocausal/internal/simulate"
)

// Version is stamped into run manifests as the code version.
const Version = "0.1.0"

// Config represents the complete application configuration
type Config struct {
	Run     RunConfig     `json:"run"`
	Lessons LessonsConfig `json:"lessons"`
	Serve   ServeConfig   `json:"serve"`
	Export  ExportConfig  `json:"export"`
	Logging LoggingConfig `json:"logging"`
}

// RunConfig selects the lessons and the seed that drives them.
type RunConfig struct {
	Seed        int64    `json:"seed"`
	Lessons     []string `json:"lessons"`
	Concurrency int      `json:"concurrency"`
	CodeVersion string   `json:"code_version"`
}

// LessonsConfig holds the per-lesson simulation settings.
type LessonsConfig struct {
	Imputation    ImputationConfig    `json:"imputation"`
	Matching      MatchingConfig      `json:"matching"`
	DiffInDiff    DiffInDiffConfig    `json:"diffindiff"`
	Discontinuity DiscontinuityConfig `json:"discontinuity"`
}

// ImputationConfig pairs the missing-data generator with the draw count.
type ImputationConfig struct {
	Data simulate.MissingConfig `json:"data"`
	M    int                    `json:"m"`
}

// MatchingConfig wraps the observational cohort generator.
type MatchingConfig struct {
	Data simulate.ObservationalConfig `json:"data"`
}

// DiffInDiffConfig wraps the panel generator.
type DiffInDiffConfig struct {
	Data simulate.PanelConfig `json:"data"`
}

// DiscontinuityConfig pairs the cutoff generator with the estimation
// bandwidth around the cutoff.
type DiscontinuityConfig struct {
	Data      simulate.ThresholdConfig `json:"data"`
	Bandwidth float64                  `json:"bandwidth"`
}

// ServeConfig holds report server settings.
type ServeConfig struct {
	Addr string `json:"addr"`
}

// ExportConfig holds optional output destinations.
type ExportConfig struct {
	Workbook string `json:"workbook"`
	OutDir   string `json:"out_dir"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `json:"level"`
}

// Default returns the defaults-configured toolkit.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Seed:        42,
			Lessons:     lesson.Names(),
			Concurrency: 2,
			CodeVersion: Version,
		},
		Lessons: LessonsConfig{
			Imputation:    ImputationConfig{Data: simulate.DefaultMissingConfig(), M: 5},
			Matching:      MatchingConfig{Data: simulate.DefaultObservationalConfig()},
			DiffInDiff:    DiffInDiffConfig{Data: simulate.DefaultPanelConfig()},
			Discontinuity: DiscontinuityConfig{Data: simulate.DefaultThresholdConfig(), Bandwidth: 10},
		},
		Serve:   ServeConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from an optional file and the environment,
// layered over the defaults, and validates the result. An empty path
// skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = kjson.Parser()
		default:
			return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported config format: %s", ext))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, "loading config file %s", path)
		}
	}

	// Optional environment overrides
	if err := k.Load(env.Provider("GOCAUSAL_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gocausal_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "loading environment overrides")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Run.Concurrency < 1 {
		return errors.ConfigInvalid("run.concurrency must be at least 1")
	}
	if len(c.Run.Lessons) == 0 {
		return errors.ConfigInvalid("run.lessons cannot be empty")
	}
	known := make(map[string]bool, 4)
	for _, name := range lesson.Names() {
		known[name] = true
	}
	seen := make(map[string]bool, len(c.Run.Lessons))
	for _, name := range c.Run.Lessons {
		if !known[name] {
			return errors.ConfigInvalid(fmt.Sprintf("unknown lesson %q", name))
		}
		if seen[name] {
			return errors.ConfigInvalid(fmt.Sprintf("duplicate lesson %q", name))
		}
		seen[name] = true
	}

	if c.Lessons.Imputation.M < 2 {
		return errors.ConfigInvalid("lessons.imputation.m must be at least 2")
	}
	if err := c.Lessons.Imputation.Data.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := c.Lessons.Matching.Data.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := c.Lessons.DiffInDiff.Data.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := c.Lessons.Discontinuity.Data.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if c.Lessons.Discontinuity.Bandwidth <= 0 {
		return errors.ConfigInvalid("lessons.discontinuity.bandwidth must be positive")
	}

	if c.Serve.Addr == "" {
		return errors.ConfigInvalid("serve.addr cannot be empty")
	}
	return nil
}

// Build constructs the configured lesson set in run order.
func (c *Config) Build() ([]lesson.Lesson, error) {
	out := make([]lesson.Lesson, 0, len(c.Run.Lessons))
	for _, name := range c.Run.Lessons {
		switch name {
		case lesson.NameImputation:
			out = append(out, lesson.NewImputation(c.Lessons.Imputation.Data, c.Lessons.Imputation.M))
		case lesson.NameMatching:
			out = append(out, lesson.NewMatching(c.Lessons.Matching.Data))
		case lesson.NameDiffInDiff:
			out = append(out, lesson.NewDiffInDiff(c.Lessons.DiffInDiff.Data))
		case lesson.NameDiscontinuity:
			out = append(out, lesson.NewDiscontinuity(c.Lessons.Discontinuity.Data, c.Lessons.Discontinuity.Bandwidth))
		default:
			return nil, errors.ConfigInvalid(fmt.Sprintf("unknown lesson %q", name))
		}
	}
	return out, nil
}
