package simulate

import (
	"math/rand"

	"gocausal/domain/cohort"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// ThresholdConfig configures the sharp-cutoff sample for the regression
// discontinuity lesson. Treatment is assigned deterministically by the
// running variable crossing Cutoff, and the outcome jumps by Jump at the
// threshold on top of a smooth curve.
type ThresholdConfig struct {
	N         int     `json:"n"`
	Cutoff    float64 `json:"cutoff"`
	Jump      float64 `json:"jump"`
	Slope     float64 `json:"slope"`
	Curvature float64 `json:"curvature"`
	NoiseSD   float64 `json:"noise_sd"`
	Seed      int64   `json:"seed"`
}

// DefaultThresholdConfig returns sensible defaults for the discontinuity lesson
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		N:         500,
		Cutoff:    50,
		Jump:      3.0,
		Slope:     0.08,
		Curvature: 0.02,
		NoiseSD:   1.0,
		Seed:      42,
	}
}

// Validate checks the config bounds.
func (c ThresholdConfig) Validate() error {
	if c.N < 50 {
		return core.NewValidationError("threshold.n", "need at least 50 units")
	}
	if c.Cutoff <= 0 || c.Cutoff >= 100 {
		return core.NewValidationError("threshold.cutoff", "must lie strictly inside (0, 100)")
	}
	if c.NoiseSD <= 0 {
		return core.NewValidationError("threshold.noise_sd", "must be positive")
	}
	return nil
}

// Threshold generates units with a running variable uniform on [0, 100),
// sharp treatment at the cutoff and a curved outcome so that a global
// linear fit misreads the jump. Columns: outcome, treated, running.
func Threshold(cfg ThresholdConfig) (*cohort.Cohort, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	running := make([]float64, cfg.N)
	treated := make([]float64, cfg.N)
	outcome := make([]float64, cfg.N)

	for i := 0; i < cfg.N; i++ {
		r := rng.Float64() * 100
		running[i] = r

		t := 0.0
		if r >= cfg.Cutoff {
			t = 1.0
		}
		treated[i] = t

		centered := r - cfg.Cutoff
		outcome[i] = 10 +
			cfg.Slope*centered +
			cfg.Curvature*centered*centered/10 +
			cfg.Jump*t +
			cfg.NoiseSD*rng.NormFloat64()
	}

	f := dataset.NewFrame(cfg.N)
	f.MustAddColumn("treated", treated)
	f.MustAddColumn("outcome", outcome)
	f.MustAddColumn("running", running)

	return cohort.New(f, "treated", "outcome", "running")
}
