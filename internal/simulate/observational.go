package simulate

import (
	"math/rand"

	"gocausal/domain/cohort"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// ObservationalConfig configures the confounded observational cohort
// used by the matching lesson. Age and severity drive both treatment
// uptake and the outcome, so the naive contrast is biased and matching
// has something to repair.
type ObservationalConfig struct {
	N          int     `json:"n"`
	TrueEffect float64 `json:"true_effect"`
	TreatShare float64 `json:"treat_share"`
	NoiseSD    float64 `json:"noise_sd"`
	Seed       int64   `json:"seed"`
}

// DefaultObservationalConfig returns sensible defaults for the matching lesson
func DefaultObservationalConfig() ObservationalConfig {
	return ObservationalConfig{
		N:          400,
		TrueEffect: 2.0,
		TreatShare: 0.35,
		NoiseSD:    1.0,
		Seed:       42,
	}
}

// Validate checks the config bounds.
func (c ObservationalConfig) Validate() error {
	if c.N < 20 {
		return core.NewValidationError("observational.n", "need at least 20 units")
	}
	if c.TreatShare <= 0.05 || c.TreatShare >= 0.95 {
		return core.NewValidationError("observational.treat_share", "must be inside (0.05, 0.95)")
	}
	if c.NoiseSD <= 0 {
		return core.NewValidationError("observational.noise_sd", "must be positive")
	}
	return nil
}

// Observational generates the cohort: columns treated, outcome, age,
// severity; covariates bound for balance reporting.
func Observational(cfg ObservationalConfig) (*cohort.Cohort, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	treated := make([]float64, cfg.N)
	outcome := make([]float64, cfg.N)
	age := make([]float64, cfg.N)
	severity := make([]float64, cfg.N)

	bias := logit(cfg.TreatShare)
	for i := 0; i < cfg.N; i++ {
		age[i] = 45 + 12*rng.NormFloat64()
		zAge := (age[i] - 45) / 12
		severity[i] = 0.3*zAge + rng.NormFloat64()

		p := logistic(bias + 0.7*zAge + 0.9*severity[i])
		if rng.Float64() < p {
			treated[i] = 1
		}

		outcome[i] = 10 + 1.5*zAge + 2.0*severity[i] +
			cfg.TrueEffect*treated[i] + cfg.NoiseSD*rng.NormFloat64()
	}

	f := dataset.NewFrame(cfg.N)
	f.MustAddColumn("treated", treated)
	f.MustAddColumn("outcome", outcome)
	f.MustAddColumn("age", age)
	f.MustAddColumn("severity", severity)

	return cohort.New(f, "treated", "outcome", "age", "severity")
}
