package simulate

import (
	"math"
	"math/rand"

	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// MissingConfig configures the partially observed sample for the multiple
// imputation lesson. x2 goes missing with a probability that rises with the
// outcome, so dropping incomplete rows biases the regression while the full
// x2 column is kept alongside for checking recovery.
type MissingConfig struct {
	N           int     `json:"n"`
	SlopeX1     float64 `json:"slope_x1"`
	SlopeX2     float64 `json:"slope_x2"`
	NoiseSD     float64 `json:"noise_sd"`
	MissingRate float64 `json:"missing_rate"`
	MissingSkew float64 `json:"missing_skew"`
	Seed        int64   `json:"seed"`
}

// DefaultMissingConfig returns sensible defaults for the imputation lesson
func DefaultMissingConfig() MissingConfig {
	return MissingConfig{
		N:           300,
		SlopeX1:     1.0,
		SlopeX2:     1.5,
		NoiseSD:     1.0,
		MissingRate: 0.35,
		MissingSkew: 1.2,
		Seed:        42,
	}
}

// Validate checks the config bounds.
func (c MissingConfig) Validate() error {
	if c.N < 30 {
		return core.NewValidationError("missing.n", "need at least 30 rows")
	}
	if c.MissingRate <= 0 || c.MissingRate >= 0.9 {
		return core.NewValidationError("missing.missing_rate", "must lie strictly inside (0, 0.9)")
	}
	if c.NoiseSD <= 0 {
		return core.NewValidationError("missing.noise_sd", "must be positive")
	}
	return nil
}

// Missing generates correlated predictors x1 and x2 and an outcome y, then
// punches holes into x2 where high outcomes make observation less likely.
// Columns: x1, x2 (with NaN gaps), x2_full (pristine copy), y.
func Missing(cfg MissingConfig) (*dataset.Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	x1 := make([]float64, cfg.N)
	x2Full := make([]float64, cfg.N)
	y := make([]float64, cfg.N)

	for i := 0; i < cfg.N; i++ {
		x1[i] = rng.NormFloat64()
		x2Full[i] = 0.6*x1[i] + 0.8*rng.NormFloat64()
		y[i] = 2 + cfg.SlopeX1*x1[i] + cfg.SlopeX2*x2Full[i] + cfg.NoiseSD*rng.NormFloat64()
	}

	yMean, ySD := meanSD(y)

	x2 := make([]float64, cfg.N)
	copy(x2, x2Full)
	for i := 0; i < cfg.N; i++ {
		z := (y[i] - yMean) / ySD
		p := logistic(logit(cfg.MissingRate) + cfg.MissingSkew*z)
		if rng.Float64() < p {
			x2[i] = math.NaN()
		}
	}

	f := dataset.NewFrame(cfg.N)
	f.MustAddColumn("x1", x1)
	f.MustAddColumn("x2", x2)
	f.MustAddColumn("x2_full", x2Full)
	f.MustAddColumn("y", y)
	return f, nil
}

func meanSD(values []float64) (float64, float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / (n - 1))
	if sd == 0 {
		sd = 1
	}
	return mean, sd
}
