package simulate

import (
	"math/rand"

	"gocausal/domain/cohort"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// PanelConfig configures the two-group, two-period panel for the
// difference-in-differences lesson. Both groups share the period trend;
// the treatment effect lands only on the treated group after the
// intervention.
type PanelConfig struct {
	UnitsPerGroup int     `json:"units_per_group"`
	BaseLevel     float64 `json:"base_level"`
	GroupGap      float64 `json:"group_gap"`
	Trend         float64 `json:"trend"`
	TrueEffect    float64 `json:"true_effect"`
	NoiseSD       float64 `json:"noise_sd"`
	Seed          int64   `json:"seed"`
}

// DefaultPanelConfig returns sensible defaults for the diff-in-diff lesson
func DefaultPanelConfig() PanelConfig {
	return PanelConfig{
		UnitsPerGroup: 150,
		BaseLevel:     20,
		GroupGap:      -3,
		Trend:         1.5,
		TrueEffect:    2.5,
		NoiseSD:       1.0,
		Seed:          42,
	}
}

// Validate checks the config bounds.
func (c PanelConfig) Validate() error {
	if c.UnitsPerGroup < 10 {
		return core.NewValidationError("panel.units_per_group", "need at least 10 units per group")
	}
	if c.NoiseSD <= 0 {
		return core.NewValidationError("panel.noise_sd", "must be positive")
	}
	return nil
}

// Panel generates one row per unit-period observation: columns outcome,
// treated (group flag) and post (period flag).
func Panel(cfg PanelConfig) (*cohort.Cohort, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	rows := 4 * cfg.UnitsPerGroup
	outcome := make([]float64, 0, rows)
	treated := make([]float64, 0, rows)
	post := make([]float64, 0, rows)

	for _, group := range []float64{0, 1} {
		for _, period := range []float64{0, 1} {
			for u := 0; u < cfg.UnitsPerGroup; u++ {
				y := cfg.BaseLevel +
					cfg.GroupGap*group +
					cfg.Trend*period +
					cfg.TrueEffect*group*period +
					cfg.NoiseSD*rng.NormFloat64()
				outcome = append(outcome, y)
				treated = append(treated, group)
				post = append(post, period)
			}
		}
	}

	f := dataset.NewFrame(rows)
	f.MustAddColumn("treated", treated)
	f.MustAddColumn("outcome", outcome)
	f.MustAddColumn("post", post)

	return cohort.New(f, "treated", "outcome")
}
