// Package impute fills missing values by stochastic regression: fit the
// target on its predictors over the complete rows, then draw each missing
// cell from the fitted value plus residual noise. Repeating the draw M
// times yields the imputed datasets that Rubin's rules pool back together.
package impute

import (
	"fmt"
	"math"
	"math/rand"

	"gocausal/adapters/stats/fit"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// Engine produces M completed copies of a frame. The same seed always
// reproduces the same draws.
type Engine struct {
	M    int   `json:"m"`
	Seed int64 `json:"seed"`
}

// NewEngine creates an engine for m imputations.
func NewEngine(m int, seed int64) *Engine {
	return &Engine{M: m, Seed: seed}
}

// Complete returns M copies of the frame with every missing value in the
// target column filled in. Predictor columns must be fully observed.
// Observed target values are never altered.
func (e *Engine) Complete(f *dataset.Frame, target string, predictors ...string) ([]*dataset.Frame, error) {
	if e.M < 2 {
		return nil, core.NewInvalidInputError("imputation count %d: need at least 2", e.M)
	}
	if len(predictors) == 0 {
		return nil, core.NewValidationError("impute", "imputation model needs at least one predictor")
	}

	tcol, ok := f.Column(target)
	if !ok {
		return nil, core.NewNotFoundError("target column", target)
	}
	pcols := make([][]float64, len(predictors))
	for i, name := range predictors {
		col, ok := f.Column(name)
		if !ok {
			return nil, core.NewNotFoundError("predictor column", name)
		}
		for r, v := range col {
			if math.IsNaN(v) {
				return nil, core.NewInvalidInputError("predictor %q has a missing value at row %d", name, r)
			}
		}
		pcols[i] = col
	}

	var obs, holes []int
	for r, v := range tcol {
		if math.IsNaN(v) {
			holes = append(holes, r)
		} else {
			obs = append(obs, r)
		}
	}
	if len(holes) == 0 {
		out := make([]*dataset.Frame, e.M)
		for k := range out {
			out[k] = f.Clone()
		}
		return out, nil
	}
	if len(obs) < len(predictors)+3 {
		return nil, fmt.Errorf("%w: %d complete rows for %d predictors",
			core.ErrInsufficientData, len(obs), len(predictors))
	}

	model, err := e.fitImputation(tcol, pcols, predictors, obs)
	if err != nil {
		return nil, err
	}
	sigma := math.Sqrt(model.Sigma2)
	rng := rand.New(rand.NewSource(e.Seed))

	out := make([]*dataset.Frame, e.M)
	for k := 0; k < e.M; k++ {
		filled := make([]float64, len(tcol))
		copy(filled, tcol)
		for _, r := range holes {
			mu := model.Coef(fit.InterceptTerm)
			for i, name := range predictors {
				mu += model.Coef(name) * pcols[i][r]
			}
			filled[r] = mu + sigma*rng.NormFloat64()
		}
		g := f.Clone()
		if err := g.SetColumn(target, filled); err != nil {
			return nil, err
		}
		out[k] = g
	}
	return out, nil
}

func (e *Engine) fitImputation(tcol []float64, pcols [][]float64, predictors []string, obs []int) (*fit.Model, error) {
	d := fit.NewDesign(len(obs)).AddIntercept()
	for i, name := range predictors {
		vals := make([]float64, len(obs))
		for j, r := range obs {
			vals[j] = pcols[i][r]
		}
		if err := d.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	y := make([]float64, len(obs))
	for j, r := range obs {
		y[j] = tcol[r]
	}
	return fit.OLS(d, y)
}
