package impute

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gocausal/domain/core"
)

// Pooled combines per-imputation estimates under Rubin's rules. Total
// variance splits into the average within-imputation variance and the
// spread between imputations.
type Pooled struct {
	Estimate float64 `json:"estimate"`
	SE       float64 `json:"se"`
	Within   float64 `json:"within"`
	Between  float64 `json:"between"`
	Total    float64 `json:"total"`
	DF       float64 `json:"df"`
	P        float64 `json:"p"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	M        int     `json:"m"`
}

// Pool applies Rubin's rules to one estimate and standard error per
// imputation, returning the combined estimate with a confidence interval
// at the given level.
func Pool(estimates, standardErrors []float64, level float64) (*Pooled, error) {
	m := len(estimates)
	if m < 2 {
		return nil, core.NewInvalidInputError("pooling needs at least 2 imputations, got %d", m)
	}
	if len(standardErrors) != m {
		return nil, core.NewInvalidInputError("%d estimates but %d standard errors", m, len(standardErrors))
	}
	if level <= 0 || level >= 1 {
		return nil, core.NewInvalidInputError("confidence level %g outside (0, 1)", level)
	}
	for i := 0; i < m; i++ {
		if math.IsNaN(estimates[i]) || math.IsInf(estimates[i], 0) {
			return nil, core.NewInvalidInputError("estimate %d is not finite", i)
		}
		if math.IsNaN(standardErrors[i]) || standardErrors[i] < 0 {
			return nil, core.NewInvalidInputError("standard error %d is invalid", i)
		}
	}

	var qbar float64
	for _, q := range estimates {
		qbar += q
	}
	qbar /= float64(m)

	var within float64
	for _, se := range standardErrors {
		within += se * se
	}
	within /= float64(m)

	var between float64
	for _, q := range estimates {
		d := q - qbar
		between += d * d
	}
	between /= float64(m - 1)

	inflation := (1 + 1/float64(m)) * between
	total := within + inflation
	se := math.Sqrt(total)

	// Degrees of freedom collapse toward m-1 when the imputations disagree
	// and grow without bound when they agree exactly.
	df := math.Inf(1)
	if inflation > 0 {
		r := within / inflation
		df = float64(m-1) * (1 + r) * (1 + r)
	}

	lower, upper := qbar, qbar
	p := 1.0
	if se > 0 {
		crit := poolCritical(df, level)
		lower = qbar - crit*se
		upper = qbar + crit*se
		p = poolPValue(qbar/se, df)
	}

	return &Pooled{
		Estimate: qbar,
		SE:       se,
		Within:   within,
		Between:  between,
		Total:    total,
		DF:       df,
		P:        p,
		Lower:    lower,
		Upper:    upper,
		M:        m,
	}, nil
}

func poolCritical(df, level float64) float64 {
	p := 1 - (1-level)/2
	if math.IsInf(df, 1) || df > 1e6 {
		return distuv.Normal{Mu: 0, Sigma: 1}.Quantile(p)
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}

func poolPValue(stat, df float64) float64 {
	if math.IsInf(df, 1) || df > 1e6 {
		dist := distuv.Normal{Mu: 0, Sigma: 1}
		return 2 * (1 - dist.CDF(math.Abs(stat)))
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(stat)))
}
