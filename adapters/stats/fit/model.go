package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gocausal/domain/core"
)

// ModelKind distinguishes the fitted model families.
type ModelKind string

const (
	KindOLS   ModelKind = "ols"
	KindLogit ModelKind = "logit"
)

// Coefficient is one fitted term with its inference columns.
// Stat is a t statistic for OLS fits and a z statistic for logit fits.
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	SE       float64 `json:"se"`
	Stat     float64 `json:"stat"`
	P        float64 `json:"p"`
}

// Model is the result of a regression fit.
type Model struct {
	Kind  ModelKind     `json:"kind"`
	Terms []Coefficient `json:"terms"`
	N     int           `json:"n"`
	DF    int           `json:"df"`

	// OLS fields
	Sigma2 float64 `json:"sigma2,omitempty"`
	R2     float64 `json:"r2,omitempty"`

	// Logit fields
	Deviance   float64 `json:"deviance,omitempty"`
	Iterations int     `json:"iterations,omitempty"`

	fitted    []float64
	residuals []float64
}

// Term returns the named coefficient.
func (m *Model) Term(name string) (Coefficient, bool) {
	for _, c := range m.Terms {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// MustTerm returns the named coefficient or panics. Callers own the
// design, so a missing term is a programming error.
func (m *Model) MustTerm(name string) Coefficient {
	c, ok := m.Term(name)
	if !ok {
		panic(fmt.Sprintf("fit: no term %q in model", name))
	}
	return c
}

// Coef returns the named coefficient estimate, NaN when absent.
func (m *Model) Coef(name string) float64 {
	c, ok := m.Term(name)
	if !ok {
		return math.NaN()
	}
	return c.Estimate
}

// Fitted returns the fitted values (probabilities for logit fits).
func (m *Model) Fitted() []float64 {
	out := make([]float64, len(m.fitted))
	copy(out, m.fitted)
	return out
}

// Residuals returns the response residuals.
func (m *Model) Residuals() []float64 {
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// ConfInt returns the two-sided confidence interval for a term at the
// given level (e.g. 0.95). OLS intervals use the Student's t reference,
// logit intervals the standard normal.
func (m *Model) ConfInt(name string, level float64) (lower, upper float64, err error) {
	if level <= 0 || level >= 1 {
		return 0, 0, core.NewInvalidInputError("confidence level %g outside (0,1)", level)
	}
	c, ok := m.Term(name)
	if !ok {
		return 0, 0, core.NewNotFoundError("term", name)
	}
	q := criticalValue(m, level)
	return c.Estimate - q*c.SE, c.Estimate + q*c.SE, nil
}

func criticalValue(m *Model, level float64) float64 {
	p := 1 - (1-level)/2
	if m.Kind == KindOLS && m.DF > 0 {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(m.DF)}
		return dist.Quantile(p)
	}
	return distuv.Normal{Mu: 0, Sigma: 1}.Quantile(p)
}

// twoSidedT computes the two-sided p-value of a t statistic.
func twoSidedT(stat float64, df int) float64 {
	if df <= 0 {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return 2 * (1 - dist.CDF(math.Abs(stat)))
}

// twoSidedZ computes the two-sided p-value of a z statistic.
func twoSidedZ(stat float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return 2 * (1 - dist.CDF(math.Abs(stat)))
}
