package describe

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gocausal/domain/core"
)

// TwoSampleResult is a Welch two-sample comparison of group means.
type TwoSampleResult struct {
	NX    int     `json:"n_x"`
	NY    int     `json:"n_y"`
	MeanX float64 `json:"mean_x"`
	MeanY float64 `json:"mean_y"`
	Diff  float64 `json:"diff"`
	SE    float64 `json:"se"`
	T     float64 `json:"t"`
	DF    float64 `json:"df"`
	P     float64 `json:"p"`
}

// TwoSample runs Welch's unequal-variance t comparison of x against y.
// The difference reported is mean(x) - mean(y).
func TwoSample(x, y []float64) (TwoSampleResult, error) {
	if len(x) < 2 || len(y) < 2 {
		return TwoSampleResult{}, fmt.Errorf("%w: need at least 2 observations per group, have %d and %d",
			core.ErrInsufficientData, len(x), len(y))
	}

	meanX, _ := stats.Mean(x)
	meanY, _ := stats.Mean(y)
	varX, _ := stats.SampleVariance(x)
	varY, _ := stats.SampleVariance(y)

	nx := float64(len(x))
	ny := float64(len(y))
	se2 := varX/nx + varY/ny

	res := TwoSampleResult{
		NX:    len(x),
		NY:    len(y),
		MeanX: meanX,
		MeanY: meanY,
		Diff:  meanX - meanY,
	}

	if se2 <= 0 {
		// both groups constant: no variance to test against
		res.T = math.NaN()
		res.DF = nx + ny - 2
		res.P = 1
		return res, nil
	}

	res.SE = math.Sqrt(se2)
	res.T = res.Diff / res.SE

	// Welch-Satterthwaite degrees of freedom
	num := se2 * se2
	den := (varX/nx)*(varX/nx)/(nx-1) + (varY/ny)*(varY/ny)/(ny-1)
	if den > 0 {
		res.DF = num / den
	} else {
		res.DF = nx + ny - 2
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.P = 2 * (1 - dist.CDF(math.Abs(res.T)))
	return res, nil
}
