package describe

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"gocausal/domain/core"
)

// OneSampleResult tests a sample mean against zero. Matching lessons feed
// it the per-pair outcome differences, making it the paired t test.
type OneSampleResult struct {
	N     int     `json:"n"`
	Mean  float64 `json:"mean"`
	SE    float64 `json:"se"`
	T     float64 `json:"t"`
	DF    float64 `json:"df"`
	P     float64 `json:"p"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// OneSample runs a one-sample t test of mean(values) against zero with a
// 95 percent confidence interval.
func OneSample(values []float64) (OneSampleResult, error) {
	if len(values) < 2 {
		return OneSampleResult{}, fmt.Errorf("%w: need at least 2 observations, have %d",
			core.ErrInsufficientData, len(values))
	}

	m, _ := stats.Mean(values)
	v, _ := stats.SampleVariance(values)

	n := float64(len(values))
	res := OneSampleResult{
		N:    len(values),
		Mean: m,
		DF:   n - 1,
	}

	if v <= 0 {
		res.T = math.NaN()
		res.P = 1
		res.Lower, res.Upper = m, m
		return res, nil
	}

	res.SE = math.Sqrt(v / n)
	res.T = m / res.SE

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.P = 2 * (1 - dist.CDF(math.Abs(res.T)))

	crit := dist.Quantile(0.975)
	res.Lower = m - crit*res.SE
	res.Upper = m + crit*res.SE
	return res, nil
}
