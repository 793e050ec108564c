// Package testkit provides deterministic fixtures for tests: seeded
// random streams, canned cohorts and a small frame with known holes.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gocausal/domain/cohort"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// Kit hands out reproducible randomness. Each named stream is derived
// from the kit seed, so adding a stream never disturbs the others.
type Kit struct {
	Seed int64
}

// NewKit creates a kit with the given base seed.
func NewKit(seed int64) *Kit { return &Kit{Seed: seed} }

// RNG returns a fresh deterministic stream for the given name.
func (k *Kit) RNG(name string) *rand.Rand {
	return rand.New(rand.NewSource(core.DeriveSeed(k.Seed, name)))
}

// TinyCohort returns the four-unit cohort used throughout the matcher
// documentation: treated units at scores 0.5 and 0.6, untreated at 0.1
// and 0.9. Greedy matching pairs unit 0 with 1 and unit 3 with 2.
func TinyCohort() *cohort.Cohort {
	f := dataset.NewFrame(4)
	f.MustAddColumn("treated", []float64{1, 0, 0, 1})
	f.MustAddColumn("outcome", []float64{7.4, 2.1, 9.9, 6.2})
	f.MustAddColumn("score", []float64{0.5, 0.1, 0.9, 0.6})
	c, err := cohort.New(f, "treated", "outcome", "score")
	if err != nil {
		panic(fmt.Sprintf("testkit: tiny cohort: %v", err))
	}
	return c
}

// ConfoundedCohort simulates n units whose treatment probability rises
// with the covariate x1, which also raises the outcome. The naive
// treated-control contrast therefore overstates the true effect of 2.
func (k *Kit) ConfoundedCohort(n int) (*cohort.Cohort, error) {
	if n < 20 {
		return nil, fmt.Errorf("testkit: confounded cohort needs at least 20 units, got %d", n)
	}
	rng := k.RNG("confounded-cohort")
	treated := make([]float64, n)
	outcome := make([]float64, n)
	x1 := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.NormFloat64()
		x1[i] = x
		p := 1 / (1 + math.Exp(-0.8*x))
		t := 0.0
		if rng.Float64() < p {
			t = 1
		}
		treated[i] = t
		outcome[i] = 1 + 2*t + 1.5*x + 0.5*rng.NormFloat64()
	}
	ensureBothArms(treated)

	f := dataset.NewFrame(n)
	f.MustAddColumn("treated", treated)
	f.MustAddColumn("outcome", outcome)
	f.MustAddColumn("x1", x1)
	return cohort.New(f, "treated", "outcome", "x1")
}

// a cohort needs both arms, however unlikely a one-armed draw is
func ensureBothArms(treated []float64) {
	ones, zeros := 0, 0
	for _, v := range treated {
		if v == 1 {
			ones++
		} else {
			zeros++
		}
	}
	if ones == 0 {
		treated[0] = 1
	}
	if zeros == 0 {
		treated[len(treated)-1] = 0
	}
}

// GoldenFrameHoles lists the missing rows in GoldenFrame.
var GoldenFrameHoles = []int{5, 17, 29}

// GoldenFrame returns a 40-row frame where y = 3 + 2x, with holes at
// GoldenFrameHoles. With noisy false the observed rows sit exactly on
// the line, so regression-based fills are predictable to within the
// residual draw; with noisy true the rows alternate one unit above and
// below it.
func GoldenFrame(noisy bool) *dataset.Frame {
	n := 40
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i) / 4
		y[i] = 3 + 2*x[i]
		if noisy {
			if i%2 == 0 {
				y[i]++
			} else {
				y[i]--
			}
		}
	}
	for _, r := range GoldenFrameHoles {
		y[r] = math.NaN()
	}
	f := dataset.NewFrame(n)
	f.MustAddColumn("x", x)
	f.MustAddColumn("y", y)
	return f
}

// AlmostEqual reports whether a and b agree within tol. NaN only
// matches NaN.
func AlmostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}
