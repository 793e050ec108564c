package lesson

import (
	"context"
	"fmt"
	"math"
	"time"

	"gocausal/adapters/stats/describe"
	"gocausal/adapters/stats/fit"
	"gocausal/domain/core"
	"gocausal/domain/effect"
	"gocausal/internal/simulate"
)

// Discontinuity demonstrates sharp regression discontinuity: treatment
// switches on exactly at a cutoff of the running variable, so the outcome
// jump at the cutoff is the effect for units near it. A full-sample group
// contrast instead absorbs the whole running-variable trend.
type Discontinuity struct {
	cfg       simulate.ThresholdConfig
	bandwidth float64
}

// NewDiscontinuity builds the lesson over the given generator config and
// estimation bandwidth around the cutoff.
func NewDiscontinuity(cfg simulate.ThresholdConfig, bandwidth float64) *Discontinuity {
	return &Discontinuity{cfg: cfg, bandwidth: bandwidth}
}

// DefaultDiscontinuity builds the lesson with default settings and a
// bandwidth of 10 running-variable units.
func DefaultDiscontinuity() *Discontinuity {
	return NewDiscontinuity(simulate.DefaultThresholdConfig(), 10)
}

func (l *Discontinuity) Name() string  { return NameDiscontinuity }
func (l *Discontinuity) Title() string { return "Regression discontinuity" }

func (l *Discontinuity) Brief() string {
	return "Estimate the outcome jump at an eligibility cutoff by fitting lines on both sides of it."
}

// Run simulates the cutoff sample and contrasts the full-sample group
// difference with the local linear jump estimate.
func (l *Discontinuity) Run(ctx context.Context, seed int64) (*effect.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.bandwidth <= 0 {
		return nil, core.NewValidationError("discontinuity.bandwidth", "must be positive")
	}
	start := time.Now()

	cfg := l.cfg
	cfg.Seed = seed
	c, err := simulate.Threshold(cfg)
	if err != nil {
		return nil, err
	}

	rep := effect.NewReport(l.Name(), l.Title(), "", seed)
	rep.Say(fmt.Sprintf(
		"Simulated %d units scored on a running variable; everyone at or above %s is "+
			"treated. The outcome rises smoothly with the score and jumps by %s exactly "+
			"at the cutoff.",
		c.Size(), formatVal(cfg.Cutoff), formatVal(cfg.Jump)))

	outcome := c.Outcome()
	running := c.Frame.MustColumn("running")
	treatment := c.Treatment()

	// Naive reading: treated vs untreated over the whole sample.
	yt, yc, err := c.SplitByTreatment(c.OutcomeCol)
	if err != nil {
		return nil, err
	}
	naive, err := describe.TwoSample(yt, yc)
	if err != nil {
		return nil, err
	}
	if err := rep.AddEstimate(effect.Estimate{
		Method: effect.MethodNaive,
		Label:  "full-sample group contrast",
		Value:  naive.Diff,
		SE:     naive.SE,
		P:      naive.P,
		N:      c.Size(),
		Detail: "mixes the jump with the running-variable trend",
	}); err != nil {
		return nil, err
	}
	rep.Say(fmt.Sprintf(
		"Comparing all treated against all untreated gives %s against a simulated jump "+
			"of %s: treated units also sit higher on the running variable, and the trend "+
			"comes along for the ride.", formatVal(naive.Diff), formatVal(cfg.Jump)))

	// Local window: units within the bandwidth of the cutoff.
	var widx []int
	var below, above int
	for i, r := range running {
		if math.Abs(r-cfg.Cutoff) <= l.bandwidth {
			widx = append(widx, i)
			if treatment[i] == 1 {
				above++
			} else {
				below++
			}
		}
	}
	wt := effect.Table{
		Title:   "Estimation window",
		Columns: []string{"side", "units"},
	}
	wt.AddRow(fmt.Sprintf("below cutoff (within %s)", formatVal(l.bandwidth)), formatInt(below))
	wt.AddRow(fmt.Sprintf("at or above cutoff (within %s)", formatVal(l.bandwidth)), formatInt(above))
	if err := rep.AddTable(wt); err != nil {
		return nil, err
	}
	if below < 10 || above < 10 {
		return nil, fmt.Errorf("%w: only %d below and %d above the cutoff within bandwidth %g",
			core.ErrInsufficientData, below, above, l.bandwidth)
	}

	// Local linear fit with separate slopes on each side:
	// y ~ treated + centered + treated:centered.
	wy := make([]float64, len(widx))
	wtr := make([]float64, len(widx))
	wcen := make([]float64, len(widx))
	for j, i := range widx {
		wy[j] = outcome[i]
		wtr[j] = float64(treatment[i])
		wcen[j] = running[i] - cfg.Cutoff
	}
	d := fit.NewDesign(len(widx)).AddIntercept()
	if err := d.AddColumn("treated", wtr); err != nil {
		return nil, err
	}
	if err := d.AddColumn("centered", wcen); err != nil {
		return nil, err
	}
	if err := d.AddInteraction("treated:centered", wtr, wcen); err != nil {
		return nil, err
	}
	model, err := fit.OLS(d, wy)
	if err != nil {
		return nil, err
	}
	if err := rep.AddTable(coefficientTable("Local linear model (OLS)", model)); err != nil {
		return nil, err
	}

	jump := model.MustTerm("treated")
	lower, upper, err := model.ConfInt("treated", 0.95)
	if err != nil {
		return nil, err
	}
	if err := rep.AddEstimate(effect.Estimate{
		Method: effect.MethodDiscontinuity,
		Label:  "jump at the cutoff (local linear)",
		Value:  jump.Estimate,
		SE:     jump.SE,
		Lower:  lower,
		Upper:  upper,
		P:      jump.P,
		N:      len(widx),
		Detail: fmt.Sprintf("bandwidth %s, separate slopes per side", formatVal(l.bandwidth)),
	}); err != nil {
		return nil, err
	}
	rep.Say(fmt.Sprintf(
		"Fitting lines on both sides within %s of the cutoff puts the jump at %s "+
			"(95%% CI %s to %s), close to the simulated %s. The estimate only speaks for "+
			"units near the cutoff.",
		formatVal(l.bandwidth), formatVal(jump.Estimate), formatVal(lower),
		formatVal(upper), formatVal(cfg.Jump)))

	rep.Duration = time.Since(start)
	return rep, nil
}
