package lesson

import (
	"context"
	"fmt"
	"time"

	"gocausal/adapters/stats/describe"
	"gocausal/adapters/stats/fit"
	"gocausal/domain/effect"
	"gocausal/internal/simulate"
)

// DiffInDiff demonstrates difference-in-differences on a two-group,
// two-period panel. The treated group sits on a different level and both
// groups share a time trend, so neither the cross-section contrast nor the
// before-after change identifies the effect; the interaction term does.
type DiffInDiff struct {
	cfg simulate.PanelConfig
}

// NewDiffInDiff builds the lesson over the given panel generator config.
func NewDiffInDiff(cfg simulate.PanelConfig) *DiffInDiff {
	return &DiffInDiff{cfg: cfg}
}

// DefaultDiffInDiff builds the lesson with default simulation settings.
func DefaultDiffInDiff() *DiffInDiff {
	return NewDiffInDiff(simulate.DefaultPanelConfig())
}

func (l *DiffInDiff) Name() string  { return NameDiffInDiff }
func (l *DiffInDiff) Title() string { return "Difference-in-differences" }

func (l *DiffInDiff) Brief() string {
	return "Compare the change over time in the treated group against the change in the untreated group."
}

// Run simulates the panel, shows the 2x2 means, and contrasts the
// post-period cross-section with the interaction estimate.
func (l *DiffInDiff) Run(ctx context.Context, seed int64) (*effect.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	cfg := l.cfg
	cfg.Seed = seed
	c, err := simulate.Panel(cfg)
	if err != nil {
		return nil, err
	}

	rep := effect.NewReport(l.Name(), l.Title(), "", seed)
	rep.Say(fmt.Sprintf(
		"Simulated %d unit-period observations: two groups observed before and after an "+
			"intervention. The treated group starts %s below the controls and both groups "+
			"drift %s per period.",
		c.Size(), formatVal(-cfg.GroupGap), formatVal(cfg.Trend)))

	outcome := c.Outcome()
	treated := c.Frame.MustColumn("treated")
	post := c.Frame.MustColumn("post")

	cell := func(g, p float64) []float64 {
		var out []float64
		for i := range outcome {
			if treated[i] == g && post[i] == p {
				out = append(out, outcome[i])
			}
		}
		return out
	}
	cellMean := func(g, p float64) float64 {
		vals := cell(g, p)
		var sum float64
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	}

	mc0, mc1 := cellMean(0, 0), cellMean(0, 1)
	mt0, mt1 := cellMean(1, 0), cellMean(1, 1)

	gt := effect.Table{
		Title:   "Group means by period",
		Columns: []string{"group", "before", "after", "change"},
	}
	gt.AddRow("control", formatVal(mc0), formatVal(mc1), formatVal(mc1-mc0))
	gt.AddRow("treated", formatVal(mt0), formatVal(mt1), formatVal(mt1-mt0))
	gt.AddRow("difference", formatVal(mt0-mc0), formatVal(mt1-mc1),
		formatVal((mt1-mt0)-(mc1-mc0)))
	if err := rep.AddTable(gt); err != nil {
		return nil, err
	}

	// Naive reading: compare the groups in the post period only.
	naive, err := describe.TwoSample(cell(1, 1), cell(0, 1))
	if err != nil {
		return nil, err
	}
	if err := rep.AddEstimate(effect.Estimate{
		Method: effect.MethodNaive,
		Label:  "post-period group contrast",
		Value:  naive.Diff,
		SE:     naive.SE,
		P:      naive.P,
		N:      naive.NX + naive.NY,
		Detail: "absorbs the pre-existing group gap",
	}); err != nil {
		return nil, err
	}
	rep.Say(fmt.Sprintf(
		"Comparing the groups after the intervention gives %s: the pre-existing gap of %s "+
			"drowns out the true effect of %s.",
		formatVal(naive.Diff), formatVal(cfg.GroupGap), formatVal(cfg.TrueEffect)))

	// The interaction model: y ~ treated + post + treated:post.
	d := fit.NewDesign(c.Size()).AddIntercept()
	if err := d.AddColumn("treated", treated); err != nil {
		return nil, err
	}
	if err := d.AddColumn("post", post); err != nil {
		return nil, err
	}
	if err := d.AddInteraction("treated:post", treated, post); err != nil {
		return nil, err
	}
	model, err := fit.OLS(d, outcome)
	if err != nil {
		return nil, err
	}
	if err := rep.AddTable(coefficientTable("Interaction model (OLS)", model)); err != nil {
		return nil, err
	}

	did := model.MustTerm("treated:post")
	lower, upper, err := model.ConfInt("treated:post", 0.95)
	if err != nil {
		return nil, err
	}
	if err := rep.AddEstimate(effect.Estimate{
		Method: effect.MethodDiffInDiff,
		Label:  "difference-in-differences (interaction)",
		Value:  did.Estimate,
		SE:     did.SE,
		Lower:  lower,
		Upper:  upper,
		P:      did.P,
		N:      c.Size(),
		Detail: "treated:post coefficient, parallel-trends assumption",
	}); err != nil {
		return nil, err
	}
	rep.Say(fmt.Sprintf(
		"Differencing out both the group gap and the shared trend leaves %s "+
			"(95%% CI %s to %s), recovering the simulated effect of %s. The identifying "+
			"assumption is that the groups would have moved in parallel without treatment.",
		formatVal(did.Estimate), formatVal(lower), formatVal(upper),
		formatVal(cfg.TrueEffect)))

	rep.Duration = time.Since(start)
	return rep, nil
}
