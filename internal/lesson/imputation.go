package lesson

import (
	"context"
	"fmt"
	"time"

	"gocausal/adapters/stats/describe"
	"gocausal/adapters/stats/fit"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/domain/effect"
	"gocausal/internal/impute"
	"gocausal/internal/simulate"
)

// Imputation demonstrates multiple imputation on a dataset whose x2 column
// goes missing more often when the outcome is high. Dropping incomplete
// rows selects on the outcome and biases the regression; imputing x2 from
// the observed columns and pooling with Rubin's rules repairs it.
type Imputation struct {
	cfg simulate.MissingConfig
	m   int
}

// NewImputation builds the lesson over the given generator config and
// imputation count.
func NewImputation(cfg simulate.MissingConfig, m int) *Imputation {
	return &Imputation{cfg: cfg, m: m}
}

// DefaultImputation builds the lesson with default settings and 5 draws.
func DefaultImputation() *Imputation {
	return NewImputation(simulate.DefaultMissingConfig(), 5)
}

func (l *Imputation) Name() string  { return NameImputation }
func (l *Imputation) Title() string { return "Multiple imputation" }

func (l *Imputation) Brief() string {
	return "Fill missing predictor values several times, analyze each completed copy, pool with Rubin's rules."
}

// Run simulates the holed dataset and contrasts the complete-case fit
// with the pooled multiply-imputed fit.
func (l *Imputation) Run(ctx context.Context, seed int64) (*effect.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.m < 2 {
		return nil, core.NewInvalidInputError("imputation count %d: need at least 2", l.m)
	}
	start := time.Now()

	cfg := l.cfg
	cfg.Seed = seed
	f, err := simulate.Missing(cfg)
	if err != nil {
		return nil, err
	}

	rep := effect.NewReport(l.Name(), l.Title(), "", seed)

	holes, err := f.CountMissing("x2")
	if err != nil {
		return nil, err
	}
	rep.Say(fmt.Sprintf(
		"Simulated %d rows of (x1, x2, y); x2 is missing in %d rows (%.0f%%), and the "+
			"holes concentrate where y is high.", f.Rows(), holes,
		100*float64(holes)/float64(f.Rows())))

	mt := effect.Table{
		Title:   "Missingness profile",
		Columns: []string{"column", "missing", "share", "observed mean", "observed sd"},
	}
	for _, name := range []string{"x1", "x2", "y"} {
		st, n, err := describe.SummaryComplete(f.MustColumn(name))
		if err != nil {
			return nil, err
		}
		mt.AddRow(name, formatInt(n), fmt.Sprintf("%.1f%%", 100*float64(n)/float64(f.Rows())),
			formatVal(st.Mean), formatVal(st.SD))
	}
	if err := rep.AddTable(mt); err != nil {
		return nil, err
	}

	// Oracle fit on the pristine x2 column, kept aside by the simulator.
	oracle, err := slopeModel(f, "x2_full")
	if err != nil {
		return nil, err
	}
	oracleSlope := oracle.MustTerm("x2_full")

	// Complete-case: drop every row with a hole, fit as usual.
	cc, err := f.DropIncomplete("x1", "x2", "y")
	if err != nil {
		return nil, err
	}
	ccModel, err := slopeModel(cc, "x2")
	if err != nil {
		return nil, err
	}
	ccSlope := ccModel.MustTerm("x2")
	ccLower, ccUpper, err := ccModel.ConfInt("x2", 0.95)
	if err != nil {
		return nil, err
	}
	if err := rep.AddEstimate(effect.Estimate{
		Method: effect.MethodCompleteCase,
		Label:  "slope on x2, complete cases only",
		Value:  ccSlope.Estimate,
		SE:     ccSlope.SE,
		Lower:  ccLower,
		Upper:  ccUpper,
		P:      ccSlope.P,
		N:      cc.Rows(),
		Detail: "rows with missing x2 dropped before fitting",
	}); err != nil {
		return nil, err
	}
	rep.Say(fmt.Sprintf(
		"Dropping incomplete rows keeps %d of %d observations, but the kept rows are the "+
			"low-y ones: the complete-case slope on x2 is %s against a full-data benchmark of %s.",
		cc.Rows(), f.Rows(), formatVal(ccSlope.Estimate), formatVal(oracleSlope.Estimate)))

	// Multiple imputation: draw x2 from (x1, y) m times, fit each copy,
	// pool with Rubin's rules.
	eng := impute.NewEngine(l.m, core.DeriveSeed(seed, "impute-draws"))
	completed, err := eng.Complete(f, "x2", "x1", "y")
	if err != nil {
		return nil, err
	}

	estimates := make([]float64, 0, l.m)
	ses := make([]float64, 0, l.m)
	pt := effect.Table{
		Title:   "Per-imputation estimates",
		Columns: []string{"imputation", "slope on x2", "se"},
	}
	for k, g := range completed {
		mod, err := slopeModel(g, "x2")
		if err != nil {
			return nil, err
		}
		s := mod.MustTerm("x2")
		estimates = append(estimates, s.Estimate)
		ses = append(ses, s.SE)
		pt.AddRow(formatInt(k+1), formatVal(s.Estimate), formatVal(s.SE))
	}
	if err := rep.AddTable(pt); err != nil {
		return nil, err
	}

	pooled, err := impute.Pool(estimates, ses, 0.95)
	if err != nil {
		return nil, err
	}
	if err := rep.AddEstimate(effect.Estimate{
		Method: effect.MethodImputation,
		Label:  fmt.Sprintf("slope on x2, pooled over %d imputations", pooled.M),
		Value:  pooled.Estimate,
		SE:     pooled.SE,
		Lower:  pooled.Lower,
		Upper:  pooled.Upper,
		P:      pooled.P,
		N:      f.Rows(),
		Detail: "Rubin's rules: between-imputation spread widens the interval",
	}); err != nil {
		return nil, err
	}
	rep.Say(fmt.Sprintf(
		"Imputing x2 from x1 and y %d times and pooling gives a slope of %s "+
			"(95%% CI %s to %s), using all %d rows.",
		pooled.M, formatVal(pooled.Estimate), formatVal(pooled.Lower),
		formatVal(pooled.Upper), f.Rows()))

	st := effect.Table{
		Title:   "Slope on x2 by strategy",
		Columns: []string{"strategy", "estimate", "se", "n"},
	}
	st.AddRow("full data benchmark", formatVal(oracleSlope.Estimate), formatVal(oracleSlope.SE), formatInt(f.Rows()))
	st.AddRow("complete cases", formatVal(ccSlope.Estimate), formatVal(ccSlope.SE), formatInt(cc.Rows()))
	st.AddRow("multiple imputation", formatVal(pooled.Estimate), formatVal(pooled.SE), formatInt(f.Rows()))
	if err := rep.AddTable(st); err != nil {
		return nil, err
	}
	rep.Say(
		"The pooled interval is wider than any single completed fit: the spread between " +
			"imputations is the price of not knowing the missing values.")

	rep.Duration = time.Since(start)
	return rep, nil
}

// slopeModel fits y ~ x1 + <x2col> over the frame.
func slopeModel(f *dataset.Frame, x2col string) (*fit.Model, error) {
	d := fit.NewDesign(f.Rows()).AddIntercept()
	if err := d.AddColumn("x1", f.MustColumn("x1")); err != nil {
		return nil, err
	}
	if err := d.AddColumn(x2col, f.MustColumn(x2col)); err != nil {
		return nil, err
	}
	return fit.OLS(d, f.MustColumn("y"))
}
