package lesson

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"gocausal/domain/core"
	"gocausal/domain/effect"
	"gocausal/internal/simulate"
)

func TestRegistry(t *testing.T) {
	want := []string{NameImputation, NameMatching, NameDiffInDiff, NameDiscontinuity}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	for _, name := range Names() {
		l, err := Default(name)
		if err != nil {
			t.Fatalf("Default(%q) failed: %v", name, err)
		}
		if l.Name() != name {
			t.Errorf("Default(%q).Name() = %q", name, l.Name())
		}
		if l.Title() == "" || l.Brief() == "" {
			t.Errorf("lesson %q missing title or brief", name)
		}
	}

	_, err := Default("time_travel")
	if !core.IsNotFoundError(err) {
		t.Errorf("unknown lesson: expected not found, got %v", err)
	}
	if !errors.Is(err, core.ErrLessonNotFound) {
		t.Errorf("unknown lesson: expected ErrLessonNotFound, got %v", err)
	}

	all := Defaults()
	if len(all) != len(want) {
		t.Fatalf("Defaults() returned %d lessons, want %d", len(all), len(want))
	}
	for i, l := range all {
		if l.Name() != want[i] {
			t.Errorf("Defaults()[%d] = %q, want %q", i, l.Name(), want[i])
		}
	}
}

func TestMatchingLesson(t *testing.T) {
	rep, err := DefaultMatching().Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := rep.Validate(); err != nil {
		t.Fatalf("report invalid: %v", err)
	}
	if rep.LessonName != NameMatching {
		t.Errorf("LessonName = %q", rep.LessonName)
	}

	naive, ok := rep.Estimate(effect.MethodNaive)
	if !ok {
		t.Fatal("missing naive estimate")
	}
	att, ok := rep.Estimate(effect.MethodMatching)
	if !ok {
		t.Fatal("missing matching estimate")
	}

	// Confounding inflates the raw contrast well past the matched ATT.
	if naive.Value <= att.Value+0.5 {
		t.Errorf("naive %.3f should clearly exceed matched ATT %.3f", naive.Value, att.Value)
	}
	if att.Value < 1.0 || att.Value > 3.0 {
		t.Errorf("ATT %.3f far from the simulated effect of 2.0", att.Value)
	}
	if !att.HasInterval() || att.Lower >= att.Upper {
		t.Errorf("ATT interval [%.3f, %.3f] unusable", att.Lower, att.Upper)
	}
	if att.N < 50 {
		t.Errorf("ATT over %d pairs, expected a substantial matched sample", att.N)
	}

	if len(rep.Tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(rep.Tables))
	}
	if len(rep.Narrative) < 4 {
		t.Errorf("expected a narrated lesson, got %d paragraphs", len(rep.Narrative))
	}
}

func TestImputationLesson(t *testing.T) {
	rep, err := DefaultImputation().Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := rep.Validate(); err != nil {
		t.Fatalf("report invalid: %v", err)
	}

	cc, ok := rep.Estimate(effect.MethodCompleteCase)
	if !ok {
		t.Fatal("missing complete-case estimate")
	}
	mi, ok := rep.Estimate(effect.MethodImputation)
	if !ok {
		t.Fatal("missing imputation estimate")
	}

	// True slope on x2 is 1.5; both strategies should land in its vicinity
	// even though the complete-case fit is the biased one.
	if cc.Value < 0.5 || cc.Value > 2.5 {
		t.Errorf("complete-case slope %.3f implausible", cc.Value)
	}
	if mi.Value < 0.5 || mi.Value > 2.5 {
		t.Errorf("pooled slope %.3f implausible", mi.Value)
	}
	if !mi.HasInterval() || mi.SE <= 0 {
		t.Errorf("pooled estimate missing its interval or spread")
	}
	if mi.N != 300 {
		t.Errorf("pooled N = %d, want all 300 rows", mi.N)
	}
	if cc.N >= 300 {
		t.Errorf("complete-case N = %d, should be the reduced sample", cc.N)
	}

	if len(rep.Tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(rep.Tables))
	}
	perImp := rep.Tables[1]
	if len(perImp.Rows) != 5 {
		t.Errorf("per-imputation table has %d rows, want 5", len(perImp.Rows))
	}
}

func TestImputationLessonRejectsSingleDraw(t *testing.T) {
	l := NewImputation(simulate.DefaultMissingConfig(), 1)
	if _, err := l.Run(context.Background(), 1); !core.IsInvalidInput(err) {
		t.Errorf("expected invalid input for m=1, got %v", err)
	}
}

func TestDiffInDiffLesson(t *testing.T) {
	rep, err := DefaultDiffInDiff().Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := rep.Validate(); err != nil {
		t.Fatalf("report invalid: %v", err)
	}

	naive, ok := rep.Estimate(effect.MethodNaive)
	if !ok {
		t.Fatal("missing naive estimate")
	}
	did, ok := rep.Estimate(effect.MethodDiffInDiff)
	if !ok {
		t.Fatal("missing diff-in-diff estimate")
	}

	// The post-period contrast absorbs the -3 group gap; the interaction
	// recovers the simulated 2.5.
	if naive.Value > 0.5 {
		t.Errorf("post-period contrast %.3f should sit near -0.5", naive.Value)
	}
	if did.Value < 1.8 || did.Value > 3.2 {
		t.Errorf("diff-in-diff %.3f far from the simulated effect of 2.5", did.Value)
	}
	if did.P > 0.01 {
		t.Errorf("diff-in-diff p = %.4f, expected decisive", did.P)
	}
	if naive.Value >= did.Value {
		t.Errorf("naive %.3f should undershoot the interaction %.3f", naive.Value, did.Value)
	}

	if len(rep.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(rep.Tables))
	}
	means := rep.Tables[0]
	if len(means.Rows) != 3 {
		t.Errorf("means table has %d rows, want control/treated/difference", len(means.Rows))
	}
	coefs := rep.Tables[1]
	if len(coefs.Rows) != 4 {
		t.Errorf("coefficient table has %d rows, want 4 terms", len(coefs.Rows))
	}
}

func TestDiscontinuityLesson(t *testing.T) {
	rep, err := DefaultDiscontinuity().Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := rep.Validate(); err != nil {
		t.Fatalf("report invalid: %v", err)
	}

	naive, ok := rep.Estimate(effect.MethodNaive)
	if !ok {
		t.Fatal("missing naive estimate")
	}
	jump, ok := rep.Estimate(effect.MethodDiscontinuity)
	if !ok {
		t.Fatal("missing discontinuity estimate")
	}

	// Full-sample contrast absorbs the running-variable trend on top of
	// the simulated jump of 3.
	if naive.Value < 5.5 || naive.Value > 8.5 {
		t.Errorf("full-sample contrast %.3f implausible", naive.Value)
	}
	if jump.Value < 1.5 || jump.Value > 4.5 {
		t.Errorf("local jump %.3f far from the simulated 3.0", jump.Value)
	}
	if naive.Value <= jump.Value+1 {
		t.Errorf("naive %.3f should clearly exceed local jump %.3f", naive.Value, jump.Value)
	}
	if jump.N >= 500 || jump.N < 40 {
		t.Errorf("window holds %d units, expected a local subsample", jump.N)
	}

	if len(rep.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(rep.Tables))
	}
}

func TestDiscontinuityLessonBandwidthErrors(t *testing.T) {
	cfg := simulate.DefaultThresholdConfig()

	if _, err := NewDiscontinuity(cfg, 0).Run(context.Background(), 1); !core.IsInvalidInput(err) {
		t.Errorf("zero bandwidth: expected invalid input, got %v", err)
	}
	if _, err := NewDiscontinuity(cfg, 0.05).Run(context.Background(), 1); !core.IsInsufficientData(err) {
		t.Errorf("hairline bandwidth: expected insufficient data, got %v", err)
	}
}

func TestLessonDeterminism(t *testing.T) {
	for _, name := range Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			a, err := mustLesson(t, name).Run(context.Background(), 5)
			if err != nil {
				t.Fatalf("first run failed: %v", err)
			}
			b, err := mustLesson(t, name).Run(context.Background(), 5)
			if err != nil {
				t.Fatalf("second run failed: %v", err)
			}

			if !reflect.DeepEqual(a.Estimates, b.Estimates) {
				t.Error("estimates differ across identical runs")
			}
			if !reflect.DeepEqual(a.Tables, b.Tables) {
				t.Error("tables differ across identical runs")
			}
			if !reflect.DeepEqual(a.Narrative, b.Narrative) {
				t.Error("narrative differs across identical runs")
			}

			c, err := mustLesson(t, name).Run(context.Background(), 6)
			if err != nil {
				t.Fatalf("third run failed: %v", err)
			}
			if reflect.DeepEqual(a.Estimates, c.Estimates) {
				t.Error("different seeds should move the estimates")
			}
		})
	}
}

func TestLessonHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, name := range Names() {
		l := mustLesson(t, name)
		if _, err := l.Run(ctx, 1); !errors.Is(err, context.Canceled) {
			t.Errorf("lesson %q ignored cancelled context: %v", name, err)
		}
	}
}

func mustLesson(t *testing.T, name string) Lesson {
	t.Helper()
	l, err := Default(name)
	if err != nil {
		t.Fatalf("Default(%q) failed: %v", name, err)
	}
	return l
}
