package simulate

import (
	"math"
	"testing"

	"gocausal/domain/core"
)

func TestObservationalDeterminism(t *testing.T) {
	cfg := DefaultObservationalConfig()

	a, err := Observational(cfg)
	if err != nil {
		t.Fatalf("Observational failed: %v", err)
	}
	b, err := Observational(cfg)
	if err != nil {
		t.Fatalf("Observational failed: %v", err)
	}
	if a.Frame.Fingerprint() != b.Frame.Fingerprint() {
		t.Error("same config should reproduce the same frame")
	}

	cfg.Seed = 99
	c, err := Observational(cfg)
	if err != nil {
		t.Fatalf("Observational failed: %v", err)
	}
	if a.Frame.Fingerprint() == c.Frame.Fingerprint() {
		t.Error("different seeds should produce different frames")
	}
}

func TestObservationalShape(t *testing.T) {
	cfg := DefaultObservationalConfig()
	c, err := Observational(cfg)
	if err != nil {
		t.Fatalf("Observational failed: %v", err)
	}

	if c.Size() != cfg.N {
		t.Errorf("expected %d units, got %d", cfg.N, c.Size())
	}
	for _, name := range []string{"treated", "outcome", "age", "severity"} {
		if !c.Frame.HasColumn(name) {
			t.Errorf("missing column %q", name)
		}
	}

	share := float64(c.TreatedCount()) / float64(c.Size())
	if share < 0.2 || share > 0.6 {
		t.Errorf("treated share %.3f far from configured %.2f", share, cfg.TreatShare)
	}
}

func TestPanelCellMeans(t *testing.T) {
	cfg := DefaultPanelConfig()
	c, err := Panel(cfg)
	if err != nil {
		t.Fatalf("Panel failed: %v", err)
	}
	if c.Size() != 4*cfg.UnitsPerGroup {
		t.Fatalf("expected %d rows, got %d", 4*cfg.UnitsPerGroup, c.Size())
	}

	outcome := c.Outcome()
	treated := c.Frame.MustColumn("treated")
	post := c.Frame.MustColumn("post")

	cellMean := func(g, p float64) float64 {
		var sum float64
		var n int
		for i := range outcome {
			if treated[i] == g && post[i] == p {
				sum += outcome[i]
				n++
			}
		}
		if n != cfg.UnitsPerGroup {
			t.Fatalf("cell (%g,%g) has %d rows, expected %d", g, p, n, cfg.UnitsPerGroup)
		}
		return sum / float64(n)
	}

	cases := []struct {
		group, period float64
		want          float64
	}{
		{0, 0, cfg.BaseLevel},
		{0, 1, cfg.BaseLevel + cfg.Trend},
		{1, 0, cfg.BaseLevel + cfg.GroupGap},
		{1, 1, cfg.BaseLevel + cfg.GroupGap + cfg.Trend + cfg.TrueEffect},
	}
	for _, tc := range cases {
		got := cellMean(tc.group, tc.period)
		if math.Abs(got-tc.want) > 0.5 {
			t.Errorf("cell (%g,%g): mean %.3f, expected near %.3f", tc.group, tc.period, got, tc.want)
		}
	}

	did := (cellMean(1, 1) - cellMean(1, 0)) - (cellMean(0, 1) - cellMean(0, 0))
	if math.Abs(did-cfg.TrueEffect) > 0.6 {
		t.Errorf("raw diff-in-diff %.3f far from true effect %.1f", did, cfg.TrueEffect)
	}
}

func TestThresholdSharpAssignment(t *testing.T) {
	cfg := DefaultThresholdConfig()
	c, err := Threshold(cfg)
	if err != nil {
		t.Fatalf("Threshold failed: %v", err)
	}
	if c.Size() != cfg.N {
		t.Fatalf("expected %d units, got %d", cfg.N, c.Size())
	}

	running := c.Frame.MustColumn("running")
	for i, tr := range c.Treatment() {
		above := running[i] >= cfg.Cutoff
		if above != (tr == 1) {
			t.Fatalf("row %d: running %.2f, cutoff %.0f, but treated=%d",
				i, running[i], cfg.Cutoff, tr)
		}
	}

	if n := c.TreatedCount(); n < cfg.N/4 || n > 3*cfg.N/4 {
		t.Errorf("treated count %d implausible for cutoff at %.0f", n, cfg.Cutoff)
	}
}

func TestMissingHoles(t *testing.T) {
	cfg := DefaultMissingConfig()
	f, err := Missing(cfg)
	if err != nil {
		t.Fatalf("Missing failed: %v", err)
	}
	if f.Rows() != cfg.N {
		t.Fatalf("expected %d rows, got %d", cfg.N, f.Rows())
	}

	holes, err := f.CountMissing("x2")
	if err != nil {
		t.Fatalf("CountMissing failed: %v", err)
	}
	frac := float64(holes) / float64(cfg.N)
	if frac < 0.2 || frac > 0.6 {
		t.Errorf("missing fraction %.3f far from configured %.2f", frac, cfg.MissingRate)
	}
	for _, name := range []string{"x1", "x2_full", "y"} {
		n, err := f.CountMissing(name)
		if err != nil {
			t.Fatalf("CountMissing(%q) failed: %v", name, err)
		}
		if n != 0 {
			t.Errorf("column %q should stay complete, found %d holes", name, n)
		}
	}

	// Missingness is driven upward by the outcome, so rows with holes
	// should average a higher y than fully observed rows.
	x2 := f.MustColumn("x2")
	y := f.MustColumn("y")
	var missSum, obsSum float64
	var missN, obsN int
	for i := range x2 {
		if math.IsNaN(x2[i]) {
			missSum += y[i]
			missN++
		} else {
			obsSum += y[i]
			obsN++
		}
	}
	if missN == 0 || obsN == 0 {
		t.Fatal("expected both missing and observed rows")
	}
	if missSum/float64(missN) <= obsSum/float64(obsN) {
		t.Error("rows with missing x2 should have higher mean outcome")
	}
}

func TestGeneratorConfigValidation(t *testing.T) {
	obs := DefaultObservationalConfig()
	obs.N = 5
	if _, err := Observational(obs); !core.IsInvalidInput(err) {
		t.Errorf("tiny observational sample: expected invalid input, got %v", err)
	}

	pan := DefaultPanelConfig()
	pan.NoiseSD = 0
	if _, err := Panel(pan); !core.IsInvalidInput(err) {
		t.Errorf("zero panel noise: expected invalid input, got %v", err)
	}

	thr := DefaultThresholdConfig()
	thr.Cutoff = 120
	if _, err := Threshold(thr); !core.IsInvalidInput(err) {
		t.Errorf("cutoff outside support: expected invalid input, got %v", err)
	}

	mis := DefaultMissingConfig()
	mis.MissingRate = 0.95
	if _, err := Missing(mis); !core.IsInvalidInput(err) {
		t.Errorf("extreme missing rate: expected invalid input, got %v", err)
	}
}
