package effect

import (
	"math"
	"testing"

	"gocausal/domain/core"
)

func TestEstimateValidate(t *testing.T) {
	tests := []struct {
		name    string
		est     Estimate
		wantErr bool
	}{
		{
			name: "valid",
			est:  Estimate{Method: MethodMatching, Label: "ATT", Value: 1.2, N: 100},
		},
		{
			name:    "missing method",
			est:     Estimate{Label: "ATT", Value: 1.2},
			wantErr: true,
		},
		{
			name:    "missing label",
			est:     Estimate{Method: MethodNaive, Value: 1.2},
			wantErr: true,
		},
		{
			name:    "NaN value",
			est:     Estimate{Method: MethodNaive, Label: "x", Value: math.NaN()},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.est.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected validation error, got none")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestTableValidate(t *testing.T) {
	tbl := Table{Title: "Balance", Columns: []string{"covariate", "smd"}}
	tbl.AddRow("age", "0.42")
	if err := tbl.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	tbl.AddRow("only-one-cell")
	if err := tbl.Validate(); err == nil {
		t.Error("Expected error for ragged row")
	}

	empty := Table{Title: "", Columns: []string{"a"}}
	if err := empty.Validate(); err == nil {
		t.Error("Expected error for empty title")
	}
}

func TestReportLifecycle(t *testing.T) {
	r := NewReport("matching", "Propensity-Score Matching", core.RunID("run-1"), 42)
	r.Say("We simulate a confounded cohort.")

	if err := r.Validate(); err == nil {
		t.Error("Expected validation error for report without estimates")
	}

	if err := r.AddEstimate(Estimate{Method: MethodMatching, Label: "ATT", Value: 2.0, N: 50}); err != nil {
		t.Fatalf("AddEstimate failed: %v", err)
	}
	tbl := Table{Title: "Quality", Columns: []string{"metric", "value"}}
	tbl.AddRow("pairs", "25")
	if err := r.AddTable(tbl); err != nil {
		t.Fatalf("AddTable failed: %v", err)
	}

	if err := r.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	if est, ok := r.Estimate(MethodMatching); !ok || est.Value != 2.0 {
		t.Errorf("Estimate lookup = %+v, %v; want ATT estimate", est, ok)
	}
	if _, ok := r.Estimate(MethodDiffInDiff); ok {
		t.Error("Expected lookup miss for absent method")
	}

	if err := r.AddEstimate(Estimate{}); err == nil {
		t.Error("Expected error adding invalid estimate")
	}

	art := r.ToArtifact()
	if art.Kind != core.ArtifactLessonReport {
		t.Errorf("Artifact kind = %s, want %s", art.Kind, core.ArtifactLessonReport)
	}
}

func TestReportFailurePath(t *testing.T) {
	r := NewReport("matching", "Propensity-Score Matching", core.RunID("run-1"), 42)
	r.Err = "logit did not converge"

	if !r.Failed() {
		t.Error("Expected report to be failed")
	}
	// a failed report is exempt from the estimate/table requirement
	if err := r.Validate(); err != nil {
		t.Errorf("Unexpected validation error for failed report: %v", err)
	}
}

func TestManifestFingerprint(t *testing.T) {
	a := NewManifest(core.RunID("run-a"), 42, []string{"matching", "imputation"}, "v1")
	b := NewManifest(core.RunID("run-b"), 42, []string{"matching", "imputation"}, "v1")
	if !a.Fingerprint.Equals(b.Fingerprint) {
		t.Error("Expected identical inputs to fingerprint equally across run ids")
	}

	c := NewManifest(core.RunID("run-c"), 43, []string{"matching", "imputation"}, "v1")
	if a.Fingerprint.Equals(c.Fingerprint) {
		t.Error("Expected different seeds to fingerprint differently")
	}

	d := NewManifest(core.RunID("run-d"), 42, []string{"imputation", "matching"}, "v1")
	if a.Fingerprint.Equals(d.Fingerprint) {
		t.Error("Expected lesson order to be part of the fingerprint")
	}

	if err := a.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	bad := &Manifest{RunID: core.RunID("x")}
	if err := bad.Validate(); err == nil {
		t.Error("Expected validation error for incomplete manifest")
	}
}
