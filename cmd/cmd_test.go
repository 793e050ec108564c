package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, name := range []string{"imputation", "matching", "diffindiff", "discontinuity"} {
		if !strings.Contains(out, name) {
			t.Errorf("list output missing %q", name)
		}
	}
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "units.csv")
	content := "unit,treatment,score\na,1,0.5\nb,0,0.1\nc,0,0.9\nd,1,0.6\n"
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	output := filepath.Join(dir, "pairs.csv")

	out, err := execute(t, "match", "--input", input, "--output", output)
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !strings.Contains(out, "matched 2 pairs") {
		t.Errorf("summary missing pair count: %q", out)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"unit,treatment,score,match_index,usage,pair_id",
		"a,1,0.5,1,0,1",
		"b,0,0.1,0,1,1",
		"c,0,0.9,3,1,2",
		"d,1,0.6,2,0,2",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunCommandSingleLesson(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "run", "--lessons", "diffindiff", "--seed", "5", "--out", dir)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{"Causal inference lessons", "Difference-in-differences", "diff_in_diff"} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q", want)
		}
	}

	report, err := os.ReadFile(filepath.Join(dir, "report.md"))
	if err != nil {
		t.Fatalf("reading report.md: %v", err)
	}
	if !strings.HasPrefix(string(report), "# Causal Inference Lessons") {
		t.Errorf("report.md has unexpected head")
	}
}
