// Package lesson holds the four teaching engines. Each lesson simulates
// its own toy cohort, fits the models the technique calls for, and narrates
// the contrast between the naive reading and the corrected one.
package lesson

import (
	"context"
	"fmt"

	"gocausal/domain/core"
	"gocausal/domain/effect"
)

// Lesson is the contract every teaching engine satisfies. Run must be a
// pure function of the seed: the same seed reproduces the same report.
type Lesson interface {
	Name() string
	Title() string
	Brief() string
	Run(ctx context.Context, seed int64) (*effect.Report, error)
}

// Canonical lesson names, in teaching order.
const (
	NameImputation    = "imputation"
	NameMatching      = "matching"
	NameDiffInDiff    = "diffindiff"
	NameDiscontinuity = "discontinuity"
)

// Names returns the canonical lesson order.
func Names() []string {
	return []string{NameImputation, NameMatching, NameDiffInDiff, NameDiscontinuity}
}

// Default acts as the factory for a defaults-configured lesson.
func Default(name string) (Lesson, error) {
	switch name {
	case NameImputation:
		return DefaultImputation(), nil
	case NameMatching:
		return DefaultMatching(), nil
	case NameDiffInDiff:
		return DefaultDiffInDiff(), nil
	case NameDiscontinuity:
		return DefaultDiscontinuity(), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrLessonNotFound, name)
	}
}

// Defaults returns all lessons in canonical order.
func Defaults() []Lesson {
	out := make([]Lesson, 0, 4)
	for _, name := range Names() {
		l, _ := Default(name)
		out = append(out, l)
	}
	return out
}

func formatVal(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func formatP(p float64) string {
	if p < 0.001 {
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

func formatInt(n int) string {
	return fmt.Sprintf("%d", n)
}
