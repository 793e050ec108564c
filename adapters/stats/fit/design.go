package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"gocausal/domain/core"
)

// InterceptTerm is the reserved name of the constant column.
const InterceptTerm = "intercept"

// Design accumulates named regressor columns into a dense model matrix.
// Columns are validated on entry so the solvers can assume finite input.
type Design struct {
	n     int
	terms []string
	cols  [][]float64
}

// NewDesign creates a design for n observations.
func NewDesign(n int) *Design {
	return &Design{n: n}
}

// AddIntercept appends the constant column.
func (d *Design) AddIntercept() *Design {
	ones := make([]float64, d.n)
	for i := range ones {
		ones[i] = 1
	}
	d.terms = append(d.terms, InterceptTerm)
	d.cols = append(d.cols, ones)
	return d
}

// AddColumn appends a named regressor.
func (d *Design) AddColumn(name string, x []float64) error {
	if name == "" {
		return core.NewValidationError("design", "term name cannot be empty")
	}
	for _, t := range d.terms {
		if t == name {
			return core.NewValidationError("design", fmt.Sprintf("duplicate term %q", name))
		}
	}
	if len(x) != d.n {
		return core.NewInvalidInputError("term %q has %d rows, expected %d", name, len(x), d.n)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewInvalidInputError("term %q has non-finite value at row %d", name, i)
		}
	}
	col := make([]float64, len(x))
	copy(col, x)
	d.terms = append(d.terms, name)
	d.cols = append(d.cols, col)
	return nil
}

// AddInteraction appends the elementwise product of two regressors.
func (d *Design) AddInteraction(name string, a, b []float64) error {
	if len(a) != d.n || len(b) != d.n {
		return core.NewInvalidInputError("interaction %q operands have %d and %d rows, expected %d",
			name, len(a), len(b), d.n)
	}
	prod := make([]float64, d.n)
	for i := range prod {
		prod[i] = a[i] * b[i]
	}
	return d.AddColumn(name, prod)
}

// N returns the number of observations.
func (d *Design) N() int { return d.n }

// P returns the number of terms.
func (d *Design) P() int { return len(d.terms) }

// Terms returns the term names in column order.
func (d *Design) Terms() []string {
	out := make([]string, len(d.terms))
	copy(out, d.terms)
	return out
}

// Matrix materializes the n x p model matrix.
func (d *Design) Matrix() *mat.Dense {
	p := len(d.cols)
	m := mat.NewDense(d.n, p, nil)
	for j, col := range d.cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

func (d *Design) validateResponse(y []float64) error {
	if len(y) != d.n {
		return core.NewInvalidInputError("response has %d rows, design has %d", len(y), d.n)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewInvalidInputError("response has non-finite value at row %d", i)
		}
	}
	if d.P() == 0 {
		return core.NewValidationError("design", "no terms")
	}
	if d.n <= d.P() {
		return fmt.Errorf("%w: %d observations for %d terms", core.ErrInsufficientData, d.n, d.P())
	}
	return nil
}
