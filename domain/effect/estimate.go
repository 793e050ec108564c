package effect

import (
	"fmt"
	"math"

	"gocausal/domain/core"
)

// Method identifies the estimation technique behind an estimate.
type Method string

const (
	MethodNaive         Method = "naive"
	MethodMatching      Method = "matching"
	MethodImputation    Method = "imputation"
	MethodCompleteCase  Method = "complete_case"
	MethodDiffInDiff    Method = "diff_in_diff"
	MethodDiscontinuity Method = "discontinuity"
)

// Estimate is the common currency of lesson outputs: a point estimate
// with its inference columns and sample size.
type Estimate struct {
	Method Method  `json:"method"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	SE     float64 `json:"se"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	P      float64 `json:"p"`
	N      int     `json:"n"`
	Detail string  `json:"detail,omitempty"`
}

// Validate checks the estimate is usable for reporting.
func (e Estimate) Validate() error {
	if e.Method == "" {
		return core.NewValidationError("estimate", "method cannot be empty")
	}
	if e.Label == "" {
		return core.NewValidationError("estimate", "label cannot be empty")
	}
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return core.NewValidationError("estimate", "value must be finite")
	}
	return nil
}

// HasInterval reports whether the estimate carries a usable interval.
// Estimates without one leave Lower and Upper at zero; a real interval
// always has positive width, so zero-width bounds do not count.
func (e Estimate) HasInterval() bool {
	return !math.IsNaN(e.Lower) && !math.IsNaN(e.Upper) && e.Lower < e.Upper
}

// Table is a rendered lesson table: column headers plus string rows,
// formatted by the producer and shown verbatim by every renderer.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// AddRow appends a formatted row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Validate checks the table shape.
func (t *Table) Validate() error {
	if t.Title == "" {
		return core.NewValidationError("table", "title cannot be empty")
	}
	if len(t.Columns) == 0 {
		return core.NewValidationError("table", "columns cannot be empty")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return core.NewValidationError("table",
				fmt.Sprintf("row %d width %d does not match %d columns", i, len(row), len(t.Columns)))
		}
	}
	return nil
}
