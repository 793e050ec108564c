package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gocausal/domain/core"
)

// Frame is the canonical data object for all statistical computation.
// Column-major, dense float64 storage; NaN encodes a missing value.
// This is the single input to simulation, fitting and imputation.
type Frame struct {
	names []string
	cols  [][]float64
	rows  int
}

// NewFrame creates an empty frame with a fixed row count.
// A row count of zero is legal; the first AddColumn fixes it instead.
func NewFrame(rows int) *Frame {
	return &Frame{rows: rows}
}

// AddColumn appends a named column. The first column may fix the row
// count of an empty frame; later columns must match it.
func (f *Frame) AddColumn(name string, values []float64) error {
	if strings.TrimSpace(name) == "" {
		return core.NewValidationError("column", "name cannot be empty")
	}
	if f.HasColumn(name) {
		return core.NewValidationError("column", fmt.Sprintf("duplicate column %q", name))
	}
	if len(f.cols) == 0 && f.rows == 0 {
		f.rows = len(values)
	}
	if len(values) != f.rows {
		return core.NewValidationError("column",
			fmt.Sprintf("column %q has %d rows, expected %d", name, len(values), f.rows))
	}
	col := make([]float64, len(values))
	copy(col, values)
	f.names = append(f.names, name)
	f.cols = append(f.cols, col)
	return nil
}

// MustAddColumn is AddColumn for construction sites where the caller
// controls both name and length.
func (f *Frame) MustAddColumn(name string, values []float64) *Frame {
	if err := f.AddColumn(name, values); err != nil {
		panic(err)
	}
	return f
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	idx := f.columnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, f.rows)
	copy(out, f.cols[idx])
	return out, true
}

// MustColumn returns the named column or panics. Reserved for callers
// that already validated the schema.
func (f *Frame) MustColumn(name string) []float64 {
	col, ok := f.Column(name)
	if !ok {
		panic(fmt.Sprintf("frame: no column %q", name))
	}
	return col
}

// SetColumn replaces the values of an existing column.
func (f *Frame) SetColumn(name string, values []float64) error {
	idx := f.columnIndex(name)
	if idx < 0 {
		return core.NewNotFoundError("column", name)
	}
	if len(values) != f.rows {
		return core.NewValidationError("column",
			fmt.Sprintf("column %q has %d rows, expected %d", name, len(values), f.rows))
	}
	copy(f.cols[idx], values)
	return nil
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	return f.columnIndex(name) >= 0
}

// Names returns the column names in insertion order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Rows returns the number of rows.
func (f *Frame) Rows() int { return f.rows }

// Cols returns the number of columns.
func (f *Frame) Cols() int { return len(f.cols) }

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.rows)
	for i, name := range f.names {
		out.MustAddColumn(name, f.cols[i])
	}
	return out
}

// Select returns a new frame with only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := NewFrame(f.rows)
	for _, name := range names {
		col, ok := f.Column(name)
		if !ok {
			return nil, core.NewNotFoundError("column", name)
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MissingMask returns a per-row mask of missing (NaN) entries in the column.
func (f *Frame) MissingMask(name string) ([]bool, error) {
	idx := f.columnIndex(name)
	if idx < 0 {
		return nil, core.NewNotFoundError("column", name)
	}
	mask := make([]bool, f.rows)
	for i, v := range f.cols[idx] {
		mask[i] = math.IsNaN(v)
	}
	return mask, nil
}

// CountMissing returns the number of missing entries in the column.
func (f *Frame) CountMissing(name string) (int, error) {
	mask, err := f.MissingMask(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n, nil
}

// CompleteRows returns the indices of rows with no missing value across
// the named columns, in ascending order.
func (f *Frame) CompleteRows(names ...string) ([]int, error) {
	idxs := make([]int, 0, len(names))
	for _, name := range names {
		idx := f.columnIndex(name)
		if idx < 0 {
			return nil, core.NewNotFoundError("column", name)
		}
		idxs = append(idxs, idx)
	}
	rows := make([]int, 0, f.rows)
	for r := 0; r < f.rows; r++ {
		complete := true
		for _, c := range idxs {
			if math.IsNaN(f.cols[c][r]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

// DropIncomplete returns a new frame keeping only rows complete across
// the named columns (all columns are carried over).
func (f *Frame) DropIncomplete(names ...string) (*Frame, error) {
	keep, err := f.CompleteRows(names...)
	if err != nil {
		return nil, err
	}
	out := NewFrame(len(keep))
	for i, name := range f.names {
		col := make([]float64, len(keep))
		for j, r := range keep {
			col[j] = f.cols[i][r]
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TakeRows returns a new frame with the given row indices, in order.
// Indices may repeat.
func (f *Frame) TakeRows(rows []int) (*Frame, error) {
	for _, r := range rows {
		if r < 0 || r >= f.rows {
			return nil, core.NewValidationError("rows", fmt.Sprintf("index %d out of range", r))
		}
	}
	out := NewFrame(len(rows))
	for i, name := range f.names {
		col := make([]float64, len(rows))
		for j, r := range rows {
			col[j] = f.cols[i][r]
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Fingerprint hashes the schema and data for replay audits.
// NaN entries hash as the literal "NaN" so missingness is part of the print.
func (f *Frame) Fingerprint() core.Hash {
	var data strings.Builder
	names := f.Names()
	sort.Strings(names)
	for _, name := range names {
		idx := f.columnIndex(name)
		data.WriteString(name)
		data.WriteByte(':')
		for _, v := range f.cols[idx] {
			if math.IsNaN(v) {
				data.WriteString("NaN,")
				continue
			}
			fmt.Fprintf(&data, "%g,", v)
		}
		data.WriteByte('\n')
	}
	return core.NewHash([]byte(data.String()))
}

// Validate ensures the frame holds at least one row and one column.
func (f *Frame) Validate() error {
	if f.rows == 0 || len(f.cols) == 0 {
		return core.ErrInsufficientData
	}
	return nil
}

func (f *Frame) columnIndex(name string) int {
	for i, n := range f.names {
		if n == name {
			return i
		}
	}
	return -1
}
