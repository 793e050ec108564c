package cohort

import (
	"fmt"
	"math"

	"gocausal/domain/core"
	"gocausal/domain/dataset"
)

// Cohort binds a frame to study roles: one binary treatment column, one
// numeric outcome column and zero or more covariate columns. Cohorts are
// treated as immutable once built; analyses derive new values (scores,
// match results) rather than mutating the underlying frame.
type Cohort struct {
	Frame         *dataset.Frame
	TreatmentCol  string
	OutcomeCol    string
	CovariateCols []string
}

// New builds a cohort over the frame and validates the role bindings.
func New(frame *dataset.Frame, treatmentCol, outcomeCol string, covariateCols ...string) (*Cohort, error) {
	c := &Cohort{
		Frame:         frame,
		TreatmentCol:  treatmentCol,
		OutcomeCol:    outcomeCol,
		CovariateCols: covariateCols,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the role bindings against the frame. The treatment
// column must hold only 0 and 1; NaN anywhere in a bound column is
// invalid input, never silently dropped.
func (c *Cohort) Validate() error {
	if c.Frame == nil {
		return core.NewValidationError("frame", "cohort requires a frame")
	}
	if err := c.Frame.Validate(); err != nil {
		return err
	}

	tr, ok := c.Frame.Column(c.TreatmentCol)
	if !ok {
		return core.NewNotFoundError("treatment column", c.TreatmentCol)
	}
	for i, v := range tr {
		if math.IsNaN(v) {
			return core.NewValidationError("treatment",
				fmt.Sprintf("missing value at row %d", i))
		}
		if v != 0 && v != 1 {
			return core.NewValidationError("treatment",
				fmt.Sprintf("non-binary value %g at row %d", v, i))
		}
	}

	if c.OutcomeCol != "" {
		out, ok := c.Frame.Column(c.OutcomeCol)
		if !ok {
			return core.NewNotFoundError("outcome column", c.OutcomeCol)
		}
		for i, v := range out {
			if math.IsInf(v, 0) {
				return core.NewValidationError("outcome",
					fmt.Sprintf("non-finite value at row %d", i))
			}
		}
	}

	for _, name := range c.CovariateCols {
		if !c.Frame.HasColumn(name) {
			return core.NewNotFoundError("covariate column", name)
		}
	}
	return nil
}

// Treatment decodes the treatment column into 0/1 flags.
func (c *Cohort) Treatment() []int {
	raw := c.Frame.MustColumn(c.TreatmentCol)
	out := make([]int, len(raw))
	for i, v := range raw {
		if v == 1 {
			out[i] = 1
		}
	}
	return out
}

// Outcome returns the outcome column.
func (c *Cohort) Outcome() []float64 {
	return c.Frame.MustColumn(c.OutcomeCol)
}

// Covariate returns the named covariate column.
func (c *Cohort) Covariate(name string) ([]float64, error) {
	col, ok := c.Frame.Column(name)
	if !ok {
		return nil, core.NewNotFoundError("covariate column", name)
	}
	return col, nil
}

// Size returns the number of units.
func (c *Cohort) Size() int {
	return c.Frame.Rows()
}

// TreatedCount returns the number of treated units.
func (c *Cohort) TreatedCount() int {
	n := 0
	for _, t := range c.Treatment() {
		n += t
	}
	return n
}

// ControlCount returns the number of untreated units.
func (c *Cohort) ControlCount() int {
	return c.Size() - c.TreatedCount()
}

// SplitByTreatment partitions a column's values into (treated, control)
// slices in original row order.
func (c *Cohort) SplitByTreatment(name string) (treated, control []float64, err error) {
	col, ok := c.Frame.Column(name)
	if !ok {
		return nil, nil, core.NewNotFoundError("column", name)
	}
	tr := c.Treatment()
	for i, v := range col {
		if tr[i] == 1 {
			treated = append(treated, v)
		} else {
			control = append(control, v)
		}
	}
	return treated, control, nil
}
