// Package render turns a finished run into console text or a markdown
// document. Both renderers walk the result in slice order only, so the
// same result always renders to the same bytes.
package render

import (
	"fmt"
	"math"

	"gocausal/domain/effect"
)

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func formatP(p float64) string {
	if math.IsNaN(p) {
		return "n/a"
	}
	if p < 0.001 {
		return "<0.001"
	}
	return fmt.Sprintf("%.3f", p)
}

func formatInterval(e effect.Estimate) string {
	if !e.HasInterval() {
		return "n/a"
	}
	return fmt.Sprintf("[%s, %s]", formatValue(e.Lower), formatValue(e.Upper))
}
