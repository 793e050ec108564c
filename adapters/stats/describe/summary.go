package describe

import (
	"math"

	"github.com/montanaflynn/stats"

	"gocausal/domain/core"
)

// Stats holds the summary profile of a numeric column.
type Stats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// Summary profiles a column with no missing values.
func Summary(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, core.ErrInsufficientData
	}
	for i, v := range values {
		if math.IsNaN(v) {
			return Stats{}, core.NewInvalidInputError("missing value at index %d", i)
		}
	}
	return profile(values), nil
}

// SummaryComplete profiles the non-missing entries of a column and
// reports how many were missing.
func SummaryComplete(values []float64) (Stats, int, error) {
	complete := make([]float64, 0, len(values))
	missing := 0
	for _, v := range values {
		if math.IsNaN(v) {
			missing++
			continue
		}
		complete = append(complete, v)
	}
	if len(complete) == 0 {
		return Stats{}, missing, core.ErrInsufficientData
	}
	return profile(complete), missing, nil
}

func profile(data []float64) Stats {
	mean, _ := stats.Mean(data)
	sd, _ := stats.StandardDeviation(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	median, _ := stats.Median(data)
	p25, _ := stats.Percentile(data, 25)
	p75, _ := stats.Percentile(data, 75)

	return Stats{
		N:      len(data),
		Mean:   mean,
		SD:     sd,
		Min:    min,
		Max:    max,
		Median: median,
		P25:    p25,
		P75:    p75,
	}
}
