package describe

import (
	"math"

	"github.com/montanaflynn/stats"

	"gocausal/domain/cohort"
	"gocausal/domain/core"
	"gocausal/domain/match"
)

// ScoreRow is the balance-table label for the propensity score itself.
const ScoreRow = "propensity_score"

// BalanceRow compares one covariate across treatment groups before and
// after matching. The matched control side is weighted by match usage,
// so a control reused k times counts k times.
type BalanceRow struct {
	Covariate          string  `json:"covariate"`
	TreatedMean        float64 `json:"treated_mean"`
	ControlMean        float64 `json:"control_mean"`
	SMDBefore          float64 `json:"smd_before"`
	MatchedControlMean float64 `json:"matched_control_mean"`
	SMDAfter           float64 `json:"smd_after"`
}

// Quality summarizes how tight a matching pass was.
type Quality struct {
	Pairs            int     `json:"pairs"`
	UnmatchedTreated int     `json:"unmatched_treated"`
	MeanAbsDistance  float64 `json:"mean_abs_distance"`
	MaxAbsDistance   float64 `json:"max_abs_distance"`
	ReusedControls   int     `json:"reused_controls"`
}

// Balance builds the covariate balance table for a matching pass: one
// row per cohort covariate plus the propensity score itself.
func Balance(c *cohort.Cohort, score []float64, res *match.Result) ([]BalanceRow, error) {
	if len(score) != c.Size() || res.Len() != c.Size() {
		return nil, core.NewInvalidInputError("score and match result must cover all %d units", c.Size())
	}

	treatment := c.Treatment()
	rows := make([]BalanceRow, 0, len(c.CovariateCols)+1)
	for _, name := range c.CovariateCols {
		col, err := c.Covariate(name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, balanceRow(name, col, treatment, res))
	}
	rows = append(rows, balanceRow(ScoreRow, score, treatment, res))
	return rows, nil
}

func balanceRow(name string, col []float64, treatment []int, res *match.Result) BalanceRow {
	var treated, control []float64
	var matchedTreated []float64
	var matchedControl []float64
	var weights []float64

	for i, v := range col {
		if treatment[i] == 1 {
			treated = append(treated, v)
			if res.Matched(i) {
				matchedTreated = append(matchedTreated, v)
			}
		} else {
			control = append(control, v)
			if res.Usage[i] > 0 {
				matchedControl = append(matchedControl, v)
				weights = append(weights, float64(res.Usage[i]))
			}
		}
	}

	row := BalanceRow{
		Covariate:   name,
		TreatedMean: mean(treated),
		ControlMean: mean(control),
		SMDBefore:   standardizedDiff(treated, control),
	}
	row.MatchedControlMean = weightedMean(matchedControl, weights)
	row.SMDAfter = weightedStandardizedDiff(matchedTreated, matchedControl, weights)
	return row
}

// MatchQuality profiles the score distances of a matching pass.
func MatchQuality(score []float64, treatment []int, res *match.Result) Quality {
	q := Quality{
		Pairs:            res.Pairs(),
		UnmatchedTreated: res.UnmatchedTreated,
	}

	total := 0.0
	count := 0
	for i, tr := range treatment {
		if tr != 1 || !res.Matched(i) {
			continue
		}
		d := math.Abs(score[i] - score[res.MatchIndex[i]])
		total += d
		if d > q.MaxAbsDistance {
			q.MaxAbsDistance = d
		}
		count++
	}
	if count > 0 {
		q.MeanAbsDistance = total / float64(count)
	}

	for i, tr := range treatment {
		if tr == 0 && res.Usage[i] > 1 {
			q.ReusedControls++
		}
	}
	return q
}

// standardizedDiff is the standardized mean difference with the pooled
// unweighted variance denominator. Zero spread yields zero.
func standardizedDiff(treated, control []float64) float64 {
	if len(treated) == 0 || len(control) == 0 {
		return 0
	}
	vt, _ := stats.SampleVariance(treated)
	vc, _ := stats.SampleVariance(control)
	pooled := math.Sqrt((vt + vc) / 2)
	if pooled == 0 {
		return 0
	}
	return (mean(treated) - mean(control)) / pooled
}

func weightedStandardizedDiff(treated, control, weights []float64) float64 {
	if len(treated) == 0 || len(control) == 0 {
		return 0
	}
	vt, _ := stats.SampleVariance(treated)
	vc := weightedVariance(control, weights)
	pooled := math.Sqrt((vt + vc) / 2)
	if pooled == 0 {
		return 0
	}
	return (mean(treated) - weightedMean(control, weights)) / pooled
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, _ := stats.Mean(values)
	return m
}

func weightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum, wsum := 0.0, 0.0
	for i, v := range values {
		sum += weights[i] * v
		wsum += weights[i]
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

func weightedVariance(values, weights []float64) float64 {
	wsum := 0.0
	for _, w := range weights {
		wsum += w
	}
	if wsum <= 1 {
		return 0
	}
	wm := weightedMean(values, weights)
	acc := 0.0
	for i, v := range values {
		dev := v - wm
		acc += weights[i] * dev * dev
	}
	return acc / (wsum - 1)
}
