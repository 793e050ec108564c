// Package simulate builds the toy datasets the lessons analyze. Every
// generator is a pure function of its config: the seed travels in the
// config and all draws come from one rand.Rand built from it.
package simulate

import (
	"math"
)

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
