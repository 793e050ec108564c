// Package match implements greedy nearest-neighbor propensity matching
// with replacement. Matching is a pure function of the inputs: no state,
// no randomness, deterministic output for identical input.
package match

import (
	"math"

	"gocausal/domain/core"
)

// Sentinel values for unmatched units.
const (
	// Unmatched marks a unit with no match partner.
	Unmatched = -1
	// NoPair marks a unit that belongs to no pair. Pair ids start at 1.
	NoPair = 0
)

// Options controls optional matching behavior.
type Options struct {
	// Exclude removes units from matching entirely: an excluded treated
	// unit is not matched, an excluded untreated unit is never a candidate.
	// Nil means no exclusions; otherwise length must equal the unit count.
	Exclude []bool
}

// Result holds the per-unit output of a matching pass. The three slices
// are index-aligned with the input arrays.
type Result struct {
	// MatchIndex holds, for a matched treated unit, the index of its
	// untreated match; for a chosen untreated unit, the index of the
	// treated unit that most recently claimed it; Unmatched otherwise.
	MatchIndex []int `json:"match_index"`
	// Usage counts how many times a unit served as a match. Matching is
	// with replacement, so an untreated unit's count may exceed one.
	Usage []int `json:"usage"`
	// PairID is shared by both members of a pair, increasing from 1 in
	// treated processing order. A reused untreated unit keeps the id of
	// the most recent pair it joined. NoPair for unpaired units.
	PairID []int `json:"pair_id"`
	// UnmatchedTreated counts treated units that ended without a match,
	// whether excluded or lacking any eligible candidate.
	UnmatchedTreated int `json:"unmatched_treated"`
}

// Len returns the number of units.
func (r *Result) Len() int {
	return len(r.MatchIndex)
}

// Pairs returns the number of matched pairs. Ids are assigned
// sequentially, so the count equals the highest id.
func (r *Result) Pairs() int {
	max := 0
	for _, id := range r.PairID {
		if id > max {
			max = id
		}
	}
	return max
}

// Matched reports whether unit i belongs to a pair.
func (r *Result) Matched(i int) bool {
	return r.PairID[i] != NoPair
}

// Match runs greedy nearest-neighbor matching of treated units onto
// untreated units by propensity score. See MatchWithOptions.
func Match(treatment []int, score []float64) (*Result, error) {
	return MatchWithOptions(treatment, score, Options{})
}

// MatchWithOptions validates the inputs and runs the greedy pass.
//
// Validation is all-or-nothing: any invalid input fails with
// core.ErrInvalidInput and no partial result. A treated unit without
// an eligible candidate is not an error; it keeps the sentinels and the
// pass continues.
func MatchWithOptions(treatment []int, score []float64, opts Options) (*Result, error) {
	if err := validate(treatment, score, opts); err != nil {
		return nil, err
	}
	return greedy(treatment, score, opts), nil
}

func validate(treatment []int, score []float64, opts Options) error {
	if len(treatment) != len(score) {
		return core.NewInvalidInputError("treatment and score length mismatch: %d vs %d",
			len(treatment), len(score))
	}
	if opts.Exclude != nil && len(opts.Exclude) != len(treatment) {
		return core.NewInvalidInputError("exclude mask length mismatch: %d vs %d",
			len(opts.Exclude), len(treatment))
	}
	for i, tr := range treatment {
		if tr != 0 && tr != 1 {
			return core.NewInvalidInputError("non-binary treatment value %d at index %d", tr, i)
		}
	}
	for i, s := range score {
		if math.IsNaN(s) {
			return core.NewInvalidInputError("missing score at index %d", i)
		}
		if math.IsInf(s, 0) {
			return core.NewInvalidInputError("non-finite score at index %d", i)
		}
	}
	return nil
}
