package match

import (
	"sort"
)

// greedy runs the matching pass over validated inputs.
//
// Units are walked in score order: stable ascending sort, untreated
// before treated at equal score, original order for remaining ties.
// Each treated unit scans outward from its sorted position for the
// nearest eligible untreated unit by absolute score difference;
// equidistant candidates resolve to the smallest original index.
func greedy(treatment []int, score []float64, opts Options) *Result {
	n := len(treatment)
	res := &Result{
		MatchIndex: make([]int, n),
		Usage:      make([]int, n),
		PairID:     make([]int, n),
	}
	for i := range res.MatchIndex {
		res.MatchIndex[i] = Unmatched
	}
	if n == 0 {
		return res
	}

	eligible := make([]bool, n)
	for i := range eligible {
		eligible[i] = opts.Exclude == nil || !opts.Exclude[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if score[ia] != score[ib] {
			return score[ia] < score[ib]
		}
		return treatment[ia] < treatment[ib]
	})

	pairSeq := 0
	for p := 0; p < n; p++ {
		t := order[p]
		if treatment[t] != 1 {
			continue
		}
		if !eligible[t] {
			res.UnmatchedTreated++
			continue
		}

		c := nearestControl(order, treatment, score, eligible, p)
		if c == Unmatched {
			res.UnmatchedTreated++
			continue
		}

		pairSeq++
		res.MatchIndex[t] = c
		res.MatchIndex[c] = t
		res.Usage[c]++
		res.PairID[t] = pairSeq
		res.PairID[c] = pairSeq
	}
	return res
}

// nearestControl returns the original index of the eligible untreated
// unit closest in score to the treated unit at sorted position p, or
// Unmatched when no candidate exists. Ties by distance resolve to the
// smallest original index, scanning the full run of equidistant
// candidates on both sides.
func nearestControl(order []int, treatment []int, score []float64, eligible []bool, p int) int {
	n := len(order)
	ts := score[order[p]]

	lo := scanControl(order, treatment, eligible, p-1, -1)
	hi := scanControl(order, treatment, eligible, p+1, +1)
	if lo < 0 && hi < 0 {
		return Unmatched
	}

	var d float64
	switch {
	case lo < 0:
		d = score[order[hi]] - ts
	case hi < 0:
		d = ts - score[order[lo]]
	default:
		dLo := ts - score[order[lo]]
		dHi := score[order[hi]] - ts
		if dLo <= dHi {
			d = dLo
		} else {
			d = dHi
		}
	}

	best := Unmatched
	if lo >= 0 && ts-score[order[lo]] == d {
		// walk the run of candidates at exactly distance d below
		for q := lo; q >= 0; q-- {
			i := order[q]
			if ts-score[i] > d {
				break
			}
			if treatment[i] == 0 && eligible[i] && (best < 0 || i < best) {
				best = i
			}
		}
	}
	if hi >= 0 && score[order[hi]]-ts == d {
		for q := hi; q < n; q++ {
			i := order[q]
			if score[i]-ts > d {
				break
			}
			if treatment[i] == 0 && eligible[i] && (best < 0 || i < best) {
				best = i
			}
		}
	}
	return best
}

// scanControl walks from position start in the given direction and
// returns the first sorted position holding an eligible untreated unit,
// or -1 when the scan runs off the order.
func scanControl(order []int, treatment []int, eligible []bool, start, step int) int {
	for q := start; q >= 0 && q < len(order); q += step {
		i := order[q]
		if treatment[i] == 0 && eligible[i] {
			return q
		}
	}
	return -1
}
