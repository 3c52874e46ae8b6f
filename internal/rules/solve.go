package rules

import "github.com/MJE43/colorway-poker/internal/wheel"

// FindSolution returns the first subset of the hand's distinct hues that
// satisfies goal, sorted ascending. Candidates are tried as k-combinations
// in lexicographic order over the hues in order of first appearance.
func FindSolution(goal GoalType, hand []wheel.Hue) ([]wheel.Hue, bool) {
	var found []wheel.Hue
	eachSolution(goal, hand, func(s []wheel.Hue) bool {
		found = s
		return false
	})
	return found, found != nil
}

// Solutions returns every satisfying subset in the order FindSolution
// would meet them.
func Solutions(goal GoalType, hand []wheel.Hue) [][]wheel.Hue {
	var all [][]wheel.Hue
	eachSolution(goal, hand, func(s []wheel.Hue) bool {
		all = append(all, s)
		return true
	})
	return all
}

func eachSolution(goal GoalType, hand []wheel.Hue, yield func([]wheel.Hue) bool) {
	r, ok := rulebook[goal]
	if !ok {
		return
	}
	uniq := distinct(hand)
	k := r.arity
	n := len(uniq)
	if n < k {
		return
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	pick := make([]wheel.Hue, k)
	for {
		for i, j := range idx {
			pick[i] = uniq[j]
		}
		if s := sorted(pick); r.holds(s) {
			if !yield(s) {
				return
			}
		}

		// advance to the next combination
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// distinct keeps the first occurrence of each valid hue.
func distinct(hand []wheel.Hue) []wheel.Hue {
	var seen [wheel.Size]bool
	out := make([]wheel.Hue, 0, len(hand))
	for _, h := range hand {
		if !h.Valid() || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
