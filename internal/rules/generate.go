package rules

import "github.com/MJE43/colorway-poker/internal/wheel"

// HandSize is the number of cards in every dealt hand.
const HandSize = 7

// Source supplies uniform integers in [0, n). *rand.Rand from math/rand/v2
// and the provably fair engine.ByteGenerator both satisfy it.
type Source interface {
	IntN(n int) int
}

// GenerateSolvableHand builds a seven-hue hand that contains at least one
// solution for goal: a random base hue plus the goal's offsets, padded with
// random filler and shuffled.
func GenerateSolvableHand(goal GoalType, src Source) ([]wheel.Hue, error) {
	r, ok := rulebook[goal]
	if !ok {
		return nil, ErrUnknownGoal
	}

	base := wheel.Hue(src.IntN(wheel.Size))
	hand := make([]wheel.Hue, 0, HandSize)
	for _, off := range r.offsets {
		hand = append(hand, base.Step(off))
	}
	for len(hand) < HandSize {
		hand = append(hand, wheel.Hue(src.IntN(wheel.Size)))
	}
	Shuffle(hand, src)
	return hand, nil
}

// Shuffle is a Fisher-Yates shuffle driven by src.
func Shuffle[T any](xs []T, src Source) {
	for i := len(xs) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
