// Package rules is the Colorway rule engine: the goal catalog, selection
// validation, solution search and solvable-hand generation. Everything here
// is pure; randomness comes in through a Source.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MJE43/colorway-poker/internal/wheel"
)

// ErrUnknownGoal is returned for goal ids outside the catalog.
var ErrUnknownGoal = errors.New("unknown goal type")

// GoalType identifies a color-theory relationship.
type GoalType string

const (
	Complementary      GoalType = "COMPLEMENTARY"
	Analogous          GoalType = "ANALOGOUS"
	Triadic            GoalType = "TRIADIC"
	SplitComplementary GoalType = "SPLIT_COMPLEMENTARY"
	Tetradic           GoalType = "TETRADIC"
)

// Goal is the catalog entry for a GoalType.
type Goal struct {
	Type        GoalType `json:"type"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	BasePoints  int      `json:"base_points"`
	Arity       int      `json:"arity"`
}

// rule is everything the engine needs to check and build one goal.
type rule struct {
	arity   int
	offsets []int
	holds   func(sorted []wheel.Hue) bool

	wrongArity string
	success    string
	failure    string
}

var rulebook = map[GoalType]rule{
	Complementary: {
		arity:      2,
		offsets:    []int{0, 6},
		holds:      isComplementary,
		wrongArity: "A complementary pair requires exactly 2 cards.",
		success:    "Success! Perfect opposites.",
		failure:    "Incorrect. These colors are not opposite.",
	},
	Analogous: {
		arity:      3,
		offsets:    []int{0, 1, 2},
		holds:      isAnalogous,
		wrongArity: "An analogous trio requires exactly 3 cards.",
		success:    "Success! A sequential harmony.",
		failure:    "Incorrect. These colors are not neighbors.",
	},
	Triadic: {
		arity:      3,
		offsets:    []int{0, 4, 8},
		holds:      isTriadic,
		wrongArity: "A triadic set requires exactly 3 cards.",
		success:    "Success! A perfectly balanced triad.",
		failure:    "Incorrect. These must be 4 steps apart.",
	},
	SplitComplementary: {
		arity:      3,
		offsets:    []int{0, 5, 7},
		holds:      isSplitComplementary,
		wrongArity: "Split Complementary requires exactly 3 cards.",
		success:    "Success! A dynamic split harmony.",
		failure:    "Incorrect. Must be a base and neighbors of its complement.",
	},
	Tetradic: {
		arity:      4,
		offsets:    []int{0, 3, 6, 9},
		holds:      isTetradic,
		wrongArity: "A tetradic scheme requires exactly 4 cards.",
		success:    "Success! A perfectly square tetrad.",
		failure:    "Incorrect. These must be 3 steps apart (Square).",
	},
}

// catalog keeps the deal order of the goals.
var catalog = []Goal{
	{Complementary, "Complementary Pair", "Find two colors exactly opposite on the wheel (6 steps apart).", 12, 2},
	{Analogous, "Analogous Trio", "Find three sequential neighbors on the wheel.", 18, 3},
	{Triadic, "Triadic Trio", "Find three colors equidistant (4 steps apart).", 25, 3},
	{SplitComplementary, "Split Complementary Trio", "Find one color plus the two colors adjacent to its complement.", 31, 3},
	{Tetradic, "Tetradic Four", "Find four colors forming a square (3 steps apart each).", 50, 4},
}

// Goals returns the catalog in deal order.
func Goals() []Goal {
	out := make([]Goal, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for t.
func Lookup(t GoalType) (Goal, bool) {
	for _, g := range catalog {
		if g.Type == t {
			return g, true
		}
	}
	return Goal{}, false
}

// Valid reports whether t is in the catalog.
func (t GoalType) Valid() bool {
	_, ok := rulebook[t]
	return ok
}

// Arity is the number of cards a selection for t must contain, or 0 for an
// unknown goal.
func (t GoalType) Arity() int {
	return rulebook[t].arity
}

// ParseGoalType accepts the canonical id in any case, with '-' or ' ' in
// place of '_' ("split-complementary").
func ParseGoalType(s string) (GoalType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	t := GoalType(norm)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGoal, s)
	}
	return t, nil
}
