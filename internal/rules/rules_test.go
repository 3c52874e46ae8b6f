package rules

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/MJE43/colorway-poker/internal/wheel"
)

func hues(xs ...int) []wheel.Hue {
	out := make([]wheel.Hue, len(xs))
	for i, x := range xs {
		out[i] = wheel.Hue(x)
	}
	return out
}

func TestValidateRotations(t *testing.T) {
	for x := 0; x < wheel.Size; x++ {
		h := wheel.Hue(x)
		cases := []struct {
			goal GoalType
			sel  []wheel.Hue
		}{
			{Complementary, []wheel.Hue{h, h.Step(6)}},
			{Triadic, []wheel.Hue{h, h.Step(4), h.Step(8)}},
			{Tetradic, []wheel.Hue{h, h.Step(3), h.Step(6), h.Step(9)}},
			{SplitComplementary, []wheel.Hue{h, h.Step(5), h.Step(7)}},
			{Analogous, []wheel.Hue{h, h.Step(1), h.Step(2)}},
		}
		for _, c := range cases {
			if res := Validate(c.goal, c.sel); !res.Valid {
				t.Errorf("Validate(%s, %v) = %+v, want valid", c.goal, c.sel, res)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		goal    GoalType
		sel     []wheel.Hue
		valid   bool
		message string
	}{
		{"complementary reversed", Complementary, hues(9, 3), true, "Success! Perfect opposites."},
		{"complementary off by one", Complementary, hues(0, 5), false, "Incorrect. These colors are not opposite."},
		{"complementary wrong arity", Complementary, hues(0, 6, 1), false, "A complementary pair requires exactly 2 cards."},
		{"analogous run", Analogous, hues(3, 4, 5), true, "Success! A sequential harmony."},
		{"analogous wrap high", Analogous, hues(10, 11, 0), true, "Success! A sequential harmony."},
		{"analogous wrap low", Analogous, hues(11, 0, 1), true, "Success! A sequential harmony."},
		{"analogous spread", Analogous, hues(2, 5, 9), false, "Incorrect. These colors are not neighbors."},
		{"analogous duplicate", Analogous, hues(4, 4, 5), false, "Incorrect. These colors are not neighbors."},
		{"analogous wrong arity", Analogous, hues(1, 2), false, "An analogous trio requires exactly 3 cards."},
		{"triadic", Triadic, hues(8, 0, 4), true, "Success! A perfectly balanced triad."},
		{"triadic uneven", Triadic, hues(0, 4, 9), false, "Incorrect. These must be 4 steps apart."},
		{"triadic wrong arity", Triadic, hues(0, 4, 8, 1), false, "A triadic set requires exactly 3 cards."},
		{"split", SplitComplementary, hues(0, 5, 7), true, "Success! A dynamic split harmony."},
		{"split base last", SplitComplementary, hues(4, 6, 11), true, "Success! A dynamic split harmony."},
		{"split is complementary plus one", SplitComplementary, hues(0, 6, 7), false, "Incorrect. Must be a base and neighbors of its complement."},
		{"split wrong arity", SplitComplementary, hues(0, 5), false, "Split Complementary requires exactly 3 cards."},
		{"tetradic", Tetradic, hues(9, 0, 3, 6), true, "Success! A perfectly square tetrad."},
		{"tetradic rectangle", Tetradic, hues(0, 2, 6, 8), false, "Incorrect. These must be 3 steps apart (Square)."},
		{"tetradic wrong arity", Tetradic, hues(0, 3, 6), false, "A tetradic scheme requires exactly 4 cards."},
		{"unknown goal", GoalType("MONOCHROME"), hues(0), false, "Unknown goal type."},
		{"off the wheel", Complementary, hues(3, 15), false, "Incorrect. 15 is not on the color wheel."},
		{"negative hue", Complementary, hues(-6, 0), false, "Incorrect. -6 is not on the color wheel."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.goal, tt.sel)
			if res.Valid != tt.valid || res.Message != tt.message {
				t.Errorf("Validate(%s, %v) = %+v, want {%v %q}", tt.goal, tt.sel, res, tt.valid, tt.message)
			}
		})
	}
}

func TestValidateDoesNotReorderInput(t *testing.T) {
	sel := hues(8, 0, 4)
	Validate(Triadic, sel)
	if !slices.Equal(sel, hues(8, 0, 4)) {
		t.Errorf("selection mutated: %v", sel)
	}
}

func TestFindSolution(t *testing.T) {
	tests := []struct {
		name string
		goal GoalType
		hand []wheel.Hue
		want []wheel.Hue
		ok   bool
	}{
		{"tetradic impossible", Tetradic, hues(0, 1, 2, 3, 4, 5, 6), nil, false},
		{"complementary first pair", Complementary, hues(7, 2, 1, 8, 11, 4, 5), hues(1, 7), true},
		{"analogous wrap", Analogous, hues(0, 5, 11, 7, 10, 3, 3), hues(0, 10, 11), true},
		{"duplicates ignored", Triadic, hues(4, 4, 4, 8, 8, 0, 0), hues(0, 4, 8), true},
		{"too few distinct", Tetradic, hues(0, 3, 3, 6, 6, 6, 0), nil, false},
		{"unknown goal", GoalType("NOPE"), hues(0, 6), nil, false},
		{"off-wheel hues skipped", Complementary, hues(20, 14, 2, 8), hues(2, 8), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindSolution(tt.goal, tt.hand)
			if ok != tt.ok || !slices.Equal(got, tt.want) {
				t.Errorf("FindSolution(%s, %v) = %v, %v; want %v, %v", tt.goal, tt.hand, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSolutionsOrder(t *testing.T) {
	hand := hues(6, 0, 9, 3, 1, 7, 2)
	got := Solutions(Complementary, hand)
	want := [][]wheel.Hue{hues(0, 6), hues(3, 9), hues(1, 7)}
	if len(got) != len(want) {
		t.Fatalf("Solutions = %v, want %v", got, want)
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("Solutions[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	first, _ := FindSolution(Complementary, hand)
	if !slices.Equal(first, got[0]) {
		t.Errorf("FindSolution = %v, Solutions[0] = %v", first, got[0])
	}
}

func TestGenerateSolvableHand(t *testing.T) {
	for _, g := range Goals() {
		for seed := uint64(0); seed < 200; seed++ {
			src := rand.New(rand.NewPCG(seed, 0xC0105))
			hand, err := GenerateSolvableHand(g.Type, src)
			if err != nil {
				t.Fatalf("GenerateSolvableHand(%s): %v", g.Type, err)
			}
			if len(hand) != HandSize {
				t.Fatalf("hand size %d", len(hand))
			}
			for _, h := range hand {
				if !h.Valid() {
					t.Fatalf("hand %v has off-wheel hue", hand)
				}
			}
			sol, ok := FindSolution(g.Type, hand)
			if !ok {
				t.Fatalf("seed %d: no %s solution in %v", seed, g.Type, hand)
			}
			if res := Validate(g.Type, sol); !res.Valid {
				t.Fatalf("solution %v rejected: %s", sol, res.Message)
			}
		}
	}
}

func TestGenerateSolvableHandDeterministic(t *testing.T) {
	a, _ := GenerateSolvableHand(Tetradic, rand.New(rand.NewPCG(7, 7)))
	b, _ := GenerateSolvableHand(Tetradic, rand.New(rand.NewPCG(7, 7)))
	if !slices.Equal(a, b) {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestGenerateSolvableHandUnknownGoal(t *testing.T) {
	_, err := GenerateSolvableHand("NOPE", rand.New(rand.NewPCG(1, 1)))
	if !errors.Is(err, ErrUnknownGoal) {
		t.Errorf("err = %v, want ErrUnknownGoal", err)
	}
}

func TestParseGoalType(t *testing.T) {
	tests := map[string]GoalType{
		"COMPLEMENTARY":       Complementary,
		"analogous":           Analogous,
		"split-complementary": SplitComplementary,
		"Split Complementary": SplitComplementary,
		" tetradic ":          Tetradic,
	}
	for in, want := range tests {
		got, err := ParseGoalType(in)
		if err != nil || got != want {
			t.Errorf("ParseGoalType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseGoalType("mono"); !errors.Is(err, ErrUnknownGoal) {
		t.Errorf("ParseGoalType(mono) err = %v", err)
	}
}

func TestCatalogMatchesRulebook(t *testing.T) {
	goals := Goals()
	if len(goals) != len(rulebook) {
		t.Fatalf("catalog has %d goals, rulebook %d", len(goals), len(rulebook))
	}
	points := map[GoalType]int{Complementary: 12, Analogous: 18, Triadic: 25, SplitComplementary: 31, Tetradic: 50}
	for _, g := range goals {
		if g.Arity != g.Type.Arity() {
			t.Errorf("%s arity %d, rulebook %d", g.Type, g.Arity, g.Type.Arity())
		}
		if len(rulebook[g.Type].offsets) != g.Arity {
			t.Errorf("%s has %d offsets", g.Type, len(rulebook[g.Type].offsets))
		}
		if g.BasePoints != points[g.Type] {
			t.Errorf("%s base points %d", g.Type, g.BasePoints)
		}
	}
}
