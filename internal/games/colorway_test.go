package games

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

var testSeeds = engine.Seeds{Server: "colorway-server", Client: "colorway-client"}

func TestColorwaySpec(t *testing.T) {
	spec := (&ColorwayGame{}).Spec()
	if spec.ID != "colorway" || spec.Name != "Colorway Poker" || spec.MetricLabel != "solutions" {
		t.Errorf("unexpected spec %+v", spec)
	}
}

func TestColorwayGoldenDeals(t *testing.T) {
	tests := []struct {
		nonce     uint64
		previous  rules.GoalType
		goal      rules.GoalType
		hues      []wheel.Hue
		firstCard string
	}{
		{1, "", rules.SplitComplementary, []wheel.Hue{11, 11, 0, 2, 9, 7, 4}, "aa582a52-aa65-48db-9686-06b3edffe4c7"},
		{2, rules.Complementary, rules.Tetradic, []wheel.Hue{2, 5, 0, 11, 8, 8, 5}, "c1e83ccd-a6cf-40a4-8868-70dd59111bbf"},
		{3, "", rules.Triadic, []wheel.Hue{4, 3, 1, 11, 9, 5, 8}, "6ff1672d-c792-4680-98d2-773e9f5b3b07"},
		{7, rules.Tetradic, rules.Triadic, []wheel.Hue{10, 3, 6, 4, 8, 0, 2}, "436d8688-6e41-4599-a2d5-ad77dd4df345"},
	}

	game := &ColorwayGame{}
	for _, tt := range tests {
		deal, err := game.Evaluate(testSeeds, tt.nonce, tt.previous)
		if err != nil {
			t.Fatalf("nonce %d: %v", tt.nonce, err)
		}
		if deal.Goal.Type != tt.goal {
			t.Errorf("nonce %d: goal %s, want %s", tt.nonce, deal.Goal.Type, tt.goal)
		}
		if !slices.Equal(deal.Hues(), tt.hues) {
			t.Errorf("nonce %d: hues %v, want %v", tt.nonce, deal.Hues(), tt.hues)
		}
		if got := deal.Cards[0].ID.String(); got != tt.firstCard {
			t.Errorf("nonce %d: first card id %s, want %s", tt.nonce, got, tt.firstCard)
		}
		if deal.Solutions != len(rules.Solutions(tt.goal, tt.hues)) || deal.Solutions == 0 {
			t.Errorf("nonce %d: solutions %d", tt.nonce, deal.Solutions)
		}
	}
}

func TestFirstRoundFollowsOpeningGoal(t *testing.T) {
	game := &ColorwayGame{}
	for nonce := uint64(1); nonce <= 500; nonce++ {
		first, err := game.Evaluate(testSeeds, nonce, "")
		if err != nil {
			t.Fatal(err)
		}
		if first.Goal.Type == OpeningGoal {
			t.Fatalf("nonce %d: first round dealt %s", nonce, OpeningGoal)
		}
		after, _ := game.Evaluate(testSeeds, nonce, OpeningGoal)
		if after.Goal.Type != first.Goal.Type || after.Cards[0].ID != first.Cards[0].ID {
			t.Fatalf("nonce %d: first round differs from a round after %s", nonce, OpeningGoal)
		}
	}
	if PriorGoal("") != rules.Complementary || PriorGoal(rules.Tetradic) != rules.Tetradic {
		t.Error("PriorGoal")
	}
}

func TestDealIsDeterministic(t *testing.T) {
	game := &ColorwayGame{}
	a, _ := game.Evaluate(testSeeds, 99, rules.Triadic)
	b, _ := game.Evaluate(testSeeds, 99, rules.Triadic)
	if a.Goal != b.Goal || !slices.Equal(a.Cards, b.Cards) {
		t.Error("same seeds and nonce gave different deals")
	}
	c, _ := game.Evaluate(engine.Seeds{Server: testSeeds.Server, Client: "other"}, 99, rules.Triadic)
	if slices.Equal(a.Cards, c.Cards) {
		t.Error("different client seed gave the same cards")
	}
}

func TestDealCards(t *testing.T) {
	deal, err := (&ColorwayGame{}).Evaluate(testSeeds, 11, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(deal.Cards) != rules.HandSize {
		t.Fatalf("dealt %d cards", len(deal.Cards))
	}
	ids := make(map[string]bool)
	for _, c := range deal.Cards {
		if ids[c.ID.String()] {
			t.Errorf("duplicate card id %s", c.ID)
		}
		ids[c.ID.String()] = true
		if c.ID.Version() != 4 {
			t.Errorf("card id %s is not v4", c.ID)
		}
		if c.Name != c.Hue.Name() || c.Hex != c.Hue.Hex() || c.Selected {
			t.Errorf("card %+v", c)
		}
	}
}

func TestPickGoalExcludesPrevious(t *testing.T) {
	for _, prev := range rules.Goals() {
		for nonce := uint64(0); nonce < 100; nonce++ {
			g := PickGoal(testSeeds.Stream(nonce), prev.Type)
			if g.Type == prev.Type {
				t.Fatalf("nonce %d repeated goal %s", nonce, prev.Type)
			}
		}
	}

	seen := make(map[rules.GoalType]bool)
	for nonce := uint64(0); nonce < 200; nonce++ {
		seen[PickGoal(testSeeds.Stream(nonce), "").Type] = true
	}
	if len(seen) != len(rules.Goals()) {
		t.Errorf("first-round goals reached only %d types", len(seen))
	}
}

func TestDealGoalWithRandSource(t *testing.T) {
	src := RandSource(rand.New(rand.NewPCG(3, 4)))
	for _, g := range rules.Goals() {
		deal, err := DealGoal(src, g.Type)
		if err != nil {
			t.Fatalf("DealGoal(%s): %v", g.Type, err)
		}
		if deal.Goal != g {
			t.Errorf("goal %+v, want %+v", deal.Goal, g)
		}
		if _, ok := rules.FindSolution(g.Type, deal.Hues()); !ok {
			t.Errorf("%s hand %v unsolvable", g.Type, deal.Hues())
		}
	}
}

func TestDealGoalUnknown(t *testing.T) {
	_, err := DealGoal(testSeeds.Stream(1), "PASTEL")
	if !errors.Is(err, rules.ErrUnknownGoal) {
		t.Errorf("err = %v", err)
	}
}

func TestSeededSourceRepeats(t *testing.T) {
	a, err := DealGoal(SeededSource(42), rules.Triadic)
	if err != nil {
		t.Fatal(err)
	}
	b, err := DealGoal(SeededSource(42), rules.Triadic)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Hues(), b.Hues()) || a.Cards[0].ID != b.Cards[0].ID {
		t.Errorf("seed 42 dealt %v then %v", a.Hues(), b.Hues())
	}
}
