// Package games defines the Colorway deal: which goal a round plays, which
// seven cards are dealt, and how many solutions the hand holds.
package games

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

// Source is what a deal draws from: integers for the goal, hues and
// shuffle, then raw bytes for card ids.
type Source interface {
	rules.Source
	io.Reader
}

// GameSpec describes the game to API clients.
type GameSpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MetricLabel string `json:"metric_label"`
}

// Card is one swatch in a hand.
type Card struct {
	ID       uuid.UUID `json:"id"`
	Hue      wheel.Hue `json:"hue"`
	Name     string    `json:"name"`
	Hex      string    `json:"hex"`
	Selected bool      `json:"selected"`
}

// Deal is a dealt round before any player input.
type Deal struct {
	Goal      rules.Goal `json:"goal"`
	Cards     []Card     `json:"cards"`
	Solutions int        `json:"solutions"`
}

// Hues returns the card hues in deal order.
func (d Deal) Hues() []wheel.Hue {
	out := make([]wheel.Hue, len(d.Cards))
	for i, c := range d.Cards {
		out[i] = c.Hue
	}
	return out
}

// ColorwayGame deals rounds from the provably fair stream.
type ColorwayGame struct{}

// Spec returns metadata about the game.
func (g *ColorwayGame) Spec() GameSpec {
	return GameSpec{
		ID:          "colorway",
		Name:        "Colorway Poker",
		MetricLabel: "solutions",
	}
}

// OpeningGoal is the goal a fresh table counts as having just played, so a
// table's first round never deals it.
const OpeningGoal = rules.Complementary

// PriorGoal returns the goal a table round follows: previous, or
// OpeningGoal for a table's first round.
func PriorGoal(previous rules.GoalType) rules.GoalType {
	if previous == "" {
		return OpeningGoal
	}
	return previous
}

// Evaluate replays the deal for nonce. previous is the goal of the round
// before it on the same table, or "" for a table's first round.
func (g *ColorwayGame) Evaluate(seeds engine.Seeds, nonce uint64, previous rules.GoalType) (Deal, error) {
	return DealRound(seeds.Stream(nonce), PriorGoal(previous))
}

// PickGoal draws the round's goal uniformly from the catalog minus previous.
func PickGoal(src rules.Source, previous rules.GoalType) rules.Goal {
	candidates := make([]rules.Goal, 0, len(rules.Goals()))
	for _, g := range rules.Goals() {
		if g.Type != previous {
			candidates = append(candidates, g)
		}
	}
	return candidates[src.IntN(len(candidates))]
}

// DealRound picks a goal and deals a solvable hand for it.
func DealRound(src Source, previous rules.GoalType) (Deal, error) {
	return DealGoal(src, PickGoal(src, previous).Type)
}

// DealGoal deals a solvable hand for a fixed goal.
func DealGoal(src Source, goal rules.GoalType) (Deal, error) {
	meta, ok := rules.Lookup(goal)
	if !ok {
		return Deal{}, fmt.Errorf("%w: %q", rules.ErrUnknownGoal, goal)
	}
	hues, err := rules.GenerateSolvableHand(goal, src)
	if err != nil {
		return Deal{}, err
	}

	cards := make([]Card, len(hues))
	for i, h := range hues {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return Deal{}, fmt.Errorf("card id: %w", err)
		}
		cards[i] = Card{ID: id, Hue: h, Name: h.Name(), Hex: h.Hex()}
	}

	return Deal{
		Goal:      meta,
		Cards:     cards,
		Solutions: len(rules.Solutions(goal, hues)),
	}, nil
}

// RandSource adapts a math/rand/v2 generator for seeded, non-committed
// deals (CLI previews and the hands endpoint).
func RandSource(r *rand.Rand) Source {
	return randSource{r}
}

// SeededSource is RandSource over a PCG seeded from seed alone, so a
// preview hand can be reproduced from one number.
func SeededSource(seed uint64) Source {
	return RandSource(rand.New(rand.NewPCG(seed, seed>>32|seed<<32)))
}

type randSource struct {
	*rand.Rand
}

func (r randSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.Uint32())
	}
	return len(p), nil
}
