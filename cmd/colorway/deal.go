package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
)

type dealFlags struct {
	serverSeed, clientSeed string
	nonce                  uint64
	previous               string
	goal                   string
	seed                   uint64
	reveal, asJSON         bool
}

func newDealCmd() *cobra.Command {
	var f dealFlags
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Deal a hand and draw it in the terminal",
		Long: `Deal a hand either provably fair (--server-seed, --client-seed, --nonce)
or from a plain numeric seed (--seed, optionally with a fixed --goal).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fair := f.serverSeed != "" || f.clientSeed != ""
			if !fair && f.seed == 0 {
				f.seed = randomSeed()
			}
			deal, err := f.deal()
			if err != nil {
				return err
			}
			solution, _ := rules.FindSolution(deal.Goal.Type, deal.Hues())
			if f.asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"deal": deal, "solution": solution})
			}
			if !f.reveal {
				solution = nil
			}
			fmt.Println(renderDeal(deal, solution))
			if fair {
				fmt.Println(subtle.Render(fmt.Sprintf("nonce %d · server seed hash %s", f.nonce, engine.HashServerSeed(f.serverSeed))))
			} else {
				fmt.Println(subtle.Render(fmt.Sprintf("seed %d", f.seed)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.serverSeed, "server-seed", "", "server seed for a provably fair deal")
	cmd.Flags().StringVar(&f.clientSeed, "client-seed", "", "client seed for a provably fair deal")
	cmd.Flags().Uint64Var(&f.nonce, "nonce", 1, "nonce for a provably fair deal")
	cmd.Flags().StringVar(&f.previous, "previous-goal", "", "goal of the round before this nonce")
	cmd.Flags().StringVar(&f.goal, "goal", "", "fixed goal for a seeded deal")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "numeric seed for a plain deal (0 = random)")
	cmd.Flags().BoolVar(&f.reveal, "reveal", false, "highlight a winning selection")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the deal as JSON")
	return cmd
}

func (f dealFlags) deal() (games.Deal, error) {
	if f.serverSeed != "" || f.clientSeed != "" {
		if f.serverSeed == "" || f.clientSeed == "" {
			return games.Deal{}, fmt.Errorf("--server-seed and --client-seed go together")
		}
		previous, err := optionalGoal(f.previous)
		if err != nil {
			return games.Deal{}, err
		}
		var game games.ColorwayGame
		return game.Evaluate(engine.Seeds{Server: f.serverSeed, Client: f.clientSeed}, f.nonce, previous)
	}

	src := games.SeededSource(f.seed)
	if f.goal == "" {
		previous, err := optionalGoal(f.previous)
		if err != nil {
			return games.Deal{}, err
		}
		return games.DealRound(src, previous)
	}
	goal, err := rules.ParseGoalType(f.goal)
	if err != nil {
		return games.Deal{}, err
	}
	return games.DealGoal(src, goal)
}

func optionalGoal(s string) (rules.GoalType, error) {
	if s == "" {
		return "", nil
	}
	return rules.ParseGoalType(s)
}
