package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

func randomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

func parseHues(args []string) ([]wheel.Hue, error) {
	hs := make([]wheel.Hue, len(args))
	for i, a := range args {
		h, err := wheel.Parse(a)
		if err != nil {
			return nil, err
		}
		hs[i] = h
	}
	return hs, nil
}

func newValidateCmd() *cobra.Command {
	var solve bool
	cmd := &cobra.Command{
		Use:   "validate GOAL HUE...",
		Short: "Check a selection of hues against a goal",
		Long: `Check a selection against a goal. Hues are wheel indexes (0-11) or
names such as "Blue-Violet". With --solve the hues are treated as a hand
and every winning selection is listed instead.`,
		Example: `  colorway validate complementary red green
  colorway validate TRIADIC 0 4 8
  colorway validate --solve tetradic 0 3 5 6 9 10 11`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hues, err := parseHues(args[1:])
			if err != nil {
				return err
			}
			if !solve {
				goal, err := rules.ParseGoalType(args[0])
				if err != nil {
					goal = rules.GoalType(args[0])
				}
				fmt.Println(renderVerdict(rules.Validate(goal, hues)))
				return nil
			}

			goal, err := rules.ParseGoalType(args[0])
			if err != nil {
				return err
			}
			all := rules.Solutions(goal, hues)
			if len(all) == 0 {
				fmt.Println(badStyle.Render("No solution"))
				return nil
			}
			for _, sol := range all {
				fmt.Println(okStyle.Render("✓") + " " + wheel.Names(sol))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&solve, "solve", false, "list every winning selection in the given hand")
	return cmd
}
