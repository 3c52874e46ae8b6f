package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/scripting"
)

func newSimulateCmd() *cobra.Command {
	var (
		cfg      scripting.SimConfig
		script   string
		bankroll string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play provably fair rounds with a JavaScript strategy",
		Long: `Run a strategy script against a seeded session. The script defines
pick(hand, goal, stats) and returns the card positions (0-6) to submit;
an empty array lets the round time out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if script == "" {
				return fmt.Errorf("--script is required")
			}
			src, err := os.ReadFile(script)
			if err != nil {
				return err
			}
			if cfg.Seeds.Server == "" || cfg.Seeds.Client == "" {
				return fmt.Errorf("--server-seed and --client-seed are required")
			}
			if bankroll != "" {
				if cfg.Bankroll, err = decimal.NewFromString(bankroll); err != nil {
					return fmt.Errorf("--bankroll: %w", err)
				}
			}

			vm := scripting.NewVM()
			if err := vm.Execute(string(src)); err != nil {
				return err
			}
			res, err := scripting.Simulate(cmd.Context(), vm, cfg)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			for _, l := range res.Logs {
				fmt.Println(subtle.Render("log: " + l.Message))
			}
			st := res.Stats
			profit := st.Profit()
			profitStyle := okStyle
			if profit.IsNegative() {
				profitStyle = badStyle
			}
			fmt.Printf("%s rounds (stop: %s, last nonce %s)\n",
				humanize.Comma(int64(st.Rounds)), res.StopReason, humanize.Comma(int64(res.LastNonce)))
			fmt.Printf("wins %d  busts %d  timeouts %d  win rate %.1f%%\n", st.Wins, st.Busts, st.Timeouts, st.WinRate()*100)
			fmt.Printf("bankroll %s -> %s (%s)  high %s  low %s\n",
				st.StartBankroll, st.Bankroll, profitStyle.Render(profit.StringFixed(0)), st.HighestBankroll, st.LowestBankroll)

			goals := make([]rules.GoalType, 0, len(st.ByGoal))
			for g := range st.ByGoal {
				goals = append(goals, g)
			}
			sort.Slice(goals, func(i, j int) bool { return goals[i] < goals[j] })
			for _, g := range goals {
				gs := st.ByGoal[g]
				fmt.Println(subtle.Render(fmt.Sprintf("  %-20s %d/%d", g, gs.Won, gs.Played)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "strategy script file")
	cmd.Flags().StringVar(&cfg.Seeds.Server, "server-seed", "", "server seed")
	cmd.Flags().StringVar(&cfg.Seeds.Client, "client-seed", "", "client seed")
	cmd.Flags().Uint64Var(&cfg.StartNonce, "start", 1, "first nonce")
	cmd.Flags().IntVar(&cfg.Rounds, "rounds", 100, "rounds to play")
	cmd.Flags().StringVar(&cfg.Difficulty, "difficulty", "real", "easy, real or pro")
	cmd.Flags().StringVar(&bankroll, "bankroll", "", "starting bankroll (default 300)")
	cmd.Flags().IntVar(&cfg.ThinkSeconds, "think", 5, "seconds the strategy takes per round")
	cmd.Flags().IntVar(&cfg.ChartPoints, "chart-points", 200, "bankroll chart resolution")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
