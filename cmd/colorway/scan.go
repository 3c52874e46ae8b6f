package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/scan"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

func newScanCmd() *cobra.Command {
	var (
		req           scan.ScanRequest
		op            string
		goal, prev    string
		workers       int
		asJSON, quiet bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Search a nonce range for deals matching a target",
		Long: `Deal every nonce in --start..--end and report those whose solution
count matches the target (--op any|eq|gt|ge|lt|le|between|outside).`,
		Example: `  colorway scan --server-seed S --client-seed C --end 100000 --goal tetradic --op ge --val 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Seeds.Server == "" || req.Seeds.Client == "" {
				return fmt.Errorf("--server-seed and --client-seed are required")
			}
			var err error
			if req.Goal, err = optionalGoal(goal); err != nil {
				return err
			}
			if req.PreviousGoal, err = optionalGoal(prev); err != nil {
				return err
			}
			req.TargetOp = scan.TargetOp(op)

			s := scan.NewScanner()
			s.Workers = workers
			if quiet {
				s.Logger = nil
			}
			start := time.Now()
			res, err := s.Scan(context.Background(), req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			for _, h := range res.Hits {
				fmt.Printf("%10s  %-20s %2.0f  %s\n", humanize.Comma(int64(h.Nonce)), h.Goal, h.Metric, wheel.Names(h.Hues))
			}
			sum := res.Summary
			fmt.Println(subtle.Render(fmt.Sprintf("%s deals in %s, %s hits, solutions min %.0f / mean %.2f / max %.0f",
				humanize.Comma(int64(sum.TotalEvaluated)), time.Since(start).Round(time.Millisecond),
				humanize.Comma(int64(sum.HitsFound)), sum.MinMetric, sum.MeanMetric, sum.MaxMetric)))
			for _, g := range rules.Goals() {
				if n := sum.GoalCounts[g.Type]; n > 0 {
					fmt.Println(subtle.Render(fmt.Sprintf("  %-22s %s", g.Label, humanize.Comma(int64(n)))))
				}
			}
			if sum.TimedOut {
				fmt.Println(badStyle.Render("timed out: results are partial"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Seeds.Server, "server-seed", "", "server seed")
	cmd.Flags().StringVar(&req.Seeds.Client, "client-seed", "", "client seed")
	cmd.Flags().Uint64Var(&req.NonceStart, "start", 1, "first nonce")
	cmd.Flags().Uint64Var(&req.NonceEnd, "end", 1000, "last nonce")
	cmd.Flags().StringVar(&goal, "goal", "", "only report deals with this goal")
	cmd.Flags().StringVar(&prev, "previous-goal", "", "goal of the round before --start")
	cmd.Flags().StringVar(&op, "op", "any", "target operator")
	cmd.Flags().Float64Var(&req.TargetVal, "val", 0, "target value")
	cmd.Flags().Float64Var(&req.TargetVal2, "val2", 0, "upper bound for between/outside")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "maximum hits to report (0 = all)")
	cmd.Flags().IntVar(&req.TimeoutMs, "timeout-ms", 0, "stop after this many milliseconds")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel workers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress scanner logs")
	return cmd
}
