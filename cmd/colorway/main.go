// Command colorway serves and inspects Colorway Poker games.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MJE43/colorway-poker/internal/api"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "colorway",
		Short:         "Colorway Poker rule engine, table server and provably fair tools",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", api.EngineVersion, api.GitCommit, api.BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env-file", ".env", "dotenv file to load before reading COLORWAY_* variables")

	root.AddCommand(
		newServeCmd(),
		newDealCmd(),
		newValidateCmd(),
		newVerifyCmd(),
		newScanCmd(),
		newSimulateCmd(),
		newSeedCmd(),
	)
	return root
}
