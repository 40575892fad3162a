package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fortress",
	Short: "Simulated intraday index-spread trading engine",
	Long: `Fortress is a paper-trading engine for intraday index option spreads.

It watches precomputed supply/demand zones for liquidity-sweep patterns,
confirms direction from option open interest, and books two-leg credit
spreads against a simulated position ledger backed by an append-only
trade log. Daily profit and loss limits force-close everything when hit.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
