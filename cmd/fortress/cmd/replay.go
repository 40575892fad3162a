package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fortresslabs/fortress/broker"
	"github.com/fortresslabs/fortress/journal"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild ledger state from a trade log and print it",
	Long: `Replay reads an append-only trade log front-to-back, reconstructs the
position ledger exactly as a restart would, and prints the open
positions and cumulative realized P&L.

Example:
  fortress replay --log data/trade_log.csv`,
	RunE: runReplay,
}

var replayLogPath string

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayLogPath, "log", "l", "data/trade_log.csv", "path to the trade log")
}

func runReplay(cmd *cobra.Command, args []string) error {
	tradeLog, err := journal.NewCSV(replayLogPath)
	if err != nil {
		return fmt.Errorf("open trade log: %w", err)
	}
	defer tradeLog.Close()

	vb, err := broker.New(tradeLog)
	if err != nil {
		return fmt.Errorf("replay trade log: %w", err)
	}

	positions := vb.Positions()
	if len(positions) == 0 {
		fmt.Println("no open positions")
	}
	for _, p := range positions {
		fmt.Printf("%-24s qty %6d  entry %10.2f  last %10.2f\n",
			p.Symbol, p.Qty, p.EntryPrice, p.LastPrice)
	}
	fmt.Printf("\nrealized P&L: %.2f\n", vb.RealizedPL())
	fmt.Printf("mark-to-market: %.2f\n", vb.MarkToMarket())
	return nil
}
