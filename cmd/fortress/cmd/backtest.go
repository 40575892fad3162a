package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fortresslabs/fortress/backtest"
	"github.com/fortresslabs/fortress/broker"
	"github.com/fortresslabs/fortress/config"
	"github.com/fortresslabs/fortress/feed"
	"github.com/fortresslabs/fortress/journal"
	"github.com/fortresslabs/fortress/risk"
	"github.com/fortresslabs/fortress/strategy"
	"github.com/fortresslabs/fortress/zone"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a recorded session fixture and report the P&L",
	Long: `Backtest runs a session fixture through the same entry and risk code
the live loops use, writing fills to a trade log and printing a summary.

Example:
  fortress backtest --config configs/fortress.yaml --feed data/session.json --log /tmp/bt.csv`,
	RunE: runBacktest,
}

var (
	backtestConfigPath string
	backtestFeedPath   string
	backtestLogPath    string
	backtestCloseEnd   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&backtestConfigPath, "config", "c", "configs/fortress.yaml", "path to YAML config")
	backtestCmd.Flags().StringVar(&backtestFeedPath, "feed", "", "path to a feed fixture (required)")
	backtestCmd.Flags().StringVarP(&backtestLogPath, "log", "l", "", "trade log for the replayed fills (required)")
	backtestCmd.Flags().BoolVar(&backtestCloseEnd, "close-end", true, "square off open positions at the end of the fixture")
	backtestCmd.MarkFlagRequired("feed")
	backtestCmd.MarkFlagRequired("log")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(backtestConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	zones, err := zone.LoadFile(cfg.Zones.File)
	if err != nil {
		return fmt.Errorf("load zones: %w", err)
	}
	store := zone.NewStore(zones)

	tradeLog, err := journal.NewCSV(backtestLogPath)
	if err != nil {
		return fmt.Errorf("open trade log: %w", err)
	}
	defer tradeLog.Close()

	vb, err := broker.New(tradeLog)
	if err != nil {
		return fmt.Errorf("init virtual broker: %w", err)
	}

	src, err := feed.LoadStatic(backtestFeedPath)
	if err != nil {
		return fmt.Errorf("load feed fixture: %w", err)
	}

	runner := &backtest.Runner{
		Broker:      vb,
		Engine:      strategy.NewEngine(store, cfg.StrategyConfig()),
		Zones:       store,
		Feed:        src,
		Limits:      risk.Limits{DailyTarget: cfg.Risk.DailyTarget, DailyStop: cfg.Risk.DailyStop},
		Underlyings: cfg.Strategy.Underlyings,
		Options:     backtest.Options{CloseEnd: backtestCloseEnd},
	}

	res, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("session %s .. %s\n", res.Start.Format("2006-01-02 15:04"), res.End.Format("15:04"))
	fmt.Printf("signals: %d  spreads: %d\n", res.Signals, res.Spreads)
	fmt.Printf("realized: %.2f  mark-to-market: %.2f  total: %.2f\n", res.Realized, res.MarkToMarket, res.Total())
	if res.Halted {
		fmt.Printf("halted: %s\n", res.HaltReason)
	}
	return nil
}
