package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fortresslabs/fortress/broker"
	"github.com/fortresslabs/fortress/config"
	"github.com/fortresslabs/fortress/feed"
	"github.com/fortresslabs/fortress/journal"
	"github.com/fortresslabs/fortress/notifier"
	"github.com/fortresslabs/fortress/recorder"
	"github.com/fortresslabs/fortress/risk"
	"github.com/fortresslabs/fortress/scheduler"
	"github.com/fortresslabs/fortress/strategy"
	"github.com/fortresslabs/fortress/zone"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the paper trading loops",
	Long: `Run starts the sentiment and candle loops against the configured zone
set and trade log, then blocks until interrupted.

The live market-data client is an external collaborator; --feed points
at a JSON fixture that stands in for it during dry runs.

Example:
  fortress run --config configs/fortress.yaml --feed data/session.json`,
	RunE: runRun,
}

var (
	runConfigPath string
	runFeedPath   string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "configs/fortress.yaml", "path to YAML config")
	runCmd.Flags().StringVar(&runFeedPath, "feed", "", "path to a feed fixture (required)")
	runCmd.MarkFlagRequired("feed")
}

func runRun(cmd *cobra.Command, args []string) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(runConfigPath)
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
	log.Printf("[INFO] loaded %d zones from %s", len(zones), cfg.Zones.File)

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLite(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, recording disabled: %v", err)
			rec = recorder.NewNoop()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoop()
	}
	if err := rec.RecordZones(zones); err != nil {
		log.Printf("[ERROR] record zones: %v", err)
	}

	tradeLog, err := journal.NewCSV(cfg.Journal.TradeLog)
	if err != nil {
		return fmt.Errorf("open trade log: %w", err)
	}
	defer tradeLog.Close()

	vb, err := broker.New(tradeLog, broker.WithFillHook(func(e journal.Entry) {
		if err := rec.RecordFill(e); err != nil {
			log.Printf("[ERROR] record fill: %v", err)
		}
	}))
	if err != nil {
		return fmt.Errorf("init virtual broker: %w", err)
	}

	var tn notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	} else {
		log.Println("[WARN] telegram not configured, alerts go to the process log")
		tn = notifier.NewLogNotifier()
	}

	src, err := feed.LoadStatic(runFeedPath)
	if err != nil {
		return fmt.Errorf("load feed fixture: %w", err)
	}

	engine := strategy.NewEngine(store, cfg.StrategyConfig())
	limits := risk.Limits{DailyTarget: cfg.Risk.DailyTarget, DailyStop: cfg.Risk.DailyStop}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, vb, engine, store, limits, src, src, rec, tn, cfg.Strategy.Underlyings)
	if err := sched.Register(cfg.Schedule.SentimentCron, cfg.Schedule.CandleCron); err != nil {
		return fmt.Errorf("register loops: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Println("[INFO] fortress is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping")
	cancel()
	return nil
}
