package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/fortresslabs/fortress/broker"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/notifier"
	"github.com/fortresslabs/fortress/recorder"
	"github.com/fortresslabs/fortress/risk"
	"github.com/fortresslabs/fortress/strategy"
	"github.com/fortresslabs/fortress/zone"
)

// CandleSource supplies the latest completed bar for a symbol. The
// market-data client behind it owns its own timeouts.
type CandleSource interface {
	LatestCandle(ctx context.Context, symbol string) (market.Candle, error)
}

// ChainSource supplies an option-chain snapshot for an underlying.
type ChainSource interface {
	OptionChain(ctx context.Context, underlying string) ([]market.OptionQuote, error)
}

// Scheduler owns the periodic loops: the slow sentiment refresh, the
// per-bar candle poll, and the OnTick entry point the live-feed
// collaborator invokes. It is the only writer of the dedup set and the
// sentiment cache.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	broker *broker.VirtualBroker
	engine *strategy.Engine
	zones  *zone.Store
	limits risk.Limits

	candles CandleSource
	chain   ChainSource
	rec     recorder.Recorder
	tn      notifier.Notifier

	underlyings []string

	mu        sync.Mutex
	seen      map[string]struct{} // (symbol, bar time) pairs already evaluated
	sentiment map[string]strategy.Sentiment
	halted    bool // set after a daily limit breach, cleared on restart
}

// New wires the scheduler. Underlyings drive the sentiment loop; the
// candle loop polls every symbol covered by an active zone.
func New(ctx context.Context, b *broker.VirtualBroker, e *strategy.Engine, zs *zone.Store,
	limits risk.Limits, candles CandleSource, chain ChainSource,
	rec recorder.Recorder, tn notifier.Notifier, underlyings []string) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		ctx:         ctx,
		broker:      b,
		engine:      e,
		zones:       zs,
		limits:      limits,
		candles:     candles,
		chain:       chain,
		rec:         rec,
		tn:          tn,
		underlyings: underlyings,
		seen:        make(map[string]struct{}),
		sentiment:   make(map[string]strategy.Sentiment),
	}
}

// Register adds the sentiment and candle loops under the given cron
// specs (six-field, with seconds).
func (s *Scheduler) Register(sentimentSpec, candleSpec string) error {
	if _, err := s.cron.AddFunc(sentimentSpec, s.refreshSentiment); err != nil {
		return fmt.Errorf("register sentiment loop: %w", err)
	}
	if _, err := s.cron.AddFunc(candleSpec, s.pollCandles); err != nil {
		return fmt.Errorf("register candle loop: %w", err)
	}
	return nil
}

// Start begins the cron loops.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop halts the cron loops, waiting for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// refreshSentiment pulls an option-chain snapshot per underlying and
// recomputes the cached sentiment flag. A failed fetch keeps the
// previous flag; a single bad cycle is skipped, not fatal.
func (s *Scheduler) refreshSentiment() {
	for _, u := range s.underlyings {
		chain, err := s.chain.OptionChain(s.ctx, u)
		if err != nil {
			log.Printf("[ERROR] fetch option chain %s: %v", u, err)
			continue
		}
		if err := s.rec.RecordOptionChain(u, chain); err != nil {
			log.Printf("[ERROR] record option chain %s: %v", u, err)
		}

		flag, pcr := strategy.ClassifySentiment(chain)
		s.mu.Lock()
		s.sentiment[u] = flag
		s.mu.Unlock()
		log.Printf("[INFO] sentiment %s: PCR=%.2f %s", u, pcr, flag)
	}
}

// pollCandles fetches the latest completed bar for each watched symbol
// and runs the entry check. Each (symbol, bar time) pair is evaluated
// exactly once even if a later poll re-observes the same bar.
func (s *Scheduler) pollCandles() {
	for _, symbol := range s.zones.Symbols() {
		c, err := s.candles.LatestCandle(s.ctx, symbol)
		if err != nil {
			log.Printf("[ERROR] fetch candle %s: %v", symbol, err)
			continue
		}
		s.evaluateCandle(c)
	}
}

func (s *Scheduler) evaluateCandle(c market.Candle) {
	if err := c.Validate(); err != nil {
		log.Printf("[WARN] skipping candle: %v", err)
		return
	}

	s.mu.Lock()
	if s.halted {
		s.mu.Unlock()
		return
	}
	key := c.BarKey()
	if _, dup := s.seen[key]; dup {
		s.mu.Unlock()
		return
	}
	s.seen[key] = struct{}{}
	flag, ok := s.sentiment[market.UnderlyingRoot(c.Symbol)]
	s.mu.Unlock()
	if !ok {
		flag = strategy.Neutral
	}

	if err := s.rec.RecordCandle(c); err != nil {
		log.Printf("[ERROR] record candle %s: %v", c.Symbol, err)
	}

	sig, err := s.engine.CheckEntry(c, flag)
	if err != nil {
		log.Printf("[WARN] entry check %s: %v", c.Symbol, err)
		return
	}
	if sig == nil {
		return
	}

	log.Printf("[INFO] signal %s: %s on %s @ %.2f (zone %s)", sig.ID, sig.Action, sig.Symbol, sig.Price, sig.ZoneID)
	s.trySend(notifier.FormatSignalAlert(sig))

	spread := s.engine.BuildSpread(sig)
	if err := s.broker.ExecuteSpread(spread.Hedge, spread.Premium); err != nil {
		log.Printf("[ERROR] execute spread for signal %s: %v", sig.ID, err)
	}
}

// OnTick is the live-feed entry point: record the tick, refresh the
// mark, then run the risk check and liquidate on a breach. The feed
// collaborator calls this directly; there is no inheritance or callback
// registration involved.
func (s *Scheduler) OnTick(t market.Tick) {
	if err := s.rec.RecordTick(t); err != nil {
		log.Printf("[ERROR] record tick %s: %v", t.Symbol, err)
	}

	s.broker.UpdateMark(t.Symbol, t.LTP)

	s.mu.Lock()
	halted := s.halted
	s.mu.Unlock()
	if halted {
		return
	}

	realized, mtm := s.broker.PL()
	d := risk.Check(s.limits, realized, mtm)
	if !d.Breached() {
		return
	}

	s.mu.Lock()
	if s.halted {
		s.mu.Unlock()
		return
	}
	s.halted = true
	s.mu.Unlock()

	log.Printf("[WARN] risk breach %s: %s, closing all positions", d.Signal, d.Reason)
	closed := len(s.broker.Positions())
	if err := s.broker.CloseAll(string(d.Signal)); err != nil {
		log.Printf("[ERROR] close all positions: %v", err)
	}
	s.trySend(notifier.FormatRiskAlert(d, closed))
}

// Halted reports whether a daily limit breach has stopped new entries.
func (s *Scheduler) Halted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

// SwapZones replaces the zone set, e.g. after the analysis job reruns.
// Concurrent candle evaluations see either the old or the new set.
func (s *Scheduler) SwapZones(zones []zone.Zone) {
	s.zones.Swap(zones)
	if err := s.rec.RecordZones(zones); err != nil {
		log.Printf("[ERROR] record zones: %v", err)
	}
	log.Printf("[INFO] zone set swapped: %d zones", len(zones))
}

// alertRetries bounds the exponential backoff on alert delivery.
const alertRetries = 3

func (s *Scheduler) trySend(text string) {
	var err error
	if rs, ok := s.tn.(notifier.RetrySender); ok {
		err = rs.SendWithRetry(s.ctx, text, alertRetries)
	} else {
		err = s.tn.Send(text)
	}
	if err != nil {
		log.Printf("[ERROR] send alert: %v", err)
	}
}
