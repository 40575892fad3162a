// Package backtest replays a recorded session fixture through the zone
// engine and the virtual broker, producing the P&L the live loops would
// have produced. It shares the entry and risk code paths with the
// scheduler; only the clock is different.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/fortresslabs/fortress/broker"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/risk"
	"github.com/fortresslabs/fortress/strategy"
	"github.com/fortresslabs/fortress/zone"
)

// Options controls end-of-session behavior.
type Options struct {
	// CloseEnd squares off whatever is still open once the fixture is
	// exhausted, tagged EXIT_<CloseReason>.
	CloseEnd    bool
	CloseReason string
}

// Result summarizes one replayed session.
type Result struct {
	Signals      int
	Spreads      int
	Realized     float64
	MarkToMarket float64
	Start        time.Time
	End          time.Time
	Halted       bool
	HaltReason   string
}

// Total returns the session P&L.
func (r Result) Total() float64 { return r.Realized + r.MarkToMarket }

// CandleFeed yields the next completed bar for a symbol. feed.Static
// satisfies it.
type CandleFeed interface {
	LatestCandle(ctx context.Context, symbol string) (market.Candle, error)
	OptionChain(ctx context.Context, underlying string) ([]market.OptionQuote, error)
}

// Runner drives the engine over every bar in a session fixture.
type Runner struct {
	Broker      *broker.VirtualBroker
	Engine      *strategy.Engine
	Zones       *zone.Store
	Feed        CandleFeed
	Limits      risk.Limits
	Underlyings []string
	Options     Options
}

// Run replays the session:
//
//  1. classify sentiment per underlying from the fixture chains
//  2. poll each watched symbol's bars in order until exhausted
//  3. on a confirmed sweep, execute the spread at chain prices
//  4. check the daily limits after every fill and halt on a breach
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Broker == nil || r.Engine == nil || r.Zones == nil || r.Feed == nil {
		return Result{}, fmt.Errorf("backtest: broker, engine, zones and feed are required")
	}

	sentiment := make(map[string]strategy.Sentiment)
	prices := make(map[string]float64)
	for _, u := range r.Underlyings {
		chain, err := r.Feed.OptionChain(ctx, u)
		if err != nil {
			return Result{}, fmt.Errorf("backtest: option chain %s: %w", u, err)
		}
		flag, _ := strategy.ClassifySentiment(chain)
		sentiment[u] = flag
		for _, q := range chain {
			prices[q.Symbol] = q.LTP
		}
	}

	var res Result
	seen := make(map[string]struct{})

	// A pass that surfaces no unseen bar means every symbol's fixture is
	// exhausted and repeating its last bar.
	for {
		progressed := false
		for _, symbol := range r.Zones.Symbols() {
			c, err := r.Feed.LatestCandle(ctx, symbol)
			if err != nil {
				return res, fmt.Errorf("backtest: candle %s: %w", symbol, err)
			}
			key := c.BarKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			progressed = true

			if res.Start.IsZero() || c.Time.Before(res.Start) {
				res.Start = c.Time
			}
			if c.Time.After(res.End) {
				res.End = c.Time
			}

			if res.Halted {
				continue
			}
			if err := r.evaluate(c, sentiment, prices, &res); err != nil {
				return res, err
			}
		}
		if !progressed {
			break
		}
	}

	if r.Options.CloseEnd && !res.Halted {
		reason := r.Options.CloseReason
		if reason == "" {
			reason = "END_OF_SESSION"
		}
		if err := r.Broker.CloseAll(reason); err != nil {
			return res, fmt.Errorf("backtest: close end: %w", err)
		}
	}

	res.Realized, res.MarkToMarket = r.Broker.PL()
	return res, nil
}

func (r *Runner) evaluate(c market.Candle, sentiment map[string]strategy.Sentiment, prices map[string]float64, res *Result) error {
	flag, ok := sentiment[market.UnderlyingRoot(c.Symbol)]
	if !ok {
		flag = strategy.Neutral
	}

	sig, err := r.Engine.CheckEntry(c, flag)
	if err != nil {
		return fmt.Errorf("backtest: entry check %s: %w", c.Symbol, err)
	}
	if sig == nil {
		return nil
	}
	res.Signals++

	sp := r.Engine.BuildSpread(sig)
	sp.Hedge.Price = prices[sp.Hedge.Symbol]
	sp.Premium.Price = prices[sp.Premium.Symbol]
	if err := r.Broker.ExecuteSpread(sp.Hedge, sp.Premium); err != nil {
		return fmt.Errorf("backtest: execute spread: %w", err)
	}
	res.Spreads++

	realized, mtm := r.Broker.PL()
	d := risk.Check(r.Limits, realized, mtm)
	if d.Breached() {
		res.Halted = true
		res.HaltReason = d.Reason
		if err := r.Broker.CloseAll(string(d.Signal)); err != nil {
			return fmt.Errorf("backtest: liquidate on breach: %w", err)
		}
	}
	return nil
}
