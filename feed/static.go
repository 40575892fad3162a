// Package feed provides data-source implementations for the scheduler.
// The production market-data client lives outside this module; Static
// serves dry runs and tests from a fixture file.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fortresslabs/fortress/market"
)

type fixtureCandle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

type fixtureQuote struct {
	Symbol string  `json:"symbol"`
	Expiry string  `json:"expiry"`
	Strike float64 `json:"strike"`
	Type   string  `json:"option_type"`
	OI     float64 `json:"oi"`
	LTP    float64 `json:"ltp"`
}

type fixture struct {
	Candles map[string][]fixtureCandle `json:"candles"`
	Chains  map[string][]fixtureQuote  `json:"chains"`
}

// Static replays candles from a fixture in order, one bar per poll, and
// serves a fixed option chain per underlying. Once a symbol's bars are
// exhausted the last bar repeats, which exercises the scheduler's dedup
// path the same way a live poll re-observing a bar would.
type Static struct {
	mu      sync.Mutex
	candles map[string][]market.Candle
	chains  map[string][]market.OptionQuote
	cursor  map[string]int
}

// LoadStatic reads a JSON fixture file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed fixture: %w", err)
	}

	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse feed fixture: %w", err)
	}

	s := &Static{
		candles: make(map[string][]market.Candle),
		chains:  make(map[string][]market.OptionQuote),
		cursor:  make(map[string]int),
	}
	for symbol, bars := range fx.Candles {
		for _, b := range bars {
			s.candles[symbol] = append(s.candles[symbol], market.Candle{
				Symbol: symbol,
				Time:   b.Time,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			})
		}
	}
	for underlying, quotes := range fx.Chains {
		for _, q := range quotes {
			s.chains[underlying] = append(s.chains[underlying], market.OptionQuote{
				Symbol: q.Symbol,
				Expiry: q.Expiry,
				Strike: q.Strike,
				Type:   market.OptionType(q.Type),
				OI:     q.OI,
				LTP:    q.LTP,
			})
		}
	}
	return s, nil
}

// NewStatic builds a feed directly from in-memory data (tests).
func NewStatic(candles map[string][]market.Candle, chains map[string][]market.OptionQuote) *Static {
	return &Static{
		candles: candles,
		chains:  chains,
		cursor:  make(map[string]int),
	}
}

func (s *Static) LatestCandle(_ context.Context, symbol string) (market.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bars := s.candles[symbol]
	if len(bars) == 0 {
		return market.Candle{}, fmt.Errorf("no fixture candles for %s", symbol)
	}
	i := s.cursor[symbol]
	if i >= len(bars) {
		i = len(bars) - 1
	} else {
		s.cursor[symbol] = i + 1
	}
	return bars[i], nil
}

func (s *Static) OptionChain(_ context.Context, underlying string) ([]market.OptionQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, ok := s.chains[underlying]
	if !ok {
		return nil, fmt.Errorf("no fixture chain for %s", underlying)
	}
	out := make([]market.OptionQuote, len(chain))
	copy(out, chain)
	return out, nil
}
