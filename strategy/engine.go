package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/fortresslabs/fortress/id"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/zone"
)

// Action names the credit structure to put on.
type Action string

const (
	SellCallSpread Action = "SELL_CALL_SPREAD" // bearish: supply sweep rejected down
	BuyPutSpread   Action = "BUY_PUT_SPREAD"   // bullish: demand sweep rejected up
)

// Signal is an entry intent emitted by the engine: at most one per
// candle evaluation.
type Signal struct {
	ID         string
	Action     Action
	Symbol     string
	Underlying string
	ATMStrike  int64
	ZoneID     string
	Price      float64 // candle close at evaluation
	Reason     string
}

// Params are the per-underlying option parameters.
type Params struct {
	StrikeStep  int64 // ATM rounding step
	SpreadWidth int64 // distance of the hedge strike from ATM
	LotSize     int64
}

// Override binds Params to underlyings whose root contains Match.
type Override struct {
	Match  string
	Params Params
}

// Config resolves option parameters per underlying. Overrides are tried
// in order, first substring match wins, then Default applies.
type Config struct {
	Overrides []Override
	Default   Params
}

// DefaultConfig mirrors NSE index option conventions: BANKNIFTY strikes
// step by 100 with a 500-point hedge, everything else 50/200.
func DefaultConfig() Config {
	return Config{
		Overrides: []Override{
			{Match: "BANKNIFTY", Params: Params{StrikeStep: 100, SpreadWidth: 500, LotSize: 50}},
		},
		Default: Params{StrikeStep: 50, SpreadWidth: 200, LotSize: 50},
	}
}

// ParamsFor returns the option parameters for an underlying root.
func (c Config) ParamsFor(underlying string) Params {
	for _, o := range c.Overrides {
		if strings.Contains(underlying, o.Match) {
			return o.Params
		}
	}
	return c.Default
}

// ATMStrike rounds price to the nearest multiple of step. Ties at
// exactly half a step round away from zero, i.e. up for prices.
func ATMStrike(price float64, step int64) int64 {
	return int64(math.Round(price/float64(step))) * step
}

// Engine evaluates candles against the zone store and a caller-supplied
// sentiment flag. It holds no per-candle state; dedup of re-observed
// bars is the scheduler's job.
type Engine struct {
	zones *zone.Store
	cfg   Config
}

// NewEngine creates an Engine over the given zone store.
func NewEngine(zones *zone.Store, cfg Config) *Engine {
	return &Engine{zones: zones, cfg: cfg}
}

// CheckEntry evaluates one completed candle for a sweep-and-reject
// entry. Zones are scanned in stored order and the first confirmed
// match wins:
//
//   - SUPPLY zone: high sweeps above range_high, close rejects back
//     below it; confirmed only by BEARISH sentiment.
//   - DEMAND zone: low sweeps below range_low, close rejects back above
//     it; confirmed only by BULLISH sentiment.
//
// A sweep without sentiment confirmation is skipped, not an error. A nil
// signal with nil error means no entry this bar.
func (e *Engine) CheckEntry(c market.Candle, sentiment Sentiment) (*Signal, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	underlying := market.UnderlyingRoot(c.Symbol)
	step := e.cfg.ParamsFor(underlying).StrikeStep

	for _, z := range e.zones.All() {
		if !z.Active() || z.Symbol != c.Symbol {
			continue
		}

		switch z.Type {
		case zone.Supply:
			level := z.RangeHigh
			if c.High > level && c.Close < level && sentiment == Bearish {
				return e.newSignal(SellCallSpread, c, z, underlying, step,
					fmt.Sprintf("bearish sweep of %s rejected at %.2f", z.ID, level)), nil
			}
		case zone.Demand:
			level := z.RangeLow
			if c.Low < level && c.Close > level && sentiment == Bullish {
				return e.newSignal(BuyPutSpread, c, z, underlying, step,
					fmt.Sprintf("bullish sweep of %s rejected at %.2f", z.ID, level)), nil
			}
		}
	}
	return nil, nil
}

func (e *Engine) newSignal(action Action, c market.Candle, z zone.Zone, underlying string, step int64, reason string) *Signal {
	return &Signal{
		ID:         id.New(),
		Action:     action,
		Symbol:     c.Symbol,
		Underlying: underlying,
		ATMStrike:  ATMStrike(c.Close, step),
		ZoneID:     z.ID,
		Price:      c.Close,
		Reason:     reason,
	}
}
