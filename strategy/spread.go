package strategy

import (
	"github.com/fortresslabs/fortress/broker"
	"github.com/fortresslabs/fortress/market"
)

// Spread is a two-leg credit structure: the nearer ATM strike is sold
// for premium, the farther out-of-the-money strike of the same option
// type is bought as the hedge.
type Spread struct {
	Hedge   broker.Leg // long protection, executed first
	Premium broker.Leg // short premium leg
}

// BuildSpread converts a signal into its two legs.
//
//   - BUY_PUT_SPREAD (bullish): sell the ATM put, buy the put one width
//     below.
//   - SELL_CALL_SPREAD (bearish): sell the ATM call, buy the call one
//     width above.
//
// Leg prices are zero at construction; the simulated fill price is
// whatever the orchestrator has for the option at execution time.
func (e *Engine) BuildSpread(sig *Signal) Spread {
	p := e.cfg.ParamsFor(sig.Underlying)

	switch sig.Action {
	case BuyPutSpread:
		return Spread{
			Hedge: broker.Leg{
				Symbol: market.OptionSymbol(sig.Underlying, sig.ATMStrike-p.SpreadWidth, market.Put),
				Qty:    p.LotSize,
			},
			Premium: broker.Leg{
				Symbol: market.OptionSymbol(sig.Underlying, sig.ATMStrike, market.Put),
				Qty:    p.LotSize,
			},
		}
	case SellCallSpread:
		return Spread{
			Hedge: broker.Leg{
				Symbol: market.OptionSymbol(sig.Underlying, sig.ATMStrike+p.SpreadWidth, market.Call),
				Qty:    p.LotSize,
			},
			Premium: broker.Leg{
				Symbol: market.OptionSymbol(sig.Underlying, sig.ATMStrike, market.Call),
				Qty:    p.LotSize,
			},
		}
	}
	return Spread{}
}
