package strategy

import "github.com/fortresslabs/fortress/market"

// Sentiment is the three-way directional flag derived from option open
// interest. It is refreshed on a slower cadence than candle evaluation
// and cached between calls by the scheduler.
type Sentiment string

const (
	Bullish Sentiment = "BULLISH"
	Bearish Sentiment = "BEARISH"
	Neutral Sentiment = "NEUTRAL"
)

// PCR interpretation: heavy put writing reads bullish, heavy call
// writing reads bearish.
const (
	pcrBullishAbove = 1.2
	pcrBearishBelow = 0.7
)

// ClassifySentiment reduces an option-chain snapshot to a sentiment flag
// via the put/call open-interest ratio. A chain with zero call OI yields
// PCR 1.0 (neutral) rather than dividing by zero.
func ClassifySentiment(chain []market.OptionQuote) (Sentiment, float64) {
	var callOI, putOI float64
	for _, q := range chain {
		switch q.Type {
		case market.Call:
			callOI += q.OI
		case market.Put:
			putOI += q.OI
		}
	}

	pcr := 1.0
	if callOI > 0 {
		pcr = putOI / callOI
	}

	switch {
	case pcr > pcrBullishAbove:
		return Bullish, pcr
	case pcr < pcrBearishBelow:
		return Bearish, pcr
	default:
		return Neutral, pcr
	}
}
