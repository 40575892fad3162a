package market

import (
	"errors"
	"fmt"
	"time"
)

// Candle is one completed OHLC bar for an instrument.
type Candle struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

var ErrInvalidCandle = errors.New("invalid candle")

// Validate checks the bar for structural sanity before it enters the
// signal path. Invariant: low <= open,close <= high.
func (c Candle) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidCandle)
	}
	if c.High < c.Low {
		return fmt.Errorf("%w: high %.2f below low %.2f", ErrInvalidCandle, c.High, c.Low)
	}
	if c.Open < c.Low || c.Open > c.High {
		return fmt.Errorf("%w: open %.2f outside [%.2f, %.2f]", ErrInvalidCandle, c.Open, c.Low, c.High)
	}
	if c.Close < c.Low || c.Close > c.High {
		return fmt.Errorf("%w: close %.2f outside [%.2f, %.2f]", ErrInvalidCandle, c.Close, c.Low, c.High)
	}
	return nil
}

// BarKey identifies the (symbol, bar-timestamp) pair. The candle loop
// uses it to process each completed bar exactly once.
func (c Candle) BarKey() string {
	return c.Symbol + "|" + c.Time.UTC().Format(time.RFC3339)
}
