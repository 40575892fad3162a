package market

import (
	"testing"
	"time"
)

func TestCandleValidate(t *testing.T) {
	good := Candle{Symbol: "NIFTY-FUT", High: 105, Low: 94, Open: 96, Close: 95}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid candle rejected: %v", err)
	}

	tests := []struct {
		name string
		c    Candle
	}{
		{"empty symbol", Candle{High: 105, Low: 94, Open: 96, Close: 95}},
		{"high below low", Candle{Symbol: "NIFTY-FUT", High: 94, Low: 105, Open: 96, Close: 95}},
		{"open above high", Candle{Symbol: "NIFTY-FUT", High: 105, Low: 94, Open: 106, Close: 95}},
		{"close below low", Candle{Symbol: "NIFTY-FUT", High: 105, Low: 94, Open: 96, Close: 93}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBarKey(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	c := Candle{Symbol: "NIFTY-FUT", Time: time.Date(2026, 8, 31, 10, 15, 0, 0, ist)}
	want := "NIFTY-FUT|2026-08-31T04:45:00Z"
	if got := c.BarKey(); got != want {
		t.Fatalf("bar key: got %q want %q", got, want)
	}
}

func TestUnderlyingRoot(t *testing.T) {
	tests := []struct{ in, want string }{
		{"BANKNIFTY-Nov2026-FUT", "BANKNIFTY"},
		{"NIFTY-FUT", "NIFTY"},
		{"NIFTY", "NIFTY"},
	}
	for _, tt := range tests {
		if got := UnderlyingRoot(tt.in); got != tt.want {
			t.Errorf("UnderlyingRoot(%q): got %q want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptionSymbol(t *testing.T) {
	if got := OptionSymbol("NIFTY", 25100, Call); got != "NIFTY 25100 CE" {
		t.Fatalf("call symbol: got %q", got)
	}
	if got := OptionSymbol("BANKNIFTY", 48800, Put); got != "BANKNIFTY 48800 PE" {
		t.Fatalf("put symbol: got %q", got)
	}
}
