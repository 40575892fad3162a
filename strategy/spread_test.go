package strategy

import (
	"testing"

	"github.com/fortresslabs/fortress/zone"
)

func TestBuildSpreadBullish(t *testing.T) {
	e := NewEngine(zone.NewStore(nil), DefaultConfig())

	sp := e.BuildSpread(&Signal{
		Action:     BuyPutSpread,
		Underlying: "NIFTY",
		ATMStrike:  25100,
	})

	if sp.Premium.Symbol != "NIFTY 25100 PE" {
		t.Fatalf("premium leg: got %s", sp.Premium.Symbol)
	}
	if sp.Hedge.Symbol != "NIFTY 24900 PE" {
		t.Fatalf("hedge leg: got %s", sp.Hedge.Symbol)
	}
	if sp.Premium.Qty != 50 || sp.Hedge.Qty != 50 {
		t.Fatalf("lot sizes: hedge %d premium %d", sp.Hedge.Qty, sp.Premium.Qty)
	}
}

func TestBuildSpreadBearish(t *testing.T) {
	e := NewEngine(zone.NewStore(nil), DefaultConfig())

	sp := e.BuildSpread(&Signal{
		Action:     SellCallSpread,
		Underlying: "BANKNIFTY",
		ATMStrike:  48800,
	})

	if sp.Premium.Symbol != "BANKNIFTY 48800 CE" {
		t.Fatalf("premium leg: got %s", sp.Premium.Symbol)
	}
	if sp.Hedge.Symbol != "BANKNIFTY 49300 CE" {
		t.Fatalf("hedge leg: got %s", sp.Hedge.Symbol)
	}
}
