package recorder

import (
	"github.com/fortresslabs/fortress/journal"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/zone"
)

// Recorder persists market data and fills for offline analysis. The
// trade log stays the source of truth for ledger state; the recorder is
// a mirror for queries and dashboards.
type Recorder interface {
	RecordTick(t market.Tick) error
	RecordCandle(c market.Candle) error
	RecordOptionChain(underlying string, chain []market.OptionQuote) error
	RecordZones(zones []zone.Zone) error
	RecordFill(e journal.Entry) error
	Close() error
}
