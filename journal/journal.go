package journal

import "time"

// Side of a simulated fill.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the closing side for a fill of this side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Entry is one fill in the append-only trade log. RealizedPL is non-zero
// only for fills that reduce an existing position.
type Entry struct {
	Time       time.Time
	Symbol     string
	Side       Side
	Qty        int64
	Price      float64
	Tag        string
	RealizedPL float64
}

// Log is the durable record of simulated fills. It is append-only and
// replayable in file order; the ledger's in-memory state is a cache
// rebuilt from it.
type Log interface {
	Append(Entry) error
	Replay(func(Entry) error) error
	Close() error
}
