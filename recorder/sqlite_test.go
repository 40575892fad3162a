package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortresslabs/fortress/journal"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/zone"
)

func newTestRecorder(t *testing.T) *SQLite {
	t.Helper()
	r, err := NewSQLite(filepath.Join(t.TempDir(), "fortress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, r *SQLite, table string) int {
	t.Helper()
	var n int
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRecordTick(t *testing.T) {
	r := newTestRecorder(t)

	err := r.RecordTick(market.Tick{
		Symbol: "NIFTY-FUT",
		Time:   time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC),
		LTP:    25180.5,
		Volume: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, r, "ticks"))
}

func TestRecordCandleUpsertsByBar(t *testing.T) {
	r := newTestRecorder(t)

	c := market.Candle{
		Symbol: "NIFTY-FUT",
		Time:   time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC),
		Open:   25190, High: 25230, Low: 25170, Close: 25180,
	}
	require.NoError(t, r.RecordCandle(c))
	c.Close = 25185 // late correction of the same bar
	require.NoError(t, r.RecordCandle(c))

	assert.Equal(t, 1, count(t, r, "candles"))

	var closePx float64
	require.NoError(t, r.db.QueryRow(
		"SELECT close FROM candles WHERE symbol = ?", c.Symbol).Scan(&closePx))
	assert.Equal(t, 25185.0, closePx)
}

func TestRecordOptionChain(t *testing.T) {
	r := newTestRecorder(t)

	chain := []market.OptionQuote{
		{Symbol: "NIFTY 25000 CE", Strike: 25000, Type: market.Call, OI: 2000, LTP: 180},
		{Symbol: "NIFTY 25000 PE", Strike: 25000, Type: market.Put, OI: 500, LTP: 40},
	}
	require.NoError(t, r.RecordOptionChain("NIFTY", chain))
	assert.Equal(t, 2, count(t, r, "option_chain_snapshots"))
}

func TestRecordZonesAndFills(t *testing.T) {
	r := newTestRecorder(t)

	zones := []zone.Zone{
		{ID: "z1", Symbol: "NIFTY-FUT", Type: zone.Supply, RangeHigh: 25250, RangeLow: 25180},
	}
	require.NoError(t, r.RecordZones(zones))
	assert.Equal(t, 1, count(t, r, "zones"))

	fill := journal.Entry{
		Time:   time.Date(2026, 8, 31, 10, 16, 0, 0, time.UTC),
		Symbol: "NIFTY 25000 CE",
		Side:   journal.Sell,
		Qty:    50,
		Price:  180,
		Tag:    "ENTRY_PREMIUM",
	}
	require.NoError(t, r.RecordFill(fill))
	assert.Equal(t, 1, count(t, r, "fills"))
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoop()
	assert.NoError(t, n.RecordTick(market.Tick{}))
	assert.NoError(t, n.RecordCandle(market.Candle{}))
	assert.NoError(t, n.RecordOptionChain("NIFTY", nil))
	assert.NoError(t, n.RecordZones(nil))
	assert.NoError(t, n.RecordFill(journal.Entry{}))
	assert.NoError(t, n.Close())
}
