package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortresslabs/fortress/market"
)

func TestLatestCandleAdvancesThenRepeats(t *testing.T) {
	bars := []market.Candle{
		{Symbol: "NIFTY-FUT", Time: time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2},
		{Symbol: "NIFTY-FUT", Time: time.Date(2026, 8, 31, 10, 16, 0, 0, time.UTC), Open: 2, High: 3, Low: 2, Close: 3},
	}
	s := NewStatic(map[string][]market.Candle{"NIFTY-FUT": bars}, nil)
	ctx := context.Background()

	c1, err := s.LatestCandle(ctx, "NIFTY-FUT")
	require.NoError(t, err)
	c2, err := s.LatestCandle(ctx, "NIFTY-FUT")
	require.NoError(t, err)
	assert.True(t, c2.Time.After(c1.Time))

	// Exhausted fixtures repeat the last bar, like a live poll between
	// bar closes would.
	c3, err := s.LatestCandle(ctx, "NIFTY-FUT")
	require.NoError(t, err)
	assert.Equal(t, c2.BarKey(), c3.BarKey())
}

func TestLatestCandleUnknownSymbol(t *testing.T) {
	s := NewStatic(nil, nil)
	_, err := s.LatestCandle(context.Background(), "NIFTY-FUT")
	assert.Error(t, err)
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	content := `{
		"candles": {
			"NIFTY-FUT": [
				{"time": "2026-08-31T10:15:00Z", "open": 25190, "high": 25230, "low": 25170, "close": 25180, "volume": 1000}
			]
		},
		"chains": {
			"NIFTY": [
				{"symbol": "NIFTY 25000 CE", "strike": 25000, "option_type": "CALL", "oi": 2000, "ltp": 180},
				{"symbol": "NIFTY 25000 PE", "strike": 25000, "option_type": "PUT", "oi": 500, "ltp": 40}
			]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := LoadStatic(path)
	require.NoError(t, err)

	c, err := s.LatestCandle(context.Background(), "NIFTY-FUT")
	require.NoError(t, err)
	assert.Equal(t, "NIFTY-FUT", c.Symbol)
	assert.Equal(t, 25230.0, c.High)

	chain, err := s.OptionChain(context.Background(), "NIFTY")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, market.Call, chain[0].Type)
	assert.Equal(t, 2000.0, chain[0].OI)
}
