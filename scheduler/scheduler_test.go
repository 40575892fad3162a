package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortresslabs/fortress/broker"
	"github.com/fortresslabs/fortress/feed"
	"github.com/fortresslabs/fortress/journal"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/recorder"
	"github.com/fortresslabs/fortress/risk"
	"github.com/fortresslabs/fortress/strategy"
	"github.com/fortresslabs/fortress/zone"
)

type memLog struct {
	entries []journal.Entry
}

func (l *memLog) Append(e journal.Entry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *memLog) Replay(fn func(journal.Entry) error) error {
	for _, e := range l.entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (l *memLog) Close() error { return nil }

type memNotifier struct {
	sent []string
}

func (n *memNotifier) Send(text string) error {
	n.sent = append(n.sent, text)
	return nil
}

type retryNotifier struct {
	memNotifier
	retried int
}

func (n *retryNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	n.retried++
	n.sent = append(n.sent, text)
	return nil
}

type fixture struct {
	sched *Scheduler
	log   *memLog
	notes *memNotifier
	vb    *broker.VirtualBroker
}

// bearishChain reads bearish: PCR = 500/2000 = 0.25.
func bearishChain() []market.OptionQuote {
	return []market.OptionQuote{
		{Symbol: "NIFTY 25000 CE", Type: market.Call, OI: 2000},
		{Symbol: "NIFTY 25000 PE", Type: market.Put, OI: 500},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	l := &memLog{}
	vb, err := broker.New(l)
	require.NoError(t, err)

	store := zone.NewStore([]zone.Zone{
		{
			ID:        "z-supply-1",
			Symbol:    "NIFTY-FUT",
			Type:      zone.Supply,
			RangeHigh: 25200,
			RangeLow:  25150,
			Status:    zone.StatusActive,
		},
	})
	engine := strategy.NewEngine(store, strategy.DefaultConfig())
	limits := risk.Limits{DailyTarget: 1000, DailyStop: -750}

	src := feed.NewStatic(nil, map[string][]market.OptionQuote{"NIFTY": bearishChain()})
	notes := &memNotifier{}

	s := New(context.Background(), vb, engine, store, limits,
		src, src, recorder.NewNoop(), notes, []string{"NIFTY"})
	return &fixture{sched: s, log: l, notes: notes, vb: vb}
}

func sweepBar(ts time.Time) market.Candle {
	return market.Candle{
		Symbol: "NIFTY-FUT",
		Time:   ts,
		Open:   25190,
		High:   25230,
		Low:    25170,
		Close:  25180,
	}
}

func TestEvaluateCandleExecutesSpreadOnce(t *testing.T) {
	fx := newFixture(t)
	fx.sched.refreshSentiment()

	bar := sweepBar(time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC))
	fx.sched.evaluateCandle(bar)

	// Both legs on the book, one alert out.
	require.Len(t, fx.log.entries, 2)
	assert.Equal(t, broker.TagEntryHedge, fx.log.entries[0].Tag)
	assert.Equal(t, broker.TagEntryPremium, fx.log.entries[1].Tag)
	assert.Len(t, fx.vb.Positions(), 2)
	assert.Len(t, fx.notes.sent, 1)

	// The same bar re-observed by a later poll must not re-enter.
	fx.sched.evaluateCandle(bar)
	assert.Len(t, fx.log.entries, 2)

	// A new bar is a fresh evaluation.
	fx.sched.evaluateCandle(sweepBar(time.Date(2026, 8, 31, 10, 16, 0, 0, time.UTC)))
	assert.Len(t, fx.log.entries, 4)
}

func TestEvaluateCandleNeutralWithoutSentiment(t *testing.T) {
	fx := newFixture(t)

	// No sentiment refresh has run: the flag defaults to neutral and the
	// sweep is not confirmed.
	fx.sched.evaluateCandle(sweepBar(time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC)))
	assert.Empty(t, fx.log.entries)
	assert.Empty(t, fx.notes.sent)
}

func TestOnTickBreachClosesAllAndHalts(t *testing.T) {
	fx := newFixture(t)
	fx.sched.refreshSentiment()
	fx.sched.evaluateCandle(sweepBar(time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC)))
	require.Len(t, fx.vb.Positions(), 2)

	// Premium leg was sold at the fixture price of zero; marking it at 20
	// puts the short 50 lot at -1000, through the -750 stop.
	fx.sched.OnTick(market.Tick{
		Symbol: "NIFTY 25200 CE",
		Time:   time.Date(2026, 8, 31, 10, 16, 0, 0, time.UTC),
		LTP:    20,
	})

	assert.True(t, fx.sched.Halted())
	assert.Empty(t, fx.vb.Positions())

	// Exit fills carry the breach reason.
	exits := fx.log.entries[2:]
	require.Len(t, exits, 2)
	for _, e := range exits {
		assert.Equal(t, "EXIT_SL_HIT", e.Tag)
	}

	// Breach alert on top of the entry alert, and only once.
	require.Len(t, fx.notes.sent, 2)
	assert.Contains(t, fx.notes.sent[1], "SL_HIT")

	fills := len(fx.log.entries)
	fx.sched.OnTick(market.Tick{Symbol: "NIFTY 25200 CE", LTP: 25})
	assert.Len(t, fx.log.entries, fills, "halted scheduler re-ran the liquidation")

	// No new entries for the rest of the day.
	fx.sched.evaluateCandle(sweepBar(time.Date(2026, 8, 31, 10, 17, 0, 0, time.UTC)))
	assert.Len(t, fx.log.entries, fills)
}

func TestOnTickUpdatesMarks(t *testing.T) {
	fx := newFixture(t)
	fx.sched.refreshSentiment()
	fx.sched.evaluateCandle(sweepBar(time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC)))

	// A small move updates the mark without tripping a limit.
	fx.sched.OnTick(market.Tick{Symbol: "NIFTY 25200 CE", LTP: 2})
	assert.False(t, fx.sched.Halted())

	p, ok := fx.vb.Position("NIFTY 25200 CE")
	require.True(t, ok)
	assert.Equal(t, 2.0, p.LastPrice)
}

func TestAlertsGoThroughRetryingSender(t *testing.T) {
	l := &memLog{}
	vb, err := broker.New(l)
	require.NoError(t, err)

	store := zone.NewStore([]zone.Zone{
		{ID: "z-supply-1", Symbol: "NIFTY-FUT", Type: zone.Supply, RangeHigh: 25200, RangeLow: 25150},
	})
	src := feed.NewStatic(nil, map[string][]market.OptionQuote{"NIFTY": bearishChain()})
	rn := &retryNotifier{}

	s := New(context.Background(), vb, strategy.NewEngine(store, strategy.DefaultConfig()), store,
		risk.Limits{DailyTarget: 1000, DailyStop: -750}, src, src, recorder.NewNoop(), rn, []string{"NIFTY"})

	s.refreshSentiment()
	s.evaluateCandle(sweepBar(time.Date(2026, 8, 31, 10, 15, 0, 0, time.UTC)))

	require.Len(t, rn.sent, 1)
	assert.Equal(t, 1, rn.retried, "signal alert bypassed the retrying sender")
}

func TestSwapZonesChangesWatchedSymbols(t *testing.T) {
	fx := newFixture(t)

	fx.sched.SwapZones([]zone.Zone{
		{ID: "z-new", Symbol: "BANKNIFTY-FUT", Type: zone.Demand, RangeHigh: 55000, RangeLow: 54800},
	})
	assert.Equal(t, []string{"BANKNIFTY-FUT"}, fx.sched.zones.Symbols())
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	fx := newFixture(t)
	assert.Error(t, fx.sched.Register("not-a-cron", "5 * * * * *"))
	assert.NoError(t, fx.sched.Register("0 */3 * * * *", "5 * * * * *"))
}
