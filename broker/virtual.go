package broker

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/fortresslabs/fortress/journal"
)

// Fill tags written to the trade log.
const (
	TagEntryHedge     = "ENTRY_HEDGE"
	TagEntryPremium   = "ENTRY_PREMIUM"
	TagExitCompensate = "EXIT_COMPENSATE"
	exitTagPrefix     = "EXIT_"
)

var ErrBadQuantity = errors.New("order quantity must be positive")

// Position is the net simulated holding in one instrument. EntryPrice is
// the volume-weighted average of the fills that built the position; it
// is left untouched by fills that reduce it.
type Position struct {
	Symbol     string
	Qty        int64 // signed: >0 long, <0 short
	EntryPrice float64
	LastPrice  float64 // latest mark, defaults to entry
}

// Leg describes one side of a spread order.
type Leg struct {
	Symbol string
	Qty    int64
	Price  float64
}

// FillHook observes every successfully logged fill. The scheduler uses
// it to mirror fills into the SQLite recorder.
type FillHook func(journal.Entry)

// VirtualBroker keeps simulated positions and cumulative realized P&L.
// The append-only trade log is the durable source of truth: every fill
// is logged before the in-memory mutation, and New rebuilds state by
// replaying the log front-to-back.
type VirtualBroker struct {
	mu        sync.Mutex
	log       journal.Log
	positions map[string]*Position
	realized  float64
	onFill    FillHook
	now       func() time.Time
}

// Option configures a VirtualBroker.
type Option func(*VirtualBroker)

// WithFillHook registers a hook called after each durable fill.
func WithFillHook(h FillHook) Option {
	return func(b *VirtualBroker) { b.onFill = h }
}

// withClock overrides the fill timestamp source in tests.
func withClock(now func() time.Time) Option {
	return func(b *VirtualBroker) { b.now = now }
}

// New creates a VirtualBroker and reconstructs its state from the log.
func New(l journal.Log, opts ...Option) (*VirtualBroker, error) {
	b := &VirtualBroker{
		log:       l,
		positions: make(map[string]*Position),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	var fills int
	err := l.Replay(func(e journal.Entry) error {
		b.applyFill(e.Symbol, e.Side, e.Qty, e.Price)
		b.realized += e.RealizedPL
		fills++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconstruct ledger: %w", err)
	}
	if fills > 0 {
		log.Printf("[INFO] ledger reconstructed: %d fills, %d open positions, realized %.2f",
			fills, len(b.positions), b.realized)
	}
	return b, nil
}

// PlaceOrder simulates one fill. The log append happens first; if it
// fails, no in-memory state changes and the error is returned, so the
// ledger stays reconstructible from the log.
func (b *VirtualBroker) PlaceOrder(symbol string, side journal.Side, qty int64, price float64, tag string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.placeOrderLocked(symbol, side, qty, price, tag)
}

func (b *VirtualBroker) placeOrderLocked(symbol string, side journal.Side, qty int64, price float64, tag string) error {
	if qty <= 0 {
		return fmt.Errorf("place order %s: %w: %d", symbol, ErrBadQuantity, qty)
	}

	realized := b.realizedFor(symbol, side, qty, price)
	e := journal.Entry{
		Time:       b.now(),
		Symbol:     symbol,
		Side:       side,
		Qty:        qty,
		Price:      price,
		Tag:        tag,
		RealizedPL: realized,
	}
	if err := b.log.Append(e); err != nil {
		return err
	}

	b.applyFill(symbol, side, qty, price)
	b.realized += realized
	log.Printf("[INFO] paper fill: %s %d %s @ %.2f [%s] realized %.2f", side, qty, symbol, price, tag, realized)

	if b.onFill != nil {
		b.onFill(e)
	}
	return nil
}

// realizedFor returns the P&L a fill would lock in against the current
// position: zero when it opens or extends, (price - avg) on the closed
// quantity when it reduces a long, sign-flipped for a short.
func (b *VirtualBroker) realizedFor(symbol string, side journal.Side, qty int64, price float64) float64 {
	p, ok := b.positions[symbol]
	if !ok || p.Qty == 0 {
		return 0
	}
	signed := signedQty(side, qty)
	if (p.Qty > 0) == (signed > 0) {
		return 0
	}
	closed := abs64(signed)
	if closed > abs64(p.Qty) {
		closed = abs64(p.Qty)
	}
	if p.Qty > 0 {
		return (price - p.EntryPrice) * float64(closed)
	}
	return (p.EntryPrice - price) * float64(closed)
}

// applyFill mutates the position set for one fill. Fills that extend a
// position move the volume-weighted average; fills that reduce it leave
// the average alone; fills that cross through zero re-open the remainder
// at the fill price. A position netting to zero is removed.
func (b *VirtualBroker) applyFill(symbol string, side journal.Side, qty int64, price float64) {
	signed := signedQty(side, qty)

	p, ok := b.positions[symbol]
	if !ok {
		p = &Position{Symbol: symbol, EntryPrice: price, LastPrice: price}
		b.positions[symbol] = p
	}

	switch {
	case p.Qty == 0:
		p.Qty = signed
		p.EntryPrice = price
	case (p.Qty > 0) == (signed > 0):
		oldAbs, addAbs := abs64(p.Qty), abs64(signed)
		p.EntryPrice = (p.EntryPrice*float64(oldAbs) + price*float64(addAbs)) / float64(oldAbs+addAbs)
		p.Qty += signed
	case abs64(signed) > abs64(p.Qty):
		p.Qty += signed
		p.EntryPrice = price
	default:
		p.Qty += signed
	}
	p.LastPrice = price

	if p.Qty == 0 {
		delete(b.positions, symbol)
	}
}

// ExecuteSpread places the hedge leg (BUY) before the premium leg (SELL)
// so an interruption between the two leaves a long hedge in the log,
// never a naked short. If the premium leg fails to log, the hedge is
// unwound with a compensating close at its fill price and the error is
// returned.
func (b *VirtualBroker) ExecuteSpread(hedge, premium Leg) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.placeOrderLocked(hedge.Symbol, journal.Buy, hedge.Qty, hedge.Price, TagEntryHedge); err != nil {
		return fmt.Errorf("hedge leg: %w", err)
	}
	if err := b.placeOrderLocked(premium.Symbol, journal.Sell, premium.Qty, premium.Price, TagEntryPremium); err != nil {
		if cerr := b.placeOrderLocked(hedge.Symbol, journal.Sell, hedge.Qty, hedge.Price, TagExitCompensate); cerr != nil {
			log.Printf("[ERROR] compensating close of hedge %s failed, leg left open: %v", hedge.Symbol, cerr)
		}
		return fmt.Errorf("premium leg: %w", err)
	}
	return nil
}

// UpdateMark records the latest traded price for a symbol. Unknown or
// already-closed symbols are ignored.
func (b *VirtualBroker) UpdateMark(symbol string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.positions[symbol]; ok {
		p.LastPrice = price
	}
}

// MarkToMarket returns the unrealized P&L of all open positions at their
// latest marks.
func (b *VirtualBroker) MarkToMarket() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.markToMarketLocked()
}

func (b *VirtualBroker) markToMarketLocked() float64 {
	var mtm float64
	for _, p := range b.positions {
		if p.Qty > 0 {
			mtm += (p.LastPrice - p.EntryPrice) * float64(p.Qty)
		} else {
			mtm += (p.EntryPrice - p.LastPrice) * float64(-p.Qty)
		}
	}
	return mtm
}

// RealizedPL returns cumulative realized P&L, including replayed fills.
func (b *VirtualBroker) RealizedPL() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.realized
}

// PL returns realized and mark-to-market P&L as one consistent
// snapshot, the pair the risk monitor checks against its daily limits.
// Reading them through separate calls could interleave with a fill that
// converts unrealized into realized P&L between the two reads.
func (b *VirtualBroker) PL() (realized, markToMarket float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.realized, b.markToMarketLocked()
}

// Position returns a copy of the active position for symbol, if any.
func (b *VirtualBroker) Position(symbol string) (Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns copies of all active positions sorted by symbol.
func (b *VirtualBroker) Positions() []Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// CloseAll squares off every open position at its last known mark with a
// tag derived from reason, e.g. EXIT_SL_HIT. Symbols are snapshotted and
// sorted first so the log order is deterministic.
func (b *VirtualBroker) CloseAll(reason string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	symbols := make([]string, 0, len(b.positions))
	for s := range b.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	tag := exitTagPrefix + reason
	for _, s := range symbols {
		p := b.positions[s]
		side, qty := journal.Sell, p.Qty
		if p.Qty < 0 {
			side, qty = journal.Buy, -p.Qty
		}
		if err := b.placeOrderLocked(s, side, qty, p.LastPrice, tag); err != nil {
			return fmt.Errorf("close %s: %w", s, err)
		}
	}
	return nil
}

func signedQty(side journal.Side, qty int64) int64 {
	if side == journal.Sell {
		return -qty
	}
	return qty
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
