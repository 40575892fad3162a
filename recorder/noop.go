package recorder

import (
	"github.com/fortresslabs/fortress/journal"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/zone"
)

// Noop is used when no database is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) RecordTick(_ market.Tick) error                                 { return nil }
func (n *Noop) RecordCandle(_ market.Candle) error                             { return nil }
func (n *Noop) RecordOptionChain(_ string, _ []market.OptionQuote) error       { return nil }
func (n *Noop) RecordZones(_ []zone.Zone) error                                { return nil }
func (n *Noop) RecordFill(_ journal.Entry) error                               { return nil }
func (n *Noop) Close() error                                                   { return nil }
