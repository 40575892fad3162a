package market

import "time"

// Tick is a single live market update from the feed collaborator.
type Tick struct {
	Symbol string
	Time   time.Time
	LTP    float64
	Volume int64
	OI     float64
}
