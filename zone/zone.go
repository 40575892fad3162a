package zone

import (
	"errors"
	"fmt"
)

// Type tags the directional meaning of a zone.
type Type string

const (
	Supply Type = "SUPPLY"
	Demand Type = "DEMAND"
)

// StatusActive marks zones that participate in entry checks.
const StatusActive = "ACTIVE"

// Zone is a price band produced by the external analysis job. Zones are
// never mutated in-process; refreshes replace the whole set.
type Zone struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Type      Type    `json:"type"`
	Timeframe string  `json:"timeframe"`
	RangeHigh float64 `json:"range_high"`
	RangeLow  float64 `json:"range_low"`
	Status    string  `json:"status"`
	Note      string  `json:"note"`
}

var ErrInvalidZone = errors.New("invalid zone")

// Validate checks required fields at the boundary where zones enter the
// engine.
func (z Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidZone)
	}
	if z.Symbol == "" {
		return fmt.Errorf("%w: %s: empty symbol", ErrInvalidZone, z.ID)
	}
	if z.Type != Supply && z.Type != Demand {
		return fmt.Errorf("%w: %s: type %q", ErrInvalidZone, z.ID, z.Type)
	}
	if z.RangeHigh < z.RangeLow {
		return fmt.Errorf("%w: %s: range_high %.2f below range_low %.2f",
			ErrInvalidZone, z.ID, z.RangeHigh, z.RangeLow)
	}
	return nil
}

// Active reports whether the zone participates in entry checks. Zones
// without a status field are treated as active.
func (z Zone) Active() bool {
	return z.Status == "" || z.Status == StatusActive
}
