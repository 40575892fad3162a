package risk

import "fmt"

// Signal is the outcome of a daily P&L check.
type Signal string

const (
	None      Signal = ""
	TargetHit Signal = "TARGET_HIT"
	StopHit   Signal = "SL_HIT"
)

// Limits holds the daily circuit-breaker thresholds in account currency.
// DailyStop is negative: it is the loss floor.
type Limits struct {
	DailyTarget float64
	DailyStop   float64
}

// Decision carries the check outcome plus the numbers behind it, for
// operator alerts.
type Decision struct {
	Signal Signal
	Total  float64
	Reason string
}

// Breached reports whether either limit was hit.
func (d Decision) Breached() bool { return d.Signal != None }

// Check compares realized plus mark-to-market P&L against the limits.
// Both comparisons are inclusive at the boundary.
func Check(l Limits, realized, markToMarket float64) Decision {
	total := realized + markToMarket
	d := Decision{Total: total}
	switch {
	case total >= l.DailyTarget:
		d.Signal = TargetHit
		d.Reason = fmt.Sprintf("total P&L %.2f >= daily target %.2f", total, l.DailyTarget)
	case total <= l.DailyStop:
		d.Signal = StopHit
		d.Reason = fmt.Sprintf("total P&L %.2f <= daily stop %.2f", total, l.DailyStop)
	}
	return d
}
