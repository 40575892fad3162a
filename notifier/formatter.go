package notifier

import (
	"fmt"

	"github.com/fortresslabs/fortress/risk"
	"github.com/fortresslabs/fortress/strategy"
)

// FormatSignalAlert renders an entry signal for operators.
func FormatSignalAlert(sig *strategy.Signal) string {
	return fmt.Sprintf("SIGNAL %s on %s @ %.2f\nzone: %s\nATM strike: %d\n%s",
		sig.Action, sig.Symbol, sig.Price, sig.ZoneID, sig.ATMStrike, sig.Reason)
}

// FormatRiskAlert renders a daily limit breach and the liquidation that
// followed it.
func FormatRiskAlert(d risk.Decision, closed int) string {
	return fmt.Sprintf("RISK %s: %s\nclosed %d position(s), trading halted for the day",
		d.Signal, d.Reason, closed)
}
