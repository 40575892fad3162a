package market

import (
	"fmt"
	"strings"
)

// UnderlyingRoot extracts the underlying root from a futures symbol,
// e.g. "BANKNIFTY-Nov2026-FUT" -> "BANKNIFTY".
func UnderlyingRoot(symbol string) string {
	if i := strings.IndexByte(symbol, '-'); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

// OptionSymbol formats the tradable symbol for an index option,
// e.g. ("NIFTY", 25100, Call) -> "NIFTY 25100 CE".
func OptionSymbol(underlying string, strike int64, typ OptionType) string {
	suffix := "CE"
	if typ == Put {
		suffix = "PE"
	}
	return fmt.Sprintf("%s %d %s", underlying, strike, suffix)
}
