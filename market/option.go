package market

// OptionType distinguishes calls from puts in option-chain data.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// OptionQuote is one row of an option-chain snapshot.
type OptionQuote struct {
	Symbol     string
	Expiry     string
	Strike     float64
	Type       OptionType
	LTP        float64
	OI         float64
	ChangeInOI float64
	Volume     int64
	IV         float64
}
