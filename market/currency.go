package market

// Currency is an ISO 4217 code.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	KRW Currency = "KRW"
)

// QuoteKey identifies one market quote inside a snapshot, e.g. "OIS5Y" or
// "FRA3Mx6M". Keys are opaque: the engine matches them exactly and never
// parses them.
type QuoteKey string

// Entity names a credit reference entity for survival curves.
type Entity string
