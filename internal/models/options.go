package models

import "time"

// OptionSide identifies the contract side.
type OptionSide string

const (
	SideCall OptionSide = "call"
	SidePut  OptionSide = "put"
)

// OptionContract represents a single cleaned contract from the options chain.
type OptionContract struct {
	Symbol       string
	Underlying   string
	Side         OptionSide
	Strike       float64
	Expiration   time.Time
	Bid          float64
	Ask          float64
	IV           float64
	Delta        float64
	Gamma        float64
	Volume       int64
	OpenInterest int64
}

// Mid returns the bid/ask midpoint.
func (c OptionContract) Mid() float64 {
	return (c.Bid + c.Ask) / 2
}

// Spread returns the absolute bid/ask spread.
func (c OptionContract) Spread() float64 {
	return c.Ask - c.Bid
}

// SpreadPercent returns the spread as a percentage of the midpoint.
func (c OptionContract) SpreadPercent() float64 {
	mid := c.Mid()
	if mid == 0 {
		return 0
	}
	return c.Spread() / mid * 100
}

// OptionChain holds the contracts for one underlying.
type OptionChain struct {
	Symbol    string
	SpotPrice float64
	FetchedAt time.Time
	Contracts []OptionContract
}

// Expiries returns the distinct expirations present in the chain, ascending.
func (ch *OptionChain) Expiries() []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, c := range ch.Contracts {
		if !seen[c.Expiration] {
			seen[c.Expiration] = true
			out = append(out, c.Expiration)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Before(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// ExpiryVariance is the forward implied variance derived for one expiry.
type ExpiryVariance struct {
	Expiry          time.Time
	ForwardVariance float64 // mean of IV^2 over near-ATM contracts
	Contracts       int
	TradingDays     int // trading days from now until expiry
}
