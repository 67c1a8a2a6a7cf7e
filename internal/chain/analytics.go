package chain

import (
	"sort"

	"decay-monitor/internal/models"
)

// ChainAnalytics summarizes a cleaned chain for reporting. It has no role in
// the simulation input, only in the chain display.
type ChainAnalytics struct {
	Contracts     int
	Calls         int
	Puts          int
	AverageIV     float64
	WidestSpread  float64 // widest spread as percent of mid
	OIByStrike    []StrikeOI
	GammaExposure []StrikeGamma
}

// StrikeOI is total open interest at a strike.
type StrikeOI struct {
	Strike float64
	OI     int64
}

// StrikeGamma is aggregate gamma exposure (gamma x open interest) at a strike.
type StrikeGamma struct {
	Strike   float64
	Exposure float64
}

// Analyze computes display statistics over a cleaned chain.
func Analyze(cleaned *models.OptionChain) ChainAnalytics {
	a := ChainAnalytics{Contracts: len(cleaned.Contracts)}

	oi := make(map[float64]int64)
	gamma := make(map[float64]float64)
	var ivSum float64

	for _, c := range cleaned.Contracts {
		switch c.Side {
		case models.SideCall:
			a.Calls++
		case models.SidePut:
			a.Puts++
		}
		ivSum += c.IV
		if sp := c.SpreadPercent(); sp > a.WidestSpread {
			a.WidestSpread = sp
		}
		oi[c.Strike] += c.OpenInterest
		gamma[c.Strike] += c.Gamma * float64(c.OpenInterest)
	}

	if a.Contracts > 0 {
		a.AverageIV = ivSum / float64(a.Contracts)
	}

	for strike, total := range oi {
		a.OIByStrike = append(a.OIByStrike, StrikeOI{Strike: strike, OI: total})
	}
	sort.Slice(a.OIByStrike, func(i, j int) bool { return a.OIByStrike[i].OI > a.OIByStrike[j].OI })
	if len(a.OIByStrike) > 5 {
		a.OIByStrike = a.OIByStrike[:5]
	}

	for strike, exp := range gamma {
		a.GammaExposure = append(a.GammaExposure, StrikeGamma{Strike: strike, Exposure: exp})
	}
	sort.Slice(a.GammaExposure, func(i, j int) bool {
		return a.GammaExposure[i].Exposure > a.GammaExposure[j].Exposure
	})
	if len(a.GammaExposure) > 5 {
		a.GammaExposure = a.GammaExposure[:5]
	}

	return a
}
