package chain

import (
	"sort"
	"time"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
)

const (
	// StrikeBand keeps strikes within ±15% of spot when cleaning the chain.
	StrikeBand = 0.15
	// MaxExpiries keeps the nearest expiries when cleaning the chain.
	MaxExpiries = 2
)

// Clean filters a raw chain down to usable near-ATM contracts: contracts with
// non-positive IV or prices are dropped, strikes outside the band around spot
// are dropped, and only the nearest expiries are kept.
func Clean(raw *models.OptionChain) (*models.OptionChain, error) {
	if raw == nil || len(raw.Contracts) == 0 {
		return nil, errors.NewDataError("options_chain", chainSymbol(raw), "empty chain", errors.ErrEmptyChain)
	}

	spot := raw.SpotPrice
	if spot <= 0 {
		return nil, errors.NewDataError("options_chain", raw.Symbol, "missing underlying price", errors.ErrEmptyChain)
	}

	lo, hi := spot*(1-StrikeBand), spot*(1+StrikeBand)

	filtered := make([]models.OptionContract, 0, len(raw.Contracts))
	for _, c := range raw.Contracts {
		if c.IV <= 0 || c.Bid <= 0 || c.Ask <= 0 {
			continue
		}
		if c.Strike <= lo || c.Strike >= hi {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return nil, errors.NewDataError("options_chain", raw.Symbol,
			"no valid near-ATM options after filtering, widen strike range or check data", errors.ErrEmptyChain)
	}

	expirySet := make(map[time.Time]bool)
	for _, c := range filtered {
		expirySet[c.Expiration] = true
	}
	expiries := make([]time.Time, 0, len(expirySet))
	for e := range expirySet {
		expiries = append(expiries, e)
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })
	if len(expiries) > MaxExpiries {
		expiries = expiries[:MaxExpiries]
	}
	keep := make(map[time.Time]bool, len(expiries))
	for _, e := range expiries {
		keep[e] = true
	}

	contracts := make([]models.OptionContract, 0, len(filtered))
	for _, c := range filtered {
		if keep[c.Expiration] {
			contracts = append(contracts, c)
		}
	}

	return &models.OptionChain{
		Symbol:    raw.Symbol,
		SpotPrice: raw.SpotPrice,
		FetchedAt: raw.FetchedAt,
		Contracts: contracts,
	}, nil
}

func chainSymbol(ch *models.OptionChain) string {
	if ch == nil {
		return ""
	}
	return ch.Symbol
}

// ForwardVariances derives the forward implied variance per expiry from a
// cleaned chain: the mean of IV^2 over that expiry's contracts.
func ForwardVariances(cleaned *models.OptionChain, now time.Time) []models.ExpiryVariance {
	type acc struct {
		sum float64
		n   int
	}
	byExpiry := make(map[time.Time]*acc)
	for _, c := range cleaned.Contracts {
		a := byExpiry[c.Expiration]
		if a == nil {
			a = &acc{}
			byExpiry[c.Expiration] = a
		}
		a.sum += c.IV * c.IV
		a.n++
	}

	out := make([]models.ExpiryVariance, 0, len(byExpiry))
	for expiry, a := range byExpiry {
		out = append(out, models.ExpiryVariance{
			Expiry:          expiry,
			ForwardVariance: a.sum / float64(a.n),
			Contracts:       a.n,
			TradingDays:     TradingDaysUntil(now, expiry),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Expiry.Before(out[j].Expiry) })
	return out
}

// NearestVariance returns the forward variance for the nearest expiry.
func NearestVariance(cleaned *models.OptionChain, now time.Time) (models.ExpiryVariance, error) {
	variances := ForwardVariances(cleaned, now)
	if len(variances) == 0 {
		return models.ExpiryVariance{}, errors.NewDataError("forward_variance", cleaned.Symbol,
			"no expiries in cleaned chain", errors.ErrEmptyChain)
	}
	return variances[0], nil
}

// TradingDaysUntil counts weekdays strictly after now up to and including
// the expiry date.
func TradingDaysUntil(now, expiry time.Time) int {
	days := 0
	d := now.Truncate(24 * time.Hour)
	end := expiry.Truncate(24 * time.Hour)
	for d.Before(end) {
		d = d.Add(24 * time.Hour)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
