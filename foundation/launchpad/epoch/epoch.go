// Package epoch defines the epoch value shared by both launchpad auctions
// and the rules every epoch transition must honor. An epoch is one round of
// a Dutch auction: it opens at an init price, decays, and is replaced in
// place by exactly one successful settle.
package epoch

import (
	"errors"
	"math/big"
	"time"
)

// These bounds limit the terms an auction can be constructed with.
const (
	MinEpochPeriod = time.Hour
	MaxEpochPeriod = 365 * 24 * time.Hour
)

// MultiplierScale is the fixed point scale of the price multiplier, so a
// multiplier of 2e18 doubles the next epoch's init price.
var (
	MultiplierScale    = big.NewInt(1e18)
	MinPriceMultiplier = big.NewInt(1e18)
	MaxPriceMultiplier = big.NewInt(3e18)

	// MinMinInitPrice keeps the floor price meaningful and AbsMaxInitPrice
	// caps init price growth so the multiplier can never push it out of the
	// 256 bit numeric range.
	MinMinInitPrice = big.NewInt(1e6)
	AbsMaxInitPrice = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 216), big.NewInt(1))
)

// Construction errors. Each names the exact bound an auction's terms
// violated.
var (
	ErrPeriodTooShort      = errors.New("epoch period below minimum")
	ErrPeriodTooLong       = errors.New("epoch period above maximum")
	ErrMultiplierTooLow    = errors.New("price multiplier below minimum")
	ErrMultiplierTooHigh   = errors.New("price multiplier above maximum")
	ErrMinInitPriceTooLow  = errors.New("min init price below minimum")
	ErrMinInitPriceTooHigh = errors.New("min init price above maximum")
	ErrInitPriceOutOfRange = errors.New("init price outside configured bounds")
)

// Call time errors shared by both settle operations. Each names a distinct
// precondition so a caller can tell a lost race from a stale intent from a
// limit set too tight.
var (
	ErrDeadlinePassed     = errors.New("deadline passed")
	ErrEpochMismatch      = errors.New("epoch id mismatch")
	ErrPriceLimitExceeded = errors.New("current price exceeds price limit")
)

// =============================================================================

// Epoch represents the state of one live auction round. A successful settle
// replaces all fields together; no epoch is ever partially updated.
type Epoch struct {
	ID        uint64
	InitPrice *big.Int
	StartTime time.Time
}

// =============================================================================

// Terms carries the immutable pricing parameters an auction is constructed
// with.
type Terms struct {
	Period          time.Duration
	PriceMultiplier *big.Int
	MinInitPrice    *big.Int
}

// Validate checks every term against its documented bound.
func (t Terms) Validate() error {
	switch {
	case t.Period < MinEpochPeriod:
		return ErrPeriodTooShort
	case t.Period > MaxEpochPeriod:
		return ErrPeriodTooLong
	case t.PriceMultiplier == nil || t.PriceMultiplier.Cmp(MinPriceMultiplier) < 0:
		return ErrMultiplierTooLow
	case t.PriceMultiplier.Cmp(MaxPriceMultiplier) > 0:
		return ErrMultiplierTooHigh
	case t.MinInitPrice == nil || t.MinInitPrice.Cmp(MinMinInitPrice) < 0:
		return ErrMinInitPriceTooLow
	case t.MinInitPrice.Cmp(AbsMaxInitPrice) > 0:
		return ErrMinInitPriceTooHigh
	}

	return nil
}

// NextInitPrice calculates the init price of the epoch that follows a
// settle at the specified price. The settle price is scaled up by the
// multiplier and clamped into [MinInitPrice, AbsMaxInitPrice] so the next
// round always restarts inside the configured band.
func (t Terms) NextInitPrice(settlePrice *big.Int) *big.Int {
	next := new(big.Int).Mul(settlePrice, t.PriceMultiplier)
	next.Quo(next, MultiplierScale)

	if next.Cmp(t.MinInitPrice) < 0 {
		return new(big.Int).Set(t.MinInitPrice)
	}
	if next.Cmp(AbsMaxInitPrice) > 0 {
		return new(big.Int).Set(AbsMaxInitPrice)
	}

	return next
}
