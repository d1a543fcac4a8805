// Package price implements the Dutch auction price clock. The price of the
// current epoch decays linearly from the epoch's init price to zero over
// the epoch period.
package price

import (
	"math/big"
	"time"
)

// Current calculates the price of the epoch at the specified moment. The
// price starts at initPrice when the epoch opens and decays linearly to
// zero at startTime+period. The math truncates toward zero on whole
// seconds, matching the resolution of the epoch clock.
func Current(initPrice *big.Int, startTime time.Time, period time.Duration, now time.Time) *big.Int {
	if !now.Before(startTime.Add(period)) {
		return big.NewInt(0)
	}

	elapsed := now.Sub(startTime)
	if elapsed < 0 {
		elapsed = 0
	}

	// price = initPrice - initPrice * elapsed / period
	drop := new(big.Int).Mul(initPrice, big.NewInt(int64(elapsed/time.Second)))
	drop.Quo(drop, big.NewInt(int64(period/time.Second)))

	return new(big.Int).Sub(initPrice, drop)
}
