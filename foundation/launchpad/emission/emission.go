// Package emission implements the halving schedule that governs how many
// tokens per second the current mining epoch is worth. The rate halves once
// per halving period and is floored at a tail rate that persists forever.
package emission

import (
	"math/big"
	"time"
)

// maxHalvings bounds the right shift applied to the initial rate. The
// numeric model mirrors 256 bit chain math, so any larger shift count
// already yields zero and would only risk overflowing the shift argument.
const maxHalvings = 255

// Rate calculates the emission rate in effect at the specified moment.
// startTime is when the schedule began, not when the current epoch began:
// the halving clock keeps running while an epoch sits unsettled.
func Rate(initialRate *big.Int, tailRate *big.Int, halvingPeriod time.Duration, startTime time.Time, now time.Time) *big.Int {
	var elapsed time.Duration
	if now.After(startTime) {
		elapsed = now.Sub(startTime)
	}

	halvings := uint64(elapsed / halvingPeriod)
	if halvings > maxHalvings {
		halvings = maxHalvings
	}

	rate := new(big.Int).Rsh(initialRate, uint(halvings))
	if rate.Cmp(tailRate) < 0 {
		return new(big.Int).Set(tailRate)
	}

	return rate
}
