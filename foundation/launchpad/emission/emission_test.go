package emission_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/emission"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_HalvingSchedule(t *testing.T) {
	type table struct {
		name    string
		elapsed time.Duration
		exp     *big.Int
	}

	const halvingPeriod = 365 * 24 * time.Hour
	initialRate := big.NewInt(1_000_000_000_000_000_000)
	tailRate := big.NewInt(10_000_000_000_000_000)

	tt := []table{
		{"launch", 0, big.NewInt(1_000_000_000_000_000_000)},
		{"first period", halvingPeriod - time.Second, big.NewInt(1_000_000_000_000_000_000)},
		{"one halving", halvingPeriod, big.NewInt(500_000_000_000_000_000)},
		{"two halvings", 2 * halvingPeriod, big.NewInt(250_000_000_000_000_000)},
		{"six halvings", 6 * halvingPeriod, big.NewInt(15_625_000_000_000_000)},
		{"tail reached", 7 * halvingPeriod, big.NewInt(10_000_000_000_000_000)},
		{"deep tail", 100 * halvingPeriod, big.NewInt(10_000_000_000_000_000)},
	}

	t.Log("Given the need to validate the emission rate halves on schedule down to the tail.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen checking the rate %v after launch.", testID, tst.elapsed)
			{
				start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
				got := emission.Rate(initialRate, tailRate, halvingPeriod, start, start.Add(tst.elapsed))

				if got.Cmp(tst.exp) != 0 {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Errorf("\t%s\tTest %d:\tShould get back the correct rate.", failed, testID)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get back the correct rate.", success, testID)
				}
			}
		}
	}
}

func Test_ShiftClamp(t *testing.T) {
	t.Log("Given the need to validate extreme idle times degrade to the tail rate.")
	{
		start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		initialRate := big.NewInt(1_000_000_000_000_000_000)
		tailRate := big.NewInt(1)

		// Thousands of halving periods push the shift count far past the
		// width of the rate.
		got := emission.Rate(initialRate, tailRate, time.Hour, start, start.Add(5000*time.Hour))

		if got.Cmp(tailRate) != 0 {
			t.Fatalf("\t%s\tShould get back the tail rate: got %v, exp %v.", failed, got, tailRate)
		}
		t.Logf("\t%s\tShould get back the tail rate.", success)
	}
}

func Test_ClockBeforeLaunch(t *testing.T) {
	t.Log("Given the need to validate a clock before launch reads as zero elapsed time.")
	{
		start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		initialRate := big.NewInt(1_000_000_000_000_000_000)
		tailRate := big.NewInt(10_000_000_000_000_000)

		got := emission.Rate(initialRate, tailRate, time.Hour, start, start.Add(-time.Hour))

		if got.Cmp(initialRate) != 0 {
			t.Fatalf("\t%s\tShould get back the initial rate: got %v, exp %v.", failed, got, initialRate)
		}
		t.Logf("\t%s\tShould get back the initial rate.", success)
	}
}
