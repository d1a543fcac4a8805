package epoch_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/epoch"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_TermsValidation(t *testing.T) {
	type table struct {
		name  string
		terms epoch.Terms
		exp   error
	}

	good := epoch.Terms{
		Period:          time.Hour,
		PriceMultiplier: big.NewInt(2_000_000_000_000_000_000),
		MinInitPrice:    big.NewInt(1_000_000_000),
	}

	tt := []table{
		{"valid", good, nil},
		{"period short", epoch.Terms{Period: 30 * time.Minute, PriceMultiplier: good.PriceMultiplier, MinInitPrice: good.MinInitPrice}, epoch.ErrPeriodTooShort},
		{"period long", epoch.Terms{Period: 400 * 24 * time.Hour, PriceMultiplier: good.PriceMultiplier, MinInitPrice: good.MinInitPrice}, epoch.ErrPeriodTooLong},
		{"multiplier low", epoch.Terms{Period: good.Period, PriceMultiplier: big.NewInt(999_999_999_999_999_999), MinInitPrice: good.MinInitPrice}, epoch.ErrMultiplierTooLow},
		{"multiplier high", epoch.Terms{Period: good.Period, PriceMultiplier: big.NewInt(3_000_000_000_000_000_001), MinInitPrice: good.MinInitPrice}, epoch.ErrMultiplierTooHigh},
		{"floor low", epoch.Terms{Period: good.Period, PriceMultiplier: good.PriceMultiplier, MinInitPrice: big.NewInt(999_999)}, epoch.ErrMinInitPriceTooLow},
		{"floor high", epoch.Terms{Period: good.Period, PriceMultiplier: good.PriceMultiplier, MinInitPrice: new(big.Int).Add(epoch.AbsMaxInitPrice, big.NewInt(1))}, epoch.ErrMinInitPriceTooHigh},
	}

	t.Log("Given the need to validate auction terms against their documented bounds.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen validating the %q terms.", testID, tst.name)
			{
				err := tst.terms.Validate()

				if !errors.Is(err, tst.exp) {
					t.Errorf("\t%s\tTest %d:\tShould get back the named bound error: got %v, exp %v.", failed, testID, err, tst.exp)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get back the named bound error.", success, testID)
				}
			}
		}
	}
}

func Test_NextInitPrice(t *testing.T) {
	type table struct {
		name        string
		settlePrice *big.Int
		exp         *big.Int
	}

	terms := epoch.Terms{
		Period:          time.Hour,
		PriceMultiplier: big.NewInt(2_000_000_000_000_000_000),
		MinInitPrice:    big.NewInt(1_000_000_000),
	}

	tt := []table{
		{"doubles", big.NewInt(5_000_000_000), big.NewInt(10_000_000_000)},
		{"clamped to floor", big.NewInt(100), big.NewInt(1_000_000_000)},
		{"zero price restarts at floor", big.NewInt(0), big.NewInt(1_000_000_000)},
		{"clamped to ceiling", epoch.AbsMaxInitPrice, epoch.AbsMaxInitPrice},
	}

	t.Log("Given the need to validate the next epoch's init price is scaled and clamped.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen settling at price %v.", testID, tst.settlePrice)
			{
				got := terms.NextInitPrice(tst.settlePrice)

				if got.Cmp(tst.exp) != 0 {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Errorf("\t%s\tTest %d:\tShould get back the correct init price.", failed, testID)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get back the correct init price.", success, testID)
				}
			}
		}
	}
}
