package ledger_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/heesho/launchpad/foundation/launchpad/ledger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	tokenWETH = ledger.Symbol("WETH")
	tokenMINE = ledger.Symbol("MINE")

	alice = ledger.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	bob   = ledger.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	carol = ledger.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")
)

// =============================================================================

func Test_MintAndTransfer(t *testing.T) {
	t.Log("Given the need to validate minting and transferring balances.")
	{
		lgr := ledger.New()

		if err := lgr.Mint(tokenWETH, alice, big.NewInt(1000)); err != nil {
			t.Fatalf("\t%s\tShould be able to mint to alice: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mint to alice.", success)

		if err := lgr.Transfer(tokenWETH, alice, bob, big.NewInt(400)); err != nil {
			t.Fatalf("\t%s\tShould be able to transfer to bob: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to transfer to bob.", success)

		if got := lgr.BalanceOf(tokenWETH, alice); got.Cmp(big.NewInt(600)) != 0 {
			t.Errorf("\t%s\tShould have 600 for alice: got %v.", failed, got)
		} else {
			t.Logf("\t%s\tShould have 600 for alice.", success)
		}

		if got := lgr.BalanceOf(tokenWETH, bob); got.Cmp(big.NewInt(400)) != 0 {
			t.Errorf("\t%s\tShould have 400 for bob: got %v.", failed, got)
		} else {
			t.Logf("\t%s\tShould have 400 for bob.", success)
		}

		if got := lgr.BalanceOf(tokenMINE, alice); got.Sign() != 0 {
			t.Errorf("\t%s\tShould have no MINE for alice: got %v.", failed, got)
		} else {
			t.Logf("\t%s\tShould have no MINE for alice.", success)
		}
	}
}

func Test_BatchAtomicity(t *testing.T) {
	t.Log("Given the need to validate a failed batch leaves the ledger untouched.")
	{
		lgr := ledger.New()

		if err := lgr.Mint(tokenWETH, alice, big.NewInt(100)); err != nil {
			t.Fatalf("\t%s\tShould be able to mint to alice: %v", failed, err)
		}

		// The second entry overdraws alice even though the first alone
		// would be funded.
		batch := []ledger.Entry{
			ledger.NewMove(tokenWETH, alice, bob, big.NewInt(80)),
			ledger.NewMove(tokenWETH, alice, carol, big.NewInt(30)),
		}

		err := lgr.Apply(batch)
		if !errors.Is(err, ledger.ErrInsufficientFunds) {
			t.Fatalf("\t%s\tShould get back insufficient funds: %v", failed, err)
		}
		t.Logf("\t%s\tShould get back insufficient funds.", success)

		if got := lgr.BalanceOf(tokenWETH, alice); got.Cmp(big.NewInt(100)) != 0 {
			t.Errorf("\t%s\tShould leave alice untouched: got %v.", failed, got)
		} else {
			t.Logf("\t%s\tShould leave alice untouched.", success)
		}

		if got := lgr.BalanceOf(tokenWETH, bob); got.Sign() != 0 {
			t.Errorf("\t%s\tShould leave bob untouched: got %v.", failed, got)
		} else {
			t.Logf("\t%s\tShould leave bob untouched.", success)
		}
	}
}

func Test_BatchValidation(t *testing.T) {
	type table struct {
		name  string
		batch []ledger.Entry
		exp   error
	}

	tt := []table{
		{"negative amount", []ledger.Entry{ledger.NewMove(tokenWETH, alice, bob, big.NewInt(-1))}, ledger.ErrNegativeAmount},
		{"nil amount", []ledger.Entry{ledger.NewMove(tokenWETH, alice, bob, nil)}, ledger.ErrNegativeAmount},
		{"zero to account", []ledger.Entry{ledger.NewMove(tokenWETH, alice, ledger.ZeroAccountID, big.NewInt(1))}, ledger.ErrInvalidAccount},
		{"malformed from account", []ledger.Entry{ledger.NewMove(tokenWETH, "0xnothex", bob, big.NewInt(1))}, ledger.ErrInvalidAccount},
	}

	t.Log("Given the need to validate batches are rejected with named errors.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen applying a batch with a %s.", testID, tst.name)
			{
				lgr := ledger.New()
				if err := lgr.Mint(tokenWETH, alice, big.NewInt(100)); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mint: %v", failed, testID, err)
				}

				err := lgr.Apply(tst.batch)
				if !errors.Is(err, tst.exp) {
					t.Errorf("\t%s\tTest %d:\tShould get back the named error: got %v, exp %v.", failed, testID, err, tst.exp)
				} else {
					t.Logf("\t%s\tTest %d:\tShould get back the named error.", success, testID)
				}
			}
		}
	}
}

func Test_ZeroAmountSkipped(t *testing.T) {
	t.Log("Given the need to validate zero amount entries are skipped without error.")
	{
		lgr := ledger.New()

		batch := []ledger.Entry{
			ledger.NewIssue(tokenMINE, alice, big.NewInt(0)),
			ledger.NewMove(tokenWETH, alice, bob, big.NewInt(0)),
		}

		if err := lgr.Apply(batch); err != nil {
			t.Fatalf("\t%s\tShould be able to apply a zero batch: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to apply a zero batch.", success)

		if got := len(lgr.Balances(tokenMINE)); got != 0 {
			t.Errorf("\t%s\tShould have no balances recorded: got %d.", failed, got)
		} else {
			t.Logf("\t%s\tShould have no balances recorded.", success)
		}
	}
}
