package state_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/heesho/launchpad/foundation/launchpad/genesis"
	"github.com/heesho/launchpad/foundation/launchpad/journal"
	"github.com/heesho/launchpad/foundation/launchpad/journal/memory"
	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/mining"
	"github.com/heesho/launchpad/foundation/launchpad/state"
	"github.com/heesho/launchpad/foundation/launchpad/treasury"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	teamID     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	holderID   = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
	treasuryID = "0x8f297a75314C8e4F2Bcd6eC953566a4bd4Dc7693"
	receiverID = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
)

// clock provides a movable source of time for the engine under test.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newGenesis builds a launch file for the tests funding the specified
// account.
func newGenesis(date time.Time, funded ledger.AccountID) genesis.Genesis {
	terms := genesis.Terms{
		EpochPeriodSeconds: 3600,
		PriceMultiplier:    "2000000000000000000",
		MinInitPrice:       "1000000000",
	}

	return genesis.Genesis{
		Date:         date,
		ChainID:      1,
		MintToken:    "MINE",
		PaymentToken: "WETH",
		Mining: genesis.Mining{
			Terms:                terms,
			TeamID:               teamID,
			ProtocolID:           string(ledger.ZeroAccountID),
			HolderID:             holderID,
			URI:                  "ipfs://launch",
			InitialRate:          "1000000000000000000",
			TailRate:             "10000000000000000",
			HalvingPeriodSeconds: 31536000,
		},
		Treasury: genesis.Treasury{
			Terms:             terms,
			AccountID:         treasuryID,
			PaymentReceiverID: receiverID,
			InitPrice:         "1000000000",
		},
		Balances: map[string]string{
			string(funded): "2000000000000000000",
		},
	}
}

// brokenStorage presents an empty journal and fails every write.
type brokenStorage struct{}

func (brokenStorage) Write(record journal.Record) error {
	return errors.New("disk full")
}

func (brokenStorage) GetRecord(seq uint64) (journal.Record, error) {
	return journal.Record{}, errors.New("disk full")
}

func (brokenStorage) ForEach() journal.Iterator {
	return emptyIterator{}
}

func (brokenStorage) Close() error {
	return nil
}

func (brokenStorage) Reset() error {
	return nil
}

type emptyIterator struct{}

func (emptyIterator) Next() (journal.Record, error) {
	return journal.Record{}, nil
}

func (emptyIterator) Done() bool {
	return true
}

// =============================================================================

func Test_SettleAndReplay(t *testing.T) {
	t.Log("Given the need to validate settles are journaled and replayable.")
	{
		clk := clock{now: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}

		key, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}
		minerID := ledger.PublicKeyToAccountID(key.PublicKey)

		gen := newGenesis(clk.now, minerID)

		storage, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open storage: %v", failed, err)
		}

		st, err := state.New(state.Config{
			Genesis: gen,
			Storage: storage,
			Clock:   clk.Now,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct the state.", success)

		// Mine the first epoch half way through its decay.
		clk.advance(30 * time.Minute)

		mineTx, err := mining.NewMineTx(minerID, 0, uint64(clk.now.Add(time.Minute).Unix()), big.NewInt(1_000_000_000), "ipfs://one")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the mine tx: %v", failed, err)
		}

		signedMine, err := mineTx.Sign(key)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the mine tx: %v", failed, err)
		}

		mineSettle, err := st.Mine(signedMine)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine.", success)

		// The treasury auction's account received the residual fee share.
		if got := st.BalanceOf("WETH", ledger.AccountID(treasuryID)); got.Sign() == 0 {
			t.Fatalf("\t%s\tShould accrue fees on the treasury account.", failed)
		}
		t.Logf("\t%s\tShould accrue fees on the treasury account.", success)

		// Buy the accumulated fees out of the treasury auction.
		clk.advance(20 * time.Minute)

		buyTx, err := treasury.NewBuyTx([]ledger.Symbol{"WETH"}, minerID, 0, uint64(clk.now.Add(time.Minute).Unix()), big.NewInt(1_000_000_000))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the buy tx: %v", failed, err)
		}

		signedBuy, err := buyTx.Sign(key)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the buy tx: %v", failed, err)
		}

		buySettle, err := st.Buy(signedBuy)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to buy: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to buy.", success)

		if mineSettle.EpochID != 1 || buySettle.EpochID != 1 {
			t.Fatalf("\t%s\tShould advance both auctions to epoch 1: got %d and %d.", failed, mineSettle.EpochID, buySettle.EpochID)
		}
		t.Logf("\t%s\tShould advance both auctions to epoch 1.", success)

		// Reconstruct a second engine from the same journal and compare.
		st2, err := state.New(state.Config{
			Genesis: gen,
			Storage: storage,
			Clock:   clk.Now,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reconstruct the state: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to reconstruct the state.", success)

		v1, v2 := st.RetrieveMining(), st2.RetrieveMining()
		if v1.Epoch.ID != v2.Epoch.ID || v1.Epoch.InitPrice.Cmp(v2.Epoch.InitPrice) != 0 || v1.HolderID != v2.HolderID || v1.URI != v2.URI {
			t.Fatalf("\t%s\tShould replay the mining auction exactly: got %+v, exp %+v.", failed, v2, v1)
		}
		t.Logf("\t%s\tShould replay the mining auction exactly.", success)

		t1, t2 := st.RetrieveTreasury(), st2.RetrieveTreasury()
		if t1.Epoch.ID != t2.Epoch.ID || t1.Epoch.InitPrice.Cmp(t2.Epoch.InitPrice) != 0 {
			t.Fatalf("\t%s\tShould replay the treasury auction exactly: got %+v, exp %+v.", failed, t2, t1)
		}
		t.Logf("\t%s\tShould replay the treasury auction exactly.", success)

		for _, symbol := range []ledger.Symbol{"WETH", "MINE"} {
			b1, b2 := st.Balances(symbol), st2.Balances(symbol)
			if len(b1) != len(b2) {
				t.Fatalf("\t%s\tShould replay the %s balances exactly.", failed, symbol)
			}
			for accountID, balance := range b1 {
				if other, exists := b2[accountID]; !exists || balance.Cmp(other) != 0 {
					t.Fatalf("\t%s\tShould replay the %s balance for %s exactly.", failed, symbol, accountID)
				}
			}
			t.Logf("\t%s\tShould replay the %s balances exactly.", success, symbol)
		}
	}
}

func Test_JournalBehind(t *testing.T) {
	t.Log("Given the need to validate a failed journal write is named distinctly.")
	{
		clk := clock{now: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}

		key, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}
		minerID := ledger.PublicKeyToAccountID(key.PublicKey)

		st, err := state.New(state.Config{
			Genesis: newGenesis(clk.now, minerID),
			Storage: brokenStorage{},
			Clock:   clk.Now,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}

		clk.advance(30 * time.Minute)

		mineTx, err := mining.NewMineTx(minerID, 0, uint64(clk.now.Add(time.Minute).Unix()), big.NewInt(1_000_000_000), "")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the mine tx: %v", failed, err)
		}

		signedMine, err := mineTx.Sign(key)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the mine tx: %v", failed, err)
		}

		if _, err := st.Mine(signedMine); !errors.Is(err, state.ErrJournalBehind) {
			t.Fatalf("\t%s\tShould report the journal is behind: %v", failed, err)
		}
		t.Logf("\t%s\tShould report the journal is behind.", success)

		// The settle itself stands; only its journal record is missing.
		if got := st.RetrieveMining(); got.Epoch.ID != 1 {
			t.Fatalf("\t%s\tShould leave the landed settle standing: got epoch %d.", failed, got.Epoch.ID)
		}
		t.Logf("\t%s\tShould leave the landed settle standing.", success)
	}
}
