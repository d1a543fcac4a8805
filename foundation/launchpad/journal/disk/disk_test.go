package disk_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/heesho/launchpad/foundation/launchpad/journal"
	"github.com/heesho/launchpad/foundation/launchpad/journal/disk"
	"github.com/heesho/launchpad/foundation/launchpad/ledger"
	"github.com/heesho/launchpad/foundation/launchpad/treasury"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_RoundTrip(t *testing.T) {
	t.Log("Given the need to validate records survive a trip through disk.")
	{
		storage, err := disk.New(t.TempDir())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open storage: %v", failed, err)
		}

		settle := treasury.Settle{
			EpochID:    1,
			BuyerID:    "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4",
			ReceiverID: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
			Payment:    big.NewInt(722_222_222_222_223),
			InitPrice:  big.NewInt(1_444_444_444_444_446),
			StartTime:  time.Date(2024, time.March, 1, 0, 50, 0, 0, time.UTC),
			Assets:     []ledger.Symbol{"USDC"},
			Entries: []ledger.Entry{
				ledger.NewMove("USDC", "0x8f297a75314C8e4F2Bcd6eC953566a4bd4Dc7693", "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", big.NewInt(10)),
			},
		}

		if err := storage.Write(journal.NewBuyRecord(1, settle)); err != nil {
			t.Fatalf("\t%s\tShould be able to write the record: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write the record.", success)

		record, err := storage.GetRecord(1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the record: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to read the record.", success)

		if record.Kind != journal.KindBuy || record.Buy == nil {
			t.Fatalf("\t%s\tShould keep the record kind: got %q.", failed, record.Kind)
		}

		if record.Buy.Payment.Cmp(settle.Payment) != 0 || record.Buy.EpochID != settle.EpochID {
			t.Fatalf("\t%s\tShould keep the settle values: got %+v.", failed, record.Buy)
		}
		t.Logf("\t%s\tShould keep the settle values.", success)

		if len(record.Buy.Entries) != 1 || record.Buy.Entries[0].Amount.Cmp(big.NewInt(10)) != 0 {
			t.Fatalf("\t%s\tShould keep the ledger entries: got %+v.", failed, record.Buy.Entries)
		}
		t.Logf("\t%s\tShould keep the ledger entries.", success)

		iter := storage.ForEach()
		var count int
		for _, err := iter.Next(); !iter.Done(); _, err = iter.Next() {
			if err != nil {
				t.Fatalf("\t%s\tShould be able to walk the journal: %v", failed, err)
			}
			count++
		}

		if count != 1 {
			t.Fatalf("\t%s\tShould walk exactly one record: got %d.", failed, count)
		}
		t.Logf("\t%s\tShould walk exactly one record.", success)
	}
}
