package memory_test

import (
	"math/big"
	"testing"

	"github.com/heesho/launchpad/foundation/launchpad/journal"
	"github.com/heesho/launchpad/foundation/launchpad/journal/memory"
	"github.com/heesho/launchpad/foundation/launchpad/mining"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_WriteAndIterate(t *testing.T) {
	t.Log("Given the need to validate records are stored and walked in order.")
	{
		storage, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open storage: %v", failed, err)
		}

		for seq := uint64(1); seq <= 3; seq++ {
			record := journal.NewMineRecord(seq, mining.Settle{EpochID: seq, Price: big.NewInt(int64(seq) * 100)})
			if err := storage.Write(record); err != nil {
				t.Fatalf("\t%s\tShould be able to write record %d: %v", failed, seq, err)
			}
		}
		t.Logf("\t%s\tShould be able to write records.", success)

		record := journal.NewMineRecord(7, mining.Settle{EpochID: 7})
		if err := storage.Write(record); err == nil {
			t.Fatalf("\t%s\tShould reject an out of order record.", failed)
		}
		t.Logf("\t%s\tShould reject an out of order record.", success)

		var count uint64
		iter := storage.ForEach()
		for record, err := iter.Next(); !iter.Done(); record, err = iter.Next() {
			if err != nil {
				t.Fatalf("\t%s\tShould be able to read record: %v", failed, err)
			}

			count++
			if record.Seq != count || record.Mine == nil || record.Mine.EpochID != count {
				t.Fatalf("\t%s\tShould walk records in order: got seq %d at position %d.", failed, record.Seq, count)
			}
		}

		if count != 3 {
			t.Fatalf("\t%s\tShould walk all 3 records: got %d.", failed, count)
		}
		t.Logf("\t%s\tShould walk all 3 records in order.", success)
	}
}
