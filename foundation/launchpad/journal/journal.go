// Package journal defines how settle records are persisted and replayed.
// Every successful settle on either auction appends one record carrying the
// committed epoch and the complete set of ledger effects, so a restarted
// engine can reconstruct both auctions and every balance exactly.
package journal

import (
	"github.com/heesho/launchpad/foundation/launchpad/mining"
	"github.com/heesho/launchpad/foundation/launchpad/treasury"
)

// The set of record kinds the journal stores.
const (
	KindMine = "mine"
	KindBuy  = "buy"
)

// Record represents one settle as it is stored in the journal. Exactly one
// of Mine or Buy is set, matching the Kind.
type Record struct {
	Seq  uint64           `json:"seq"` // Position in the journal, starting at 1.
	Kind string           `json:"kind"`
	Mine *mining.Settle   `json:"mine,omitempty"`
	Buy  *treasury.Settle `json:"buy,omitempty"`
}

// NewMineRecord constructs a record for a mining settle.
func NewMineRecord(seq uint64, settle mining.Settle) Record {
	return Record{
		Seq:  seq,
		Kind: KindMine,
		Mine: &settle,
	}
}

// NewBuyRecord constructs a record for a treasury settle.
func NewBuyRecord(seq uint64, settle treasury.Settle) Record {
	return Record{
		Seq:  seq,
		Kind: KindBuy,
		Buy:  &settle,
	}
}

// =============================================================================

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading the journal.
type Serializer interface {
	Write(record Record) error
	GetRecord(seq uint64) (Record, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the records.
type Iterator interface {
	Next() (Record, error)
	Done() bool
}
