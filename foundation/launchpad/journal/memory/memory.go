// Package memory implements the ability to read and write settle records
// to memory using a slice.
package memory

import (
	"errors"
	"sync"

	"github.com/heesho/launchpad/foundation/launchpad/journal"
)

// Memory represents the serialization implementation for reading and
// storing settle records in memory using a slice. This implements the
// journal.Serializer interface.
type Memory struct {
	mu      sync.RWMutex
	records []journal.Record
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified record and stores it in memory.
func (m *Memory) Write(record journal.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := len(m.records)
	if uint64(l+1) != record.Seq {
		return errors.New("record is out of order")
	}

	m.records = append(m.records, record)

	return nil
}

// GetRecord searches the journal to locate and return the contents of the
// specified record by sequence number.
func (m *Memory) GetRecord(seq uint64) (journal.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := uint64(len(m.records))
	if seq == 0 || seq > l {
		return journal.Record{}, errors.New("record does not exist")
	}

	return m.records[seq-1], nil
}

// ForEach returns an iterator to walk through all the records starting
// with sequence number 1.
func (m *Memory) ForEach() journal.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the journal in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = []journal.Record{}
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading records in memory. This implements the journal
// Iterator interface.
type memoryIterator struct {
	storage *Memory
	current uint64
	eoc     bool
}

// Next retrieves the next record from memory.
func (mi *memoryIterator) Next() (journal.Record, error) {
	if mi.eoc {
		return journal.Record{}, errors.New("end of journal")
	}

	mi.current++
	record, err := mi.storage.GetRecord(mi.current)
	if err != nil {
		mi.eoc = true
	}

	return record, err
}

// Done returns the end of journal value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
