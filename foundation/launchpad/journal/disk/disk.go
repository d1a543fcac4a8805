// Package disk implements the ability to read and write settle records in
// their own separate files on disk.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/heesho/launchpad/foundation/launchpad/journal"
)

// Disk represents the serialization implementation for reading and storing
// settle records in their own separate files on disk. This implements the
// journal.Serializer interface.
type Disk struct {
	journalPath string
}

// New constructs a Disk value for use.
func New(journalPath string) (*Disk, error) {
	if err := os.MkdirAll(journalPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{journalPath: journalPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each record and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified record and stores it on disk in a file labeled
// with the record sequence number.
func (d *Disk) Write(record journal.Record) error {

	// Marshal the record for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this record and name it based on the sequence.
	f, err := os.OpenFile(d.getPath(record.Seq), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// GetRecord searches the journal on disk to locate and return the contents
// of the specified record by sequence number.
func (d *Disk) GetRecord(seq uint64) (journal.Record, error) {
	f, err := os.OpenFile(d.getPath(seq), os.O_RDONLY, 0600)
	if err != nil {
		return journal.Record{}, err
	}
	defer f.Close()

	var record journal.Record
	if err := json.NewDecoder(f).Decode(&record); err != nil {
		return journal.Record{}, err
	}

	return record, nil
}

// ForEach returns an iterator to walk through all the records starting with
// sequence number 1.
func (d *Disk) ForEach() journal.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the journal on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.journalPath); err != nil {
		return err
	}

	return os.MkdirAll(d.journalPath, 0755)
}

// getPath forms the path to the specified record.
func (d *Disk) getPath(seq uint64) string {
	name := strconv.FormatUint(seq, 10)
	return path.Join(d.journalPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking through
// and reading records on disk. This implements the journal.Iterator
// interface.
type diskIterator struct {
	disk    *Disk
	current uint64
	eoc     bool
}

// Next retrieves the next record from disk.
func (di *diskIterator) Next() (journal.Record, error) {
	if di.eoc {
		return journal.Record{}, errors.New("end of journal")
	}

	di.current++
	record, err := di.disk.GetRecord(di.current)
	if errors.Is(err, fs.ErrNotExist) {
		di.eoc = true
	}

	return record, err
}

// Done returns the end of journal value.
func (di *diskIterator) Done() bool {
	return di.eoc
}
