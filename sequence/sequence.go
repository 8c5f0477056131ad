/*
Package sequence holds the in-memory model shared by every segul
operation: sequence records, alignments, and the error taxonomy the
codecs and operators report through.

An Alignment maps taxon identifiers to residue strings and keeps the
order in which taxa first appeared, so output files are deterministic
without forcing a sort on formats that preserve input order.
*/
package sequence

import (
	"bytes"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/hhandika/segul/alphabet"
)

// Record is a single sequence with its identifier. Description carries
// the free text after the identifier on a FASTA header line; it survives
// only FASTA to FASTA round trips.
type Record struct {
	ID          string
	Description string
	Sequence    []byte
}

// Header carries the alignment-level metadata parsed from NEXUS and
// PHYLIP files and used when writing them back out.
type Header struct {
	Ntax     int
	Nchar    int
	Datatype alphabet.Datatype
	Missing  byte
	Gap      byte
}

// NewHeader returns a header with the segul default gap and missing
// symbols.
func NewHeader(datatype alphabet.Datatype) Header {
	return Header{Datatype: datatype, Missing: '?', Gap: '-'}
}

// Alignment is an ordered mapping from taxon id to residues.
type Alignment struct {
	Header Header
	ids    []string
	seqs   map[string]*Record
}

// NewAlignment returns an empty alignment for the given datatype.
func NewAlignment(datatype alphabet.Datatype) *Alignment {
	return &Alignment{
		Header: NewHeader(datatype),
		seqs:   make(map[string]*Record),
	}
}

// Insert adds a record to the alignment. A duplicate id with a
// bit-identical sequence is dropped and reported via the returned
// DuplicateWarning; a duplicate id with a different sequence is an error.
func (a *Alignment) Insert(record Record) (*DuplicateWarning, error) {
	existing, ok := a.seqs[record.ID]
	if !ok {
		a.ids = append(a.ids, record.ID)
		a.seqs[record.ID] = &record
		if len(record.Sequence) > a.Header.Nchar {
			a.Header.Nchar = len(record.Sequence)
		}
		a.Header.Ntax = len(a.ids)
		return nil, nil
	}
	if identical(existing.Sequence, record.Sequence) {
		return &DuplicateWarning{ID: record.ID}, nil
	}
	return nil, &DuplicateIDError{ID: record.ID}
}

// identical compares two sequences by their blake3 digests, computed
// afresh on each call after a length check.
func identical(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	hashA := blake3.Sum256(a)
	hashB := blake3.Sum256(b)
	return hashA == hashB
}

// Get returns the record for an id.
func (a *Alignment) Get(id string) (*Record, bool) {
	record, ok := a.seqs[id]
	return record, ok
}

// Len returns the number of taxa.
func (a *Alignment) Len() int {
	return len(a.ids)
}

// Nchar returns the column count of the alignment, which is the length
// of the longest sequence for unaligned inputs.
func (a *Alignment) Nchar() int {
	return a.Header.Nchar
}

// IDs returns taxon ids in insertion order. The returned slice is shared
// with the alignment and must not be mutated.
func (a *Alignment) IDs() []string {
	return a.ids
}

// SortedIDs returns taxon ids in alphanumeric order.
func (a *Alignment) SortedIDs() []string {
	sorted := make([]string, len(a.ids))
	copy(sorted, a.ids)
	SortAlphanumeric(sorted)
	return sorted
}

// IsAligned reports whether every sequence has the same length as the
// alignment column count.
func (a *Alignment) IsAligned() bool {
	for _, id := range a.ids {
		if len(a.seqs[id].Sequence) != a.Header.Nchar {
			return false
		}
	}
	return true
}

// Sort reorders the alignment's taxa alphanumerically in place.
func (a *Alignment) Sort() {
	SortAlphanumeric(a.ids)
}

// Records returns the alignment's records in id order.
func (a *Alignment) Records() []Record {
	records := make([]Record, 0, len(a.ids))
	for _, id := range a.ids {
		records = append(records, *a.seqs[id])
	}
	return records
}

// Remove deletes the record for an id, keeping the order of the
// remaining taxa.
func (a *Alignment) Remove(id string) {
	if _, ok := a.seqs[id]; !ok {
		return
	}
	delete(a.seqs, id)
	for i, existing := range a.ids {
		if existing == id {
			a.ids = append(a.ids[:i], a.ids[i+1:]...)
			break
		}
	}
	a.Header.Ntax = len(a.ids)
}

// Rename changes a record's id. Renaming onto an id that already exists
// is an error so a rename pass can never silently merge two taxa.
func (a *Alignment) Rename(from, to string) error {
	if from == to {
		return nil
	}
	record, ok := a.seqs[from]
	if !ok {
		return fmt.Errorf("id %q not in alignment", from)
	}
	if _, clash := a.seqs[to]; clash {
		return &DuplicateIDError{ID: to}
	}
	record.ID = to
	delete(a.seqs, from)
	a.seqs[to] = record
	for i, existing := range a.ids {
		if existing == from {
			a.ids[i] = to
			break
		}
	}
	return nil
}

// Column writes the residues of column index (0-based) for the given ids
// into dst and returns it. Taxa without a residue at the index are
// skipped, which only happens on unaligned input.
func (a *Alignment) Column(index int, ids []string, dst []byte) []byte {
	dst = dst[:0]
	for _, id := range ids {
		record, ok := a.seqs[id]
		if !ok || index >= len(record.Sequence) {
			continue
		}
		dst = append(dst, record.Sequence[index])
	}
	return dst
}

// Equal reports whether two alignments hold the same taxa with the same
// residues, ignoring taxon order.
func (a *Alignment) Equal(other *Alignment) bool {
	if a.Len() != other.Len() {
		return false
	}
	for _, id := range a.ids {
		mine := a.seqs[id]
		theirs, ok := other.seqs[id]
		if !ok || !bytes.Equal(mine.Sequence, theirs.Sequence) {
			return false
		}
	}
	return true
}
