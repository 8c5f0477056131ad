package op

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/partition"
	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
)

// Split cuts a concatenated alignment back into per-locus files, one
// per partition entry. It is the inverse of Concat for the taxa that
// actually have data in each range.
type Split struct {
	Common
	// Input is the concatenated alignment file.
	Input string
	// PartitionFile names a standalone partition file. When empty, the
	// partition must be embedded in the input's sets block.
	PartitionFile string
}

// Run splits the input alignment.
func (s *Split) Run(ctx context.Context) error {
	result, err := s.read(s.Input)
	if err != nil {
		return err
	}
	aln := result.Alignment
	if !aln.IsAligned() {
		return &sequence.NotAlignedError{File: s.Input}
	}

	var parts *partition.Partition
	if s.PartitionFile != "" {
		parts, err = partition.ParseFile(s.PartitionFile)
	} else {
		if len(result.Charsets) == 0 {
			return fmt.Errorf("%s: no partition file given and no charset block embedded", s.Input)
		}
		parts, err = partition.ParseCharsets(result.Charsets)
	}
	if err != nil {
		return err
	}
	parts.NormalizeNames()
	if err := parts.Validate(aln.Nchar()); err != nil {
		return err
	}

	out := s.writerFor()
	written := 0
	for _, entry := range parts.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		locus, err := extractEntry(aln, entry)
		if err != nil {
			return err
		}
		if locus.Len() == 0 {
			logger.Log.Warnf("partition %s: every taxon is empty, skipping", entry.Name)
			continue
		}
		path := filepath.Join(s.OutputDir, s.Prefix+entry.Name+s.OutputFormat.Extension())
		err = out.WriteFile(path, func(w io.Writer) error {
			return seqio.WriteAlignment(w, locus, s.OutputFormat)
		})
		if err != nil {
			return err
		}
		written++
	}
	if written == 0 {
		return sequence.ErrEmptyResult
	}
	return nil
}

// extractEntry materializes the sub-alignment of one partition entry.
// Taxa whose extracted residues are all gap or missing are dropped.
func extractEntry(aln *sequence.Alignment, entry partition.Entry) (*sequence.Alignment, error) {
	datatype := aln.Header.Datatype
	locus := sequence.NewAlignment(datatype)
	for _, record := range aln.Records() {
		var residues []byte
		for _, r := range entry.Ranges {
			stride := r.Stride
			if stride <= 1 {
				stride = 1
			}
			for site := r.Start; site <= r.End; site += stride {
				residues = append(residues, record.Sequence[site-1])
			}
		}
		if allEmpty(datatype, residues) {
			continue
		}
		if _, err := locus.Insert(sequence.Record{ID: record.ID, Sequence: residues}); err != nil {
			return nil, err
		}
	}
	return locus, nil
}

// allEmpty reports whether residues carry no data at all.
func allEmpty(datatype alphabet.Datatype, residues []byte) bool {
	for _, b := range residues {
		if !alphabet.IsGap(b) && !alphabet.IsMissing(datatype, b) {
			return false
		}
	}
	return true
}
