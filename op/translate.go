package op

import (
	"context"
	"io"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
)

// Translate converts DNA alignments to amino acid alignments using an
// NCBI genetic code.
type Translate struct {
	Common
	// TableID is the NCBI translation table; 1 is the standard code.
	TableID int
	// Frame is the reading frame, 1 to 3.
	Frame int
}

// Run translates every input file.
func (t *Translate) Run(ctx context.Context) error {
	table, err := alphabet.NewTranslationTable(t.TableID)
	if err != nil {
		return err
	}
	if t.Frame < 1 || t.Frame > 3 {
		return &alphabet.InvalidReadingFrameError{Frame: t.Frame}
	}
	out := t.writerFor()
	_, err = mapFiles(ctx, &t.Common, func(file string) (struct{}, error) {
		result, err := t.read(file)
		if err != nil {
			return struct{}{}, err
		}
		aln := result.Alignment
		translated := sequence.NewAlignment(alphabet.AminoAcid)
		for _, record := range aln.Records() {
			aminoAcids, truncated, err := table.Translate(record.Sequence, t.Frame)
			if err != nil {
				return struct{}{}, err
			}
			if truncated {
				logger.Log.Warnf("%s: %s: dropped trailing partial codon", file, record.ID)
			}
			record.Sequence = aminoAcids
			if _, err := translated.Insert(record); err != nil {
				return struct{}{}, err
			}
		}
		path := t.outputPath(file)
		return struct{}{}, out.WriteFile(path, func(w io.Writer) error {
			return seqio.WriteAlignment(w, translated, t.OutputFormat)
		})
	})
	return err
}
