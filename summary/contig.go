package summary

import (
	"errors"
	"io"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/seqio/fasta"
)

// ContigSummary describes an assembly: counts, length distribution, and
// composition. Contig counts are small enough to keep every length, so
// the quantiles come straight from gonum.
type ContigSummary struct {
	File    string
	Count   int
	Total   int64
	GCBases int64
	ATBases int64
	NBases  int64
	lengths []float64
	stats   *lengthHistogram
}

// NewContigSummary returns an empty contig summary for a file.
func NewContigSummary(file string) *ContigSummary {
	return &ContigSummary{File: file, stats: newLengthHistogram()}
}

// AddContig folds one contig into the summary.
func (s *ContigSummary) AddContig(residues []byte) {
	s.Count++
	s.Total += int64(len(residues))
	s.lengths = append(s.lengths, float64(len(residues)))
	s.stats.add(len(residues))
	for _, raw := range residues {
		switch upper(raw) {
		case 'G', 'C':
			s.GCBases++
		case 'A', 'T':
			s.ATBases++
		case 'N':
			s.NBases++
		}
	}
}

// SummarizeContigs streams a FASTA assembly file.
func SummarizeContigs(path string) (*ContigSummary, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer handle.Close()
	parser := fasta.NewParser(handle, path, alphabet.Ignore)
	summary := NewContigSummary(path)
	for {
		record, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		summary.AddContig(record.Sequence)
	}
	return summary, nil
}

// MeanLength returns the mean contig length.
func (s *ContigSummary) MeanLength() float64 {
	if s.Count == 0 {
		return 0
	}
	return stat.Mean(s.lengths, nil)
}

// MedianLength returns the median contig length.
func (s *ContigSummary) MedianLength() float64 {
	if s.Count == 0 {
		return 0
	}
	sorted := append([]float64(nil), s.lengths...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// MinLength returns the shortest contig length.
func (s *ContigSummary) MinLength() int { return s.stats.min }

// MaxLength returns the longest contig length.
func (s *ContigSummary) MaxLength() int { return s.stats.max }

// NStats returns N50/N75/N90 of the contig length distribution.
func (s *ContigSummary) NStats() NStats { return s.stats.nstats() }

// GC returns the G+C fraction over called bases.
func (s *ContigSummary) GC() float64 {
	called := s.GCBases + s.ATBases
	if called == 0 {
		return 0
	}
	return float64(s.GCBases) / float64(called)
}
