package summary

import (
	"errors"
	"io"

	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/seqio/fastq"
	"github.com/hhandika/segul/writer"
)

// PhredOffset is the quality encoding offset segul assumes
// (Sanger/Illumina 1.8+).
const PhredOffset = 33

// maxPhred bounds the per-dataset quality histogram. Scores above it
// land in the last bucket.
const maxPhred = 93

// PositionCount accumulates base composition and quality for one read
// position.
type PositionCount struct {
	A, C, G, T, N int64
	Other         int64
	QualSum       int64
	QualCount     int64
	QualMin       int
	QualMax       int
}

// MeanQual returns the mean Phred score at the position.
func (p *PositionCount) MeanQual() float64 {
	if p.QualCount == 0 {
		return 0
	}
	return float64(p.QualSum) / float64(p.QualCount)
}

// ReadSummary is a streaming FASTQ summary: it sees each read once and
// never holds more than per-position counters.
type ReadSummary struct {
	File          string
	Reads         int64
	Bases         int64
	GCBases       int64
	ATBases       int64
	NBases        int64
	lengths       *lengthHistogram
	positions     []PositionCount
	QualHist      [maxPhred + 1]int64
	lowQualWarned bool
}

// NewReadSummary returns an empty read summary for a file.
func NewReadSummary(file string) *ReadSummary {
	return &ReadSummary{File: file, lengths: newLengthHistogram()}
}

// AddRead folds one read into the summary.
func (s *ReadSummary) AddRead(read *fastq.Read) {
	s.Reads++
	length := len(read.Sequence)
	s.Bases += int64(length)
	s.lengths.add(length)
	for len(s.positions) < length {
		s.positions = append(s.positions, PositionCount{QualMin: maxPhred})
	}
	for i := 0; i < length; i++ {
		position := &s.positions[i]
		switch upper(read.Sequence[i]) {
		case 'A':
			position.A++
			s.ATBases++
		case 'T':
			position.T++
			s.ATBases++
		case 'G':
			position.G++
			s.GCBases++
		case 'C':
			position.C++
			s.GCBases++
		case 'N':
			position.N++
			s.NBases++
		default:
			position.Other++
		}
		phred := int(read.Quality[i]) - PhredOffset
		if phred < 0 || phred > maxPhred {
			if !s.lowQualWarned {
				logger.Log.Warnf(
					"%s: Phred score %d outside 0-%d; offset-64 input?",
					s.File, phred, maxPhred)
				s.lowQualWarned = true
			}
			if phred < 0 {
				phred = 0
			} else {
				phred = maxPhred
			}
		}
		s.QualHist[phred]++
		position.QualSum += int64(phred)
		position.QualCount++
		if phred < position.QualMin {
			position.QualMin = phred
		}
		if phred > position.QualMax {
			position.QualMax = phred
		}
	}
}

// SummarizeFastq streams a whole FASTQ file, plain or gzip.
func SummarizeFastq(path string) (*ReadSummary, error) {
	parser, closer, err := fastq.Open(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	summary := NewReadSummary(path)
	for {
		read, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		summary.AddRead(read)
	}
	return summary, nil
}

// MeanLength returns the mean read length.
func (s *ReadSummary) MeanLength() float64 { return s.lengths.mean() }

// MedianLength returns the median read length.
func (s *ReadSummary) MedianLength() float64 { return s.lengths.median() }

// MinLength returns the shortest read length.
func (s *ReadSummary) MinLength() int { return s.lengths.min }

// MaxLength returns the longest read length.
func (s *ReadSummary) MaxLength() int { return s.lengths.max }

// NStats returns N50/N75/N90 of the read length distribution.
func (s *ReadSummary) NStats() NStats { return s.lengths.nstats() }

// GC returns the G+C fraction over called bases.
func (s *ReadSummary) GC() float64 {
	called := s.GCBases + s.ATBases
	if called == 0 {
		return 0
	}
	return float64(s.GCBases) / float64(called)
}

// Positions returns the per-position counters.
func (s *ReadSummary) Positions() []PositionCount { return s.positions }

// WritePositionCSV streams the per-position table into a zip-compressed
// CSV so complete-mode output stays bounded on disk.
func (s *ReadSummary) WritePositionCSV(w *writer.Writer, path, member string) error {
	header := []string{"position", "A", "C", "G", "T", "N", "mean_qual", "min_qual", "max_qual"}
	stream, err := w.CreateZipCSV(path, member, header)
	if err != nil {
		return err
	}
	for i := range s.positions {
		position := &s.positions[i]
		row := []string{
			itoa(i + 1),
			itoa64(position.A), itoa64(position.C), itoa64(position.G),
			itoa64(position.T), itoa64(position.N),
			ftoa(position.MeanQual()),
			itoa(position.QualMin), itoa(position.QualMax),
		}
		if err := stream.Write(row); err != nil {
			stream.Close()
			return err
		}
	}
	return stream.Close()
}
