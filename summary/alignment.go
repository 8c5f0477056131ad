/*
Package summary computes the statistics segul reports: per-locus and
dataset-wide alignment summaries, per-taxon summaries, and streaming
summaries of raw reads and contigs.

Alignment summaries run one pass over the residues for character counts
and one pass over the columns for site classification; nothing here
needs more memory than one alignment.
*/
package summary

import (
	"sort"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

// LocusSummary holds the statistics of a single alignment.
type LocusSummary struct {
	Locus      string
	Ntax       int
	Nchar      int
	CharCounts map[byte]int
	// Site classification over non-gap, non-missing characters.
	Conserved            int
	Variable             int
	ParsimonyInformative int
	MissingCount         int
	GapCount             int
}

// GC returns the G+C fraction over unambiguous bases.
func (s *LocusSummary) GC() float64 {
	return baseFraction(s.CharCounts, 'G', 'C')
}

// AT returns the A+T fraction over unambiguous bases.
func (s *LocusSummary) AT() float64 {
	return baseFraction(s.CharCounts, 'A', 'T')
}

// MissingProportion returns missing plus gap characters over the whole
// matrix.
func (s *LocusSummary) MissingProportion() float64 {
	total := s.Ntax * s.Nchar
	if total == 0 {
		return 0
	}
	return float64(s.MissingCount+s.GapCount) / float64(total)
}

func baseFraction(counts map[byte]int, first, second byte) float64 {
	acgt := counts['A'] + counts['C'] + counts['G'] + counts['T']
	if acgt == 0 {
		return 0
	}
	return float64(counts[first]+counts[second]) / float64(acgt)
}

// upper folds a residue byte to upper case.
func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// SummarizeAlignment computes the per-locus summary.
func SummarizeAlignment(locus string, aln *sequence.Alignment) *LocusSummary {
	summary := &LocusSummary{
		Locus:      locus,
		Ntax:       aln.Len(),
		Nchar:      aln.Nchar(),
		CharCounts: make(map[byte]int),
	}
	datatype := aln.Header.Datatype
	for _, record := range aln.Records() {
		for _, raw := range record.Sequence {
			b := upper(raw)
			summary.CharCounts[b]++
			switch {
			case alphabet.IsGap(b):
				summary.GapCount++
			case alphabet.IsMissing(datatype, b):
				summary.MissingCount++
			}
		}
	}

	ids := aln.IDs()
	var column []byte
	counts := make(map[byte]int)
	for site := 0; site < aln.Nchar(); site++ {
		column = aln.Column(site, ids, column)
		classifySite(datatype, column, counts, summary)
	}
	return summary
}

// classifySite updates the conserved, variable, and parsimony counters
// for one column. Gap and missing characters never count as states.
func classifySite(datatype alphabet.Datatype, column []byte, counts map[byte]int, summary *LocusSummary) {
	clear(counts)
	for _, raw := range column {
		b := upper(raw)
		if alphabet.IsGap(b) || alphabet.IsMissing(datatype, b) {
			continue
		}
		counts[b]++
	}
	if len(counts) == 0 {
		return
	}
	if len(counts) == 1 {
		summary.Conserved++
		return
	}
	summary.Variable++
	informative := 0
	for _, count := range counts {
		if count >= 2 {
			informative++
		}
	}
	if informative >= 2 {
		summary.ParsimonyInformative++
	}
}

// DatasetSummary aggregates locus summaries over a whole input set.
type DatasetSummary struct {
	Loci         int
	TotalSites   int
	TotalChars   int64
	MissingCount int64
	GapCount     int64
	CharCounts   map[byte]int64
	taxa         map[string]bool
	// taxaPerLocus retains per-locus taxon counts for the completeness
	// buckets, which need the final union size.
	taxaPerLocus []int
}

// NewDatasetSummary returns an empty aggregate.
func NewDatasetSummary() *DatasetSummary {
	return &DatasetSummary{
		CharCounts: make(map[byte]int64),
		taxa:       make(map[string]bool),
	}
}

// Add folds one locus into the aggregate. The ids are the locus's
// taxa; only their union is retained.
func (d *DatasetSummary) Add(ids []string, locus *LocusSummary) {
	d.Loci++
	d.TotalSites += locus.Nchar
	d.MissingCount += int64(locus.MissingCount)
	d.GapCount += int64(locus.GapCount)
	for b, count := range locus.CharCounts {
		d.CharCounts[b] += int64(count)
		d.TotalChars += int64(count)
	}
	for _, id := range ids {
		d.taxa[id] = true
	}
	d.taxaPerLocus = append(d.taxaPerLocus, locus.Ntax)
}

// TotalTaxa returns the size of the taxon union.
func (d *DatasetSummary) TotalTaxa() int {
	return len(d.taxa)
}

// GC returns the dataset-wide G+C fraction over unambiguous bases.
func (d *DatasetSummary) GC() float64 {
	acgt := d.CharCounts['A'] + d.CharCounts['C'] + d.CharCounts['G'] + d.CharCounts['T']
	if acgt == 0 {
		return 0
	}
	return float64(d.CharCounts['G']+d.CharCounts['C']) / float64(acgt)
}

// CompletenessBucket counts the loci whose taxon completeness meets a
// threshold.
type CompletenessBucket struct {
	Percent int
	Loci    int
}

// Completeness returns bucket counts from 100% down to 45% using the
// given step (1, 2, 5, or 10 percent). A locus is complete at p% when
// its taxa cover at least p% of the taxon union.
func (d *DatasetSummary) Completeness(step int) []CompletenessBucket {
	if step <= 0 {
		step = 5
	}
	union := len(d.taxa)
	var buckets []CompletenessBucket
	for percent := 100; percent >= 45; percent -= step {
		count := 0
		for _, ntax := range d.taxaPerLocus {
			if union > 0 && float64(ntax)/float64(union)*100 >= float64(percent) {
				count++
			}
		}
		buckets = append(buckets, CompletenessBucket{Percent: percent, Loci: count})
	}
	return buckets
}

// CharOrder returns the characters seen in the dataset with the common
// bases first, then everything else alphabetically. It fixes the column
// order of the per-character histogram in CSV output.
func (d *DatasetSummary) CharOrder() []byte {
	leading := []byte{'A', 'C', 'G', 'T', 'N', '-', '?'}
	isLeading := make(map[byte]bool, len(leading))
	var order []byte
	for _, b := range leading {
		isLeading[b] = true
		if d.CharCounts[b] > 0 {
			order = append(order, b)
		}
	}
	var rest []byte
	for b := range d.CharCounts {
		if !isLeading[b] {
			rest = append(rest, b)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(order, rest...)
}
