package summary

import (
	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

// TaxonSummary accumulates per-taxon statistics across loci.
type TaxonSummary struct {
	Taxon        string
	Loci         int
	Chars        int64
	GapCount     int64
	MissingCount int64
	CharCounts   map[byte]int64
}

// GC returns the taxon's G+C fraction over unambiguous bases.
func (t *TaxonSummary) GC() float64 {
	acgt := t.CharCounts['A'] + t.CharCounts['C'] + t.CharCounts['G'] + t.CharCounts['T']
	if acgt == 0 {
		return 0
	}
	return float64(t.CharCounts['G']+t.CharCounts['C']) / float64(acgt)
}

// AT returns the taxon's A+T fraction over unambiguous bases.
func (t *TaxonSummary) AT() float64 {
	acgt := t.CharCounts['A'] + t.CharCounts['C'] + t.CharCounts['G'] + t.CharCounts['T']
	if acgt == 0 {
		return 0
	}
	return float64(t.CharCounts['A']+t.CharCounts['T']) / float64(acgt)
}

// TaxonAggregate collects TaxonSummary values keyed by taxon id.
type TaxonAggregate struct {
	taxa map[string]*TaxonSummary
}

// NewTaxonAggregate returns an empty aggregate.
func NewTaxonAggregate() *TaxonAggregate {
	return &TaxonAggregate{taxa: make(map[string]*TaxonSummary)}
}

// Add folds one alignment into the aggregate.
func (agg *TaxonAggregate) Add(aln *sequence.Alignment) {
	datatype := aln.Header.Datatype
	for _, record := range aln.Records() {
		taxon, ok := agg.taxa[record.ID]
		if !ok {
			taxon = &TaxonSummary{Taxon: record.ID, CharCounts: make(map[byte]int64)}
			agg.taxa[record.ID] = taxon
		}
		taxon.Loci++
		for _, raw := range record.Sequence {
			b := upper(raw)
			taxon.CharCounts[b]++
			switch {
			case alphabet.IsGap(b):
				taxon.GapCount++
			case alphabet.IsMissing(datatype, b):
				taxon.MissingCount++
			default:
				taxon.Chars++
			}
		}
	}
}

// Merge folds another aggregate into this one. Workers summarize their
// own files and the aggregator merges, keeping each map single-writer.
func (agg *TaxonAggregate) Merge(other *TaxonAggregate) {
	for id, theirs := range other.taxa {
		mine, ok := agg.taxa[id]
		if !ok {
			agg.taxa[id] = theirs
			continue
		}
		mine.Loci += theirs.Loci
		mine.Chars += theirs.Chars
		mine.GapCount += theirs.GapCount
		mine.MissingCount += theirs.MissingCount
		for b, count := range theirs.CharCounts {
			mine.CharCounts[b] += count
		}
	}
}

// Taxa returns the summaries in alphanumeric taxon order.
func (agg *TaxonAggregate) Taxa() []*TaxonSummary {
	ids := make([]string, 0, len(agg.taxa))
	for id := range agg.taxa {
		ids = append(ids, id)
	}
	sequence.SortAlphanumeric(ids)
	taxa := make([]*TaxonSummary, 0, len(ids))
	for _, id := range ids {
		taxa = append(taxa, agg.taxa[id])
	}
	return taxa
}
