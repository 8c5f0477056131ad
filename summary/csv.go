package summary

import (
	"strconv"

	"github.com/hhandika/segul/writer"
)

func itoa(n int) string     { return strconv.Itoa(n) }
func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) }

// AlignmentCSVHeader returns the stable per-locus CSV header. The
// per-character histogram columns follow the fixed counter columns.
func AlignmentCSVHeader(chars []byte) []string {
	header := []string{"locus", "ntax", "nchar", "missing", "gc", "at", "pis", "var", "con"}
	for _, b := range chars {
		header = append(header, string(b))
	}
	return header
}

// AlignmentCSVRow renders one locus summary against the given character
// column order.
func AlignmentCSVRow(locus *LocusSummary, chars []byte) []string {
	row := []string{
		locus.Locus,
		itoa(locus.Ntax),
		itoa(locus.Nchar),
		ftoa(locus.MissingProportion()),
		ftoa(locus.GC()),
		ftoa(locus.AT()),
		itoa(locus.ParsimonyInformative),
		itoa(locus.Variable),
		itoa(locus.Conserved),
	}
	for _, b := range chars {
		row = append(row, itoa(locus.CharCounts[b]))
	}
	return row
}

// WriteAlignmentCSV writes the per-locus summary table.
func WriteAlignmentCSV(w *writer.Writer, path string, dataset *DatasetSummary, loci []*LocusSummary) error {
	chars := dataset.CharOrder()
	rows := make([][]string, 0, len(loci))
	for _, locus := range loci {
		rows = append(rows, AlignmentCSVRow(locus, chars))
	}
	return w.WriteCSV(path, AlignmentCSVHeader(chars), rows)
}

// taxonCSVHeader is the stable per-taxon CSV schema.
var taxonCSVHeader = []string{
	"taxon", "loci", "chars", "gaps", "missing", "gc", "at", "A", "C", "G", "T",
}

// WriteTaxonCSV writes the per-taxon summary table.
func WriteTaxonCSV(w *writer.Writer, path string, taxa []*TaxonSummary) error {
	rows := make([][]string, 0, len(taxa))
	for _, taxon := range taxa {
		rows = append(rows, []string{
			taxon.Taxon,
			itoa(taxon.Loci),
			itoa64(taxon.Chars),
			itoa64(taxon.GapCount),
			itoa64(taxon.MissingCount),
			ftoa(taxon.GC()),
			ftoa(taxon.AT()),
			itoa64(taxon.CharCounts['A']),
			itoa64(taxon.CharCounts['C']),
			itoa64(taxon.CharCounts['G']),
			itoa64(taxon.CharCounts['T']),
		})
	}
	return w.WriteCSV(path, taxonCSVHeader, rows)
}

// readCSVHeader is the stable read-summary CSV schema.
var readCSVHeader = []string{
	"file", "reads", "bases", "min_len", "max_len", "mean_len", "median_len",
	"n50", "n75", "n90", "gc",
}

// WriteReadCSV writes one row per FASTQ input.
func WriteReadCSV(w *writer.Writer, path string, summaries []*ReadSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		n := s.NStats()
		rows = append(rows, []string{
			s.File,
			itoa64(s.Reads),
			itoa64(s.Bases),
			itoa(s.MinLength()),
			itoa(s.MaxLength()),
			ftoa(s.MeanLength()),
			ftoa(s.MedianLength()),
			itoa(n.N50), itoa(n.N75), itoa(n.N90),
			ftoa(s.GC()),
		})
	}
	return w.WriteCSV(path, readCSVHeader, rows)
}

// contigCSVHeader is the stable contig-summary CSV schema.
var contigCSVHeader = []string{
	"file", "contigs", "bases", "min_len", "max_len", "mean_len", "median_len",
	"n50", "n75", "n90", "gc",
}

// WriteContigCSV writes one row per assembly input.
func WriteContigCSV(w *writer.Writer, path string, summaries []*ContigSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		n := s.NStats()
		rows = append(rows, []string{
			s.File,
			itoa(s.Count),
			itoa64(s.Total),
			itoa(s.MinLength()),
			itoa(s.MaxLength()),
			ftoa(s.MeanLength()),
			ftoa(s.MedianLength()),
			itoa(n.N50), itoa(n.N75), itoa(n.N90),
			ftoa(s.GC()),
		})
	}
	return w.WriteCSV(path, contigCSVHeader, rows)
}
