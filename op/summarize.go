package op

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hhandika/segul/sequence"
	"github.com/hhandika/segul/summary"
)

// SummarizeAlignments runs the alignment and taxon summaries over every
// input and writes the CSV tables plus a dataset overview.
type SummarizeAlignments struct {
	Common
	// Step is the completeness bucket step in percent: 1, 2, 5, or 10.
	Step int
	// PerTaxon also writes the per-taxon table.
	PerTaxon bool
	// Dataset is filled in by Run for callers that render the overview
	// somewhere else, like the terminal.
	Dataset *summary.DatasetSummary
}

// locusResult is one worker's contribution: the locus summary, the
// locus's taxa, and a per-file taxon aggregate to merge.
type locusResult struct {
	locus *summary.LocusSummary
	ids   []string
	taxa  *summary.TaxonAggregate
}

// Run summarizes all inputs. Workers each summarize one file; the
// aggregates are folded together here after the pool drains, so the
// shared maps stay single-writer.
func (s *SummarizeAlignments) Run(ctx context.Context) error {
	results, err := mapFiles(ctx, &s.Common, func(file string) (*locusResult, error) {
		result, err := s.read(file)
		if err != nil {
			return nil, err
		}
		aln := result.Alignment
		value := &locusResult{
			locus: summary.SummarizeAlignment(stem(file), aln),
			ids:   append([]string(nil), aln.IDs()...),
		}
		if s.PerTaxon {
			value.taxa = summary.NewTaxonAggregate()
			value.taxa.Add(aln)
		}
		return value, nil
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return sequence.ErrEmptyResult
	}

	dataset := summary.NewDatasetSummary()
	taxa := summary.NewTaxonAggregate()
	var loci []*summary.LocusSummary
	for _, result := range results {
		dataset.Add(result.Value.ids, result.Value.locus)
		loci = append(loci, result.Value.locus)
		if s.PerTaxon {
			taxa.Merge(result.Value.taxa)
		}
	}
	s.Dataset = dataset

	out := s.writerFor()
	locusPath := filepath.Join(s.OutputDir, s.Prefix+"locus_summary.csv")
	if err := summary.WriteAlignmentCSV(out, locusPath, dataset, loci); err != nil {
		return err
	}
	if s.PerTaxon {
		taxonPath := filepath.Join(s.OutputDir, s.Prefix+"taxon_summary.csv")
		if err := summary.WriteTaxonCSV(out, taxonPath, taxa.Taxa()); err != nil {
			return err
		}
	}
	overviewPath := filepath.Join(s.OutputDir, s.Prefix+"summary.txt")
	return out.WriteFile(overviewPath, func(w io.Writer) error {
		return writeOverview(w, dataset, s.Step)
	})
}

// writeOverview renders the dataset-level report.
func writeOverview(w io.Writer, dataset *summary.DatasetSummary, step int) error {
	fmt.Fprintf(w, "Loci\t%d\n", dataset.Loci)
	fmt.Fprintf(w, "Taxa\t%d\n", dataset.TotalTaxa())
	fmt.Fprintf(w, "Sites\t%d\n", dataset.TotalSites)
	fmt.Fprintf(w, "Characters\t%d\n", dataset.TotalChars)
	fmt.Fprintf(w, "Missing\t%d\n", dataset.MissingCount)
	fmt.Fprintf(w, "Gaps\t%d\n", dataset.GapCount)
	fmt.Fprintf(w, "GC content\t%.4f\n", dataset.GC())
	fmt.Fprintf(w, "\nMatrix completeness\n")
	for _, bucket := range dataset.Completeness(step) {
		fmt.Fprintf(w, ">=%d%%\t%d loci\n", bucket.Percent, bucket.Loci)
	}
	return nil
}

// SummarizeReads streams FASTQ inputs and writes the read summary
// table, plus per-position tables when Complete is set.
type SummarizeReads struct {
	Common
	// Complete also writes the per-position zip CSV for each input.
	Complete bool
}

// Run summarizes all FASTQ inputs.
func (s *SummarizeReads) Run(ctx context.Context) error {
	results, err := mapFiles(ctx, &s.Common, func(file string) (*summary.ReadSummary, error) {
		return summary.SummarizeFastq(file)
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return sequence.ErrEmptyResult
	}
	summaries := make([]*summary.ReadSummary, 0, len(results))
	for _, result := range results {
		summaries = append(summaries, result.Value)
	}
	out := s.writerFor()
	path := filepath.Join(s.OutputDir, s.Prefix+"read_summary.csv")
	if err := summary.WriteReadCSV(out, path, summaries); err != nil {
		return err
	}
	if !s.Complete {
		return nil
	}
	for _, result := range results {
		zipPath := filepath.Join(s.OutputDir, s.Prefix+stem(result.File)+"_positions.zip")
		if err := result.Value.WritePositionCSV(out, zipPath, stem(result.File)+"_positions.csv"); err != nil {
			return err
		}
	}
	return nil
}

// SummarizeContigs summarizes FASTA assemblies.
type SummarizeContigs struct {
	Common
}

// Run summarizes all contig inputs.
func (s *SummarizeContigs) Run(ctx context.Context) error {
	results, err := mapFiles(ctx, &s.Common, func(file string) (*summary.ContigSummary, error) {
		return summary.SummarizeContigs(file)
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return sequence.ErrEmptyResult
	}
	summaries := make([]*summary.ContigSummary, 0, len(results))
	for _, result := range results {
		summaries = append(summaries, result.Value)
	}
	out := s.writerFor()
	path := filepath.Join(s.OutputDir, s.Prefix+"contig_summary.csv")
	return summary.WriteContigCSV(out, path, summaries)
}
