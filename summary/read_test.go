package summary

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/hhandika/segul/seqio/fastq"
	"github.com/hhandika/segul/writer"
)

func TestReadSummary(t *testing.T) {
	s := NewReadSummary("reads.fq")
	s.AddRead(&fastq.Read{ID: "r1", Sequence: []byte("ACGT"), Quality: []byte("IIII")})
	s.AddRead(&fastq.Read{ID: "r2", Sequence: []byte("GGCCAA"), Quality: []byte("!!!!!!")})

	if s.Reads != 2 || s.Bases != 10 {
		t.Errorf("reads=%d bases=%d, want 2 and 10", s.Reads, s.Bases)
	}
	if s.MinLength() != 4 || s.MaxLength() != 6 {
		t.Errorf("min=%d max=%d, want 4 and 6", s.MinLength(), s.MaxLength())
	}
	// GC: r1 has 2 GC of 4, r2 has 4 GC of 6.
	if gc := s.GC(); gc != 0.6 {
		t.Errorf("GC = %f, want 0.6", gc)
	}
	// Phred: 'I' is 40, '!' is 0.
	positions := s.Positions()
	if len(positions) != 6 {
		t.Fatalf("positions = %d, want 6", len(positions))
	}
	if positions[0].MeanQual() != 20 {
		t.Errorf("position 1 mean qual = %f, want 20", positions[0].MeanQual())
	}
	if positions[4].QualMax != 0 {
		t.Errorf("position 5 max qual = %d, want 0", positions[4].QualMax)
	}
	if s.QualHist[40] != 4 || s.QualHist[0] != 6 {
		t.Errorf("QualHist[40]=%d QualHist[0]=%d, want 4 and 6", s.QualHist[40], s.QualHist[0])
	}
}

func TestSummarizeFastqFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reads.fastq")
	content := "@r1\nACGT\n+\nIIII\n@r2\nGG\n+\nII\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := SummarizeFastq(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Reads != 2 || s.Bases != 6 {
		t.Errorf("reads=%d bases=%d, want 2 and 6", s.Reads, s.Bases)
	}
}

func TestWritePositionCSV(t *testing.T) {
	s := NewReadSummary("reads.fq")
	s.AddRead(&fastq.Read{ID: "r1", Sequence: []byte("AC"), Quality: []byte("II")})

	dir := t.TempDir()
	path := filepath.Join(dir, "positions.zip")
	if err := s.WritePositionCSV(writer.New(false), path, "positions.csv"); err != nil {
		t.Fatal(err)
	}
	archive, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()
	if len(archive.File) != 1 {
		t.Fatalf("archive members = %d, want 1", len(archive.File))
	}
}

func TestSummarizeContigs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contigs.fasta")
	content := ">c1\nACGTACGT\n>c2\nGGCC\n>c3\nAANN\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := SummarizeContigs(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 3 || s.Total != 16 {
		t.Errorf("count=%d total=%d, want 3 and 16", s.Count, s.Total)
	}
	if s.NStats().N50 != 8 {
		t.Errorf("N50 = %d, want 8", s.NStats().N50)
	}
	if s.MeanLength() != 16.0/3.0 {
		t.Errorf("mean = %f", s.MeanLength())
	}
	if s.NBases != 2 {
		t.Errorf("NBases = %d, want 2", s.NBases)
	}
}
