package seqio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

func TestDetect(t *testing.T) {
	for _, test := range []struct {
		path string
		want Format
	}{
		{"locus1.fas", Fasta},
		{"locus1.fasta", Fasta},
		{"data/locus1.nex", Nexus},
		{"locus1.nexus", Nexus},
		{"locus1.phy", Phylip},
		{"reads.fastq", Fastq},
		{"reads.fq.gz", Fastq},
		{"reads.FASTQ.GZ", Fastq},
		{"notes.txt", Auto},
		{"noextension", Auto},
	} {
		if got := Detect(test.path); got != test.want {
			t.Errorf("Detect(%q) = %v, want %v", test.path, got, test.want)
		}
	}
}

func TestParseOutputFormatAndExtension(t *testing.T) {
	for _, test := range []struct {
		name string
		want OutputFormat
		ext  string
	}{
		{"nexus", OutNexus, ".nex"},
		{"nexus-int", OutNexusInt, ".nex"},
		{"phylip", OutPhylip, ".phy"},
		{"phylip-int", OutPhylipInt, ".phy"},
		{"fasta", OutFasta, ".fas"},
		{"fasta-int", OutFastaInt, ".fas"},
	} {
		got, err := ParseOutputFormat(test.name)
		if err != nil {
			t.Fatalf("ParseOutputFormat(%q): %v", test.name, err)
		}
		if got != test.want || got.Extension() != test.ext {
			t.Errorf("ParseOutputFormat(%q) = %v ext %s, want %v ext %s",
				test.name, got, got.Extension(), test.want, test.ext)
		}
	}
}

// Any alignment written in any supported layout must parse back to the
// same taxa and residues.
func TestRoundTripAllFormats(t *testing.T) {
	aln := sequence.NewAlignment(alphabet.Dna)
	aln.Insert(sequence.Record{ID: "sp1_gene1", Sequence: []byte("ACGTACGTAC")})
	aln.Insert(sequence.Record{ID: "sp2_gene1", Sequence: []byte("AC-TAC?TAC")})
	aln.Insert(sequence.Record{ID: "sp10", Sequence: []byte("ACGTACGTNN")})

	dir := t.TempDir()
	for _, format := range []OutputFormat{
		OutNexus, OutNexusInt, OutPhylip, OutPhylipInt, OutFasta, OutFastaInt,
	} {
		var buff bytes.Buffer
		if err := WriteAlignment(&buff, aln, format); err != nil {
			t.Fatalf("WriteAlignment(%v): %v", format, err)
		}
		path := filepath.Join(dir, "round"+format.Extension())
		if err := os.WriteFile(path, buff.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
		result, err := ReadAlignment(path, Auto, alphabet.Dna, false)
		if err != nil {
			t.Fatalf("ReadAlignment(%v): %v", format, err)
		}
		if !aln.Equal(result.Alignment) {
			t.Errorf("round trip mismatch for output format %v", format)
		}
	}
}

func TestReadAlignmentUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	os.WriteFile(path, []byte(">a\nACGT\n"), 0o644)
	if _, err := ReadAlignment(path, Auto, alphabet.Dna, false); err == nil {
		t.Error("unknown extension with Auto should fail")
	}
	result, err := ReadAlignment(path, Fasta, alphabet.Dna, false)
	if err != nil {
		t.Fatalf("declared format should parse: %v", err)
	}
	if result.Alignment.Len() != 1 {
		t.Errorf("Len() = %d, want 1", result.Alignment.Len())
	}
}
