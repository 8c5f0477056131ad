package nexus

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

const sequentialInput = `#NEXUS
begin data;
dimensions ntax=2 nchar=8;
format datatype=dna missing=? gap=-;
matrix
taxon_one  ACGTACGT
taxon_two  ACGT--GT
;
end;
`

const interleavedInput = `#NEXUS
[generated by a test]
begin data;
dimensions ntax=2 nchar=8;
format datatype=dna missing=? gap=- interleave;
matrix
taxon_one  ACGT
taxon_two  ACGT

taxon_one  ACGT
taxon_two  --GT
;
end;
`

const setsInput = `#NEXUS
begin data;
dimensions ntax=2 nchar=7;
format datatype=dna missing=? gap=-;
matrix
a  ACGTGGG
b  ACGATTT
;
end;
begin sets;
charset locus1 = 1-4;
charset locus2 = 5-7;
end;
`

func TestParseSequential(t *testing.T) {
	file, err := Parse(strings.NewReader(sequentialInput), "seq.nex", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	checkTwoTaxa(t, file.Alignment)
}

func TestParseInterleaved(t *testing.T) {
	file, err := Parse(strings.NewReader(interleavedInput), "int.nex", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	checkTwoTaxa(t, file.Alignment)
}

func checkTwoTaxa(t *testing.T, aln *sequence.Alignment) {
	t.Helper()
	if aln.Len() != 2 || aln.Nchar() != 8 {
		t.Fatalf("got ntax=%d nchar=%d, want 2 and 8", aln.Len(), aln.Nchar())
	}
	one, _ := aln.Get("taxon_one")
	if string(one.Sequence) != "ACGTACGT" {
		t.Errorf("taxon_one = %q", one.Sequence)
	}
	two, _ := aln.Get("taxon_two")
	if string(two.Sequence) != "ACGT--GT" {
		t.Errorf("taxon_two = %q", two.Sequence)
	}
}

func TestParseSetsBlock(t *testing.T) {
	file, err := Parse(strings.NewReader(setsInput), "sets.nex", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"charset locus1 = 1-4;", "charset locus2 = 5-7;"}
	if diff := cmp.Diff(want, file.Charsets); diff != "" {
		t.Errorf("charsets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSkipsUnknownBlocks(t *testing.T) {
	input := "#NEXUS\nbegin trees;\ntree t1 = (a,b);\nend;\n" +
		strings.TrimPrefix(sequentialInput, "#NEXUS\n")
	file, err := Parse(strings.NewReader(input), "trees.nex", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	checkTwoTaxa(t, file.Alignment)
}

func TestParseNestedComments(t *testing.T) {
	input := strings.Replace(sequentialInput, "matrix",
		"[a [nested [deeply]] comment]\nmatrix", 1)
	file, err := Parse(strings.NewReader(input), "comments.nex", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	checkTwoTaxa(t, file.Alignment)
}

func TestParseMissingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("begin data;\n"), "bad.nex", alphabet.Dna, false)
	var parseErr *sequence.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want ParseError", err)
	}
}

func TestParseDimensionMismatch(t *testing.T) {
	input := strings.Replace(sequentialInput, "ntax=2", "ntax=3", 1)
	if _, err := Parse(strings.NewReader(input), "bad.nex", alphabet.Dna, false); err == nil {
		t.Error("ntax mismatch should fail")
	}
}

func TestParseProteinDatatype(t *testing.T) {
	input := `#NEXUS
begin data;
dimensions ntax=1 nchar=4;
format datatype=protein missing=? gap=-;
matrix
a  MKL*
;
end;
`
	file, err := Parse(strings.NewReader(input), "prot.nex", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	if file.Alignment.Header.Datatype != alphabet.AminoAcid {
		t.Errorf("datatype = %v, want AminoAcid", file.Alignment.Header.Datatype)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	aln := sequence.NewAlignment(alphabet.Dna)
	aln.Insert(sequence.Record{ID: "first_taxon", Sequence: []byte(strings.Repeat("ACGT", 150))})
	aln.Insert(sequence.Record{ID: "b", Sequence: []byte(strings.Repeat("A-?T", 150))})

	for _, interleave := range []bool{false, true} {
		var buff bytes.Buffer
		if err := Write(&buff, aln, interleave, 500); err != nil {
			t.Fatalf("Write(interleave=%v): %v", interleave, err)
		}
		file, err := Parse(&buff, "round.nex", alphabet.Dna, false)
		if err != nil {
			t.Fatalf("Parse(interleave=%v): %v", interleave, err)
		}
		if !aln.Equal(file.Alignment) {
			t.Errorf("round trip mismatch for interleave=%v", interleave)
		}
	}
}
