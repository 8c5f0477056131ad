package phylip

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

const sequentialInput = `2 8
taxon_one    ACGTACGT
taxon_two    ACGT--GT
`

const interleavedInput = `2 8
taxon_one    ACGT
taxon_two    ACGT

ACGT
--GT
`

func TestParseSequential(t *testing.T) {
	aln, _, err := Parse(strings.NewReader(sequentialInput), "seq.phy", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	checkTwoTaxa(t, aln)
}

func TestParseInterleaved(t *testing.T) {
	aln, _, err := Parse(strings.NewReader(interleavedInput), "int.phy", alphabet.Dna, false)
	if err != nil {
		t.Fatal(err)
	}
	checkTwoTaxa(t, aln)
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

func TestParseLengthMismatch(t *testing.T) {
	input := "2 8\na ACGT\nb ACGTACGT\n"
	_, _, err := Parse(strings.NewReader(input), "bad.phy", alphabet.Dna, false)
	var parseErr *sequence.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want ParseError", err)
	}
}

func TestParseInvalidCharacter(t *testing.T) {
	input := "1 4\na AC!T\n"
	_, _, err := Parse(strings.NewReader(input), "bad.phy", alphabet.Dna, false)
	var invalid *sequence.InvalidCharacterError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidCharacterError", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	aln := sequence.NewAlignment(alphabet.Dna)
	aln.Insert(sequence.Record{ID: "long_taxon_name", Sequence: []byte(strings.Repeat("ACGT", 200))})
	aln.Insert(sequence.Record{ID: "b", Sequence: []byte(strings.Repeat("AC-?", 200))})

	for _, interleave := range []bool{false, true} {
		var buff bytes.Buffer
		if err := Write(&buff, aln, interleave, 500); err != nil {
			t.Fatalf("Write(interleave=%v): %v", interleave, err)
		}
		parsed, _, err := Parse(&buff, "round.phy", alphabet.Dna, false)
		if err != nil {
			t.Fatalf("Parse(interleave=%v): %v", interleave, err)
		}
		if !aln.Equal(parsed) {
			t.Errorf("round trip mismatch for interleave=%v", interleave)
		}
	}
}

func TestWriteRefusesUnaligned(t *testing.T) {
	aln := sequence.NewAlignment(alphabet.Dna)
	aln.Insert(sequence.Record{ID: "a", Sequence: []byte("ACGT")})
	aln.Insert(sequence.Record{ID: "b", Sequence: []byte("AC")})
	var buff bytes.Buffer
	var notAligned *sequence.NotAlignedError
	if err := Write(&buff, aln, false, 500); !errors.As(err, &notAligned) {
		t.Errorf("got %v, want NotAlignedError", err)
	}
}
