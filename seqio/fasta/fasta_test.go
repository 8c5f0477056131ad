package fasta

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

func TestParser(t *testing.T) {
	for _, test := range []struct {
		name     string
		content  string
		expected []sequence.Record
	}{
		{
			name:    "eof without trailing newline",
			content: ">taxon1\nGATTACA\nCATGAT",
			expected: []sequence.Record{
				{ID: "taxon1", Sequence: []byte("GATTACACATGAT")},
			},
		},
		{
			name:    "description and blank lines",
			content: ">taxon1 isolate 7\nGATTACA\n\nCATGAT\n;comment\n>taxon2\nAAAA\n",
			expected: []sequence.Record{
				{ID: "taxon1", Description: "isolate 7", Sequence: []byte("GATTACACATGAT")},
				{ID: "taxon2", Sequence: []byte("AAAA")},
			},
		},
		{
			name:    "internal whitespace stripped",
			content: ">t\nACGT ACGT\tAC\n",
			expected: []sequence.Record{
				{ID: "t", Sequence: []byte("ACGTACGTAC")},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			parser := NewParser(strings.NewReader(test.content), "test.fas", alphabet.Dna)
			var records []sequence.Record
			for {
				record, err := parser.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("Next(): %v", err)
				}
				records = append(records, *record)
			}
			if diff := cmp.Diff(test.expected, records); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParserInvalidCharacter(t *testing.T) {
	parser := NewParser(strings.NewReader(">t\nACGE\n"), "bad.fas", alphabet.Dna)
	_, err := parser.Next()
	var invalid *sequence.InvalidCharacterError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidCharacterError", err)
	}
	if invalid.Byte != 'E' || invalid.ID != "t" {
		t.Errorf("error = %+v, want byte E in sequence t", invalid)
	}
}

func TestParserIgnoreSkipsValidation(t *testing.T) {
	parser := NewParser(strings.NewReader(">t\nACGE!\n"), "odd.fas", alphabet.Ignore)
	record, err := parser.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	if string(record.Sequence) != "ACGE!" {
		t.Errorf("Sequence = %q", record.Sequence)
	}
}

func TestParseDuplicateHandling(t *testing.T) {
	content := ">a\nACGT\n>a\nACGT\n>b\nTTTT\n"
	aln, warnings, err := Parse(strings.NewReader(content), "dup.fas", alphabet.Dna, false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if aln.Len() != 2 {
		t.Errorf("Len() = %d, want 2", aln.Len())
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one duplicate warning", warnings)
	}

	if _, _, err := Parse(strings.NewReader(content), "dup.fas", alphabet.Dna, true); err == nil {
		t.Error("strict mode should reject identical duplicates")
	}

	conflicting := ">a\nACGT\n>a\nTTTT\n"
	_, _, err = Parse(strings.NewReader(conflicting), "dup.fas", alphabet.Dna, false)
	var dup *sequence.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want DuplicateIDError", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	records := []sequence.Record{
		{ID: "sp1", Description: "first sample", Sequence: []byte("ACGTACGTAC")},
		{ID: "sp2", Sequence: []byte("ACGT-?GTAC")},
	}
	for _, wrap := range []int{0, 4} {
		var buff bytes.Buffer
		if err := Write(&buff, records, wrap); err != nil {
			t.Fatalf("Write(wrap=%d): %v", wrap, err)
		}
		parser := NewParser(&buff, "round.fas", alphabet.Dna)
		parsed, err := parser.ParseAll()
		if err != nil {
			t.Fatalf("ParseAll(wrap=%d): %v", wrap, err)
		}
		if diff := cmp.Diff(records, parsed); diff != "" {
			t.Errorf("round trip mismatch wrap=%d (-want +got):\n%s", wrap, diff)
		}
	}
}
