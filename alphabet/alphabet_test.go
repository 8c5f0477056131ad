package alphabet

import (
	"testing"
)

func TestValidDna(t *testing.T) {
	for _, b := range []byte("ACGTUNRYSWKMBDHVacgtn-?.") {
		if !Valid(Dna, b) {
			t.Errorf("Valid(Dna, %q) = false, want true", b)
		}
	}
	for _, b := range []byte("EFJ1 @\t!") {
		if Valid(Dna, b) {
			t.Errorf("Valid(Dna, %q) = true, want false", b)
		}
	}
}

func TestValidAminoAcid(t *testing.T) {
	for _, b := range []byte("ACDEFGHIKLMNPQRSTVWYBJZX*-?mlk") {
		if !Valid(AminoAcid, b) {
			t.Errorf("Valid(AminoAcid, %q) = false, want true", b)
		}
	}
	for _, b := range []byte("O U.1") {
		if Valid(AminoAcid, b) {
			t.Errorf("Valid(AminoAcid, %q) = true, want false", b)
		}
	}
}

func TestValidIgnore(t *testing.T) {
	for _, b := range []byte("!@# \x00\xff") {
		if !Valid(Ignore, b) {
			t.Errorf("Valid(Ignore, %q) = false, want true", b)
		}
	}
}

func TestParseDatatype(t *testing.T) {
	for _, test := range []struct {
		name string
		want Datatype
	}{
		{"dna", Dna},
		{"aa", AminoAcid},
		{"protein", AminoAcid},
		{"ignore", Ignore},
	} {
		got, err := Parse(test.name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", test.name, err)
		}
		if got != test.want {
			t.Errorf("Parse(%q) = %v, want %v", test.name, got, test.want)
		}
	}
	if _, err := Parse("rna"); err == nil {
		t.Error("Parse(rna): expected error")
	}
}

func TestTranslateStandardTable(t *testing.T) {
	table, err := NewTranslationTable(1)
	if err != nil {
		t.Fatal(err)
	}
	got, truncated, err := table.Translate([]byte("ATGAAATAA"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if truncated {
		t.Error("Translate: unexpected truncation")
	}
	if string(got) != "MK*" {
		t.Errorf("Translate(ATGAAATAA, 1) = %q, want MK*", got)
	}
}

func TestTranslateFrameTwoTruncates(t *testing.T) {
	table, err := NewTranslationTable(1)
	if err != nil {
		t.Fatal(err)
	}
	got, truncated, err := table.Translate([]byte("ATGAAATAA"), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !truncated {
		t.Error("Translate frame 2 over 9 bases should truncate")
	}
	if string(got) != "*N" {
		t.Errorf("Translate(ATGAAATAA, 2) = %q, want *N", got)
	}
}

func TestTranslateVertebrateMito(t *testing.T) {
	table, err := NewTranslationTable(2)
	if err != nil {
		t.Fatal(err)
	}
	// AGA is a stop in the vertebrate mitochondrial code, arginine in the
	// standard code.
	if got := table.TranslateCodon([]byte("AGA")); got != '*' {
		t.Errorf("table 2 AGA = %c, want *", got)
	}
	standard, _ := NewTranslationTable(1)
	if got := standard.TranslateCodon([]byte("AGA")); got != 'R' {
		t.Errorf("table 1 AGA = %c, want R", got)
	}
}

func TestTranslateCodonEdgeCases(t *testing.T) {
	table, _ := NewTranslationTable(1)
	for _, test := range []struct {
		codon string
		want  byte
	}{
		{"---", '-'},
		{"?--", '-'},
		{"A-G", 'X'},
		{"ANN", 'X'},
		{"atg", 'M'},
		{"AUG", 'M'},
	} {
		if got := table.TranslateCodon([]byte(test.codon)); got != test.want {
			t.Errorf("TranslateCodon(%q) = %c, want %c", test.codon, got, test.want)
		}
	}
}

func TestUnknownTable(t *testing.T) {
	for _, id := range []int{0, 7, 8, 17, 20, 34} {
		if _, err := NewTranslationTable(id); err == nil {
			t.Errorf("NewTranslationTable(%d): expected error", id)
		}
	}
}

func TestInvalidReadingFrame(t *testing.T) {
	table, _ := NewTranslationTable(1)
	for _, frame := range []int{0, 4, -1} {
		if _, _, err := table.Translate([]byte("ATG"), frame); err == nil {
			t.Errorf("Translate frame %d: expected error", frame)
		}
	}
}
