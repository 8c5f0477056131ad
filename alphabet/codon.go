package alphabet

import (
	"fmt"
)

/******************************************************************************

Translation table generation.

The NCBI publishes its genetic codes as two 64-character strings: one
mapping each codon (in TCAG order over three base positions) to an amino
acid, and one marking alternative start codons. Generating the lookup
tables from the amino acid strings keeps each table definition to a single line
and makes it easy to diff against the published data at
https://www.ncbi.nlm.nih.gov/Taxonomy/Utils/wprintgc.cgi

Tables 7, 8 and 17-20 were never assigned by the NCBI, which is why the
numbering below has holes.

******************************************************************************/

// TranslationTable maps codon triplets to amino acid letters for one NCBI
// genetic code.
type TranslationTable struct {
	ID     int
	codons map[string]byte
}

// UnknownTableError is returned when a translation table id is not one of
// the NCBI genetic codes segul ships.
type UnknownTableError struct {
	ID int
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown NCBI translation table %d", e.ID)
}

// InvalidReadingFrameError is returned for reading frames outside 1-3.
type InvalidReadingFrameError struct {
	Frame int
}

func (e *InvalidReadingFrameError) Error() string {
	return fmt.Sprintf("invalid reading frame %d: must be 1, 2, or 3", e.Frame)
}

// NewTranslationTable returns the NCBI genetic code with the given id.
func NewTranslationTable(id int) (*TranslationTable, error) {
	aminoAcids, ok := ncbiTables[id]
	if !ok {
		return nil, &UnknownTableError{ID: id}
	}
	return &TranslationTable{ID: id, codons: generateCodonMap(aminoAcids)}, nil
}

const (
	base1 = "TTTTTTTTTTTTTTTTCCCCCCCCCCCCCCCCAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGG"
	base2 = "TTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGG"
	base3 = "TCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAG"
)

func generateCodonMap(aminoAcids string) map[string]byte {
	codons := make(map[string]byte, 64)
	for i := 0; i < 64; i++ {
		triplet := string([]byte{base1[i], base2[i], base3[i]})
		codons[triplet] = aminoAcids[i]
	}
	return codons
}

// ncbiTables stores the amino acid strings for every genetic code segul
// supports, keyed by the NCBI table number.
var ncbiTables = map[int]string{
	1:  "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	2:  "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSS**VVVVAAAADDEEGGGG",
	3:  "FFLLSSSSYY**CCWWTTTTPPPPHHQQRRRRIIMMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	4:  "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	5:  "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSSSSVVVVAAAADDEEGGGG",
	6:  "FFLLSSSSYYQQCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	9:  "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNNKSSSSVVVVAAAADDEEGGGG",
	10: "FFLLSSSSYY**CCCWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	11: "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	12: "FFLLSSSSYY**CC*WLLLSPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	13: "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSSGGVVVVAAAADDEEGGGG",
	14: "FFLLSSSSYYY*CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNNKSSSSVVVVAAAADDEEGGGG",
	15: "FFLLSSSSYY*QCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	16: "FFLLSSSSYY*LCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	21: "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNNKSSSSVVVVAAAADDEEGGGG",
	22: "FFLLSS*SYY*LCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	23: "FF*LSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	24: "FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSSKVVVVAAAADDEEGGGG",
	25: "FFLLSSSSYY**CCGWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	26: "FFLLSSSSYY**CC*WLLLAPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	27: "FFLLSSSSYYQQCCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	28: "FFLLSSSSYYQQCCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	29: "FFLLSSSSYYYYCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	30: "FFLLSSSSYYEECC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	31: "FFLLSSSSYYEECCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	32: "FFLLSSSSYY*WCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG",
	33: "FFLLSSSSYYY*CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSSKVVVVAAAADDEEGGGG",
}

// TranslateCodon maps a single codon to its amino acid letter. U is read
// as T and case is folded before lookup. Codons containing gap or
// ambiguity symbols translate to X, except codons made entirely of '-'
// and '?' symbols, which stay gaps. N counts as ambiguity here, so NNN
// translates to X.
func (t *TranslationTable) TranslateCodon(codon []byte) byte {
	var triplet [3]byte
	allGap := true
	for i := 0; i < 3; i++ {
		b := codon[i]
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		if b == 'U' {
			b = 'T'
		}
		if b != '-' && b != '?' {
			allGap = false
		}
		triplet[i] = b
	}
	if allGap {
		return '-'
	}
	if aminoAcid, ok := t.codons[string(triplet[:])]; ok {
		return aminoAcid
	}
	return 'X'
}

// Translate translates a nucleotide sequence in the given reading frame.
// Frame n skips the first n-1 residues. A trailing partial codon is
// dropped; the second return value reports whether that happened so the
// caller can warn about it.
func (t *TranslationTable) Translate(sequence []byte, frame int) ([]byte, bool, error) {
	if frame < 1 || frame > 3 {
		return nil, false, &InvalidReadingFrameError{Frame: frame}
	}
	inFrame := sequence[frame-1:]
	truncated := len(inFrame)%3 != 0
	aminoAcids := make([]byte, 0, len(inFrame)/3)
	for i := 0; i+3 <= len(inFrame); i += 3 {
		aminoAcids = append(aminoAcids, t.TranslateCodon(inFrame[i:i+3]))
	}
	return aminoAcids, truncated, nil
}
