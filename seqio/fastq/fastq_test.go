package fastq

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"

	"github.com/hhandika/segul/sequence"
)

const sample = `@read1 ch=22
ACGTACGT
+
IIIIIIII
@read2
ACGT
+
!!!!
`

func TestNext(t *testing.T) {
	parser := NewParser(strings.NewReader(sample), "sample.fq")
	first, err := parser.Next()
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != "read1" || string(first.Sequence) != "ACGTACGT" || string(first.Quality) != "IIIIIIII" {
		t.Errorf("first read = %+v", first)
	}
	second, err := parser.Next()
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != "read2" || len(second.Sequence) != 4 {
		t.Errorf("second read = %+v", second)
	}
	if _, err := parser.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestNextTruncatedRecord(t *testing.T) {
	parser := NewParser(strings.NewReader("@read1\nACGT\n+\n"), "trunc.fq")
	_, err := parser.Next()
	var parseErr *sequence.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want ParseError", err)
	}
}

func TestNextQualityLengthMismatch(t *testing.T) {
	parser := NewParser(strings.NewReader("@read1\nACGT\n+\nII\n"), "bad.fq")
	if _, err := parser.Next(); err == nil {
		t.Error("quality shorter than sequence should fail")
	}
}

func TestOpenPlainAndGzip(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.fastq")
	if err := os.WriteFile(plain, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	zipped := filepath.Join(dir, "zipped.fastq.gz")
	handle, err := os.Create(zipped)
	if err != nil {
		t.Fatal(err)
	}
	zipper := pgzip.NewWriter(handle)
	if _, err := zipper.Write([]byte(sample)); err != nil {
		t.Fatal(err)
	}
	zipper.Close()
	handle.Close()

	for _, path := range []string{plain, zipped} {
		parser, closer, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s): %v", path, err)
		}
		count := 0
		for {
			_, err := parser.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Fatalf("Next(%s): %v", path, err)
			}
			count++
		}
		closer.Close()
		if count != 2 {
			t.Errorf("Open(%s): read %d records, want 2", path, count)
		}
	}
}
