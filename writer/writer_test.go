package writer

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateNewFile(t *testing.T) {
	dir := t.TempDir()
	w := New(false)
	path := filepath.Join(dir, "out", "locus1.nex")
	handle, err := w.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	handle.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestCreateDeclined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.nex")
	os.WriteFile(path, []byte("old"), 0o644)

	w := &Writer{Prompt: func(string) bool { return false }}
	_, err := w.Create(path)
	var declined *OverwriteDeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("got %v, want OverwriteDeclinedError", err)
	}
}

func TestCreateOverwriteFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.nex")
	os.WriteFile(path, []byte("old"), 0o644)

	w := New(true)
	handle, err := w.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	handle.WriteString("new")
	handle.Close()
	content, _ := os.ReadFile(path)
	if string(content) != "new" {
		t.Errorf("content = %q, want new", content)
	}
}

func TestCreatePromptAccepts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.nex")
	os.WriteFile(path, []byte("old"), 0o644)

	w := &Writer{Prompt: func(string) bool { return true }}
	handle, err := w.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	handle.Close()
}

func TestWriteFileCleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.csv")
	w := New(false)
	err := w.WriteFile(path, func(io.Writer) error {
		return errors.New("mid-write failure")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("partial file should be removed")
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")
	w := New(false)
	err := w.WriteCSV(path,
		[]string{"locus", "ntax"},
		[][]string{{"locus1", "4"}, {"locus2", "2"}})
	if err != nil {
		t.Fatal(err)
	}
	content, _ := os.ReadFile(path)
	want := "locus,ntax\nlocus1,4\nlocus2,2\n"
	if string(content) != want {
		t.Errorf("content = %q, want %q", content, want)
	}
}

func TestZipCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "positions.zip")
	w := New(false)
	stream, err := w.CreateZipCSV(path, "positions.csv", []string{"pos", "count"})
	if err != nil {
		t.Fatal(err)
	}
	stream.Write([]string{"1", "10"})
	stream.Write([]string{"2", "8"})
	if err := stream.Close(); err != nil {
		t.Fatal(err)
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer archive.Close()
	if len(archive.File) != 1 || archive.File[0].Name != "positions.csv" {
		t.Fatalf("archive members = %v", archive.File)
	}
	member, _ := archive.File[0].Open()
	content, _ := io.ReadAll(member)
	member.Close()
	if !strings.HasPrefix(string(content), "pos,count\n1,10\n") {
		t.Errorf("member content = %q", content)
	}
}

func TestOutputName(t *testing.T) {
	got := OutputName("out", "data/locus1.nex", "gene_", ".fas")
	want := filepath.Join("out", "gene_locus1.fas")
	if got != want {
		t.Errorf("OutputName = %q, want %q", got, want)
	}
}
