package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hhandika/segul/sequence"
	"github.com/hhandika/segul/writer"
)

func TestExitCode(t *testing.T) {
	for _, test := range []struct {
		err  error
		want int
	}{
		{&writer.OverwriteDeclinedError{Path: "out.nex"}, 3},
		{&sequence.ParseError{Format: "nexus", File: "a.nex"}, 2},
		{&sequence.InvalidCharacterError{File: "a.fas", Byte: '!'}, 2},
		{&sequence.DuplicateIDError{File: "a.fas", ID: "x"}, 2},
		{&sequence.NotAlignedError{File: "a.fas"}, 2},
		{sequence.ErrMixedDatatype, 2},
		{errors.New("disk is on fire"), 1},
		{os.ErrNotExist, 1},
	} {
		if got := exitCode(test.err); got != test.want {
			t.Errorf("exitCode(%v) = %d, want %d", test.err, got, test.want)
		}
	}
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	want := []string{
		"convert", "concat", "split", "filter", "extract", "remove",
		"rename", "translate", "summary", "partition", "id",
	}
	for _, name := range want {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestConvertEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "locus1.fas")
	if err := os.WriteFile(input, []byte(">a\nACGT\n>b\nACGA\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	app := newApp()
	err := app.Run([]string{
		"segul", "convert",
		"--input", input,
		"--output", outDir,
		"--output-format", "phylip",
		"--overwrite",
	})
	if err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(outDir, "locus1.phy"))
	if err != nil {
		t.Fatal(err)
	}
	if len(content) == 0 {
		t.Error("empty output")
	}
}
