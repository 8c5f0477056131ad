/*
Package writer owns everything that lands on disk: output directory
layout, the overwrite guard, and CSV emission for the summary engine.

Every output path goes through Create, which refuses to clobber an
existing file unless the run was started with --overwrite or the user
confirms at a terminal prompt.
*/
package writer

import (
	"archive/zip"
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// OverwriteDeclinedError means an output file exists and the user chose
// not to replace it. It maps to exit code 3.
type OverwriteDeclinedError struct {
	Path string
}

func (e *OverwriteDeclinedError) Error() string {
	return fmt.Sprintf("%s exists; not overwriting", e.Path)
}

// Writer creates output files under a common policy.
type Writer struct {
	// Overwrite skips the prompt and replaces existing files.
	Overwrite bool
	// Prompt is consulted for existing files when Overwrite is false.
	// The default prompts on stdin when it is a terminal and declines
	// otherwise.
	Prompt func(path string) bool
}

// New returns a writer with the interactive prompt installed.
func New(overwrite bool) *Writer {
	return &Writer{Overwrite: overwrite, Prompt: promptStdin}
}

func promptStdin(path string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}
	fmt.Fprintf(os.Stderr, "%s exists. Overwrite? [y/N] ", path)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// Create opens path for writing, creating parent directories. If the
// file exists and overwriting was not approved, it returns
// OverwriteDeclinedError.
func (w *Writer) Create(path string) (*os.File, error) {
	if err := w.check(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func (w *Writer) check(path string) error {
	if w.Overwrite {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	prompt := w.Prompt
	if prompt == nil {
		prompt = promptStdin
	}
	if !prompt(path) {
		return &OverwriteDeclinedError{Path: path}
	}
	return nil
}

// WriteFile writes a file through fn under the overwrite policy,
// closing and removing the partial file if fn fails.
func (w *Writer) WriteFile(path string, fn func(io.Writer) error) error {
	handle, err := w.Create(path)
	if err != nil {
		return err
	}
	if err := fn(handle); err != nil {
		handle.Close()
		os.Remove(path)
		return err
	}
	return handle.Close()
}

// WriteCSV writes a CSV file with the given header and rows.
func (w *Writer) WriteCSV(path string, header []string, rows [][]string) error {
	return w.WriteFile(path, func(out io.Writer) error {
		writer := csv.NewWriter(out)
		if err := writer.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// ZipCSV is a CSV stream inside a zip archive, used for the large
// per-position tables of the read summary so complete output stays
// compressed on disk.
type ZipCSV struct {
	file    *os.File
	archive *zip.Writer
	csv     *csv.Writer
}

// CreateZipCSV opens a zip archive at path containing a single CSV
// member named member, with the header already written.
func (w *Writer) CreateZipCSV(path, member string, header []string) (*ZipCSV, error) {
	handle, err := w.Create(path)
	if err != nil {
		return nil, err
	}
	archive := zip.NewWriter(handle)
	entry, err := archive.Create(member)
	if err != nil {
		handle.Close()
		os.Remove(path)
		return nil, err
	}
	writer := csv.NewWriter(entry)
	if err := writer.Write(header); err != nil {
		archive.Close()
		handle.Close()
		os.Remove(path)
		return nil, err
	}
	return &ZipCSV{file: handle, archive: archive, csv: writer}, nil
}

// Write appends one row.
func (z *ZipCSV) Write(row []string) error {
	return z.csv.Write(row)
}

// Close flushes the CSV and finishes the archive.
func (z *ZipCSV) Close() error {
	z.csv.Flush()
	err := z.csv.Error()
	if closeErr := z.archive.Close(); err == nil {
		err = closeErr
	}
	if closeErr := z.file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// OutputName maps an input path to an output path: the input stem under
// dir with the new extension, keeping an optional prefix.
func OutputName(dir, input, prefix, extension string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, prefix+stem+extension)
}
