package op

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
)

// Renamer maps an original id to its new form. Implementations must be
// safe for concurrent use.
type Renamer interface {
	Rename(id string) string
}

// TableRenamer renames by exact lookup in an original,new table.
type TableRenamer struct {
	mapping map[string]string
}

// NewTableRenamer loads a CSV or TSV replacement table whose first
// column is the original id and second the replacement. A header line
// is detected and skipped when its first field is "original".
func NewTableRenamer(path string) (*TableRenamer, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer handle.Close()
	reader := csv.NewReader(handle)
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	mapping := make(map[string]string)
	first := true
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s: need two columns, got %d", path, len(fields))
		}
		original := strings.TrimSpace(fields[0])
		replacement := strings.TrimSpace(fields[1])
		if first && strings.EqualFold(original, "original") {
			first = false
			continue
		}
		first = false
		if _, dup := mapping[original]; dup {
			return nil, fmt.Errorf("%s: id %q mapped twice", path, original)
		}
		mapping[original] = replacement
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("%s: empty rename table", path)
	}
	return &TableRenamer{mapping: mapping}, nil
}

// Rename returns the mapped id, or the id unchanged when unmapped.
func (t *TableRenamer) Rename(id string) string {
	if replacement, ok := t.mapping[id]; ok {
		return replacement
	}
	return id
}

// EditRenamer renames by substring or regular expression edits.
type EditRenamer struct {
	// Remove deletes the first occurrence of a literal substring.
	Remove string
	// RemovePattern deletes the first regexp match; RemoveAll deletes
	// every match.
	RemovePattern *regexp.Regexp
	RemoveAll     bool
	// From/To replaces a literal substring; FromPattern/To replaces
	// every regexp match.
	From        string
	FromPattern *regexp.Regexp
	To          string
}

// Rename applies the configured edit.
func (e *EditRenamer) Rename(id string) string {
	switch {
	case e.Remove != "":
		return strings.Replace(id, e.Remove, "", 1)
	case e.RemovePattern != nil && e.RemoveAll:
		return e.RemovePattern.ReplaceAllString(id, "")
	case e.RemovePattern != nil:
		if loc := e.RemovePattern.FindStringIndex(id); loc != nil {
			return id[:loc[0]] + id[loc[1]:]
		}
		return id
	case e.FromPattern != nil:
		return e.FromPattern.ReplaceAllString(id, e.To)
	case e.From != "":
		return strings.ReplaceAll(id, e.From, e.To)
	}
	return id
}

// Rename rewrites sequence ids across every input file.
type Rename struct {
	Common
	Renamer Renamer
}

// Run renames ids, failing before any write when two originals collide
// onto the same new id within an alignment.
func (r *Rename) Run(ctx context.Context) error {
	out := r.writerFor()
	_, err := mapFiles(ctx, &r.Common, func(file string) (struct{}, error) {
		result, err := r.read(file)
		if err != nil {
			return struct{}{}, err
		}
		aln := result.Alignment
		renamed := sequence.NewAlignment(aln.Header.Datatype)
		seen := make(map[string]string)
		for _, record := range aln.Records() {
			newID := r.Renamer.Rename(record.ID)
			if previous, clash := seen[newID]; clash {
				return struct{}{}, fmt.Errorf(
					"%s: ids %q and %q both rename to %q", file, previous, record.ID, newID)
			}
			seen[newID] = record.ID
			if newID == record.ID {
				logger.Log.Debugf("%s: id %q unchanged", file, record.ID)
			}
			record.ID = newID
			if _, err := renamed.Insert(record); err != nil {
				return struct{}{}, err
			}
		}
		path := filepath.Join(r.OutputDir, r.Prefix+stem(file)+r.OutputFormat.Extension())
		return struct{}{}, out.WriteFile(path, func(w io.Writer) error {
			return seqio.WriteAlignment(w, renamed, r.OutputFormat)
		})
	})
	return err
}
