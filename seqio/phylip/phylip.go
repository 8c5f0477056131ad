/*
Package phylip parses and writes relaxed PHYLIP alignment files.

The relaxed dialect drops the fixed ten-column taxon label of strict
PHYLIP: a label is any run of non-whitespace characters, separated from
the residues by whitespace. Sequential files carry each taxon's full row
on one line; interleaved files repeat blocks of rows, separated by blank
lines, with labels only in the first block.
*/
package phylip

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

// Parse reads a relaxed PHYLIP file into an alignment. A taxon label
// repeated among the first ntax rows is a DuplicateIDError whether or
// not the residues match.
func Parse(r io.Reader, file string, datatype alphabet.Datatype, strict bool) (*sequence.Alignment, []string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	var offset int64
	readLine := func() ([]byte, bool) {
		if !scanner.Scan() {
			return nil, false
		}
		line++
		raw := scanner.Bytes()
		offset += int64(len(raw)) + 1
		return raw, true
	}

	parseErr := func(msg string) error {
		return &sequence.ParseError{Format: "phylip", File: file, Line: line, Msg: msg}
	}

	// Header: first non-empty line is "ntax nchar".
	var ntax, nchar int
	for {
		raw, ok := readLine()
		if !ok {
			return nil, nil, parseErr("missing header line")
		}
		fields := strings.Fields(string(raw))
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, nil, parseErr("header needs ntax and nchar")
		}
		var err error
		if ntax, err = strconv.Atoi(fields[0]); err != nil {
			return nil, nil, parseErr(fmt.Sprintf("bad ntax %q", fields[0]))
		}
		if nchar, err = strconv.Atoi(fields[1]); err != nil {
			return nil, nil, parseErr(fmt.Sprintf("bad nchar %q", fields[1]))
		}
		break
	}

	aln := sequence.NewAlignment(datatype)
	aln.Header.Nchar = nchar
	var warnings []string
	var order []string
	seqs := make(map[string]*bytes.Buffer, ntax)

	appendResidues := func(id string, data []byte, lineOffset int64) error {
		buff := seqs[id]
		for i, b := range data {
			if b == ' ' || b == '\t' {
				continue
			}
			if !alphabet.Valid(datatype, b) {
				return &sequence.InvalidCharacterError{
					File: file, ID: id, Offset: lineOffset + int64(i), Byte: b,
				}
			}
			buff.WriteByte(b)
		}
		return nil
	}

	// First ntax non-empty lines carry the taxon labels.
	for len(order) < ntax {
		raw, ok := readLine()
		if !ok {
			return nil, nil, parseErr(fmt.Sprintf("expected %d taxa, found %d", ntax, len(order)))
		}
		lineStart := offset - int64(len(raw)) - 1
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}
		cut := bytes.IndexAny(trimmed, " \t")
		if cut < 0 {
			return nil, nil, parseErr(fmt.Sprintf("taxon line %q has no residues", trimmed))
		}
		id := string(trimmed[:cut])
		if _, seen := seqs[id]; seen {
			return nil, nil, &sequence.DuplicateIDError{File: file, ID: id}
		}
		order = append(order, id)
		seqs[id] = &bytes.Buffer{}
		if err := appendResidues(id, trimmed[cut:], lineStart+int64(cut)); err != nil {
			return nil, nil, err
		}
	}

	// Remaining non-empty lines are interleaved continuation blocks,
	// cycling through the taxa in first-block order.
	next := 0
	for {
		raw, ok := readLine()
		if !ok {
			break
		}
		lineStart := offset - int64(len(raw)) - 1
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}
		id := order[next%ntax]
		next++
		if err := appendResidues(id, trimmed, lineStart); err != nil {
			return nil, nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}

	for _, id := range order {
		residues := seqs[id].Bytes()
		if len(residues) != nchar {
			return nil, nil, parseErr(fmt.Sprintf(
				"taxon %q has %d characters, header says %d", id, len(residues), nchar))
		}
		warning, err := aln.Insert(sequence.Record{ID: id, Sequence: residues})
		if err != nil {
			return nil, nil, &sequence.DuplicateIDError{File: file, ID: id}
		}
		if warning != nil {
			if strict {
				return nil, nil, &sequence.DuplicateIDError{File: file, ID: id}
			}
			warning.File = file
			warnings = append(warnings, warning.String())
		}
	}
	aln.Header.Nchar = nchar
	return aln, warnings, nil
}

// Write emits an alignment in relaxed PHYLIP. Interleaved output uses
// blocks of width residues; sequential output writes each taxon's full
// row on one line. Labels are padded so the longest gets four trailing
// spaces.
func Write(w io.Writer, aln *sequence.Alignment, interleave bool, width int) error {
	if !aln.IsAligned() {
		return &sequence.NotAlignedError{}
	}
	writer := bufio.NewWriter(w)
	fmt.Fprintf(writer, "%d %d\n", aln.Len(), aln.Nchar())

	pad := 0
	for _, id := range aln.IDs() {
		if len(id) > pad {
			pad = len(id)
		}
	}
	pad += 4

	if !interleave {
		for _, record := range aln.Records() {
			fmt.Fprintf(writer, "%-*s", pad, record.ID)
			writer.Write(record.Sequence)
			writer.WriteByte('\n')
		}
		return writer.Flush()
	}

	records := aln.Records()
	for start := 0; start < aln.Nchar(); start += width {
		end := start + width
		if end > aln.Nchar() {
			end = aln.Nchar()
		}
		if start > 0 {
			writer.WriteByte('\n')
		}
		for _, record := range records {
			if start == 0 {
				fmt.Fprintf(writer, "%-*s", pad, record.ID)
			}
			writer.Write(record.Sequence[start:end])
			writer.WriteByte('\n')
		}
	}
	return writer.Flush()
}
