/*
Package fasta parses and writes FASTA formatted sequence files.

The parser streams records one at a time so callers can process files
much larger than memory. Identifiers are the text between '>' and the
first whitespace; the rest of the header line is kept as a description
so FASTA to FASTA conversions can round-trip it.
*/
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/sequence"
)

// Parser reads FASTA records from an underlying reader.
type Parser struct {
	scanner  *bufio.Scanner
	file     string
	datatype alphabet.Datatype
	line     int
	offset   int64
	pending  *sequence.Record
	buff     bytes.Buffer
	done     bool
}

// NewParser returns a parser reading from r. The file name is only used
// in error messages.
func NewParser(r io.Reader, file string, datatype alphabet.Datatype) *Parser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Parser{scanner: scanner, file: file, datatype: datatype}
}

// Next returns the next record in the file. It returns io.EOF after the
// last record.
func (p *Parser) Next() (*sequence.Record, error) {
	if p.done {
		return nil, io.EOF
	}
	for p.scanner.Scan() {
		line := p.scanner.Bytes()
		p.line++
		lineStart := p.offset
		p.offset += int64(len(line)) + 1
		trimmed := bytes.TrimSpace(line)
		switch {
		case len(trimmed) == 0:
			continue
		case trimmed[0] == ';':
			// Old-style FASTA comment line.
			continue
		case trimmed[0] == '>':
			record, err := p.flush()
			p.startRecord(trimmed)
			if record != nil || err != nil {
				return record, err
			}
		default:
			if p.pending == nil {
				return nil, &sequence.ParseError{
					Format: "fasta",
					File:   p.file,
					Line:   p.line,
					Msg:    "sequence data before first header",
				}
			}
			if err := p.appendResidues(trimmed, lineStart+int64(len(line)-len(trimmed))); err != nil {
				return nil, err
			}
		}
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.file, err)
	}
	p.done = true
	record, err := p.flush()
	if record == nil && err == nil {
		return nil, io.EOF
	}
	return record, err
}

// ParseAll reads every record left in the parser.
func (p *Parser) ParseAll() ([]sequence.Record, error) {
	var records []sequence.Record
	for {
		record, err := p.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, *record)
	}
}

func (p *Parser) startRecord(header []byte) {
	header = header[1:]
	id := header
	var description string
	if cut := bytes.IndexAny(header, " \t"); cut >= 0 {
		id = header[:cut]
		description = string(bytes.TrimSpace(header[cut:]))
	}
	p.pending = &sequence.Record{ID: string(id), Description: description}
	p.buff.Reset()
}

func (p *Parser) appendResidues(line []byte, offset int64) error {
	for i, b := range line {
		if b == ' ' || b == '\t' {
			continue
		}
		if !alphabet.Valid(p.datatype, b) {
			return &sequence.InvalidCharacterError{
				File:   p.file,
				ID:     p.pending.ID,
				Offset: offset + int64(i),
				Byte:   b,
			}
		}
		p.buff.WriteByte(b)
	}
	return nil
}

func (p *Parser) flush() (*sequence.Record, error) {
	if p.pending == nil {
		return nil, nil
	}
	record := p.pending
	p.pending = nil
	record.Sequence = append([]byte(nil), p.buff.Bytes()...)
	p.buff.Reset()
	if len(record.Sequence) == 0 {
		return nil, &sequence.ParseError{
			Format: "fasta",
			File:   p.file,
			Line:   p.line,
			Msg:    fmt.Sprintf("record %q has no sequence", record.ID),
		}
	}
	return record, nil
}

// Parse reads a whole FASTA file into an alignment. Duplicate ids with
// identical residues are dropped with a warning unless strict is set.
func Parse(r io.Reader, file string, datatype alphabet.Datatype, strict bool) (*sequence.Alignment, []string, error) {
	parser := NewParser(r, file, datatype)
	aln := sequence.NewAlignment(datatype)
	var warnings []string
	for {
		record, err := parser.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, warnings, err
		}
		warning, err := aln.Insert(*record)
		if err != nil {
			return nil, warnings, &sequence.DuplicateIDError{File: file, ID: record.ID}
		}
		if warning != nil {
			if strict {
				return nil, warnings, &sequence.DuplicateIDError{File: file, ID: record.ID}
			}
			warning.File = file
			warnings = append(warnings, warning.String())
		}
	}
	if aln.Len() == 0 {
		return nil, warnings, &sequence.ParseError{
			Format: "fasta", File: file, Line: parser.line, Msg: "no sequences found",
		}
	}
	return aln, warnings, nil
}

// Write emits records in FASTA format. A positive wrap width breaks
// sequences into lines of that many residues; zero writes each sequence
// on a single line.
func Write(w io.Writer, records []sequence.Record, wrap int) error {
	writer := bufio.NewWriter(w)
	for _, record := range records {
		if record.Description != "" {
			fmt.Fprintf(writer, ">%s %s\n", record.ID, record.Description)
		} else {
			fmt.Fprintf(writer, ">%s\n", record.ID)
		}
		seq := record.Sequence
		if wrap <= 0 {
			writer.Write(seq)
			writer.WriteByte('\n')
			continue
		}
		for start := 0; start < len(seq); start += wrap {
			end := start + wrap
			if end > len(seq) {
				end = len(seq)
			}
			writer.Write(seq[start:end])
			writer.WriteByte('\n')
		}
	}
	return writer.Flush()
}
