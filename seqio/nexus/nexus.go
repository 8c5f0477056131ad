/*
Package nexus parses and writes NEXUS alignment files.

The parser understands data and characters blocks with their dimensions
and format commands, both interleaved and sequential matrix layouts, and
sets blocks whose charset commands carry partition definitions. Square
bracket comments are ignored wherever they appear, including nested
ones. Unsupported blocks are skipped.
*/
package nexus

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

// File is the parsed content of a NEXUS file: the alignment plus any
// charset commands found in a sets block, kept raw for the partition
// codec to interpret.
type File struct {
	Alignment *sequence.Alignment
	Charsets  []string
	Warnings  []string
}

type parser struct {
	scanner      *bufio.Scanner
	file         string
	datatype     alphabet.Datatype
	strict       bool
	line         int
	offset       int64
	commentDepth int
}

// Parse reads a NEXUS file.
func Parse(r io.Reader, file string, datatype alphabet.Datatype, strict bool) (*File, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	p := &parser{scanner: scanner, file: file, datatype: datatype, strict: strict}
	return p.parse()
}

func (p *parser) errorf(format string, args ...any) error {
	return &sequence.ParseError{
		Format: "nexus", File: p.file, Line: p.line, Msg: fmt.Sprintf(format, args...),
	}
}

// next returns the next line with bracket comments removed. ok is false
// at end of input.
func (p *parser) next() (string, bool, error) {
	for p.scanner.Scan() {
		raw := p.scanner.Bytes()
		p.line++
		p.offset += int64(len(raw)) + 1
		line := p.stripComments(raw)
		return string(line), true, nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", false, fmt.Errorf("%s: %w", p.file, err)
	}
	return "", false, nil
}

// stripComments removes [ ... ] comments, tracking nesting depth across
// lines.
func (p *parser) stripComments(line []byte) []byte {
	out := make([]byte, 0, len(line))
	for _, b := range line {
		switch {
		case b == '[':
			p.commentDepth++
		case b == ']' && p.commentDepth > 0:
			p.commentDepth--
		case p.commentDepth == 0:
			out = append(out, b)
		}
	}
	return out
}

func (p *parser) parse() (*File, error) {
	first, ok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !ok || !strings.EqualFold(strings.TrimSpace(first), "#NEXUS") {
		return nil, p.errorf("missing #NEXUS header")
	}

	result := &File{}
	for {
		line, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		lower := strings.ToLower(trimmed)
		if !strings.HasPrefix(lower, "begin ") {
			continue
		}
		block := strings.TrimSpace(lower[len("begin "):])
		switch block {
		case "data", "characters":
			aln, warnings, err := p.parseDataBlock()
			if err != nil {
				return nil, err
			}
			result.Alignment = aln
			result.Warnings = append(result.Warnings, warnings...)
		case "sets":
			charsets, err := p.parseSetsBlock()
			if err != nil {
				return nil, err
			}
			result.Charsets = append(result.Charsets, charsets...)
		default:
			if err := p.skipBlock(); err != nil {
				return nil, err
			}
		}
	}
	if result.Alignment == nil {
		return nil, p.errorf("no data or characters block found")
	}
	return result, nil
}

// parseDataBlock handles dimensions, format, and matrix commands up to
// the block's end.
func (p *parser) parseDataBlock() (*sequence.Alignment, []string, error) {
	var ntax, nchar int
	datatype := p.datatype
	missing := byte('?')
	gap := byte('-')
	interleave := false

	for {
		line, ok, err := p.next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, p.errorf("unterminated data block")
		}
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(lower, "dimensions"):
			for _, field := range commandFields(trimmed) {
				key, value, found := strings.Cut(field, "=")
				if !found {
					continue
				}
				n, err := strconv.Atoi(strings.TrimSpace(value))
				if err != nil {
					return nil, nil, p.errorf("bad dimensions value %q", field)
				}
				switch strings.ToLower(strings.TrimSpace(key)) {
				case "ntax":
					ntax = n
				case "nchar":
					nchar = n
				}
			}
		case strings.HasPrefix(lower, "format"):
			for _, field := range commandFields(trimmed) {
				key, value, found := strings.Cut(field, "=")
				key = strings.ToLower(strings.TrimSpace(key))
				value = strings.TrimSpace(value)
				if !found {
					if key == "interleave" {
						interleave = true
					}
					continue
				}
				switch key {
				case "datatype":
					// The file's declaration wins, except Ignore stays
					// Ignore so validation can be switched off.
					if datatype == alphabet.Ignore {
						break
					}
					switch strings.ToLower(value) {
					case "protein":
						datatype = alphabet.AminoAcid
					case "dna", "nucleotide", "rna":
						datatype = alphabet.Dna
					}
				case "missing":
					missing = value[0]
				case "gap":
					gap = value[0]
				case "interleave":
					interleave = !strings.EqualFold(value, "no")
				}
			}
		case strings.HasPrefix(lower, "matrix"):
			return p.parseMatrix(ntax, nchar, datatype, missing, gap, interleave)
		case lower == "end" || lower == "end;" || lower == "endblock" || lower == "endblock;":
			return nil, nil, p.errorf("data block has no matrix")
		}
	}
}

// parseMatrix reads taxon rows until the closing semicolon. Sequential
// layouts may wrap a taxon's residues over several lines; interleaved
// layouts repeat labelled rows in blocks.
func (p *parser) parseMatrix(ntax, nchar int, datatype alphabet.Datatype, missing, gap byte, interleave bool) (*sequence.Alignment, []string, error) {
	aln := sequence.NewAlignment(datatype)
	aln.Header.Missing = missing
	aln.Header.Gap = gap
	var order []string
	seqs := make(map[string]*bytes.Buffer)
	currentID := ""

	appendResidues := func(id string, data string, lineStart int64) error {
		buff := seqs[id]
		for i := 0; i < len(data); i++ {
			b := data[i]
			if b == ' ' || b == '\t' {
				continue
			}
			if b == '.' {
				// Match character: repeat the first taxon's residue.
				if len(order) > 0 {
					first := seqs[order[0]].Bytes()
					if buff.Len() < len(first) {
						buff.WriteByte(first[buff.Len()])
						continue
					}
				}
			}
			if !alphabet.Valid(datatype, b) {
				return &sequence.InvalidCharacterError{
					File: p.file, ID: id, Offset: lineStart + int64(i), Byte: b,
				}
			}
			buff.WriteByte(b)
		}
		return nil
	}

	for {
		line, ok, err := p.next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, p.errorf("unterminated matrix")
		}
		lineStart := p.offset - int64(len(line)) - 1
		trimmed := strings.TrimSpace(line)
		finished := false
		if i := strings.IndexByte(trimmed, ';'); i >= 0 {
			trimmed = strings.TrimSpace(trimmed[:i])
			finished = true
		}
		if trimmed != "" {
			id, residues := trimmed, ""
			if cut := strings.IndexAny(trimmed, " \t"); cut >= 0 {
				id, residues = trimmed[:cut], trimmed[cut:]
			}
			if !interleave && currentID != "" && nchar > 0 && seqs[currentID].Len() < nchar {
				// Continuation of a wrapped sequential row.
				if err := appendResidues(currentID, trimmed, lineStart); err != nil {
					return nil, nil, err
				}
			} else {
				if _, seen := seqs[id]; !seen {
					order = append(order, id)
					seqs[id] = &bytes.Buffer{}
				}
				currentID = id
				if err := appendResidues(id, residues, lineStart); err != nil {
					return nil, nil, err
				}
			}
		}
		if finished {
			break
		}
	}

	// Skip to the block's end command.
	for {
		line, ok, err := p.next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		lower := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ";")))
		if lower == "end" || lower == "endblock" {
			break
		}
	}

	var warnings []string
	for _, id := range order {
		warning, err := aln.Insert(sequence.Record{ID: id, Sequence: seqs[id].Bytes()})
		if err != nil {
			return nil, nil, &sequence.DuplicateIDError{File: p.file, ID: id}
		}
		if warning != nil {
			if p.strict {
				return nil, nil, &sequence.DuplicateIDError{File: p.file, ID: id}
			}
			warning.File = p.file
			warnings = append(warnings, warning.String())
		}
	}
	if ntax > 0 && aln.Len() != ntax {
		return nil, nil, p.errorf("matrix has %d taxa, dimensions says %d", aln.Len(), ntax)
	}
	if nchar > 0 {
		for _, record := range aln.Records() {
			if len(record.Sequence) != nchar {
				return nil, nil, p.errorf(
					"taxon %q has %d characters, dimensions says %d",
					record.ID, len(record.Sequence), nchar)
			}
		}
		aln.Header.Nchar = nchar
	}
	return aln, warnings, nil
}

// parseSetsBlock collects charset commands verbatim, joining commands
// that span lines, until the block ends.
func (p *parser) parseSetsBlock() ([]string, error) {
	var charsets []string
	var pending strings.Builder
	for {
		line, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, p.errorf("unterminated sets block")
		}
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(strings.TrimSuffix(trimmed, ";"))
		if pending.Len() == 0 && (lower == "end" || lower == "endblock") {
			return charsets, nil
		}
		if trimmed == "" {
			continue
		}
		if pending.Len() == 0 && !strings.HasPrefix(strings.ToLower(trimmed), "charset") {
			continue
		}
		if pending.Len() > 0 {
			pending.WriteByte(' ')
		}
		pending.WriteString(trimmed)
		if strings.HasSuffix(trimmed, ";") {
			charsets = append(charsets, pending.String())
			pending.Reset()
		}
	}
}

// skipBlock consumes lines until the matching end command.
func (p *parser) skipBlock() error {
	for {
		line, ok, err := p.next()
		if err != nil {
			return err
		}
		if !ok {
			return p.errorf("unterminated block")
		}
		lower := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ";")))
		if lower == "end" || lower == "endblock" {
			return nil
		}
	}
}

// commandFields splits a NEXUS command into its key=value fields,
// re-joining around '=' so "missing = ?" parses the same as "missing=?".
func commandFields(command string) []string {
	command = strings.TrimSuffix(strings.TrimSpace(command), ";")
	command = strings.ReplaceAll(command, " =", "=")
	command = strings.ReplaceAll(command, "= ", "=")
	fields := strings.Fields(command)
	if len(fields) > 0 {
		fields = fields[1:] // drop the command name
	}
	return fields
}

// datatypeName is the NEXUS spelling of a datatype.
func datatypeName(datatype alphabet.Datatype) string {
	if datatype == alphabet.AminoAcid {
		return "protein"
	}
	return "dna"
}

// Write emits an alignment as a NEXUS data block. Interleaved output
// breaks the matrix into blocks of width residues.
func Write(w io.Writer, aln *sequence.Alignment, interleave bool, width int) error {
	if !aln.IsAligned() {
		return &sequence.NotAlignedError{}
	}
	writer := bufio.NewWriter(w)
	writer.WriteString("#NEXUS\n")
	writer.WriteString("begin data;\n")
	fmt.Fprintf(writer, "dimensions ntax=%d nchar=%d;\n", aln.Len(), aln.Nchar())
	fmt.Fprintf(writer, "format datatype=%s missing=? gap=-", datatypeName(aln.Header.Datatype))
	if interleave {
		writer.WriteString(" interleave")
	}
	writer.WriteString(";\n")
	writer.WriteString("matrix\n")

	pad := 0
	for _, id := range aln.IDs() {
		if len(id) > pad {
			pad = len(id)
		}
	}
	pad += 4

	records := aln.Records()
	if !interleave {
		for _, record := range records {
			fmt.Fprintf(writer, "%-*s", pad, record.ID)
			writer.Write(record.Sequence)
			writer.WriteByte('\n')
		}
	} else {
		for start := 0; start < aln.Nchar(); start += width {
			end := start + width
			if end > aln.Nchar() {
				end = aln.Nchar()
			}
			if start > 0 {
				writer.WriteByte('\n')
			}
			for _, record := range records {
				fmt.Fprintf(writer, "%-*s", pad, record.ID)
				writer.Write(record.Sequence[start:end])
				writer.WriteByte('\n')
			}
		}
	}
	writer.WriteString(";\n")
	writer.WriteString("end;\n")
	return writer.Flush()
}

// WriteCharsets appends a sets block with the given charset commands to
// a NEXUS stream.
func WriteCharsets(w io.Writer, charsets []string) error {
	writer := bufio.NewWriter(w)
	writer.WriteString("begin sets;\n")
	for _, charset := range charsets {
		writer.WriteString(charset)
		writer.WriteByte('\n')
	}
	writer.WriteString("end;\n")
	return writer.Flush()
}
