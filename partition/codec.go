package partition

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hhandika/segul/alphabet"
)

// Format identifies a partition file format. Charset is a NEXUS sets
// block embedded in the alignment file itself; Nexus is a standalone
// sets file.
type Format int

const (
	Raxml Format = iota
	Nexus
	Charset
)

// ParseFormat maps a command-line partition format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "raxml":
		return Raxml, nil
	case "nexus":
		return Nexus, nil
	case "charset":
		return Charset, nil
	}
	return Raxml, fmt.Errorf("unknown partition format %q", name)
}

// parseRanges reads comma or space separated S-E and S-E\K items.
func parseRanges(text string) ([]Range, error) {
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty range list")
	}
	ranges := make([]Range, 0, len(fields))
	for _, field := range fields {
		item := field
		stride := 0
		if cut := strings.IndexByte(item, '\\'); cut >= 0 {
			n, err := strconv.Atoi(item[cut+1:])
			if err != nil {
				return nil, fmt.Errorf("bad stride in %q", field)
			}
			stride = n
			item = item[:cut]
		}
		start, end, found := strings.Cut(item, "-")
		if !found {
			// A single site is a degenerate range.
			end = start
		}
		s, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil {
			return nil, fmt.Errorf("bad range %q", field)
		}
		e, err := strconv.Atoi(strings.TrimSpace(end))
		if err != nil {
			return nil, fmt.Errorf("bad range %q", field)
		}
		ranges = append(ranges, Range{Start: s, End: e, Stride: stride})
	}
	return ranges, nil
}

// ParseRaxml reads a RaXML partition file: one entry per line in the
// form "DNA, name = ranges", where the leading datatype is optional.
func ParseRaxml(r io.Reader) (*Partition, error) {
	scanner := bufio.NewScanner(r)
	partition := &Partition{}
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		definition, ranges, found := strings.Cut(text, "=")
		if !found {
			return nil, fmt.Errorf("line %d: missing = in %q", line, text)
		}
		entry := Entry{}
		name := strings.TrimSpace(definition)
		if datatype, rest, hasComma := strings.Cut(name, ","); hasComma {
			entry.HasDatatype = true
			switch strings.ToLower(strings.TrimSpace(datatype)) {
			case "dna", "nucleotide":
				entry.Datatype = alphabet.Dna
			case "aa", "prot", "protein", "wag", "lg", "jtt":
				// RaXML uses the substitution model name for protein data.
				entry.Datatype = alphabet.AminoAcid
			default:
				entry.Datatype = alphabet.Dna
			}
			name = strings.TrimSpace(rest)
		}
		if name == "" {
			return nil, fmt.Errorf("line %d: missing partition name", line)
		}
		entry.Name = name
		parsed, err := parseRanges(ranges)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entry.Ranges = parsed
		partition.Entries = append(partition.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(partition.Entries) == 0 {
		return nil, fmt.Errorf("no partition entries found")
	}
	return partition, nil
}

// ParseCharsets builds a partition from NEXUS charset commands, the raw
// form the nexus codec hands back from a sets block.
func ParseCharsets(charsets []string) (*Partition, error) {
	partition := &Partition{}
	for _, charset := range charsets {
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(charset), ";"))
		lower := strings.ToLower(text)
		if !strings.HasPrefix(lower, "charset") {
			continue
		}
		definition := strings.TrimSpace(text[len("charset"):])
		name, ranges, found := strings.Cut(definition, "=")
		if !found {
			return nil, fmt.Errorf("charset %q: missing =", charset)
		}
		parsed, err := parseRanges(ranges)
		if err != nil {
			return nil, fmt.Errorf("charset %q: %w", charset, err)
		}
		partition.Entries = append(partition.Entries, Entry{
			Name:   strings.TrimSpace(name),
			Ranges: parsed,
		})
	}
	if len(partition.Entries) == 0 {
		return nil, fmt.Errorf("no charset entries found")
	}
	return partition, nil
}

// ParseNexus reads a standalone NEXUS sets file.
func ParseNexus(r io.Reader) (*Partition, error) {
	scanner := bufio.NewScanner(r)
	var charsets []string
	var pending strings.Builder
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(text)
		if pending.Len() == 0 && !strings.HasPrefix(lower, "charset") {
			continue
		}
		if pending.Len() > 0 {
			pending.WriteByte(' ')
		}
		pending.WriteString(text)
		if strings.HasSuffix(text, ";") {
			charsets = append(charsets, pending.String())
			pending.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParseCharsets(charsets)
}

// ParseFile reads a partition file, detecting RaXML versus NEXUS from
// the content: a NEXUS sets file announces itself with #NEXUS or a
// charset command.
func ParseFile(path string) (*Partition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(string(content))
	if strings.HasPrefix(strings.TrimSpace(lower), "#nexus") || strings.Contains(lower, "charset") {
		return ParseNexus(strings.NewReader(string(content)))
	}
	return ParseRaxml(strings.NewReader(string(content)))
}

// raxmlDatatype is the RaXML spelling of a datatype.
func raxmlDatatype(datatype alphabet.Datatype) string {
	if datatype == alphabet.AminoAcid {
		return "WAG"
	}
	return "DNA"
}

// WriteRaxml writes a partition in RaXML form. Entries without a known
// datatype fall back to the given default.
func WriteRaxml(w io.Writer, partition *Partition, fallback alphabet.Datatype) error {
	writer := bufio.NewWriter(w)
	for _, entry := range partition.Entries {
		datatype := fallback
		if entry.HasDatatype {
			datatype = entry.Datatype
		}
		fmt.Fprintf(writer, "%s, %s = %s\n",
			raxmlDatatype(datatype), entry.Name, formatRanges(entry.Ranges, ", "))
	}
	return writer.Flush()
}

// Charsets renders the partition as NEXUS charset commands.
func (p *Partition) Charsets() []string {
	charsets := make([]string, 0, len(p.Entries))
	for _, entry := range p.Entries {
		charsets = append(charsets,
			fmt.Sprintf("charset %s = %s;", entry.Name, formatRanges(entry.Ranges, " ")))
	}
	return charsets
}

// WriteNexus writes a standalone NEXUS sets file.
func WriteNexus(w io.Writer, partition *Partition) error {
	writer := bufio.NewWriter(w)
	writer.WriteString("#NEXUS\n")
	writer.WriteString("begin sets;\n")
	for _, charset := range partition.Charsets() {
		writer.WriteString(charset)
		writer.WriteByte('\n')
	}
	writer.WriteString("end;\n")
	return writer.Flush()
}
