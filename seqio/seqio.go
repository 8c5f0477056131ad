/*
Package seqio ties the per-format codecs together: it maps file
extensions and command-line names to formats, reads any supported
alignment file into the shared model, and writes alignments back out in
any of the six output layouts.
*/
package seqio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/seqio/fasta"
	"github.com/hhandika/segul/seqio/nexus"
	"github.com/hhandika/segul/seqio/phylip"
	"github.com/hhandika/segul/sequence"
)

// Format identifies an input file format.
type Format int

const (
	Auto Format = iota
	Fasta
	Nexus
	Phylip
	Fastq
)

// extensions maps known file extensions to formats, following the
// conventions of the major phylogenetics tools.
var extensions = map[string]Format{
	".fa":     Fasta,
	".fas":    Fasta,
	".fasta":  Fasta,
	".nex":    Nexus,
	".nxs":    Nexus,
	".nexus":  Nexus,
	".phy":    Phylip,
	".phylip": Phylip,
	".fq":     Fastq,
	".fastq":  Fastq,
}

// Detect infers the format of a path from its extension. It returns
// Auto when the extension is unknown, in which case the caller must
// declare the format.
func Detect(path string) Format {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".gz") {
		name = strings.TrimSuffix(name, ".gz")
	}
	if format, ok := extensions[filepath.Ext(name)]; ok {
		return format
	}
	return Auto
}

// ParseFormat maps a command-line format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "auto":
		return Auto, nil
	case "fasta":
		return Fasta, nil
	case "nexus":
		return Nexus, nil
	case "phylip":
		return Phylip, nil
	case "fastq":
		return Fastq, nil
	}
	return Auto, fmt.Errorf("unknown input format %q", name)
}

// OutputFormat identifies an output layout: a format plus whether the
// matrix is interleaved.
type OutputFormat int

const (
	OutNexus OutputFormat = iota
	OutNexusInt
	OutPhylip
	OutPhylipInt
	OutFasta
	OutFastaInt
)

// InterleaveWidth is the residue block width used by all interleaved
// writers.
const InterleaveWidth = 500

// ParseOutputFormat maps a command-line output format name to an
// OutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(name) {
	case "nexus":
		return OutNexus, nil
	case "nexus-int", "nexus-interleaved":
		return OutNexusInt, nil
	case "phylip":
		return OutPhylip, nil
	case "phylip-int", "phylip-interleaved":
		return OutPhylipInt, nil
	case "fasta":
		return OutFasta, nil
	case "fasta-int", "fasta-interleaved":
		return OutFastaInt, nil
	}
	return OutNexus, fmt.Errorf("unknown output format %q", name)
}

// Extension returns the file extension for the output format.
func (f OutputFormat) Extension() string {
	switch f {
	case OutNexus, OutNexusInt:
		return ".nex"
	case OutPhylip, OutPhylipInt:
		return ".phy"
	}
	return ".fas"
}

// ParseResult is what reading one alignment file produces: the
// alignment, any embedded charset commands, and non-fatal warnings.
type ParseResult struct {
	Alignment *sequence.Alignment
	Charsets  []string
	Warnings  []string
}

// ReadAlignment reads one alignment file. With format Auto the format
// is detected from the extension; an undetectable extension is an
// error. FASTQ files are not alignments and are rejected here.
func ReadAlignment(path string, format Format, datatype alphabet.Datatype, strict bool) (*ParseResult, error) {
	if format == Auto {
		format = Detect(path)
	}
	switch format {
	case Auto:
		return nil, fmt.Errorf("%s: cannot detect format from extension; declare one with --input-format", path)
	case Fastq:
		return nil, fmt.Errorf("%s: fastq input is only supported by the read summary", path)
	}

	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer handle.Close()
	return parseAlignment(handle, path, format, datatype, strict)
}

func parseAlignment(r io.Reader, path string, format Format, datatype alphabet.Datatype, strict bool) (*ParseResult, error) {
	switch format {
	case Fasta:
		aln, warnings, err := fasta.Parse(r, path, datatype, strict)
		if err != nil {
			return nil, err
		}
		return &ParseResult{Alignment: aln, Warnings: warnings}, nil
	case Phylip:
		aln, warnings, err := phylip.Parse(r, path, datatype, strict)
		if err != nil {
			return nil, err
		}
		return &ParseResult{Alignment: aln, Warnings: warnings}, nil
	case Nexus:
		file, err := nexus.Parse(r, path, datatype, strict)
		if err != nil {
			return nil, err
		}
		return &ParseResult{
			Alignment: file.Alignment,
			Charsets:  file.Charsets,
			Warnings:  file.Warnings,
		}, nil
	}
	return nil, fmt.Errorf("%s: unsupported input format", path)
}

// WriteAlignment writes an alignment to w in the requested layout.
func WriteAlignment(w io.Writer, aln *sequence.Alignment, format OutputFormat) error {
	switch format {
	case OutNexus:
		return nexus.Write(w, aln, false, InterleaveWidth)
	case OutNexusInt:
		return nexus.Write(w, aln, true, InterleaveWidth)
	case OutPhylip:
		return phylip.Write(w, aln, false, InterleaveWidth)
	case OutPhylipInt:
		return phylip.Write(w, aln, true, InterleaveWidth)
	case OutFasta:
		return fasta.Write(w, aln.Records(), 0)
	case OutFastaInt:
		return fasta.Write(w, aln.Records(), InterleaveWidth)
	}
	return fmt.Errorf("unsupported output format")
}

// WriteCharsets appends a NEXUS sets block to a stream that already
// holds a data block.
func WriteCharsets(w io.Writer, charsets []string) error {
	return nexus.WriteCharsets(w, charsets)
}
