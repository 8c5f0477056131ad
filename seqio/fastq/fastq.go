/*
Package fastq streams FASTQ records, transparently decompressing
gzip-compressed files.

FASTQ files from sequencing runs routinely reach tens of gigabytes, so
nothing here materializes a whole file: records are handed out one at a
time and the gzip path uses a parallel decompressor.
*/
package fastq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"

	"github.com/hhandika/segul/sequence"
)

// Read is a single FASTQ record. Quality holds the raw quality line;
// subtract the Phred offset (33) to recover scores.
type Read struct {
	ID       string
	Sequence []byte
	Quality  []byte
}

// Parser reads FASTQ records four lines at a time.
type Parser struct {
	reader *bufio.Reader
	file   string
	line   int
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader, file string) *Parser {
	return &Parser{reader: bufio.NewReaderSize(r, 1024*1024), file: file}
}

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = []byte{0x1f, 0x8b}

// Open opens a FASTQ file, wrapping it in a parallel gzip reader when
// the magic bytes say so. The returned closer closes both layers.
func Open(path string) (*Parser, io.Closer, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	buffered := bufio.NewReaderSize(handle, 1024*1024)
	magic, err := buffered.Peek(2)
	if err == nil && bytes.Equal(magic, gzipMagic) {
		unzipper, err := pgzip.NewReader(buffered)
		if err != nil {
			handle.Close()
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		return NewParser(unzipper, path), &stack{unzipper, handle}, nil
	}
	if err != nil && err != io.EOF {
		handle.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewParser(buffered, path), handle, nil
}

// stack closes a decompressor and then its underlying file.
type stack struct {
	top    io.Closer
	bottom io.Closer
}

func (s *stack) Close() error {
	err := s.top.Close()
	if closeErr := s.bottom.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Next returns the next read, or io.EOF at the end of the stream.
func (p *Parser) Next() (*Read, error) {
	header, err := p.readLine()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if len(header) == 0 || header[0] != '@' {
		return nil, p.errorf("expected @ header, found %q", header)
	}
	id := header[1:]
	if cut := bytes.IndexAny(id, " \t"); cut >= 0 {
		id = id[:cut]
	}

	seq, err := p.requireLine("sequence")
	if err != nil {
		return nil, err
	}
	plus, err := p.requireLine("separator")
	if err != nil {
		return nil, err
	}
	if len(plus) == 0 || plus[0] != '+' {
		return nil, p.errorf("expected + separator, found %q", plus)
	}
	quality, err := p.requireLine("quality")
	if err != nil {
		return nil, err
	}
	if len(quality) != len(seq) {
		return nil, p.errorf("quality length %d does not match sequence length %d",
			len(quality), len(seq))
	}
	return &Read{
		ID:       string(id),
		Sequence: append([]byte(nil), seq...),
		Quality:  append([]byte(nil), quality...),
	}, nil
}

func (p *Parser) readLine() ([]byte, error) {
	for {
		line, err := p.reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%s: %w", p.file, err)
		}
		p.line++
		trimmed := bytes.TrimRight(line, "\r\n")
		if len(trimmed) == 0 && err == nil {
			continue
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%s: %w", p.file, err)
		}
		return trimmed, nil
	}
}

func (p *Parser) requireLine(what string) ([]byte, error) {
	line, err := p.readLine()
	if err == io.EOF {
		return nil, p.errorf("record truncated: missing %s line", what)
	}
	return line, err
}

func (p *Parser) errorf(format string, args ...any) error {
	return &sequence.ParseError{
		Format: "fastq", File: p.file, Line: p.line, Msg: fmt.Sprintf(format, args...),
	}
}
