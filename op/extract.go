package op

import (
	"bufio"
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
)

// Matcher selects sequence ids from a literal list, a text file with
// one id per line, or a regular expression. Regular expressions use
// Go's RE2 engine, so matching stays linear in the input.
type Matcher struct {
	ids     map[string]bool
	pattern *regexp.Regexp
	// hits tracks which literal ids actually matched so missing ones
	// can be warned about. Guarded by mu: workers match concurrently.
	mu   sync.Mutex
	hits map[string]bool
}

// NewIDMatcher builds a matcher from literal ids.
func NewIDMatcher(ids []string) *Matcher {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return &Matcher{ids: set, hits: make(map[string]bool)}
}

// NewFileMatcher reads one id per line from a text file.
func NewFileMatcher(path string) (*Matcher, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer handle.Close()
	var ids []string
	scanner := bufio.NewScanner(handle)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewIDMatcher(ids), nil
}

// NewRegexMatcher compiles a regular expression matcher.
func NewRegexMatcher(pattern string) (*Matcher, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Matcher{pattern: compiled, hits: make(map[string]bool)}, nil
}

// Match reports whether an id is selected.
func (m *Matcher) Match(id string) bool {
	if m.pattern != nil {
		return m.pattern.MatchString(id)
	}
	if m.ids[id] {
		m.mu.Lock()
		m.hits[id] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// Missing returns the literal ids that never matched anything.
func (m *Matcher) Missing() []string {
	if m.ids == nil {
		return nil
	}
	var missing []string
	for id := range m.ids {
		if !m.hits[id] {
			missing = append(missing, id)
		}
	}
	sequence.SortAlphanumeric(missing)
	return missing
}

// Extract keeps only matching ids; Remove drops them. Both skip files
// left empty and warn about requested ids that appear nowhere.
type Extract struct {
	Common
	Matcher *Matcher
	// Invert flips the selection, turning extract into remove.
	Invert bool
}

// Run filters the sequences of every input file.
func (e *Extract) Run(ctx context.Context) error {
	out := e.writerFor()
	results, err := mapFiles(ctx, &e.Common, func(file string) (int, error) {
		result, err := e.read(file)
		if err != nil {
			return 0, err
		}
		aln := result.Alignment
		kept := sequence.NewAlignment(aln.Header.Datatype)
		for _, record := range aln.Records() {
			if e.Matcher.Match(record.ID) == e.Invert {
				continue
			}
			if _, err := kept.Insert(record); err != nil {
				return 0, err
			}
		}
		if kept.Len() == 0 {
			logger.Log.Warnf("%s: no sequences left, skipping", file)
			return 0, nil
		}
		path := e.outputPath(file)
		return kept.Len(), out.WriteFile(path, func(w io.Writer) error {
			return seqio.WriteAlignment(w, kept, e.OutputFormat)
		})
	})
	if err != nil {
		return err
	}
	for _, id := range e.Matcher.Missing() {
		logger.Log.Warnf("id %q not found in any input", id)
	}
	total := 0
	for _, result := range results {
		total += result.Value
	}
	if total == 0 {
		return sequence.ErrEmptyResult
	}
	return nil
}
