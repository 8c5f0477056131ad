/*
Package partition models named coordinate ranges over a concatenated
alignment and converts between the RaXML and NEXUS charset partition
formats.

Coordinates are 1-based and inclusive, matching both file formats. A
range may carry a stride of 3 for codon-position subsets, written with
the backslash syntax (1-300\3).
*/
package partition

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hhandika/segul/alphabet"
)

// Range is a 1-based inclusive coordinate range. A Stride of 0 means
// every site; 3 marks a codon-position subset.
type Range struct {
	Start  int
	End    int
	Stride int
}

// Sites returns how many sites the range covers.
func (r Range) Sites() int {
	if r.Stride <= 1 {
		return r.End - r.Start + 1
	}
	return (r.End-r.Start)/r.Stride + 1
}

// Entry is one named subset of the concatenated matrix.
type Entry struct {
	Name        string
	Datatype    alphabet.Datatype
	HasDatatype bool
	Ranges      []Range
}

// Partition is an ordered list of entries.
type Partition struct {
	Entries []Entry
}

// OutOfRangeError reports a partition entry that falls outside the
// matrix or overlaps another entry.
type OutOfRangeError struct {
	Name string
	Msg  string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("partition %q: %s", e.Name, e.Msg)
}

// NormalizeNames rewrites entry names for output: dots become
// underscores.
func (p *Partition) NormalizeNames() {
	for i := range p.Entries {
		p.Entries[i].Name = strings.ReplaceAll(p.Entries[i].Name, ".", "_")
	}
}

// Validate checks the partition invariants: ordered ranges, unique
// names after normalization, and, when nchar is positive, no overlap
// between flattened entries and full coverage of 1..nchar.
func (p *Partition) Validate(nchar int) error {
	names := make(map[string]bool, len(p.Entries))
	covered := 0
	var used []bool
	if nchar > 0 {
		used = make([]bool, nchar+1)
	}
	for _, entry := range p.Entries {
		normalized := strings.ReplaceAll(entry.Name, ".", "_")
		if names[normalized] {
			return &OutOfRangeError{Name: entry.Name, Msg: "duplicate name"}
		}
		names[normalized] = true
		for _, r := range entry.Ranges {
			if r.Start < 1 || r.Start > r.End {
				return &OutOfRangeError{
					Name: entry.Name,
					Msg:  fmt.Sprintf("bad range %d-%d", r.Start, r.End),
				}
			}
			if nchar > 0 && r.End > nchar {
				return &OutOfRangeError{
					Name: entry.Name,
					Msg:  fmt.Sprintf("range %d-%d exceeds alignment length %d", r.Start, r.End, nchar),
				}
			}
			// Strided sibling subsets legitimately share a start-end
			// window, so overlap is checked site by site rather than as
			// span intersection.
			if used != nil {
				step := r.Stride
				if step <= 1 {
					step = 1
				}
				for site := r.Start; site <= r.End; site += step {
					if used[site] {
						return &OutOfRangeError{
							Name: entry.Name,
							Msg:  fmt.Sprintf("site %d overlaps another entry", site),
						}
					}
					used[site] = true
				}
			}
			covered += r.Sites()
		}
	}
	if nchar > 0 && covered != nchar {
		return &OutOfRangeError{
			Name: "partition",
			Msg:  fmt.Sprintf("covers %d sites, alignment has %d", covered, nchar),
		}
	}
	return nil
}

// codonSuffixes match the naming conventions marking codon-position
// subsets. The capture is the position number.
var codonSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)_subset([123])$`),
	regexp.MustCompile(`^(.*)_(1)st_?pos$|^(.*)_(2)nd_?pos$|^(.*)_(3)rd_?pos$`),
	regexp.MustCompile(`^(.*)_pos([123])$`),
}

// codonPosition returns the base name and codon position encoded in an
// entry name, or ok=false when the name does not follow a codon-subset
// convention.
func codonPosition(name string) (base string, pos int, ok bool) {
	for _, pattern := range codonSuffixes {
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		// The alternation pattern has multiple capture pairs; pick the
		// one that matched.
		for i := 1; i+1 < len(match); i += 2 {
			if match[i+1] != "" {
				return match[i], int(match[i+1][0] - '0'), true
			}
		}
	}
	return "", 0, false
}

// MergeCodonSubsets collapses groups of three codon-position entries
// into one unstrided entry per locus. A group merges only when all
// three positions are present, every member is a single stride-3 range,
// and the starts interleave as base, base+1, base+2. Anything else is
// left untouched.
func (p *Partition) MergeCodonSubsets() {
	type member struct {
		index int
		pos   int
	}
	groups := make(map[string][]member)
	order := []string{}
	for i, entry := range p.Entries {
		base, pos, ok := codonPosition(entry.Name)
		if !ok || len(entry.Ranges) != 1 || entry.Ranges[0].Stride != 3 {
			continue
		}
		if _, seen := groups[base]; !seen {
			order = append(order, base)
		}
		groups[base] = append(groups[base], member{index: i, pos: pos})
	}

	merged := make(map[int]bool)
	replacement := make(map[int]Entry)
	for _, base := range order {
		members := groups[base]
		if len(members) != 3 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].pos < members[j].pos })
		if members[0].pos != 1 || members[1].pos != 2 || members[2].pos != 3 {
			continue
		}
		first := p.Entries[members[0].index].Ranges[0]
		second := p.Entries[members[1].index].Ranges[0]
		third := p.Entries[members[2].index].Ranges[0]
		if second.Start != first.Start+1 || third.Start != first.Start+2 {
			continue
		}
		start := first.Start
		end := first.End
		for _, r := range []Range{second, third} {
			if r.End > end {
				end = r.End
			}
		}
		entry := p.Entries[members[0].index]
		replacement[members[0].index] = Entry{
			Name:        base,
			Datatype:    entry.Datatype,
			HasDatatype: entry.HasDatatype,
			Ranges:      []Range{{Start: start, End: end}},
		}
		merged[members[1].index] = true
		merged[members[2].index] = true
	}
	if len(replacement) == 0 {
		return
	}
	var entries []Entry
	for i, entry := range p.Entries {
		if merged[i] {
			continue
		}
		if repl, ok := replacement[i]; ok {
			entries = append(entries, repl)
			continue
		}
		entries = append(entries, entry)
	}
	p.Entries = entries
}

// SplitCodon expands every entry into three stride-3 subsets, the form
// RaXML expects for codon models. Entries already strided are kept.
func (p *Partition) SplitCodon() {
	var entries []Entry
	for _, entry := range p.Entries {
		if len(entry.Ranges) != 1 || entry.Ranges[0].Stride != 0 {
			entries = append(entries, entry)
			continue
		}
		r := entry.Ranges[0]
		for pos := 1; pos <= 3; pos++ {
			entries = append(entries, Entry{
				Name:        fmt.Sprintf("%s_subset%d", entry.Name, pos),
				Datatype:    entry.Datatype,
				HasDatatype: entry.HasDatatype,
				Ranges:      []Range{{Start: r.Start + pos - 1, End: r.End, Stride: 3}},
			})
		}
	}
	p.Entries = entries
}

// formatRanges renders ranges in the shared S-E and S-E\K syntax.
func formatRanges(ranges []Range, separator string) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r.Stride > 1 {
			parts = append(parts, fmt.Sprintf("%d-%d\\%d", r.Start, r.End, r.Stride))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", r.Start, r.End))
		}
	}
	return strings.Join(parts, separator)
}
