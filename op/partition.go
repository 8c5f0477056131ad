package op

import (
	"context"
	"io"
	"path/filepath"

	"github.com/hhandika/segul/partition"
	"github.com/hhandika/segul/sequence"
)

// ConvertPartition rewrites partition files between the RaXML and NEXUS
// forms, optionally merging codon-position subsets.
type ConvertPartition struct {
	Common
	To partition.Format
	// MergeCodon collapses grouped stride-3 triples into single
	// entries.
	MergeCodon bool
}

// Run converts every input partition file.
func (p *ConvertPartition) Run(ctx context.Context) error {
	if len(p.Files) == 0 {
		return sequence.ErrEmptyResult
	}
	out := p.writerFor()
	for _, file := range p.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		parts, err := partition.ParseFile(file)
		if err != nil {
			return err
		}
		parts.NormalizeNames()
		if p.MergeCodon {
			parts.MergeCodonSubsets()
		}
		var path string
		var write func(io.Writer) error
		switch p.To {
		case partition.Raxml:
			path = filepath.Join(p.OutputDir, p.Prefix+stem(file)+".txt")
			write = func(w io.Writer) error {
				return partition.WriteRaxml(w, parts, p.Datatype)
			}
		default:
			path = filepath.Join(p.OutputDir, p.Prefix+stem(file)+".nex")
			write = func(w io.Writer) error {
				return partition.WriteNexus(w, parts)
			}
		}
		if err := out.WriteFile(path, write); err != nil {
			return err
		}
	}
	return nil
}
