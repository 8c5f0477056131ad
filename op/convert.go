package op

import (
	"context"
	"io"

	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
)

// Convert rewrites every input file in the requested output layout.
type Convert struct {
	Common
	// Sort reorders taxa alphanumerically before writing.
	Sort bool
}

// Run converts all input files in parallel.
func (c *Convert) Run(ctx context.Context) error {
	out := c.writerFor()
	_, err := mapFiles(ctx, &c.Common, func(file string) (struct{}, error) {
		result, err := c.read(file)
		if err != nil {
			return struct{}{}, err
		}
		aln := result.Alignment
		if c.Sort {
			aln.Sort()
		}
		path := c.outputPath(file)
		return struct{}{}, out.WriteFile(path, func(w io.Writer) error {
			return seqio.WriteAlignment(w, aln, c.OutputFormat)
		})
	})
	if err != nil {
		return err
	}
	if len(c.Files) == 0 {
		return sequence.ErrEmptyResult
	}
	return nil
}
