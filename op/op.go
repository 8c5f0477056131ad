/*
Package op implements the dataset operations: convert, concat, split,
filter, extract, remove, rename, translate, and the id report. Every
operation reads through the seqio codecs, fans out over the runner pool
when it is per-file, and writes through the output writer.
*/
package op

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/runner"
	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
	"github.com/hhandika/segul/writer"
)

// Common carries the options shared by every operation.
type Common struct {
	Files            []string
	InputFormat      seqio.Format
	Datatype         alphabet.Datatype
	OutputFormat     seqio.OutputFormat
	OutputDir        string
	Prefix           string
	Overwrite        bool
	StrictDuplicates bool
	Workers          int
	Progress         runner.Progress
}

// writerFor returns the output writer for the run.
func (c *Common) writerFor() *writer.Writer {
	return writer.New(c.Overwrite)
}

// read parses one alignment file under the common options, logging any
// downgraded warnings.
func (c *Common) read(file string) (*seqio.ParseResult, error) {
	result, err := seqio.ReadAlignment(file, c.InputFormat, c.Datatype, c.StrictDuplicates)
	if err != nil {
		return nil, err
	}
	for _, warning := range result.Warnings {
		logger.Log.Warn(warning)
	}
	return result, nil
}

// outputPath maps an input file to its output path under the common
// options.
func (c *Common) outputPath(input string) string {
	return writer.OutputName(c.OutputDir, input, c.Prefix, c.OutputFormat.Extension())
}

// stem returns a file's base name without extension, normalized the way
// partition names are (dots become underscores).
func stem(file string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return strings.ReplaceAll(base, ".", "_")
}

// mapFiles runs fn over the operation's files on the worker pool.
func mapFiles[T any](ctx context.Context, c *Common, fn func(file string) (T, error)) ([]runner.Result[T], error) {
	return runner.Map(ctx, c.Files, c.Workers, c.Progress, fn)
}

// checkDatatype verifies all inputs agree on DNA versus amino acid.
func checkDatatype(seen *alphabet.Datatype, have bool, next alphabet.Datatype) (bool, error) {
	if next == alphabet.Ignore {
		return have, nil
	}
	if !have {
		*seen = next
		return true, nil
	}
	if *seen != next {
		return true, sequence.ErrMixedDatatype
	}
	return true, nil
}
