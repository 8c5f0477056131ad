package op

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/partition"
	"github.com/hhandika/segul/sequence"
	"github.com/hhandika/segul/summary"
)

// Filter selects the alignments passing a set of predicates and either
// copies them into a new directory or concatenates them.
type Filter struct {
	Common
	// Percents are minimum taxon completeness thresholds against the
	// union of taxa, each producing its own output directory.
	Percents []float64
	// MinTaxa is an absolute minimum taxon count.
	MinTaxa int
	// MinLength and MaxLength bound the alignment length; zero means
	// unbounded.
	MinLength int
	MaxLength int
	// MinPis and MaxPis bound parsimony-informative sites; -1 means
	// unbounded.
	MinPis int
	MaxPis int
	// RequiredTaxa must all be present in a surviving alignment.
	RequiredTaxa []string
	// Loci restricts output to the named locus stems.
	Loci []string
	// Concat concatenates survivors instead of copying them.
	Concat bool
	// PartitionFormat applies when Concat is set.
	PartitionFormat partition.Format
}

// fileInfo is what the filter pass needs to know about one alignment.
type fileInfo struct {
	ids   []string
	nchar int
	pis   int
}

// Run evaluates the predicates over all inputs and emits the survivors.
func (f *Filter) Run(ctx context.Context) error {
	needPis := f.MinPis > 0 || f.MaxPis >= 0
	results, err := mapFiles(ctx, &f.Common, func(file string) (*fileInfo, error) {
		result, err := f.read(file)
		if err != nil {
			return nil, err
		}
		aln := result.Alignment
		info := &fileInfo{
			ids:   append([]string(nil), aln.IDs()...),
			nchar: aln.Nchar(),
		}
		if needPis {
			info.pis = summary.SummarizeAlignment(stem(file), aln).ParsimonyInformative
		}
		return info, nil
	})
	if err != nil {
		return err
	}

	union := make(map[string]bool)
	for _, result := range results {
		for _, id := range result.Value.ids {
			union[id] = true
		}
	}

	percents := f.Percents
	if len(percents) == 0 {
		percents = []float64{0}
	}
	multi := len(percents) > 1

	wrote := false
	for _, percent := range percents {
		minTaxa := f.MinTaxa
		if percent > 0 {
			byPercent := int(math.Ceil(percent * float64(len(union))))
			if byPercent > minTaxa {
				minTaxa = byPercent
			}
		}
		var survivors []string
		for _, result := range results {
			if f.keep(result.File, result.Value, minTaxa) {
				survivors = append(survivors, result.File)
			}
		}
		if len(survivors) == 0 {
			logger.Log.Warnf("no alignments pass at %.0f%% completeness", percent*100)
			continue
		}
		dir := f.OutputDir
		if multi {
			dir = fmt.Sprintf("%s_p%.0f", f.OutputDir, percent*100)
		}
		if err := f.emit(ctx, survivors, dir); err != nil {
			return err
		}
		wrote = true
	}
	if !wrote {
		return sequence.ErrEmptyResult
	}
	return nil
}

// keep applies every predicate to one alignment.
func (f *Filter) keep(file string, info *fileInfo, minTaxa int) bool {
	if len(info.ids) < minTaxa {
		return false
	}
	if f.MinLength > 0 && info.nchar < f.MinLength {
		return false
	}
	if f.MaxLength > 0 && info.nchar > f.MaxLength {
		return false
	}
	if f.MinPis > 0 && info.pis < f.MinPis {
		return false
	}
	if f.MaxPis >= 0 && info.pis > f.MaxPis {
		return false
	}
	if len(f.RequiredTaxa) > 0 {
		present := make(map[string]bool, len(info.ids))
		for _, id := range info.ids {
			present[id] = true
		}
		for _, required := range f.RequiredTaxa {
			if !present[required] {
				return false
			}
		}
	}
	if len(f.Loci) > 0 {
		name := stem(file)
		found := false
		for _, locus := range f.Loci {
			if locus == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// emit copies or concatenates the surviving files.
func (f *Filter) emit(ctx context.Context, survivors []string, dir string) error {
	if f.Concat {
		concat := &Concat{
			Common:          f.Common,
			PartitionFormat: f.PartitionFormat,
		}
		concat.Files = survivors
		concat.OutputDir = dir
		return concat.Run(ctx)
	}
	out := f.writerFor()
	for _, file := range survivors {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.Base(file))
		source, err := os.Open(file)
		if err != nil {
			return err
		}
		err = out.WriteFile(target, func(w io.Writer) error {
			_, copyErr := io.Copy(w, source)
			return copyErr
		})
		source.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
