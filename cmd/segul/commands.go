package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/logger"
	"github.com/hhandika/segul/op"
	"github.com/hhandika/segul/partition"
	"github.com/hhandika/segul/runner"
	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
	"github.com/hhandika/segul/summary"
	"github.com/hhandika/segul/writer"
)

// exitCode maps an error to the documented exit codes: 1 for user and
// IO errors, 2 for parse and validation failures, 3 for a declined
// overwrite.
func exitCode(err error) int {
	var (
		parseErr    *sequence.ParseError
		invalidChar *sequence.InvalidCharacterError
		duplicate   *sequence.DuplicateIDError
		notAligned  *sequence.NotAlignedError
		outOfRange  *partition.OutOfRangeError
		declined    *writer.OverwriteDeclinedError
	)
	switch {
	case errors.As(err, &declined):
		return 3
	case errors.As(err, &parseErr),
		errors.As(err, &invalidChar),
		errors.As(err, &duplicate),
		errors.As(err, &notAligned),
		errors.As(err, &outOfRange),
		errors.Is(err, sequence.ErrMixedDatatype):
		return 2
	}
	return 1
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "input files or glob patterns",
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "input directory",
		},
		&cli.StringFlag{
			Name:    "input-format",
			Aliases: []string{"f"},
			Value:   "auto",
			Usage:   "input format: auto, nexus, phylip, fasta, fastq",
		},
		&cli.StringFlag{
			Name:    "output-format",
			Aliases: []string{"F"},
			Value:   "nexus",
			Usage:   "output format: nexus, nexus-int, phylip, phylip-int, fasta, fasta-int",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output directory",
		},
		&cli.StringFlag{
			Name:  "datatype",
			Value: "dna",
			Usage: "datatype: dna, aa, ignore",
		},
		&cli.BoolFlag{
			Name:  "overwrite",
			Usage: "overwrite existing output without prompting",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "prefix for output file names",
		},
		&cli.BoolFlag{
			Name:  "strict-duplicates",
			Usage: "treat bit-identical duplicate ids as fatal",
		},
		&cli.IntFlag{
			Name:  "cores",
			Usage: "worker count; defaults to all logical cores",
		},
	}
}

func partFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "part",
		Aliases: []string{"p"},
		Value:   "nexus",
		Usage:   "partition format: nexus, charset, raxml",
	}
}

// collectInputs expands the --input globs or lists the --dir contents.
func collectInputs(c *cli.Context, format seqio.Format) ([]string, error) {
	var files []string
	for _, pattern := range c.StringSlice("input") {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// Not a pattern: take the path literally so a missing file
			// errors at open time with a useful message.
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	if dir := c.String("dir"); dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if format != seqio.Auto || seqio.Detect(path) != seqio.Auto {
				files = append(files, path)
			}
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no input files; use --input or --dir")
	}
	sort.Strings(files)
	return files, nil
}

// buildCommon assembles the shared operation options from flags.
func buildCommon(c *cli.Context, defaultDir string) (op.Common, error) {
	var common op.Common
	inputFormat, err := seqio.ParseFormat(c.String("input-format"))
	if err != nil {
		return common, err
	}
	outputFormat, err := seqio.ParseOutputFormat(c.String("output-format"))
	if err != nil {
		return common, err
	}
	datatype, err := alphabet.Parse(c.String("datatype"))
	if err != nil {
		return common, err
	}
	files, err := collectInputs(c, inputFormat)
	if err != nil {
		return common, err
	}
	outputDir := c.String("output")
	if outputDir == "" {
		outputDir = defaultDir
	}
	common = op.Common{
		Files:            files,
		InputFormat:      inputFormat,
		Datatype:         datatype,
		OutputFormat:     outputFormat,
		OutputDir:        outputDir,
		Prefix:           c.String("prefix"),
		Overwrite:        c.Bool("overwrite"),
		StrictDuplicates: c.Bool("strict-duplicates"),
		Workers:          c.Int("cores"),
		Progress:         logProgress,
	}
	return common, nil
}

// logProgress forwards runner events to the log.
func logProgress(event runner.Event, file string) {
	switch event {
	case runner.FileCompleted:
		logger.Log.Debugf("done %s", file)
	case runner.FileFailed:
		logger.Log.Warnf("failed %s", file)
	}
}

func banner(operation string) {
	color.New(color.Bold, color.FgGreen).Fprintf(os.Stderr, "segul %s\n", operation)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "segul",
		Usage: "an ultrafast phylogenomic dataset toolkit",
		Commands: []*cli.Command{
			convertCommand(),
			concatCommand(),
			splitCommand(),
			filterCommand(),
			extractCommand(),
			removeCommand(),
			renameCommand(),
			translateCommand(),
			summaryCommand(),
			partitionCommand(),
			idCommand(),
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "convert alignments between formats",
		Flags: append(commonFlags(),
			&cli.BoolFlag{Name: "sort", Usage: "sort taxa alphanumerically"},
		),
		Action: func(c *cli.Context) error {
			banner("convert")
			common, err := buildCommon(c, "SEGUL-convert")
			if err != nil {
				return err
			}
			convert := &op.Convert{Common: common, Sort: c.Bool("sort")}
			return convert.Run(context.Background())
		},
	}
}

func concatCommand() *cli.Command {
	return &cli.Command{
		Name:  "concat",
		Usage: "concatenate alignments into a super-matrix with a partition",
		Flags: append(commonFlags(),
			partFlag(),
			&cli.BoolFlag{Name: "codon", Usage: "write codon-position subsets"},
			&cli.StringFlag{Name: "name", Value: "concat", Usage: "output matrix name"},
		),
		Action: func(c *cli.Context) error {
			banner("concat")
			common, err := buildCommon(c, "SEGUL-concat")
			if err != nil {
				return err
			}
			partFormat, err := partition.ParseFormat(c.String("part"))
			if err != nil {
				return err
			}
			concat := &op.Concat{
				Common:          common,
				PartitionFormat: partFormat,
				Codon:           c.Bool("codon"),
				MatrixName:      c.String("name"),
			}
			return concat.Run(context.Background())
		},
	}
}

func splitCommand() *cli.Command {
	return &cli.Command{
		Name:  "split",
		Usage: "split a concatenated alignment by partition",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "partition", Usage: "partition file; omit to use the embedded charset block"},
		),
		Action: func(c *cli.Context) error {
			banner("split")
			common, err := buildCommon(c, "SEGUL-split")
			if err != nil {
				return err
			}
			if len(common.Files) != 1 {
				return errors.New("split takes exactly one input alignment")
			}
			split := &op.Split{
				Common:        common,
				Input:         common.Files[0],
				PartitionFile: c.String("partition"),
			}
			return split.Run(context.Background())
		},
	}
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "filter alignments by completeness, length, or informative sites",
		Flags: append(commonFlags(),
			partFlag(),
			&cli.Float64SliceFlag{Name: "npercent", Usage: "minimum taxon completeness thresholds (0-1)"},
			&cli.Float64Flag{Name: "percent", Usage: "minimum taxon completeness (0-1)"},
			&cli.IntFlag{Name: "min-taxa", Usage: "minimum taxon count"},
			&cli.IntFlag{Name: "min-len", Usage: "minimum alignment length"},
			&cli.IntFlag{Name: "max-len", Usage: "maximum alignment length"},
			&cli.IntFlag{Name: "min-pis", Usage: "minimum parsimony-informative sites"},
			&cli.IntFlag{Name: "max-pis", Value: -1, Usage: "maximum parsimony-informative sites"},
			&cli.StringSliceFlag{Name: "taxa", Usage: "taxa that must all be present"},
			&cli.StringSliceFlag{Name: "loci", Usage: "locus names to keep"},
			&cli.BoolFlag{Name: "concat", Usage: "concatenate the survivors"},
		),
		Action: func(c *cli.Context) error {
			banner("filter")
			common, err := buildCommon(c, "SEGUL-filter")
			if err != nil {
				return err
			}
			percents := c.Float64Slice("npercent")
			if c.IsSet("percent") {
				percents = append(percents, c.Float64("percent"))
			}
			partFormat, err := partition.ParseFormat(c.String("part"))
			if err != nil {
				return err
			}
			filter := &op.Filter{
				Common:          common,
				Percents:        percents,
				MinTaxa:         c.Int("min-taxa"),
				MinLength:       c.Int("min-len"),
				MaxLength:       c.Int("max-len"),
				MinPis:          c.Int("min-pis"),
				MaxPis:          c.Int("max-pis"),
				RequiredTaxa:    c.StringSlice("taxa"),
				Loci:            c.StringSlice("loci"),
				Concat:          c.Bool("concat"),
				PartitionFormat: partFormat,
			}
			return filter.Run(context.Background())
		},
	}
}

// buildMatcher reads the id selection flags shared by extract and
// remove.
func buildMatcher(c *cli.Context) (*op.Matcher, error) {
	switch {
	case c.String("re") != "":
		return op.NewRegexMatcher(c.String("re"))
	case c.String("id-file") != "":
		return op.NewFileMatcher(c.String("id-file"))
	case len(c.StringSlice("id")) > 0:
		return op.NewIDMatcher(c.StringSlice("id")), nil
	}
	return nil, errors.New("select sequences with --id, --id-file, or --re")
}

func matcherFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "id", Usage: "sequence ids"},
		&cli.StringFlag{Name: "id-file", Usage: "file with one id per line"},
		&cli.StringFlag{Name: "re", Usage: "regular expression over ids"},
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "extract sequences matching ids or a pattern",
		Flags: append(commonFlags(), matcherFlags()...),
		Action: func(c *cli.Context) error {
			banner("extract")
			common, err := buildCommon(c, "SEGUL-extract")
			if err != nil {
				return err
			}
			matcher, err := buildMatcher(c)
			if err != nil {
				return err
			}
			extract := &op.Extract{Common: common, Matcher: matcher}
			return extract.Run(context.Background())
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:  "remove",
		Usage: "remove sequences matching ids or a pattern",
		Flags: append(commonFlags(), matcherFlags()...),
		Action: func(c *cli.Context) error {
			banner("remove")
			common, err := buildCommon(c, "SEGUL-remove")
			if err != nil {
				return err
			}
			matcher, err := buildMatcher(c)
			if err != nil {
				return err
			}
			remove := &op.Extract{Common: common, Matcher: matcher, Invert: true}
			return remove.Run(context.Background())
		},
	}
}

func renameCommand() *cli.Command {
	return &cli.Command{
		Name:  "rename",
		Usage: "rename sequence ids",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "names", Usage: "CSV/TSV table of original,new ids"},
			&cli.StringFlag{Name: "remove", Usage: "substring to delete from ids"},
			&cli.StringFlag{Name: "remove-re", Usage: "regex whose first match is deleted"},
			&cli.StringFlag{Name: "remove-re-all", Usage: "regex whose every match is deleted"},
			&cli.StringFlag{Name: "replace-from", Usage: "substring to replace"},
			&cli.StringFlag{Name: "replace-from-re", Usage: "regex to replace"},
			&cli.StringFlag{Name: "replace-to", Usage: "replacement text"},
		),
		Action: func(c *cli.Context) error {
			banner("rename")
			common, err := buildCommon(c, "SEGUL-rename")
			if err != nil {
				return err
			}
			renamer, err := buildRenamer(c)
			if err != nil {
				return err
			}
			rename := &op.Rename{Common: common, Renamer: renamer}
			return rename.Run(context.Background())
		},
	}
}

func buildRenamer(c *cli.Context) (op.Renamer, error) {
	if table := c.String("names"); table != "" {
		return op.NewTableRenamer(table)
	}
	edit := &op.EditRenamer{
		Remove: c.String("remove"),
		From:   c.String("replace-from"),
		To:     c.String("replace-to"),
	}
	if pattern := c.String("remove-re"); pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		edit.RemovePattern = compiled
	}
	if pattern := c.String("remove-re-all"); pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		edit.RemovePattern = compiled
		edit.RemoveAll = true
	}
	if pattern := c.String("replace-from-re"); pattern != "" {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		edit.FromPattern = compiled
	}
	if edit.Remove == "" && edit.RemovePattern == nil && edit.From == "" && edit.FromPattern == nil {
		return nil, errors.New("pick a rename mode: --names, --remove, --remove-re, --remove-re-all, or --replace-from")
	}
	return edit, nil
}

func translateCommand() *cli.Command {
	return &cli.Command{
		Name:  "translate",
		Usage: "translate DNA alignments to amino acids",
		Flags: append(commonFlags(),
			&cli.IntFlag{Name: "table", Value: 1, Usage: "NCBI translation table"},
			&cli.IntFlag{Name: "rf", Value: 1, Usage: "reading frame: 1, 2, or 3"},
		),
		Action: func(c *cli.Context) error {
			banner("translate")
			common, err := buildCommon(c, "SEGUL-translate")
			if err != nil {
				return err
			}
			translate := &op.Translate{
				Common:  common,
				TableID: c.Int("table"),
				Frame:   c.Int("rf"),
			}
			return translate.Run(context.Background())
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "summarize alignments, taxa, raw reads, or contigs",
		Flags: append(commonFlags(),
			&cli.StringFlag{Name: "mode", Value: "align", Usage: "summary mode: align, taxon, read, contig"},
			&cli.IntFlag{Name: "interval", Value: 5, Usage: "completeness interval: 1, 2, 5, or 10"},
			&cli.BoolFlag{Name: "complete", Usage: "write per-position tables for reads"},
		),
		Action: func(c *cli.Context) error {
			banner("summary")
			common, err := buildCommon(c, "SEGUL-summary")
			if err != nil {
				return err
			}
			switch c.String("mode") {
			case "align", "taxon":
				summarize := &op.SummarizeAlignments{
					Common:   common,
					Step:     c.Int("interval"),
					PerTaxon: c.String("mode") == "taxon",
				}
				if err := summarize.Run(context.Background()); err != nil {
					return err
				}
				printOverview(summarize.Dataset, c.Int("interval"))
				return nil
			case "read":
				reads := &op.SummarizeReads{Common: common, Complete: c.Bool("complete")}
				return reads.Run(context.Background())
			case "contig":
				contigs := &op.SummarizeContigs{Common: common}
				return contigs.Run(context.Background())
			}
			return fmt.Errorf("unknown summary mode %q", c.String("mode"))
		},
	}
}

// printOverview renders the dataset table on the terminal.
func printOverview(dataset *summary.DatasetSummary, step int) {
	if dataset == nil {
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Loci", strconv.Itoa(dataset.Loci)})
	table.Append([]string{"Taxa", strconv.Itoa(dataset.TotalTaxa())})
	table.Append([]string{"Sites", strconv.Itoa(dataset.TotalSites)})
	table.Append([]string{"GC content", strconv.FormatFloat(dataset.GC(), 'f', 4, 64)})
	for _, bucket := range dataset.Completeness(step) {
		table.Append([]string{
			fmt.Sprintf("Loci >=%d%% complete", bucket.Percent),
			strconv.Itoa(bucket.Loci),
		})
	}
	table.Render()
}

func partitionCommand() *cli.Command {
	return &cli.Command{
		Name:  "partition",
		Usage: "convert partition files between formats",
		Flags: append(commonFlags(),
			partFlag(),
			&cli.BoolFlag{Name: "codon", Usage: "merge codon-position subsets"},
		),
		Action: func(c *cli.Context) error {
			banner("partition")
			common, err := buildCommon(c, "SEGUL-partition")
			if err != nil {
				return err
			}
			target, err := partition.ParseFormat(c.String("part"))
			if err != nil {
				return err
			}
			convert := &op.ConvertPartition{
				Common:     common,
				To:         target,
				MergeCodon: c.Bool("codon"),
			}
			return convert.Run(context.Background())
		},
	}
}

func idCommand() *cli.Command {
	return &cli.Command{
		Name:  "id",
		Usage: "list unique taxon ids across inputs",
		Flags: append(commonFlags(),
			&cli.BoolFlag{Name: "map", Usage: "also write the locus-by-taxon presence map"},
		),
		Action: func(c *cli.Context) error {
			banner("id")
			common, err := buildCommon(c, "SEGUL-id")
			if err != nil {
				return err
			}
			ids := &op.IDs{Common: common, Map: c.Bool("map")}
			return ids.Run(context.Background())
		},
	}
}
