package op

import (
	"context"
	"io"
	"path/filepath"

	"github.com/hhandika/segul/sequence"
)

// IDs reports the unique taxon ids across all inputs and, optionally, a
// presence map of which taxon occurs in which locus.
type IDs struct {
	Common
	// Map also writes the locus-by-taxon boolean table.
	Map bool
}

// idInfo is one file's contribution: its locus name and taxa.
type idInfo struct {
	locus string
	ids   []string
}

// Run writes the unique id list and, when requested, the presence map.
func (i *IDs) Run(ctx context.Context) error {
	results, err := mapFiles(ctx, &i.Common, func(file string) (*idInfo, error) {
		result, err := i.read(file)
		if err != nil {
			return nil, err
		}
		return &idInfo{
			locus: stem(file),
			ids:   append([]string(nil), result.Alignment.IDs()...),
		}, nil
	})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return sequence.ErrEmptyResult
	}

	union := make(map[string]bool)
	for _, result := range results {
		for _, id := range result.Value.ids {
			union[id] = true
		}
	}
	ids := make([]string, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	sequence.SortAlphanumeric(ids)

	out := i.writerFor()
	listPath := filepath.Join(i.OutputDir, i.Prefix+"id_list.txt")
	err = out.WriteFile(listPath, func(w io.Writer) error {
		for _, id := range ids {
			if _, err := io.WriteString(w, id+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || !i.Map {
		return err
	}

	header := append([]string{"locus"}, ids...)
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		present := make(map[string]bool, len(result.Value.ids))
		for _, id := range result.Value.ids {
			present[id] = true
		}
		row := []string{result.Value.locus}
		for _, id := range ids {
			if present[id] {
				row = append(row, "true")
			} else {
				row = append(row, "false")
			}
		}
		rows = append(rows, row)
	}
	mapPath := filepath.Join(i.OutputDir, i.Prefix+"id_map.csv")
	return out.WriteCSV(mapPath, header, rows)
}
