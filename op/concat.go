package op

import (
	"bytes"
	"context"
	"io"
	"path/filepath"

	"github.com/hhandika/segul/alphabet"
	"github.com/hhandika/segul/partition"
	"github.com/hhandika/segul/seqio"
	"github.com/hhandika/segul/sequence"
)

// Concat assembles per-locus alignments into one super-matrix plus a
// partition describing where each locus landed.
//
// Inputs are visited in alphanumeric file name order, so coordinates
// are deterministic. A taxon absent from a locus gets gap characters
// for that range; a taxon first seen mid-way is backfilled with the
// missing character for the loci before it.
type Concat struct {
	Common
	PartitionFormat partition.Format
	// Codon splits every locus entry into three stride-3 subsets.
	Codon bool
	// MatrixName is the output stem; "concat" by default.
	MatrixName string
}

// Run concatenates the inputs. Files are read one at a time so peak
// memory stays at one locus plus the growing per-taxon buffers.
func (c *Concat) Run(ctx context.Context) error {
	if len(c.Files) == 0 {
		return sequence.ErrEmptyResult
	}
	files := append([]string(nil), c.Files...)
	sequence.SortAlphanumeric(files)

	buffers := make(map[string]*bytes.Buffer)
	var ids []string
	var datatype alphabet.Datatype
	haveDatatype := false
	total := 0
	parts := &partition.Partition{}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := c.read(file)
		if err != nil {
			return err
		}
		aln := result.Alignment
		if !aln.IsAligned() {
			return &sequence.NotAlignedError{File: file}
		}
		haveDatatype, err = checkDatatype(&datatype, haveDatatype, aln.Header.Datatype)
		if err != nil {
			return err
		}
		nchar := aln.Nchar()

		for _, id := range aln.IDs() {
			if _, known := buffers[id]; !known {
				buff := &bytes.Buffer{}
				buff.Write(bytes.Repeat([]byte{'?'}, total))
				buffers[id] = buff
				ids = append(ids, id)
			}
		}
		for _, id := range ids {
			buff := buffers[id]
			if record, ok := aln.Get(id); ok {
				buff.Write(record.Sequence)
			} else {
				buff.Write(bytes.Repeat([]byte{'-'}, nchar))
			}
		}

		entry := partition.Entry{
			Name:        stem(file),
			Datatype:    aln.Header.Datatype,
			HasDatatype: aln.Header.Datatype != alphabet.Ignore,
			Ranges:      []partition.Range{{Start: total + 1, End: total + nchar}},
		}
		parts.Entries = append(parts.Entries, entry)
		total += nchar
	}

	parts.NormalizeNames()
	if err := parts.Validate(total); err != nil {
		return err
	}
	if c.Codon {
		parts.SplitCodon()
	}

	matrix := sequence.NewAlignment(datatype)
	sequence.SortAlphanumeric(ids)
	for _, id := range ids {
		if _, err := matrix.Insert(sequence.Record{ID: id, Sequence: buffers[id].Bytes()}); err != nil {
			return err
		}
		delete(buffers, id)
	}
	matrix.Header.Nchar = total

	out := c.writerFor()
	name := c.MatrixName
	if name == "" {
		name = "concat"
	}
	matrixPath := filepath.Join(c.OutputDir, c.Prefix+name+c.OutputFormat.Extension())

	embedCharsets := c.PartitionFormat == partition.Charset &&
		(c.OutputFormat == seqio.OutNexus || c.OutputFormat == seqio.OutNexusInt)
	err := out.WriteFile(matrixPath, func(w io.Writer) error {
		if err := seqio.WriteAlignment(w, matrix, c.OutputFormat); err != nil {
			return err
		}
		if embedCharsets {
			return seqio.WriteCharsets(w, parts.Charsets())
		}
		return nil
	})
	if err != nil {
		return err
	}
	if embedCharsets {
		return nil
	}

	switch c.PartitionFormat {
	case partition.Raxml:
		partitionPath := filepath.Join(c.OutputDir, c.Prefix+name+"_partition.txt")
		return out.WriteFile(partitionPath, func(w io.Writer) error {
			return partition.WriteRaxml(w, parts, datatype)
		})
	default:
		partitionPath := filepath.Join(c.OutputDir, c.Prefix+name+"_partition.nex")
		return out.WriteFile(partitionPath, func(w io.Writer) error {
			return partition.WriteNexus(w, parts)
		})
	}
}
