// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/jnomics/reads"
	"github.com/grailbio/jnomics/sequence"
)

// statsRow is one line of the stats output.
type statsRow struct {
	Name     string `tsv:"NAME"`
	Reads    int64  `tsv:"READS"`
	Position int64  `tsv:"POS"`
	Length   int64  `tsv:"LEN"`
	GC       string `tsv:"GC"`
	// MateDistance is the edit distance between the bases of the first and
	// last segments, or -1 if the template is not properly paired.
	MateDistance int64 `tsv:"MATE_DIST"`
}

func templateStats(t *reads.QueryTemplate) statsRow {
	var gc, at float64
	for _, r := range t.Reads() {
		gc += r.GCSum()
		at += r.ATSum()
	}
	var gcContent float64
	if gc+at > 0 {
		gcContent = gc / (gc + at)
	}
	pos := t.CalculateTemplatePosition()
	row := statsRow{
		Name:         t.Name(),
		Reads:        int64(t.Len()),
		Position:     int64(pos.First()),
		Length:       int64(pos.Length()),
		GC:           strconv.FormatFloat(gcContent, 'f', 4, 64),
		MateDistance: -1,
	}
	if first, last := t.First(), t.Last(); first != nil && last != nil {
		row.MateDistance = int64(sequence.Distance(first, last))
	}
	return row
}

// stats writes one TSV row per template of path.
func stats(ctx context.Context, path string, out io.Writer) (err error) {
	in, _, err := openInput(ctx, path, "")
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	w := tsv.NewRowWriter(out)
	for in.Scan() {
		row := templateStats(in.Template())
		if err := w.Write(&row); err != nil {
			return err
		}
	}
	if err := in.Err(); err != nil {
		return err
	}
	return w.Flush()
}
