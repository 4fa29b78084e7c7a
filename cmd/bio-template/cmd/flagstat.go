// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/jnomics/reads"
)

// supplementary is the SAM flag of supplementary alignments.  Reads carry it
// through conversion from SAM and BAM.
const supplementary reads.Flags = 0x800

type aggrFlagstat struct {
	total         int
	mapped        int
	duplicate     int
	secondary     int
	supplementary int
	paired        int
	goodPair      int
	single        int
	pairMap       int
	diffChr       int
	diffHigh      int
	r1, r2        int
}

func (stat *aggrFlagstat) record(r *reads.SequencingRead) {
	stat.total++
	if r.IsMapped() {
		stat.mapped++
	}
	if r.IsDuplicate() {
		stat.duplicate++
	}
	switch {
	case r.IsSecondaryAlignment():
		stat.secondary++
	case r.HasAll(supplementary):
		stat.supplementary++
	case r.IsTemplateMultiplySegmented():
		stat.paired++
		if r.IsProperlyPaired() && r.IsMapped() {
			stat.goodPair++
		}
		if r.IsFirst() {
			stat.r1++
		}
		if r.IsLast() {
			stat.r2++
		}
		if !r.IsNextMapped() && r.IsMapped() {
			stat.single++
		}
		if r.IsMapped() && r.IsNextMapped() {
			stat.pairMap++
			if r.ReferenceName() != r.NextReferenceName {
				stat.diffChr++
				if r.MappingQuality >= 5 {
					stat.diffHigh++
				}
			}
		}
	}
}

func percent(a int, b int) string {
	if b == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", float64(a)*100/float64(b))
}

// flagstat prints samtools-flagstat style counts of the reads in path.
func flagstat(ctx context.Context, path string, out io.Writer) (err error) {
	in, _, err := openInput(ctx, path, "")
	if err != nil {
		return err
	}
	var qc, failed aggrFlagstat
	for in.Scan() {
		for _, r := range in.Template().Reads() {
			stat := &qc
			if r.IsFailedQuality() {
				stat = &failed
			}
			stat.record(r)
		}
	}
	err = in.Err()
	if e := in.Close(); err == nil {
		err = e
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d + %d in total (QC-passed reads + QC-failed reads)\n", qc.total, failed.total)
	fmt.Fprintf(out, "%d + %d secondary\n", qc.secondary, failed.secondary)
	fmt.Fprintf(out, "%d + %d supplementary\n", qc.supplementary, failed.supplementary)
	fmt.Fprintf(out, "%d + %d duplicates\n", qc.duplicate, failed.duplicate)
	fmt.Fprintf(out, "%d + %d mapped (%s:%s)\n", qc.mapped, failed.mapped,
		percent(qc.mapped, qc.total), percent(failed.mapped, failed.total))
	fmt.Fprintf(out, "%d + %d paired in sequencing\n", qc.paired, failed.paired)
	fmt.Fprintf(out, "%d + %d read1\n", qc.r1, failed.r1)
	fmt.Fprintf(out, "%d + %d read2\n", qc.r2, failed.r2)
	fmt.Fprintf(out, "%d + %d properly paired (%s:%s)\n", qc.goodPair, failed.goodPair,
		percent(qc.goodPair, qc.paired), percent(failed.goodPair, failed.paired))
	fmt.Fprintf(out, "%d + %d with itself and mate mapped\n", qc.pairMap, failed.pairMap)
	fmt.Fprintf(out, "%d + %d singletons (%s:%s)\n", qc.single, failed.single,
		percent(qc.single, qc.total), percent(failed.single, failed.total))
	fmt.Fprintf(out, "%d + %d with mate mapped to a different chr\n", qc.diffChr, failed.diffChr)
	fmt.Fprintf(out, "%d + %d with mate mapped to a different chr (mapQ>=5)\n", qc.diffHigh, failed.diffHigh)
	return nil
}
