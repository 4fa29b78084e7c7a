// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bam

import (
	"io"
	"runtime"

	"github.com/grailbio/base/errors"
	biogobam "github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/jnomics/reads"
)

// WriterOpts configures a TemplateWriter.
type WriterOpts struct {
	// Format is the output format.
	Format Format
	// Parallelism is the number of BAM compression goroutines.  If zero,
	// runtime.NumCPU() is used.
	Parallelism int
}

type recordWriter interface {
	Write(*sam.Record) error
}

// TemplateWriter writes the reads of query templates as SAM or BAM records.
type TemplateWriter struct {
	out   recordWriter
	close func() error
	refs  map[string]*sam.Reference
}

// NewTemplateWriter creates a writer that emits h followed by records to w.
// Reads may only refer to references of h.
func NewTemplateWriter(w io.Writer, h *sam.Header, opts WriterOpts) (*TemplateWriter, error) {
	tw := &TemplateWriter{refs: References(h)}
	if opts.Format == BAM {
		par := opts.Parallelism
		if par <= 0 {
			par = runtime.NumCPU()
		}
		bw, err := biogobam.NewWriter(w, h, par)
		if err != nil {
			return nil, errors.E(err, "create BAM writer")
		}
		tw.out, tw.close = bw, bw.Close
		return tw, nil
	}
	sw, err := sam.NewWriter(w, h, sam.FlagDecimal)
	if err != nil {
		return nil, errors.E(err, "create SAM writer")
	}
	tw.out, tw.close = sw, func() error { return nil }
	return tw, nil
}

// Write writes every read of t.  The SAM template length of a mapped read is
// the template length, negated for reads that start after the template
// position.
func (w *TemplateWriter) Write(t *reads.QueryTemplate) error {
	for _, r := range t.Reads() {
		rec, err := ToRecord(r, w.refs)
		if err != nil {
			return err
		}
		if r.IsMapped() && r.First() > 0 {
			rec.TempLen = int(t.Length())
			if r.First() > t.Position() {
				rec.TempLen = -rec.TempLen
			}
		}
		err = w.out.Write(rec)
		sam.PutInFreePool(rec)
		if err != nil {
			return errors.E(err, "write", r.Name)
		}
	}
	return nil
}

// Close flushes the output.  It does not close the underlying stream.
func (w *TemplateWriter) Close() error {
	return w.close()
}
