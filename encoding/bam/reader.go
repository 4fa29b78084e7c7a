// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bam

import (
	"io"
	"path/filepath"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	biogobam "github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/jnomics/reads"
)

// Format is an alignment file format.
type Format int

const (
	// SAM is the text format.
	SAM Format = iota
	// BAM is the BGZF-compressed binary format.
	BAM
)

func (f Format) String() string {
	if f == BAM {
		return "bam"
	}
	return "sam"
}

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	switch filepath.Ext(path) {
	case ".sam":
		return SAM, nil
	case ".bam":
		return BAM, nil
	}
	return SAM, errors.E(errors.NotSupported, "unknown alignment format", path)
}

type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

// TemplateReader reads query templates from a SAM or BAM stream.  Adjacent
// records with the same name form one template, so the input must be grouped
// by name, as aligners emit it.
type TemplateReader struct {
	in      recordReader
	close   func() error
	recycle bool // BAM records come from the sam free pool
	pending *sam.Record
	tmpl    reads.QueryTemplate
	records int64
	err     error
}

// NewTemplateReader creates a reader of r in the given format.
func NewTemplateReader(r io.Reader, format Format) (*TemplateReader, error) {
	if format == BAM {
		br, err := biogobam.NewReader(r, runtime.NumCPU())
		if err != nil {
			return nil, errors.E(err, "open BAM")
		}
		return &TemplateReader{in: br, close: br.Close, recycle: true}, nil
	}
	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, errors.E(err, "open SAM")
	}
	return &TemplateReader{in: sr, close: func() error { return nil }}, nil
}

// Header returns the header of the input.
func (r *TemplateReader) Header() *sam.Header {
	return r.in.Header()
}

func (r *TemplateReader) next() bool {
	rec, err := r.in.Read()
	if err != nil {
		if err != io.EOF {
			r.err = errors.E(err, "read record", r.records)
		}
		return false
	}
	r.records++
	r.pending = rec
	return true
}

// Scan reads the next template.  It returns false at the end of the input or
// on error; Err distinguishes the two.  The template position and length are
// computed from its reads.
func (r *TemplateReader) Scan() bool {
	if r.err != nil {
		return false
	}
	if r.pending == nil && !r.next() {
		return false
	}
	r.tmpl.Clear()
	name := r.pending.Name
	r.tmpl.SetName(name)
	for r.pending != nil && r.pending.Name == name {
		err := ToRead(r.tmpl.AddEmptyRead(), r.pending)
		if r.recycle {
			sam.PutInFreePool(r.pending)
		}
		r.pending = nil
		if err != nil {
			r.err = err
			return false
		}
		if !r.next() && r.err != nil {
			return false
		}
	}
	pos := r.tmpl.CalculateTemplatePosition()
	r.tmpl.SetPosition(pos.First())
	r.tmpl.SetLength(pos.Length())
	return true
}

// Template returns the template read by the last call to Scan.  It is valid
// until the next call to Scan.
func (r *TemplateReader) Template() *reads.QueryTemplate {
	return &r.tmpl
}

// Err returns the error that stopped scanning, if any.
func (r *TemplateReader) Err() error {
	return r.err
}

// Close releases the reader.  It does not close the underlying stream.
func (r *TemplateReader) Close() error {
	log.Debug.Printf("bam: read %d records", r.records)
	return r.close()
}
