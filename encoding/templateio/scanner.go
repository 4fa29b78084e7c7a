// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package templateio

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/jnomics/encoding/writable"
	"github.com/grailbio/jnomics/reads"
)

// Scanner reads the templates of a file written by Writer.  It decodes every
// template into the same reads.QueryTemplate, so the template returned by
// Template is valid only until the next call to Scan.
type Scanner struct {
	ctx  context.Context
	path string
	in   file.File // nil if the scanner does not own its input.
	rio  recordio.Scanner

	tmpl reads.QueryTemplate
	src  writable.SliceReader
	rd   writable.Reader

	// want is the template count in the trailer, or -1 if unknown.
	want int64
	n    int64
	err  errors.Once
}

// NewScanner opens the template file at path.
func NewScanner(ctx context.Context, path string) (*Scanner, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "templateio: open", path)
	}
	s := NewStreamScanner(in.Reader(ctx))
	s.ctx = ctx
	s.path = path
	s.in = in
	return s, nil
}

// NewStreamScanner creates a scanner that reads a template file from rs.
// Closing the scanner does not close rs.
func NewStreamScanner(rs io.ReadSeeker) *Scanner {
	s := &Scanner{ctx: context.Background(), want: -1}
	s.rio = recordio.NewScanner(rs, recordio.ScannerOpts{Unmarshal: s.unmarshal})
	for _, kv := range s.rio.Header() {
		if kv.Key == VersionHeader && kv.Value != Version {
			s.err.Set(errors.E(errors.Invalid, fmt.Sprintf("templateio: unsupported version %v", kv.Value)))
		}
	}
	if trailer := s.rio.Trailer(); len(trailer) > 0 {
		n, err := decodeTrailer(trailer)
		s.err.Set(err)
		s.want = n
	}
	return s
}

func (s *Scanner) unmarshal(in []byte) (interface{}, error) {
	s.src.Reset(in)
	s.rd.Reset(&s.src)
	if err := s.tmpl.Decode(&s.rd); err != nil {
		return nil, err
	}
	if s.src.Remaining() != 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("templateio: %d trailing bytes after template %s", s.src.Remaining(), s.tmpl.Name()))
	}
	return &s.tmpl, nil
}

// Scan reads the next template.  It returns false at the end of the file or
// on error.
func (s *Scanner) Scan() bool {
	if s.err.Err() != nil {
		return false
	}
	if !s.rio.Scan() {
		s.err.Set(s.rio.Err())
		if s.err.Err() == nil && s.want >= 0 && s.n != s.want {
			s.err.Set(errors.E(errors.Invalid, fmt.Sprintf("templateio: %s: read %d templates, trailer says %d", s.path, s.n, s.want)))
		}
		return false
	}
	s.n++
	if log.At(log.Debug) {
		log.Debug.Printf("%s: template %d: %s", s.path, s.n, s.tmpl.Name())
	}
	return true
}

// Template returns the template read by the last call to Scan.
func (s *Scanner) Template() *reads.QueryTemplate {
	return s.rio.Get().(*reads.QueryTemplate)
}

// Count returns the number of templates recorded in the trailer.  ok is false
// if the file has no trailer.
func (s *Scanner) Count() (n int64, ok bool) {
	return s.want, s.want >= 0
}

// Err returns the first error encountered by the scanner.
func (s *Scanner) Err() error {
	return s.err.Err()
}

// Close releases the resources of the scanner.  It returns Err, or the error
// from closing the file.
func (s *Scanner) Close() error {
	s.err.Set(s.rio.Finish())
	if s.in != nil {
		s.err.Set(s.in.Close(s.ctx))
	}
	return s.err.Err()
}
