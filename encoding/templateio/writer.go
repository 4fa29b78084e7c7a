// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package templateio reads and writes recordio files of query templates.
//
// Each recordio item is one template in the encoding of
// reads.QueryTemplate.Encode.  The file header carries the format version,
// and the trailer carries the number of templates in the file.
package templateio

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
	"github.com/grailbio/jnomics/encoding/writable"
	"github.com/grailbio/jnomics/reads"
	"v.io/x/lib/vlog"
)

const (
	// VersionHeader is the recordio header key that holds the format version.
	VersionHeader = "templateio.version"
	// Version is the format version written by this package.
	Version = "1"
)

func init() {
	recordiozstd.Init()
}

// WriteOpts controls the layout of a template file.
type WriteOpts struct {
	// Uncompressed disables zstd compression of recordio blocks.
	Uncompressed bool
}

// Writer appends templates to a recordio file.
type Writer struct {
	ctx  context.Context
	path string
	out  file.File // nil if the writer does not own its output.
	rio  recordio.Writer
	n    int64
}

// NewWriter creates a template file at path.  Close must be called to
// complete the file.
func NewWriter(ctx context.Context, path string, opts WriteOpts) (*Writer, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "templateio: create", path)
	}
	w := NewStreamWriter(out.Writer(ctx), opts)
	w.ctx = ctx
	w.path = path
	w.out = out
	return w, nil
}

// NewStreamWriter creates a writer that writes a template file to out.
// Closing the writer does not close out.
func NewStreamWriter(out io.Writer, opts WriteOpts) *Writer {
	wopts := recordio.WriterOpts{Marshal: marshalTemplate}
	if !opts.Uncompressed {
		wopts.Transformers = []string{recordiozstd.Name}
	}
	w := &Writer{ctx: context.Background(), rio: recordio.NewWriter(out, wopts)}
	w.rio.AddHeader(VersionHeader, Version)
	w.rio.AddHeader(recordio.KeyTrailer, true)
	return w
}

func marshalTemplate(scratch []byte, v interface{}) ([]byte, error) {
	buf := writable.Buffer(scratch[:0])
	if err := v.(*reads.QueryTemplate).Encode(writable.NewWriter(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write appends t to the file.  t is encoded before Write returns, so the
// caller may reuse it.  Errors are reported by Close.
func (w *Writer) Write(t *reads.QueryTemplate) {
	w.rio.Append(t)
	w.n++
}

// Count returns the number of templates written so far.
func (w *Writer) Count() int64 {
	return w.n
}

// Close writes the trailer, flushes the file and closes it if the writer owns
// it.
func (w *Writer) Close() error {
	w.rio.SetTrailer(encodeTrailer(w.n))
	var err errors.Once
	err.Set(w.rio.Finish())
	if w.out != nil {
		err.Set(w.out.Close(w.ctx))
	}
	if err.Err() != nil {
		return errors.E(err.Err(), "templateio: close", w.path)
	}
	vlog.VI(1).Infof("%s: wrote %d templates", w.path, w.n)
	return nil
}

func encodeTrailer(n int64) []byte {
	var buf writable.Buffer
	w := writable.NewWriter(&buf)
	w.WriteText(Version)
	w.WriteVLong(n)
	return buf
}

func decodeTrailer(data []byte) (n int64, err error) {
	var src writable.SliceReader
	src.Reset(data)
	r := writable.NewReader(&src)
	version := r.ReadText()
	n = r.ReadVLong()
	if r.Err() != nil {
		return 0, errors.E(r.Err(), "templateio: corrupt trailer")
	}
	if version != Version {
		return 0, errors.E(errors.Invalid, "templateio: trailer version", version)
	}
	return n, nil
}
