// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/jnomics/encoding/bam"
	"github.com/grailbio/jnomics/encoding/fastq"
	"github.com/grailbio/jnomics/encoding/templateio"
	"github.com/grailbio/jnomics/reads"
	"github.com/klauspost/compress/gzip"
)

type fileType int

const (
	unknownType fileType = iota
	rioType
	samType
	bamType
	fastqType
)

func (t fileType) String() string {
	switch t {
	case rioType:
		return "rio"
	case samType:
		return "sam"
	case bamType:
		return "bam"
	case fastqType:
		return "fastq"
	}
	return "unknown"
}

func parseFileType(name string) fileType {
	switch strings.ToLower(name) {
	case "rio":
		return rioType
	case "sam":
		return samType
	case "bam":
		return bamType
	case "fastq", "fq":
		return fastqType
	}
	return unknownType
}

// guessFileType returns the type implied by the extension of path.  A
// trailing ".gz" or ".sz" is ignored.
func guessFileType(path string) fileType {
	path = strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".sz")
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return unknownType
	}
	return parseFileType(path[i+1:])
}

// templateSource is a stream of query templates.
type templateSource interface {
	Scan() bool
	Template() *reads.QueryTemplate
	Err() error
	Close() error
}

// templateSink consumes query templates.
type templateSink interface {
	Write(t *reads.QueryTemplate) error
	Close() error
}

// closers closes a list of resources in reverse order.
type closers []func() error

func (c closers) close() error {
	var err errors.Once
	for i := len(c) - 1; i >= 0; i-- {
		err.Set(c[i]())
	}
	return err.Err()
}

type fastqSource struct {
	*fastq.TemplateScanner
	closers
}

func (s *fastqSource) Close() error { return s.close() }

type bamSource struct {
	*bam.TemplateReader
	closers
}

func (s *bamSource) Close() error {
	err := s.TemplateReader.Close()
	if e := s.close(); err == nil {
		err = e
	}
	return err
}

// openInput opens path as a template source.  r2Path names the R2 file of
// paired FASTQ input and must be empty for other types.  The returned header
// is non-nil for SAM and BAM input.
func openInput(ctx context.Context, path, r2Path string) (templateSource, *sam.Header, error) {
	typ := guessFileType(path)
	if r2Path != "" && typ != fastqType {
		return nil, nil, errors.E(errors.Invalid, "R2 input is only supported for FASTQ", path)
	}
	switch typ {
	case rioType:
		s, err := templateio.NewScanner(ctx, path)
		return s, nil, err
	case samType, bamType:
		in, err := file.Open(ctx, path)
		if err != nil {
			return nil, nil, errors.E(err, "open", path)
		}
		format := bam.SAM
		if typ == bamType {
			format = bam.BAM
		}
		r, err := bam.NewTemplateReader(in.Reader(ctx), format)
		if err != nil {
			_ = in.Close(ctx)
			return nil, nil, errors.E(err, path)
		}
		return &bamSource{r, closers{func() error { return in.Close(ctx) }}}, r.Header(), nil
	case fastqType:
		r1, close1, err := fastq.OpenFile(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		if r2Path == "" {
			return &fastqSource{fastq.NewTemplateScanner(r1, fastq.TemplateOpts{}), closers{close1}}, nil, nil
		}
		r2, close2, err := fastq.OpenFile(ctx, r2Path)
		if err != nil {
			_ = close1()
			return nil, nil, err
		}
		s := fastq.NewPairTemplateScanner(r1, r2, fastq.TemplateOpts{})
		return &fastqSource{s, closers{close1, close2}}, nil, nil
	}
	return nil, nil, errors.E(errors.NotSupported, "cannot determine the input format", path)
}

// scanHeader builds a SAM header from the references named in a template
// file.
func scanHeader(ctx context.Context, path string) (*sam.Header, error) {
	in, _, err := openInput(ctx, path, "")
	if err != nil {
		return nil, err
	}
	var b bam.HeaderBuilder
	for in.Scan() {
		b.Add(in.Template())
	}
	if err := in.Err(); err != nil {
		_ = in.Close()
		return nil, err
	}
	if err := in.Close(); err != nil {
		return nil, err
	}
	return b.Header()
}

type rioSink struct {
	*templateio.Writer
}

func (s rioSink) Write(t *reads.QueryTemplate) error {
	s.Writer.Write(t)
	return nil
}

type bamSink struct {
	*bam.TemplateWriter
	closers
}

func (s *bamSink) Close() error {
	err := s.TemplateWriter.Close()
	if e := s.close(); err == nil {
		err = e
	}
	return err
}

type fastqSink struct {
	r1, r2 *fastq.Writer
	closers
}

func (s *fastqSink) Write(t *reads.QueryTemplate) error {
	return fastq.WriteTemplate(t, s.r1, s.r2)
}

func (s *fastqSink) Close() error { return s.close() }

// createFile creates path for writing.  Paths ending in ".gz" are gzip
// compressed and paths ending in ".sz" are snappy compressed.
func createFile(ctx context.Context, path string) (io.Writer, closers, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "create", path)
	}
	c := closers{func() error { return out.Close(ctx) }}
	w := out.Writer(ctx)
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz := gzip.NewWriter(w)
		return gz, append(c, gz.Close), nil
	case strings.HasSuffix(path, ".sz"):
		sz := snappy.NewBufferedWriter(w)
		return sz, append(c, sz.Close), nil
	}
	return w, c, nil
}

type outputOpts struct {
	typ          fileType
	r2Path       string
	header       *sam.Header
	uncompressed bool
}

// createOutput creates a template sink of the given type at path.  SAM and
// BAM output requires a header.
func createOutput(ctx context.Context, path string, opts outputOpts) (templateSink, error) {
	if opts.r2Path != "" && opts.typ != fastqType {
		return nil, errors.E(errors.Invalid, "R2 output is only supported for FASTQ", path)
	}
	switch opts.typ {
	case rioType:
		w, err := templateio.NewWriter(ctx, path, templateio.WriteOpts{Uncompressed: opts.uncompressed})
		if err != nil {
			return nil, err
		}
		return rioSink{w}, nil
	case samType, bamType:
		if opts.header == nil {
			return nil, errors.E(errors.Invalid, "no SAM header for", path)
		}
		w, c, err := createFile(ctx, path)
		if err != nil {
			return nil, err
		}
		bopts := bam.WriterOpts{Format: bam.SAM}
		if opts.typ == bamType {
			bopts.Format = bam.BAM
		}
		tw, err := bam.NewTemplateWriter(w, opts.header, bopts)
		if err != nil {
			_ = c.close()
			return nil, err
		}
		return &bamSink{tw, c}, nil
	case fastqType:
		w1, c, err := createFile(ctx, path)
		if err != nil {
			return nil, err
		}
		s := &fastqSink{r1: fastq.NewWriter(w1), closers: c}
		if opts.r2Path != "" {
			w2, c2, err := createFile(ctx, opts.r2Path)
			if err != nil {
				_ = c.close()
				return nil, err
			}
			s.r2 = fastq.NewWriter(w2)
			s.closers = append(s.closers, c2...)
		}
		return s, nil
	}
	return nil, errors.E(errors.NotSupported, "cannot determine the output format of", path)
}
