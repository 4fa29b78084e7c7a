// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/jnomics/reads"
)

type convertOpts struct {
	// format is the output format.  If empty, it is guessed from the output
	// path.
	format string
	// inR2Path and outR2Path name the R2 files of paired FASTQ input and
	// output.
	inR2Path, outR2Path string
	// filter, if nonempty, is a filter expression that every written read
	// must match.
	filter string
	// uncompressed disables zstd compression of template files.
	uncompressed bool
}

// templateCopier copies templates from a source to a sink, optionally
// filtering and transforming them on the way.
type templateCopier struct {
	filter    *filterExpr
	transform func(*reads.QueryTemplate) error
	scratch   reads.QueryTemplate
	n, nout   int64
}

func (c *templateCopier) copy(out templateSink, in templateSource) error {
	for in.Scan() {
		c.n++
		t := in.Template()
		if c.filter != nil {
			if !filterTemplate(c.filter, &c.scratch, t) {
				continue
			}
			t = &c.scratch
		}
		if c.transform != nil {
			if err := c.transform(t); err != nil {
				return errors.E(err, "template", t.Name())
			}
		}
		if err := out.Write(t); err != nil {
			return err
		}
		c.nout++
	}
	return in.Err()
}

// transcode copies templates from srcPath to destPath.
func transcode(ctx context.Context, srcPath, destPath string, opts convertOpts, c *templateCopier) (err error) {
	typ := guessFileType(destPath)
	if opts.format != "" {
		if typ = parseFileType(opts.format); typ == unknownType {
			return errors.E(errors.Invalid, "unknown output format", opts.format)
		}
	}
	in, header, err := openInput(ctx, srcPath, opts.inR2Path)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if header == nil && (typ == samType || typ == bamType) {
		if header, err = scanHeader(ctx, srcPath); err != nil {
			return err
		}
	}
	out, err := createOutput(ctx, destPath, outputOpts{
		typ:          typ,
		r2Path:       opts.outR2Path,
		header:       header,
		uncompressed: opts.uncompressed,
	})
	if err != nil {
		return err
	}
	err = c.copy(out, in)
	if e := out.Close(); e != nil && err == nil {
		err = e
	}
	log.Printf("%s: wrote %d of %d templates to %s", srcPath, c.nout, c.n, destPath)
	return err
}

// newTemplateCopier creates a copier that applies opts.filter, if any.
func newTemplateCopier(opts convertOpts) (*templateCopier, error) {
	c := &templateCopier{}
	if opts.filter != "" {
		expr, err := parseFilterExpr(opts.filter)
		if err != nil {
			return nil, errors.E(err, "filter", opts.filter)
		}
		c.filter = expr
	}
	return c, nil
}

func convert(ctx context.Context, srcPath, destPath string, opts convertOpts) error {
	c, err := newTemplateCopier(opts)
	if err != nil {
		return err
	}
	return transcode(ctx, srcPath, destPath, opts, c)
}
