// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/jnomics/reads"
)

type trimOpts struct {
	convertOpts
	// threshold is the lowest quality kept at the end of a read.
	threshold int
	// offset is subtracted from the ASCII quality to get the phred score.
	offset int
}

// trim quality-trims the 3' end of every read of srcPath and writes the
// result to destPath.  Paired FASTQ input and output, filters and the output
// format are handled as in convert.
func trim(ctx context.Context, srcPath, destPath string, opts trimOpts) error {
	c, err := newTemplateCopier(opts.convertOpts)
	if err != nil {
		return err
	}
	var trimmed, bases int64
	c.transform = func(t *reads.QueryTemplate) error {
		for _, r := range t.Reads() {
			n, err := r.TrimByQuality(opts.threshold, opts.offset)
			if err != nil {
				return err
			}
			if n > 0 {
				trimmed++
				bases += int64(n)
			}
		}
		return nil
	}
	if err := transcode(ctx, srcPath, destPath, opts.convertOpts, c); err != nil {
		return err
	}
	log.Printf("%s: trimmed %d bases from %d reads", srcPath, bases, trimmed)
	return nil
}
