package fastq

import (
	"context"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// OpenFile opens a FASTQ file for reading.  Files whose name ends in ".gz"
// (gzip) or ".sz" (framed snappy) are decompressed.  The returned closer
// closes the file.
func OpenFile(ctx context.Context, path string) (io.Reader, func() error, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "open", path)
	}
	closer := func() error { return in.Close(ctx) }
	r := io.Reader(in.Reader(ctx))
	if strings.HasSuffix(path, ".sz") {
		r = snappy.NewReader(r)
	} else if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			_ = in.Close(ctx)
			return nil, nil, errors.E(err, "gzip", path)
		}
		r = gz
		closer = func() error {
			err := gz.Close()
			if e := in.Close(ctx); err == nil {
				err = e
			}
			return err
		}
	}
	return r, closer, nil
}
