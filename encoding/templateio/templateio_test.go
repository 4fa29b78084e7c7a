// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package templateio_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/grailbio/jnomics/encoding/templateio"
	"github.com/grailbio/jnomics/reads"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func makeTemplates(n int) []*reads.QueryTemplate {
	var out []*reads.QueryTemplate
	for i := 0; i < n; i++ {
		t := &reads.QueryTemplate{}
		t.SetName(fmt.Sprintf("frag%03d", i))
		t.SetLength(int32(100 + i))
		t.SetPosition(int32(1000 * i))
		for j := 0; j < i%3; j++ {
			r := t.AddEmptyRead()
			r.Name = t.Name()
			r.Flags = reads.MultipleFragments
			if j == 0 {
				r.Flags |= reads.FirstSegment
			} else {
				r.Flags |= reads.LastSegment
			}
			r.SetReferenceName("chr1")
			r.SetRawBytes([]byte("ACGTACGTNN"))
			r.Reposition(int32(1000*i + 50*j))
			r.Phred = []byte("IIIIIIII##")
			r.Cigar = "10M"
			r.Properties.Put("RG", "lane1")
		}
		out = append(out, t)
	}
	return out
}

func TestFileRoundTrip(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	path := filepath.Join(tempDir, "templates.rio")

	want := makeTemplates(100)
	w, err := templateio.NewWriter(ctx, path, templateio.WriteOpts{})
	assert.NoError(t, err)
	for _, tmpl := range want {
		w.Write(tmpl)
	}
	expect.EQ(t, w.Count(), int64(100))
	assert.NoError(t, w.Close())

	s, err := templateio.NewScanner(ctx, path)
	assert.NoError(t, err)
	n, ok := s.Count()
	expect.True(t, ok)
	expect.EQ(t, n, int64(100))
	i := 0
	for s.Scan() {
		got := s.Template()
		expect.True(t, got.Equal(want[i]), "got %v\nwant %v", got, want[i])
		expect.EQ(t, got.Position(), want[i].Position())
		i++
	}
	expect.EQ(t, i, len(want))
	assert.NoError(t, s.Close())
}

func TestStreamUncompressed(t *testing.T) {
	var compressed, plain bytes.Buffer
	want := makeTemplates(30)
	for _, c := range []struct {
		buf  *bytes.Buffer
		opts templateio.WriteOpts
	}{{&compressed, templateio.WriteOpts{}}, {&plain, templateio.WriteOpts{Uncompressed: true}}} {
		w := templateio.NewStreamWriter(c.buf, c.opts)
		for _, tmpl := range want {
			w.Write(tmpl)
		}
		assert.NoError(t, w.Close())
	}
	expect.True(t, compressed.Len() < plain.Len(), "compressed %d plain %d", compressed.Len(), plain.Len())

	for _, buf := range []*bytes.Buffer{&compressed, &plain} {
		s := templateio.NewStreamScanner(bytes.NewReader(buf.Bytes()))
		i := 0
		for s.Scan() {
			expect.True(t, s.Template().Equal(want[i]))
			i++
		}
		expect.EQ(t, i, len(want))
		assert.NoError(t, s.Close())
	}
}

func TestEmptyFile(t *testing.T) {
	var buf bytes.Buffer
	w := templateio.NewStreamWriter(&buf, templateio.WriteOpts{})
	assert.NoError(t, w.Close())
	s := templateio.NewStreamScanner(bytes.NewReader(buf.Bytes()))
	expect.False(t, s.Scan())
	n, ok := s.Count()
	expect.True(t, ok)
	expect.EQ(t, n, int64(0))
	assert.NoError(t, s.Close())
}

func TestOpenMissingFile(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	_, err := templateio.NewScanner(context.Background(), filepath.Join(tempDir, "missing.rio"))
	expect.NotNil(t, err)
}
