// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/jnomics/encoding/templateio"
	"github.com/grailbio/jnomics/reads"
	"github.com/grailbio/jnomics/sequence"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const (
	r1FASTQ = `@a 1:N:0:ATCACG
ACGTACGTAC
+
IIIIIIIII#
@b 1:N:0:ATCACG
GGGGCCCCAA
+
IIIIIIIIII
`
	r2FASTQ = `@a 2:N:0:ATCACG
TTTTGGGGCC
+
IIIIIIIIII
@b 2:N:0:ATCACG
ACGTTGCA
+
IIIII###
`
)

func writeFile(t *testing.T, path, data string) {
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))
}

func readFile(t *testing.T, path string) string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func newRead(name string, flags reads.Flags, ref string, first int32, bases string) *reads.SequencingRead {
	r := &reads.SequencingRead{Name: name, Flags: flags}
	r.SetRawBytes([]byte(bases))
	r.SetReferenceName(ref)
	r.Reposition(first)
	if flags.IsReverseComplemented() {
		r.SetOrientation(sequence.Minus)
	}
	r.Phred = bytes.Repeat([]byte{'I'}, len(bases))
	return r
}

// writeTemplates writes a template file at path.
func writeTemplates(ctx context.Context, t *testing.T, path string, tmpls ...*reads.QueryTemplate) {
	w, err := templateio.NewWriter(ctx, path, templateio.WriteOpts{})
	assert.NoError(t, err)
	for _, tmpl := range tmpls {
		w.Write(tmpl)
	}
	assert.NoError(t, w.Close())
}

func newTemplate(name string, rs ...*reads.SequencingRead) *reads.QueryTemplate {
	t := &reads.QueryTemplate{}
	t.SetName(name)
	t.SetReads(rs...)
	pos := t.CalculateTemplatePosition()
	t.SetPosition(pos.First())
	t.SetLength(pos.Length())
	return t
}

// alignedTemplates returns a properly paired template on chr1, a pair split
// across chromosomes, and an unmapped QC-failed read.
func alignedTemplates() []*reads.QueryTemplate {
	const pair = reads.MultipleFragments | reads.ProperlyPaired
	a1 := newRead("a", pair|reads.FirstSegment, "chr1", 100, "ACGTACGT")
	a1.NextReferenceName, a1.NextPosition = "chr1", 200
	a1.MappingQuality = 60
	a1.Cigar = "8M"
	a2 := newRead("a", pair|reads.LastSegment|reads.ReverseComplemented, "chr1", 200, "ACGTACGA")
	a2.NextReferenceName, a2.NextPosition = "chr1", 100
	a2.MappingQuality = 60
	a2.Cigar = "8M"
	b1 := newRead("b", reads.MultipleFragments|reads.FirstSegment, "chr1", 10, "GGCC")
	b1.NextReferenceName, b1.NextPosition = "chr2", 20
	b1.MappingQuality = 3
	b2 := newRead("b", reads.MultipleFragments|reads.LastSegment, "chr2", 20, "GGAA")
	b2.NextReferenceName, b2.NextPosition = "chr1", 10
	b2.MappingQuality = 30
	c := newRead("c", reads.Unmapped|reads.FailedQuality, "", 0, "NNNN")
	c.Properties.Put("RG", "x")
	return []*reads.QueryTemplate{newTemplate("a", a1, a2), newTemplate("b", b1, b2), newTemplate("c", c)}
}

func TestGuessFileType(t *testing.T) {
	for path, want := range map[string]fileType{
		"x.rio":        rioType,
		"/a/b.sam":     samType,
		"b.bam":        bamType,
		"r1.fastq.gz":  fastqType,
		"r1.fq":        fastqType,
		"r2.fq.sz":     fastqType,
		"noextension":  unknownType,
		"s3://b/x.txt": unknownType,
	} {
		expect.EQ(t, guessFileType(path), want, "path %s", path)
	}
}

func TestConvertFASTQ(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	var (
		in1   = filepath.Join(dir, "r1.fastq")
		in2   = filepath.Join(dir, "r2.fastq")
		rio   = filepath.Join(dir, "t.rio")
		sam   = filepath.Join(dir, "t.sam")
		bam   = filepath.Join(dir, "t.bam")
		out1  = filepath.Join(dir, "o1.fastq.gz")
		out2  = filepath.Join(dir, "o2.fq.sz")
		back1 = filepath.Join(dir, "b1.fastq")
		back2 = filepath.Join(dir, "b2.fastq")
	)
	writeFile(t, in1, r1FASTQ)
	writeFile(t, in2, r2FASTQ)

	assert.NoError(t, convert(ctx, in1, rio, convertOpts{inR2Path: in2}))
	assert.NoError(t, convert(ctx, rio, sam, convertOpts{}))
	assert.NoError(t, convert(ctx, sam, bam, convertOpts{}))
	assert.NoError(t, convert(ctx, bam, out1, convertOpts{outR2Path: out2}))
	assert.NoError(t, convert(ctx, out1, back1, convertOpts{format: "fastq", inR2Path: out2, outR2Path: back2}))
	expect.EQ(t, readFile(t, back1), r1FASTQ)
	expect.EQ(t, readFile(t, back2), r2FASTQ)

	s, err := templateio.NewScanner(ctx, rio)
	assert.NoError(t, err)
	var names []string
	for s.Scan() {
		tmpl := s.Template()
		expect.EQ(t, tmpl.Len(), 2)
		names = append(names, tmpl.Name())
	}
	assert.NoError(t, s.Err())
	assert.NoError(t, s.Close())
	expect.EQ(t, names, []string{"a", "b"})

	var sums []string
	for _, path := range []string{rio, sam, bam} {
		var out bytes.Buffer
		assert.NoError(t, checksum(ctx, path, checksumOpts{all: true}, &out))
		sums = append(sums, out.String())
	}
	expect.EQ(t, sums[1], sums[0])
	expect.EQ(t, sums[2], sums[0])

	err = convert(ctx, in1, filepath.Join(dir, "x.sam"), convertOpts{outR2Path: out2})
	expect.NotNil(t, err)
	err = convert(ctx, in1, filepath.Join(dir, "x.txt"), convertOpts{})
	expect.NotNil(t, err)
}

func TestConvertAligned(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	var (
		rio      = filepath.Join(dir, "t.rio")
		bam      = filepath.Join(dir, "t.bam")
		back     = filepath.Join(dir, "back.rio")
		filtered = filepath.Join(dir, "filtered.rio")
	)
	want := alignedTemplates()
	writeTemplates(ctx, t, rio, want...)
	assert.NoError(t, convert(ctx, rio, bam, convertOpts{}))
	assert.NoError(t, convert(ctx, bam, back, convertOpts{uncompressed: true}))

	s, err := templateio.NewScanner(ctx, back)
	assert.NoError(t, err)
	var n int
	for s.Scan() {
		got := s.Template()
		expect.True(t, got.Equal(want[n]), "got %v, want %v", got, want[n])
		n++
	}
	assert.NoError(t, s.Err())
	assert.NoError(t, s.Close())
	expect.EQ(t, n, len(want))

	assert.NoError(t, convert(ctx, bam, filtered, convertOpts{filter: "mapping_quality >= 30"}))
	s, err = templateio.NewScanner(ctx, filtered)
	assert.NoError(t, err)
	var got []string
	for s.Scan() {
		for _, r := range s.Template().Reads() {
			got = append(got, fmt.Sprintf("%s/%d", r.Name, r.MappingQuality))
		}
	}
	assert.NoError(t, s.Err())
	assert.NoError(t, s.Close())
	expect.EQ(t, got, []string{"a/60", "a/60", "b/30"})

	err = convert(ctx, bam, filtered, convertOpts{filter: "mapping_quality"})
	expect.NotNil(t, err)
}

func TestFlagstat(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	path := filepath.Join(dir, "t.rio")
	writeTemplates(ctx, t, path, alignedTemplates()...)
	var out bytes.Buffer
	assert.NoError(t, flagstat(ctx, path, &out))
	expect.EQ(t, out.String(), `4 + 1 in total (QC-passed reads + QC-failed reads)
0 + 0 secondary
0 + 0 supplementary
0 + 0 duplicates
4 + 0 mapped (100.00%:0.00%)
4 + 0 paired in sequencing
2 + 0 read1
2 + 0 read2
2 + 0 properly paired (50.00%:N/A)
4 + 0 with itself and mate mapped
0 + 0 singletons (0.00%:0.00%)
2 + 0 with mate mapped to a different chr
1 + 0 with mate mapped to a different chr (mapQ>=5)
`)
}

func TestChecksum(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	tmpls := alignedTemplates()
	path := filepath.Join(dir, "t.rio")
	writeTemplates(ctx, t, path, tmpls...)
	reversed := filepath.Join(dir, "reversed.rio")
	writeTemplates(ctx, t, reversed, tmpls[2], tmpls[1], tmpls[0])

	for _, hash := range []string{"seahash", "farm", "highway"} {
		opts := checksumOpts{hash: hash, all: true}
		c0, err := checksumFile(ctx, path, opts)
		assert.NoError(t, err)
		c1, err := checksumFile(ctx, reversed, opts)
		assert.NoError(t, err)
		expect.EQ(t, c0, c1, "hash %s", hash)
		expect.EQ(t, c0.Templates, int64(3))
		assert.EQ(t, len(c0.Refs), 2)
		expect.EQ(t, c0.Refs[0].Name, "chr1")
		expect.EQ(t, c0.Refs[0].NReads, int64(3))
		expect.EQ(t, c0.Refs[0].SumPos, uint64(310))
		expect.EQ(t, c0.Unmapped.NReads, int64(1))
		expect.True(t, c0.Unmapped.SumProps != 0)
	}

	c0, err := checksumFile(ctx, path, checksumOpts{})
	assert.NoError(t, err)
	expect.EQ(t, c0.Refs[0].SumSeq, uint64(0))
	_, err = checksumFile(ctx, path, checksumOpts{hash: "md5"})
	expect.NotNil(t, err)
}

func TestStats(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	path := filepath.Join(dir, "t.rio")
	writeTemplates(ctx, t, path, alignedTemplates()...)
	var out bytes.Buffer
	assert.NoError(t, stats(ctx, path, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.EQ(t, len(lines), 4)
	expect.EQ(t, lines[0], "NAME\tREADS\tPOS\tLEN\tGC\tMATE_DIST")
	expect.EQ(t, lines[1], "a\t2\t100\t108\t0.5000\t1")
	expect.EQ(t, lines[2], "b\t2\t10\t14\t0.7500\t-1")
	expect.EQ(t, lines[3], "c\t1\t0\t0\t0.5000\t-1")
}

func TestTrim(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	in := filepath.Join(dir, "in.fastq")
	out := filepath.Join(dir, "out.fastq")
	writeFile(t, in, r2FASTQ)
	assert.NoError(t, trim(ctx, in, out, trimOpts{threshold: 20, offset: 33}))
	expect.EQ(t, readFile(t, out), `@a 2:N:0:ATCACG
TTTTGGGGCC
+
IIIIIIIIII
@b 2:N:0:ATCACG
ACGTT
+
IIIII
`)
}

func TestTrimPairs(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	var (
		in1  = filepath.Join(dir, "r1.fastq")
		in2  = filepath.Join(dir, "r2.fastq")
		out1 = filepath.Join(dir, "o1.fastq")
		out2 = filepath.Join(dir, "o2.fastq")
	)
	writeFile(t, in1, r1FASTQ)
	writeFile(t, in2, r2FASTQ)
	opts := trimOpts{
		convertOpts: convertOpts{inR2Path: in2, outR2Path: out2},
		threshold:   20,
		offset:      33,
	}
	assert.NoError(t, trim(ctx, in1, out1, opts))
	expect.EQ(t, readFile(t, out1), `@a 1:N:0:ATCACG
ACGTACGTA
+
IIIIIIIII
@b 1:N:0:ATCACG
GGGGCCCCAA
+
IIIIIIIIII
`)
	expect.EQ(t, readFile(t, out2), `@a 2:N:0:ATCACG
TTTTGGGGCC
+
IIIIIIIIII
@b 2:N:0:ATCACG
ACGTT
+
IIIII
`)

	opts.filter = `rec_name == "b"`
	assert.NoError(t, trim(ctx, in1, out1, opts))
	expect.EQ(t, readFile(t, out1), `@b 1:N:0:ATCACG
GGGGCCCCAA
+
IIIIIIIIII
`)
	expect.EQ(t, readFile(t, out2), `@b 2:N:0:ATCACG
ACGTT
+
IIIII
`)

	opts.filter = "bogus("
	expect.NotNil(t, trim(ctx, in1, out1, opts))
}

func TestClosersReportFirstError(t *testing.T) {
	var order []int
	errA, errB := errors.New("a"), errors.New("b")
	c := closers{
		func() error { order = append(order, 0); return errA },
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return errB },
	}
	expect.EQ(t, c.close(), errB)
	expect.EQ(t, order, []int{2, 1, 0})
}

func TestCreateOutputUnknownFormat(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	_, err := createOutput(vcontext.Background(), filepath.Join(dir, "x.txt"), outputOpts{})
	expect.True(t, errors.Is(errors.NotSupported, err))
}
