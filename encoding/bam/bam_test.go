// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bam_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/jnomics/encoding/bam"
	"github.com/grailbio/jnomics/reads"
	"github.com/grailbio/jnomics/sequence"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var (
	chr1, _   = sam.NewReference("chr1", "", "", 1000, nil, nil)
	chr2, _   = sam.NewReference("chr2", "", "", 2000, nil, nil)
	header, _ = sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
)

func newAux(name string, val interface{}) sam.Aux {
	aux, err := sam.NewAux(sam.NewTag(name), val)
	if err != nil {
		panic(err)
	}
	return aux
}

func newRead(name string, flags reads.Flags, ref string, first int32, bases, phred string) *reads.SequencingRead {
	r := &reads.SequencingRead{Name: name, Flags: flags}
	r.SetRawBytes([]byte(bases))
	r.SetReferenceName(ref)
	r.Reposition(first)
	if flags.IsReverseComplemented() {
		r.SetOrientation(sequence.Minus)
	}
	r.Phred = []byte(phred)
	return r
}

// pair creates a properly paired template spanning [100, 159] on chr1.
func pair(name string) *reads.QueryTemplate {
	var t reads.QueryTemplate
	t.SetName(name)
	r1 := newRead(name, reads.MultipleFragments|reads.ProperlyPaired|reads.FirstSegment|reads.NextReverseComplemented,
		"chr1", 100, "ACGTACGTAC", "ABCDEFGHIJ")
	r1.Cigar = "10M"
	r1.MappingQuality = 60
	r1.NextReferenceName = "chr1"
	r1.NextPosition = 150
	r1.Properties.Put("RG", "lane1")
	r2 := newRead(name, reads.MultipleFragments|reads.ProperlyPaired|reads.LastSegment|reads.ReverseComplemented,
		"chr1", 150, "TTGGCCAATT", "JIHGFEDCBA")
	r2.Cigar = "5M1I4M"
	r2.MappingQuality = 42
	r2.NextReferenceName = "chr1"
	r2.NextPosition = 100
	t.SetReads(r1, r2)
	pos := t.CalculateTemplatePosition()
	t.SetPosition(pos.First())
	t.SetLength(pos.Length())
	return &t
}

func TestToRead(t *testing.T) {
	cigar, err := sam.ParseCigar([]byte("2S3M"))
	assert.NoError(t, err)
	rec := &sam.Record{
		Name:    "r1",
		Ref:     chr2,
		Pos:     99,
		MapQ:    30,
		Cigar:   cigar,
		Flags:   sam.Paired | sam.Read1 | sam.Reverse,
		MateRef: chr1,
		MatePos: 9,
		Seq:     sam.NewSeq([]byte("ACGTN")),
		Qual:    []byte{0, 10, 20, 30, 40},
		AuxFields: []sam.Aux{
			newAux("NM", 5),
			newAux("XS", "foo"),
		},
	}
	var r reads.SequencingRead
	assert.NoError(t, bam.ToRead(&r, rec))
	expect.EQ(t, r.Name, "r1")
	expect.EQ(t, r.ReferenceName(), "chr2")
	expect.EQ(t, r.First(), int32(100))
	expect.EQ(t, r.Last(), int32(104))
	expect.EQ(t, r.MappingQuality, uint8(30))
	expect.EQ(t, r.Cigar, "2S3M")
	expect.EQ(t, r.Flags, reads.MultipleFragments|reads.FirstSegment|reads.ReverseComplemented)
	expect.EQ(t, r.Orientation(), sequence.Minus)
	expect.EQ(t, r.NextReferenceName, "chr1")
	expect.EQ(t, r.NextPosition, int32(10))
	expect.EQ(t, r.Sequence.String(), "ACGTN")
	expect.EQ(t, string(r.Phred), "!+5?I")
	nm, ok := r.Properties.Get("NM")
	expect.True(t, ok)
	expect.EQ(t, nm.Value, "5")
	xs, ok := r.Properties.Get("XS")
	expect.True(t, ok)
	expect.EQ(t, xs, reads.Property{Key: "XS", Type: reads.StringProperty, Value: "foo"})
}

func TestToReadUnmapped(t *testing.T) {
	rec := &sam.Record{
		Name:    "u",
		Pos:     -1,
		MatePos: -1,
		Flags:   sam.Unmapped,
		Seq:     sam.NewSeq([]byte("AC")),
		Qual:    []byte{0xff, 0xff},
	}
	var r reads.SequencingRead
	assert.NoError(t, bam.ToRead(&r, rec))
	expect.EQ(t, r.ReferenceName(), "")
	expect.EQ(t, r.First(), int32(0))
	expect.EQ(t, r.NextPosition, int32(0))
	expect.EQ(t, r.Cigar, "")
	expect.EQ(t, len(r.Phred), 0)
	expect.False(t, r.IsMapped())
}

func TestToRecord(t *testing.T) {
	refs := bam.References(header)
	r := pair("t").Reads()[1]
	rec, err := bam.ToRecord(r, refs)
	assert.NoError(t, err)
	expect.EQ(t, rec.Ref, chr1)
	expect.EQ(t, rec.Pos, 149)
	expect.EQ(t, rec.MatePos, 99)
	expect.EQ(t, rec.Cigar.String(), "5M1I4M")
	expect.EQ(t, rec.Qual[0], byte('J'-33))

	var back reads.SequencingRead
	assert.NoError(t, bam.ToRead(&back, rec))
	expect.True(t, back.Equal(r), "got %v, want %v", &back, r)

	unmapped := newRead("u", reads.Unmapped, "", 0, "ACGT", "")
	rec, err = bam.ToRecord(unmapped, refs)
	assert.NoError(t, err)
	expect.True(t, rec.Ref == nil)
	expect.EQ(t, rec.Pos, -1)
	expect.EQ(t, rec.Qual, []byte{0xff, 0xff, 0xff, 0xff})

	_, err = bam.ToRecord(newRead("x", 0, "chrX", 1, "A", "I"), refs)
	expect.NotNil(t, err)
	bad := newRead("x", 0, "chr1", 1, "A", "I")
	bad.Properties.Put("toolong", "v")
	_, err = bam.ToRecord(bad, refs)
	expect.NotNil(t, err)
}

func roundTrip(t *testing.T, format bam.Format, want []*reads.QueryTemplate) {
	var buf bytes.Buffer
	w, err := bam.NewTemplateWriter(&buf, header, bam.WriterOpts{Format: format, Parallelism: 1})
	assert.NoError(t, err)
	for _, tmpl := range want {
		assert.NoError(t, w.Write(tmpl))
	}
	assert.NoError(t, w.Close())

	r, err := bam.NewTemplateReader(&buf, format)
	assert.NoError(t, err)
	expect.EQ(t, len(r.Header().Refs()), 2)
	var n int
	for r.Scan() {
		assert.True(t, n < len(want), "format %v: too many templates", format)
		got := r.Template()
		expect.True(t, got.Equal(want[n]), "format %v: got %v, want %v", format, got, want[n])
		expect.EQ(t, got.Position(), want[n].Position())
		n++
	}
	assert.NoError(t, r.Err())
	assert.NoError(t, r.Close())
	expect.EQ(t, n, len(want))
}

func TestTemplateRoundTrip(t *testing.T) {
	var single reads.QueryTemplate
	single.SetName("s")
	single.Add(newRead("s", reads.Unmapped, "", 0, "GGCC", "IIII"))
	want := []*reads.QueryTemplate{pair("a"), &single, pair("b")}
	for _, format := range []bam.Format{bam.SAM, bam.BAM} {
		roundTrip(t, format, want)
	}
}

func TestTemplateLength(t *testing.T) {
	var buf bytes.Buffer
	w, err := bam.NewTemplateWriter(&buf, header, bam.WriterOpts{})
	assert.NoError(t, err)
	assert.NoError(t, w.Write(pair("a")))
	assert.NoError(t, w.Close())

	sr, err := sam.NewReader(&buf)
	assert.NoError(t, err)
	var tlens []int
	for {
		rec, err := sr.Read()
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
		tlens = append(tlens, rec.TempLen)
	}
	expect.EQ(t, tlens, []int{60, -60})
}

func TestReadSAMText(t *testing.T) {
	const text = "@SQ\tSN:chr1\tLN:1000\n" +
		"a\t99\tchr1\t10\t60\t4M\t=\t20\t14\tACGT\tIIII\tXS:Z:x\n" +
		"a\t147\tchr1\t20\t60\t4M\t=\t10\t-14\tTTTT\tIIII\n" +
		"b\t4\t*\t0\t0\t*\t*\t0\t0\tAC\t*\n"
	r, err := bam.NewTemplateReader(strings.NewReader(text), bam.SAM)
	assert.NoError(t, err)
	assert.True(t, r.Scan())
	a := r.Template()
	expect.EQ(t, a.Name(), "a")
	expect.EQ(t, a.Len(), 2)
	expect.EQ(t, a.Position(), int32(10))
	expect.EQ(t, a.Length(), int32(14))
	expect.True(t, a.First() != nil)
	expect.True(t, a.Last() != nil)
	assert.True(t, r.Scan())
	b := r.Template()
	expect.EQ(t, b.Name(), "b")
	expect.EQ(t, b.Len(), 1)
	expect.EQ(t, len(b.Reads()[0].Phred), 0)
	expect.False(t, r.Scan())
	expect.NoError(t, r.Err())
}

func TestHeaderBuilder(t *testing.T) {
	var b bam.HeaderBuilder
	b.Add(pair("a"))
	tmpl := pair("b")
	tmpl.Reads()[0].SetReferenceName("chr7")
	b.Add(tmpl)
	h, err := b.Header()
	assert.NoError(t, err)
	refs := h.Refs()
	assert.EQ(t, len(refs), 2)
	expect.EQ(t, refs[0].Name(), "chr1")
	expect.EQ(t, refs[0].Len(), 159)
	expect.EQ(t, refs[1].Name(), "chr7")
	expect.EQ(t, refs[1].Len(), 109)
}

func TestFormatFromPath(t *testing.T) {
	f, err := bam.FormatFromPath("x/y.bam")
	assert.NoError(t, err)
	expect.EQ(t, f, bam.BAM)
	f, err = bam.FormatFromPath("y.sam")
	assert.NoError(t, err)
	expect.EQ(t, f, bam.SAM)
	_, err = bam.FormatFromPath("y.cram")
	expect.NotNil(t, err)
}
