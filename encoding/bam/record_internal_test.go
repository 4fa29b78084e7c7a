// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bam

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/jnomics/reads"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestToRecordReturnsRecordOnError(t *testing.T) {
	var got, put int
	defer func(get func() *sam.Record, p func(*sam.Record)) {
		getRecord, putRecord = get, p
	}(getRecord, putRecord)
	getRecord = func() *sam.Record {
		got++
		return &sam.Record{}
	}
	putRecord = func(*sam.Record) { put++ }

	chr1, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	assert.NoError(t, err)
	refs := map[string]*sam.Reference{"chr1": chr1}
	newRead := func() *reads.SequencingRead {
		r := &reads.SequencingRead{Name: "r"}
		r.SetRawBytes([]byte("ACGT"))
		r.SetReferenceName("chr1")
		r.Reposition(10)
		r.Phred = []byte("IIII")
		return r
	}

	for _, mutate := range []func(r *reads.SequencingRead){
		func(r *reads.SequencingRead) { r.SetReferenceName("chr9") },
		func(r *reads.SequencingRead) { r.NextReferenceName = "chr9" },
		func(r *reads.SequencingRead) { r.Cigar = "4Q" },
		func(r *reads.SequencingRead) { r.Phred = []byte("II") },
		func(r *reads.SequencingRead) { r.Properties.Put("XYZ", "v") },
	} {
		r := newRead()
		mutate(r)
		rec, err := ToRecord(r, refs)
		expect.NotNil(t, err)
		expect.True(t, rec == nil)
	}
	expect.EQ(t, got, 5)
	expect.EQ(t, put, 5)

	rec, err := ToRecord(newRead(), refs)
	assert.NoError(t, err)
	expect.EQ(t, rec.Pos, 9)
	expect.EQ(t, got, 6)
	expect.EQ(t, put, 5)
}
