// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reads_test

import (
	"fmt"
	"math/rand"

	"github.com/grailbio/jnomics/reads"
	"github.com/grailbio/jnomics/sequence"
)

// newRead creates a mapped read with the given bases and phred+33 qualities.
func newRead(name string, flags reads.Flags, ref string, first int32, bases, phred string) *reads.SequencingRead {
	r := &reads.SequencingRead{Name: name, Flags: flags}
	r.SetRawBytes([]byte(bases))
	r.SetReferenceName(ref)
	r.Reposition(first)
	r.Phred = []byte(phred)
	return r
}

// randomRead creates a read with every field populated.
func randomRead(rnd *rand.Rand, name string) *reads.SequencingRead {
	n := rnd.Intn(150)
	bases := make([]byte, n)
	phred := make([]byte, n)
	for i := range bases {
		bases[i] = "ACGTN"[rnd.Intn(5)]
		phred[i] = byte(33 + rnd.Intn(42))
	}
	r := newRead(name, reads.Flags(rnd.Intn(0x800)), fmt.Sprintf("chr%d", 1+rnd.Intn(22)),
		int32(rnd.Intn(1<<28)), string(bases), string(phred))
	if rnd.Intn(2) == 0 {
		r.SetOrientation(sequence.Minus)
	}
	r.Cigar = fmt.Sprintf("%dM", n)
	r.MappingQuality = uint8(rnd.Intn(61))
	r.NextReferenceName = "="
	r.NextPosition = int32(rnd.Intn(1 << 28))
	for i := rnd.Intn(4); i > 0; i-- {
		key := fmt.Sprintf("X%c", 'A'+rnd.Intn(26))
		if rnd.Intn(2) == 0 {
			r.Properties.Put(key, fmt.Sprint(rnd.Int()))
		} else {
			r.Properties.PutBytes(key, []byte{byte(rnd.Intn(256)), 0})
		}
	}
	return r
}
