// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reads

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/grailbio/base/simd"
	"github.com/grailbio/jnomics/sequence"
	"github.com/pkg/errors"
)

// SequencingRead is one sequenced segment of a template with its alignment.
// Positions are 1-based; an unmapped read is at position 0.
//
// The zero value is an empty, unattached read.
type SequencingRead struct {
	sequence.Sequence
	Flags

	Name              string
	Cigar             string
	MappingQuality    uint8
	NextReferenceName string
	NextPosition      int32
	// Phred holds one ASCII-encoded quality per base.
	Phred      []byte
	Properties Properties

	// template is the template that holds this read, or a detached snapshot
	// of one if detached is true.  It is never encoded as a pointer.
	template *QueryTemplate
	detached bool
}

var _ sequence.NucleotideSequence = (*SequencingRead)(nil)

// Template returns the template that holds r.  For a read decoded on its own
// it is a detached template that carries only the name, position and length
// of the original.  It is nil if r belongs to no template.
func (r *SequencingRead) Template() *QueryTemplate {
	return r.template
}

// ReverseComplement reverse-complements the bases, reverses the qualities and
// toggles the ReverseComplemented flag.  If the bases contain a byte that is
// not an IUPAC code, sequence.ErrIllegalCode is returned and r is unchanged.
func (r *SequencingRead) ReverseComplement() error {
	if err := r.Sequence.ReverseComplement(); err != nil {
		return errors.Wrapf(err, "read %s", r.Name)
	}
	simd.Reverse8Inplace(r.Phred)
	r.Flags ^= ReverseComplemented
	return nil
}

// TrimByQuality removes low-quality bases from the 3' end of the read.
// Quality is the Phred byte minus offset (typically 33).  If the last base
// already has quality >= threshold, the read is left alone.  Otherwise the
// read is truncated after the right-most base whose quality is >= threshold.
// If no base qualifies, the read is left alone.  It returns the number of
// bases removed.
func (r *SequencingRead) TrimByQuality(threshold, offset int) (int, error) {
	n := len(r.Phred)
	if n == 0 || int(r.Phred[n-1])-offset >= threshold {
		return 0, nil
	}
	for i := n - 2; i >= 0; i-- {
		if int(r.Phred[i])-offset < threshold {
			continue
		}
		first := r.First()
		if err := r.SubSequenceInto(&r.Sequence, first, first+int32(i)+1); err != nil {
			return 0, errors.Wrapf(err, "trim read %s", r.Name)
		}
		r.Phred = r.Phred[:i+1]
		return n - i - 1, nil
	}
	return 0, nil
}

// Set makes r a deep copy of src.  The template of r is not changed.
func (r *SequencingRead) Set(src *SequencingRead) {
	if r == src {
		return
	}
	r.Sequence.Set(&src.Sequence)
	r.Flags = src.Flags
	r.Name = src.Name
	r.Cigar = src.Cigar
	r.MappingQuality = src.MappingQuality
	r.NextReferenceName = src.NextReferenceName
	r.NextPosition = src.NextPosition
	r.Phred = append(r.Phred[:0], src.Phred...)
	r.Properties.Set(&src.Properties)
}

// Clear resets every field of r, keeping allocated storage.  A read held by
// a template stays in it; a detached template snapshot is dropped.
func (r *SequencingRead) Clear() {
	r.Sequence.Clear()
	r.Flags = 0
	r.Name = ""
	r.Cigar = ""
	r.MappingQuality = 0
	r.NextReferenceName = ""
	r.NextPosition = 0
	r.Phred = r.Phred[:0]
	r.Properties.Clear()
	if r.detached {
		r.template = nil
		r.detached = false
	}
}

// Equal implements sequence.NucleotideSequence.  When other is a
// *SequencingRead, every field except the template is compared; otherwise
// only the sequence is.
func (r *SequencingRead) Equal(other sequence.NucleotideSequence) bool {
	o, ok := other.(*SequencingRead)
	if !ok {
		return r.Sequence.Equal(other)
	}
	return r.equalRead(o)
}

func (r *SequencingRead) equalRead(other *SequencingRead) bool {
	return r.Sequence.Equal(&other.Sequence) &&
		r.ReferenceName() == other.ReferenceName() &&
		r.Flags == other.Flags &&
		r.Name == other.Name &&
		r.Cigar == other.Cigar &&
		r.MappingQuality == other.MappingQuality &&
		r.NextReferenceName == other.NextReferenceName &&
		r.NextPosition == other.NextPosition &&
		bytes.Equal(r.Phred, other.Phred) &&
		r.Properties.Equal(&other.Properties)
}

// Compare orders reads by name.
func (r *SequencingRead) Compare(other *SequencingRead) int {
	return strings.Compare(r.Name, other.Name)
}

// String renders the read as a SAM-like line.
func (r *SequencingRead) String() string {
	ref := r.ReferenceName()
	if ref == "" {
		ref = "*"
	}
	next := r.NextReferenceName
	switch {
	case next == "":
		next = "*"
	case next == ref:
		next = "="
	}
	cigar := r.Cigar
	if cigar == "" {
		cigar = "*"
	}
	return fmt.Sprintf("%s\t%d\t%s\t%d\t%d\t%s\t%s\t%d\t%s\t%s\t%s",
		r.Name, uint16(r.Flags), ref, r.First(), r.MappingQuality, cigar,
		next, r.NextPosition, r.Sequence.String(), r.Phred, r.Properties.String())
}
