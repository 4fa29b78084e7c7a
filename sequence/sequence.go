// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package sequence

import (
	"bytes"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/jnomics/biosimd"
	"github.com/grailbio/jnomics/interval"
	"github.com/pkg/errors"
)

var (
	// ErrIllegalCode is reported when a byte is not an IUPAC nucleotide code.
	ErrIllegalCode = errors.New("illegal nucleotide code")
	// ErrIndexOutOfRange is reported when a position lies outside a sequence
	// or a template.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// NucleotideSequence is a run of IUPAC-coded bases located on a reference.
type NucleotideSequence interface {
	// Bases returns a copy of the bases.
	Bases() []byte
	// RawBytes returns the underlying bases without copying.  The result must
	// not be modified, and is valid until the next mutation.
	RawBytes() []byte
	// Len returns the number of bases.
	Len() int
	// Interval returns the positions covered by the bases.  Its length is
	// derived from the bases and cannot be changed through it.
	Interval() *interval.PositionRange
	Orientation() Orientation
	ReferenceName() string
	// GCSum returns the weighted number of G/C bases.
	GCSum() float64
	// ATSum returns the weighted number of A/T bases.
	ATSum() float64
	// GCContent returns GCSum/(GCSum+ATSum), or 0 for an empty sequence.
	GCContent() float64
	// ReverseComplement reverse-complements the bases in place and flips
	// the orientation.
	ReverseComplement() error
	// SubSequence returns a new sequence holding the positions [start,end).
	SubSequence(start, end int32) (NucleotideSequence, error)
	// Hash returns a 64-bit hash of the bases.
	Hash() uint64
	// Equal reports whether other covers the same interval on the same strand
	// with the same bases.
	Equal(other NucleotideSequence) bool
	String() string
}

// Sequence is the standard NucleotideSequence implementation.  The zero value
// is an empty sequence at position 0 on the Plus strand.
type Sequence struct {
	referenceName string
	bases         []byte
	orientation   Orientation

	// rng is bound to owner's length.  A Sequence that was copied by value is
	// rebound on the next call to Interval.
	rng   interval.PositionRange
	owner *Sequence

	statsValid   bool
	gcSum, atSum float64
	hashValid    bool
	hash         uint64
}

var _ NucleotideSequence = (*Sequence)(nil)

// New creates a sequence with the given reference name, first position and
// bases.  The bases are copied and not validated.
func New(referenceName string, first int32, bases []byte) *Sequence {
	s := &Sequence{referenceName: referenceName}
	s.SetRawBytes(bases)
	s.Reposition(first)
	return s
}

func (s *Sequence) length32() int32 {
	return int32(len(s.bases))
}

// Bases implements NucleotideSequence.
func (s *Sequence) Bases() []byte {
	b := make([]byte, len(s.bases))
	copy(b, s.bases)
	return b
}

// RawBytes implements NucleotideSequence.
func (s *Sequence) RawBytes() []byte {
	return s.bases
}

// Len implements NucleotideSequence.
func (s *Sequence) Len() int {
	return len(s.bases)
}

// Interval implements NucleotideSequence.
func (s *Sequence) Interval() *interval.PositionRange {
	if s.owner != s {
		first := s.rng.First()
		s.rng = interval.Derived(s.length32)
		s.rng.SetFirst(first)
		s.owner = s
	}
	return &s.rng
}

// First returns the position of the left-most base.
func (s *Sequence) First() int32 {
	return s.rng.First()
}

// Last returns the position of the right-most base.
func (s *Sequence) Last() int32 {
	return s.rng.First() + s.length32() - 1
}

// Orientation implements NucleotideSequence.
func (s *Sequence) Orientation() Orientation {
	return s.orientation
}

// SetOrientation sets the strand without touching the bases.
func (s *Sequence) SetOrientation(o Orientation) {
	s.orientation = o
}

// ReferenceName implements NucleotideSequence.
func (s *Sequence) ReferenceName() string {
	return s.referenceName
}

// SetReferenceName sets the name of the reference, e.g. "chr21".
func (s *Sequence) SetReferenceName(name string) {
	s.referenceName = name
}

// Reposition moves the sequence so that its left-most base is at first.
func (s *Sequence) Reposition(first int32) {
	s.rng.SetFirst(first)
}

// ShiftLeft moves the sequence n positions toward the 5' end.
func (s *Sequence) ShiftLeft(n int32) {
	s.rng.Shift(-n)
}

// ShiftRight moves the sequence n positions toward the 3' end.
func (s *Sequence) ShiftRight(n int32) {
	s.rng.Shift(n)
}

func (s *Sequence) invalidate() {
	s.statsValid = false
	s.hashValid = false
}

// SetSequence replaces the bases with a copy of bases.  If validate is true
// and bases contains a byte that is not an IUPAC code, ErrIllegalCode is
// returned and s is unchanged.
func (s *Sequence) SetSequence(bases []byte, validate bool) error {
	if validate {
		if i := biosimd.FirstInvalidIUPAC(bases); i >= 0 {
			return errors.Wrapf(ErrIllegalCode, "byte %q at offset %d", bases[i], i)
		}
	}
	s.SetRawBytes(bases)
	return nil
}

// SetRawBytes replaces the bases with a copy of bases without validation.
// bases may alias the current contents of s.
func (s *Sequence) SetRawBytes(bases []byte) {
	s.bases = append(s.bases[:0], bases...)
	s.invalidate()
}

// Set copies the reference name, position, orientation and bases of src.
func (s *Sequence) Set(src NucleotideSequence) {
	if src == NucleotideSequence(s) {
		return
	}
	s.referenceName = src.ReferenceName()
	s.orientation = src.Orientation()
	s.SetRawBytes(src.RawBytes())
	s.rng.SetFirst(src.Interval().First())
}

// Clear empties the sequence and resets it to the zero state, keeping the
// allocated buffer.
func (s *Sequence) Clear() {
	s.referenceName = ""
	s.bases = s.bases[:0]
	s.orientation = Plus
	s.rng.SetFirst(0)
	s.invalidate()
}

func (s *Sequence) computeStats() {
	if s.statsValid {
		return
	}
	s.gcSum, s.atSum, _ = biosimd.GCATSums(s.bases)
	s.statsValid = true
}

// GCSum implements NucleotideSequence.  Bytes that are not IUPAC codes are
// ignored.
func (s *Sequence) GCSum() float64 {
	s.computeStats()
	return s.gcSum
}

// ATSum implements NucleotideSequence.  Bytes that are not IUPAC codes are
// ignored.
func (s *Sequence) ATSum() float64 {
	s.computeStats()
	return s.atSum
}

// GCContent implements NucleotideSequence.  Bytes that are not IUPAC codes are
// ignored.
func (s *Sequence) GCContent() float64 {
	s.computeStats()
	if total := s.gcSum + s.atSum; total > 0 {
		return s.gcSum / total
	}
	return 0
}

// ValidatedGCContent is GCContent, but returns ErrIllegalCode if the sequence
// contains a byte that is not an IUPAC code.
func (s *Sequence) ValidatedGCContent() (float64, error) {
	if i := biosimd.FirstInvalidIUPAC(s.bases); i >= 0 {
		return 0, errors.Wrapf(ErrIllegalCode, "byte %q at offset %d", s.bases[i], i)
	}
	return s.GCContent(), nil
}

// ReverseComplement implements NucleotideSequence.  If the sequence contains a
// byte that is not an IUPAC code, ErrIllegalCode is returned and s is
// unchanged.
func (s *Sequence) ReverseComplement() error {
	if i := biosimd.ReverseCompIUPACInplace(s.bases); i >= 0 {
		return errors.Wrapf(ErrIllegalCode, "byte %q at offset %d", s.bases[i], i)
	}
	s.orientation = s.orientation.Invert()
	s.invalidate()
	return nil
}

// SubSequence implements NucleotideSequence.  The result is a *Sequence.
func (s *Sequence) SubSequence(start, end int32) (NucleotideSequence, error) {
	sub := &Sequence{}
	if err := s.SubSequenceInto(sub, start, end); err != nil {
		return nil, err
	}
	return sub, nil
}

// SubSequenceInto stores the positions [start,end) of s into dst, which may
// be s itself.  The reference name and orientation are copied.
func (s *Sequence) SubSequenceInto(dst *Sequence, start, end int32) error {
	length := end - start
	if !s.Interval().Contains(start, length) {
		return errors.Wrapf(ErrIndexOutOfRange, "[%d..%d) extends outside %v", start, end, s.rng)
	}
	off := start - s.rng.First()
	dst.referenceName = s.referenceName
	dst.orientation = s.orientation
	dst.SetRawBytes(s.bases[off : off+length])
	dst.rng.SetFirst(start)
	return nil
}

// Hash implements NucleotideSequence.  It is the farmhash of the bases.
func (s *Sequence) Hash() uint64 {
	if !s.hashValid {
		s.hash = farm.Hash64(s.bases)
		s.hashValid = true
	}
	return s.hash
}

// Equal returns true iff both sequences cover the same interval on the same
// strand with the same bases.  The reference name is not compared.
func (s *Sequence) Equal(other NucleotideSequence) bool {
	o := other.Interval()
	return s.rng.First() == o.First() &&
		s.length32() == o.Length() &&
		s.orientation == other.Orientation() &&
		bytes.Equal(s.bases, other.RawBytes())
}

// String returns the bases.
func (s *Sequence) String() string {
	return string(s.bases)
}
