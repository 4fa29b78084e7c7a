// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reads

// Flags is the SAM bitwise flag field of a read.
type Flags uint16

const (
	// MultipleFragments is set if the template has multiple segments.
	MultipleFragments Flags = 0x001
	// ProperlyPaired is set if each segment is properly aligned.
	ProperlyPaired Flags = 0x002
	// Unmapped is set if the segment is unmapped.
	Unmapped Flags = 0x004
	// NextUnmapped is set if the next segment is unmapped.
	NextUnmapped Flags = 0x008
	// ReverseComplemented is set if the bases are reverse complemented.
	ReverseComplemented Flags = 0x010
	// NextReverseComplemented is set if the bases of the next segment are
	// reverse complemented.
	NextReverseComplemented Flags = 0x020
	// FirstSegment is set on the first segment of the template.
	FirstSegment Flags = 0x040
	// LastSegment is set on the last segment of the template.
	LastSegment Flags = 0x080
	// SecondaryAlignment is set on secondary alignments.
	SecondaryAlignment Flags = 0x100
	// FailedQuality is set if the read fails platform or vendor quality
	// checks.
	FailedQuality Flags = 0x200
	// Duplicate is set on PCR or optical duplicates.
	Duplicate Flags = 0x400
)

// HasAll returns true if every bit of mask is set.  It is true for mask 0.
func (f Flags) HasAll(mask Flags) bool {
	return f&mask == mask
}

// HasAny returns true if at least one bit of mask is set.  It is true for mask
// 0.
func (f Flags) HasAny(mask Flags) bool {
	return mask == 0 || f&mask != 0
}

func (f Flags) IsTemplateMultiplySegmented() bool { return f.HasAll(MultipleFragments) }
func (f Flags) IsProperlyPaired() bool            { return f.HasAll(ProperlyPaired) }
func (f Flags) IsMapped() bool                    { return !f.HasAll(Unmapped) }
func (f Flags) IsNextMapped() bool                { return !f.HasAll(NextUnmapped) }
func (f Flags) IsReverseComplemented() bool       { return f.HasAll(ReverseComplemented) }
func (f Flags) IsNextReverseComplemented() bool   { return f.HasAll(NextReverseComplemented) }
func (f Flags) IsFirst() bool                     { return f.HasAll(FirstSegment) }
func (f Flags) IsLast() bool                      { return f.HasAll(LastSegment) }
func (f Flags) IsSecondaryAlignment() bool        { return f.HasAll(SecondaryAlignment) }
func (f Flags) IsFailedQuality() bool             { return f.HasAll(FailedQuality) }
func (f Flags) IsDuplicate() bool                 { return f.HasAll(Duplicate) }

const flagLetters = "pPuUrR12sfd"

// String returns the flags in the samtools style: one letter per bit in
// flagLetters, '-' for unset bits.
func (f Flags) String() string {
	b := []byte(flagLetters)
	for i := range b {
		if f&(1<<uint(i)) == 0 {
			b[i] = '-'
		}
	}
	return string(b)
}
