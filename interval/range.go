package interval

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupportedMutation is returned when the length or endpoints of a
// length-derived PositionRange are modified.
var ErrUnsupportedMutation = errors.New("the length of a derived position range may not be modified")

// DefaultFirstPosition is the first position of a newly created range.
const DefaultFirstPosition = 1

// PositionRange is a closed, 1-based interval [First, Last] of positions on a
// reference, with Last = First + Length - 1.  A range with Length 0 is empty
// but still has a defined First.
//
// A PositionRange is either free-standing, in which case all of its fields
// can be modified, or length-derived (see Derived), in which case its length
// is computed from an owner, e.g., the byte buffer of a sequence, and only
// First can be changed.
type PositionRange struct {
	first  int32
	length int32
	// lengthFn, if non-nil, supplies the length of a derived range.
	lengthFn func() int32
}

// ByEnds creates a free-standing range covering [first, last].
func ByEnds(first, last int32) PositionRange {
	return PositionRange{first: first, length: last - first + 1}
}

// ByLength creates a free-standing range of the given length starting at
// first.
func ByLength(first, length int32) PositionRange {
	return PositionRange{first: first, length: length}
}

// Derived creates a range starting at DefaultFirstPosition whose length is
// always lengthFn().
func Derived(lengthFn func() int32) PositionRange {
	return PositionRange{first: DefaultFirstPosition, lengthFn: lengthFn}
}

// IsDerived returns true if the length of r is computed from an owner.
func (r *PositionRange) IsDerived() bool {
	return r.lengthFn != nil
}

// First returns the left-most position.
func (r *PositionRange) First() int32 {
	return r.first
}

// Length returns the number of positions covered.  Length is negative only for
// ranges produced by Overlap on disjoint inputs.
func (r *PositionRange) Length() int32 {
	if r.lengthFn != nil {
		return r.lengthFn()
	}
	return r.length
}

// Last returns the right-most position, First+Length-1.
func (r *PositionRange) Last() int32 {
	return r.first + r.Length() - 1
}

// SetFirst moves the range so that it starts at first.  The length is
// unchanged.  It is allowed on derived ranges.
func (r *PositionRange) SetFirst(first int32) {
	r.first = first
}

// Shift moves the range n positions to the right (3'), or to the left if n is
// negative.
func (r *PositionRange) Shift(n int32) {
	r.first += n
}

// SetLength sets the length.  It fails on derived ranges.
func (r *PositionRange) SetLength(length int32) error {
	if r.lengthFn != nil {
		return ErrUnsupportedMutation
	}
	r.length = length
	return nil
}

// SetEndpoints sets the range to [first, last].  It fails on derived ranges.
func (r *PositionRange) SetEndpoints(first, last int32) error {
	if r.lengthFn != nil {
		return ErrUnsupportedMutation
	}
	r.first = first
	r.length = last - first + 1
	return nil
}

// Set copies the first position and the length of src into r.  It fails on
// derived ranges.
func (r *PositionRange) Set(src PositionRange) error {
	return r.SetEndpoints(src.First(), src.Last())
}

// Contains returns true iff [start, start+length-1] lies entirely inside r.
// An empty span (length 0) is contained if it starts in [First, Last+1].
func (r *PositionRange) Contains(start, length int32) bool {
	if length < 0 {
		return false
	}
	return start >= r.first && start+length-1 <= r.Last()
}

// Overlap rewrites other to describe its relationship with r:
//
// - if the two intersect, other becomes the intersection (Length > 0);
//
// - if they are adjacent, other.Length becomes 0;
//
// - otherwise other.Length becomes minus the number of positions strictly
//   between the two, e.g. [1,40] vs [42,200] yields -1.
//
// In the last two cases other.First is max(r.First, other.First).
func (r *PositionRange) Overlap(other *PositionRange) error {
	if other.lengthFn != nil {
		return ErrUnsupportedMutation
	}
	first := r.first
	if other.first > first {
		first = other.first
	}
	last := r.Last()
	if l := other.Last(); l < last {
		last = l
	}
	other.first = first
	other.length = last - first + 1
	return nil
}

// Equal returns true iff both ranges cover the same positions.
func (r *PositionRange) Equal(other *PositionRange) bool {
	return r.first == other.first && r.Length() == other.Length()
}

// String returns the range in the form "[first..last]".
func (r PositionRange) String() string {
	return fmt.Sprintf("[%d..%d]", r.first, r.Last())
}
