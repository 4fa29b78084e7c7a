// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reads

import (
	"fmt"
	"strings"

	"github.com/grailbio/jnomics/interval"
	"github.com/grailbio/jnomics/sequence"
	"github.com/pkg/errors"
)

// QueryTemplate is an ordered list of reads sequenced from one fragment.
// Duplicate reads are permitted.
//
// Reads are always copied in; a template never stores a caller's read.
// Reads returned by Get, Reads, Add and friends remain owned by the template.
// The zero value is an empty template ready to use.
type QueryTemplate struct {
	name     string
	length   int32
	position int32

	// reads[:size] are the live reads.  len(reads) is the capacity; slots
	// past size are nil.
	reads []*SequencingRead
	size  int
	pool  readPool
}

// Name returns the template name.
func (t *QueryTemplate) Name() string { return t.name }

// SetName sets the template name.
func (t *QueryTemplate) SetName(name string) { t.name = name }

// Length returns the template length, i.e. the SAM TLEN.
func (t *QueryTemplate) Length() int32 { return t.length }

// SetLength sets the template length.
func (t *QueryTemplate) SetLength(length int32) { t.length = length }

// Position returns the template position.
func (t *QueryTemplate) Position() int32 { return t.position }

// SetPosition sets the template position.
func (t *QueryTemplate) SetPosition(position int32) { t.position = position }

// Len returns the number of reads.
func (t *QueryTemplate) Len() int { return t.size }

// Cap returns the number of reads t can hold without growing.
func (t *QueryTemplate) Cap() int { return len(t.reads) }

// Reads returns the reads.  The slice is valid until the next mutation of t.
func (t *QueryTemplate) Reads() []*SequencingRead { return t.reads[:t.size] }

// PoolAllocations returns the number of reads t has ever allocated.
func (t *QueryTemplate) PoolAllocations() int { return t.pool.allocs }

func (t *QueryTemplate) ensureCapacity(minCap int) {
	if minCap <= len(t.reads) {
		return
	}
	newCap := 1 + minCap + minCap>>2
	reads := make([]*SequencingRead, newCap)
	copy(reads, t.reads[:t.size])
	t.reads = reads
}

func (t *QueryTemplate) checkIndex(index, limit int) error {
	if index < 0 || index >= limit {
		return errors.Wrapf(sequence.ErrIndexOutOfRange, "template %s: index %d, size %d", t.name, index, t.size)
	}
	return nil
}

// copyIn stores a copy of read in a pooled read attached to t.
func (t *QueryTemplate) copyIn(read *SequencingRead) *SequencingRead {
	dst := t.pool.get()
	dst.Set(read)
	dst.template = t
	dst.detached = false
	return dst
}

// Get returns the index'th read.
func (t *QueryTemplate) Get(index int) (*SequencingRead, error) {
	if err := t.checkIndex(index, t.size); err != nil {
		return nil, err
	}
	return t.reads[index], nil
}

// Add appends a copy of read and returns the copy.
//
// Filling the read returned by EmptyRead and passing it to Add appends it
// without copying.
func (t *QueryTemplate) Add(read *SequencingRead) *SequencingRead {
	t.ensureCapacity(t.size + 1)
	dst := t.copyIn(read)
	t.reads[t.size] = dst
	t.size++
	return dst
}

// Insert inserts a copy of read at index, shifting later reads to the right,
// and returns the copy.  index may equal Len.
func (t *QueryTemplate) Insert(index int, read *SequencingRead) (*SequencingRead, error) {
	if err := t.checkIndex(index, t.size+1); err != nil {
		return nil, err
	}
	t.ensureCapacity(t.size + 1)
	dst := t.copyIn(read)
	copy(t.reads[index+1:t.size+1], t.reads[index:t.size])
	t.reads[index] = dst
	t.size++
	return dst, nil
}

// Set overwrites the index'th read with a copy of read and returns it.
func (t *QueryTemplate) Set(index int, read *SequencingRead) (*SequencingRead, error) {
	if err := t.checkIndex(index, t.size); err != nil {
		return nil, err
	}
	dst := t.reads[index]
	dst.Set(read)
	return dst, nil
}

// Remove removes the index'th read, shifting later reads to the left.  The
// returned read is detached and returned to the pool of t: it remains valid
// only until the next call that adds a read to t.
func (t *QueryTemplate) Remove(index int) (*SequencingRead, error) {
	if err := t.checkIndex(index, t.size); err != nil {
		return nil, err
	}
	r := t.reads[index]
	copy(t.reads[index:t.size-1], t.reads[index+1:t.size])
	t.size--
	t.reads[t.size] = nil
	t.pool.put(r)
	return r, nil
}

// EmptyRead returns a read from the pool of t, for the caller to fill and
// then pass to Add.  The read may hold stale data.  It is not part of t until
// added.
func (t *QueryTemplate) EmptyRead() *SequencingRead {
	return t.pool.peek()
}

// AddEmptyRead appends a cleared read taken from the pool and returns it for
// the caller to fill in place.
func (t *QueryTemplate) AddEmptyRead() *SequencingRead {
	t.ensureCapacity(t.size + 1)
	r := t.pool.get()
	r.Clear()
	r.template = t
	t.reads[t.size] = r
	t.size++
	return r
}

// SetReads replaces the reads of t with copies of reads.  Nil entries are
// skipped.  reads may contain reads held by t.
func (t *QueryTemplate) SetReads(reads ...*SequencingRead) {
	old := t.size
	for _, r := range reads {
		if r != nil {
			t.Add(r)
		}
	}
	for _, r := range t.reads[:old] {
		t.pool.put(r)
	}
	copy(t.reads, t.reads[old:t.size])
	for i := t.size - old; i < t.size; i++ {
		t.reads[i] = nil
	}
	t.size -= old
}

// CopyFrom makes t a deep copy of other.
func (t *QueryTemplate) CopyFrom(other *QueryTemplate) {
	if t == other {
		return
	}
	t.SetReads(other.Reads()...)
	t.name = other.name
	t.length = other.length
	t.position = other.position
}

// recycle returns every read to the pool.
func (t *QueryTemplate) recycle() {
	for i, r := range t.reads[:t.size] {
		t.pool.put(r)
		t.reads[i] = nil
	}
	t.size = 0
}

// Clear removes all reads and resets the name, length and position.
func (t *QueryTemplate) Clear() {
	t.recycle()
	t.name = ""
	t.length = 0
	t.position = 0
}

// IndexOf returns the index of the first read equal to read, or -1.
func (t *QueryTemplate) IndexOf(read *SequencingRead) int {
	for i, r := range t.reads[:t.size] {
		if r.equalRead(read) {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the index of the last read equal to read, or -1.
func (t *QueryTemplate) LastIndexOf(read *SequencingRead) int {
	for i := t.size - 1; i >= 0; i-- {
		if t.reads[i].equalRead(read) {
			return i
		}
	}
	return -1
}

// CalculateTemplatePosition returns the range from the smallest positive first
// position to the largest positive last position among the reads.  The range
// length is 0 unless both exist.  The template's own position and length are
// not changed.
func (t *QueryTemplate) CalculateTemplatePosition() interval.PositionRange {
	var first, last int32
	for _, r := range t.reads[:t.size] {
		if f := r.First(); f > 0 && (f < first || first == 0) {
			first = f
		}
		if l := r.Last(); l > 0 && (l > last || last == 0) {
			last = l
		}
	}
	var length int32
	if first != 0 && last != 0 {
		length = last - first + 1
	}
	return interval.ByLength(first, length)
}

// First returns the properly paired read that is the first segment but not
// the last, or nil.
func (t *QueryTemplate) First() *SequencingRead {
	for _, r := range t.reads[:t.size] {
		if r.IsProperlyPaired() && r.IsFirst() && !r.IsLast() {
			return r
		}
	}
	return nil
}

// Last returns the properly paired read that is the last segment but not the
// first, or nil.
func (t *QueryTemplate) Last() *SequencingRead {
	for _, r := range t.reads[:t.size] {
		if r.IsProperlyPaired() && r.IsLast() && !r.IsFirst() {
			return r
		}
	}
	return nil
}

// Equal returns true if both templates have the same name, length and reads.
// The position is not compared.
func (t *QueryTemplate) Equal(other *QueryTemplate) bool {
	if t.size != other.size || t.length != other.length || t.name != other.name {
		return false
	}
	for i := 0; i < t.size; i++ {
		if !t.reads[i].equalRead(other.reads[i]) {
			return false
		}
	}
	return true
}

// Compare orders templates by name.
func (t *QueryTemplate) Compare(other *QueryTemplate) int {
	return strings.Compare(t.name, other.name)
}

func (t *QueryTemplate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s pos=%d len=%d reads=%d", t.name, t.position, t.length, t.size)
	for _, r := range t.reads[:t.size] {
		b.WriteString("\n  ")
		b.WriteString(r.String())
	}
	return b.String()
}
