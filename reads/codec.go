// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reads

import (
	"io"

	"github.com/grailbio/jnomics/encoding/writable"
	"github.com/pkg/errors"
)

// ErrHeldByTemplate is returned by SequencingRead.Decode when the read
// belongs to a template.  Such reads are decoded through the template.
var ErrHeldByTemplate = errors.New("read is held by a template")

type templateSnapshot struct {
	name             string
	position, length int32
}

// Encode writes r followed by a snapshot of its template, if it has one.
func (r *SequencingRead) Encode(w *writable.Writer) error {
	return r.encode(w, r.template != nil)
}

// encode writes, in order: name, flags (fixed16), next reference name, the
// sequence (see sequence.Sequence.Encode), mapping quality (one byte), cigar,
// next position (fixed32), qualities, properties, and a bool saying whether
// a template name and a fixed32 position and length follow.
func (r *SequencingRead) encode(w *writable.Writer, withTemplate bool) error {
	w.WriteText(r.Name)
	w.WriteUint16(uint16(r.Flags))
	w.WriteText(r.NextReferenceName)
	if err := r.Sequence.Encode(w); err != nil {
		return err
	}
	w.WriteUint8(r.MappingQuality)
	w.WriteText(r.Cigar)
	w.WriteInt32(r.NextPosition)
	w.WriteTextBytes(r.Phred)
	if err := r.Properties.Encode(w); err != nil {
		return err
	}
	w.WriteBool(withTemplate)
	if withTemplate {
		w.WriteText(r.template.name)
		w.WriteInt32(r.template.position)
		w.WriteInt32(r.template.length)
	}
	return w.Err()
}

// Decode reads a read written by Encode into r, reusing its storage.  If the
// encoding carries a template snapshot, Template returns a detached template
// holding it afterwards; otherwise Template returns nil.  It returns io.EOF if
// the input ends before the first field.
func (r *SequencingRead) Decode(rd *writable.Reader) error {
	if r.template != nil && !r.detached {
		return ErrHeldByTemplate
	}
	var snap templateSnapshot
	hasTemplate, err := r.decode(rd, &snap)
	if err != nil {
		return err
	}
	if !hasTemplate {
		r.template = nil
		r.detached = false
		return nil
	}
	if !r.detached {
		r.template = &QueryTemplate{}
		r.detached = true
	}
	r.template.name = snap.name
	r.template.position = snap.position
	r.template.length = snap.length
	return nil
}

// decode reads the fields written by encode.  The template snapshot, if
// present, is stored in snap.
func (r *SequencingRead) decode(rd *writable.Reader, snap *templateSnapshot) (hasTemplate bool, err error) {
	r.Name = rd.ReadText()
	if err = rd.Err(); err != nil {
		return
	}
	r.Flags = Flags(rd.ReadUint16())
	r.NextReferenceName = rd.ReadText()
	if err = r.Sequence.Decode(rd); err != nil {
		return false, unexpectedEOF(err)
	}
	r.MappingQuality = rd.ReadUint8()
	r.Cigar = rd.ReadText()
	r.NextPosition = rd.ReadInt32()
	r.Phred = rd.ReadTextBytes(r.Phred)
	if err = r.Properties.Decode(rd); err != nil {
		return false, unexpectedEOF(err)
	}
	if hasTemplate = rd.ReadBool(); hasTemplate {
		snap.name = rd.ReadText()
		snap.position = rd.ReadInt32()
		snap.length = rd.ReadInt32()
	}
	return hasTemplate, unexpectedEOF(rd.Err())
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Encode writes the number of reads as a fixed32, each read without a
// template snapshot, then the template name, length and position.
func (t *QueryTemplate) Encode(w *writable.Writer) error {
	w.WriteInt32(int32(t.size))
	for _, r := range t.reads[:t.size] {
		if err := r.encode(w, false); err != nil {
			return err
		}
	}
	w.WriteText(t.name)
	w.WriteInt32(t.length)
	w.WriteInt32(t.position)
	return w.Err()
}

// Decode replaces the contents of t with a template written by Encode.  The
// reads of t are recycled and refilled.  It returns io.EOF if the input ends
// before the first field.
func (t *QueryTemplate) Decode(rd *writable.Reader) error {
	n := rd.ReadInt32()
	if err := rd.Err(); err != nil {
		return err
	}
	if n < 0 {
		return errors.Wrapf(writable.ErrCorrupt, "read count %d", n)
	}
	t.recycle()
	var snap templateSnapshot
	for i := int32(0); i < n; i++ {
		t.ensureCapacity(t.size + 1)
		r := t.pool.get()
		// A snapshot, if any, is redundant with the template fields below.
		if _, err := r.decode(rd, &snap); err != nil {
			t.pool.put(r)
			return unexpectedEOF(err)
		}
		r.template = t
		t.reads[t.size] = r
		t.size++
	}
	t.name = rd.ReadText()
	t.length = rd.ReadInt32()
	t.position = rd.ReadInt32()
	return unexpectedEOF(rd.Err())
}
