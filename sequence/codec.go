// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package sequence

import "github.com/grailbio/jnomics/encoding/writable"

// Encode writes the reference name, the interval (first as a fixed32, length
// as a fixed16), the bases and the orientation (true for Plus).  The fixed16
// length is truncated for sequences longer than 65535 bases; Decode takes the
// length from the bases.
func (s *Sequence) Encode(w *writable.Writer) error {
	w.WriteText(s.referenceName)
	w.WriteInt32(s.rng.First())
	w.WriteUint16(uint16(len(s.bases)))
	w.WriteTextBytes(s.bases)
	w.WriteBool(s.orientation == Plus)
	return w.Err()
}

// Decode reads a sequence written by Encode into s, reusing its storage.  The
// encoded interval length is ignored; the length always follows the bases.
func (s *Sequence) Decode(r *writable.Reader) error {
	s.referenceName = r.ReadText()
	first := r.ReadInt32()
	r.ReadUint16()
	s.bases = r.ReadTextBytes(s.bases)
	if r.ReadBool() {
		s.orientation = Plus
	} else {
		s.orientation = Minus
	}
	s.rng.SetFirst(first)
	s.invalidate()
	return r.Err()
}
