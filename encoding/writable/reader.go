// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package writable

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// ErrCorrupt is reported when a decoded length is invalid.
var ErrCorrupt = errors.New("writable: corrupt input")

// Reader decodes values written by Writer.
type Reader struct {
	r   io.Reader
	br  io.ByteReader
	buf [8]byte
	err error
}

// NewReader creates a Reader that reads from r.  If r implements
// io.ByteReader, single-byte reads go through it.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{}
	rd.Reset(r)
	return rd
}

// Reset makes the reader read from r and clears the error state.
func (r *Reader) Reset(in io.Reader) {
	r.r = in
	r.br, _ = in.(io.ByteReader)
	r.err = nil
}

// Err returns the first error encountered by the reader.  A stream that ends
// cleanly before the first byte of a value yields io.EOF; one that ends in
// the middle of a value yields io.ErrUnexpectedEOF.
func (r *Reader) Err() error {
	return r.err
}

// ReadFull fills p, reporting the error through Err.
func (r *Reader) ReadFull(p []byte) {
	if r.err != nil || len(p) == 0 {
		return
	}
	_, r.err = io.ReadFull(r.r, p)
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() uint8 {
	if r.err != nil {
		return 0
	}
	if r.br != nil {
		var c byte
		c, r.err = r.br.ReadByte()
		return c
	}
	r.ReadFull(r.buf[:1])
	return r.buf[0]
}

// ReadBool reads a byte and reports whether it is non-zero.
func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

// ReadUint16 reads a big-endian fixed16.
func (r *Reader) ReadUint16() uint16 {
	r.ReadFull(r.buf[:2])
	if r.err != nil {
		return 0
	}
	return binary.BigEndian.Uint16(r.buf[:2])
}

// ReadInt32 reads a big-endian fixed32.
func (r *Reader) ReadInt32() int32 {
	r.ReadFull(r.buf[:4])
	if r.err != nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(r.buf[:4]))
}

// ReadVLong reads a value written by WriteVLong.
func (r *Reader) ReadVLong() int64 {
	first := r.ReadUint8()
	if r.err != nil {
		return 0
	}
	n := VLongSize(first)
	if n == 1 {
		return int64(int8(first))
	}
	var v int64
	for i := 0; i < n-1; i++ {
		b := r.ReadUint8()
		if r.err != nil {
			r.unexpectedEOF()
			return 0
		}
		v = v<<8 | int64(b)
	}
	if isNegativeVLong(first) {
		v = ^v
	}
	return v
}

// ReadText reads a string written by WriteText.
func (r *Reader) ReadText() string {
	n := r.textLen()
	if r.err != nil || n == 0 {
		return ""
	}
	b := make([]byte, n)
	r.ReadFull(b)
	if r.err != nil {
		r.unexpectedEOF()
		return ""
	}
	return string(b)
}

// ReadTextBytes reads a string written by WriteText into dst, reusing its
// storage when large enough, and returns the resulting slice.
func (r *Reader) ReadTextBytes(dst []byte) []byte {
	n := r.textLen()
	if r.err != nil {
		return dst[:0]
	}
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	r.ReadFull(dst)
	if r.err != nil {
		r.unexpectedEOF()
		return dst[:0]
	}
	return dst
}

func (r *Reader) textLen() int {
	n := r.ReadVLong()
	if r.err != nil {
		return 0
	}
	if n < 0 || n > math.MaxInt32 {
		r.err = errors.Wrapf(ErrCorrupt, "text length %d", n)
		return 0
	}
	return int(n)
}

// unexpectedEOF converts a clean EOF seen inside a value into
// io.ErrUnexpectedEOF.
func (r *Reader) unexpectedEOF() {
	if r.err == io.EOF {
		r.err = io.ErrUnexpectedEOF
	}
}
