// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package writable

import (
	"encoding/binary"
	"io"
)

// Writer encodes values onto an io.Writer.
type Writer struct {
	w   io.Writer
	buf [9]byte
	err error
}

// NewWriter creates a Writer that writes to w.  Callers that issue many small
// writes should pass a buffered writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Reset makes the writer write to w and clears the error state.
func (w *Writer) Reset(out io.Writer) {
	w.w = out
	w.err = nil
}

// Err returns the first error encountered by the writer.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteUint16 writes a big-endian fixed16.
func (w *Writer) WriteUint16(v uint16) {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

// WriteInt32 writes a big-endian fixed32.
func (w *Writer) WriteInt32(v int32) {
	binary.BigEndian.PutUint32(w.buf[:4], uint32(v))
	w.write(w.buf[:4])
}

// WriteVLong writes v in the zero-compressed variable-length encoding: values
// in [-112, 127] take one byte; otherwise the first byte encodes the sign and
// the number of big-endian magnitude bytes that follow.
func (w *Writer) WriteVLong(v int64) {
	w.write(w.buf[:PutVLong(w.buf[:], v)])
}

// WriteText writes a vint length followed by the bytes of s.
func (w *Writer) WriteText(s string) {
	w.WriteVLong(int64(len(s)))
	if w.err != nil || len(s) == 0 {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// WriteTextBytes is WriteText for a byte slice.
func (w *Writer) WriteTextBytes(b []byte) {
	w.WriteVLong(int64(len(b)))
	if len(b) > 0 {
		w.write(b)
	}
}

// PutVLong encodes v into buf, which must be at least 9 bytes long, and
// returns the number of bytes used.
func PutVLong(buf []byte, v int64) int {
	if v >= -112 && v <= 127 {
		buf[0] = byte(int8(v))
		return 1
	}
	prefix := int8(-112)
	if v < 0 {
		v = ^v
		prefix = -120
	}
	n := 0
	for tmp := v; tmp != 0; tmp >>= 8 {
		n++
	}
	buf[0] = byte(prefix - int8(n))
	for i := 0; i < n; i++ {
		buf[1+i] = byte(v >> uint((n-1-i)*8))
	}
	return n + 1
}

// VLongSize returns the number of bytes, including the first one, of a vint
// whose first byte is b.
func VLongSize(b byte) int {
	v := int8(b)
	if v >= -112 {
		return 1
	}
	if v < -120 {
		return int(-119 - int(v))
	}
	return int(-111 - int(v))
}

func isNegativeVLong(b byte) bool {
	v := int8(b)
	return v < -120 || (v >= -112 && v < 0)
}
