// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package writable

import "io"

// Buffer is a growable byte slice that implements io.Writer.  It is meant to
// be reused across records, e.g., as the marshal scratch space of a recordio
// writer.
type Buffer []byte

// Ensure that b can store at least "bytes" more bytes.
func (b *Buffer) alloc(bytes int) []byte {
	blen := len(*b)
	newLen := blen + bytes
	if cap(*b) >= newLen {
		*b = (*b)[:newLen]
		return (*b)[blen:]
	}
	newCap := (newLen/16 + 1) * 16
	if newCap < cap(*b)*2 {
		newCap = cap(*b) * 2
	}
	newBuf := make([]byte, newLen, newCap)
	copy(newBuf, *b)
	*b = newBuf
	return (*b)[blen:]
}

// Write implements io.Writer.  It never fails.
func (b *Buffer) Write(data []byte) (int, error) {
	copy(b.alloc(len(data)), data)
	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	b.alloc(1)[0] = c
	return nil
}

// Reset truncates the buffer, keeping its storage.
func (b *Buffer) Reset() {
	*b = (*b)[:0]
}

// Bytes returns the buffer contents.  The result is valid until the next
// write.
func (b *Buffer) Bytes() []byte {
	return *b
}

// Len returns the number of bytes written since the last Reset.
func (b *Buffer) Len() int {
	return len(*b)
}

// SliceReader is an io.Reader and io.ByteReader over a byte slice.  Unlike
// bytes.Reader it can be re-pointed at a new slice without allocating.
type SliceReader struct {
	data []byte
}

// Reset makes the reader read from data.
func (s *SliceReader) Reset(data []byte) {
	s.data = data
}

// Read implements io.Reader.
func (s *SliceReader) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, nil
}

// ReadByte implements io.ByteReader.
func (s *SliceReader) ReadByte() (byte, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	c := s.data[0]
	s.data = s.data[1:]
	return c, nil
}

// Remaining returns the number of unread bytes.
func (s *SliceReader) Remaining() int {
	return len(s.data)
}
