// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package sequence

// Orientation is the strand a sequence is read from.
type Orientation uint8

const (
	// Plus is the forward strand.  It is the zero value.
	Plus Orientation = iota
	// Minus is the reverse strand.
	Minus
)

// Invert returns the opposite orientation.
func (o Orientation) Invert() Orientation {
	if o == Plus {
		return Minus
	}
	return Plus
}

// String returns "+" or "-".
func (o Orientation) String() string {
	if o == Plus {
		return "+"
	}
	return "-"
}
