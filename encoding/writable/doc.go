// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package writable implements the big-endian binary encoding used by read and
// template records.  Integers are fixed width and big-endian; strings are
// prefixed with their length encoded as a zero-compressed variable-length
// integer (the "vint"/"Text" encoding of Hadoop writables).
//
// Writer and Reader keep the first error they encounter; every subsequent call
// is a no-op, and the error is reported by Err.
package writable
