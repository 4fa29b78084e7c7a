// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package reads implements sequencing reads and query templates.
//
// A SequencingRead is a nucleotide sequence plus SAM-style alignment
// metadata.  A QueryTemplate is the ordered set of reads sequenced from one
// fragment, e.g. the two mates of a pair.  A template owns its reads: Add,
// Insert and Set copy the caller's read into storage drawn from the template's
// own free list, and Remove returns storage to that list, so a template that
// is reused across records stops allocating once it has seen its largest
// record.
//
// Reads and templates share a big-endian binary encoding (see
// encoding/writable).  A read that is encoded on its own carries a snapshot
// of its template's name, position and length; a read encoded as part of a
// template does not.
package reads
