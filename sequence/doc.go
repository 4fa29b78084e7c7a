// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package sequence implements nucleotide sequences positioned on a reference.
//
// NucleotideSequence is the read-only capability shared by everything that
// carries bases.  Sequence is the mutable, reusable storage behind it: a
// resizable byte buffer of IUPAC codes, the reference name, an orientation and
// a position range whose length always equals the number of bases.  Derived
// statistics (GC/AT sums and the hash) are computed lazily and invalidated by
// every mutator.
//
// Sequences are not safe for concurrent use.
package sequence
