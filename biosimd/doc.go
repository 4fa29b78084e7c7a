// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides table-driven implementations of the byte-array
// operations on IUPAC-encoded nucleotide sequences that the read model needs
// in its inner loops: validation, reverse-complement and GC/AT weighting.
//
// All functions operate on ASCII8 sequences (one IUPAC letter per byte, either
// case).  The tables are shared with package sequence, which owns the
// higher-level error reporting.
package biosimd
