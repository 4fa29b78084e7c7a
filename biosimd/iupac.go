// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

// IUPACCodes lists the recognized nucleotide codes in upper case.  Lower-case
// versions are accepted everywhere.
const IUPACCodes = "ACGTUNRYSWKMBDHV"

// iupacComplementTable maps each recognized code to its complement, preserving
// case.  Unrecognized bytes map to 0.
var iupacComplementTable [256]byte

// gcWeightTable is the expected G+C fraction of each recognized code; e.g. 'S'
// (G or C) has weight 1 and 'B' (C, G or T) has weight 2/3.
var gcWeightTable [256]float64

func init() {
	pairs := [...][2]byte{
		{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'}, {'U', 'A'},
		{'N', 'N'}, {'R', 'Y'}, {'Y', 'R'}, {'S', 'S'}, {'W', 'W'},
		{'K', 'M'}, {'M', 'K'}, {'B', 'V'}, {'V', 'B'}, {'D', 'H'}, {'H', 'D'},
	}
	for _, p := range pairs {
		iupacComplementTable[p[0]] = p[1]
		iupacComplementTable[p[0]|0x20] = p[1] | 0x20
	}
	weights := map[byte]float64{
		'A': 0, 'C': 1, 'G': 1, 'T': 0, 'U': 0,
		'N': 0.5, 'R': 0.5, 'Y': 0.5, 'S': 1, 'W': 0,
		'K': 0.5, 'M': 0.5, 'B': 2.0 / 3, 'D': 1.0 / 3, 'H': 1.0 / 3, 'V': 2.0 / 3,
	}
	for c, w := range weights {
		gcWeightTable[c] = w
		gcWeightTable[c|0x20] = w
	}
}

// IsIUPAC returns true iff c is a recognized nucleotide code.
func IsIUPAC(c byte) bool {
	return iupacComplementTable[c] != 0
}

// ComplementIUPAC returns the complement of c, preserving case.  It returns 0
// if c is not a recognized code.
func ComplementIUPAC(c byte) byte {
	return iupacComplementTable[c]
}

// GCWeight returns the G+C weight of c, in [0, 1].  Unrecognized bytes have
// weight 0; use IsIUPAC to tell them apart from 'A'/'T'.
func GCWeight(c byte) float64 {
	return gcWeightTable[c]
}

// FirstInvalidIUPAC returns the index of the first byte in ascii8[] that is
// not a recognized code, or -1 if there is none.
func FirstInvalidIUPAC(ascii8 []byte) int {
	for i, c := range ascii8 {
		if iupacComplementTable[c] == 0 {
			return i
		}
	}
	return -1
}
