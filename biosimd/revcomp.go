// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

// ReverseCompIUPACInplace reverse-complements ascii8[] using the IUPAC
// complement table, preserving case.
//
// The input is validated before anything is written: if it contains an
// unrecognized byte, ascii8[] is left untouched and the index of the first
// such byte is returned.  Otherwise the return value is -1.
func ReverseCompIUPACInplace(ascii8 []byte) int {
	if bad := FirstInvalidIUPAC(ascii8); bad >= 0 {
		return bad
	}
	ReverseCompIUPACInplaceNoValidate(ascii8)
	return -1
}

// ReverseCompIUPACInplaceNoValidate reverse-complements ascii8[], assuming
// that every byte is a recognized code.  Unrecognized bytes are replaced with
// 0.
func ReverseCompIUPACInplaceNoValidate(ascii8 []byte) {
	nByte := len(ascii8)
	nByteDiv2 := nByte >> 1
	for idx, invIdx := 0, nByte-1; idx != nByteDiv2; idx, invIdx = idx+1, invIdx-1 {
		ascii8[idx], ascii8[invIdx] = iupacComplementTable[ascii8[invIdx]], iupacComplementTable[ascii8[idx]]
	}
	if nByte&1 == 1 {
		ascii8[nByteDiv2] = iupacComplementTable[ascii8[nByteDiv2]]
	}
}

// ReverseCompIUPAC writes the reverse-complement of src[] to dst[].  It
// returns the index of the first unrecognized byte in src[] (in which case dst
// is not written), or -1.
//
// It panics if len(dst) != len(src).
func ReverseCompIUPAC(dst, src []byte) int {
	nByte := len(src)
	if len(dst) != nByte {
		panic("ReverseCompIUPAC requires len(dst) == len(src).")
	}
	if bad := FirstInvalidIUPAC(src); bad >= 0 {
		return bad
	}
	for idx, invIdx := 0, nByte-1; idx != nByte; idx, invIdx = idx+1, invIdx-1 {
		dst[idx] = iupacComplementTable[src[invIdx]]
	}
	return -1
}
