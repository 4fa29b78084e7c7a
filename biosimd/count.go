// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

// GCATSums returns the weighted G+C and A+T sums over ascii8[].  Each
// recognized code contributes GCWeight(c) to gcSum and 1-GCWeight(c) to atSum,
// so ambiguity codes contribute fractionally to both.
//
// Unrecognized bytes contribute nothing; invalidIdx is the index of the first
// one, or -1 if every byte was recognized.
func GCATSums(ascii8 []byte) (gcSum, atSum float64, invalidIdx int) {
	invalidIdx = -1
	for i, c := range ascii8 {
		if iupacComplementTable[c] == 0 {
			if invalidIdx < 0 {
				invalidIdx = i
			}
			continue
		}
		w := gcWeightTable[c]
		gcSum += w
		atSum += 1 - w
	}
	return
}

// CountGC returns the number of unambiguous G/C/S bases in ascii8[].
func CountGC(ascii8 []byte) int {
	cnt := 0
	for _, c := range ascii8 {
		if gcWeightTable[c] == 1 {
			cnt++
		}
	}
	return cnt
}
