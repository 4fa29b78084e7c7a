// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package sequence

import "github.com/antzucaro/matchr"

// Distance returns the Levenshtein edit distance between the bases of a and b.
func Distance(a, b NucleotideSequence) int {
	return matchr.Levenshtein(string(a.RawBytes()), string(b.RawBytes()))
}
