// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bam

import (
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/jnomics/reads"
)

// HeaderBuilder collects the references named by templates, for inputs that
// carry no SAM header.  The length of each reference is the largest last
// position seen on it.
type HeaderBuilder struct {
	lengths map[string]int
}

// Add records the references of t's reads and their mates.
func (b *HeaderBuilder) Add(t *reads.QueryTemplate) {
	if b.lengths == nil {
		b.lengths = make(map[string]int)
	}
	for _, r := range t.Reads() {
		b.observe(r.ReferenceName(), int(r.Last()))
		b.observe(r.NextReferenceName, int(r.NextPosition))
	}
}

func (b *HeaderBuilder) observe(name string, last int) {
	if name == "" {
		return
	}
	if last < 1 {
		last = 1
	}
	if last > b.lengths[name] {
		b.lengths[name] = last
	}
}

// Header creates a header with the collected references, sorted by name.
func (b *HeaderBuilder) Header() (*sam.Header, error) {
	names := make([]string, 0, len(b.lengths))
	for name := range b.lengths {
		names = append(names, name)
	}
	sort.Strings(names)
	refs := make([]*sam.Reference, len(names))
	for i, name := range names {
		ref, err := sam.NewReference(name, "", "", b.lengths[name], nil, nil)
		if err != nil {
			return nil, errors.E(err, "reference", name)
		}
		refs[i] = ref
	}
	return sam.NewHeader(nil, refs)
}
