// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reads

// readPool is a stack of reads that are not held by any template.  It is
// owned by a single template and is not thread safe.
type readPool struct {
	free []*SequencingRead
	// allocs is the number of reads ever allocated by the pool.
	allocs int
}

// get pops a read, allocating one if the pool is empty.  The read may hold
// stale data.
func (p *readPool) get() *SequencingRead {
	if n := len(p.free); n > 0 {
		r := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return r
	}
	p.allocs++
	return &SequencingRead{}
}

// peek returns the read that the next get will return.
func (p *readPool) peek() *SequencingRead {
	if len(p.free) == 0 {
		p.allocs++
		p.free = append(p.free, &SequencingRead{})
	}
	return p.free[len(p.free)-1]
}

// put detaches r and pushes it onto the pool.  The caller shall not retain r
// beyond the next get.
func (p *readPool) put(r *SequencingRead) {
	r.template = nil
	r.detached = false
	p.free = append(p.free, r)
}
