// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"sort"

	"blainsmith.com/go/seahash"
	"github.com/dgryski/go-farm"
	"github.com/grailbio/base/unsafe"
	"github.com/grailbio/jnomics/reads"
	"github.com/minio/highwayhash"
)

type checksumOpts struct {
	// hash names the hash function: "seahash", "farm" or "highway".
	hash string

	// all treats all the following bool fields to be true.  If all=true, then the
	// individual values of the following fields are ignored.
	all bool

	// name causes the read names to be added to the checksum.
	name bool
	// mapq causes the mapping qualities to be added to the checksum.
	mapQ bool
	// cigar causes the cigar strings to be added to the checksum.
	cigar bool
	// matePos causes the next reference and position to be added to the checksum.
	matePos bool
	// seq causes the bases to be added to the checksum.
	seq bool
	// qual causes the qualities to be added to the checksum.
	qual bool
	// props causes the properties to be added to the checksum.
	props bool
}

// hasher hashes a field value keyed by the position of its read.
type hasher func(pos [8]byte, value []byte) uint64

func streamHasher(h hash.Hash64) hasher {
	return func(pos [8]byte, value []byte) uint64 {
		h.Reset()
		h.Write(pos[:])
		h.Write(value)
		return h.Sum64()
	}
}

// farmHasher concatenates the position and the value into buf, since farm
// hashes whole buffers only.
func farmHasher() hasher {
	var buf []byte
	return func(pos [8]byte, value []byte) uint64 {
		buf = append(append(buf[:0], pos[:]...), value...)
		return farm.Hash64(buf)
	}
}

var highwayKey [32]byte

func newHasher(name string) (hasher, error) {
	switch name {
	case "", "seahash":
		return streamHasher(seahash.New()), nil
	case "farm":
		return farmHasher(), nil
	case "highway":
		h, err := highwayhash.New64(highwayKey[:])
		if err != nil {
			return nil, err
		}
		return streamHasher(h), nil
	}
	return nil, fmt.Errorf("unknown hash function %q", name)
}

// refChecksum is the checksum of reads for one reference.  Every sum is
// commutative, so the checksum does not depend on the order of the reads.
type refChecksum struct {
	// Name is the name of the reference; empty for unmapped reads.
	Name string
	// NReads is the # of reads found for this reference sequence.
	NReads int64
	// SumPos is sum of all position values.
	SumPos uint64
	// SumFlags is sum of all flag values.
	SumFlags uint64
	// SumMapQ is the sum of mapq values.
	SumMapQ uint64
	// SumMatePos is the sum of next reference and position values.
	SumMatePos uint64
	// SumName is sum of all names.
	SumName uint64
	// SumSeq is sum of all base strings.
	SumSeq uint64
	// SumCigar is sum of all cigar strings.
	SumCigar uint64
	// SumQual is the sum of quality strings.
	SumQual uint64
	// SumProps is sum of all properties.
	SumProps uint64
}

func (c *refChecksum) add(r *reads.SequencingRead, h hasher, opts checksumOpts) {
	c.NReads++
	c.SumPos += uint64(r.First())

	pos := [8]byte{}
	binary.LittleEndian.PutUint32(pos[:], uint32(r.First()))
	binary.LittleEndian.PutUint32(pos[4:], uint32(r.Len()))

	value := [8]byte{}
	binary.LittleEndian.PutUint16(value[:2], uint16(r.Flags))
	c.SumFlags += h(pos, value[:2])

	if opts.all || opts.mapQ {
		c.SumMapQ += h(pos, []byte{r.MappingQuality})
	}
	if opts.all || opts.matePos {
		binary.LittleEndian.PutUint32(value[:4], uint32(r.NextPosition))
		c.SumMatePos += h(pos, append(value[:4:4], r.NextReferenceName...))
	}
	if opts.all || opts.name {
		c.SumName += h(pos, unsafe.StringToBytes(r.Name))
	}
	if opts.all || opts.seq {
		c.SumSeq += h(pos, r.RawBytes())
	}
	if opts.all || opts.qual {
		c.SumQual += h(pos, r.Phred)
	}
	if opts.all || opts.cigar {
		c.SumCigar += h(pos, unsafe.StringToBytes(r.Cigar))
	}
	if opts.all || opts.props {
		for i := 0; i < r.Properties.Len(); i++ {
			p := r.Properties.At(i)
			c.SumProps += h(pos, []byte(p.Key+string(p.Type)+p.Value))
		}
	}
}

// fileChecksum represents the checksum of a file.
type fileChecksum struct {
	Refs      []refChecksum // Sorted by name.
	Unmapped  refChecksum   // For unmapped reads.
	Templates int64
}

func checksumFile(ctx context.Context, path string, opts checksumOpts) (csum fileChecksum, err error) {
	h, err := newHasher(opts.hash)
	if err != nil {
		return csum, err
	}
	in, _, err := openInput(ctx, path, "")
	if err != nil {
		return csum, err
	}
	refs := map[string]*refChecksum{}
	for in.Scan() {
		csum.Templates++
		for _, r := range in.Template().Reads() {
			name := r.ReferenceName()
			c := &csum.Unmapped
			if name != "" {
				if c = refs[name]; c == nil {
					c = &refChecksum{Name: name}
					refs[name] = c
				}
			}
			c.add(r, h, opts)
		}
	}
	err = in.Err()
	if e := in.Close(); err == nil {
		err = e
	}
	for _, c := range refs {
		csum.Refs = append(csum.Refs, *c)
	}
	sort.Slice(csum.Refs, func(i, j int) bool { return csum.Refs[i].Name < csum.Refs[j].Name })
	return csum, err
}

func checksum(ctx context.Context, path string, opts checksumOpts, out io.Writer) error {
	csum, err := checksumFile(ctx, path, opts)
	if err != nil {
		return err
	}
	js, err := json.MarshalIndent(csum, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(js))
	return err
}
