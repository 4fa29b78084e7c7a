// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/jnomics/reads"
	"github.com/grailbio/jnomics/sequence"
)

// PhredOffset is added to a binary base quality to get its ASCII encoding.
const PhredOffset = 33

// missingQual marks an absent base quality in sam.Record.Qual.
const missingQual = 0xff

// ToRead fills dst from rec.  Positions become 1-based and base qualities are
// ASCII-encoded.  Reads flagged reverse complemented get the Minus
// orientation.  Aux fields become properties: string fields and byte arrays
// keep their type, every other field is stored as the text of its value.
func ToRead(dst *reads.SequencingRead, rec *sam.Record) error {
	dst.Clear()
	dst.Name = rec.Name
	dst.Flags = reads.Flags(rec.Flags)
	dst.SetRawBytes(rec.Seq.Expand())
	if rec.Ref != nil {
		dst.SetReferenceName(rec.Ref.Name())
	}
	dst.Reposition(int32(rec.Pos + 1))
	if dst.IsReverseComplemented() {
		dst.SetOrientation(sequence.Minus)
	}
	dst.MappingQuality = rec.MapQ
	if len(rec.Cigar) > 0 {
		dst.Cigar = rec.Cigar.String()
	}
	if rec.MateRef != nil {
		dst.NextReferenceName = rec.MateRef.Name()
	}
	dst.NextPosition = int32(rec.MatePos + 1)
	if len(rec.Qual) > 0 && rec.Qual[0] != missingQual {
		if len(rec.Qual) != dst.Len() {
			return errors.E(errors.Invalid, fmt.Sprintf("record %s: %d bases and %d qualities", rec.Name, dst.Len(), len(rec.Qual)))
		}
		for _, q := range rec.Qual {
			dst.Phred = append(dst.Phred, q+PhredOffset)
		}
	}
	for _, aux := range rec.AuxFields {
		key := aux.Tag().String()
		switch v := aux.Value().(type) {
		case string:
			dst.Properties.Put(key, v)
		case []uint8:
			dst.Properties.PutBytes(key, v)
		default:
			dst.Properties.Put(key, fmt.Sprint(v))
		}
	}
	return nil
}

// ToRecord creates a record from r.  refs maps reference names to the
// references of the output header; a read on a reference missing from refs
// is an error.  The record comes from the sam free pool and may be returned
// there once written.  The template length is left 0.
func ToRecord(r *reads.SequencingRead, refs map[string]*sam.Reference) (*sam.Record, error) {
	rec := getRecord()
	if err := fillRecord(rec, r, refs); err != nil {
		putRecord(rec)
		return nil, err
	}
	return rec, nil
}

// The sam free pool, replaced in tests.
var (
	getRecord = sam.GetFromFreePool
	putRecord = sam.PutInFreePool
)

func fillRecord(rec *sam.Record, r *reads.SequencingRead, refs map[string]*sam.Reference) error {
	rec.Name = r.Name
	rec.Flags = sam.Flags(r.Flags)
	rec.MapQ = r.MappingQuality
	rec.TempLen = 0
	var err error
	if rec.Ref, err = lookupRef(refs, r.ReferenceName()); err != nil {
		return err
	}
	rec.Pos = int(r.First()) - 1
	if rec.MateRef, err = lookupRef(refs, r.NextReferenceName); err != nil {
		return err
	}
	rec.MatePos = int(r.NextPosition) - 1
	if r.Cigar != "" {
		if rec.Cigar, err = sam.ParseCigar([]byte(r.Cigar)); err != nil {
			return errors.E(err, "read", r.Name, "cigar", r.Cigar)
		}
	}
	bases := r.RawBytes()
	rec.Seq = sam.NewSeq(bases)
	rec.Qual = make([]byte, len(bases))
	switch len(r.Phred) {
	case 0:
		for i := range rec.Qual {
			rec.Qual[i] = missingQual
		}
	case len(bases):
		for i, q := range r.Phred {
			rec.Qual[i] = q - PhredOffset
		}
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("read %s: %d bases and %d qualities", r.Name, len(bases), len(r.Phred)))
	}
	for i := 0; i < r.Properties.Len(); i++ {
		p := r.Properties.At(i)
		if len(p.Key) != 2 {
			return errors.E(errors.Invalid, fmt.Sprintf("read %s: property key %q is not a SAM tag", r.Name, p.Key))
		}
		var value interface{} = p.Value
		if p.Type == reads.BytesProperty {
			value = []byte(p.Value)
		}
		aux, err := sam.NewAux(sam.NewTag(p.Key), value)
		if err != nil {
			return errors.E(err, "read", r.Name, "property", p.Key)
		}
		rec.AuxFields = append(rec.AuxFields, aux)
	}
	return nil
}

func lookupRef(refs map[string]*sam.Reference, name string) (*sam.Reference, error) {
	if name == "" {
		return nil, nil
	}
	ref, ok := refs[name]
	if !ok {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("reference %s not in header", name))
	}
	return ref, nil
}

// References maps the reference names of h to its references.
func References(h *sam.Header) map[string]*sam.Reference {
	refs := make(map[string]*sam.Reference, len(h.Refs()))
	for _, ref := range h.Refs() {
		refs[ref.Name()] = ref
	}
	return refs
}
