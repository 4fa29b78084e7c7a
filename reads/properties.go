// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package reads

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/grailbio/jnomics/encoding/writable"
	"github.com/pkg/errors"
)

// PropertyType is the type of a property value, named after the SAM aux
// type codes.
type PropertyType byte

const (
	// StringProperty is a printable string.
	StringProperty PropertyType = 'Z'
	// BytesProperty is an opaque byte array.
	BytesProperty PropertyType = 'H'
)

// Property is one tag attached to a read.
type Property struct {
	Key   string
	Type  PropertyType
	Value string
}

// Properties is a map of tags that remembers insertion order.  The zero value
// is empty and ready to use.
type Properties struct {
	entries []Property
}

func (p *Properties) find(key string) int {
	for i := range p.entries {
		if p.entries[i].Key == key {
			return i
		}
	}
	return -1
}

func (p *Properties) put(key string, typ PropertyType, value string) {
	if i := p.find(key); i >= 0 {
		p.entries[i].Type = typ
		p.entries[i].Value = value
		return
	}
	p.entries = append(p.entries, Property{Key: key, Type: typ, Value: value})
}

// Put sets key to a string value.  An existing key keeps its position.
func (p *Properties) Put(key, value string) {
	p.put(key, StringProperty, value)
}

// PutBytes sets key to a copy of value.
func (p *Properties) PutBytes(key string, value []byte) {
	p.put(key, BytesProperty, string(value))
}

// Get returns the property for key.
func (p *Properties) Get(key string) (Property, bool) {
	if i := p.find(key); i >= 0 {
		return p.entries[i], true
	}
	return Property{}, false
}

// Remove deletes key, and reports whether it was present.
func (p *Properties) Remove(key string) bool {
	i := p.find(key)
	if i < 0 {
		return false
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)
	return true
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	return len(p.entries)
}

// At returns the i'th property in insertion order.
func (p *Properties) At(i int) Property {
	return p.entries[i]
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	keys := make([]string, len(p.entries))
	for i := range p.entries {
		keys[i] = p.entries[i].Key
	}
	return keys
}

// Clear removes all properties.
func (p *Properties) Clear() {
	p.entries = p.entries[:0]
}

// Set replaces the contents of p with those of src.
func (p *Properties) Set(src *Properties) {
	if p == src {
		return
	}
	p.entries = append(p.entries[:0], src.entries...)
}

// Equal returns true if both maps hold the same keys with the same values,
// regardless of order.
func (p *Properties) Equal(other *Properties) bool {
	if len(p.entries) != len(other.entries) {
		return false
	}
	for i := range p.entries {
		o, ok := other.Get(p.entries[i].Key)
		if !ok || o != p.entries[i] {
			return false
		}
	}
	return true
}

// String lists the properties as "key:type:value", sorted by key.
func (p *Properties) String() string {
	sorted := append([]Property(nil), p.entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	parts := make([]string, len(sorted))
	for i, e := range sorted {
		parts[i] = fmt.Sprintf("%s:%c:%s", e.Key, e.Type, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Encode writes the number of properties as a fixed32, then each key, type
// byte and value.
func (p *Properties) Encode(w *writable.Writer) error {
	w.WriteInt32(int32(len(p.entries)))
	for _, e := range p.entries {
		w.WriteText(e.Key)
		w.WriteUint8(byte(e.Type))
		w.WriteText(e.Value)
	}
	return w.Err()
}

// Decode replaces the contents of p with properties written by Encode.
func (p *Properties) Decode(r *writable.Reader) error {
	p.Clear()
	n := r.ReadInt32()
	if err := r.Err(); err != nil {
		return err
	}
	if n < 0 {
		return errors.Wrapf(writable.ErrCorrupt, "property count %d", n)
	}
	for i := int32(0); i < n; i++ {
		key := r.ReadText()
		typ := PropertyType(r.ReadUint8())
		value := r.ReadText()
		if err := r.Err(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		if typ != StringProperty && typ != BytesProperty {
			return errors.Wrapf(writable.ErrCorrupt, "property %s: type %q", key, typ)
		}
		p.entries = append(p.entries, Property{Key: key, Type: typ, Value: value})
	}
	return nil
}
