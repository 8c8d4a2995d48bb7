// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import (
	"math"

	"golang.org/x/xerrors"
)

// An encoder accumulates big-endian class file data.
type encoder struct {
	buf []byte
}

func (e *encoder) u1(v uint8)  { e.buf = append(e.buf, v) }
func (e *encoder) u2(v uint16) { e.buf = append(e.buf, byte(v>>8), byte(v)) }
func (e *encoder) u4(v uint32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
func (e *encoder) bytes(b []byte) { e.buf = append(e.buf, b...) }

// Write encodes c as a class file.
func Write(c *Class) ([]byte, error) {
	if err := c.Pool.Err(); err != nil {
		return nil, xerrors.Errorf("writing %s: %w", c.Name(), err)
	}
	e := &encoder{buf: make([]byte, 0, 4096)}
	e.u4(Magic)
	e.u2(c.Minor)
	e.u2(c.Major)
	writePool(e, c.Pool)
	e.u2(c.Access)
	e.u2(c.This)
	e.u2(c.Super)
	e.u2(uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		e.u2(i)
	}
	for _, list := range [][]*Member{c.Fields, c.Methods} {
		e.u2(uint16(len(list)))
		for _, m := range list {
			e.u2(m.Access)
			e.u2(m.NameIndex)
			e.u2(m.DescIndex)
			if err := writeAttributes(e, m.Attributes); err != nil {
				return nil, xerrors.Errorf("writing %s: %w", c.Name(), err)
			}
		}
	}
	if err := writeAttributes(e, c.Attributes); err != nil {
		return nil, xerrors.Errorf("writing %s: %w", c.Name(), err)
	}
	return e.buf, nil
}

func writePool(e *encoder, p *Pool) {
	e.u2(uint16(len(p.entries)))
	for i := 1; i < len(p.entries); i++ {
		c := &p.entries[i]
		e.u1(uint8(c.Tag))
		switch c.Tag {
		case TagUTF8:
			e.u2(uint16(len(c.Bytes)))
			e.bytes(c.Bytes)
		case TagInteger, TagFloat:
			e.u4(uint32(c.Bits))
		case TagLong, TagDouble:
			e.u4(uint32(c.Bits >> 32))
			e.u4(uint32(c.Bits))
			i++
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			e.u2(c.A)
		case TagMethodHandle:
			e.u1(c.Kind)
			e.u2(c.A)
		default:
			e.u2(c.A)
			e.u2(c.B)
		}
	}
}

func writeAttributes(e *encoder, list []*Attribute) error {
	e.u2(uint16(len(list)))
	for _, a := range list {
		if uint64(len(a.Data)) > math.MaxUint32 {
			return xerrors.New("attribute too large")
		}
		e.u2(a.NameIndex)
		e.u4(uint32(len(a.Data)))
		e.bytes(a.Data)
	}
	return nil
}
