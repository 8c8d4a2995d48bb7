// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/xerrors"
)

// A FormatError reports malformed class file data.
type FormatError struct {
	Off int
	Msg string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed class data at offset %d: %s", e.Off, e.Msg)
}

// A reader decodes big-endian class file data.
// The first error sticks; later reads return zero values.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = &FormatError{r.pos, fmt.Sprintf(format, args...)}
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.fail("unexpected end of data (need %d bytes, have %d)", n, len(r.data)-r.pos)
		return false
	}
	return true
}

func (r *reader) u1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) done() bool { return r.err == nil && r.pos == len(r.data) }

// Parse decodes a class file.
func Parse(data []byte) (*Class, error) {
	r := &reader{data: data}
	if r.u4() != Magic {
		r.pos = 0
		r.fail("bad magic number")
		return nil, xerrors.Errorf("parsing class: %w", r.err)
	}
	c := new(Class)
	c.Minor = r.u2()
	c.Major = r.u2()
	c.Pool = readPool(r)
	c.Access = r.u2()
	c.This = r.u2()
	c.Super = r.u2()
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		c.Interfaces = append(c.Interfaces, r.u2())
	}
	c.Fields = readMembers(r)
	c.Methods = readMembers(r)
	c.Attributes = readAttributes(r)
	if r.err == nil && r.pos != len(data) {
		r.fail("%d bytes of trailing data", len(data)-r.pos)
	}
	if r.err != nil {
		return nil, xerrors.Errorf("parsing class: %w", r.err)
	}
	if c.Pool.Tag(c.This) != TagClass {
		return nil, xerrors.Errorf("parsing class: %w", &FormatError{0, "this_class is not a Class constant"})
	}
	return c, nil
}

func readPool(r *reader) *Pool {
	n := int(r.u2())
	p := &Pool{entries: make([]Const, 1, n)}
	for len(p.entries) < n && r.err == nil {
		var c Const
		c.Tag = Tag(r.u1())
		switch c.Tag {
		case TagUTF8:
			c.Bytes = r.bytes(int(r.u2()))
		case TagInteger, TagFloat:
			c.Bits = uint64(r.u4())
		case TagLong, TagDouble:
			c.Bits = uint64(r.u4())<<32 | uint64(r.u4())
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			c.A = r.u2()
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			c.A = r.u2()
			c.B = r.u2()
		case TagMethodHandle:
			c.Kind = r.u1()
			c.A = r.u2()
		default:
			r.pos--
			r.fail("unknown constant pool tag %d at index %d", c.Tag, len(p.entries))
			return p
		}
		p.entries = append(p.entries, c)
		if c.Tag == TagLong || c.Tag == TagDouble {
			p.entries = append(p.entries, Const{})
		}
	}
	if len(p.entries) != n && r.err == nil {
		r.fail("constant pool overruns its count")
	}
	return p
}

func readMembers(r *reader) []*Member {
	n := int(r.u2())
	var list []*Member
	for i := 0; i < n && r.err == nil; i++ {
		m := &Member{Access: r.u2(), NameIndex: r.u2(), DescIndex: r.u2()}
		m.Attributes = readAttributes(r)
		list = append(list, m)
	}
	return list
}

func readAttributes(r *reader) []*Attribute {
	n := int(r.u2())
	var list []*Attribute
	for i := 0; i < n && r.err == nil; i++ {
		a := &Attribute{NameIndex: r.u2()}
		a.Data = r.bytes(int(r.u4()))
		list = append(list, a)
	}
	return list
}
