// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/xerrors"
)

// A Tag identifies the kind of a constant pool entry.
type Tag uint8

const (
	TagUTF8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// Method handle reference kinds.
const (
	RefGetField         = 1
	RefGetStatic        = 2
	RefPutField         = 3
	RefPutStatic        = 4
	RefInvokeVirtual    = 5
	RefInvokeStatic     = 6
	RefInvokeSpecial    = 7
	RefNewInvokeSpecial = 8
	RefInvokeInterface  = 9
)

// A Const is one constant pool entry.
//
// The meaning of A and B depends on Tag:
//
//	Class, MethodType, Module, Package  A = name/descriptor Utf8
//	String                              A = Utf8
//	Fieldref, Methodref, ...            A = Class, B = NameAndType
//	NameAndType                         A = name Utf8, B = descriptor Utf8
//	MethodHandle                        Kind = reference kind, A = member ref
//	Dynamic, InvokeDynamic              A = bootstrap method index, B = NameAndType
//
// Utf8 entries keep their modified UTF-8 bytes so that untouched
// entries are written back bit for bit.
type Const struct {
	Tag   Tag
	Kind  uint8
	A, B  uint16
	Bits  uint64
	Bytes []byte
}

// A Pool is a class file constant pool.
// Index 0 is unused, as are the slots following Long and Double entries.
//
// A Pool only grows: rewriting an identifier adds new entries
// and repoints the referencing entry, so every index already
// encoded elsewhere in the class stays valid.
type Pool struct {
	entries []Const
	utf8    map[string]uint16
	nat     map[[2]uint16]uint16
	class   map[uint16]uint16
	err     error
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{entries: make([]Const, 1)}
}

// Len returns the constant_pool_count of p: one more than the largest index.
func (p *Pool) Len() int { return len(p.entries) }

// Err reports whether the pool overflowed while adding entries.
func (p *Pool) Err() error { return p.err }

// At returns the entry at index i, or nil if i is out of range.
func (p *Pool) At(i uint16) *Const {
	if i == 0 || int(i) >= len(p.entries) {
		return nil
	}
	return &p.entries[i]
}

// Tag returns the tag at index i, or 0 if there is none.
func (p *Pool) Tag(i uint16) Tag {
	if c := p.At(i); c != nil {
		return c.Tag
	}
	return 0
}

// Clone returns a copy of p whose entries can be read
// while p itself is being rewritten.
func (p *Pool) Clone() *Pool {
	return &Pool{entries: append([]Const(nil), p.entries...)}
}

// UTF8 returns the string stored in the Utf8 entry at index i.
func (p *Pool) UTF8(i uint16) string {
	c := p.At(i)
	if c == nil || c.Tag != TagUTF8 {
		return ""
	}
	return decodeMUTF8(c.Bytes)
}

// ClassName returns the internal name referenced by the Class entry at i.
func (p *Pool) ClassName(i uint16) string {
	c := p.At(i)
	if c == nil || c.Tag != TagClass {
		return ""
	}
	return p.UTF8(c.A)
}

// NameAndType returns the name and descriptor of the NameAndType entry at i.
func (p *Pool) NameAndType(i uint16) (name, desc string) {
	c := p.At(i)
	if c == nil || c.Tag != TagNameAndType {
		return "", ""
	}
	return p.UTF8(c.A), p.UTF8(c.B)
}

// MemberRef returns the owner, name and descriptor of the
// Fieldref, Methodref or InterfaceMethodref entry at i.
func (p *Pool) MemberRef(i uint16) (owner, name, desc string) {
	c := p.At(i)
	if c == nil {
		return "", "", ""
	}
	switch c.Tag {
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		name, desc = p.NameAndType(c.B)
		return p.ClassName(c.A), name, desc
	}
	return "", "", ""
}

// MethodTypeDesc returns the descriptor of the MethodType entry at i.
func (p *Pool) MethodTypeDesc(i uint16) string {
	c := p.At(i)
	if c == nil || c.Tag != TagMethodType {
		return ""
	}
	return p.UTF8(c.A)
}

// A Handle is a decoded MethodHandle constant.
type Handle struct {
	Kind        uint8
	Owner       string
	Name        string
	Desc        string
	IsInterface bool
}

func (h Handle) String() string {
	return h.Owner + "." + h.Name + h.Desc
}

// MethodHandle decodes the MethodHandle entry at i.
func (p *Pool) MethodHandle(i uint16) (Handle, bool) {
	c := p.At(i)
	if c == nil || c.Tag != TagMethodHandle {
		return Handle{}, false
	}
	owner, name, desc := p.MemberRef(c.A)
	return Handle{
		Kind:        c.Kind,
		Owner:       owner,
		Name:        name,
		Desc:        desc,
		IsInterface: p.Tag(c.A) == TagInterfaceMethodref,
	}, true
}

func (p *Pool) add(c Const) uint16 {
	n := 1
	if c.Tag == TagLong || c.Tag == TagDouble {
		n = 2
	}
	if len(p.entries)+n > math.MaxUint16 {
		if p.err == nil {
			p.err = xerrors.Errorf("constant pool overflow: more than %d entries", math.MaxUint16-1)
		}
		return 0
	}
	i := uint16(len(p.entries))
	p.entries = append(p.entries, c)
	if n == 2 {
		p.entries = append(p.entries, Const{})
	}
	return i
}

// AddUTF8 returns the index of a Utf8 entry holding s,
// reusing an existing entry when there is one.
func (p *Pool) AddUTF8(s string) uint16 {
	if p.utf8 == nil {
		p.utf8 = make(map[string]uint16)
		for i := len(p.entries) - 1; i > 0; i-- {
			if c := &p.entries[i]; c.Tag == TagUTF8 {
				p.utf8[string(c.Bytes)] = uint16(i)
			}
		}
	}
	b := encodeMUTF8(s)
	if i, ok := p.utf8[string(b)]; ok {
		return i
	}
	i := p.add(Const{Tag: TagUTF8, Bytes: b})
	if i != 0 {
		p.utf8[string(b)] = i
	}
	return i
}

// RenameUTF8 returns i if the Utf8 entry at i already holds s,
// and AddUTF8(s) otherwise.
func (p *Pool) RenameUTF8(i uint16, s string) uint16 {
	if p.Tag(i) == TagUTF8 && p.UTF8(i) == s {
		return i
	}
	return p.AddUTF8(s)
}

// AddClass returns the index of a Class entry naming the internal name.
func (p *Pool) AddClass(name string) uint16 {
	u := p.AddUTF8(name)
	if p.class == nil {
		p.class = make(map[uint16]uint16)
		for i := len(p.entries) - 1; i > 0; i-- {
			if c := &p.entries[i]; c.Tag == TagClass {
				p.class[c.A] = uint16(i)
			}
		}
	}
	if i, ok := p.class[u]; ok {
		return i
	}
	i := p.add(Const{Tag: TagClass, A: u})
	if i != 0 {
		p.class[u] = i
	}
	return i
}

// AddNameAndType returns the index of a NameAndType entry,
// reusing an existing entry when there is one.
func (p *Pool) AddNameAndType(name, desc string) uint16 {
	k := [2]uint16{p.AddUTF8(name), p.AddUTF8(desc)}
	if p.nat == nil {
		p.nat = make(map[[2]uint16]uint16)
		for i := len(p.entries) - 1; i > 0; i-- {
			if c := &p.entries[i]; c.Tag == TagNameAndType {
				p.nat[[2]uint16{c.A, c.B}] = uint16(i)
			}
		}
	}
	if i, ok := p.nat[k]; ok {
		return i
	}
	i := p.add(Const{Tag: TagNameAndType, A: k[0], B: k[1]})
	if i != 0 {
		p.nat[k] = i
	}
	return i
}

// AddMemberRef adds a Fieldref, Methodref or InterfaceMethodref entry.
func (p *Pool) AddMemberRef(tag Tag, owner, name, desc string) uint16 {
	return p.add(Const{Tag: tag, A: p.AddClass(owner), B: p.AddNameAndType(name, desc)})
}

// AddString adds a String entry.
func (p *Pool) AddString(s string) uint16 {
	return p.add(Const{Tag: TagString, A: p.AddUTF8(s)})
}

// AddInteger adds an Integer entry.
func (p *Pool) AddInteger(v int32) uint16 {
	return p.add(Const{Tag: TagInteger, Bits: uint64(uint32(v))})
}

// AddLong adds a Long entry, which occupies two slots.
func (p *Pool) AddLong(v int64) uint16 {
	return p.add(Const{Tag: TagLong, Bits: uint64(v)})
}

// AddMethodType adds a MethodType entry.
func (p *Pool) AddMethodType(desc string) uint16 {
	return p.add(Const{Tag: TagMethodType, A: p.AddUTF8(desc)})
}

// AddMethodHandle adds a MethodHandle entry referring to a new member ref.
func (p *Pool) AddMethodHandle(h Handle) uint16 {
	tag := TagMethodref
	switch {
	case h.Kind <= RefPutStatic:
		tag = TagFieldref
	case h.IsInterface:
		tag = TagInterfaceMethodref
	}
	return p.add(Const{Tag: TagMethodHandle, Kind: h.Kind, A: p.AddMemberRef(tag, h.Owner, h.Name, h.Desc)})
}

// AddInvokeDynamic adds an InvokeDynamic entry for bootstrap method bsm.
func (p *Pool) AddInvokeDynamic(bsm uint16, name, desc string) uint16 {
	return p.add(Const{Tag: TagInvokeDynamic, A: bsm, B: p.AddNameAndType(name, desc)})
}

// SetClassName repoints the Class entry at i to name.
func (p *Pool) SetClassName(i uint16, name string) {
	if p.Tag(i) != TagClass {
		return
	}
	u := p.AddUTF8(name)
	c := &p.entries[i] // AddUTF8 may have grown entries
	if p.class != nil {
		if p.class[c.A] == i {
			delete(p.class, c.A)
		}
		if _, ok := p.class[u]; !ok {
			p.class[u] = i
		}
	}
	c.A = u
}

// SetMethodTypeDesc repoints the MethodType entry at i to desc.
func (p *Pool) SetMethodTypeDesc(i uint16, desc string) {
	if p.Tag(i) == TagMethodType {
		u := p.AddUTF8(desc)
		p.entries[i].A = u
	}
}

// SetNameAndType repoints the member ref, Dynamic or InvokeDynamic
// entry at i to a NameAndType of name and desc.
// The previous NameAndType is left alone, since other entries may share it.
func (p *Pool) SetNameAndType(i uint16, name, desc string) {
	switch p.Tag(i) {
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagDynamic, TagInvokeDynamic:
		nt := p.AddNameAndType(name, desc)
		p.entries[i].B = nt
	}
}

// decodeMUTF8 decodes the modified UTF-8 used by class files:
// NUL is encoded in two bytes and supplementary characters
// as surrogate pairs of three bytes each. An unpaired surrogate
// is kept as its three-byte encoding (WTF-8), so that
// encodeMUTF8 restores the original bytes.
func decodeMUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	var units []uint16
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xe0 == 0xc0 && i+1 < len(b):
			units = append(units, uint16(c&0x1f)<<6|uint16(b[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0 && i+2 < len(b):
			units = append(units, uint16(c&0x0f)<<12|uint16(b[i+1]&0x3f)<<6|uint16(b[i+2]&0x3f))
			i += 3
		default:
			units = append(units, 0xfffd)
			i++
		}
	}
	var sb strings.Builder
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xd800 && u < 0xdc00 && i+1 < len(units) && units[i+1] >= 0xdc00 && units[i+1] < 0xe000 {
			sb.WriteRune(rune(u-0xd800)<<10 | rune(units[i+1]-0xdc00) + 0x10000)
			i++
			continue
		}
		if u >= 0xd800 && u < 0xe000 {
			sb.WriteByte(0xe0 | byte(u>>12))
			sb.WriteByte(0x80 | byte(u>>6&0x3f))
			sb.WriteByte(0x80 | byte(u&0x3f))
			continue
		}
		sb.WriteRune(rune(u))
	}
	return sb.String()
}

// isSurrogate reports whether s starts with the three-byte
// encoding of a surrogate code unit.
func isSurrogate(s string) bool {
	return len(s) >= 3 && s[0] == 0xed && s[1]&0xe0 == 0xa0 && s[2]&0xc0 == 0x80
}

func encodeMUTF8(s string) []byte {
	b := make([]byte, 0, len(s))
	put := func(u uint16) {
		switch {
		case u != 0 && u < 0x80:
			b = append(b, byte(u))
		case u < 0x800:
			b = append(b, 0xc0|byte(u>>6), 0x80|byte(u&0x3f))
		default:
			b = append(b, 0xe0|byte(u>>12), 0x80|byte(u>>6&0x3f), 0x80|byte(u&0x3f))
		}
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 && isSurrogate(s[i:]) {
			b = append(b, s[i:i+3]...)
			i += 3
			continue
		}
		i += size
		if r >= 0x10000 {
			r -= 0x10000
			put(uint16(0xd800 + r>>10))
			put(uint16(0xdc00 + r&0x3ff))
			continue
		}
		put(uint16(r))
	}
	return b
}
