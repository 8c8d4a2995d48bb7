// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import (
	"sort"

	"golang.org/x/xerrors"
)

// A Body is a method materialized for random access: its instruction
// stream with label pseudo-instructions, its local variable table and
// its parameter metadata. Apply writes the tables back to the method.
type Body struct {
	Access uint16
	Name   string
	Desc   string
	Insns  []Insn

	// Locals is nil when the method has no LocalVariableTable.
	Locals []*LocalVar

	// Params is nil when the method has no MethodParameters attribute.
	Params []*Param

	member    *Member
	code      *Code
	codeAttr  *Attribute
	hadLocals bool
	types     []typeTable
}

// A typeTable is a LocalVariableTypeTable attribute. Each row whose
// slot and range match a LocalVariableTable row follows that row's name.
type typeTable struct {
	attr *Attribute
	rows []LocalVarRow
	vars []*LocalVar
}

// A LocalVar is one local variable table entry.
// Start and End are code offsets, both of which carry a label.
type LocalVar struct {
	Slot  int
	Name  string
	Desc  string
	Start int
	End   int
}

// A Param is one MethodParameters entry. An empty Name means no name.
type Param struct {
	Name   string
	Access uint16
}

// DecodeBody materializes the body of method m.
// Labels are placed at the code start and end and at every offset
// referenced by a branch, an exception handler, a line number
// or a local variable range.
func DecodeBody(p *Pool, m *Member) (*Body, error) {
	b := &Body{
		Access: m.Access,
		Name:   m.Name(p),
		Desc:   m.Desc(p),
		member: m,
	}
	if a := Find(p, m.Attributes, AttrMethodParameters); a != nil {
		rows, err := DecodeMethodParameters(a)
		if err != nil {
			return nil, xerrors.Errorf("%s%s: %w", b.Name, b.Desc, err)
		}
		b.Params = make([]*Param, 0, len(rows))
		for _, r := range rows {
			b.Params = append(b.Params, &Param{Name: p.UTF8(r.NameIndex), Access: r.Access})
		}
	}

	b.codeAttr = Find(p, m.Attributes, AttrCode)
	if b.codeAttr == nil {
		return b, nil
	}
	code, err := DecodeCode(b.codeAttr)
	if err != nil {
		return nil, xerrors.Errorf("%s%s: %w", b.Name, b.Desc, err)
	}
	b.code = code

	labels := map[int]bool{0: true, len(code.Code): true}
	var real []Insn
	err = Walk(code.Code, func(in Insn) { real = append(real, in) }, func(t int) { labels[t] = true })
	if err != nil {
		return nil, xerrors.Errorf("%s%s: %w", b.Name, b.Desc, err)
	}
	for _, h := range code.Handlers {
		labels[int(h.Start)] = true
		labels[int(h.End)] = true
		labels[int(h.PC)] = true
	}
	for _, a := range code.Attributes {
		switch p.UTF8(a.NameIndex) {
		case AttrLineNumberTable:
			rows, err := DecodeLineNumbers(a)
			if err != nil {
				return nil, xerrors.Errorf("%s%s: %w", b.Name, b.Desc, err)
			}
			for _, r := range rows {
				labels[int(r.StartPC)] = true
			}
		case AttrLocalVariableTable, AttrLocalVariableTypeTable:
			rows, err := DecodeLocalVars(a)
			if err != nil {
				return nil, xerrors.Errorf("%s%s: %w", b.Name, b.Desc, err)
			}
			for _, r := range rows {
				labels[int(r.StartPC)] = true
				labels[int(r.StartPC)+int(r.Length)] = true
			}
			if p.UTF8(a.NameIndex) != AttrLocalVariableTable {
				b.types = append(b.types, typeTable{attr: a, rows: rows})
				continue
			}
			b.hadLocals = true
			if b.Locals == nil {
				b.Locals = make([]*LocalVar, 0, len(rows))
			}
			for _, r := range rows {
				b.Locals = append(b.Locals, &LocalVar{
					Slot:  int(r.Slot),
					Name:  p.UTF8(r.NameIndex),
					Desc:  p.UTF8(r.DescIndex),
					Start: int(r.StartPC),
					End:   int(r.StartPC) + int(r.Length),
				})
			}
		}
	}

	for i := range b.types {
		tt := &b.types[i]
		tt.vars = make([]*LocalVar, len(tt.rows))
		for j, r := range tt.rows {
			for _, v := range b.Locals {
				if v.Slot == int(r.Slot) && v.Start == int(r.StartPC) && v.End == int(r.StartPC)+int(r.Length) {
					tt.vars[j] = v
					break
				}
			}
		}
	}

	offs := make([]int, 0, len(labels))
	for off := range labels {
		if off >= 0 && off <= len(code.Code) {
			offs = append(offs, off)
		}
	}
	sort.Ints(offs)
	b.Insns = make([]Insn, 0, len(real)+len(offs))
	i := 0
	for _, in := range real {
		for i < len(offs) && offs[i] <= in.Offset {
			b.Insns = append(b.Insns, Insn{Offset: offs[i], Op: OpLabel})
			i++
		}
		b.Insns = append(b.Insns, in)
	}
	for ; i < len(offs); i++ {
		b.Insns = append(b.Insns, Insn{Offset: offs[i], Op: OpLabel})
	}
	return b, nil
}

// HasCode reports whether the method has a non-empty Code attribute.
func (b *Body) HasCode() bool { return b.code != nil && len(b.code.Code) > 0 }

// RealInsnsBefore returns the number of real (non-label) instructions
// preceding the label at offset off.
func (b *Body) RealInsnsBefore(off int) int {
	n := 0
	for _, in := range b.Insns {
		if in.Offset >= off {
			break
		}
		if !in.IsLabel() {
			n++
		}
	}
	return n
}

// LabelBounds returns the offsets of the first and last labels in the body.
// ok is false if the body has no labels.
func (b *Body) LabelBounds() (first, last int, ok bool) {
	for _, in := range b.Insns {
		if in.IsLabel() {
			if !ok {
				first = in.Offset
			}
			last = in.Offset
			ok = true
		}
	}
	return first, last, ok
}

// Apply writes the local variable table and parameter metadata back to
// the method, adding names to p as needed. Local variable type table
// rows take the names of the local variable table rows they describe.
func (b *Body) Apply(p *Pool) {
	if b.code != nil && (len(b.Locals) > 0 || b.hadLocals) {
		rows := make([]LocalVarRow, 0, len(b.Locals))
		for _, v := range b.Locals {
			rows = append(rows, LocalVarRow{
				StartPC:   uint16(v.Start),
				Length:    uint16(v.End - v.Start),
				NameIndex: p.AddUTF8(v.Name),
				DescIndex: p.AddUTF8(v.Desc),
				Slot:      uint16(v.Slot),
			})
		}
		data := EncodeLocalVars(rows)
		var attrs []*Attribute
		placed := false
		for _, a := range b.code.Attributes {
			if p.UTF8(a.NameIndex) != AttrLocalVariableTable {
				attrs = append(attrs, a)
			} else if !placed {
				a.Data = data
				attrs = append(attrs, a)
				placed = true
			}
		}
		if !placed {
			attrs = append(attrs, &Attribute{NameIndex: p.AddUTF8(AttrLocalVariableTable), Data: data})
		}
		b.code.Attributes = attrs
		for _, tt := range b.types {
			for j, v := range tt.vars {
				if v != nil && v.Name != p.UTF8(tt.rows[j].NameIndex) {
					tt.rows[j].NameIndex = p.AddUTF8(v.Name)
				}
			}
			tt.attr.Data = EncodeLocalVars(tt.rows)
		}
		b.codeAttr.Data = b.code.Encode()
	}
	if b.Params != nil {
		rows := make([]ParamRow, 0, len(b.Params))
		for _, prm := range b.Params {
			r := ParamRow{Access: prm.Access}
			if prm.Name != "" {
				r.NameIndex = p.AddUTF8(prm.Name)
			}
			rows = append(rows, r)
		}
		b.member.Attributes = Put(p, b.member.Attributes, AttrMethodParameters, EncodeMethodParameters(rows))
	}
}

// Code returns the decoded Code attribute, or nil.
// Changes to its attributes are written back by Apply
// only when the body has a local variable table.
func (b *Body) Code() *Code { return b.code }
