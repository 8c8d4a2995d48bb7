// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"rsc.io/remap/classfile"
	"rsc.io/remap/hierarchy"
)

// A methodTransformer rewrites a method: the references in its code,
// its annotations and debug tables, its argument and local variable
// names, and finally its own name and descriptor.
type methodTransformer struct {
	x *classContext
}

func (t *methodTransformer) transform(m *classfile.Member) error {
	x := t.x
	name, desc := m.Name(x.p), m.Desc(x.p)

	var errs ErrorList
	at := Pos{x.self, name + desc}
	for _, a := range m.Attributes {
		var err error
		if x.p.UTF8(a.NameIndex) == classfile.AttrCode {
			err = t.code(a, at, &errs)
		} else {
			err = x.attribute(a)
		}
		if err != nil {
			return err
		}
	}

	if !x.cfg.SkipLocalMapping || x.cfg.RenameInvalidLocals {
		b, err := classfile.DecodeBody(x.p, m)
		if err != nil {
			return err
		}
		if x.cfg.processLocals(len(b.Locals) > 0, len(b.Params) > 0) {
			if err := t.locals(b, registry{}); err != nil {
				errs.Add(at, err)
			} else {
				b.Apply(x.p)
			}
		}
	}

	m.NameIndex = x.p.RenameUTF8(m.NameIndex, x.r.MapMethodName(x.self, name, desc))
	m.DescIndex = x.p.RenameUTF8(m.DescIndex, x.r.MapDesc(desc))
	return errs.Err()
}

// code rewrites the references made by the instructions of a Code
// attribute and the descriptors in its debug tables. Access check
// failures are added to errs.
func (t *methodTransformer) code(a *classfile.Attribute, at Pos, errs *ErrorList) error {
	x := t.x
	code, err := classfile.DecodeCode(a)
	if err != nil {
		return err
	}
	err = classfile.Walk(code.Code, func(in classfile.Insn) {
		switch {
		case in.Op >= classfile.OpGetstatic && in.Op <= classfile.OpPutfield:
			t.checkAccess(in.Index, hierarchy.Field, at, errs)
		case in.Op >= classfile.OpInvokevirtual && in.Op <= classfile.OpInvokeinterface:
			t.checkAccess(in.Index, hierarchy.Method, at, errs)
		}
		if in.Index != 0 {
			x.pool.entry(in.Index)
		}
	}, nil)
	if err != nil {
		return err
	}
	for _, h := range code.Handlers {
		x.pool.entry(h.CatchType)
	}

	for _, ca := range code.Attributes {
		switch x.p.UTF8(ca.NameIndex) {
		case classfile.AttrLocalVariableTable, classfile.AttrLocalVariableTypeTable:
			typeTable := x.p.UTF8(ca.NameIndex) == classfile.AttrLocalVariableTypeTable
			rows, err := classfile.DecodeLocalVars(ca)
			if err != nil {
				return err
			}
			for i := range rows {
				d := x.p.UTF8(rows[i].DescIndex)
				if typeTable {
					d = x.r.MapSignature(d)
				} else {
					d = x.r.MapDesc(d)
				}
				rows[i].DescIndex = x.p.RenameUTF8(rows[i].DescIndex, d)
			}
			ca.Data = classfile.EncodeLocalVars(rows)

		case classfile.AttrRuntimeVisibleTypeAnnotations, classfile.AttrRuntimeInvisibleTypeAnnotations:
			if err := x.attribute(ca); err != nil {
				return err
			}
		}
	}
	a.Data = code.Encode()
	return nil
}

// checkAccess runs the package access check on the member reference at
// pool index i, using the names as they were before remapping.
func (t *methodTransformer) checkAccess(i uint16, kind hierarchy.MemberKind, at Pos, errs *ErrorList) {
	x := t.x
	if !x.cfg.CheckPackageAccess {
		return
	}
	owner, name, desc := x.pool.orig.MemberRef(i)
	if err := x.r.CheckPackageAccess(x.self, owner, name, desc, kind); err != nil {
		errs.Add(at, err)
	}
}
