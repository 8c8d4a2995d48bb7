// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import "golang.org/x/xerrors"

func decodeErr(name string, r *reader) error {
	if r.err == nil && !r.done() {
		r.fail("%d bytes of trailing data", len(r.data)-r.pos)
	}
	if r.err != nil {
		return xerrors.Errorf("decoding %s: %w", name, r.err)
	}
	return nil
}

// DecodeIndex decodes an attribute whose payload is a single
// constant pool index, such as SourceFile or Signature.
func DecodeIndex(a *Attribute) (uint16, error) {
	r := &reader{data: a.Data}
	i := r.u2()
	return i, decodeErr("index attribute", r)
}

// EncodeIndex encodes a single constant pool index payload.
func EncodeIndex(i uint16) []byte {
	return []byte{byte(i >> 8), byte(i)}
}

// A Code attribute holds a method body.
type Code struct {
	MaxStack   uint16
	MaxLocals  uint16
	Code       []byte
	Handlers   []Handler
	Attributes []*Attribute
}

// A Handler is one exception_table entry.
type Handler struct {
	Start, End, PC uint16
	CatchType      uint16
}

// DecodeCode decodes a Code attribute payload.
func DecodeCode(a *Attribute) (*Code, error) {
	r := &reader{data: a.Data}
	c := &Code{MaxStack: r.u2(), MaxLocals: r.u2()}
	c.Code = r.bytes(int(r.u4()))
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		c.Handlers = append(c.Handlers, Handler{r.u2(), r.u2(), r.u2(), r.u2()})
	}
	c.Attributes = readAttributes(r)
	return c, decodeErr("Code", r)
}

// Encode returns the Code attribute payload.
func (c *Code) Encode() []byte {
	e := &encoder{buf: make([]byte, 0, 12+len(c.Code))}
	e.u2(c.MaxStack)
	e.u2(c.MaxLocals)
	e.u4(uint32(len(c.Code)))
	e.bytes(c.Code)
	e.u2(uint16(len(c.Handlers)))
	for _, h := range c.Handlers {
		e.u2(h.Start)
		e.u2(h.End)
		e.u2(h.PC)
		e.u2(h.CatchType)
	}
	writeAttributes(e, c.Attributes)
	return e.buf
}

// A LocalVarRow is one LocalVariableTable or LocalVariableTypeTable row.
// For the type table, DescIndex names the generic signature.
type LocalVarRow struct {
	StartPC   uint16
	Length    uint16
	NameIndex uint16
	DescIndex uint16
	Slot      uint16
}

// DecodeLocalVars decodes a LocalVariableTable or LocalVariableTypeTable payload.
func DecodeLocalVars(a *Attribute) ([]LocalVarRow, error) {
	r := &reader{data: a.Data}
	n := int(r.u2())
	rows := make([]LocalVarRow, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		rows = append(rows, LocalVarRow{r.u2(), r.u2(), r.u2(), r.u2(), r.u2()})
	}
	return rows, decodeErr("LocalVariableTable", r)
}

// EncodeLocalVars encodes a LocalVariableTable or LocalVariableTypeTable payload.
func EncodeLocalVars(rows []LocalVarRow) []byte {
	e := &encoder{buf: make([]byte, 0, 2+10*len(rows))}
	e.u2(uint16(len(rows)))
	for _, v := range rows {
		e.u2(v.StartPC)
		e.u2(v.Length)
		e.u2(v.NameIndex)
		e.u2(v.DescIndex)
		e.u2(v.Slot)
	}
	return e.buf
}

// A LineNumber is one LineNumberTable row.
type LineNumber struct {
	StartPC uint16
	Line    uint16
}

// DecodeLineNumbers decodes a LineNumberTable payload.
func DecodeLineNumbers(a *Attribute) ([]LineNumber, error) {
	r := &reader{data: a.Data}
	n := int(r.u2())
	var rows []LineNumber
	for i := 0; i < n && r.err == nil; i++ {
		rows = append(rows, LineNumber{r.u2(), r.u2()})
	}
	return rows, decodeErr("LineNumberTable", r)
}

// A ParamRow is one MethodParameters entry. A zero NameIndex means no name.
type ParamRow struct {
	NameIndex uint16
	Access    uint16
}

// DecodeMethodParameters decodes a MethodParameters payload.
func DecodeMethodParameters(a *Attribute) ([]ParamRow, error) {
	r := &reader{data: a.Data}
	n := int(r.u1())
	rows := make([]ParamRow, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		rows = append(rows, ParamRow{r.u2(), r.u2()})
	}
	return rows, decodeErr("MethodParameters", r)
}

// EncodeMethodParameters encodes a MethodParameters payload.
func EncodeMethodParameters(rows []ParamRow) []byte {
	e := &encoder{}
	e.u1(uint8(len(rows)))
	for _, p := range rows {
		e.u2(p.NameIndex)
		e.u2(p.Access)
	}
	return e.buf
}

// A BootstrapMethod is one BootstrapMethods entry.
type BootstrapMethod struct {
	Ref  uint16 // MethodHandle
	Args []uint16
}

// DecodeBootstrapMethods decodes a BootstrapMethods payload.
func DecodeBootstrapMethods(a *Attribute) ([]BootstrapMethod, error) {
	r := &reader{data: a.Data}
	n := int(r.u2())
	var list []BootstrapMethod
	for i := 0; i < n && r.err == nil; i++ {
		b := BootstrapMethod{Ref: r.u2()}
		m := int(r.u2())
		for j := 0; j < m && r.err == nil; j++ {
			b.Args = append(b.Args, r.u2())
		}
		list = append(list, b)
	}
	return list, decodeErr("BootstrapMethods", r)
}

// EncodeBootstrapMethods encodes a BootstrapMethods payload.
func EncodeBootstrapMethods(list []BootstrapMethod) []byte {
	e := &encoder{}
	e.u2(uint16(len(list)))
	for _, b := range list {
		e.u2(b.Ref)
		e.u2(uint16(len(b.Args)))
		for _, a := range b.Args {
			e.u2(a)
		}
	}
	return e.buf
}

// An InnerClass is one InnerClasses entry.
type InnerClass struct {
	Inner, Outer uint16 // Class, or 0
	Name         uint16 // simple name Utf8, or 0 for anonymous classes
	Access       uint16
}

// DecodeInnerClasses decodes an InnerClasses payload.
func DecodeInnerClasses(a *Attribute) ([]InnerClass, error) {
	r := &reader{data: a.Data}
	n := int(r.u2())
	var list []InnerClass
	for i := 0; i < n && r.err == nil; i++ {
		list = append(list, InnerClass{r.u2(), r.u2(), r.u2(), r.u2()})
	}
	return list, decodeErr("InnerClasses", r)
}

// EncodeInnerClasses encodes an InnerClasses payload.
func EncodeInnerClasses(list []InnerClass) []byte {
	e := &encoder{}
	e.u2(uint16(len(list)))
	for _, c := range list {
		e.u2(c.Inner)
		e.u2(c.Outer)
		e.u2(c.Name)
		e.u2(c.Access)
	}
	return e.buf
}

// DecodeEnclosingMethod decodes an EnclosingMethod payload.
// method is a NameAndType index, or 0.
func DecodeEnclosingMethod(a *Attribute) (class, method uint16, err error) {
	r := &reader{data: a.Data}
	class, method = r.u2(), r.u2()
	return class, method, decodeErr("EnclosingMethod", r)
}

// EncodeEnclosingMethod encodes an EnclosingMethod payload.
func EncodeEnclosingMethod(class, method uint16) []byte {
	e := &encoder{}
	e.u2(class)
	e.u2(method)
	return e.buf
}

// A RecordComponent is one Record attribute entry.
type RecordComponent struct {
	NameIndex  uint16
	DescIndex  uint16
	Attributes []*Attribute
}

// DecodeRecord decodes a Record payload.
func DecodeRecord(a *Attribute) ([]*RecordComponent, error) {
	r := &reader{data: a.Data}
	n := int(r.u2())
	var list []*RecordComponent
	for i := 0; i < n && r.err == nil; i++ {
		rc := &RecordComponent{NameIndex: r.u2(), DescIndex: r.u2()}
		rc.Attributes = readAttributes(r)
		list = append(list, rc)
	}
	return list, decodeErr("Record", r)
}

// EncodeRecord encodes a Record payload.
func EncodeRecord(list []*RecordComponent) []byte {
	e := &encoder{}
	e.u2(uint16(len(list)))
	for _, rc := range list {
		e.u2(rc.NameIndex)
		e.u2(rc.DescIndex)
		writeAttributes(e, rc.Attributes)
	}
	return e.buf
}
