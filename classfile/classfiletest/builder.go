// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classfiletest assembles small class files for tests.
//
// A ClassBuilder produces a classfile.Class directly, so tests can
// describe the classes they need in a few lines instead of carrying
// compiled binaries:
//
//	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
//	m := b.Method(classfile.AccPublic, "run", "(I)V")
//	m.Load(classfile.OpIload, 1)
//	m.Return()
//	m.Local(1, "n", "I", 0, -1)
//	c := b.Class()
package classfiletest

import (
	"encoding/binary"

	"rsc.io/remap/classfile"
)

// Metafactory is the bootstrap method javac uses for lambdas.
var Metafactory = classfile.Handle{
	Kind:  classfile.RefInvokeStatic,
	Owner: "java/lang/invoke/LambdaMetafactory",
	Name:  "metafactory",
	Desc:  "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;",
}

// A ClassBuilder assembles one class.
type ClassBuilder struct {
	c       *classfile.Class
	p       *classfile.Pool
	methods []*MethodBuilder
	bsms    []classfile.BootstrapMethod
	inner   []classfile.InnerClass
	built   bool
}

// NewClass starts a class named name. An empty super means none.
func NewClass(name, super string, interfaces ...string) *ClassBuilder {
	p := classfile.NewPool()
	c := &classfile.Class{
		Major:  52,
		Pool:   p,
		Access: classfile.AccPublic | classfile.AccSuper,
		This:   p.AddClass(name),
	}
	if super != "" {
		c.Super = p.AddClass(super)
	}
	for _, s := range interfaces {
		c.Interfaces = append(c.Interfaces, p.AddClass(s))
	}
	return &ClassBuilder{c: c, p: p}
}

// Pool returns the constant pool being filled in.
func (b *ClassBuilder) Pool() *classfile.Pool { return b.p }

// Access sets the class access flags.
func (b *ClassBuilder) Access(flags uint16) *ClassBuilder {
	b.c.Access = flags
	return b
}

// Attr adds a class attribute.
func (b *ClassBuilder) Attr(name string, data []byte) *ClassBuilder {
	b.c.Attributes = append(b.c.Attributes, &classfile.Attribute{NameIndex: b.p.AddUTF8(name), Data: data})
	return b
}

// SourceFile adds a SourceFile attribute.
func (b *ClassBuilder) SourceFile(name string) *ClassBuilder {
	return b.Attr(classfile.AttrSourceFile, classfile.EncodeIndex(b.p.AddUTF8(name)))
}

// Signature adds a class Signature attribute.
func (b *ClassBuilder) Signature(sig string) *ClassBuilder {
	return b.Attr(classfile.AttrSignature, classfile.EncodeIndex(b.p.AddUTF8(sig)))
}

// Annotations adds a RuntimeVisibleAnnotations attribute to the class.
func (b *ClassBuilder) Annotations(list ...*classfile.Annotation) *ClassBuilder {
	return b.Attr(classfile.AttrRuntimeVisibleAnnotations, classfile.EncodeAnnotations(list))
}

// Inner records an InnerClasses entry. Empty outer or simple name
// are written as 0.
func (b *ClassBuilder) Inner(inner, outer, simple string, access uint16) *ClassBuilder {
	ic := classfile.InnerClass{Inner: b.p.AddClass(inner), Access: access}
	if outer != "" {
		ic.Outer = b.p.AddClass(outer)
	}
	if simple != "" {
		ic.Name = b.p.AddUTF8(simple)
	}
	b.inner = append(b.inner, ic)
	return b
}

// EnclosingMethod adds an EnclosingMethod attribute.
// An empty name means the class is not enclosed by a method.
func (b *ClassBuilder) EnclosingMethod(class, name, desc string) *ClassBuilder {
	var nt uint16
	if name != "" {
		nt = b.p.AddNameAndType(name, desc)
	}
	return b.Attr(classfile.AttrEnclosingMethod, classfile.EncodeEnclosingMethod(b.p.AddClass(class), nt))
}

// Record adds a Record attribute with one component per name, desc pair.
func (b *ClassBuilder) Record(components ...string) *ClassBuilder {
	var list []*classfile.RecordComponent
	for i := 0; i+1 < len(components); i += 2 {
		list = append(list, &classfile.RecordComponent{
			NameIndex: b.p.AddUTF8(components[i]),
			DescIndex: b.p.AddUTF8(components[i+1]),
		})
	}
	return b.Attr(classfile.AttrRecord, classfile.EncodeRecord(list))
}

// Bootstrap adds a BootstrapMethods entry and returns its index.
// args are constant pool indices.
func (b *ClassBuilder) Bootstrap(h classfile.Handle, args ...uint16) uint16 {
	b.bsms = append(b.bsms, classfile.BootstrapMethod{Ref: b.p.AddMethodHandle(h), Args: args})
	return uint16(len(b.bsms) - 1)
}

// Field adds a field.
func (b *ClassBuilder) Field(access uint16, name, desc string) *MemberBuilder {
	m := &classfile.Member{Access: access, NameIndex: b.p.AddUTF8(name), DescIndex: b.p.AddUTF8(desc)}
	b.c.Fields = append(b.c.Fields, m)
	return &MemberBuilder{b: b, m: m}
}

// Method adds a method. It gets a Code attribute once an instruction,
// local or handler is added to it.
func (b *ClassBuilder) Method(access uint16, name, desc string) *MethodBuilder {
	m := &classfile.Member{Access: access, NameIndex: b.p.AddUTF8(name), DescIndex: b.p.AddUTF8(desc)}
	b.c.Methods = append(b.c.Methods, m)
	mb := &MethodBuilder{MemberBuilder: MemberBuilder{b: b, m: m}, maxLocals: 16, maxStack: 16}
	b.methods = append(b.methods, mb)
	return mb
}

// Class finishes the class and returns it.
// Later calls return the same class.
func (b *ClassBuilder) Class() *classfile.Class {
	if b.built {
		return b.c
	}
	b.built = true
	for _, m := range b.methods {
		m.finish()
	}
	if len(b.inner) > 0 {
		b.Attr(classfile.AttrInnerClasses, classfile.EncodeInnerClasses(b.inner))
	}
	if len(b.bsms) > 0 {
		b.Attr(classfile.AttrBootstrapMethods, classfile.EncodeBootstrapMethods(b.bsms))
	}
	return b.c
}

// Bytes finishes the class and encodes it. It panics if encoding fails.
func (b *ClassBuilder) Bytes() []byte {
	data, err := classfile.Write(b.Class())
	if err != nil {
		panic(err)
	}
	return data
}

// Annotation builds an annotation of type desc.
// pairs alternate element names and values.
func (b *ClassBuilder) Annotation(desc string, pairs ...interface{}) *classfile.Annotation {
	a := &classfile.Annotation{TypeIndex: b.p.AddUTF8(desc)}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Elements = append(a.Elements, classfile.ElementPair{
			NameIndex: b.p.AddUTF8(pairs[i].(string)),
			Value:     pairs[i+1].(*classfile.ElementValue),
		})
	}
	return a
}

// StringValue returns a string element value.
func (b *ClassBuilder) StringValue(s string) *classfile.ElementValue {
	return &classfile.ElementValue{Tag: 's', Const: b.p.AddUTF8(s)}
}

// IntValue returns an int element value.
func (b *ClassBuilder) IntValue(v int32) *classfile.ElementValue {
	return &classfile.ElementValue{Tag: 'I', Const: b.p.AddInteger(v)}
}

// ClassValue returns a class literal element value.
func (b *ClassBuilder) ClassValue(desc string) *classfile.ElementValue {
	return &classfile.ElementValue{Tag: 'c', Const: b.p.AddUTF8(desc)}
}

// EnumValue returns an enum constant element value.
func (b *ClassBuilder) EnumValue(desc, name string) *classfile.ElementValue {
	return &classfile.ElementValue{Tag: 'e', EnumType: b.p.AddUTF8(desc), Const: b.p.AddUTF8(name)}
}

// Nested returns an annotation element value.
func Nested(a *classfile.Annotation) *classfile.ElementValue {
	return &classfile.ElementValue{Tag: '@', Annotation: a}
}

// Array returns an array element value.
func Array(values ...*classfile.ElementValue) *classfile.ElementValue {
	if values == nil {
		values = []*classfile.ElementValue{}
	}
	return &classfile.ElementValue{Tag: '[', Values: values}
}

// A MemberBuilder adds attributes to a field or method.
type MemberBuilder struct {
	b *ClassBuilder
	m *classfile.Member
}

// Member returns the member being built.
func (mb *MemberBuilder) Member() *classfile.Member { return mb.m }

// Attr adds a member attribute.
func (mb *MemberBuilder) Attr(name string, data []byte) {
	mb.m.Attributes = append(mb.m.Attributes, &classfile.Attribute{NameIndex: mb.b.p.AddUTF8(name), Data: data})
}

// Signature adds a Signature attribute.
func (mb *MemberBuilder) Signature(sig string) {
	mb.Attr(classfile.AttrSignature, classfile.EncodeIndex(mb.b.p.AddUTF8(sig)))
}

// Annotations adds a RuntimeVisibleAnnotations attribute.
func (mb *MemberBuilder) Annotations(list ...*classfile.Annotation) {
	mb.Attr(classfile.AttrRuntimeVisibleAnnotations, classfile.EncodeAnnotations(list))
}

// ParamAnnotations adds a RuntimeVisibleParameterAnnotations attribute.
func (mb *MemberBuilder) ParamAnnotations(params ...[]*classfile.Annotation) {
	mb.Attr(classfile.AttrRuntimeVisibleParameterAnnotations, classfile.EncodeParameterAnnotations(params))
}

// Default adds an AnnotationDefault attribute.
func (mb *MemberBuilder) Default(v *classfile.ElementValue) {
	mb.Attr(classfile.AttrAnnotationDefault, classfile.EncodeElementValue(v))
}

// Throws adds an Exceptions attribute.
func (mb *MemberBuilder) Throws(classes ...string) {
	data := binary.BigEndian.AppendUint16(nil, uint16(len(classes)))
	for _, c := range classes {
		data = binary.BigEndian.AppendUint16(data, mb.b.p.AddClass(c))
	}
	mb.Attr(classfile.AttrExceptions, data)
}

// A MethodBuilder assembles a method body.
type MethodBuilder struct {
	MemberBuilder
	code      []byte
	hasCode   bool
	handlers  []classfile.Handler
	locals    []local
	types     []local
	maxLocals uint16
	maxStack  uint16
}

type local struct {
	slot       int
	name, desc string
	start, end int
}

// Offset returns the offset of the next instruction.
func (mb *MethodBuilder) Offset() int { return len(mb.code) }

func (mb *MethodBuilder) emit(b ...byte) {
	mb.hasCode = true
	mb.code = append(mb.code, b...)
}

func (mb *MethodBuilder) emitIndex(op int, i uint16) {
	mb.emit(byte(op), byte(i>>8), byte(i))
}

// Op emits a one-byte instruction.
func (mb *MethodBuilder) Op(op int) { mb.emit(byte(op)) }

// Return emits a void return.
func (mb *MethodBuilder) Return() { mb.Op(classfile.OpReturn) }

// Load emits a local variable instruction such as iload or astore.
func (mb *MethodBuilder) Load(op, slot int) { mb.emit(byte(op), byte(slot)) }

// Jump emits a branch instruction to the absolute offset target.
func (mb *MethodBuilder) Jump(op, target int) {
	rel := target - len(mb.code)
	mb.emit(byte(op), byte(rel>>8), byte(rel))
}

// Field emits a field instruction.
func (mb *MethodBuilder) Field(op int, owner, name, desc string) {
	mb.emitIndex(op, mb.b.p.AddMemberRef(classfile.TagFieldref, owner, name, desc))
}

// Invoke emits invokevirtual, invokespecial or invokestatic.
func (mb *MethodBuilder) Invoke(op int, owner, name, desc string) {
	mb.emitIndex(op, mb.b.p.AddMemberRef(classfile.TagMethodref, owner, name, desc))
}

// InvokeInterface emits invokeinterface.
func (mb *MethodBuilder) InvokeInterface(owner, name, desc string, nargs int) {
	mb.emitIndex(classfile.OpInvokeinterface, mb.b.p.AddMemberRef(classfile.TagInterfaceMethodref, owner, name, desc))
	mb.emit(byte(nargs), 0)
}

// InvokeDynamic emits invokedynamic for bootstrap method bsm.
func (mb *MethodBuilder) InvokeDynamic(bsm uint16, name, desc string) {
	mb.emitIndex(classfile.OpInvokedynamic, mb.b.p.AddInvokeDynamic(bsm, name, desc))
	mb.emit(0, 0)
}

// Type emits new, anewarray, checkcast or instanceof.
func (mb *MethodBuilder) Type(op int, class string) {
	mb.emitIndex(op, mb.b.p.AddClass(class))
}

// Ldc loads constant i, using ldc_w when i does not fit in a byte.
func (mb *MethodBuilder) Ldc(i uint16) {
	if i < 256 {
		mb.emit(classfile.OpLdc, byte(i))
		return
	}
	mb.emitIndex(classfile.OpLdcW, i)
}

// Catch adds an exception handler. An empty class catches everything.
func (mb *MethodBuilder) Catch(start, end, pc int, class string) {
	h := classfile.Handler{Start: uint16(start), End: uint16(end), PC: uint16(pc)}
	if class != "" {
		h.CatchType = mb.b.p.AddClass(class)
	}
	mb.hasCode = true
	mb.handlers = append(mb.handlers, h)
}

// Local adds a LocalVariableTable row. An end of -1 means the end of the code.
func (mb *MethodBuilder) Local(slot int, name, desc string, start, end int) {
	mb.hasCode = true
	mb.locals = append(mb.locals, local{slot, name, desc, start, end})
}

// LocalType adds a LocalVariableTypeTable row.
func (mb *MethodBuilder) LocalType(slot int, name, sig string, start, end int) {
	mb.hasCode = true
	mb.types = append(mb.types, local{slot, name, sig, start, end})
}

// Params adds a MethodParameters attribute. Empty names are written as 0.
func (mb *MethodBuilder) Params(names ...string) {
	rows := make([]classfile.ParamRow, len(names))
	for i, n := range names {
		if n != "" {
			rows[i].NameIndex = mb.b.p.AddUTF8(n)
		}
	}
	mb.Attr(classfile.AttrMethodParameters, classfile.EncodeMethodParameters(rows))
}

// MaxLocals sets max_locals.
func (mb *MethodBuilder) MaxLocals(n int) { mb.maxLocals = uint16(n) }

func (mb *MethodBuilder) finish() {
	if !mb.hasCode {
		return
	}
	p := mb.b.p
	code := &classfile.Code{
		MaxStack:  mb.maxStack,
		MaxLocals: mb.maxLocals,
		Code:      mb.code,
		Handlers:  mb.handlers,
	}
	rows := func(list []local) []byte {
		var out []classfile.LocalVarRow
		for _, l := range list {
			end := l.end
			if end < 0 {
				end = len(mb.code)
			}
			out = append(out, classfile.LocalVarRow{
				StartPC:   uint16(l.start),
				Length:    uint16(end - l.start),
				NameIndex: p.AddUTF8(l.name),
				DescIndex: p.AddUTF8(l.desc),
				Slot:      uint16(l.slot),
			})
		}
		return classfile.EncodeLocalVars(out)
	}
	if len(mb.locals) > 0 {
		code.Attributes = append(code.Attributes, &classfile.Attribute{NameIndex: p.AddUTF8(classfile.AttrLocalVariableTable), Data: rows(mb.locals)})
	}
	if len(mb.types) > 0 {
		code.Attributes = append(code.Attributes, &classfile.Attribute{NameIndex: p.AddUTF8(classfile.AttrLocalVariableTypeTable), Data: rows(mb.types)})
	}
	a := &classfile.Attribute{NameIndex: p.AddUTF8(classfile.AttrCode), Data: code.Encode()}
	mb.m.Attributes = append([]*classfile.Attribute{a}, mb.m.Attributes...)
}
