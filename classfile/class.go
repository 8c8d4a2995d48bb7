// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classfile reads and writes JVM class files.
//
// A Class keeps every section of the input: the constant pool entry for
// entry, and every attribute as its raw payload. Attributes the remapper
// needs to look inside (Code, LocalVariableTable, MethodParameters,
// annotations, BootstrapMethods, ...) have decoders and encoders in this
// package; everything else is written back untouched.
package classfile

// Access flags.
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSuper        = 0x0020
	AccSynchronized = 0x0020
	AccBridge       = 0x0040
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccInterface    = 0x0200
	AccAbstract     = 0x0400
	AccSynthetic    = 0x1000
	AccAnnotation   = 0x2000
	AccEnum         = 0x4000
)

// Magic is the first word of every class file.
const Magic = 0xCAFEBABE

// A Class is a parsed class file.
type Class struct {
	Minor, Major uint16
	Pool         *Pool
	Access       uint16
	This         uint16
	Super        uint16
	Interfaces   []uint16
	Fields       []*Member
	Methods      []*Member
	Attributes   []*Attribute
}

// A Member is a field_info or method_info structure.
type Member struct {
	Access     uint16
	NameIndex  uint16
	DescIndex  uint16
	Attributes []*Attribute
}

// An Attribute is an attribute_info structure with its payload undecoded.
type Attribute struct {
	NameIndex uint16
	Data      []byte
}

// Name returns the internal name of the class.
func (c *Class) Name() string { return c.Pool.ClassName(c.This) }

// SuperName returns the internal name of the superclass,
// or "" for java/lang/Object and module-info.
func (c *Class) SuperName() string {
	if c.Super == 0 {
		return ""
	}
	return c.Pool.ClassName(c.Super)
}

// InterfaceNames returns the internal names of the direct superinterfaces.
func (c *Class) InterfaceNames() []string {
	var names []string
	for _, i := range c.Interfaces {
		names = append(names, c.Pool.ClassName(i))
	}
	return names
}

// Name returns the member's name.
func (m *Member) Name(p *Pool) string { return p.UTF8(m.NameIndex) }

// Desc returns the member's descriptor.
func (m *Member) Desc(p *Pool) string { return p.UTF8(m.DescIndex) }

// Attribute names.
const (
	AttrAnnotationDefault                    = "AnnotationDefault"
	AttrBootstrapMethods                     = "BootstrapMethods"
	AttrCode                                 = "Code"
	AttrEnclosingMethod                      = "EnclosingMethod"
	AttrExceptions                           = "Exceptions"
	AttrInnerClasses                         = "InnerClasses"
	AttrLineNumberTable                      = "LineNumberTable"
	AttrLocalVariableTable                   = "LocalVariableTable"
	AttrLocalVariableTypeTable               = "LocalVariableTypeTable"
	AttrMethodParameters                     = "MethodParameters"
	AttrRecord                               = "Record"
	AttrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	AttrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	AttrRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	AttrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	AttrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	AttrRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	AttrSignature                            = "Signature"
	AttrSourceFile                           = "SourceFile"
)

// Find returns the first attribute in list named name, or nil.
func Find(p *Pool, list []*Attribute, name string) *Attribute {
	for _, a := range list {
		if p.UTF8(a.NameIndex) == name {
			return a
		}
	}
	return nil
}

// FindAll returns every attribute in list named name.
func FindAll(p *Pool, list []*Attribute, name string) []*Attribute {
	var out []*Attribute
	for _, a := range list {
		if p.UTF8(a.NameIndex) == name {
			out = append(out, a)
		}
	}
	return out
}

// Remove returns list without the attributes named name.
func Remove(p *Pool, list []*Attribute, name string) []*Attribute {
	out := list[:0]
	for _, a := range list {
		if p.UTF8(a.NameIndex) != name {
			out = append(out, a)
		}
	}
	return out
}

// Put replaces the first attribute named name with data,
// or appends a new attribute if there is none.
func Put(p *Pool, list []*Attribute, name string, data []byte) []*Attribute {
	if a := Find(p, list, name); a != nil {
		a.Data = data
		return list
	}
	return append(list, &Attribute{NameIndex: p.AddUTF8(name), Data: data})
}
