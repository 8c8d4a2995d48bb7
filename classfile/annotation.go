// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

// An Annotation is a decoded annotation structure.
type Annotation struct {
	TypeIndex uint16 // field descriptor Utf8
	Elements  []ElementPair
}

// An ElementPair is one element_value_pairs entry.
type ElementPair struct {
	NameIndex uint16
	Value     *ElementValue
}

// An ElementValue is a decoded element_value.
//
// Tag is one of B C D F I J S Z s (Const names the constant),
// c (Const names the return descriptor Utf8),
// e (EnumType and Const name the type descriptor and constant name),
// @ (Annotation) or [ (Values).
type ElementValue struct {
	Tag        byte
	Const      uint16
	EnumType   uint16
	Annotation *Annotation
	Values     []*ElementValue
}

// A TypeAnnotation is a type_annotation structure.
// The target_info and type_path are kept raw.
type TypeAnnotation struct {
	TargetType byte
	Target     []byte
	Path       []byte
	Annotation *Annotation
}

// DecodeAnnotations decodes a Runtime(In)VisibleAnnotations payload.
func DecodeAnnotations(a *Attribute) ([]*Annotation, error) {
	r := &reader{data: a.Data}
	list := readAnnotationList(r)
	return list, decodeErr("annotations", r)
}

// EncodeAnnotations encodes a Runtime(In)VisibleAnnotations payload.
func EncodeAnnotations(list []*Annotation) []byte {
	e := &encoder{}
	writeAnnotationList(e, list)
	return e.buf
}

// DecodeParameterAnnotations decodes a Runtime(In)VisibleParameterAnnotations payload.
func DecodeParameterAnnotations(a *Attribute) ([][]*Annotation, error) {
	r := &reader{data: a.Data}
	n := int(r.u1())
	var params [][]*Annotation
	for i := 0; i < n && r.err == nil; i++ {
		params = append(params, readAnnotationList(r))
	}
	return params, decodeErr("parameter annotations", r)
}

// EncodeParameterAnnotations encodes a Runtime(In)VisibleParameterAnnotations payload.
func EncodeParameterAnnotations(params [][]*Annotation) []byte {
	e := &encoder{}
	e.u1(uint8(len(params)))
	for _, list := range params {
		writeAnnotationList(e, list)
	}
	return e.buf
}

// DecodeTypeAnnotations decodes a Runtime(In)VisibleTypeAnnotations payload.
func DecodeTypeAnnotations(a *Attribute) ([]*TypeAnnotation, error) {
	r := &reader{data: a.Data}
	n := int(r.u2())
	var list []*TypeAnnotation
	for i := 0; i < n && r.err == nil; i++ {
		ta := &TypeAnnotation{TargetType: r.u1()}
		start := r.pos
		switch ta.TargetType {
		case 0x00, 0x01, 0x16:
			r.u1()
		case 0x10, 0x17, 0x42, 0x43, 0x44, 0x45, 0x46:
			r.u2()
		case 0x11, 0x12:
			r.u2()
		case 0x13, 0x14, 0x15:
		case 0x40, 0x41:
			r.bytes(6 * int(r.u2()))
		case 0x47, 0x48, 0x49, 0x4A, 0x4B:
			r.u2()
			r.u1()
		default:
			r.pos--
			r.fail("unknown type annotation target 0x%02x", ta.TargetType)
		}
		if r.err != nil {
			break
		}
		ta.Target = r.data[start:r.pos:r.pos]
		start = r.pos
		r.bytes(2 * int(r.u1()))
		if r.err != nil {
			break
		}
		ta.Path = r.data[start:r.pos:r.pos]
		ta.Annotation = readAnnotation(r)
		list = append(list, ta)
	}
	return list, decodeErr("type annotations", r)
}

// EncodeTypeAnnotations encodes a Runtime(In)VisibleTypeAnnotations payload.
func EncodeTypeAnnotations(list []*TypeAnnotation) []byte {
	e := &encoder{}
	e.u2(uint16(len(list)))
	for _, ta := range list {
		e.u1(ta.TargetType)
		e.bytes(ta.Target)
		e.bytes(ta.Path)
		writeAnnotation(e, ta.Annotation)
	}
	return e.buf
}

// DecodeElementValue decodes an AnnotationDefault payload.
func DecodeElementValue(a *Attribute) (*ElementValue, error) {
	r := &reader{data: a.Data}
	v := readElementValue(r, 0)
	return v, decodeErr("AnnotationDefault", r)
}

// EncodeElementValue encodes an AnnotationDefault payload.
func EncodeElementValue(v *ElementValue) []byte {
	e := &encoder{}
	writeElementValue(e, v)
	return e.buf
}

func readAnnotationList(r *reader) []*Annotation {
	n := int(r.u2())
	var list []*Annotation
	for i := 0; i < n && r.err == nil; i++ {
		list = append(list, readAnnotation(r))
	}
	return list
}

// maxNesting bounds annotation recursion on hostile input.
const maxNesting = 256

func readAnnotation(r *reader) *Annotation {
	return readAnnotationDepth(r, 0)
}

func readAnnotationDepth(r *reader, depth int) *Annotation {
	a := &Annotation{TypeIndex: r.u2()}
	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		name := r.u2()
		a.Elements = append(a.Elements, ElementPair{name, readElementValue(r, depth+1)})
	}
	return a
}

func readElementValue(r *reader, depth int) *ElementValue {
	if depth > maxNesting {
		r.fail("annotation nesting too deep")
		return nil
	}
	v := &ElementValue{Tag: r.u1()}
	switch v.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		v.Const = r.u2()
	case 'e':
		v.EnumType = r.u2()
		v.Const = r.u2()
	case '@':
		v.Annotation = readAnnotationDepth(r, depth+1)
	case '[':
		n := int(r.u2())
		for i := 0; i < n && r.err == nil; i++ {
			v.Values = append(v.Values, readElementValue(r, depth+1))
		}
	default:
		if r.err == nil {
			r.pos--
			r.fail("unknown element_value tag %q", v.Tag)
		}
	}
	return v
}

func writeAnnotationList(e *encoder, list []*Annotation) {
	e.u2(uint16(len(list)))
	for _, a := range list {
		writeAnnotation(e, a)
	}
}

func writeAnnotation(e *encoder, a *Annotation) {
	e.u2(a.TypeIndex)
	e.u2(uint16(len(a.Elements)))
	for _, p := range a.Elements {
		e.u2(p.NameIndex)
		writeElementValue(e, p.Value)
	}
}

func writeElementValue(e *encoder, v *ElementValue) {
	e.u1(v.Tag)
	switch v.Tag {
	case 'e':
		e.u2(v.EnumType)
		e.u2(v.Const)
	case '@':
		writeAnnotation(e, v.Annotation)
	case '[':
		e.u2(uint16(len(v.Values)))
		for _, x := range v.Values {
			writeElementValue(e, x)
		}
	default:
		e.u2(v.Const)
	}
}
