// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"rsc.io/remap/classfile"
)

// An annotationTransformer renames the elements of one annotation.
// Elements are modeled as methods of the annotation type taking no
// arguments and returning the element's type, so the method tables
// drive their names.
type annotationTransformer struct {
	r     *Resolver
	p     *classfile.Pool
	owner string // annotation type, internal name
}

func newAnnotationTransformer(r *Resolver, p *classfile.Pool, desc string) *annotationTransformer {
	return &annotationTransformer{r: r, p: p, owner: classfile.InternalName(desc)}
}

// transformAnnotation rewrites a in place: its type, element names and values.
func transformAnnotation(r *Resolver, p *classfile.Pool, a *classfile.Annotation) error {
	desc := p.UTF8(a.TypeIndex)
	t := newAnnotationTransformer(r, p, desc)
	for i := range a.Elements {
		e := &a.Elements[i]
		name, err := t.element(p.UTF8(e.NameIndex), e.Value)
		if err != nil {
			return err
		}
		e.NameIndex = p.RenameUTF8(e.NameIndex, name)
	}
	a.TypeIndex = p.RenameUTF8(a.TypeIndex, r.MapDesc(desc))
	return nil
}

// element maps the value v of element name and returns the element's new name.
// An empty name, as in an annotation default, stays empty.
func (t *annotationTransformer) element(name string, v *classfile.ElementValue) (string, error) {
	if v.Tag != '[' {
		desc, err := t.value(v)
		if err != nil {
			return "", err
		}
		return t.mapName(name, desc), nil
	}

	arr := &arrayElement{
		resolve: func(desc string) string { return t.mapName(name, desc) },
		empty: func() string {
			if name == "" {
				return ""
			}
			return t.r.MapMethodNamePrefixDesc(t.owner, name, "()[")
		},
	}
	for _, ev := range v.Values {
		if ev.Tag == '[' {
			return "", ErrNestedArray
		}
		desc, err := t.value(ev)
		if err != nil {
			return "", err
		}
		arr.observe(desc)
	}
	return arr.close(), nil
}

func (t *annotationTransformer) mapName(name, desc string) string {
	if name == "" {
		return ""
	}
	return t.r.MapMethodName(t.owner, name, "()"+desc)
}

// value maps the names inside v and returns the original descriptor of
// its type. A class literal reports the descriptor of the class it names.
func (t *annotationTransformer) value(v *classfile.ElementValue) (string, error) {
	switch v.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return string(v.Tag), nil

	case 's':
		return "Ljava/lang/String;", nil

	case 'c':
		desc := t.p.UTF8(v.Const)
		v.Const = t.p.RenameUTF8(v.Const, t.r.MapDesc(desc))
		return desc, nil

	case 'e':
		desc := t.p.UTF8(v.EnumType)
		name := t.p.UTF8(v.Const)
		v.Const = t.p.RenameUTF8(v.Const, t.r.MapFieldName(classfile.InternalName(desc), name, desc))
		v.EnumType = t.p.RenameUTF8(v.EnumType, t.r.MapDesc(desc))
		return desc, nil

	case '@':
		desc := t.p.UTF8(v.Annotation.TypeIndex)
		if err := transformAnnotation(t.r, t.p, v.Annotation); err != nil {
			return "", err
		}
		return desc, nil

	case '[':
		return "", ErrNestedArray
	}
	return "", nil
}

// An arrayState tracks whether the element type of an annotation array
// is known yet.
type arrayState int

const (
	awaitingFirstElement arrayState = iota
	resolved
)

// An arrayElement defers renaming an array-valued element until its first
// value shows the element type. An array closed with no values is renamed
// by partial match instead.
type arrayElement struct {
	state   arrayState
	name    string
	resolve func(desc string) string
	empty   func() string
}

func (a *arrayElement) observe(desc string) {
	if a.state == awaitingFirstElement {
		a.name = a.resolve("[" + desc)
		a.state = resolved
	}
}

func (a *arrayElement) close() string {
	if a.state == awaitingFirstElement {
		a.name = a.empty()
		a.state = resolved
	}
	return a.name
}

// transformAnnotationDefault rewrites the AnnotationDefault value of a
// method of annotation type owner.
func transformAnnotationDefault(r *Resolver, p *classfile.Pool, owner string, v *classfile.ElementValue) error {
	t := &annotationTransformer{r: r, p: p, owner: owner}
	_, err := t.element("", v)
	return err
}
