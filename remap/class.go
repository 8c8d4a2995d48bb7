// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"strings"

	"go.uber.org/zap"

	"rsc.io/remap/classfile"
)

// A memberStage rewrites one field or method of the class being transformed.
type memberStage interface {
	transform(m *classfile.Member) error
}

// A ClassTransformer rewrites whole classes.
type ClassTransformer struct {
	r   *Resolver
	cfg Config
}

// NewClassTransformer returns a transformer renaming through r with policies cfg.
func NewClassTransformer(r *Resolver, cfg Config) *ClassTransformer {
	return &ClassTransformer{r: r, cfg: cfg}
}

// Class rewrites c in place. It is shorthand for NewClassTransformer(r, cfg).Transform(c).
func Class(r *Resolver, cfg Config, c *classfile.Class) error {
	return NewClassTransformer(r, cfg).Transform(c)
}

// classContext is the state shared by the stages working on one class.
type classContext struct {
	r    *Resolver
	cfg  Config
	c    *classfile.Class
	p    *classfile.Pool
	self string // original internal name
	pool *poolRemapper
	log  *zap.Logger
	errs ErrorList
}

// Transform rewrites c in place. Every identifier is mapped; pool indices
// already used by code and attributes stay valid. The returned error,
// if any, is an *ErrorList.
func (t *ClassTransformer) Transform(c *classfile.Class) error {
	x := &classContext{
		r:    t.r,
		cfg:  t.cfg,
		c:    c,
		p:    c.Pool,
		self: c.Name(),
	}
	x.log = t.cfg.logger().With(zap.String("class", x.self))
	pos := Pos{Class: x.self}

	var bsms []classfile.BootstrapMethod
	if a := classfile.Find(x.p, c.Attributes, classfile.AttrBootstrapMethods); a != nil {
		var err error
		if bsms, err = classfile.DecodeBootstrapMethods(a); err != nil {
			x.errs.Add(pos, err)
			return x.errs.Err()
		}
	}
	x.pool = newPoolRemapper(t.r, x.p, bsms, x.log)

	stage := func(s memberStage, list []*classfile.Member, withDesc bool) {
		for _, m := range list {
			at := Pos{x.self, m.Name(x.p)}
			if withDesc {
				at.Member += m.Desc(x.p)
			}
			if err := s.transform(m); err != nil {
				x.errs.Add(at, err)
			}
		}
	}
	stage(&fieldTransformer{x}, c.Fields, false)
	stage(&methodTransformer{x}, c.Methods, true)
	if err := x.classAttributes(); err != nil {
		x.errs.Add(pos, err)
	}

	x.pool.finish()
	if err := x.p.Err(); err != nil {
		x.errs.Add(pos, err)
	}
	x.log.Debug("remapped", zap.String("name", t.r.MapType(x.self)))
	return x.errs.Err()
}

func (x *classContext) classAttributes() error {
	for _, a := range x.c.Attributes {
		var err error
		switch x.p.UTF8(a.NameIndex) {
		case classfile.AttrSourceFile:
			a.Data = classfile.EncodeIndex(x.p.AddUTF8(sourceFileName(x.r.MapType(x.self))))

		case classfile.AttrInnerClasses:
			err = x.innerClasses(a)

		case classfile.AttrEnclosingMethod:
			err = x.enclosingMethod(a)

		case classfile.AttrRecord:
			err = x.record(a)

		default:
			err = x.attribute(a)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sourceFileName returns the source file name javac would use for class
// name: the simple name of its outermost class plus ".java".
func sourceFileName(name string) string {
	start := strings.LastIndexByte(name, '/') + 1
	end := len(name)
	// Keep at least one character of the outer class name.
	if i := strings.IndexByte(name[start:], '$'); i > 0 {
		end = start + i
	}
	return name[start:end] + ".java"
}

func (x *classContext) innerClasses(a *classfile.Attribute) error {
	list, err := classfile.DecodeInnerClasses(a)
	if err != nil {
		return err
	}
	for i := range list {
		ic := &list[i]
		if ic.Name == 0 {
			continue
		}
		inner := x.p.UTF8(ic.Name)
		newInner := x.r.MapInnerClassName(x.pool.orig.ClassName(ic.Inner), x.pool.orig.ClassName(ic.Outer), inner)
		if newInner != inner {
			ic.Name = x.p.AddUTF8(newInner)
		}
	}
	a.Data = classfile.EncodeInnerClasses(list)
	return nil
}

func (x *classContext) enclosingMethod(a *classfile.Attribute) error {
	class, method, err := classfile.DecodeEnclosingMethod(a)
	if err != nil {
		return err
	}
	if method != 0 {
		name, desc := x.p.NameAndType(method)
		owner := x.pool.orig.ClassName(class)
		method = x.p.AddNameAndType(x.r.MapMethodName(owner, name, desc), x.r.MapDesc(desc))
	}
	a.Data = classfile.EncodeEnclosingMethod(class, method)
	return nil
}

func (x *classContext) record(a *classfile.Attribute) error {
	list, err := classfile.DecodeRecord(a)
	if err != nil {
		return err
	}
	for _, rc := range list {
		name, desc := x.p.UTF8(rc.NameIndex), x.p.UTF8(rc.DescIndex)
		for _, ra := range rc.Attributes {
			if err := x.attribute(ra); err != nil {
				return err
			}
		}
		rc.NameIndex = x.p.RenameUTF8(rc.NameIndex, x.r.MapFieldName(x.self, name, desc))
		rc.DescIndex = x.p.RenameUTF8(rc.DescIndex, x.r.MapDesc(desc))
	}
	a.Data = classfile.EncodeRecord(list)
	return nil
}

// attribute rewrites the attributes that may appear on classes, members
// and record components: signatures and annotations. Others are left alone;
// the Class entries they refer to are rewritten with the pool.
func (x *classContext) attribute(a *classfile.Attribute) error {
	switch x.p.UTF8(a.NameIndex) {
	case classfile.AttrSignature:
		i, err := classfile.DecodeIndex(a)
		if err != nil {
			return err
		}
		a.Data = classfile.EncodeIndex(x.p.RenameUTF8(i, x.r.MapSignature(x.p.UTF8(i))))

	case classfile.AttrRuntimeVisibleAnnotations, classfile.AttrRuntimeInvisibleAnnotations:
		list, err := classfile.DecodeAnnotations(a)
		if err != nil {
			return err
		}
		for _, an := range list {
			if err := transformAnnotation(x.r, x.p, an); err != nil {
				return err
			}
		}
		a.Data = classfile.EncodeAnnotations(list)

	case classfile.AttrRuntimeVisibleParameterAnnotations, classfile.AttrRuntimeInvisibleParameterAnnotations:
		params, err := classfile.DecodeParameterAnnotations(a)
		if err != nil {
			return err
		}
		for _, list := range params {
			for _, an := range list {
				if err := transformAnnotation(x.r, x.p, an); err != nil {
					return err
				}
			}
		}
		a.Data = classfile.EncodeParameterAnnotations(params)

	case classfile.AttrRuntimeVisibleTypeAnnotations, classfile.AttrRuntimeInvisibleTypeAnnotations:
		list, err := classfile.DecodeTypeAnnotations(a)
		if err != nil {
			return err
		}
		for _, ta := range list {
			if err := transformAnnotation(x.r, x.p, ta.Annotation); err != nil {
				return err
			}
		}
		a.Data = classfile.EncodeTypeAnnotations(list)

	case classfile.AttrAnnotationDefault:
		v, err := classfile.DecodeElementValue(a)
		if err != nil {
			return err
		}
		if err := transformAnnotationDefault(x.r, x.p, x.self, v); err != nil {
			return err
		}
		a.Data = classfile.EncodeElementValue(v)
	}
	return nil
}

// A fieldTransformer rewrites a field's annotations and signature,
// then its name and descriptor.
type fieldTransformer struct {
	x *classContext
}

func (t *fieldTransformer) transform(f *classfile.Member) error {
	x := t.x
	name, desc := f.Name(x.p), f.Desc(x.p)
	for _, a := range f.Attributes {
		if err := x.attribute(a); err != nil {
			return err
		}
	}
	f.NameIndex = x.p.RenameUTF8(f.NameIndex, x.r.MapFieldName(x.self, name, desc))
	f.DescIndex = x.p.RenameUTF8(f.DescIndex, x.r.MapDesc(desc))
	return nil
}
