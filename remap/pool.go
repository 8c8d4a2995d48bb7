// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"strings"

	"go.uber.org/zap"

	"rsc.io/remap/classfile"
)

const (
	lambdaMetafactory  = "java/lang/invoke/LambdaMetafactory"
	metafactoryDesc    = "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;"
	altMetafactoryDesc = "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;[Ljava/lang/Object;)Ljava/lang/invoke/CallSite;"
)

// isLambdaMetafactory reports whether h is one of the two
// LambdaMetafactory bootstrap methods javac emits for lambdas
// and method references.
func isLambdaMetafactory(h classfile.Handle) bool {
	return h.Kind == classfile.RefInvokeStatic &&
		h.Owner == lambdaMetafactory &&
		(h.Name == "metafactory" && h.Desc == metafactoryDesc ||
			h.Name == "altMetafactory" && h.Desc == altMetafactoryDesc) &&
		!h.IsInterface
}

// A poolRemapper rewrites the identifier-carrying entries of a constant
// pool in place. Original names are read from a snapshot taken before the
// first change; each entry is rewritten at most once.
type poolRemapper struct {
	r    *Resolver
	p    *classfile.Pool
	orig *classfile.Pool
	bsms []classfile.BootstrapMethod
	done []bool
	log  *zap.Logger
}

func newPoolRemapper(r *Resolver, p *classfile.Pool, bsms []classfile.BootstrapMethod, log *zap.Logger) *poolRemapper {
	return &poolRemapper{
		r:    r,
		p:    p,
		orig: p.Clone(),
		bsms: bsms,
		done: make([]bool, p.Len()),
		log:  log,
	}
}

// entry rewrites the entry at i and the entries it refers to.
func (pr *poolRemapper) entry(i uint16) {
	if int(i) >= len(pr.done) || pr.done[i] {
		return
	}
	pr.done[i] = true
	c := pr.orig.At(i)
	if c == nil {
		return
	}
	switch c.Tag {
	case classfile.TagClass:
		name := pr.orig.ClassName(i)
		if s := pr.r.MapType(name); s != name {
			pr.p.SetClassName(i, s)
		}

	case classfile.TagMethodType:
		desc := pr.orig.MethodTypeDesc(i)
		if s := pr.r.MapDesc(desc); s != desc {
			pr.p.SetMethodTypeDesc(i, s)
		}

	case classfile.TagFieldref, classfile.TagMethodref, classfile.TagInterfaceMethodref:
		pr.entry(c.A)
		owner, name, desc := pr.orig.MemberRef(i)
		var newName string
		if c.Tag == classfile.TagFieldref {
			newName = pr.r.MapFieldName(owner, name, desc)
		} else {
			newName = pr.r.MapMethodName(owner, name, desc)
		}
		if newDesc := pr.r.MapDesc(desc); newName != name || newDesc != desc {
			pr.p.SetNameAndType(i, newName, newDesc)
		}

	case classfile.TagMethodHandle:
		pr.entry(c.A)

	case classfile.TagDynamic, classfile.TagInvokeDynamic:
		pr.dynamic(i, c)
	}
}

// dynamic rewrites an InvokeDynamic or Dynamic entry. The call site of
// a lambda is renamed after the interface method it implements; any
// other call site is matched by name alone on its return type. Dynamic
// constants keep their names.
func (pr *poolRemapper) dynamic(i uint16, c *classfile.Const) {
	name, desc := pr.orig.NameAndType(c.B)
	newName := name
	if int(c.A) < len(pr.bsms) {
		bsm := pr.bsms[int(c.A)]
		pr.entry(bsm.Ref)
		for _, a := range bsm.Args {
			pr.entry(a)
		}
		if c.Tag == classfile.TagInvokeDynamic {
			newName = pr.callSiteName(name, desc, bsm)
		}
	}
	if newDesc := pr.r.MapDesc(desc); newName != name || newDesc != desc {
		pr.p.SetNameAndType(i, newName, newDesc)
	}
}

func (pr *poolRemapper) callSiteName(name, desc string, bsm classfile.BootstrapMethod) string {
	h, _ := pr.orig.MethodHandle(bsm.Ref)
	ret := classfile.ReturnType(desc)
	isClass := strings.HasPrefix(ret, "L") && strings.HasSuffix(ret, ";")
	if isLambdaMetafactory(h) && isClass && len(bsm.Args) > 0 && pr.orig.Tag(bsm.Args[0]) == classfile.TagMethodType {
		return pr.r.MapMethodName(classfile.InternalName(ret), name, pr.orig.MethodTypeDesc(bsm.Args[0]))
	}
	pr.log.Warn("unknown invokedynamic bootstrap",
		zap.Stringer("bsm", h),
		zap.Uint8("kind", h.Kind),
		zap.Bool("interface", h.IsInterface),
		zap.String("name", name),
		zap.String("desc", desc))
	if !isClass {
		return name
	}
	return pr.r.MapMethodNamePrefixDesc(classfile.InternalName(ret), name, "")
}

// finish rewrites every entry not yet reached through code or attributes.
func (pr *poolRemapper) finish() {
	for i := 1; i < len(pr.done); i++ {
		pr.entry(uint16(i))
	}
}
