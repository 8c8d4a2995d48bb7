// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"strings"

	"rsc.io/remap/hierarchy"
	"rsc.io/remap/mapping"
)

// A Resolver answers rename queries against a class hierarchy and
// rename tables. Both are read-only snapshots, so a Resolver may be
// shared by any number of goroutines.
type Resolver struct {
	h       hierarchy.Lookup
	t       *mapping.Tables
	access  AccessCheck
	suggest SuggestFunc
}

// NewResolver returns a resolver over h and t. A nil h resolves
// members against the tables alone, and a nil t renames nothing.
func NewResolver(h hierarchy.Lookup, t *mapping.Tables, opts ...Option) *Resolver {
	if t == nil {
		t = mapping.NewTables()
	}
	r := &Resolver{h: h, t: t}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MapType returns the new internal name of a class.
func (r *Resolver) MapType(name string) string { return r.t.MapClass(name) }

// MapDesc returns a field or method descriptor with its class names mapped.
func (r *Resolver) MapDesc(desc string) string { return r.t.MapDesc(desc) }

// MapMethodDesc is MapDesc for method descriptors.
func (r *Resolver) MapMethodDesc(desc string) string { return r.t.MapDesc(desc) }

// MapFieldName returns the new name of field name:desc as seen from owner.
func (r *Resolver) MapFieldName(owner, name, desc string) string {
	return r.mapMember(owner, hierarchy.MemberKey{Kind: hierarchy.Field, Name: name, Desc: desc})
}

// MapMethodName returns the new name of method name desc as seen from owner.
func (r *Resolver) MapMethodName(owner, name, desc string) string {
	return r.mapMember(owner, hierarchy.MemberKey{Kind: hierarchy.Method, Name: name, Desc: desc})
}

func (r *Resolver) mapMember(owner string, key hierarchy.MemberKey) string {
	if r.h != nil {
		if m := r.h.Resolve(owner, key); m != nil {
			if m.NewName != "" {
				return m.NewName
			}
			return key.Name
		}
	}
	var s string
	var ok bool
	if key.Kind == hierarchy.Field {
		s, ok = r.t.Field(owner, key.Name, key.Desc)
	} else {
		s, ok = r.t.Method(owner, key.Name, key.Desc)
	}
	if ok {
		return s
	}
	return key.Name
}

// MapMethodNamePrefixDesc returns the new name of the method of owner
// named name whose descriptor begins with descPrefix. An empty prefix
// matches any descriptor. If several methods match and disagree on their
// new name, the name is kept.
func (r *Resolver) MapMethodNamePrefixDesc(owner, name, descPrefix string) string {
	if r.h != nil {
		if m := r.h.ResolvePartial(owner, hierarchy.Method, name, descPrefix); m != nil && m.NewName != "" {
			return m.NewName
		}
	}
	return name
}

// MapMethodArg returns the new name of the argument in slot of method
// name desc of owner, or fallback if no table renames it.
func (r *Resolver) MapMethodArg(owner, name, desc string, slot int, fallback string) string {
	if s, ok := r.findLocal(owner, name, desc, func(m mapping.MemberRef) (string, bool) {
		return r.t.Arg(m, slot)
	}); ok {
		return s
	}
	return fallback
}

// MapMethodVar returns the new name of a local variable of method
// name desc of owner, or orig if no table renames it. startInsn is the
// number of real instructions before the variable's range starts and
// occurrence its index among the method's table rows for slot.
func (r *Resolver) MapMethodVar(owner, name, desc string, slot, startInsn, occurrence int, orig string) string {
	if s, ok := r.findLocal(owner, name, desc, func(m mapping.MemberRef) (string, bool) {
		return r.t.Var(m, slot, startInsn, occurrence, orig)
	}); ok {
		return s
	}
	return orig
}

// findLocal tries lookup on the method as declared in owner, then in the
// class that declares it according to method resolution, then in every
// ancestor of owner breadth first.
func (r *Resolver) findLocal(owner, name, desc string, lookup func(mapping.MemberRef) (string, bool)) (string, bool) {
	if !r.t.HasLocals() {
		return "", false
	}
	if s, ok := lookup(mapping.MemberRef{Owner: owner, Name: name, Desc: desc}); ok {
		return s, true
	}
	if r.h == nil {
		return "", false
	}
	if m := r.h.Resolve(owner, hierarchy.MemberKey{Kind: hierarchy.Method, Name: name, Desc: desc}); m != nil && m.Owner != owner {
		if s, ok := lookup(mapping.MemberRef{Owner: m.Owner, Name: name, Desc: desc}); ok {
			return s, true
		}
	}
	for _, a := range r.h.Ancestors(owner) {
		if s, ok := lookup(mapping.MemberRef{Owner: a, Name: name, Desc: desc}); ok {
			return s, true
		}
	}
	return "", false
}

// SuggestLocalName asks the suggestion hook for a name
// for a value of type desc.
func (r *Resolver) SuggestLocalName(desc string, plural bool) (string, bool) {
	if r.suggest == nil {
		return "", false
	}
	return r.suggest(desc, plural)
}

// CheckPackageAccess runs the access check, if any, on a reference
// from class using to a member of owner.
func (r *Resolver) CheckPackageAccess(using, owner, name, desc string, kind hierarchy.MemberKind) error {
	if r.access == nil {
		return nil
	}
	return r.access(using, owner, name, desc, kind)
}

// MapInnerClassName returns the new simple name of inner class name,
// whose simple name is currently inner.
func (r *Resolver) MapInnerClassName(name, outer, inner string) string {
	newName := r.MapType(name)
	if newName == name {
		return inner
	}
	if i, j := strings.LastIndexByte(name, '/'), strings.LastIndexByte(newName, '/'); i >= 0 && j >= 0 && name[i:] == newName[j:] {
		return inner
	}
	i := strings.LastIndexByte(newName, '$')
	if i < 0 {
		return inner
	}
	i++
	for i < len(newName) && '0' <= newName[i] && newName[i] <= '9' {
		i++
	}
	return newName[i:]
}

// MapSignature maps the class names in a generic signature of a class,
// field or method. A malformed signature is returned unchanged.
func (r *Resolver) MapSignature(sig string) string {
	if !strings.ContainsAny(sig, "L") {
		return sig
	}
	p := &sigParser{r: r, s: sig}
	p.typeParams()
	if p.peek() == '(' {
		p.emit()
		for !p.bad && p.peek() != ')' {
			p.typeSig()
		}
		p.expect(')')
		p.typeSig()
		for !p.bad && p.i < len(p.s) && p.s[p.i] == '^' {
			p.emit()
			p.typeSig()
		}
	} else {
		for !p.bad && p.i < len(p.s) {
			p.typeSig()
		}
	}
	if p.bad || p.i != len(p.s) {
		return sig
	}
	return p.sb.String()
}

type sigParser struct {
	r   *Resolver
	s   string
	i   int
	sb  strings.Builder
	bad bool
}

func (p *sigParser) peek() byte {
	if p.bad || p.i >= len(p.s) {
		p.bad = true
		return 0
	}
	return p.s[p.i]
}

func (p *sigParser) emit() {
	p.sb.WriteByte(p.s[p.i])
	p.i++
}

func (p *sigParser) expect(c byte) {
	if p.peek() != c {
		p.bad = true
		return
	}
	p.emit()
}

// ident consumes up to the first byte of stop.
func (p *sigParser) ident(stop string) string {
	j := strings.IndexAny(p.s[p.i:], stop)
	if j < 0 {
		p.bad = true
		return ""
	}
	s := p.s[p.i : p.i+j]
	p.i += j
	return s
}

func (p *sigParser) typeParams() {
	if p.i >= len(p.s) || p.s[p.i] != '<' {
		return
	}
	p.emit()
	for !p.bad && p.peek() != '>' {
		p.sb.WriteString(p.ident(":"))
		for !p.bad && p.peek() == ':' {
			p.emit()
			if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
				p.typeSig()
			}
		}
	}
	p.expect('>')
}

func (p *sigParser) typeSig() {
	switch c := p.peek(); c {
	case 'L':
		p.classSig()
	case 'T':
		p.sb.WriteString(p.ident(";"))
		p.expect(';')
	case '[':
		p.emit()
		p.typeSig()
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
		p.emit()
	default:
		p.bad = true
	}
}

func (p *sigParser) classSig() {
	p.i++
	full := p.ident("<.;")
	mapped := p.r.MapType(full)
	p.sb.WriteByte('L')
	p.sb.WriteString(mapped)
	for !p.bad {
		switch p.peek() {
		case '<':
			p.typeArgs()
		case '.':
			p.emit()
			inner := p.ident("<.;")
			full += "$" + inner
			newFull := p.r.MapType(full)
			switch {
			case strings.HasPrefix(newFull, mapped+"$"):
				inner = newFull[len(mapped)+1:]
			case newFull != full:
				inner = newFull[strings.LastIndexByte(newFull, '$')+1:]
			}
			p.sb.WriteString(inner)
			mapped = newFull
		case ';':
			p.emit()
			return
		default:
			p.bad = true
		}
	}
}

func (p *sigParser) typeArgs() {
	p.emit()
	for !p.bad && p.peek() != '>' {
		switch p.peek() {
		case '*':
			p.emit()
		case '+', '-':
			p.emit()
			p.typeSig()
		default:
			p.typeSig()
		}
	}
	p.expect('>')
}
