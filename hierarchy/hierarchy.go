// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hierarchy holds the class graph the remapper resolves members against.
//
// Classes live in an arena and are identified by dense integer IDs;
// parent edges are ID lists in declaration order (superclass first, then
// interfaces). A Graph is built once and then only read, so any number
// of goroutines may resolve against it concurrently.
package hierarchy

import (
	"strings"
)

//go:generate go tool stringer -type=MemberKind -output=kind_string.go

// A MemberKind distinguishes fields from methods.
type MemberKind uint8

const (
	Field MemberKind = iota
	Method
)

// A MemberKey identifies a member within its owner.
type MemberKey struct {
	Kind MemberKind
	Name string
	Desc string
}

// A Member is a field or method declared by a class in the graph.
type Member struct {
	Owner   string
	Key     MemberKey
	Access  uint16
	NewName string // empty when the member is not renamed
}

// A ClassID is the arena index of a class.
type ClassID int32

// None is the ClassID of no class.
const None ClassID = -1

// Lookup is the view of the hierarchy the remapper needs.
type Lookup interface {
	// Resolve finds the member key names as seen from owner,
	// following the JVM's field and method resolution order.
	Resolve(owner string, key MemberKey) *Member

	// ResolvePartial finds the unique member of the given kind
	// named name whose descriptor starts with descPrefix.
	ResolvePartial(owner string, kind MemberKind, name, descPrefix string) *Member

	// Ancestors returns the classes reachable from owner through
	// parent edges, breadth first in parent declaration order.
	Ancestors(owner string) []string
}

type node struct {
	name       string
	access     uint16
	super      ClassID
	interfaces []ClassID
	members    map[MemberKey]*Member
	order      []*Member
}

func (n *node) parents() []ClassID {
	if n.super == None {
		return n.interfaces
	}
	return append([]ClassID{n.super}, n.interfaces...)
}

// A Graph is an arena-indexed class hierarchy.
type Graph struct {
	ids   map[string]ClassID
	nodes []node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{ids: make(map[string]ClassID)}
}

// ID returns the ID of the named class, or None.
func (g *Graph) ID(name string) ClassID {
	if id, ok := g.ids[name]; ok {
		return id
	}
	return None
}

// Name returns the name of class id.
func (g *Graph) Name(id ClassID) string { return g.nodes[id].name }

// Len returns the number of classes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) intern(name string) ClassID {
	if id, ok := g.ids[name]; ok {
		return id
	}
	id := ClassID(len(g.nodes))
	g.nodes = append(g.nodes, node{name: name, super: None, members: make(map[MemberKey]*Member)})
	g.ids[name] = id
	return id
}

// AddClass adds a class with its superclass (empty for none) and
// interfaces, returning its ID. Parents not yet in the graph are added
// as empty placeholders; adding a placeholder's class later fills it in.
func (g *Graph) AddClass(name string, access uint16, super string, interfaces []string) ClassID {
	id := g.intern(name)
	var sup ClassID = None
	if super != "" {
		sup = g.intern(super)
	}
	var ifaces []ClassID
	for _, s := range interfaces {
		ifaces = append(ifaces, g.intern(s))
	}
	n := &g.nodes[id]
	n.access = access
	n.super = sup
	n.interfaces = ifaces
	return id
}

// AddMember declares a member on class id.
func (g *Graph) AddMember(id ClassID, key MemberKey, access uint16) *Member {
	n := &g.nodes[id]
	if m := n.members[key]; m != nil {
		return m
	}
	m := &Member{Owner: n.name, Key: key, Access: access}
	n.members[key] = m
	n.order = append(n.order, m)
	return m
}

// Members returns the members of class id in declaration order.
func (g *Graph) Members(id ClassID) []*Member { return g.nodes[id].order }

// Resolve implements Lookup.
func (g *Graph) Resolve(owner string, key MemberKey) *Member {
	id := g.ID(owner)
	if id == None {
		return nil
	}
	seen := newBitset(len(g.nodes))
	if key.Kind == Field {
		return g.resolveField(id, key, seen)
	}
	return g.resolveMethod(id, key, seen)
}

// resolveField looks in the class itself, then its superinterfaces
// recursively, then its superclass.
func (g *Graph) resolveField(id ClassID, key MemberKey, seen bitset) *Member {
	if seen.has(int(id)) {
		return nil
	}
	seen.set(int(id))
	n := &g.nodes[id]
	if m := n.members[key]; m != nil {
		return m
	}
	for _, i := range n.interfaces {
		if m := g.resolveField(i, key, seen); m != nil {
			return m
		}
	}
	if n.super != None {
		return g.resolveField(n.super, key, seen)
	}
	return nil
}

// resolveMethod walks the superclass chain first and then searches the
// superinterfaces of every class on it breadth first.
func (g *Graph) resolveMethod(id ClassID, key MemberKey, seen bitset) *Member {
	var chain []ClassID
	for c := id; c != None && !seen.has(int(c)); c = g.nodes[c].super {
		seen.set(int(c))
		if m := g.nodes[c].members[key]; m != nil {
			return m
		}
		chain = append(chain, c)
	}
	var queue []ClassID
	for _, c := range chain {
		queue = append(queue, g.nodes[c].interfaces...)
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen.has(int(c)) {
			continue
		}
		seen.set(int(c))
		n := &g.nodes[c]
		if m := n.members[key]; m != nil {
			return m
		}
		queue = append(queue, n.interfaces...)
	}
	return nil
}

// ResolvePartial implements Lookup. At each class, breadth first from
// owner, members matching name and descriptor prefix are collected; one
// match (or several that agree on their new name) wins, several disagreeing
// matches make the lookup ambiguous and it reports nil.
func (g *Graph) ResolvePartial(owner string, kind MemberKind, name, descPrefix string) *Member {
	id := g.ID(owner)
	if id == None {
		return nil
	}
	seen := newBitset(len(g.nodes))
	seen.set(int(id))
	queue := []ClassID{id}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		var found *Member
		for _, m := range g.nodes[c].order {
			if m.Key.Kind != kind || m.Key.Name != name || !strings.HasPrefix(m.Key.Desc, descPrefix) {
				continue
			}
			if found != nil && found.NewName != m.NewName {
				return nil
			}
			if found == nil {
				found = m
			}
		}
		if found != nil {
			return found
		}
		for _, p := range g.nodes[c].parents() {
			if !seen.has(int(p)) {
				seen.set(int(p))
				queue = append(queue, p)
			}
		}
	}
	return nil
}

// Ancestors implements Lookup.
func (g *Graph) Ancestors(owner string) []string {
	id := g.ID(owner)
	if id == None {
		return nil
	}
	var out []string
	g.walkAncestors(id, func(c ClassID) bool {
		out = append(out, g.nodes[c].name)
		return true
	})
	return out
}

// walkAncestors calls fn on each ancestor of id, breadth first in parent
// declaration order, until fn returns false.
func (g *Graph) walkAncestors(id ClassID, fn func(ClassID) bool) {
	seen := newBitset(len(g.nodes))
	seen.set(int(id))
	queue := append([]ClassID(nil), g.nodes[id].parents()...)
	for _, p := range queue {
		seen.set(int(p))
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if !fn(c) {
			return
		}
		for _, p := range g.nodes[c].parents() {
			if !seen.has(int(p)) {
				seen.set(int(p))
				queue = append(queue, p)
			}
		}
	}
}

type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }
func (b bitset) set(i int)      { b[i/64] |= 1 << (uint(i) % 64) }
