// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hierarchy

import (
	"strings"

	"rsc.io/remap/classfile"
	"rsc.io/remap/mapping"
)

// AddClassFile adds c and its members to g.
func (g *Graph) AddClassFile(c *classfile.Class) ClassID {
	id := g.AddClass(c.Name(), c.Access, c.SuperName(), c.InterfaceNames())
	for _, f := range c.Fields {
		g.AddMember(id, MemberKey{Field, f.Name(c.Pool), f.Desc(c.Pool)}, f.Access)
	}
	for _, m := range c.Methods {
		g.AddMember(id, MemberKey{Method, m.Name(c.Pool), m.Desc(c.Pool)}, m.Access)
	}
	return id
}

// Build returns the graph of classes with new names assigned from t.
func Build(classes []*classfile.Class, t *mapping.Tables) *Graph {
	g := New()
	for _, c := range classes {
		g.AddClassFile(c)
	}
	g.ApplyTables(t)
	return g
}

// ApplyTables assigns each member its new name. A member without an
// entry of its own takes the entry of the first ancestor declaring the
// same member, unless it cannot override: private and static methods,
// constructors and fields keep their own entries only.
func (g *Graph) ApplyTables(t *mapping.Tables) {
	for id := range g.nodes {
		n := &g.nodes[id]
		for _, m := range n.order {
			m.NewName = ""
			var ok bool
			if m.Key.Kind == Field {
				m.NewName, ok = t.Field(n.name, m.Key.Name, m.Key.Desc)
				continue
			}
			if m.NewName, ok = t.Method(n.name, m.Key.Name, m.Key.Desc); ok || !overridable(m) {
				continue
			}
			g.walkAncestors(ClassID(id), func(c ClassID) bool {
				m.NewName, ok = t.Method(g.nodes[c].name, m.Key.Name, m.Key.Desc)
				return !ok
			})
		}
	}
}

func overridable(m *Member) bool {
	return m.Access&(classfile.AccPrivate|classfile.AccStatic) == 0 && !strings.HasPrefix(m.Key.Name, "<")
}
