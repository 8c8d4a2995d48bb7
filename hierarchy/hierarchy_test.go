// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hierarchy

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsc.io/remap/classfile"
	"rsc.io/remap/classfile/classfiletest"
	"rsc.io/remap/mapping"
)

const iface = classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract

// testGraph builds
//
//	interface I { void run(); }
//	interface J extends I {}
//	interface K { int x; void m(); }
//	class A implements I { int x; void run(); void m(); static void s(); private void p(); }
//	class B extends A {}
//	class C extends B implements J {}
//	class D extends A implements K {}
func testGraph() *Graph {
	g := New()
	i := g.AddClass("I", iface, "", nil)
	g.AddMember(i, MemberKey{Method, "run", "()V"}, classfile.AccPublic|classfile.AccAbstract)
	g.AddClass("J", iface, "", []string{"I"})
	k := g.AddClass("K", iface, "", nil)
	g.AddMember(k, MemberKey{Field, "x", "I"}, classfile.AccPublic|classfile.AccStatic)
	g.AddMember(k, MemberKey{Method, "m", "()V"}, classfile.AccPublic|classfile.AccAbstract)
	a := g.AddClass("A", classfile.AccPublic, "", []string{"I"})
	g.AddMember(a, MemberKey{Field, "x", "I"}, 0)
	g.AddMember(a, MemberKey{Method, "run", "()V"}, classfile.AccPublic)
	g.AddMember(a, MemberKey{Method, "m", "()V"}, classfile.AccPublic)
	g.AddMember(a, MemberKey{Method, "s", "()V"}, classfile.AccStatic)
	g.AddMember(a, MemberKey{Method, "p", "()V"}, classfile.AccPrivate)
	g.AddClass("B", classfile.AccPublic, "A", nil)
	g.AddClass("C", classfile.AccPublic, "B", []string{"J"})
	g.AddClass("D", classfile.AccPublic, "A", []string{"K"})
	return g
}

func TestResolve(t *testing.T) {
	g := testGraph()
	tests := []struct {
		owner string
		key   MemberKey
		want  string // declaring class, or "" for none
	}{
		{"A", MemberKey{Field, "x", "I"}, "A"},
		{"B", MemberKey{Field, "x", "I"}, "A"},
		{"B", MemberKey{Method, "run", "()V"}, "A"},
		{"J", MemberKey{Method, "run", "()V"}, "I"},
		{"C", MemberKey{Method, "run", "()V"}, "A"},
		// Fields look at superinterfaces before the superclass,
		// methods at the superclass chain first.
		{"D", MemberKey{Field, "x", "I"}, "K"},
		{"D", MemberKey{Method, "m", "()V"}, "A"},
		{"B", MemberKey{Method, "run", "(I)V"}, ""},
		{"B", MemberKey{Field, "run", "()V"}, ""},
		{"Nowhere", MemberKey{Method, "run", "()V"}, ""},
	}
	for _, tt := range tests {
		m := g.Resolve(tt.owner, tt.key)
		got := ""
		if m != nil {
			got = m.Owner
		}
		if got != tt.want {
			t.Errorf("Resolve(%s, %v %s%s) = %s, want %q", tt.owner, tt.key.Kind, tt.key.Name, tt.key.Desc, spew.Sdump(m), tt.want)
		}
	}
}

func TestResolveCycle(t *testing.T) {
	g := New()
	g.AddClass("X", 0, "Y", nil)
	g.AddClass("Y", 0, "X", nil)
	assert.Nil(t, g.Resolve("X", MemberKey{Method, "f", "()V"}))
	assert.Nil(t, g.Resolve("X", MemberKey{Field, "f", "I"}))
	assert.Equal(t, []string{"Y"}, g.Ancestors("X"))
}

func TestAncestors(t *testing.T) {
	g := testGraph()
	assert.Equal(t, []string{"B", "J", "A", "I"}, g.Ancestors("C"))
	assert.Equal(t, []string{"A", "K", "I"}, g.Ancestors("D"))
	assert.Empty(t, g.Ancestors("I"))
	assert.Nil(t, g.Ancestors("Nowhere"))
}

func TestPlaceholder(t *testing.T) {
	g := New()
	x := g.AddClass("X", 0, "Y", nil)
	y := g.ID("Y")
	require.NotEqual(t, None, y)
	assert.Empty(t, g.Members(y))
	g.AddClass("Y", classfile.AccPublic, "", nil)
	assert.Equal(t, y, g.ID("Y"))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, "X", g.Name(x))
	assert.Equal(t, None, g.ID("Z"))
}

func TestResolvePartial(t *testing.T) {
	g := New()
	p := g.AddClass("P", iface|classfile.AccAnnotation, "", nil)
	ints := g.AddMember(p, MemberKey{Method, "values", "()[I"}, classfile.AccPublic|classfile.AccAbstract)
	strs := g.AddMember(p, MemberKey{Method, "values", "()[Ljava/lang/String;"}, classfile.AccPublic|classfile.AccAbstract)
	g.AddMember(p, MemberKey{Method, "name", "()Ljava/lang/String;"}, classfile.AccPublic|classfile.AccAbstract)
	q := g.AddClass("Q", iface, "", []string{"P"})

	// One match.
	assert.Equal(t, "name", g.ResolvePartial("P", Method, "name", "()").Key.Name)

	// Two matches with different new names are ambiguous.
	ints.NewName, strs.NewName = "numbers", "strings"
	assert.Nil(t, g.ResolvePartial("P", Method, "values", "()["))
	assert.Nil(t, g.ResolvePartial("Q", Method, "values", "()["))

	// Two matches that agree are not.
	strs.NewName = "numbers"
	m := g.ResolvePartial("Q", Method, "values", "()[")
	require.NotNil(t, m)
	assert.Equal(t, "numbers", m.NewName)

	// A longer prefix picks one.
	m = g.ResolvePartial("Q", Method, "values", "()[I")
	require.NotNil(t, m)
	assert.Same(t, ints, m)

	assert.Nil(t, g.ResolvePartial("Q", Field, "values", ""))
	assert.Empty(t, g.Members(q))
}

func TestApplyTables(t *testing.T) {
	g := testGraph()
	tables := mapping.NewTables()
	tables.Methods[mapping.MemberRef{Owner: "I", Name: "run", Desc: "()V"}] = "execute"
	tables.Methods[mapping.MemberRef{Owner: "K", Name: "m", Desc: "()V"}] = "mk"
	tables.Methods[mapping.MemberRef{Owner: "A", Name: "m", Desc: "()V"}] = "ma"
	tables.Fields[mapping.MemberRef{Owner: "K", Name: "x", Desc: "I"}] = "kx"
	g.ApplyTables(tables)

	newName := func(owner string, key MemberKey) string {
		m := g.Resolve(owner, key)
		require.NotNil(t, m, "%s %v", owner, key)
		return m.NewName
	}
	// A.run overrides I.run and inherits its rename.
	assert.Equal(t, "execute", newName("A", MemberKey{Method, "run", "()V"}))
	assert.Equal(t, "execute", newName("C", MemberKey{Method, "run", "()V"}))
	// A's own entry wins over K's.
	assert.Equal(t, "ma", newName("D", MemberKey{Method, "m", "()V"}))
	// Fields do not inherit renames.
	assert.Equal(t, "", newName("A", MemberKey{Field, "x", "I"}))
	assert.Equal(t, "kx", newName("D", MemberKey{Field, "x", "I"}))

	// Static and private methods keep only their own entries.
	tables.Methods[mapping.MemberRef{Owner: "I", Name: "s", Desc: "()V"}] = "bad"
	tables.Methods[mapping.MemberRef{Owner: "I", Name: "p", Desc: "()V"}] = "bad"
	g.ApplyTables(tables)
	assert.Equal(t, "", newName("A", MemberKey{Method, "s", "()V"}))
	assert.Equal(t, "", newName("A", MemberKey{Method, "p", "()V"}))
}

func TestBuild(t *testing.T) {
	ib := classfiletest.NewClass("a/Listener", "java/lang/Object")
	ib.Access(iface)
	ib.Method(classfile.AccPublic|classfile.AccAbstract, "a", "(I)V")

	cb := classfiletest.NewClass("a/Impl", "java/lang/Object", "a/Listener")
	m := cb.Method(classfile.AccPublic, "a", "(I)V")
	m.Return()
	cb.Field(classfile.AccPrivate, "b", "J")

	tables := mapping.NewTables()
	tables.Methods[mapping.MemberRef{Owner: "a/Listener", Name: "a", Desc: "(I)V"}] = "onEvent"

	g := Build([]*classfile.Class{ib.Class(), cb.Class()}, tables)
	assert.Equal(t, 3, g.Len(), "Listener, Object and Impl")
	impl := g.Resolve("a/Impl", MemberKey{Method, "a", "(I)V"})
	require.NotNil(t, impl)
	assert.Equal(t, "a/Impl", impl.Owner)
	assert.Equal(t, "onEvent", impl.NewName)
	assert.Equal(t, []string{"java/lang/Object", "a/Listener"}, g.Ancestors("a/Impl"))
	f := g.Resolve("a/Impl", MemberKey{Field, "b", "J"})
	require.NotNil(t, f)
	assert.Equal(t, uint16(classfile.AccPrivate), f.Access)
}

func TestMemberKindString(t *testing.T) {
	assert.Equal(t, "Field", Field.String())
	assert.Equal(t, "Method", Method.String())
	assert.Equal(t, "MemberKind(7)", MemberKind(7).String())
}
