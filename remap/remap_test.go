// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rsc.io/remap/classfile"
	"rsc.io/remap/classfile/classfiletest"
	"rsc.io/remap/hierarchy"
	"rsc.io/remap/mapping"
)

const iface = classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract

// parseAll encodes and re-parses the built classes, so that the classes
// under test carry a pool exactly as read from a file.
func parseAll(t *testing.T, builders ...*classfiletest.ClassBuilder) []*classfile.Class {
	t.Helper()
	var classes []*classfile.Class
	for _, b := range builders {
		c, err := classfile.Parse(b.Bytes())
		require.NoError(t, err)
		classes = append(classes, c)
	}
	return classes
}

func newResolver(classes []*classfile.Class, tables *mapping.Tables, opts ...Option) *Resolver {
	return NewResolver(hierarchy.Build(classes, tables), tables, opts...)
}

// remapAll remaps every class and returns them re-parsed from their
// encoded form.
func remapAll(t *testing.T, tables *mapping.Tables, cfg Config, builders ...*classfiletest.ClassBuilder) []*classfile.Class {
	t.Helper()
	classes := parseAll(t, builders...)
	r := newResolver(classes, tables)
	var out []*classfile.Class
	for _, c := range classes {
		require.NoError(t, Class(r, cfg, c), "remapping %s", c.Name())
		data, err := classfile.Write(c)
		require.NoError(t, err)
		c, err = classfile.Parse(data)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

// widget builds
//
//	interface b { void d(a o); }
//	class a implements b {
//		private List<a> c;
//		public void d(a o) { this.c; o.e(); }
//		public void e() throws a { this.d(this); }
//	}
func widget() (a, b *classfiletest.ClassBuilder) {
	b = classfiletest.NewClass("b", "java/lang/Object")
	b.Access(iface)
	b.Method(classfile.AccPublic|classfile.AccAbstract, "d", "(La;)V")

	a = classfiletest.NewClass("a", "java/lang/Object", "b")
	a.SourceFile("a.java")
	f := a.Field(classfile.AccPrivate, "c", "I")
	f.Signature("Ljava/util/List<La;>;")

	m := a.Method(classfile.AccPublic, "d", "(La;)V")
	m.Op(0x2a) // aload_0
	m.Field(classfile.OpGetfield, "a", "c", "I")
	m.Op(0x57) // pop
	m.Op(0x2b) // aload_1
	m.Invoke(classfile.OpInvokevirtual, "a", "e", "()V")
	m.Return()
	m.Local(0, "this", "La;", 0, -1)
	m.Local(1, "o", "La;", 0, -1)

	e := a.Method(classfile.AccPublic, "e", "()V")
	e.Op(0x2a)
	e.Op(0x2a)
	e.InvokeInterface("b", "d", "(La;)V", 2)
	e.Return()
	e.Throws("a")
	return a, b
}

func widgetTables() *mapping.Tables {
	t := mapping.NewTables()
	t.Classes["a"] = "com/ex/Widget"
	t.Classes["b"] = "com/ex/Listener"
	t.Fields[mapping.MemberRef{Owner: "a", Name: "c", Desc: "I"}] = "count"
	t.Methods[mapping.MemberRef{Owner: "b", Name: "d", Desc: "(La;)V"}] = "onEvent"
	t.Methods[mapping.MemberRef{Owner: "a", Name: "e", Desc: "()V"}] = "reset"
	return t
}

func TestRename(t *testing.T) {
	a, b := widget()
	out := remapAll(t, widgetTables(), Config{}, a, b)

	want := `class com/ex/Widget access=0x0021 extends java/lang/Object implements com/ex/Listener
	SourceFile Widget.java
field count I access=0x0002
	Signature Ljava/util/List<Lcom/ex/Widget;>;
method onEvent(Lcom/ex/Widget;)V access=0x0001
	1: getfield com/ex/Widget.count:I
	6: invokevirtual com/ex/Widget.reset()V
	local 0 this Lcom/ex/Widget; [0,10)
	local 1 o Lcom/ex/Widget; [0,10)
method reset()V access=0x0001
	2: invokeinterface com/ex/Listener.onEvent(Lcom/ex/Widget;)V
	throws com/ex/Widget
`
	assert.Equal(t, want, classfile.Dump(out[0]))

	want = `class com/ex/Listener access=0x0601 extends java/lang/Object
method onEvent(Lcom/ex/Widget;)V access=0x0401
`
	assert.Equal(t, want, classfile.Dump(out[1]))
}

func TestInverseRoundTrip(t *testing.T) {
	a, b := widget()
	orig := parseAll(t, a, b)
	tables := widgetTables()
	out := remapAll(t, tables, Config{}, a, b)

	inv := tables.Invert()
	r := newResolver(out, inv)
	for i, c := range out {
		require.NoError(t, Class(r, Config{}, c))
		assert.Equal(t, classfile.Dump(orig[i]), classfile.Dump(c))
	}
}

func TestNoChange(t *testing.T) {
	a, b := widget()
	builders := []*classfiletest.ClassBuilder{a, b, lambdaClass(), thing()}
	ann, target := annotationClasses()
	builders = append(builders, ann, target)

	in := parseAll(t, builders...)
	var want [][]byte
	for _, c := range in {
		data, err := classfile.Write(c)
		require.NoError(t, err)
		want = append(want, data)
	}

	r := newResolver(in, mapping.NewTables())
	for i, c := range in {
		require.NoError(t, Class(r, Config{}, c))
		data, err := classfile.Write(c)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(want[i], data), "%s changed:\n%s", c.Name(), classfile.Dump(c))
	}
}

// Obfuscators emit names holding unpaired surrogates; they must survive
// a pass byte for byte.
func TestUnpairedSurrogateNames(t *testing.T) {
	build := func() *classfiletest.ClassBuilder {
		b := classfiletest.NewClass("a/Foo", "java/lang/Object")
		b.Field(classfile.AccStatic, "\xed\xb0\x81", "I")
		m := b.Method(classfile.AccPublic|classfile.AccStatic, "\xed\xa0\x80", "()V")
		m.Field(classfile.OpGetstatic, "a/Foo", "\xed\xb0\x81", "I")
		m.Op(0x57) // pop
		m.Invoke(classfile.OpInvokestatic, "a/Foo", "\xed\xa0\x80", "()V")
		m.Return()
		return b
	}

	in := parseAll(t, build())
	want, err := classfile.Write(in[0])
	require.NoError(t, err)
	require.NoError(t, Class(newResolver(in, mapping.NewTables()), Config{}, in[0]))
	data, err := classfile.Write(in[0])
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, data), "class changed:\n%s", classfile.Dump(in[0]))

	tables := mapping.NewTables()
	tables.Classes["a/Foo"] = "b/Bar"
	out := remapAll(t, tables, Config{}, build())
	data, err = classfile.Write(out[0])
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte{0xed, 0xa0, 0x80}))
	assert.True(t, bytes.Contains(data, []byte{0xed, 0xb0, 0x81}))
	assert.False(t, bytes.Contains(data, []byte{0xef, 0xbf, 0xbd}))
	p := out[0].Pool
	assert.Equal(t, "\xed\xa0\x80", out[0].Methods[0].Name(p))
	assert.Equal(t, "\xed\xb0\x81", out[0].Fields[0].Name(p))
}

func TestSynthesizedArgs(t *testing.T) {
	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
	m := b.Method(classfile.AccPublic, "m", "(JI)V")
	m.Return()
	m.Params("1", "1")
	n := b.Method(classfile.AccPublic|classfile.AccAbstract, "n", "(JI)V")
	n.Params("1", "1")

	out := remapAll(t, mapping.NewTables(), Config{RenameInvalidLocals: true}, b)
	want := `class a/Foo access=0x0021 extends java/lang/Object
method m(JI)V access=0x0001
	params "l" "i"
method n(JI)V access=0x0401
	params "l" "i"
`
	assert.Equal(t, want, classfile.Dump(out[0]))
}

func TestSynthesizedArgsNeedRenameInvalid(t *testing.T) {
	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
	m := b.Method(classfile.AccPublic, "m", "(JI)V")
	m.Return()
	m.Params("1", "1")

	out := remapAll(t, mapping.NewTables(), Config{}, b)
	// The placeholder names are kept where they were.
	assert.NotContains(t, classfile.Dump(out[0]), "\tlocal ")
	assert.Contains(t, classfile.Dump(out[0]), "\tparams \"1\" \"1\"\n")
}

func TestSynthesizedLocalTable(t *testing.T) {
	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
	m := b.Method(classfile.AccPublic, "m", "(JI)V")
	m.Return()
	n := b.Method(classfile.AccPublic, "n", "(JI)V")
	n.Return()
	n.Params("", "")

	tables := mapping.NewTables()
	for _, name := range []string{"m", "n"} {
		ref := mapping.MemberRef{Owner: "a/Foo", Name: name, Desc: "(JI)V"}
		tables.Args[mapping.ArgKey{Method: ref, Slot: 1}] = mapping.Arg{NewName: "count"}
	}

	out := remapAll(t, tables, Config{}, b)
	want := `class a/Foo access=0x0021 extends java/lang/Object
method m(JI)V access=0x0001
	local 1 count J [0,1)
method n(JI)V access=0x0001
	params "count" ""
`
	assert.Equal(t, want, classfile.Dump(out[0]))
}

func TestSynthesizedLocals(t *testing.T) {
	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
	m := b.Method(classfile.AccPublic|classfile.AccStatic, "f", "(Ljava/lang/String;Ljava/lang/String;)V")
	m.Return()
	for i, desc := range []string{
		"Ljava/lang/String;",
		"Ljava/lang/String;",
		"La/Foo$Bar;",
		"[I",
		"I",
		"Ljava/lang/String;",
		"I",
		"I",
		"I",
		"[[Ljava/lang/String;",
		"Z",
		"La/b$1;",
		"La/b$1;",
	} {
		name := fmt.Sprint(i)
		switch i {
		case 0:
			name = "if"
		case 5:
			name = "string"
		}
		m.Local(i, name, desc, 0, -1)
	}

	out := remapAll(t, mapping.NewTables(), Config{RenameInvalidLocals: true}, b)
	want := `class a/Foo access=0x0021 extends java/lang/Object
method f(Ljava/lang/String;Ljava/lang/String;)V access=0x0009
	local 0 string2 Ljava/lang/String; [0,1)
	local 1 string3 Ljava/lang/String; [0,1)
	local 2 bar La/Foo$Bar; [0,1)
	local 3 is [I [0,1)
	local 4 i I [0,1)
	local 5 string Ljava/lang/String; [0,1)
	local 6 j I [0,1)
	local 7 k I [0,1)
	local 8 i2 I [0,1)
	local 9 strings [[Ljava/lang/String; [0,1)
	local 10 flag Z [0,1)
	local 11 lv La/b$1; [0,1)
	local 12 lv1 La/b$1; [0,1)
`
	assert.Equal(t, want, classfile.Dump(out[0]))
}

func TestSuggestLocalName(t *testing.T) {
	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
	m := b.Method(classfile.AccPublic|classfile.AccStatic, "f", "(La/Conn;[La/Conn;)V")
	m.Return()
	m.Params("", "")

	classes := parseAll(t, b)
	r := newResolver(classes, mapping.NewTables(), WithSuggest(func(desc string, plural bool) (string, bool) {
		if desc != "La/Conn;" {
			return "", false
		}
		if plural {
			return "pool", true
		}
		return "conn", true
	}))
	require.NoError(t, Class(r, Config{RenameInvalidLocals: true}, classes[0]))
	assert.Contains(t, classfile.Dump(classes[0]), "\tparams \"conn\" \"pools\"\n")
}

// subclass builds a/Base with f(I)V and a/Sub overriding it, with a
// table entry for f's argument and for the local in slot 2 declared
// on a/Base.
func subclass() (*mapping.Tables, []*classfiletest.ClassBuilder) {
	base := classfiletest.NewClass("a/Base", "java/lang/Object")
	base.Method(classfile.AccPublic, "f", "(I)V").Return()

	sub := classfiletest.NewClass("a/Sub", "a/Base")
	m := sub.Method(classfile.AccPublic, "f", "(I)V")
	m.Op(0x03) // iconst_0
	m.Op(0x3d) // istore_2
	m.Return()
	m.Local(0, "this", "La/Sub;", 0, -1)
	m.Local(1, "x", "I", 0, -1)
	m.Local(2, "v", "I", 2, -1)

	tables := mapping.NewTables()
	f := mapping.MemberRef{Owner: "a/Base", Name: "f", Desc: "(I)V"}
	tables.Args[mapping.ArgKey{Method: f, Slot: 1}] = mapping.Arg{Name: "x", NewName: "count"}
	tables.Vars[f] = []mapping.VarEntry{{Slot: 2, StartInsn: 2, Occurrence: 0, NewName: "tmp"}}
	return tables, []*classfiletest.ClassBuilder{base, sub}
}

func TestLocalTables(t *testing.T) {
	tables, builders := subclass()
	out := remapAll(t, tables, Config{}, builders...)
	dump := classfile.Dump(out[1])
	assert.Contains(t, dump, "\tlocal 1 count I [0,3)\n")
	assert.Contains(t, dump, "\tlocal 2 tmp I [2,3)\n")

	tables, builders = subclass()
	out = remapAll(t, tables, Config{SkipLocalMapping: true}, builders...)
	dump = classfile.Dump(out[1])
	assert.Contains(t, dump, "\tlocal 1 x I [0,3)\n")
	assert.Contains(t, dump, "\tlocal 2 v I [2,3)\n")
}

func TestLocalTypeTable(t *testing.T) {
	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
	m := b.Method(classfile.AccPublic|classfile.AccStatic, "f", "(Ljava/util/List;)V")
	m.Op(0x01) // aconst_null
	m.Op(0x4c) // astore_1
	m.Return()
	m.Local(0, "x", "Ljava/util/List;", 0, -1)
	m.Local(1, "1", "Ljava/util/List;", 2, -1)
	m.LocalType(0, "x", "Ljava/util/List<La/Foo;>;", 0, -1)
	m.LocalType(1, "1", "Ljava/util/List<La/Foo;>;", 2, -1)

	tables := mapping.NewTables()
	tables.Classes["a/Foo"] = "b/Bar"
	f := mapping.MemberRef{Owner: "a/Foo", Name: "f", Desc: "(Ljava/util/List;)V"}
	tables.Args[mapping.ArgKey{Method: f, Slot: 0}] = mapping.Arg{Name: "x", NewName: "names"}

	out := remapAll(t, tables, Config{RenameInvalidLocals: true}, b)
	dump := classfile.Dump(out[0])
	assert.Contains(t, dump, "\tlocal 0 names Ljava/util/List; [0,3)\n")
	assert.Contains(t, dump, "\tlocal 1 list Ljava/util/List; [2,3)\n")
	assert.Contains(t, dump, "\tlocal 0 names Ljava/util/List<Lb/Bar;>; [0,3)\n")
	assert.Contains(t, dump, "\tlocal 1 list Ljava/util/List<Lb/Bar;>; [2,3)\n")
	assert.NotContains(t, dump, "\tlocal 0 x ")
	assert.NotContains(t, dump, "\tlocal 1 1 ")
}

func TestResolverLocals(t *testing.T) {
	tables, builders := subclass()
	r := newResolver(parseAll(t, builders...), tables)
	assert.Equal(t, "count", r.MapMethodArg("a/Sub", "f", "(I)V", 1, "x"))
	assert.Equal(t, "y", r.MapMethodArg("a/Sub", "f", "(I)V", 2, "y"))
	assert.Equal(t, "tmp", r.MapMethodVar("a/Sub", "f", "(I)V", 2, 2, 0, "v"))
	assert.Equal(t, "v", r.MapMethodVar("a/Sub", "f", "(I)V", 2, 3, 0, "v"))
	assert.Equal(t, "x", r.MapMethodArg("a/Other", "f", "(I)V", 1, "x"))

	// Without a hierarchy only the named owner is consulted.
	r = NewResolver(nil, tables)
	assert.Equal(t, "x", r.MapMethodArg("a/Sub", "f", "(I)V", 1, "x"))
	assert.Equal(t, "count", r.MapMethodArg("a/Base", "f", "(I)V", 1, "x"))
}

func lambdaClass() *classfiletest.ClassBuilder {
	b := classfiletest.NewClass("a/Main", "java/lang/Object")
	p := b.Pool()
	lambda := b.Bootstrap(classfiletest.Metafactory,
		p.AddMethodType("()V"),
		p.AddMethodHandle(classfile.Handle{Kind: classfile.RefInvokeStatic, Owner: "a/Main", Name: "lambda$main$0", Desc: "()V"}),
		p.AddMethodType("()V"))
	other := b.Bootstrap(classfile.Handle{
		Kind:  classfile.RefInvokeStatic,
		Owner: "a/Main",
		Name:  "boot",
		Desc:  "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;",
	})

	m := b.Method(classfile.AccPublic|classfile.AccStatic, "main", "()V")
	m.InvokeDynamic(lambda, "run", "()Ljava/lang/Runnable;")
	m.Op(0x57) // pop
	m.InvokeDynamic(other, "make", "()La/Thing;")
	m.Op(0x57)
	m.Return()

	b.Method(classfile.AccPrivate|classfile.AccStatic|classfile.AccSynthetic, "lambda$main$0", "()V").Return()
	return b
}

func thing() *classfiletest.ClassBuilder {
	b := classfiletest.NewClass("a/Thing", "java/lang/Object")
	b.SourceFile("Thing.java")
	b.Method(classfile.AccPublic, "make", "()V").Return()
	return b
}

func TestInvokeDynamic(t *testing.T) {
	tables := mapping.NewTables()
	tables.Classes["a/Main"] = "b/App"
	tables.Methods[mapping.MemberRef{Owner: "java/lang/Runnable", Name: "run", Desc: "()V"}] = "execute"
	tables.Methods[mapping.MemberRef{Owner: "a/Main", Name: "lambda$main$0", Desc: "()V"}] = "lambda"
	tables.Methods[mapping.MemberRef{Owner: "a/Thing", Name: "make", Desc: "()V"}] = "create"

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := Config{Logger: zap.New(core)}
	out := remapAll(t, tables, cfg, lambdaClass(), thing())
	dump := classfile.Dump(out[0])

	assert.Contains(t, dump, "\t0: invokedynamic execute()Ljava/lang/Runnable; bootstrap 0\n")
	assert.Contains(t, dump, "\t6: invokedynamic create()La/Thing; bootstrap 1\n")
	assert.Contains(t, dump, "method lambda()V access=0x100a\n")
	assert.Contains(t, dump, "[methodtype ()V, handle 6 b/App.lambda()V, methodtype ()V]\n")
	assert.Contains(t, dump, "handle 6 b/App.boot(")

	warnings := logs.FilterMessage("unknown invokedynamic bootstrap").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, "a/Main", fields["class"])
	assert.Equal(t, "make", fields["name"])
}

func TestLambdaMetafactory(t *testing.T) {
	h := classfiletest.Metafactory
	assert.True(t, isLambdaMetafactory(h))

	alt := h
	alt.Name, alt.Desc = "altMetafactory", altMetafactoryDesc
	assert.True(t, isLambdaMetafactory(alt))

	for _, bad := range []func(*classfile.Handle){
		func(h *classfile.Handle) { h.Kind = classfile.RefInvokeVirtual },
		func(h *classfile.Handle) { h.IsInterface = true },
		func(h *classfile.Handle) { h.Owner = "a/LambdaMetafactory" },
		func(h *classfile.Handle) { h.Desc = altMetafactoryDesc },
	} {
		h := classfiletest.Metafactory
		bad(&h)
		assert.False(t, isLambdaMetafactory(h), "%v", h)
	}
}

// annotationClasses builds
//
//	@interface Ann { String[] value() default {"x"}; int n() default 1; Kind k(); Class t(); }
//	@Ann(value={}, n=3, k=Kind.A, t=Kind.class)
//	abstract class Target {
//		@Ann({"s"}) public int f;
//		public abstract void g(@Ann(n=2) int x);
//	}
func annotationClasses() (ann, target *classfiletest.ClassBuilder) {
	ann = classfiletest.NewClass("a/Ann", "java/lang/Object", "java/lang/annotation/Annotation")
	ann.Access(iface | classfile.AccAnnotation)
	ann.Method(classfile.AccPublic|classfile.AccAbstract, "value", "()[Ljava/lang/String;").
		Default(classfiletest.Array(ann.StringValue("x")))
	ann.Method(classfile.AccPublic|classfile.AccAbstract, "n", "()I").Default(ann.IntValue(1))
	ann.Method(classfile.AccPublic|classfile.AccAbstract, "k", "()La/Kind;")
	ann.Method(classfile.AccPublic|classfile.AccAbstract, "t", "()Ljava/lang/Class;")

	target = classfiletest.NewClass("a/Target", "java/lang/Object")
	target.Access(classfile.AccPublic | classfile.AccSuper | classfile.AccAbstract)
	target.Annotations(target.Annotation("La/Ann;",
		"value", classfiletest.Array(),
		"n", target.IntValue(3),
		"k", target.EnumValue("La/Kind;", "A"),
		"t", target.ClassValue("La/Kind;")))
	f := target.Field(classfile.AccPublic, "f", "I")
	f.Annotations(target.Annotation("La/Ann;", "value", classfiletest.Array(target.StringValue("s"))))
	g := target.Method(classfile.AccPublic|classfile.AccAbstract, "g", "(I)V")
	g.ParamAnnotations([]*classfile.Annotation{target.Annotation("La/Ann;", "n", target.IntValue(2))})
	return ann, target
}

func TestAnnotations(t *testing.T) {
	tables := mapping.NewTables()
	tables.Classes["a/Ann"] = "x/Tag"
	tables.Classes["a/Kind"] = "x/Mode"
	tables.Methods[mapping.MemberRef{Owner: "a/Ann", Name: "value", Desc: "()[Ljava/lang/String;"}] = "names"
	tables.Methods[mapping.MemberRef{Owner: "a/Ann", Name: "n", Desc: "()I"}] = "count"
	tables.Methods[mapping.MemberRef{Owner: "a/Ann", Name: "k", Desc: "()La/Kind;"}] = "mode"
	tables.Fields[mapping.MemberRef{Owner: "a/Kind", Name: "A", Desc: "La/Kind;"}] = "FAST"

	ann, target := annotationClasses()
	out := remapAll(t, tables, Config{}, ann, target)

	want := `class x/Tag access=0x2601 extends java/lang/Object implements java/lang/annotation/Annotation
method names()[Ljava/lang/String; access=0x0401
	default {"x"}
method count()I access=0x0401
	default 1
method mode()Lx/Mode; access=0x0401
method t()Ljava/lang/Class; access=0x0401
`
	assert.Equal(t, want, classfile.Dump(out[0]))

	want = `class a/Target access=0x0421 extends java/lang/Object
	@Lx/Tag;(names={}, count=3, mode=Lx/Mode;.FAST, t=Lx/Mode;.class)
field f I access=0x0001
	@Lx/Tag;(names={"s"})
method g(I)V access=0x0401
	param 0 @Lx/Tag;(count=2)
`
	assert.Equal(t, want, classfile.Dump(out[1]))
}

func TestNestedAnnotationArray(t *testing.T) {
	b := classfiletest.NewClass("a/Bad", "java/lang/Object")
	b.Annotations(b.Annotation("La/Ann;", "value", classfiletest.Array(classfiletest.Array())))
	classes := parseAll(t, b)
	err := Class(newResolver(classes, mapping.NewTables()), Config{}, classes[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNestedArray), "%v", err)
	assert.Equal(t, "a/Bad: nested array in annotation array", err.Error())
}

func TestArrayElement(t *testing.T) {
	var calls []string
	newArray := func() *arrayElement {
		return &arrayElement{
			resolve: func(desc string) string { calls = append(calls, "resolve "+desc); return "r" },
			empty:   func() string { calls = append(calls, "empty"); return "e" },
		}
	}

	a := newArray()
	a.observe("I")
	a.observe("J")
	assert.Equal(t, "r", a.close())
	assert.Equal(t, "r", a.close())
	assert.Equal(t, []string{"resolve [I"}, calls)

	calls = nil
	a = newArray()
	assert.Equal(t, "e", a.close())
	a.observe("I")
	assert.Equal(t, "e", a.close())
	assert.Equal(t, []string{"empty"}, calls)
}

func TestAccessCheck(t *testing.T) {
	b := classfiletest.NewClass("a/Main", "java/lang/Object")
	m := b.Method(classfile.AccPublic|classfile.AccStatic, "main", "()V")
	m.Field(classfile.OpGetstatic, "b/Hidden", "secret", "I")
	m.Op(0x57) // pop
	m.Invoke(classfile.OpInvokestatic, "b/Hidden", "peek", "()V")
	m.Return()

	tables := mapping.NewTables()
	tables.Classes["b/Hidden"] = "c/Shown"

	var seen []string
	check := func(using, owner, name, desc string, kind hierarchy.MemberKind) error {
		seen = append(seen, fmt.Sprintf("%s %s %s.%s%s", kind, using, owner, name, desc))
		if kind == hierarchy.Method {
			return fmt.Errorf("%s.%s is not accessible", owner, name)
		}
		return nil
	}

	classes := parseAll(t, b)
	r := newResolver(classes, tables, WithAccessCheck(check))
	require.NoError(t, Class(r, Config{}, classes[0]), "check disabled")
	assert.Empty(t, seen)

	classes = parseAll(t, b)
	r = newResolver(classes, tables, WithAccessCheck(check))
	err := Class(r, Config{CheckPackageAccess: true}, classes[0])
	assert.Equal(t, []string{
		"Field a/Main b/Hidden.secretI",
		"Method a/Main b/Hidden.peek()V",
	}, seen)
	require.Error(t, err)
	assert.Equal(t, "a/Main.main()V: b/Hidden.peek is not accessible", err.Error())

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, Pos{"a/Main", "main()V"}, e.Pos)

	// The class is still rewritten.
	assert.Contains(t, classfile.Dump(classes[0]), "invokestatic c/Shown.peek()V")
}

func TestNoLabels(t *testing.T) {
	b := classfiletest.NewClass("a/Foo", "java/lang/Object")
	b.Method(classfile.AccPublic|classfile.AccStatic, "f", "(I)V").Return()
	classes := parseAll(t, b)
	c := classes[0]
	decode := func(keepLabels bool) *classfile.Body {
		body, err := classfile.DecodeBody(c.Pool, c.Methods[0])
		require.NoError(t, err)
		if !keepLabels {
			var insns []classfile.Insn
			for _, in := range body.Insns {
				if !in.IsLabel() {
					insns = append(insns, in)
				}
			}
			body.Insns = insns
		}
		return body
	}
	args, types, written := []string{"count"}, []string{"I"}, []bool{false}

	core, logs := observer.New(zapcore.WarnLevel)
	x := &classContext{
		r:    newResolver(classes, mapping.NewTables()),
		c:    c,
		p:    c.Pool,
		self: "a/Foo",
		log:  zap.New(core),
	}
	mt := &methodTransformer{x: x}

	body := decode(false)
	require.NoError(t, mt.synthesizeLocals(body, args, types, written, true))
	assert.Empty(t, body.Locals)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cannot name arguments: method body has no labels", logs.All()[0].Message)

	x.cfg.Strict = true
	assert.ErrorIs(t, mt.synthesizeLocals(decode(false), args, types, written, true), ErrNoLabels)

	body = decode(true)
	require.NoError(t, mt.synthesizeLocals(body, args, types, written, true))
	assert.Equal(t, []*classfile.LocalVar{{Slot: 0, Name: "count", Desc: "I", Start: 0, End: 1}}, body.Locals)
}

func TestArgSlots(t *testing.T) {
	args := []string{"J", "I", "[D", "D"}
	tests := []struct {
		static bool
		i      int
		slot   int
	}{
		{false, 0, 1},
		{false, 1, 3},
		{false, 2, 4},
		{false, 3, 5},
		{false, 4, 7},
		{true, 0, 0},
		{true, 1, 2},
		{true, 3, 4},
	}
	for _, tt := range tests {
		if slot := argSlot(tt.i, tt.static, args); slot != tt.slot {
			t.Errorf("argSlot(%d, static=%v) = %d, want %d", tt.i, tt.static, slot, tt.slot)
		}
		if tt.i < len(args) {
			if i := argIndex(tt.slot, tt.static, args); i != tt.i {
				t.Errorf("argIndex(%d, static=%v) = %d, want %d", tt.slot, tt.static, i, tt.i)
			}
		}
	}
	assert.Equal(t, -1, argIndex(2, false, args), "second slot of a long")
	assert.Equal(t, -1, argIndex(6, false, args), "second slot of a double")
	assert.Equal(t, -1, argIndex(7, false, args), "past the arguments")
}

func TestRegistry(t *testing.T) {
	reg := registry{}
	assert.Equal(t, "x", reg.claim("x"))
	assert.Equal(t, "x1", reg.claim("x"))
	reg.reserve("y")
	reg.reserve("y")
	assert.Equal(t, "y2", reg.claim("y"))
	assert.Equal(t, "y3", reg.claim("y"))

	assert.Equal(t, "i", intName(reg, false))
	assert.Equal(t, "is", intName(reg, true))
	assert.Equal(t, "j", intName(reg, false))
	assert.Equal(t, "k", intName(reg, false))
	assert.Equal(t, "i2", intName(reg, false))
	assert.Equal(t, "i3", intName(reg, false))
}

func TestNameFromType(t *testing.T) {
	r := NewResolver(nil, nil)
	tests := []struct {
		desc  string
		isArg bool
		want  string
	}{
		{"B", false, "b"},
		{"C", false, "c"},
		{"D", false, "d"},
		{"F", false, "f"},
		{"J", false, "l"},
		{"S", false, "s"},
		{"Z", false, "flag"},
		{"[Z", false, "flags"},
		{"[J", false, "ls"},
		{"Ljava/util/Map$Entry;", false, "entry"},
		{"[Ljava/util/Map$Entry;", false, "entrys"},
		{"LFoo;", false, "foo"},
		{"La/Foo$;", false, "foo$"},
		{"La/Foo$1;", true, "arg"},
		{"La/Foo$1;", false, "lv"},
		{"La/_;", true, "arg"},
		{"La/Int;", true, "arg"},
		{"La/Integer;", false, "integer"},
		{"La/If;", true, "arg"},
	}
	for _, tt := range tests {
		if got := nameFromType(r, registry{}, tt.desc, tt.isArg); got != tt.want {
			t.Errorf("nameFromType(%q, isArg=%v) = %q, want %q", tt.desc, tt.isArg, got, tt.want)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"x", true},
		{"a1", true},
		{"$x", true},
		{"_x", true},
		{"é", true},
		{"", false},
		{"_", false},
		{"1a", false},
		{"a-b", false},
		{"if", false},
		{"class", false},
		{"true", false},
		{"null", false},
		{"☃", false},
	}
	for _, tt := range tests {
		if got := IsValidIdentifier(tt.s); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestSourceFileName(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"Foo", "Foo.java"},
		{"a/b/Foo", "Foo.java"},
		{"a/Foo$Bar", "Foo.java"},
		{"a/Foo$1$2", "Foo.java"},
		{"a/$Foo", "$Foo.java"},
	}
	for _, tt := range tests {
		if got := sourceFileName(tt.name); got != tt.want {
			t.Errorf("sourceFileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMapInnerClassName(t *testing.T) {
	tables := mapping.NewTables()
	tables.Classes["a/Outer$b"] = "a/Outer$Inner"
	tables.Classes["c/Foo$b"] = "d/Foo$b"
	tables.Classes["a/X$1c"] = "a/Y$2Named"
	tables.Classes["e$f"] = "x/E$Field"
	r := NewResolver(nil, tables)

	tests := []struct {
		name, outer, inner string
		want               string
	}{
		{"a/Outer$b", "a/Outer", "b", "Inner"},
		{"c/Foo$b", "c/Foo", "b", "b"},
		{"a/X$1c", "", "c", "Named"},
		{"e$f", "e", "f", "Field"},
		{"a/Same$x", "a/Same", "x", "x"},
	}
	for _, tt := range tests {
		if got := r.MapInnerClassName(tt.name, tt.outer, tt.inner); got != tt.want {
			t.Errorf("MapInnerClassName(%q, %q, %q) = %q, want %q", tt.name, tt.outer, tt.inner, got, tt.want)
		}
	}
}

func TestMapSignature(t *testing.T) {
	tables := mapping.NewTables()
	tables.Classes["a"] = "x/A"
	tables.Classes["b"] = "x/B"
	tables.Classes["a$In"] = "x/A$Nested"
	r := NewResolver(nil, tables)

	tests := []struct {
		in, out string
	}{
		{"I", "I"},
		{"La;", "Lx/A;"},
		{"TT;", "TT;"},
		{"<T:La;>Ljava/lang/Object;Lb<TT;>;", "<T:Lx/A;>Ljava/lang/Object;Lx/B<TT;>;"},
		{"<T::Lb;U:TT;>Ljava/lang/Object;", "<T::Lx/B;U:TT;>Ljava/lang/Object;"},
		{"(La;[TT;)Lb;^La;", "(Lx/A;[TT;)Lx/B;^Lx/A;"},
		{"<E:Ljava/lang/Exception;>()V^TE;", "<E:Ljava/lang/Exception;>()V^TE;"},
		{"La<*>.In<+Lb;>;", "Lx/A<*>.Nested<+Lx/B;>;"},
		{"Lb<-La;>.Other;", "Lx/B<-Lx/A;>.Other;"},
		{"[[La<La;>;", "[[Lx/A<Lx/A;>;"},
		// Malformed signatures are left alone.
		{"La", "La"},
		{"La<;", "La<;"},
		{"(La;", "(La;"},
		{"La;X", "La;X"},
	}
	for _, tt := range tests {
		if out := r.MapSignature(tt.in); out != tt.out {
			t.Errorf("MapSignature(%q) = %q, want %q", tt.in, out, tt.out)
		}
	}
}

func TestPartialMatchWithoutHierarchy(t *testing.T) {
	r := NewResolver(nil, widgetTables())
	assert.Equal(t, "d", r.MapMethodNamePrefixDesc("b", "d", ""))
	assert.Equal(t, "onEvent", r.MapMethodName("b", "d", "(La;)V"))
	assert.Equal(t, "count", r.MapFieldName("a", "c", "I"))
	assert.Equal(t, "c", r.MapFieldName("a", "c", "J"))
}

func TestErrorList(t *testing.T) {
	var l ErrorList
	assert.NoError(t, l.Err())
	assert.Equal(t, "no errors", l.Error())

	l.Add(Pos{Class: "B"}, errors.New("late"))
	l.Add(Pos{Class: "A", Member: "f"}, errors.New("early"))
	l.Add(Pos{Class: "A", Member: "f"}, errors.New("early"))
	l.Add(Pos{Class: "A"}, nil)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "A.f: early\nB: late", l.Error())

	var other ErrorList
	for i := 0; i < 4; i++ {
		other.Add(Pos{Class: "C", Member: fmt.Sprintf("m%d", i)}, errors.New("boom"))
	}
	other.Add(Pos{}, errors.New("global"))
	l.Add(Pos{Class: "ignored"}, &other)
	assert.Equal(t, 7, l.Len())
	assert.Equal(t, "global\nA.f: early\nB: late\nC.m0: boom [× 4]", l.Error())

	inner := &Error{Pos{"D", ""}, ErrNoLabels}
	l.Add(Pos{Class: "ignored"}, inner)
	assert.True(t, errors.Is(l.Err(), ErrNoLabels))
	assert.True(t, strings.HasSuffix(l.Error(), "\nD: method body has no labels"))
}
