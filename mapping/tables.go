// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mapping holds rename tables and reads them from mapping files.
//
// All keys are in the source namespace: owners, member names and
// descriptors are the names found in the class files being remapped.
// Tables are filled in once and then only read.
package mapping

import (
	"sort"
	"strconv"
	"strings"
)

// A MemberRef names a field or method by owner, name and descriptor.
type MemberRef struct {
	Owner string
	Name  string
	Desc  string
}

func (r MemberRef) String() string {
	if strings.HasPrefix(r.Desc, "(") {
		return r.Owner + "." + r.Name + r.Desc
	}
	return r.Owner + "." + r.Name + ":" + r.Desc
}

// An ArgKey names a method argument by the method and the argument's slot.
type ArgKey struct {
	Method MemberRef
	Slot   int
}

// An Arg is a method argument rename. Name is the original name,
// or empty if the mapping does not record it.
type Arg struct {
	Name    string
	NewName string
}

// A VarEntry renames one local variable of a method.
// StartInsn is the number of real instructions before the variable's
// live range begins and Occurrence is its index among the method's local
// variable table rows for the same slot; -1 matches any. An empty Name
// matches any original name.
type VarEntry struct {
	Slot       int
	StartInsn  int
	Occurrence int
	Name       string
	NewName    string
}

// Tables are the rename tables consumed by the remapper.
type Tables struct {
	Classes map[string]string
	Fields  map[MemberRef]string
	Methods map[MemberRef]string
	Args    map[ArgKey]Arg
	Vars    map[MemberRef][]VarEntry
}

// NewTables returns empty tables.
func NewTables() *Tables {
	return &Tables{
		Classes: make(map[string]string),
		Fields:  make(map[MemberRef]string),
		Methods: make(map[MemberRef]string),
		Args:    make(map[ArgKey]Arg),
		Vars:    make(map[MemberRef][]VarEntry),
	}
}

// Len returns the total number of entries in t.
func (t *Tables) Len() int {
	n := len(t.Classes) + len(t.Fields) + len(t.Methods) + len(t.Args)
	for _, v := range t.Vars {
		n += len(v)
	}
	return n
}

// Class returns the new name of class name.
func (t *Tables) Class(name string) (string, bool) {
	s, ok := t.Classes[name]
	return s, ok
}

// Field returns the new name of a field.
func (t *Tables) Field(owner, name, desc string) (string, bool) {
	s, ok := t.Fields[MemberRef{owner, name, desc}]
	return s, ok
}

// Method returns the new name of a method.
func (t *Tables) Method(owner, name, desc string) (string, bool) {
	s, ok := t.Methods[MemberRef{owner, name, desc}]
	return s, ok
}

// Arg returns the new name of the argument in slot of method m.
func (t *Tables) Arg(m MemberRef, slot int) (string, bool) {
	a, ok := t.Args[ArgKey{m, slot}]
	if !ok || a.NewName == "" {
		return "", false
	}
	return a.NewName, true
}

// HasLocals reports whether t has any argument or variable entry,
// letting callers skip hierarchy searches when it has none.
func (t *Tables) HasLocals() bool { return len(t.Args) > 0 || len(t.Vars) > 0 }

// Var returns the new name of a local variable of method m.
// Among the entries matching slot, startInsn, occurrence and name,
// the one constraining the most of them wins.
func (t *Tables) Var(m MemberRef, slot, startInsn, occurrence int, name string) (string, bool) {
	best, bestScore := "", -1
	for _, v := range t.Vars[m] {
		if v.Slot != slot || v.NewName == "" {
			continue
		}
		score := 0
		if v.StartInsn >= 0 {
			if v.StartInsn != startInsn {
				continue
			}
			score++
		}
		if v.Occurrence >= 0 {
			if v.Occurrence != occurrence {
				continue
			}
			score++
		}
		if v.Name != "" {
			if v.Name != name {
				continue
			}
			score++
		}
		if score > bestScore {
			best, bestScore = v.NewName, score
		}
	}
	return best, bestScore >= 0
}

// Merge adds the entries of o to t. Entries already in t win.
func (t *Tables) Merge(o *Tables) {
	for k, v := range o.Classes {
		if _, ok := t.Classes[k]; !ok {
			t.Classes[k] = v
		}
	}
	for k, v := range o.Fields {
		if _, ok := t.Fields[k]; !ok {
			t.Fields[k] = v
		}
	}
	for k, v := range o.Methods {
		if _, ok := t.Methods[k]; !ok {
			t.Methods[k] = v
		}
	}
	for k, v := range o.Args {
		if _, ok := t.Args[k]; !ok {
			t.Args[k] = v
		}
	}
	for k, v := range o.Vars {
		t.Vars[k] = append(t.Vars[k], v...)
	}
}

// MapClass returns the new name of class name, or name itself.
// Array names are mapped as descriptors.
func (t *Tables) MapClass(name string) string {
	if strings.HasPrefix(name, "[") {
		return t.MapDesc(name)
	}
	if s, ok := t.Classes[name]; ok {
		return s
	}
	return name
}

// MapDesc maps every class named in a field or method descriptor.
func (t *Tables) MapDesc(desc string) string {
	return mapDescWith(desc, func(name string) string {
		if s, ok := t.Classes[name]; ok {
			return s
		}
		return name
	})
}

func mapDescWith(desc string, fn func(string) string) string {
	if !strings.Contains(desc, "L") {
		return desc
	}
	var sb strings.Builder
	for i := 0; i < len(desc); i++ {
		c := desc[i]
		sb.WriteByte(c)
		if c != 'L' {
			continue
		}
		j := strings.IndexByte(desc[i:], ';')
		if j < 0 {
			return desc
		}
		sb.WriteString(fn(desc[i+1 : i+j]))
		sb.WriteByte(';')
		i += j
	}
	return sb.String()
}

// Invert returns tables that map every new name back to its original.
// Argument and variable entries whose original name is unknown are dropped.
func (t *Tables) Invert() *Tables {
	inv := NewTables()
	for k, v := range t.Classes {
		inv.Classes[v] = k
	}
	newRef := func(m MemberRef, table map[MemberRef]string) MemberRef {
		name := m.Name
		if s, ok := table[m]; ok {
			name = s
		}
		return MemberRef{t.MapClass(m.Owner), name, t.MapDesc(m.Desc)}
	}
	for k := range t.Fields {
		inv.Fields[newRef(k, t.Fields)] = k.Name
	}
	for k := range t.Methods {
		inv.Methods[newRef(k, t.Methods)] = k.Name
	}
	for k, a := range t.Args {
		if a.Name == "" {
			continue
		}
		inv.Args[ArgKey{newRef(k.Method, t.Methods), k.Slot}] = Arg{Name: a.NewName, NewName: a.Name}
	}
	for m, list := range t.Vars {
		nm := newRef(m, t.Methods)
		for _, v := range list {
			if v.Name == "" {
				continue
			}
			inv.Vars[nm] = append(inv.Vars[nm], VarEntry{
				Slot:       v.Slot,
				StartInsn:  v.StartInsn,
				Occurrence: v.Occurrence,
				Name:       v.NewName,
				NewName:    v.Name,
			})
		}
	}
	return inv
}

// Dump returns a deterministic listing of t, one entry per line.
func (t *Tables) Dump() string {
	var lines []string
	for k, v := range t.Classes {
		lines = append(lines, "class "+k+" -> "+v)
	}
	for k, v := range t.Fields {
		lines = append(lines, "field "+k.String()+" -> "+v)
	}
	for k, v := range t.Methods {
		lines = append(lines, "method "+k.String()+" -> "+v)
	}
	for k, v := range t.Args {
		lines = append(lines, "arg "+k.Method.String()+" "+strconv.Itoa(k.Slot)+" "+v.Name+" -> "+v.NewName)
	}
	for k, list := range t.Vars {
		for _, v := range list {
			lines = append(lines, "var "+k.String()+" "+strconv.Itoa(v.Slot)+" "+strconv.Itoa(v.StartInsn)+" "+strconv.Itoa(v.Occurrence)+" "+v.Name+" -> "+v.NewName)
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n"
}
