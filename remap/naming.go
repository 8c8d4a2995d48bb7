// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A registry counts the names used in one method so that synthesized
// names never collide. It lives only as long as that method's rewrite.
type registry map[string]int

// reserve marks name as taken without counting a use of it.
func (reg registry) reserve(name string) {
	if _, ok := reg[name]; !ok {
		reg[name] = 1
	}
}

// claim records a use of name and returns the name to emit:
// name itself the first time, name followed by the use count after that.
func (reg registry) claim(name string) string {
	n, ok := reg[name]
	if ok {
		n++
	}
	reg[name] = n
	if n == 0 {
		return name
	}
	return name + strconv.Itoa(n)
}

// nameFromType synthesizes a local variable name for a value of type
// desc, which is already in the target namespace. isArg selects the
// fallback for reference types whose simple name gives nothing usable.
func nameFromType(r *Resolver, reg registry, desc string, isArg bool) string {
	plural := false
	if strings.HasPrefix(desc, "[") {
		plural = true
		desc = desc[strings.LastIndexByte(desc, '[')+1:]
	}

	var name string
	if desc == "" {
		return reg.claim("lv")
	}
	switch desc[0] {
	case 'B':
		name = "b"
	case 'C':
		name = "c"
	case 'D':
		name = "d"
	case 'F':
		name = "f"
	case 'J':
		name = "l"
	case 'S':
		name = "s"
	case 'Z':
		name = "flag"
	case 'I':
		return intName(reg, plural)
	case 'L':
		name = refName(r, desc, plural, isArg)
	default:
		name = "lv"
	}

	if plural && IsValidIdentifier(name+"s") {
		name += "s"
	}
	return reg.claim(name)
}

// intName picks i, j or k, then i2, i3 and so on,
// skipping names already in reg.
func intName(reg registry, plural bool) string {
	suffix := ""
	if plural {
		suffix = "s"
	}
	for n := 1; ; n++ {
		for _, c := range "ijk" {
			name := string(c) + suffix
			if n > 1 {
				if c != 'i' {
					continue
				}
				name += strconv.Itoa(n)
			}
			if _, ok := reg[name]; !ok {
				reg[name] = 0
				return name
			}
		}
	}
}

func refName(r *Resolver, desc string, plural, isArg bool) string {
	if s, ok := r.SuggestLocalName(desc, plural); ok && IsValidIdentifier(s) {
		return s
	}

	// Strip the package and any outer classes.
	start := strings.LastIndexByte(desc, '/') + 1
	dollar := strings.LastIndexByte(desc, '$') + 1
	if dollar > start && dollar < len(desc)-1 {
		start = dollar
	} else if start == 0 {
		start = 1
	}

	var name string
	if start < len(desc)-1 {
		first, size := utf8.DecodeRuneInString(desc[start:])
		// A name that lower-casing leaves alone would shadow the type.
		if lc := unicode.ToLower(first); lc != first {
			name = string(lc) + desc[start+size:len(desc)-1]
		}
	}
	if !IsValidIdentifier(name) {
		if isArg {
			return "arg"
		}
		return "lv"
	}
	return name
}
