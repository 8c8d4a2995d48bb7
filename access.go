// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"rsc.io/remap/classfile"
	"rsc.io/remap/hierarchy"
	"rsc.io/remap/mapping"
	"rsc.io/remap/remap"
)

// packageAccess returns an access check that reports references to
// package-private members which the renaming moves into a different
// package from the class using them.
func packageAccess(g hierarchy.Lookup, t *mapping.Tables) remap.AccessCheck {
	return func(using, owner, name, desc string, kind hierarchy.MemberKind) error {
		m := g.Resolve(owner, hierarchy.MemberKey{Kind: kind, Name: name, Desc: desc})
		if m == nil || m.Access&(classfile.AccPublic|classfile.AccProtected|classfile.AccPrivate) != 0 {
			return nil
		}
		if pkg(using) != pkg(m.Owner) {
			// Already out of reach before renaming; not ours to report.
			return nil
		}
		newUsing, newOwner := t.MapClass(using), t.MapClass(m.Owner)
		if pkg(newUsing) == pkg(newOwner) {
			return nil
		}
		return conflictf(newOwner+"."+name, "package-private but used from %s", pkgName(pkg(newUsing)))
	}
}

func pkg(class string) string {
	if i := strings.LastIndexByte(class, '/'); i >= 0 {
		return class[:i]
	}
	return ""
}

func pkgName(p string) string {
	if p == "" {
		return "the default package"
	}
	return strings.ReplaceAll(p, "/", ".")
}
