// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import (
	"strings"

	"golang.org/x/xerrors"
)

// FieldTypeEnd returns the end of the field descriptor starting at desc[i],
// or -1 if there is no well-formed field descriptor there.
func FieldTypeEnd(desc string, i int) int {
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	if i >= len(desc) {
		return -1
	}
	switch desc[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1
	case 'L':
		j := strings.IndexByte(desc[i:], ';')
		if j < 2 {
			return -1
		}
		return i + j + 1
	}
	return -1
}

// ArgTypes returns the argument type descriptors of a method descriptor.
func ArgTypes(desc string) ([]string, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, xerrors.Errorf("malformed method descriptor %q", desc)
	}
	var args []string
	i := 1
	for i < len(desc) && desc[i] != ')' {
		j := FieldTypeEnd(desc, i)
		if j < 0 {
			return nil, xerrors.Errorf("malformed method descriptor %q", desc)
		}
		args = append(args, desc[i:j])
		i = j
	}
	if i >= len(desc) {
		return nil, xerrors.Errorf("malformed method descriptor %q", desc)
	}
	return args, nil
}

// ReturnType returns the return type descriptor of a method descriptor.
func ReturnType(desc string) string {
	if i := strings.LastIndexByte(desc, ')'); i >= 0 {
		return desc[i+1:]
	}
	return ""
}

// Size returns the number of local variable slots a value of type desc occupies.
func Size(desc string) int {
	if desc == "J" || desc == "D" {
		return 2
	}
	return 1
}

// InternalName returns the internal name for a field descriptor:
// the class name for L types, the descriptor itself for arrays.
func InternalName(desc string) string {
	if len(desc) > 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
		return desc[1 : len(desc)-1]
	}
	return desc
}

// Descriptor returns the field descriptor of an internal name.
func Descriptor(internal string) string {
	if strings.HasPrefix(internal, "[") {
		return internal
	}
	return "L" + internal + ";"
}
