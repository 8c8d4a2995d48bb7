// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import "unicode"

var javaKeywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true,
	"class": true, "const": true, "continue": true, "default": true,
	"do": true, "double": true, "else": true, "enum": true,
	"extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true,
	"import": true, "instanceof": true, "int": true, "interface": true,
	"long": true, "native": true, "new": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true,
	"short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true,
	"throws": true, "transient": true, "try": true, "void": true,
	"volatile": true, "while": true,

	// Literals and the underscore are not identifiers either.
	"true": true, "false": true, "null": true, "_": true,
}

// IsValidIdentifier reports whether s is a Java identifier
// that is not a keyword or literal.
func IsValidIdentifier(s string) bool {
	if s == "" || javaKeywords[s] {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) || i > 0 && !isIdentPart(r) {
			return false
		}
	}
	return true
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) ||
		unicode.In(r, unicode.Nl, unicode.Sc, unicode.Pc)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) ||
		unicode.In(r, unicode.Nd, unicode.Mn, unicode.Mc) ||
		isIdentIgnorable(r)
}

func isIdentIgnorable(r rune) bool {
	return r <= 0x08 || 0x0e <= r && r <= 0x1b || 0x7f <= r && r <= 0x9f ||
		unicode.Is(unicode.Cf, r)
}
