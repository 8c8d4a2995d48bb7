// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Remap renames the classes, fields, methods, arguments and local
// variables of compiled JVM classes according to a mapping.
//
// Usage:
//
//	remap [flags] input...
//
// Each input is a class file, a directory of class files or a jar or zip
// archive. All inputs are remapped together, so references between them
// are renamed consistently, and then written to the path given by -o:
// a directory, or a single archive when the path ends in .jar or .zip.
// Files that are not classes are copied unchanged. A class file stored
// under its class name moves with the class:
//
//	remap -mapping mappings.tiny -from official -to named -o named.jar game.jar
//
// The -diff flag prints a diff of class listings instead of writing
// output, and the -dump flag prints the listings of the remapped classes.
//
// # Mappings
//
// A mapping file is either a Tiny file (version 1 or 2) or a YAML file
// (named *.yaml or *.yml). A Tiny file names several namespaces; -from
// and -to pick the two to rename between. -reverse swaps the direction
// of the loaded tables. A YAML file lists renames directly:
//
//	classes:
//	  - name: a
//	    to: com/example/Widget
//	    fields:
//	      - {name: b, desc: I, to: count}
//	    methods:
//	      - name: c
//	        desc: (La;)V
//	        to: attach
//	        args:
//	          - {slot: 1, to: other}
//
// Method renames follow overrides: a method with no entry of its own
// takes the entry of the method it overrides.
//
// # Arguments and local variables
//
// Argument and local variable names are looked up in the mapping
// as well, unless -skip-locals is given. With -rename-invalid, names
// that are not valid Java identifiers (as left by obfuscators) are
// replaced with names derived from their types: i, j and k for ints,
// a lower-cased class name for objects, and so on.
//
// # Configuration
//
// The -config flag reads settings from a TOML file. Flags given on the
// command line override it. A relative mapping file name is resolved
// against the directory of the config file.
//
//	[mapping]
//	file = "mappings.tiny"
//	from = "official"
//	to = "named"
//	reverse = false
//
//	[remap]
//	check_package_access = true
//	skip_local_mapping = false
//	rename_invalid_locals = true
//	strict = false
//
//	[run]
//	jobs = 4
//
// With -check-access (check_package_access), remap reports references
// to package-private members that renaming would place in another
// package than the class using them.
package main
