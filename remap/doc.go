// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package remap renames the identifiers inside compiled JVM classes.

A Resolver answers rename queries: class names from the class table,
field and method names by resolving the member through a class hierarchy,
and argument and local variable names from the local tables. A
ClassTransformer uses it to rewrite one class in place:

	r := remap.NewResolver(graph, tables)
	err := remap.Class(r, remap.Config{RenameInvalidLocals: true}, class)

Every place a name can appear is rewritten: constant pool references,
member declarations, generic signatures, inner class and enclosing method
records, annotations and annotation defaults, invokedynamic call sites
and their bootstrap arguments, and the local variable and parameter
tables of each method.

The constant pool only grows. A renamed class points its Class entry at a
new Utf8 entry and a renamed member reference gets a NameAndType entry of
its own, so no index already encoded in an instruction or attribute moves
and the bytecode itself is never re-encoded.

# Local variables

Argument names come from the MethodParameters attribute when its length
matches the descriptor, then from the local variable table, then from the
argument tables. Local variables are looked up by slot, by the number of
instructions before their range starts, by their position among the
table rows for the same slot and by their original name. Local
variable type table rows take the names of the rows they describe.

With Config.RenameInvalidLocals, any name that is not a valid Java
identifier is replaced by one derived from its type: i, j, k for ints,
l for longs, flag for booleans, the lower-cased simple class name for
references, with an s appended for arrays. Names are unique within a
method.

Run remaps many classes concurrently.
*/
package remap
