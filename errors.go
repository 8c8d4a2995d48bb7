// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "fmt"

// A usageError reports a malformed command line.
// main exits with status 2 after printing it.
type usageError string

func usagef(format string, args ...interface{}) error {
	return usageError(fmt.Sprintf(format, args...))
}

func (e usageError) Error() string { return "usage: " + string(e) }

// A conflictError reports inputs that cannot be remapped as given:
// a class defined twice, two entries written to one output path,
// or a package-private reference that renaming would break.
// name is the class, member or file the conflict is about.
type conflictError struct {
	name   string
	reason string
}

func conflictf(name, format string, args ...interface{}) error {
	return &conflictError{name, fmt.Sprintf(format, args...)}
}

func (e *conflictError) Error() string { return e.name + ": " + e.reason }
