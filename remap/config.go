// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"go.uber.org/zap"

	"rsc.io/remap/hierarchy"
)

// Config holds the policies of a remapping pass.
// It is passed by value to every stage.
type Config struct {
	// CheckPackageAccess calls the resolver's access check
	// for every field and method reference in code.
	CheckPackageAccess bool

	// SkipLocalMapping leaves argument and local variable names
	// as they are instead of looking them up in the tables.
	SkipLocalMapping bool

	// RenameInvalidLocals replaces argument and local variable names
	// that are not valid Java identifiers with names derived from
	// their types.
	RenameInvalidLocals bool

	// Strict turns internal invariant violations into errors
	// instead of logged, skipped work.
	Strict bool

	// Logger receives diagnostics. A nil Logger discards them.
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// processLocals reports whether argument and local names need work
// for a method with the given tables present.
func (c Config) processLocals(hasLocals, hasParams bool) bool {
	return !c.SkipLocalMapping || c.RenameInvalidLocals && (hasLocals || hasParams)
}

// An AccessCheck is called for a reference from class using to the
// member name desc of owner. A non-nil error is reported for the
// referencing method; what to do about it is up to the caller.
type AccessCheck func(using, owner, name, desc string, kind hierarchy.MemberKind) error

// A SuggestFunc proposes a local variable name for a value of type desc,
// or returns false to decline.
type SuggestFunc func(desc string, plural bool) (string, bool)

// An Option configures a Resolver.
type Option func(*Resolver)

// WithAccessCheck sets the package access check.
func WithAccessCheck(fn AccessCheck) Option {
	return func(r *Resolver) { r.access = fn }
}

// WithSuggest sets the local name suggestion hook.
func WithSuggest(fn SuggestFunc) Option {
	return func(r *Resolver) { r.suggest = fn }
}
