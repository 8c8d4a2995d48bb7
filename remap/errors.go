// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNestedArray reports an annotation array element that is itself
	// an array, which the class file format does not allow.
	ErrNestedArray = errors.New("nested array in annotation array")

	// ErrNoLabels reports a method body with code but no labels to
	// bound a synthesized local variable table.
	ErrNoLabels = errors.New("method body has no labels")
)

// A Pos locates an error within a class: the class name and,
// when the error is inside a member, the member's name and descriptor.
type Pos struct {
	Class  string
	Member string
}

func (p Pos) String() string {
	if p.Member == "" {
		return p.Class
	}
	return p.Class + "." + p.Member
}

// An Error is an error at a particular position.
type Error struct {
	Pos Pos
	Err error
}

func (e *Error) Error() string {
	if e.Pos.Class != "" {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

type errorKey struct {
	pos Pos
	msg string
}

// ErrorList is a set of Errors. It is also an error itself. The zero value is
// an empty list, ready to use.
type ErrorList struct {
	errs []*Error
	set  map[errorKey]bool
}

// Add adds an error at pos to l. If the error is an Error, its own position
// is kept. If the error is an ErrorList, all errors from that list are merged
// into this list. It suppresses duplicate errors (same position and message).
func (l *ErrorList) Add(pos Pos, err error) {
	var e *Error

	switch err := err.(type) {
	case nil:
		return

	case *ErrorList:
		for _, e := range err.errs {
			l.Add(e.Pos, e)
		}
		return

	case *Error:
		e = err

	default:
		e = &Error{pos, err}
	}

	k := errorKey{e.Pos, e.Err.Error()}
	if !l.set[k] {
		if l.set == nil {
			l.set = make(map[errorKey]bool)
		}
		l.errs = append(l.errs, e)
		l.set[k] = true
	}
}

// Len returns the number of errors in l.
func (l *ErrorList) Len() int { return len(l.errs) }

// Error sorts and returns a "\n" separated list of formatted
// errors. Note that the result does not end in "\n" because the caller is
// expected to add that.
func (l *ErrorList) Error() string {
	if len(l.errs) == 0 {
		return "no errors"
	}

	sort.SliceStable(l.errs, func(i, j int) bool {
		p1, p2 := l.errs[i].Pos, l.errs[j].Pos
		if p1.Class != p2.Class {
			return p1.Class < p2.Class
		}
		return p1.Member < p2.Member
	})

	// Collapse duplicate messages that appear in many members on the
	// assumption that one bad table entry is behind all of them.
	count := make(map[string]int)
	for _, e := range l.errs {
		count[e.Err.Error()]++
	}

	buf := new(strings.Builder)
	for _, e := range l.errs {
		msg := e.Err.Error()
		switch {
		case count[msg] > 3:
			n := count[msg]
			count[msg] = -1
			msg += fmt.Sprintf(" [× %d]", n)

		case count[msg] < 0:
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		if e.Pos.Class != "" {
			fmt.Fprintf(buf, "%s: %s", e.Pos, msg)
		} else {
			buf.WriteString(msg)
		}
	}
	return buf.String()
}

// Unwrap returns the errors in l, so that errors.Is and errors.As
// see through the list.
func (l *ErrorList) Unwrap() []error {
	out := make([]error, len(l.errs))
	for i, e := range l.errs {
		out[i] = e
	}
	return out
}

// Err returns an error equivalent to this error list.
// If the list is empty, Err returns nil.
func (l *ErrorList) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l
}
