// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remap

import (
	"go.uber.org/zap"

	"rsc.io/remap/classfile"
)

// argSlot returns the local variable slot of argument i.
func argSlot(i int, static bool, args []string) int {
	slot := 0
	if !static {
		slot++
	}
	for _, a := range args[:i] {
		slot += classfile.Size(a)
	}
	return slot
}

// argIndex returns the index of the argument in slot,
// or -1 if no argument starts there.
func argIndex(slot int, static bool, args []string) int {
	if !static {
		slot--
	}
	for i, a := range args {
		if slot == 0 {
			return i
		}
		slot -= classfile.Size(a)
	}
	return -1
}

// locals reconciles the argument and local variable names of b:
// names come from the method parameters and the local variable table,
// are looked up in the tables, and are synthesized when invalid.
// The results are left in b for Apply.
func (t *methodTransformer) locals(b *classfile.Body, reg registry) error {
	x := t.x
	cfg := x.cfg
	static := b.Access&classfile.AccStatic != 0
	argTypes, err := classfile.ArgTypes(b.Desc)
	if err != nil {
		return err
	}
	argEnd := argSlot(len(argTypes), static, argTypes)
	args := make([]string, len(argTypes))

	// A parameter list of the wrong length does not describe these arguments.
	if len(b.Params) == len(args) {
		for i, p := range b.Params {
			args[i] = p.Name
		}
	}

	occurrence := make(map[int]int)
	for _, lv := range b.Locals {
		switch {
		case !static && lv.Slot == 0:
			lv.Name = "this"

		case lv.Slot < argEnd:
			i := argIndex(lv.Slot, static, argTypes)
			if i < 0 {
				break
			}
			if args[i] == "" || !IsValidIdentifier(args[i]) && IsValidIdentifier(lv.Name) {
				args[i] = lv.Name
			}

		default:
			n := occurrence[lv.Slot]
			occurrence[lv.Slot]++
			if cfg.SkipLocalMapping {
				break
			}
			lv.Name = x.r.MapMethodVar(x.self, b.Name, b.Desc, lv.Slot, b.RealInsnsBefore(lv.Start), n, lv.Name)
			if cfg.RenameInvalidLocals && IsValidIdentifier(lv.Name) {
				reg.reserve(lv.Name)
			}
		}
	}

	if !cfg.SkipLocalMapping {
		for i := range args {
			args[i] = x.r.MapMethodArg(x.self, b.Name, b.Desc, argSlot(i, static, argTypes), args[i])
			if cfg.RenameInvalidLocals && IsValidIdentifier(args[i]) {
				reg.reserve(args[i])
			}
		}
	}

	if cfg.RenameInvalidLocals {
		for i := range args {
			if !IsValidIdentifier(args[i]) {
				args[i] = nameFromType(x.r, reg, x.r.MapDesc(argTypes[i]), true)
			}
		}
	}

	anyArgs := false
	for _, a := range args {
		if a != "" {
			anyArgs = true
			break
		}
	}
	abstract := b.Access&classfile.AccAbstract != 0

	// A method with parameter metadata but no local variable table
	// keeps its names there instead of gaining a table.
	if b.Locals != nil || b.Params == nil && !abstract && anyArgs {
		written := make([]bool, len(args))
		for _, lv := range b.Locals {
			switch {
			case !static && lv.Slot == 0:
			case lv.Slot < argEnd:
				if i := argIndex(lv.Slot, static, argTypes); i >= 0 {
					lv.Name = args[i]
					written[i] = true
				}
			default:
				if cfg.RenameInvalidLocals && !IsValidIdentifier(lv.Name) {
					lv.Name = nameFromType(x.r, reg, lv.Desc, false)
				}
			}
		}
		if err := t.synthesizeLocals(b, args, argTypes, written, static); err != nil {
			return err
		}
	}

	if b.Params != nil || abstract && anyArgs {
		for len(b.Params) < len(args) {
			b.Params = append(b.Params, &classfile.Param{})
		}
		for i, a := range args {
			b.Params[i].Name = a
		}
	}
	return nil
}

// synthesizeLocals adds local variable table entries spanning the whole
// body for the named arguments the table does not cover.
func (t *methodTransformer) synthesizeLocals(b *classfile.Body, args, argTypes []string, written []bool, static bool) error {
	var first, last int
	haveBounds := false
	for i, a := range args {
		if written[i] || a == "" {
			continue
		}
		if !haveBounds {
			if !b.HasCode() {
				return nil
			}
			var ok bool
			if first, last, ok = b.LabelBounds(); !ok {
				if t.x.cfg.Strict {
					return ErrNoLabels
				}
				t.x.log.Warn("cannot name arguments: method body has no labels",
					zap.String("method", b.Name+b.Desc))
				return nil
			}
			haveBounds = true
		}
		b.Locals = append(b.Locals, &classfile.LocalVar{
			Slot:  argSlot(i, static, argTypes),
			Name:  a,
			Desc:  t.x.r.MapDesc(argTypes[i]),
			Start: first,
			End:   last,
		})
	}
	return nil
}
