// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import (
	"encoding/binary"
	"fmt"
)

// Opcodes the remapper inspects.
const (
	OpLdc             = 0x12
	OpLdcW            = 0x13
	OpLdc2W           = 0x14
	OpIload           = 0x15
	OpLload           = 0x16
	OpAload           = 0x19
	OpIstore          = 0x36
	OpAstore          = 0x3a
	OpIfeq            = 0x99
	OpGoto            = 0xa7
	OpJsr             = 0xa8
	OpRet             = 0xa9
	OpTableswitch     = 0xaa
	OpLookupswitch    = 0xab
	OpIreturn         = 0xac
	OpReturn          = 0xb1
	OpGetstatic       = 0xb2
	OpPutstatic       = 0xb3
	OpGetfield        = 0xb4
	OpPutfield        = 0xb5
	OpInvokevirtual   = 0xb6
	OpInvokespecial   = 0xb7
	OpInvokestatic    = 0xb8
	OpInvokeinterface = 0xb9
	OpInvokedynamic   = 0xba
	OpNew             = 0xbb
	OpAnewarray       = 0xbd
	OpCheckcast       = 0xc0
	OpInstanceof      = 0xc1
	OpWide            = 0xc4
	OpMultianewarray  = 0xc5
	OpIfnull          = 0xc6
	OpIfnonnull       = 0xc7
	OpGotoW           = 0xc8
	OpJsrW            = 0xc9

	// OpLabel marks a label pseudo-instruction in a decoded Body.
	OpLabel = -1
)

// An Insn is one decoded instruction, or a label when Op is OpLabel.
// Index is the constant pool operand of instructions that have one.
type Insn struct {
	Offset int
	Op     int
	Index  uint16
}

// IsLabel reports whether i is a label pseudo-instruction.
func (i Insn) IsLabel() bool { return i.Op == OpLabel }

// insnLen gives the fixed length of each opcode; 0 marks variable
// length (switches and wide) and -1 undefined opcodes.
var insnLen [256]int8

func init() {
	for op := range insnLen {
		insnLen[op] = -1
	}
	set := func(lo, hi int, n int8) {
		for op := lo; op <= hi; op++ {
			insnLen[op] = n
		}
	}
	set(0x00, 0x0f, 1)
	set(0x10, 0x10, 2)
	set(0x11, 0x11, 3)
	set(0x12, 0x12, 2)
	set(0x13, 0x14, 3)
	set(0x15, 0x19, 2)
	set(0x1a, 0x35, 1)
	set(0x36, 0x3a, 2)
	set(0x3b, 0x83, 1)
	set(0x84, 0x84, 3)
	set(0x85, 0x98, 1)
	set(0x99, 0xa8, 3)
	set(0xa9, 0xa9, 2)
	set(0xaa, 0xab, 0)
	set(0xac, 0xb1, 1)
	set(0xb2, 0xb8, 3)
	set(0xb9, 0xba, 5)
	set(0xbb, 0xbb, 3)
	set(0xbc, 0xbc, 2)
	set(0xbd, 0xbd, 3)
	set(0xbe, 0xbf, 1)
	set(0xc0, 0xc1, 3)
	set(0xc2, 0xc3, 1)
	set(0xc4, 0xc4, 0)
	set(0xc5, 0xc5, 4)
	set(0xc6, 0xc7, 3)
	set(0xc8, 0xc9, 5)
}

// Walk decodes code one instruction at a time, calling fn for each.
// targets receives every branch target offset; it may be nil.
func Walk(code []byte, fn func(Insn), targets func(int)) error {
	s16 := func(b []byte) int { return int(int16(binary.BigEndian.Uint16(b))) }
	s32 := func(b []byte) int { return int(int32(binary.BigEndian.Uint32(b))) }
	for pc := 0; pc < len(code); {
		op := int(code[pc])
		n := int(insnLen[op])
		switch {
		case n < 0:
			return &FormatError{pc, fmt.Sprintf("undefined opcode 0x%02x", op)}
		case op == OpWide:
			n = 4
			if pc+1 < len(code) && code[pc+1] == 0x84 {
				n = 6
			}
		case op == OpTableswitch || op == OpLookupswitch:
			p := (pc + 4) &^ 3
			if p+12 > len(code) {
				return &FormatError{pc, "truncated switch"}
			}
			if targets != nil {
				targets(pc + s32(code[p:]))
			}
			if op == OpTableswitch {
				lo, hi := s32(code[p+4:]), s32(code[p+8:])
				if hi < lo || p+12+4*(hi-lo+1) > len(code) {
					return &FormatError{pc, "bad tableswitch bounds"}
				}
				for k := 0; k <= hi-lo; k++ {
					if targets != nil {
						targets(pc + s32(code[p+12+4*k:]))
					}
				}
				n = p + 12 + 4*(hi-lo+1) - pc
			} else {
				npairs := s32(code[p+4:])
				if npairs < 0 || p+8+8*npairs > len(code) {
					return &FormatError{pc, "bad lookupswitch size"}
				}
				for k := 0; k < npairs; k++ {
					if targets != nil {
						targets(pc + s32(code[p+8+8*k+4:]))
					}
				}
				n = p + 8 + 8*npairs - pc
			}
		}
		if pc+n > len(code) {
			return &FormatError{pc, fmt.Sprintf("truncated instruction 0x%02x", op)}
		}
		in := Insn{Offset: pc, Op: op}
		switch {
		case op == OpLdc:
			in.Index = uint16(code[pc+1])
		case op == OpLdcW || op == OpLdc2W,
			op >= OpGetstatic && op <= OpInvokedynamic,
			op == OpNew, op == OpAnewarray, op == OpCheckcast, op == OpInstanceof, op == OpMultianewarray:
			in.Index = binary.BigEndian.Uint16(code[pc+1:])
		case op >= OpIfeq && op <= OpJsr, op == OpIfnull, op == OpIfnonnull:
			if targets != nil {
				targets(pc + s16(code[pc+1:]))
			}
		case op == OpGotoW || op == OpJsrW:
			if targets != nil {
				targets(pc + s32(code[pc+1:]))
			}
		}
		fn(in)
		pc += n
	}
	return nil
}
