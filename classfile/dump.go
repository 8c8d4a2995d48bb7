// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package classfile

import (
	"fmt"
	"strconv"
	"strings"
)

var opNames = map[int]string{
	OpLdc:             "ldc",
	OpLdcW:            "ldc_w",
	OpLdc2W:           "ldc2_w",
	OpGetstatic:       "getstatic",
	OpPutstatic:       "putstatic",
	OpGetfield:        "getfield",
	OpPutfield:        "putfield",
	OpInvokevirtual:   "invokevirtual",
	OpInvokespecial:   "invokespecial",
	OpInvokestatic:    "invokestatic",
	OpInvokeinterface: "invokeinterface",
	OpInvokedynamic:   "invokedynamic",
	OpNew:             "new",
	OpAnewarray:       "anewarray",
	OpCheckcast:       "checkcast",
	OpInstanceof:      "instanceof",
	OpMultianewarray:  "multianewarray",
}

// Dump returns a textual listing of the names in c: its header, members,
// the constant operands of its instructions and the names in the
// attributes the remapper rewrites. It is meant for comparing classes,
// not for disassembly; instructions without constant operands are omitted.
func Dump(c *Class) string {
	p := c.Pool
	var b strings.Builder
	fmt.Fprintf(&b, "class %s access=0x%04x", c.Name(), c.Access)
	if s := c.SuperName(); s != "" {
		fmt.Fprintf(&b, " extends %s", s)
	}
	if ifs := c.InterfaceNames(); len(ifs) > 0 {
		fmt.Fprintf(&b, " implements %s", strings.Join(ifs, ", "))
	}
	b.WriteString("\n")
	dumpAttrs(&b, p, c.Attributes, "\t")
	for _, f := range c.Fields {
		fmt.Fprintf(&b, "field %s %s access=0x%04x\n", f.Name(p), f.Desc(p), f.Access)
		dumpAttrs(&b, p, f.Attributes, "\t")
	}
	for _, m := range c.Methods {
		fmt.Fprintf(&b, "method %s%s access=0x%04x\n", m.Name(p), m.Desc(p), m.Access)
		dumpAttrs(&b, p, m.Attributes, "\t")
	}
	return b.String()
}

func dumpAttrs(b *strings.Builder, p *Pool, list []*Attribute, indent string) {
	for _, a := range list {
		name := p.UTF8(a.NameIndex)
		switch name {
		case AttrSourceFile, AttrSignature:
			if i, err := DecodeIndex(a); err == nil {
				fmt.Fprintf(b, "%s%s %s\n", indent, name, p.UTF8(i))
			}

		case AttrInnerClasses:
			list, _ := DecodeInnerClasses(a)
			for _, ic := range list {
				fmt.Fprintf(b, "%sinner %s outer=%s name=%s\n", indent, p.ClassName(ic.Inner), p.ClassName(ic.Outer), p.UTF8(ic.Name))
			}

		case AttrEnclosingMethod:
			class, method, err := DecodeEnclosingMethod(a)
			if err == nil {
				n, d := p.NameAndType(method)
				fmt.Fprintf(b, "%senclosing %s %s%s\n", indent, p.ClassName(class), n, d)
			}

		case AttrExceptions:
			r := &reader{data: a.Data}
			n := int(r.u2())
			for i := 0; i < n && r.err == nil; i++ {
				fmt.Fprintf(b, "%sthrows %s\n", indent, p.ClassName(r.u2()))
			}

		case AttrMethodParameters:
			rows, _ := DecodeMethodParameters(a)
			var names []string
			for _, r := range rows {
				names = append(names, strconv.Quote(p.UTF8(r.NameIndex)))
			}
			fmt.Fprintf(b, "%sparams %s\n", indent, strings.Join(names, " "))

		case AttrLocalVariableTable, AttrLocalVariableTypeTable:
			rows, _ := DecodeLocalVars(a)
			for _, r := range rows {
				fmt.Fprintf(b, "%slocal %d %s %s [%d,%d)\n", indent, r.Slot, p.UTF8(r.NameIndex), p.UTF8(r.DescIndex), r.StartPC, int(r.StartPC)+int(r.Length))
			}

		case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
			list, _ := DecodeAnnotations(a)
			for _, an := range list {
				fmt.Fprintf(b, "%s@%s\n", indent, dumpAnnotation(p, an))
			}

		case AttrRuntimeVisibleParameterAnnotations, AttrRuntimeInvisibleParameterAnnotations:
			params, _ := DecodeParameterAnnotations(a)
			for i, list := range params {
				for _, an := range list {
					fmt.Fprintf(b, "%sparam %d @%s\n", indent, i, dumpAnnotation(p, an))
				}
			}

		case AttrRuntimeVisibleTypeAnnotations, AttrRuntimeInvisibleTypeAnnotations:
			list, _ := DecodeTypeAnnotations(a)
			for _, ta := range list {
				fmt.Fprintf(b, "%stype 0x%02x @%s\n", indent, ta.TargetType, dumpAnnotation(p, ta.Annotation))
			}

		case AttrAnnotationDefault:
			if v, err := DecodeElementValue(a); err == nil {
				fmt.Fprintf(b, "%sdefault %s\n", indent, dumpValue(p, v))
			}

		case AttrRecord:
			list, _ := DecodeRecord(a)
			for _, rc := range list {
				fmt.Fprintf(b, "%scomponent %s %s\n", indent, p.UTF8(rc.NameIndex), p.UTF8(rc.DescIndex))
				dumpAttrs(b, p, rc.Attributes, indent+"\t")
			}

		case AttrBootstrapMethods:
			list, _ := DecodeBootstrapMethods(a)
			for i, bsm := range list {
				var args []string
				for _, arg := range bsm.Args {
					args = append(args, dumpConst(p, arg))
				}
				fmt.Fprintf(b, "%sbootstrap %d %s [%s]\n", indent, i, dumpConst(p, bsm.Ref), strings.Join(args, ", "))
			}

		case AttrCode:
			code, err := DecodeCode(a)
			if err != nil {
				fmt.Fprintf(b, "%scode: %v\n", indent, err)
				continue
			}
			Walk(code.Code, func(in Insn) {
				if name, ok := opNames[in.Op]; ok {
					fmt.Fprintf(b, "%s%d: %s %s\n", indent, in.Offset, name, dumpConst(p, in.Index))
				}
			}, nil)
			for _, h := range code.Handlers {
				if h.CatchType != 0 {
					fmt.Fprintf(b, "%scatch %s\n", indent, p.ClassName(h.CatchType))
				}
			}
			dumpAttrs(b, p, code.Attributes, indent)
		}
	}
}

func dumpConst(p *Pool, i uint16) string {
	c := p.At(i)
	if c == nil {
		return "#" + strconv.Itoa(int(i))
	}
	switch c.Tag {
	case TagUTF8:
		return strconv.Quote(p.UTF8(i))
	case TagClass:
		return p.ClassName(i)
	case TagString:
		return strconv.Quote(p.UTF8(c.A))
	case TagInteger:
		return strconv.Itoa(int(int32(uint32(c.Bits))))
	case TagLong:
		return strconv.FormatInt(int64(c.Bits), 10) + "L"
	case TagFieldref:
		owner, name, desc := p.MemberRef(i)
		return owner + "." + name + ":" + desc
	case TagMethodref, TagInterfaceMethodref:
		owner, name, desc := p.MemberRef(i)
		return owner + "." + name + desc
	case TagMethodType:
		return "methodtype " + p.MethodTypeDesc(i)
	case TagMethodHandle:
		h, _ := p.MethodHandle(i)
		return fmt.Sprintf("handle %d %s", h.Kind, h)
	case TagDynamic, TagInvokeDynamic:
		name, desc := p.NameAndType(c.B)
		return fmt.Sprintf("%s%s bootstrap %d", name, desc, c.A)
	}
	return fmt.Sprintf("#%d tag %d", i, c.Tag)
}

func dumpAnnotation(p *Pool, a *Annotation) string {
	var elems []string
	for _, e := range a.Elements {
		elems = append(elems, p.UTF8(e.NameIndex)+"="+dumpValue(p, e.Value))
	}
	return p.UTF8(a.TypeIndex) + "(" + strings.Join(elems, ", ") + ")"
}

func dumpValue(p *Pool, v *ElementValue) string {
	switch v.Tag {
	case 'c':
		return p.UTF8(v.Const) + ".class"
	case 'e':
		return p.UTF8(v.EnumType) + "." + p.UTF8(v.Const)
	case '@':
		return "@" + dumpAnnotation(p, v.Annotation)
	case '[':
		var vals []string
		for _, ev := range v.Values {
			vals = append(vals, dumpValue(p, ev))
		}
		return "{" + strings.Join(vals, ", ") + "}"
	}
	return dumpConst(p, v.Const)
}
