// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mapping

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// A SyntaxError reports a malformed mapping file.
type SyntaxError struct {
	File string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// raw records hold names per namespace; descriptors are in namespace 0.
type rawClass struct {
	names   []string
	fields  []*rawMember
	methods []*rawMember
}

type rawMember struct {
	desc   string
	names  []string
	params []rawLocal
	vars   []rawLocal
}

type rawLocal struct {
	slot, start, row int
	names            []string
}

type tinyParser struct {
	file       string
	line       int
	namespaces []string
	escaped    bool
	classes    []*rawClass
	byName     map[string]*rawClass
}

func (p *tinyParser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{p.file, p.line, fmt.Sprintf(format, args...)}
}

// ParseTiny reads a Tiny v1 or v2 mapping file, producing tables that
// rename from namespace from to namespace to.
func ParseTiny(r io.Reader, file, from, to string) (*Tables, error) {
	p := &tinyParser{file: file, byName: make(map[string]*rawClass)}
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, p.errorf("empty mapping file")
	}
	p.line = 1
	header := strings.Split(strings.TrimRight(s.Text(), "\r"), "\t")
	var err error
	switch {
	case header[0] == "v1":
		err = p.checkVersion("v1", "v1")
		if err == nil {
			p.namespaces = header[1:]
			err = p.parseV1(s)
		}
	case header[0] == "tiny" && len(header) >= 3:
		err = p.checkVersion("v"+header[1]+"."+header[2], "v2")
		if err == nil {
			p.namespaces = header[3:]
			err = p.parseV2(s)
		}
	default:
		err = p.errorf("unrecognized mapping header %q", s.Text())
	}
	if err != nil {
		return nil, err
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return p.tables(from, to)
}

func (p *tinyParser) checkVersion(v, major string) error {
	if !semver.IsValid(v) || semver.Major(v) != major {
		return p.errorf("unsupported tiny version %s", strings.TrimPrefix(v, "v"))
	}
	return nil
}

func (p *tinyParser) class(name string) *rawClass {
	c := p.byName[name]
	if c == nil {
		c = &rawClass{names: []string{name}}
		p.byName[name] = c
		p.classes = append(p.classes, c)
	}
	return c
}

func (p *tinyParser) parseV1(s *bufio.Scanner) error {
	n := len(p.namespaces)
	for s.Scan() {
		p.line++
		line := strings.TrimRight(s.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "\t")
		switch f[0] {
		case "CLASS":
			if len(f) != 1+n {
				return p.errorf("CLASS line has %d names, want %d", len(f)-1, n)
			}
			c := p.class(f[1])
			c.names = f[1:]
		case "FIELD", "METHOD":
			if len(f) != 3+n {
				return p.errorf("%s line has %d names, want %d", f[0], len(f)-3, n)
			}
			c := p.class(f[1])
			m := &rawMember{desc: f[2], names: f[3:]}
			if f[0] == "FIELD" {
				c.fields = append(c.fields, m)
			} else {
				c.methods = append(c.methods, m)
			}
		default:
			// Other v1 dialects add line kinds we have no use for.
		}
	}
	return nil
}

func (p *tinyParser) parseV2(s *bufio.Scanner) error {
	n := len(p.namespaces)
	var c *rawClass
	var m *rawMember
	inHeader := true
	for s.Scan() {
		p.line++
		line := strings.TrimRight(s.Text(), "\r")
		if line == "" {
			continue
		}
		depth := 0
		for depth < len(line) && line[depth] == '\t' {
			depth++
		}
		f := strings.Split(line[depth:], "\t")
		if inHeader && depth == 1 {
			if f[0] == "escaped-names" {
				p.escaped = true
			}
			continue
		}
		inHeader = false
		if f[0] == "c" && depth > 0 {
			continue // comment
		}
		names := func(from int) ([]string, error) {
			if len(f)-from != n {
				return nil, p.errorf("%s line has %d names, want %d", f[0], len(f)-from, n)
			}
			out := f[from:]
			if p.escaped {
				for i, s := range out {
					out[i] = unescape(s)
				}
			}
			return out, nil
		}
		var err error
		switch {
		case depth == 0 && f[0] == "c":
			var ns []string
			if ns, err = names(1); err != nil {
				return err
			}
			c = p.class(ns[0])
			c.names = ns
			m = nil
		case depth == 1 && (f[0] == "f" || f[0] == "m") && c != nil:
			if len(f) < 2 {
				return p.errorf("missing descriptor")
			}
			m = &rawMember{desc: f[1]}
			if m.names, err = names(2); err != nil {
				return err
			}
			if f[0] == "f" {
				c.fields = append(c.fields, m)
			} else {
				c.methods = append(c.methods, m)
			}
		case depth == 2 && f[0] == "p" && m != nil:
			var l rawLocal
			if len(f) < 2 {
				return p.errorf("missing parameter index")
			}
			if l.slot, err = strconv.Atoi(f[1]); err != nil {
				return p.errorf("bad parameter index %q", f[1])
			}
			if l.names, err = names(2); err != nil {
				return err
			}
			m.params = append(m.params, l)
		case depth == 2 && f[0] == "v" && m != nil:
			var l rawLocal
			if len(f) < 4 {
				return p.errorf("short variable line")
			}
			for i, dst := range []*int{&l.slot, &l.start, &l.row} {
				if *dst, err = strconv.Atoi(f[1+i]); err != nil {
					return p.errorf("bad variable field %q", f[1+i])
				}
			}
			if l.names, err = names(4); err != nil {
				return err
			}
			m.vars = append(m.vars, l)
		case depth >= 2:
			// Comments and unknown sections nested under members.
		default:
			return p.errorf("unexpected %q at depth %d", f[0], depth)
		}
	}
	return nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '0':
			sb.WriteByte(0)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func (p *tinyParser) ns(name string) (int, error) {
	for i, ns := range p.namespaces {
		if ns == name {
			return i, nil
		}
	}
	return 0, &SyntaxError{p.file, 0, fmt.Sprintf("no namespace %q (have %s)", name, strings.Join(p.namespaces, ", "))}
}

// tables converts the raw records into Tables renaming from→to.
// Descriptors in the file use namespace 0 and are translated into from.
func (p *tinyParser) tables(from, to string) (*Tables, error) {
	fi, err := p.ns(from)
	if err != nil {
		return nil, err
	}
	ti, err := p.ns(to)
	if err != nil {
		return nil, err
	}
	name := func(names []string, i int) string {
		if i < len(names) {
			return names[i]
		}
		return ""
	}
	// Class names missing in a namespace fall back to namespace 0.
	className := func(c *rawClass, i int) string {
		if s := name(c.names, i); s != "" {
			return s
		}
		return c.names[0]
	}
	toFrom := NewTables()
	for _, c := range p.classes {
		toFrom.Classes[c.names[0]] = className(c, fi)
	}

	t := NewTables()
	for _, c := range p.classes {
		owner := className(c, fi)
		if dst := className(c, ti); dst != owner {
			t.Classes[owner] = dst
		}
		for _, f := range c.fields {
			src, dst := name(f.names, fi), name(f.names, ti)
			if src == "" || dst == "" || src == dst {
				continue
			}
			t.Fields[MemberRef{owner, src, toFrom.MapDesc(f.desc)}] = dst
		}
		for _, m := range c.methods {
			src, dst := name(m.names, fi), name(m.names, ti)
			if src == "" {
				continue
			}
			ref := MemberRef{owner, src, toFrom.MapDesc(m.desc)}
			if dst != "" && dst != src {
				t.Methods[ref] = dst
			}
			for _, l := range m.params {
				if dst := name(l.names, ti); dst != "" {
					t.Args[ArgKey{ref, l.slot}] = Arg{Name: name(l.names, fi), NewName: dst}
				}
			}
			for _, l := range m.vars {
				if dst := name(l.names, ti); dst != "" {
					t.Vars[ref] = append(t.Vars[ref], VarEntry{
						Slot:       l.slot,
						StartInsn:  l.start,
						Occurrence: l.row,
						Name:       name(l.names, fi),
						NewName:    dst,
					})
				}
			}
		}
	}
	return t, nil
}
