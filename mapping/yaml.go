// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mapping

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlFile is the YAML rename table format. Names and descriptors
// are in the source namespace.
//
//	classes:
//	  - name: a
//	    to: com/example/Widget
//	    fields:
//	      - {name: a, desc: I, to: count}
//	    methods:
//	      - name: b
//	        desc: (I)V
//	        to: resize
//	        args:
//	          - {slot: 1, to: width}
//	        vars:
//	          - {slot: 2, start: 4, to: scaled}
type yamlFile struct {
	Classes []yamlClass `yaml:"classes"`
}

type yamlClass struct {
	Name    string       `yaml:"name"`
	To      string       `yaml:"to,omitempty"`
	Fields  []yamlMember `yaml:"fields,omitempty"`
	Methods []yamlMember `yaml:"methods,omitempty"`
}

type yamlMember struct {
	Name string      `yaml:"name"`
	Desc string      `yaml:"desc"`
	To   string      `yaml:"to,omitempty"`
	Args []yamlLocal `yaml:"args,omitempty"`
	Vars []yamlLocal `yaml:"vars,omitempty"`
}

type yamlLocal struct {
	Slot       int    `yaml:"slot"`
	Start      *int   `yaml:"start,omitempty"`
	Occurrence *int   `yaml:"occurrence,omitempty"`
	Name       string `yaml:"name,omitempty"`
	To         string `yaml:"to"`
}

// ParseYAML reads the YAML rename table format.
func ParseYAML(data []byte, file string) (*Tables, error) {
	var yf yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&yf); err != nil && err != io.EOF {
		return nil, &SyntaxError{File: file, Msg: err.Error()}
	}
	t := NewTables()
	for _, c := range yf.Classes {
		if c.Name == "" {
			return nil, &SyntaxError{File: file, Msg: "class entry without name"}
		}
		if c.To != "" && c.To != c.Name {
			t.Classes[c.Name] = c.To
		}
		for _, f := range c.Fields {
			if f.To != "" && f.To != f.Name {
				t.Fields[MemberRef{c.Name, f.Name, f.Desc}] = f.To
			}
		}
		for _, m := range c.Methods {
			if !strings.HasPrefix(m.Desc, "(") {
				return nil, &SyntaxError{File: file, Msg: fmt.Sprintf("method %s.%s: bad descriptor %q", c.Name, m.Name, m.Desc)}
			}
			ref := MemberRef{c.Name, m.Name, m.Desc}
			if m.To != "" && m.To != m.Name {
				t.Methods[ref] = m.To
			}
			for _, a := range m.Args {
				t.Args[ArgKey{ref, a.Slot}] = Arg{Name: a.Name, NewName: a.To}
			}
			for _, v := range m.Vars {
				e := VarEntry{Slot: v.Slot, StartInsn: -1, Occurrence: -1, Name: v.Name, NewName: v.To}
				if v.Start != nil {
					e.StartInsn = *v.Start
				}
				if v.Occurrence != nil {
					e.Occurrence = *v.Occurrence
				}
				t.Vars[ref] = append(t.Vars[ref], e)
			}
		}
	}
	return t, nil
}

// Load reads the mapping file at path. Files named *.yaml or *.yml use
// the YAML format; anything else is read as Tiny v1 or v2, with from and
// to selecting the namespaces.
func Load(path, from, to string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping: %w", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseYAML(data, path)
	}
	return ParseTiny(bytes.NewReader(data), path, from, to)
}
