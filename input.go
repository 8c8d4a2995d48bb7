// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/sumdb/dirhash"

	"rsc.io/remap/classfile"
	"rsc.io/remap/remap"
)

type inputKind int

const (
	classFile inputKind = iota
	directory
	archive
)

// An input is one command-line argument: a class file,
// a directory tree or a jar or zip archive.
type input struct {
	path    string
	kind    inputKind
	entries []*entry
}

// An entry is one file of an input. Class files carry a unit to remap;
// anything else is copied to the output unchanged.
type entry struct {
	name string // slash-separated, relative to the input root
	data []byte
	orig string // class name before remapping
	unit *remap.Unit
}

func isArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jar", ".zip":
		return true
	}
	return false
}

func readInput(file string) (*input, error) {
	fi, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	in := &input{path: file}
	switch {
	case fi.IsDir():
		in.kind = directory
		err = filepath.WalkDir(file, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(file, p)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			return in.add(filepath.ToSlash(rel), data)
		})

	case isArchive(file):
		in.kind = archive
		err = in.readZip()

	default:
		in.kind = classFile
		var data []byte
		if data, err = os.ReadFile(file); err == nil {
			err = in.add(filepath.Base(file), data)
		}
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (in *input) readZip() error {
	zr, err := zip.OpenReader(in.path)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", in.display(f.Name), err)
		}
		if err := in.add(f.Name, data); err != nil {
			return err
		}
	}
	return nil
}

func (in *input) add(name string, data []byte) error {
	e := &entry{name: name, data: data}
	if in.kind == classFile || strings.HasSuffix(name, ".class") {
		c, err := classfile.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", in.display(name), err)
		}
		e.orig = c.Name()
		e.unit = &remap.Unit{Path: in.display(name), Class: c}
		if in.kind == classFile {
			// A lone class file is placed by its class name.
			e.name = e.orig + ".class"
		}
	}
	in.entries = append(in.entries, e)
	return nil
}

// display returns the name of entry name for messages.
func (in *input) display(name string) string {
	switch in.kind {
	case classFile:
		return in.path
	case archive:
		return in.path + "!/" + name
	}
	return path.Join(filepath.ToSlash(in.path), name)
}

// outName returns the name of e in the output. Class files stored
// under their class name move with the class.
func (e *entry) outName() string {
	if e.unit == nil {
		return e.name
	}
	old := e.orig + ".class"
	if e.name != old && !strings.HasSuffix(e.name, "/"+old) {
		return e.name
	}
	return e.name[:len(e.name)-len(old)] + e.unit.Class.Name() + ".class"
}

func (e *entry) encode() ([]byte, error) {
	if e.unit == nil {
		return e.data, nil
	}
	return classfile.Write(e.unit.Class)
}

// writeOutput writes every entry of inputs to out, a directory or,
// when out is named like one, a jar or zip archive.
func writeOutput(out string, inputs []*input, log *zap.Logger) error {
	seen := make(map[string]string)
	var files []*entry
	for _, in := range inputs {
		for _, e := range in.entries {
			name := e.outName()
			if prev, ok := seen[name]; ok {
				return conflictf(name, "written by both %s and %s", prev, in.display(e.name))
			}
			seen[name] = in.display(e.name)
			files = append(files, e)
		}
	}

	var err error
	var hash string
	if isArchive(out) {
		err = writeZip(out, files)
		if err == nil {
			hash, err = dirhash.HashZip(out, dirhash.Hash1)
		}
	} else {
		err = writeDir(out, files)
		if err == nil {
			hash, err = dirhash.HashDir(out, "", dirhash.Hash1)
		}
	}
	if err != nil {
		return err
	}
	log.Info("wrote output", zap.String("path", out), zap.Int("files", len(files)), zap.String("hash", hash))
	return nil
}

func writeZip(out string, files []*entry) (err error) {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(f)
	for _, e := range files {
		data, err := e.encode()
		if err != nil {
			return err
		}
		w, err := zw.Create(e.outName())
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeDir(out string, files []*entry) error {
	for _, e := range files {
		data, err := e.encode()
		if err != nil {
			return err
		}
		targ := filepath.Join(out, filepath.FromSlash(e.outName()))
		if err := os.MkdirAll(filepath.Dir(targ), 0777); err != nil {
			return err
		}
		if err := os.WriteFile(targ, data, 0666); err != nil {
			return err
		}
	}
	return nil
}
