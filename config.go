// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"rsc.io/remap/mapping"
	"rsc.io/remap/remap"
)

// options are the settings of a run, read from a TOML file
// and overridden by command-line flags.
type options struct {
	Remap   remapOptions   `toml:"remap"`
	Mapping mappingOptions `toml:"mapping"`
	Run     runOptions     `toml:"run"`
}

type remapOptions struct {
	CheckPackageAccess  bool `toml:"check_package_access"`
	SkipLocalMapping    bool `toml:"skip_local_mapping"`
	RenameInvalidLocals bool `toml:"rename_invalid_locals"`
	Strict              bool `toml:"strict"`
}

type mappingOptions struct {
	// File is resolved relative to the directory of the config file.
	File    string `toml:"file"`
	From    string `toml:"from"`
	To      string `toml:"to"`
	Reverse bool   `toml:"reverse"`
}

type runOptions struct {
	Jobs int `toml:"jobs"`
}

// loadConfig reads the TOML file at path into o.
// Unknown keys are an error so that typos do not go unnoticed.
func loadConfig(path string, o *options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(o); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if o.Mapping.File != "" && !filepath.IsAbs(o.Mapping.File) {
		o.Mapping.File = filepath.Join(filepath.Dir(path), o.Mapping.File)
	}
	return nil
}

// tables loads the rename tables named by o.
// With no mapping file, nothing is renamed.
func (o *options) tables() (*mapping.Tables, error) {
	if o.Mapping.File == "" {
		return mapping.NewTables(), nil
	}
	t, err := mapping.Load(o.Mapping.File, o.Mapping.From, o.Mapping.To)
	if err != nil {
		return nil, err
	}
	if o.Mapping.Reverse {
		t = t.Invert()
	}
	return t, nil
}

func (o *options) config(log *zap.Logger) remap.Config {
	return remap.Config{
		CheckPackageAccess:  o.Remap.CheckPackageAccess,
		SkipLocalMapping:    o.Remap.SkipLocalMapping,
		RenameInvalidLocals: o.Remap.RenameInvalidLocals,
		Strict:              o.Remap.Strict,
		Logger:              log,
	}
}
