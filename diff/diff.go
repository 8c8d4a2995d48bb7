// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff produces unified diffs of class listings
// using the system's 'diff' tool.
package diff

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// Diff returns a unified diff turning old into new, with a header naming
// oldName and newName. Identical inputs produce no output.
func Diff(oldName string, old []byte, newName string, new []byte) ([]byte, error) {
	if bytes.Equal(old, new) {
		return nil, nil
	}
	tool, err := exec.LookPath("diff")
	if err != nil {
		return nil, fmt.Errorf("showing diff: %w", err)
	}

	f1, err := writeTemp(old)
	if err != nil {
		return nil, err
	}
	defer os.Remove(f1)
	f2, err := writeTemp(new)
	if err != nil {
		return nil, err
	}
	defer os.Remove(f2)

	// diff exits with status 1 when the inputs differ.
	data, err := exec.Command(tool, "-u", f1, f2).Output()
	if err != nil && len(data) == 0 {
		return nil, fmt.Errorf("diff %s %s: %w", oldName, newName, err)
	}
	return rewriteHeader(data, oldName, newName), nil
}

// rewriteHeader replaces the temporary file names in the two header
// lines of a unified diff with the given names.
func rewriteHeader(data []byte, oldName, newName string) []byte {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return data
	}
	j := bytes.IndexByte(data[i+1:], '\n')
	if j < 0 {
		return data
	}
	body := data[i+1+j+1:]
	if !bytes.HasPrefix(body, []byte("@")) {
		return data
	}
	hdr := fmt.Sprintf("diff %s %s\n--- %s\n+++ %s\n", oldName, newName, oldName, newName)
	return append([]byte(hdr), body...)
}

func writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "remap-diff")
	if err != nil {
		return "", err
	}
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
