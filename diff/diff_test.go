// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diff

import (
	"os/exec"
	"testing"
)

const (
	oldName = "a/b.class"
	newName = "com/ex/Widget.class"
	oldText = "class a/b access=0x0021\nfield c I access=0x0002\nmethod d()V access=0x0001\n"
	newText = "class com/ex/Widget access=0x0021\nfield c I access=0x0002\nmethod reset()V access=0x0001\n"
	want    = "diff a/b.class com/ex/Widget.class\n--- a/b.class\n+++ com/ex/Widget.class\n@@ -1,3 +1,3 @@\n-class a/b access=0x0021\n+class com/ex/Widget access=0x0021\n field c I access=0x0002\n-method d()V access=0x0001\n+method reset()V access=0x0001\n"
)

func TestDiff(t *testing.T) {
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("no diff tool")
	}
	out, err := Diff(oldName, []byte(oldText), newName, []byte(newText))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != want {
		t.Errorf("Diff: have:\n%s", out)
		t.Errorf("Diff: want:\n%s", want)
	}
}

func TestDiffSame(t *testing.T) {
	out, err := Diff(oldName, []byte(oldText), oldName, []byte(oldText))
	if err != nil || out != nil {
		t.Errorf("Diff of equal inputs = %q, %v, want nil, nil", out, err)
	}
}

var headerTests = []struct {
	in, out string
}{
	{"", ""},
	{"one line", "one line"},
	{"--- x\n+++ y\nnot a hunk\n", "--- x\n+++ y\nnot a hunk\n"},
	{"--- x\n+++ y\n@@ -1 +1 @@\n-a\n+b\n", "diff o n\n--- o\n+++ n\n@@ -1 +1 @@\n-a\n+b\n"},
}

func TestRewriteHeader(t *testing.T) {
	for _, tt := range headerTests {
		if out := string(rewriteHeader([]byte(tt.in), "o", "n")); out != tt.out {
			t.Errorf("rewriteHeader(%q) = %q, want %q", tt.in, out, tt.out)
		}
	}
}
