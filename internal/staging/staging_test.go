// SPDX-License-Identifier: MPL-2.0

package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func defaultLayout() Layout {
	return Layout{Base: "Foo", Include: "include", Source: "src"}
}

func TestNew(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()

	w, err := New(tmp, defaultLayout())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = w.Remove() }()

	if filepath.Dir(w.Parent()) != tmp {
		t.Errorf("parent %s is not below %s", w.Parent(), tmp)
	}
	if !strings.HasPrefix(filepath.Base(w.Parent()), parentPrefix) {
		t.Errorf("parent %s lacks prefix %q", w.Parent(), parentPrefix)
	}
	if w.Root() != filepath.Join(w.Parent(), "Foo") {
		t.Errorf("Root() = %s", w.Root())
	}

	for _, dir := range []string{w.IncludeDir(), w.SourceDir(), w.SupportDir()} {
		info, statErr := os.Stat(dir)
		if statErr != nil {
			t.Errorf("staging dir %s: %v", dir, statErr)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
	if filepath.Base(w.SupportDir()) != SupportDir {
		t.Errorf("SupportDir() = %s", w.SupportDir())
	}
}

func TestNew_UniqueParents(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()

	a, err := New(tmp, defaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Remove() }()
	b, err := New(tmp, defaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = b.Remove() }()

	if a.Parent() == b.Parent() {
		t.Errorf("two workspaces share parent %s", a.Parent())
	}
}

func TestNew_InvalidLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		layout Layout
	}{
		{"empty base", Layout{Include: "include", Source: "src"}},
		{"nested include", Layout{Base: "Foo", Include: "a/b", Source: "src"}},
		{"dot-dot source", Layout{Base: "Foo", Include: "include", Source: ".."}},
		{"same include and source", Layout{Base: "Foo", Include: "code", Source: "code"}},
		{"reserved support name", Layout{Base: "Foo", Include: SupportDir, Source: "src"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tmp := t.TempDir()
			_, err := New(tmp, tt.layout)
			if !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("New() error = %v, want ErrInvalidLayout", err)
			}
			entries, readErr := os.ReadDir(tmp)
			if readErr != nil {
				t.Fatal(readErr)
			}
			if len(entries) != 0 {
				t.Errorf("invalid layout left %d entries behind", len(entries))
			}
		})
	}
}

func TestWorkspace_CopyFile(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	src := filepath.Join(tmp, "run.sh")
	if err := os.WriteFile(src, []byte("echo hi\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmp, defaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Remove() }()

	dst, err := w.CopyFile(src, w.SupportDir(), "run.sh")
	if err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "echo hi\n" {
		t.Errorf("copied contents = %q", data)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("copy lost the executable bit: %v", info.Mode())
	}
}

func TestWorkspace_CopyFileReadOnlySource(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	src := filepath.Join(tmp, "Foo.h")
	if err := os.WriteFile(src, []byte("#include <core/include/x.h>\n"), 0o444); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmp, defaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Remove() }()

	dst, err := w.CopyFile(src, w.IncludeDir(), "Foo.h")
	if err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("staged copy mode = %v, want 0644", got)
	}
	if err := os.WriteFile(dst, []byte("rewritten\n"), info.Mode().Perm()); err != nil {
		t.Errorf("staged copy is not writable: %v", err)
	}
}

func TestWorkspace_CopyFileOutside(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()

	w, err := New(tmp, defaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Remove() }()

	if _, err := w.WriteFile(tmp, "escape", []byte("x")); err == nil {
		t.Error("WriteFile() outside the workspace should fail")
	}
	if _, err := w.CopyFile(filepath.Join(tmp, "x"), filepath.Join(w.Root(), ".."), "x"); err == nil {
		t.Error("CopyFile() outside the workspace should fail")
	}
}

func TestWorkspace_Remove(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()

	w, err := New(tmp, defaultLayout())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteFile(w.Root(), "Makefile", []byte("x")); err != nil {
		t.Fatal(err)
	}

	if err := w.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(w.Parent()); !os.IsNotExist(err) {
		t.Errorf("parent still exists after Remove(): %v", err)
	}
	if err := w.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
	if _, err := w.WriteFile(w.Root(), "late", nil); !errors.Is(err, ErrRemoved) {
		t.Errorf("WriteFile() after Remove() error = %v, want ErrRemoved", err)
	}
}
