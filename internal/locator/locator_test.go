// SPDX-License-Identifier: MPL-2.0

package locator

import (
	"errors"
	"io"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/sframe/parmaker/internal/testutil"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	if got := SplitPath(""); got != nil {
		t.Errorf("SplitPath(\"\") = %v, want nil", got)
	}
	if got := SplitPath("/a:/b::/c"); !slices.Equal(got, []string{"/a", "/b", "", "/c"}) {
		t.Errorf("SplitPath() = %v", got)
	}
}

func TestNew_DropsEmptyEntries(t *testing.T) {
	t.Parallel()

	l := New([]string{"", "/a", "", "/b"}, quietLogger())
	if got := l.Dirs(); !slices.Equal(got, []string{"/a", "/b"}) {
		t.Errorf("Dirs() = %v", got)
	}
}

func TestNew_FallsBackToLocalDir(t *testing.T) {
	t.Parallel()

	l := New(nil, quietLogger())
	if got := l.Dirs(); !slices.Equal(got, []string{"./"}) {
		t.Errorf("Dirs() = %v, want [./]", got)
	}
}

func TestLocate(t *testing.T) {
	t.Parallel()
	first := t.TempDir()
	second := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(first, "A.par"), "a1")
	testutil.MustWriteFile(t, filepath.Join(second, "A.par"), "a2")
	testutil.MustWriteFile(t, filepath.Join(second, "B.par"), "b")
	testutil.MustMkdirAll(t, filepath.Join(first, "C.par"))

	l := New([]string{first, second}, quietLogger())

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"A.par", filepath.Join(first, "A.par"), false},
		{"B.par", filepath.Join(second, "B.par"), false},
		{"C.par", "", true},
		{"D.par", "", true},
		{"/abs/D.par", "/abs/D.par", false},
		{"rel/D.par", "rel/D.par", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := l.Locate(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Locate(%q) error = %v, want ErrNotFound", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Locate(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Locate(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	l := FromEnv("/opt/pars::/srv/pars", quietLogger())
	if got := l.Dirs(); !slices.Equal(got, []string{"/opt/pars", "/srv/pars"}) {
		t.Errorf("Dirs() = %v", got)
	}
	if got := FromEnv("", quietLogger()).Dirs(); !slices.Equal(got, []string{"./"}) {
		t.Errorf("empty value Dirs() = %v, want [./]", got)
	}
}
