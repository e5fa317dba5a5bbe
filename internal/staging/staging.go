// SPDX-License-Identifier: MPL-2.0

// Package staging manages the ephemeral directory tree a PAR package is
// assembled in before it is compressed.
//
// Each [Workspace] lives below its own uniquely named parent directory, so
// concurrent builds never share state even when they produce packages with
// the same base name.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SupportDir is the name of the cluster-support directory inside a package.
const SupportDir = "PROOF-INF"

// parentPrefix prefixes the unique parent directory name.
const parentPrefix = "parmaker-"

var (
	// ErrInvalidLayout is returned for an empty or multi-element layout name.
	ErrInvalidLayout = errors.New("invalid staging layout")
	// ErrRemoved is returned when a removed workspace is used.
	ErrRemoved = errors.New("staging workspace already removed")
)

type (
	// Layout names the directories of a package.
	Layout struct {
		// Base is the top-level directory, the archive base name.
		Base string
		// Include is the header directory name.
		Include string
		// Source is the source directory name.
		Source string
	}

	// Workspace is a staging tree:
	//
	//	<parent>/<Base>/<Include>
	//	<parent>/<Base>/<Source>
	//	<parent>/<Base>/PROOF-INF
	//
	// A Workspace is owned by a single build and must be removed with Remove.
	Workspace struct {
		parent  string
		root    string
		include string
		source  string
		support string
		removed bool
	}
)

// Validate checks that every name is a single, non-empty path element.
func (l Layout) Validate() error {
	var errs []error
	for _, f := range []struct{ field, value string }{
		{"base", l.Base},
		{"include", l.Include},
		{"source", l.Source},
	} {
		if err := validateElement(f.value); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", f.field, f.value, err))
		}
	}
	if l.Include != "" && l.Include == l.Source {
		errs = append(errs, fmt.Errorf("include and source share the name %q", l.Include))
	}
	if l.Include == SupportDir || l.Source == SupportDir {
		errs = append(errs, fmt.Errorf("%s is reserved for cluster-support files", SupportDir))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidLayout, errors.Join(errs...))
	}
	return nil
}

func validateElement(name string) error {
	switch {
	case name == "":
		return errors.New("must not be empty")
	case name == "." || name == "..":
		return errors.New("must name a directory")
	case strings.ContainsAny(name, `/\`):
		return errors.New("must be a single path element")
	default:
		return nil
	}
}

// New creates a fresh workspace below tempDir (os.TempDir when empty).
// On failure nothing is left behind.
func New(tempDir string, layout Layout) (*Workspace, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	parent := filepath.Join(tempDir, parentPrefix+uuid.NewString())
	// Mkdir, not MkdirAll: an existing parent means a name collision.
	if err := os.Mkdir(parent, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	root := filepath.Join(parent, layout.Base)
	w := &Workspace{
		parent:  parent,
		root:    root,
		include: filepath.Join(root, layout.Include),
		source:  filepath.Join(root, layout.Source),
		support: filepath.Join(root, SupportDir),
	}

	for _, dir := range []string{w.root, w.include, w.source, w.support} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			// Best-effort; the mkdir error is the one worth reporting.
			_ = os.RemoveAll(parent)
			return nil, fmt.Errorf("failed to create staging directory %s: %w", dir, err)
		}
	}

	return w, nil
}

// Parent returns the unique directory holding Root.
func (w *Workspace) Parent() string { return w.parent }

// Root returns the package's top-level directory.
func (w *Workspace) Root() string { return w.root }

// IncludeDir returns the staged header directory.
func (w *Workspace) IncludeDir() string { return w.include }

// SourceDir returns the staged source directory.
func (w *Workspace) SourceDir() string { return w.source }

// SupportDir returns the staged cluster-support directory.
func (w *Workspace) SupportDir() string { return w.support }

// CopyFile copies src to dir/name inside the workspace and returns the
// destination path. The copy keeps the source file's permission bits plus
// owner write, so staged files can be rewritten in place.
func (w *Workspace) CopyFile(src, dir, name string) (dst string, err error) {
	if w.removed {
		return "", ErrRemoved
	}
	if !w.contains(dir) {
		return "", fmt.Errorf("destination %s is outside the staging workspace", dir)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		// Read-only handle; a close error carries no information.
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", src, err)
	}

	dst = filepath.Join(dir, name)
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, closeErr)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return "", fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	return dst, nil
}

// WriteFile writes data to dir/name inside the workspace.
func (w *Workspace) WriteFile(dir, name string, data []byte) (string, error) {
	if w.removed {
		return "", ErrRemoved
	}
	if !w.contains(dir) {
		return "", fmt.Errorf("destination %s is outside the staging workspace", dir)
	}
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return dst, nil
}

// contains reports whether dir is Root or one of its descendants.
func (w *Workspace) contains(dir string) bool {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Remove deletes the workspace together with its unique parent. It is safe to
// call more than once.
func (w *Workspace) Remove() error {
	if w.removed {
		return nil
	}
	if err := os.RemoveAll(w.parent); err != nil {
		return fmt.Errorf("failed to remove staging directory %s: %w", w.parent, err)
	}
	w.removed = true
	return nil
}
