// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// RoleHeader marks header and inline-implementation files.
	RoleHeader Role = iota + 1
	// RoleSource marks translation units.
	RoleSource
	// RoleClusterSupport marks files consumed by the cluster's package loader.
	RoleClusterSupport
)

const (
	// HeaderSuffix is the suffix of header files.
	HeaderSuffix = ".h"
	// InlineSuffix is the suffix of inline implementation files.
	InlineSuffix = ".icc"
	// SourceSuffix is the suffix of translation units.
	SourceSuffix = ".cxx"
	// DictMarker precedes the suffix of generated dictionary files (Foo_Dict.cxx).
	DictMarker = "_Dict"
	// BackupSuffix marks editor backup files.
	BackupSuffix = "~"
)

var (
	// ErrDirNotFound is returned when a role's directory does not exist.
	ErrDirNotFound = errors.New("directory not found")
	// ErrNotDirectory is returned when a role's path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrInvalidRole is returned for a Role outside the declared set.
	ErrInvalidRole = errors.New("invalid file role")
)

type (
	// Role identifies which part of a package a file belongs to.
	Role int

	// File is a classified file of a package source tree.
	File struct {
		// Name is the base name of the file.
		Name string
		// Path is the directory joined with Name.
		Path string
		// Role is the role the file was classified under.
		Role Role
	}
)

// String returns the human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleHeader:
		return "header"
	case RoleSource:
		return "source"
	case RoleClusterSupport:
		return "cluster-support"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Validate returns ErrInvalidRole if r is not one of the declared roles.
func (r Role) Validate() error {
	switch r {
	case RoleHeader, RoleSource, RoleClusterSupport:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidRole, int(r))
	}
}

// Match reports whether a regular file called name belongs to role.
// It looks at the name only.
func Match(name string, role Role) bool {
	switch role {
	case RoleHeader:
		if isDictionary(name) {
			return false
		}
		return strings.HasSuffix(name, HeaderSuffix) || strings.HasSuffix(name, InlineSuffix)
	case RoleSource:
		return strings.HasSuffix(name, SourceSuffix) && !isDictionary(name)
	case RoleClusterSupport:
		return name != "" && !strings.HasSuffix(name, BackupSuffix)
	default:
		return false
	}
}

// isDictionary reports whether name is a generated dictionary source or header.
func isDictionary(name string) bool {
	return strings.HasSuffix(name, DictMarker+SourceSuffix) || strings.HasSuffix(name, DictMarker+HeaderSuffix)
}

// Classify lists the files of dir that belong to role, in directory-listing order.
//
// A directory that exists but holds no matching files yields an empty result and
// no error. A missing directory yields ErrDirNotFound. Only regular files are
// returned; subdirectories and special files are skipped for every role.
func Classify(dir string, role Role) ([]File, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s directory %s: %w", role, dir, ErrDirNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s directory %s: %w", role, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s directory %s: %w", role, dir, ErrNotDirectory)
	}

	// os.ReadDir sorts by name, which keeps repeated builds byte-stable.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s directory %s: %w", role, dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			if !isRegularTarget(dir, entry) {
				continue
			}
		}
		if !Match(entry.Name(), role) {
			continue
		}
		files = append(files, File{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Role: role,
		})
	}

	return files, nil
}

// isRegularTarget follows a symlink entry and reports whether it points at a
// regular file. Other non-regular entries are rejected outright.
func isRegularTarget(dir string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Names returns the base names of files, preserving order.
func Names(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
