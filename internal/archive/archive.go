// SPDX-License-Identifier: MPL-2.0

// Package archive writes and reads the gzip-compressed tar files PAR packages
// are shipped as.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxEntryBytes bounds a single entry read back by ReadFile.
const maxEntryBytes = 256 << 20

var (
	// ErrEntryNotFound is returned by ReadFile for a name absent from the archive.
	ErrEntryNotFound = errors.New("archive entry not found")
	// ErrInvalidTopDir is returned when the top-level directory is not a single path element.
	ErrInvalidTopDir = errors.New("invalid top-level directory")
)

// Entry describes one member of an archive.
type Entry struct {
	// Name is the slash-separated path; directories end in "/".
	Name string
	// Dir is true for directory entries.
	Dir bool
	// Size is the content length of regular files.
	Size int64
	// Mode holds the permission bits.
	Mode fs.FileMode
}

// WriteTarGz writes parent/topDir, including topDir itself, to output as a
// gzip-compressed tar. Entries are added in lexical order so that unchanged
// inputs yield the same member list.
//
// The archive is written to a temporary file next to output and renamed into
// place on success; output is never left truncated.
func WriteTarGz(parent, topDir, output string) (err error) {
	if topDir == "" || topDir == "." || topDir == ".." || strings.ContainsAny(topDir, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidTopDir, topDir)
	}
	root := filepath.Join(parent, topDir)
	if info, statErr := os.Stat(root); statErr != nil {
		return fmt.Errorf("failed to stat %s: %w", root, statErr)
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".*")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			// Best-effort removal of the partial archive.
			_ = os.Remove(tmpPath)
		}
	}()

	if err = writeTree(tmp, parent, root); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set archive permissions: %w", err)
	}
	if err = os.Rename(tmpPath, output); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// writeTree streams root, with names relative to parent, into w.
func writeTree(w io.Writer, parent, root string) (err error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	defer func() {
		if closeErr := tw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to finish tar stream: %w", closeErr)
		}
		if closeErr := gz.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to finish gzip stream: %w", closeErr)
		}
	}()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, relErr := filepath.Rel(parent, path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		name := filepath.ToSlash(rel)

		info, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("failed to get file info for %s: %w", path, infoErr)
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return fmt.Errorf("unsupported file type %s for %s", info.Mode().Type(), path)
		}

		hdr, hdrErr := tar.FileInfoHeader(info, "")
		if hdrErr != nil {
			return fmt.Errorf("failed to create tar header for %s: %w", path, hdrErr)
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}
		// Owner names differ between machines and carry no meaning on the cluster.
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "", ""

		if writeErr := tw.WriteHeader(hdr); writeErr != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", name, writeErr)
		}
		if info.IsDir() {
			return nil
		}

		return copyInto(tw, path)
	})
}

func copyInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		// Read-only file handle; close errors are exotic.
		_ = f.Close()
	}()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return nil
}

// List returns the entries of the archive at path in stored order.
func List(path string) ([]Entry, error) {
	var entries []Entry
	err := walk(path, func(hdr *tar.Header, _ io.Reader) (bool, error) {
		entries = append(entries, Entry{
			Name: hdr.Name,
			Dir:  hdr.Typeflag == tar.TypeDir,
			Size: hdr.Size,
			Mode: fs.FileMode(hdr.Mode).Perm(),
		})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFile returns the contents of the regular file stored as name.
func ReadFile(path, name string) ([]byte, error) {
	var data []byte
	found := false
	err := walk(path, func(hdr *tar.Header, r io.Reader) (bool, error) {
		if hdr.Name != name || hdr.Typeflag != tar.TypeReg {
			return false, nil
		}
		found = true
		var readErr error
		data, readErr = io.ReadAll(io.LimitReader(r, maxEntryBytes))
		if readErr != nil {
			return true, fmt.Errorf("failed to read %s: %w", name, readErr)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s in %s", ErrEntryNotFound, name, path)
	}
	return data, nil
}

// walk calls fn for every entry of the archive until fn reports done.
func walk(path string, fn func(hdr *tar.Header, r io.Reader) (done bool, err error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		// Read-only file handle; close errors are exotic.
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			return nil
		}
		if nextErr != nil {
			return fmt.Errorf("failed to read tar entry: %w", nextErr)
		}
		done, fnErr := fn(hdr, tr)
		if fnErr != nil {
			return fnErr
		}
		if done {
			return nil
		}
	}
}
