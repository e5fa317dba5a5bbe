// SPDX-License-Identifier: MPL-2.0

package par

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sframe/parmaker/internal/classify"
	"github.com/sframe/parmaker/internal/staging"
)

// Extension is the required extension of a PAR package.
const Extension = ".par"

// Defaults used by the command line when a flag is not given.
const (
	DefaultSourceRoot = "./"
	DefaultOutput     = "Test.par"
	DefaultMakefile   = "Makefile"
	DefaultIncludeDir = "include"
	DefaultSourceDir  = "src"
	DefaultSupportDir = "proof"
)

var (
	// ErrInvalidExtension is returned when the output does not end in Extension.
	ErrInvalidExtension = errors.New(`the output file's extension must be ".par"`)
	// ErrInvalidSpec is returned for any other malformed PackageSpec.
	ErrInvalidSpec = errors.New("invalid package spec")
	// ErrMissingInput is returned when a required file or directory of the
	// source tree does not exist.
	ErrMissingInput = errors.New("missing package input")
)

// PackageSpec describes one package build. It is passed by value and never
// modified by the builder.
type PackageSpec struct {
	// SourceRoot is the package source tree.
	SourceRoot string
	// Makefile is the build file name, relative to SourceRoot.
	Makefile string
	// IncludeDir is the header directory name, relative to SourceRoot. It is
	// also the header directory name inside the package.
	IncludeDir string
	// SourceDir is the source directory name, relative to SourceRoot. It is
	// also the source directory name inside the package.
	SourceDir string
	// SupportDir is the cluster-support directory, relative to SourceRoot.
	// Its files end up in PROOF-INF inside the package.
	SupportDir string
	// Output is the path of the .par file to create.
	Output string
	// Verbose enables progress narration.
	Verbose bool
}

// DefaultSpec returns a PackageSpec with the command line defaults.
func DefaultSpec() PackageSpec {
	return PackageSpec{
		SourceRoot: DefaultSourceRoot,
		Makefile:   DefaultMakefile,
		IncludeDir: DefaultIncludeDir,
		SourceDir:  DefaultSourceDir,
		SupportDir: DefaultSupportDir,
		Output:     DefaultOutput,
	}
}

// BaseName returns the output file name without Extension. It is the
// top-level directory name inside the package.
func (s PackageSpec) BaseName() string {
	return strings.TrimSuffix(filepath.Base(s.Output), Extension)
}

// Validate checks the spec without touching the filesystem. The output
// extension is checked first.
func (s PackageSpec) Validate() error {
	if filepath.Ext(s.Output) != Extension {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, s.Output)
	}

	var errs []error
	if s.SourceRoot == "" {
		errs = append(errs, errors.New("source root must not be empty"))
	}
	if s.Makefile == "" {
		errs = append(errs, errors.New("makefile name must not be empty"))
	}
	if s.SupportDir == "" {
		errs = append(errs, errors.New("cluster-support directory must not be empty"))
	}
	if err := s.layout().Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, errors.Join(errs...))
	}
	return nil
}

// layout returns the staging layout of the package.
func (s PackageSpec) layout() staging.Layout {
	return staging.Layout{
		Base:    s.BaseName(),
		Include: s.IncludeDir,
		Source:  s.SourceDir,
	}
}

func (s PackageSpec) makefilePath() string  { return filepath.Join(s.SourceRoot, s.Makefile) }
func (s PackageSpec) includePath() string   { return filepath.Join(s.SourceRoot, s.IncludeDir) }
func (s PackageSpec) sourcePath() string    { return filepath.Join(s.SourceRoot, s.SourceDir) }
func (s PackageSpec) supportPath() string   { return filepath.Join(s.SourceRoot, s.SupportDir) }
func (s PackageSpec) outputDirPath() string { return filepath.Dir(s.Output) }

// checkInputs verifies that the build file and every role directory exist,
// so that a broken source tree is reported before any staging happens.
func (s PackageSpec) checkInputs() error {
	var errs []error

	if info, err := os.Stat(s.makefilePath()); err != nil {
		errs = append(errs, fmt.Errorf("build file %s: %w", s.makefilePath(), err))
	} else if !info.Mode().IsRegular() {
		errs = append(errs, fmt.Errorf("build file %s is not a regular file", s.makefilePath()))
	}

	for _, d := range []struct {
		role classify.Role
		path string
	}{
		{classify.RoleHeader, s.includePath()},
		{classify.RoleSource, s.sourcePath()},
		{classify.RoleClusterSupport, s.supportPath()},
	} {
		info, err := os.Stat(d.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			errs = append(errs, fmt.Errorf("%s directory %s: %w", d.role, d.path, classify.ErrDirNotFound))
		case err != nil:
			errs = append(errs, fmt.Errorf("%s directory %s: %w", d.role, d.path, err))
		case !info.IsDir():
			errs = append(errs, fmt.Errorf("%s directory %s: %w", d.role, d.path, classify.ErrNotDirectory))
		}
	}

	if info, err := os.Stat(s.outputDirPath()); err != nil || !info.IsDir() {
		errs = append(errs, fmt.Errorf("output directory %s does not exist", s.outputDirPath()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMissingInput, errors.Join(errs...))
	}
	return nil
}
