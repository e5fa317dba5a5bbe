// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sframe/parmaker/internal/archive"
	"github.com/sframe/parmaker/internal/buildfrag"
	"github.com/sframe/parmaker/internal/locator"
	"github.com/sframe/parmaker/pkg/par"
)

const hintVerbose = "Run again with --verbose to see each build step"

// BuildFailed describes a failed par.Build of spec. Rejected specs and
// missing inputs exit with ExitInvalidInput.
func BuildFailed(err error, spec par.PackageSpec) *ActionableError {
	ae := New("build PAR package", err).At(spec.Output)

	switch {
	case errors.Is(err, par.ErrInvalidExtension):
		base := strings.TrimSuffix(filepath.Base(spec.Output), filepath.Ext(spec.Output))
		ae.Hint(fmt.Sprintf("Name the output file with the %q extension, e.g. -o %s%s", par.Extension, base, par.Extension))
	case errors.Is(err, par.ErrMissingInput):
		ae.Hint(
			"Check that --srcdir points at the package source tree",
			"Check the --makefile, --include, --src and --proofdir names",
			"Create the output directory before building",
		)
	case errors.Is(err, par.ErrInvalidSpec):
		ae.Hint("Directory names must be single, non-empty path elements")
	case errors.Is(err, os.ErrPermission):
		ae.Hint("Check read permissions in the source tree and write permissions on the output and temporary directories")
	case errors.Is(err, context.Canceled):
		// interrupted, nothing to suggest
	default:
		ae.Hint(hintVerbose)
	}

	if par.IsInputError(err) {
		ae.Invalid()
	}
	return ae
}

// BatchFailed describes a failed batch build of the packages declared in
// configPath.
func BatchFailed(err error, configPath string) *ActionableError {
	ae := New("run batch build", err).At(configPath)
	if errors.Is(err, par.ErrInvalidSpec) {
		ae.Hint("Give every package in the configuration file its own output path")
	} else {
		ae.Hint(hintVerbose)
	}
	if par.IsInputError(err) {
		ae.Invalid()
	}
	return ae
}

// NoPackages reports a batch build with nothing to build.
func NoPackages(configPath string) *ActionableError {
	return New("run batch build", errors.New("no packages configured")).
		At(configPath).
		Hint(
			`Declare packages in the configuration file, e.g. packages: [{srcdir: "Foo", output: "Foo.par"}]`,
			"Pass the file with --config",
		).
		Invalid()
}

// LocateFailed describes a failed PAR_PATH lookup of name.
func LocateFailed(err error, name string) *ActionableError {
	ae := New("locate PAR package", err).At(name)
	if errors.Is(err, locator.ErrNotFound) {
		ae.Hint("Add the directory holding the package to " + locator.EnvVar)
	}
	return ae
}

// UnreadablePackage describes a PAR file that could not be read back.
func UnreadablePackage(err error, path string) *ActionableError {
	ae := New("read PAR package", err).At(path)
	if errors.Is(err, archive.ErrEntryNotFound) {
		return ae.Hint("Packages created by parmaker carry " + buildfrag.FragmentName + " in their top-level directory")
	}
	return ae.Hint("Check that the file is a package created by parmaker")
}

// ConfigFailed describes a configuration file that could not be loaded.
func ConfigFailed(err error, path string) *ActionableError {
	return New("load configuration", err).
		At(path).
		Hint(
			"Check that the file contains valid CUE syntax",
			"Verify the configuration values match the expected schema",
			"Run 'parmaker config show --cue' to see the default configuration",
		).
		Invalid()
}

// ConfigNotFound reports an explicitly requested configuration file that
// does not exist.
func ConfigNotFound(path string) *ActionableError {
	return New("load configuration", fmt.Errorf("config file not found: %s", path)).
		At(path).
		Hint("Verify the --config path is correct").
		Invalid()
}
