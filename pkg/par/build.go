// SPDX-License-Identifier: MPL-2.0

package par

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/sframe/parmaker/internal/archive"
	"github.com/sframe/parmaker/internal/buildfrag"
	"github.com/sframe/parmaker/internal/classify"
	"github.com/sframe/parmaker/internal/rewrite"
	"github.com/sframe/parmaker/internal/staging"
)

// Result describes a finished build.
type Result struct {
	// Output is the path of the created package.
	Output string
	// BaseName is the top-level directory inside the package.
	BaseName string
	// Headers, Sources and Support list the archived file names per role.
	Headers []string
	Sources []string
	Support []string
	// Redirected is true when the build file's shared-rules include was
	// pointed at Makefile.proof.
	Redirected bool
}

// Build creates the PAR package described by spec.
//
// The spec is validated before anything is written: a wrong output extension
// or a missing input fails without creating a staging directory. The staging
// directory is removed on every exit path, and a failed build leaves no
// output file behind. A staging directory that cannot be removed is logged
// as a warning and does not fail an otherwise successful build.
func Build(ctx context.Context, spec PackageSpec, opts ...Option) (*Result, error) {
	return newBuilder(opts).build(ctx, spec)
}

func (b *builder) build(ctx context.Context, spec PackageSpec) (_ *Result, err error) {
	logger := b.logger.With("package", spec.BaseName())
	if spec.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	logger.Debug("Building PAR package",
		"srcdir", spec.SourceRoot,
		"makefile", spec.Makefile,
		"include", spec.IncludeDir,
		"src", spec.SourceDir,
		"proofdir", spec.SupportDir,
		"output", spec.Output,
	)

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := spec.checkInputs(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build canceled: %w", err)
	}

	ws, err := staging.New(b.tempDir, spec.layout())
	if err != nil {
		return nil, err
	}
	logger.Debug("Created staging directory", "path", ws.Root())
	defer func() {
		logger.Debug("Removing staging directory", "path", ws.Parent())
		if rmErr := ws.Remove(); rmErr != nil {
			logger.Warn("Failed to remove staging directory", "path", ws.Parent(), "err", rmErr)
		}
	}()

	res := &Result{Output: spec.Output, BaseName: spec.BaseName()}

	steps := []struct {
		name string
		run  func() error
	}{
		{"stage headers", func() (stepErr error) {
			res.Headers, stepErr = stageRewritten(ws, spec.includePath(), classify.RoleHeader, ws.IncludeDir())
			return stepErr
		}},
		{"stage sources", func() (stepErr error) {
			res.Sources, stepErr = stageRewritten(ws, spec.sourcePath(), classify.RoleSource, ws.SourceDir())
			return stepErr
		}},
		{"stage build file", func() (stepErr error) {
			res.Redirected, stepErr = stageMakefile(ws, spec)
			return stepErr
		}},
		{"write " + buildfrag.FragmentName, func() error {
			_, writeErr := ws.WriteFile(ws.Root(), buildfrag.FragmentName, buildfrag.Fragment())
			return writeErr
		}},
		{"stage cluster-support files", func() (stepErr error) {
			res.Support, stepErr = stageVerbatim(ws, spec.supportPath(), classify.RoleClusterSupport, ws.SupportDir())
			return stepErr
		}},
	}

	for _, step := range steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("build canceled: %w", ctxErr)
		}
		if stepErr := step.run(); stepErr != nil {
			return nil, fmt.Errorf("failed to %s: %w", step.name, stepErr)
		}
	}

	logger.Debug("Staged headers", "files", res.Headers)
	logger.Debug("Staged sources", "files", res.Sources)
	logger.Debug("Staged cluster-support files", "files", res.Support)
	if !res.Redirected {
		logger.Debug("Build file does not include the shared rules; left unchanged", "makefile", spec.Makefile)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("build canceled: %w", ctxErr)
	}
	logger.Debug("Creating package", "output", spec.Output)
	if err := archive.WriteTarGz(ws.Parent(), spec.BaseName(), spec.Output); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", spec.Output, err)
	}

	return res, nil
}

// stageRewritten copies the role's files from dir into dst and relocates
// include paths in every copy.
func stageRewritten(ws *staging.Workspace, dir string, role classify.Role, dst string) ([]string, error) {
	files, err := classify.Classify(dir, role)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		staged, copyErr := ws.CopyFile(f.Path, dst, f.Name)
		if copyErr != nil {
			return nil, copyErr
		}
		if rwErr := rewrite.RewriteFile(staged); rwErr != nil {
			return nil, rwErr
		}
	}
	return classify.Names(files), nil
}

// stageVerbatim copies the role's files from dir into dst unmodified.
func stageVerbatim(ws *staging.Workspace, dir string, role classify.Role, dst string) ([]string, error) {
	files, err := classify.Classify(dir, role)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, copyErr := ws.CopyFile(f.Path, dst, f.Name); copyErr != nil {
			return nil, copyErr
		}
	}
	return classify.Names(files), nil
}

// stageMakefile copies the build file into the package root and redirects its
// shared-rules include to the generated fragment.
func stageMakefile(ws *staging.Workspace, spec PackageSpec) (bool, error) {
	name := filepath.Base(spec.Makefile)
	staged, err := ws.CopyFile(spec.makefilePath(), ws.Root(), name)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(staged)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", staged, err)
	}
	if !buildfrag.NeedsRedirect(data) {
		return false, nil
	}

	info, err := os.Stat(staged)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", staged, err)
	}
	if err := os.WriteFile(staged, buildfrag.RedirectBuildInclude(data), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", staged, err)
	}
	return true, nil
}

// BuildAll builds every spec concurrently and returns the results in input
// order. Specs must have distinct output paths. The first failure cancels the
// builds that have not finished yet; each build cleans up after itself.
func BuildAll(ctx context.Context, specs []PackageSpec, opts ...Option) ([]*Result, error) {
	if err := checkDistinctOutputs(specs); err != nil {
		return nil, err
	}

	b := newBuilder(opts)
	results := make([]*Result, len(specs))

	g, gctx := errgroupWithLimit(ctx, b.jobs)
	for i, spec := range specs {
		g.Go(func() error {
			res, err := b.build(gctx, spec)
			if err != nil {
				return fmt.Errorf("%s: %w", spec.Output, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkDistinctOutputs(specs []PackageSpec) error {
	seen := make(map[string]int, len(specs))
	for i, spec := range specs {
		abs, err := filepath.Abs(spec.Output)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", spec.Output, err)
		}
		if first, ok := seen[abs]; ok {
			return fmt.Errorf("%w: packages %d and %d both write %s", ErrInvalidSpec, first, i, spec.Output)
		}
		seen[abs] = i
	}
	return nil
}

// IsInputError reports whether err was caused by the caller's input rather
// than by a filesystem or archiving failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidSpec) ||
		errors.Is(err, ErrMissingInput)
}
