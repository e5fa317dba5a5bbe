// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sframe/parmaker/internal/archive"
	"github.com/sframe/parmaker/internal/config"
	"github.com/sframe/parmaker/internal/testutil"
	"github.com/sframe/parmaker/pkg/par"
)

type (
	staticConfig struct {
		cfg *config.Config
		err error
	}

	recordingBuilder struct {
		specs []par.PackageSpec
		err   error
	}
)

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (b *recordingBuilder) Build(_ context.Context, spec par.PackageSpec, _ ...par.Option) (*par.Result, error) {
	b.specs = append(b.specs, spec)
	if b.err != nil {
		return nil, b.err
	}
	return &par.Result{Output: spec.Output, BaseName: spec.BaseName()}, nil
}

func (b *recordingBuilder) BuildAll(_ context.Context, specs []par.PackageSpec, _ ...par.Option) ([]*par.Result, error) {
	b.specs = append(b.specs, specs...)
	if b.err != nil {
		return nil, b.err
	}
	results := make([]*par.Result, len(specs))
	for i, spec := range specs {
		results[i] = &par.Result{Output: spec.Output, BaseName: spec.BaseName()}
	}
	return results, nil
}

// runCLI runs the command tree with defaults-only configuration unless deps
// says otherwise.
func runCLI(t *testing.T, deps Dependencies, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	deps.Stdout = &out
	deps.Stderr = &errOut
	if deps.Config == nil {
		deps.Config = staticConfig{cfg: config.DefaultConfig()}
	}

	code = Run(t.Context(), NewApp(deps), args)
	return code, out.String(), errOut.String()
}

func TestRun_BuildsPackage(t *testing.T) {
	t.Parallel()

	src := testutil.NewSourceTree(t)
	output := filepath.Join(t.TempDir(), "Foo.par")

	code, stdout, stderr := runCLI(t, Dependencies{}, "-s", src, "-o", output)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "Created PAR package: "+output) {
		t.Errorf("stdout = %q", stdout)
	}

	entries, err := archive.List(output)
	if err != nil {
		t.Fatalf("archive.List() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	joined := strings.Join(names, "\n")
	for _, want := range []string{"Foo/include/Foo.h", "Foo/src/Foo.cxx", "Foo/PROOF-INF/run.C", "Foo/Makefile.proof"} {
		if !strings.Contains(joined, want) {
			t.Errorf("archive missing %s:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "_Dict") {
		t.Errorf("archive should not contain dictionary files:\n%s", joined)
	}
}

func TestRun_InvalidExtension(t *testing.T) {
	t.Parallel()

	src := testutil.NewSourceTree(t)
	output := filepath.Join(t.TempDir(), "Foo.tgz")

	code, stdout, stderr := runCLI(t, Dependencies{}, "-s", src, "-o", output)
	if code != exitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, exitInvalidInput)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, `extension must be ".par"`) {
		t.Errorf("stderr should explain the extension rule:\n%s", stderr)
	}
	if !strings.Contains(stderr, "-o Foo.par") {
		t.Errorf("stderr should suggest a corrected name:\n%s", stderr)
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output should not exist, stat error = %v", err)
	}
}

func TestRun_MissingSourceTree(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")
	output := filepath.Join(t.TempDir(), "Foo.par")

	code, _, stderr := runCLI(t, Dependencies{}, "-s", missing, "-o", output)
	if code != exitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, exitInvalidInput)
	}
	if !strings.Contains(stderr, "--srcdir") {
		t.Errorf("stderr should point at --srcdir:\n%s", stderr)
	}
}

func TestRun_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Defaults.Include = "inc"
	cfg.Defaults.Src = "source"
	cfg.Verbose = true

	b := &recordingBuilder{}
	code, _, stderr := runCLI(t, Dependencies{Config: staticConfig{cfg: cfg}, Builder: b},
		"-s", "Foo", "-o", "Foo.par", "-c", "cxx", "-v=false")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if len(b.specs) != 1 {
		t.Fatalf("Build called %d times, want 1", len(b.specs))
	}

	spec := b.specs[0]
	if spec.IncludeDir != "inc" {
		t.Errorf("IncludeDir = %q, want config value inc", spec.IncludeDir)
	}
	if spec.SourceDir != "cxx" {
		t.Errorf("SourceDir = %q, want flag value cxx", spec.SourceDir)
	}
	if spec.SupportDir != par.DefaultSupportDir {
		t.Errorf("SupportDir = %q, want %q", spec.SupportDir, par.DefaultSupportDir)
	}
	if spec.Verbose {
		t.Error("--verbose=false should override the configured verbose")
	}
}

func TestRun_IgnoredArgumentsWarnAndContinue(t *testing.T) {
	t.Parallel()

	b := &recordingBuilder{}
	code, stdout, stderr := runCLI(t, Dependencies{Builder: b}, "extra", "-o", "Foo.par", "--bogus")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "unrecognized option --bogus") {
		t.Errorf("stderr should report --bogus:\n%s", stderr)
	}
	if !strings.Contains(stderr, "unexpected argument(s) extra") {
		t.Errorf("stderr should report the positional argument:\n%s", stderr)
	}
	if !strings.Contains(stdout, "Created PAR package: Foo.par") {
		t.Errorf("build should still run, stdout = %q", stdout)
	}
	if len(b.specs) != 1 || b.specs[0].SourceRoot != par.DefaultSourceRoot {
		t.Errorf("specs = %+v", b.specs)
	}
}

func TestRun_ConfigErrorFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	b := &recordingBuilder{}
	deps := Dependencies{Builder: b, Config: staticConfig{err: errors.New("broken config")}}

	code, _, stderr := runCLI(t, deps, "-o", "Foo.par")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "Warning:") || !strings.Contains(stderr, "broken config") {
		t.Errorf("stderr should warn about the config:\n%s", stderr)
	}

	code, _, _ = runCLI(t, deps, "--config", "x.cue", "-o", "Foo.par")
	if code != exitInvalidInput {
		t.Errorf("explicit --config failure exit code = %d, want %d", code, exitInvalidInput)
	}
}

func TestRun_BuildFailure(t *testing.T) {
	t.Parallel()

	b := &recordingBuilder{err: errors.New("disk full")}
	code, _, stderr := runCLI(t, Dependencies{Builder: b}, "-o", "Foo.par")
	if code != exitFailure {
		t.Errorf("exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(stderr, "failed to build PAR package: Foo.par: disk full") {
		t.Errorf("stderr = %s", stderr)
	}
	if !strings.Contains(stderr, "--verbose") {
		t.Errorf("stderr should suggest --verbose:\n%s", stderr)
	}
}

func TestRun_Batch(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Batch.Jobs = 2
	cfg.Packages = []config.PackageEntry{
		{SrcDir: "/src/Foo", Output: "/out/Foo.par"},
		{SrcDir: "/src/Bar", Output: "/out/Bar.par", ProofDir: "cluster"},
	}

	b := &recordingBuilder{}
	code, stdout, stderr := runCLI(t, Dependencies{Config: staticConfig{cfg: cfg}, Builder: b}, "batch", "-v")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if len(b.specs) != 2 {
		t.Fatalf("BuildAll received %d specs, want 2", len(b.specs))
	}
	if b.specs[1].SupportDir != "cluster" || !b.specs[1].Verbose {
		t.Errorf("specs[1] = %+v", b.specs[1])
	}
	for _, want := range []string{"/out/Foo.par", "/out/Bar.par"} {
		if !strings.Contains(stdout, "Created PAR package: "+want) {
			t.Errorf("stdout missing %s:\n%s", want, stdout)
		}
	}
}

func TestRun_BatchWithoutPackages(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, Dependencies{}, "batch")
	if code != exitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, exitInvalidInput)
	}
	if !strings.Contains(stderr, "no packages configured") {
		t.Errorf("stderr = %s", stderr)
	}
}

func TestRun_Locate(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(second, "Foo.par"), "x")

	cfg := config.DefaultConfig()
	cfg.ParPath = []string{first, second}
	deps := Dependencies{Config: staticConfig{cfg: cfg}}

	code, stdout, stderr := runCLI(t, deps, "locate", "Foo.par")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}
	if strings.TrimSpace(stdout) != filepath.Join(second, "Foo.par") {
		t.Errorf("stdout = %q", stdout)
	}

	code, _, stderr = runCLI(t, deps, "locate", "Bar.par")
	if code != exitFailure {
		t.Errorf("missing package exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(stderr, "PAR_PATH") {
		t.Errorf("stderr should mention PAR_PATH:\n%s", stderr)
	}
}

func TestRun_Inspect(t *testing.T) {
	t.Parallel()

	src := testutil.NewSourceTree(t)
	output := filepath.Join(t.TempDir(), "Foo.par")
	if code, _, stderr := runCLI(t, Dependencies{}, "-s", src, "-o", output); code != 0 {
		t.Fatalf("build failed: %s", stderr)
	}

	code, stdout, stderr := runCLI(t, Dependencies{}, "inspect", output)
	if code != 0 {
		t.Fatalf("inspect exit code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "Foo/include/Foo.h") {
		t.Errorf("listing missing header:\n%s", stdout)
	}

	code, stdout, _ = runCLI(t, Dependencies{}, "inspect", "--fragment", output)
	if code != 0 {
		t.Fatalf("inspect --fragment exit code = %d", code)
	}
	if !strings.Contains(stdout, "ifeq ($(PLATFORM),macosx)") {
		t.Errorf("fragment missing platform switch:\n%s", stdout)
	}

	if code, _, _ := runCLI(t, Dependencies{}, "inspect", filepath.Join(t.TempDir(), "none.par")); code != exitFailure {
		t.Errorf("missing archive exit code = %d, want %d", code, exitFailure)
	}
}

func TestRun_ConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.ParPath = []string{"/opt/pars"}

	code, stdout, _ := runCLI(t, Dependencies{Config: staticConfig{cfg: cfg}}, "config", "show")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"(using defaults)", "defaults.include: include", "par_path: /opt/pars"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	code, stdout, _ = runCLI(t, Dependencies{Config: staticConfig{cfg: cfg}}, "config", "show", "--cue")
	if code != 0 {
		t.Fatalf("--cue exit code = %d", code)
	}
	if !strings.Contains(stdout, `par_path: ["/opt/pars"]`) {
		t.Errorf("CUE output = %s", stdout)
	}
}

func TestGetVersionString(t *testing.T) {
	t.Parallel()

	if got := getVersionString(); got != "dev (built from source)" {
		t.Errorf("getVersionString() = %q", got)
	}
}
