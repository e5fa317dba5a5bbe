// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/sframe/parmaker/internal/config"
	"github.com/sframe/parmaker/internal/issue"
	"github.com/sframe/parmaker/pkg/par"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reads configuration and writers through it.
	App struct {
		Config  config.Provider
		Builder Builder
		stdout  io.Writer
		stderr  io.Writer

		// configPath and verbose hold the persistent flag values.
		configPath string
		verbose    bool
		// rawArgs are the command-line arguments before flag parsing, used to
		// report flags the parser skipped.
		rawArgs []string
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  config.Provider
		Builder Builder
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// Builder produces PAR archives.
	Builder interface {
		Build(ctx context.Context, spec par.PackageSpec, opts ...par.Option) (*par.Result, error)
		BuildAll(ctx context.Context, specs []par.PackageSpec, opts ...par.Option) ([]*par.Result, error)
	}

	parBuilder struct{}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:  deps.Config,
		Builder: deps.Builder,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Builder == nil {
		app.Builder = parBuilder{}
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (parBuilder) Build(ctx context.Context, spec par.PackageSpec, opts ...par.Option) (*par.Result, error) {
	return par.Build(ctx, spec, opts...)
}

func (parBuilder) BuildAll(ctx context.Context, specs []par.PackageSpec, opts ...par.Option) ([]*par.Result, error) {
	return par.BuildAll(ctx, specs, opts...)
}

// loadConfig loads the configuration selected by --config. When no file was
// requested explicitly, a broken config file is reported as a warning and the
// defaults are used.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err == nil {
		return cfg, nil
	}
	if a.configPath != "" {
		var ae *issue.ActionableError
		if !errors.As(err, &ae) {
			err = issue.ConfigFailed(err, a.configPath)
		}
		return nil, err
	}

	fmt.Fprintln(a.stderr, WarningStyle.Render("Warning:"), issue.Display(err, a.verbose))
	return config.DefaultConfig(), nil
}

// effectiveVerbose returns the --verbose flag when given, else the configured value.
func (a *App) effectiveVerbose(flagSet bool, cfg *config.Config) bool {
	if flagSet {
		return a.verbose
	}
	return cfg.Verbose
}

// newLogger returns the logger handed to library code.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: "parmaker",
		Level:  level,
	})
}

// renderFailure prints err to stderr and converts it into an ExitError
// carrying the error's exit code.
func (a *App) renderFailure(err error) error {
	fmt.Fprintf(a.stderr, "%s %s\n", ErrorStyle.Render("Error:"), issue.Display(err, a.verbose))
	return &ExitError{Code: int(issue.CodeOf(err)), Err: err}
}
