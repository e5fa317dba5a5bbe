// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/sframe/parmaker/pkg/par"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// buildFlags holds the root command's package flags.
type buildFlags struct {
	srcdir   string
	output   string
	makefile string
	include  string
	src      string
	proofdir string
}

// NewRootCommand creates the parmaker command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	var flags buildFlags

	rootCmd := &cobra.Command{
		Use:   "parmaker",
		Short: "Pack an SFrame package into a PAR archive",
		Long: TitleStyle.Render("parmaker") + SubtitleStyle.Render(" - PROOF archive builder for SFrame packages") + `

parmaker collects the headers, sources, build file and cluster support files
of an SFrame package, rewrites include paths for the cluster layout, adds a
self-contained Makefile.proof, and compresses the result into a .par file.

` + SubtitleStyle.Render("Package layout:") + `
  <srcdir>/Makefile       build file, its shared-rules include is redirected
  <srcdir>/include/       *.h and *.icc headers (generated *_Dict.h skipped)
  <srcdir>/src/           *.cxx sources (generated *_Dict.cxx skipped)
  <srcdir>/proof/         cluster support files, copied as PROOF-INF/`,
		Example: `  # Build Foo.par from the package in ./Foo
  parmaker -s Foo -o Foo.par

  # Build every package listed in the configuration file
  parmaker batch

  # Find a package along PAR_PATH
  parmaker locate Foo.par`,
		Args: cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, flags, args)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "print build progress")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/parmaker/config.cue, then ./parmaker.cue)")

	rootCmd.Flags().StringVarP(&flags.srcdir, "srcdir", "s", par.DefaultSourceRoot, "package source directory")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", par.DefaultOutput, "output file, must end in .par")
	rootCmd.Flags().StringVarP(&flags.makefile, "makefile", "m", par.DefaultMakefile, "build file name inside the source directory")
	rootCmd.Flags().StringVarP(&flags.include, "include", "i", par.DefaultIncludeDir, "header directory name")
	rootCmd.Flags().StringVarP(&flags.src, "src", "c", par.DefaultSourceDir, "source directory name")
	rootCmd.Flags().StringVarP(&flags.proofdir, "proofdir", "p", par.DefaultSupportDir, "cluster support directory name")

	rootCmd.AddCommand(
		newLocateCommand(app),
		newInspectCommand(app),
		newBatchCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Run executes the command tree with args and returns the process exit code.
func Run(ctx context.Context, app *App, args []string) int {
	app.rawArgs = args

	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return exitFailure
	}
	return 0
}

// Execute runs parmaker with the process arguments and exits.
// This is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), NewApp(Dependencies{}), os.Args[1:]))
}
