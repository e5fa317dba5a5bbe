// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sframe/parmaker/internal/config"
	"github.com/sframe/parmaker/internal/issue"
	"github.com/sframe/parmaker/pkg/par"
)

// runBuild builds the single package described by the root command's flags.
func runBuild(cmd *cobra.Command, app *App, flags buildFlags, args []string) error {
	cmd.SilenceErrors = true

	warnIgnoredArgs(app.stderr, unknownFlags(cmd.Flags(), app.rawArgs), args)

	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return app.renderFailure(err)
	}

	spec := buildSpec(cmd, cfg, flags)
	spec.Verbose = app.effectiveVerbose(cmd.Flags().Changed("verbose"), cfg)

	res, err := app.Builder.Build(cmd.Context(), spec, par.WithLogger(app.newLogger(spec.Verbose)))
	if err != nil {
		return app.renderFailure(issue.BuildFailed(err, spec))
	}

	fmt.Fprintln(app.stdout, SuccessStyle.Render("Created PAR package:"), PathStyle.Render(res.Output))
	return nil
}

// buildSpec layers the flags over the configured defaults. The source
// directory and output always come from the flags; the layout names only when
// given explicitly.
func buildSpec(cmd *cobra.Command, cfg *config.Config, flags buildFlags) par.PackageSpec {
	spec := cfg.BaseSpec()
	spec.SourceRoot = flags.srcdir
	spec.Output = flags.output

	changed := cmd.Flags().Changed
	if changed("makefile") {
		spec.Makefile = flags.makefile
	}
	if changed("include") {
		spec.IncludeDir = flags.include
	}
	if changed("src") {
		spec.SourceDir = flags.src
	}
	if changed("proofdir") {
		spec.SupportDir = flags.proofdir
	}
	return spec
}
