// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sframe/parmaker/internal/issue"
	"github.com/sframe/parmaker/pkg/par"
)

func newBatchCommand(app *App) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Build every package declared in the configuration file",
		Long: `Build every package declared in the configuration file.

Packages are listed under 'packages' in the configuration file. Relative
paths are resolved against the directory holding the file. Packages are
built concurrently; the first failure stops the remaining builds.`,
		Example: `  parmaker batch --config packages.cue --jobs 4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.renderFailure(err)
			}

			if len(cfg.Packages) == 0 {
				return app.renderFailure(issue.NoPackages(cfg.Path))
			}

			if !cmd.Flags().Changed("jobs") {
				jobs = cfg.Batch.Jobs
			}

			verbose := app.effectiveVerbose(cmd.Flags().Changed("verbose"), cfg)
			specs := cfg.PackageSpecs()
			for i := range specs {
				specs[i].Verbose = verbose
			}

			results, err := app.Builder.BuildAll(cmd.Context(), specs,
				par.WithLogger(app.newLogger(verbose)),
				par.WithJobs(jobs),
			)
			if err != nil {
				return app.renderFailure(issue.BatchFailed(err, cfg.Path))
			}

			for _, res := range results {
				fmt.Fprintln(app.stdout, SuccessStyle.Render("Created PAR package:"), PathStyle.Render(res.Output))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "maximum concurrent builds, 0 for one per package (default from config)")

	return cmd
}
