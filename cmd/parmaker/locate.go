// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sframe/parmaker/internal/issue"
	"github.com/sframe/parmaker/internal/locator"
)

func newLocateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <name>",
		Short: "Find a PAR package along the search path",
		Long: `Find a PAR package along the search path.

Directories are taken from the PAR_PATH environment variable, a list
separated like PATH, or from par_path in the configuration file. A name
containing a path separator is printed unchanged.`,
		Example: `  PAR_PATH=/opt/pars:/srv/pars parmaker locate Foo.par`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.renderFailure(err)
			}

			verbose := app.effectiveVerbose(cmd.Flags().Changed("verbose"), cfg)
			loc := locator.New(cfg.ParPath, app.newLogger(verbose))

			path, err := loc.Locate(args[0])
			if err != nil {
				return app.renderFailure(issue.LocateFailed(err, args[0]))
			}

			fmt.Fprintln(app.stdout, path)
			return nil
		},
	}
}
