// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sframe/parmaker/internal/config"
)

// newConfigCommand creates the `parmaker config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect parmaker configuration",
		Long: `Inspect parmaker configuration.

Configuration is read from the file given with --config, else from
  - Linux: ~/.config/parmaker/config.cue
  - macOS: ~/Library/Application Support/parmaker/config.cue
  - Windows: %APPDATA%\parmaker\config.cue
and finally from ./parmaker.cue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var raw bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true

			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.configPath})
			if err != nil {
				return app.renderFailure(err)
			}

			if raw {
				fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
				return nil
			}
			showConfig(app, cfg)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&raw, "cue", false, "print the configuration as CUE")

	cfgCmd.AddCommand(showCmd)
	return cfgCmd
}

func showConfig(app *App, cfg *config.Config) {
	w := app.stdout
	key := PathStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfg.Path != "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), cfg.Path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", key("defaults.makefile"), SuccessStyle.Render(cfg.Defaults.Makefile))
	fmt.Fprintf(w, "%s: %s\n", key("defaults.include"), SuccessStyle.Render(cfg.Defaults.Include))
	fmt.Fprintf(w, "%s: %s\n", key("defaults.src"), SuccessStyle.Render(cfg.Defaults.Src))
	fmt.Fprintf(w, "%s: %s\n", key("defaults.proofdir"), SuccessStyle.Render(cfg.Defaults.ProofDir))

	parPath := SubtitleStyle.Render("(current directory)")
	if len(cfg.ParPath) > 0 {
		parPath = SuccessStyle.Render(strings.Join(cfg.ParPath, ", "))
	}
	fmt.Fprintf(w, "%s: %s\n", key("par_path"), parPath)
	fmt.Fprintf(w, "%s: %s\n", key("verbose"), SuccessStyle.Render(fmt.Sprint(cfg.Verbose)))
	fmt.Fprintf(w, "%s: %s\n", key("batch.jobs"), SuccessStyle.Render(fmt.Sprint(cfg.Batch.Jobs)))

	fmt.Fprintf(w, "%s: %d\n", key("packages"), len(cfg.Packages))
	for _, p := range cfg.Packages {
		fmt.Fprintf(w, "  %s -> %s\n", p.SrcDir, p.Output)
	}
}
