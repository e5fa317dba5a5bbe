// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sframe/parmaker/internal/archive"
	"github.com/sframe/parmaker/internal/buildfrag"
	"github.com/sframe/parmaker/internal/issue"
)

func newInspectCommand(app *App) *cobra.Command {
	var showFragment bool

	cmd := &cobra.Command{
		Use:   "inspect <file.par>",
		Short: "List the contents of a PAR package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true

			entries, err := archive.List(args[0])
			if err != nil {
				return app.renderFailure(issue.UnreadablePackage(err, args[0]))
			}

			if showFragment {
				return printFragment(app, args[0], entries)
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render(args[0]))
			for _, e := range entries {
				name := e.Name
				if e.Dir {
					name = entryDirStyle.Render(name)
				}
				fmt.Fprintf(app.stdout, "%s %s  %s\n", e.Mode.Perm(), entrySizeStyle.Render(fmt.Sprint(e.Size)), name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFragment, "fragment", false, "print the package's "+buildfrag.FragmentName+" instead of listing entries")

	return cmd
}

// printFragment prints the Makefile.proof stored below the top-level directory.
func printFragment(app *App, path string, entries []archive.Entry) error {
	for _, e := range entries {
		if e.Dir || !strings.HasSuffix(e.Name, "/"+buildfrag.FragmentName) || strings.Count(e.Name, "/") != 1 {
			continue
		}
		data, err := archive.ReadFile(path, e.Name)
		if err != nil {
			return app.renderFailure(issue.UnreadablePackage(err, path))
		}
		_, err = app.stdout.Write(data)
		return err
	}

	return app.renderFailure(issue.UnreadablePackage(archive.ErrEntryNotFound, path))
}
