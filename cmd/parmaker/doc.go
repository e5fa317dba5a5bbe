// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the parmaker CLI.
//
// The root command packs an SFrame package source tree into a PAR archive.
// Subcommands locate archives along PAR_PATH, list archive contents, build
// every package declared in the configuration file, and print the effective
// configuration.
package cmd
