// SPDX-License-Identifier: MPL-2.0

// Package config handles parmaker configuration using Viper with CUE as the file format.
//
// Configuration is read from the file given with --config, otherwise from
// <user config dir>/parmaker/config.cue, otherwise from ./parmaker.cue. A missing
// file is not an error; built-in defaults apply. Files are validated against an
// embedded CUE schema (config_schema.cue) before being merged into Viper.
//
// The PAR_PATH environment variable overrides par_path, and PARMAKER_VERBOSE
// overrides verbose.
package config
