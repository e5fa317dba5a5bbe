// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/sframe/parmaker/internal/issue"
	"github.com/sframe/parmaker/internal/locator"
)

const (
	// AppName is the application name.
	AppName = "parmaker"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is looked up in the working directory when the user
	// config file does not exist.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides (PARMAKER_VERBOSE).
	EnvPrefix = "PARMAKER"

	// parPathEnvKey is the viper key bound to the PAR_PATH variable.
	parPathEnvKey = "par_path_env"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the parmaker configuration directory below the platform's
// user configuration directory.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads the configuration. A missing config file yields the defaults.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("defaults.makefile", defaults.Defaults.Makefile)
	v.SetDefault("defaults.include", defaults.Defaults.Include)
	v.SetDefault("defaults.src", defaults.Defaults.Src)
	v.SetDefault("defaults.proofdir", defaults.Defaults.ProofDir)
	v.SetDefault("par_path", defaults.ParPath)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("batch.jobs", defaults.Batch.Jobs)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(parPathEnvKey, locator.EnvVar); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", locator.EnvVar, err)
	}

	path, err := resolveConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.ConfigFailed(err, path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.ConfigFailed(fmt.Errorf("failed to parse config: %w", err), path)
	}
	cfg.Path = path

	if env := v.GetString(parPathEnvKey); env != "" {
		cfg.ParPath = locator.SplitPath(env)
	}

	return &cfg, nil
}

// resolveConfigFile returns the config file to read, or "" when none exists.
// An explicitly requested file must exist.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.ConfigNotFound(opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		var err error
		if cfgDir, err = ConfigDir(); err != nil {
			return "", err
		}
	}

	if userPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(userPath) {
		return userPath, nil
	}
	if fileExists(LocalConfigFile) {
		return LocalConfigFile, nil
	}
	return "", nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg as a CUE configuration file.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// parmaker configuration file\n\n")

	sb.WriteString("defaults: {\n")
	fmt.Fprintf(&sb, "\tmakefile: %q\n", cfg.Defaults.Makefile)
	fmt.Fprintf(&sb, "\tinclude:  %q\n", cfg.Defaults.Include)
	fmt.Fprintf(&sb, "\tsrc:      %q\n", cfg.Defaults.Src)
	fmt.Fprintf(&sb, "\tproofdir: %q\n", cfg.Defaults.ProofDir)
	sb.WriteString("}\n")

	sb.WriteString("\npar_path: [")
	for i, dir := range cfg.ParPath {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", dir)
	}
	sb.WriteString("]\n")

	fmt.Fprintf(&sb, "\nverbose: %v\n", cfg.Verbose)

	sb.WriteString("\nbatch: {\n")
	fmt.Fprintf(&sb, "\tjobs: %d\n", cfg.Batch.Jobs)
	sb.WriteString("}\n")

	if len(cfg.Packages) > 0 {
		sb.WriteString("\npackages: [\n")
		for _, p := range cfg.Packages {
			fmt.Fprintf(&sb, "\t{srcdir: %q, output: %q", p.SrcDir, p.Output)
			for _, f := range []struct{ key, value string }{
				{"makefile", p.Makefile},
				{"include", p.Include},
				{"src", p.Src},
				{"proofdir", p.ProofDir},
			} {
				if f.value != "" {
					fmt.Fprintf(&sb, ", %s: %q", f.key, f.value)
				}
			}
			sb.WriteString("},\n")
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
