// SPDX-License-Identifier: MPL-2.0

package config

import (
	"path/filepath"

	"github.com/sframe/parmaker/pkg/par"
)

type (
	// Config is the parmaker configuration.
	Config struct {
		// Defaults are the package layout defaults.
		Defaults Defaults `json:"defaults" mapstructure:"defaults"`
		// ParPath lists the directories searched for PAR packages.
		ParPath []string `json:"par_path" mapstructure:"par_path"`
		// Verbose enables progress narration.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Batch configures 'parmaker batch'.
		Batch BatchConfig `json:"batch" mapstructure:"batch"`
		// Packages are the packages built by 'parmaker batch'.
		Packages []PackageEntry `json:"packages" mapstructure:"packages"`

		// Path is the file the configuration was read from; empty when only
		// defaults apply.
		Path string `json:"-" mapstructure:"-"`
	}

	// Defaults holds the layout names used when a build does not set them.
	Defaults struct {
		Makefile string `json:"makefile" mapstructure:"makefile"`
		Include  string `json:"include" mapstructure:"include"`
		Src      string `json:"src" mapstructure:"src"`
		ProofDir string `json:"proofdir" mapstructure:"proofdir"`
	}

	// BatchConfig configures concurrent builds.
	BatchConfig struct {
		// Jobs bounds the number of concurrent builds; 0 means unbounded.
		Jobs int `json:"jobs" mapstructure:"jobs"`
	}

	// PackageEntry declares one package for batch builds. Empty layout fields
	// fall back to Defaults.
	PackageEntry struct {
		SrcDir   string `json:"srcdir" mapstructure:"srcdir"`
		Output   string `json:"output" mapstructure:"output"`
		Makefile string `json:"makefile,omitempty" mapstructure:"makefile"`
		Include  string `json:"include,omitempty" mapstructure:"include"`
		Src      string `json:"src,omitempty" mapstructure:"src"`
		ProofDir string `json:"proofdir,omitempty" mapstructure:"proofdir"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			Makefile: par.DefaultMakefile,
			Include:  par.DefaultIncludeDir,
			Src:      par.DefaultSourceDir,
			ProofDir: par.DefaultSupportDir,
		},
		ParPath:  []string{},
		Verbose:  false,
		Batch:    BatchConfig{Jobs: 0},
		Packages: []PackageEntry{},
	}
}

// BaseSpec returns a PackageSpec carrying the configured layout defaults.
func (c *Config) BaseSpec() par.PackageSpec {
	spec := par.DefaultSpec()
	spec.Makefile = orDefault(c.Defaults.Makefile, spec.Makefile)
	spec.IncludeDir = orDefault(c.Defaults.Include, spec.IncludeDir)
	spec.SourceDir = orDefault(c.Defaults.Src, spec.SourceDir)
	spec.SupportDir = orDefault(c.Defaults.ProofDir, spec.SupportDir)
	spec.Verbose = c.Verbose
	return spec
}

// PackageSpecs converts Packages into build specs. Relative source and output
// paths are resolved against the directory of the configuration file.
func (c *Config) PackageSpecs() []par.PackageSpec {
	base := c.BaseSpec()
	baseDir := ""
	if c.Path != "" {
		baseDir = filepath.Dir(c.Path)
	}

	specs := make([]par.PackageSpec, 0, len(c.Packages))
	for _, p := range c.Packages {
		spec := base
		spec.SourceRoot = resolve(baseDir, p.SrcDir)
		spec.Output = resolve(baseDir, p.Output)
		spec.Makefile = orDefault(p.Makefile, base.Makefile)
		spec.IncludeDir = orDefault(p.Include, base.IncludeDir)
		spec.SourceDir = orDefault(p.Src, base.SourceDir)
		spec.SupportDir = orDefault(p.ProofDir, base.SupportDir)
		specs = append(specs, spec)
	}
	return specs
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func resolve(baseDir, path string) string {
	if baseDir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
