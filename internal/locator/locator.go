// SPDX-License-Identifier: MPL-2.0

// Package locator finds PAR packages along a search path, the way the cluster
// job configuration refers to them by bare file name.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// EnvVar is the environment variable holding the search path.
	EnvVar = "PAR_PATH"
	// fallbackDir is searched when no directory is configured.
	fallbackDir = "./"
)

// ErrNotFound is returned when no search directory holds the package.
var ErrNotFound = errors.New("PAR package not found")

// Locator resolves PAR file names against an ordered directory list.
type Locator struct {
	dirs   []string
	logger *log.Logger
}

// New creates a Locator searching dirs in order. Empty entries are dropped; an
// empty list falls back to the current directory with a warning.
func New(dirs []string, logger *log.Logger) *Locator {
	if logger == nil {
		logger = log.Default()
	}

	l := &Locator{logger: logger}
	for _, d := range dirs {
		if d != "" {
			l.dirs = append(l.dirs, d)
		}
	}
	if len(l.dirs) == 0 {
		logger.Warn("No directories set in the search path", "env", EnvVar)
		logger.Warn("Only the local directory will be searched")
		l.dirs = []string{fallbackDir}
	}
	return l
}

// FromEnv creates a Locator from a search path value such as $PAR_PATH.
func FromEnv(value string, logger *log.Logger) *Locator {
	return New(SplitPath(value), logger)
}

// SplitPath splits a colon-separated search path value.
func SplitPath(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, string(os.PathListSeparator))
}

// Dirs returns the directories searched, in order.
func (l *Locator) Dirs() []string {
	out := make([]string, len(l.dirs))
	copy(out, l.dirs)
	return out
}

// Locate returns the path of the package called name. A name containing a
// path separator is treated as a full path and returned as is.
func (l *Locator) Locate(name string) (string, error) {
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		l.logger.Debug("Treating name as full path", "name", name)
		return name, nil
	}

	for _, dir := range l.dirs {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		l.logger.Debug("Found package", "name", name, "dir", dir)
		return candidate, nil
	}

	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, strings.Join(l.dirs, string(os.PathListSeparator)))
}
