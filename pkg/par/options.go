// SPDX-License-Identifier: MPL-2.0

package par

import (
	"io"

	"github.com/charmbracelet/log"
)

type (
	// Option configures Build and BuildAll.
	Option func(*builder)

	builder struct {
		logger  *log.Logger
		tempDir string
		jobs    int
	}
)

// WithLogger sets the logger used for progress narration and warnings.
func WithLogger(logger *log.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTempDir sets the directory staging workspaces are created in.
// Default is os.TempDir.
func WithTempDir(dir string) Option {
	return func(b *builder) {
		b.tempDir = dir
	}
}

// WithJobs bounds the number of concurrent builds run by BuildAll.
// Values below 1 mean no limit.
func WithJobs(n int) Option {
	return func(b *builder) {
		b.jobs = n
	}
}

func newBuilder(opts []Option) *builder {
	b := &builder{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
