// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ExitCode is the process status a failure maps to.
type ExitCode int

const (
	// ExitFailure means the request was fine but the work failed: an archive
	// could not be written, a package was not found.
	ExitFailure ExitCode = 1
	// ExitInvalidInput means the request itself is unusable: an output name
	// without ".par", a missing source tree, a configuration file that does
	// not match the schema.
	ExitInvalidInput ExitCode = 2
)

// ActionableError is a failure as shown to the user: the operation that
// failed, the file or directory it concerned, hints for fixing it, and the
// exit code the CLI terminates with.
//
//	return issue.New("build PAR package", err).
//		At("Foo.tgz").
//		Hint(`Name the output file with the ".par" extension`).
//		Invalid()
type ActionableError struct {
	Operation string
	Resource  string
	Hints     []string
	Code      ExitCode
	Cause     error
}

// New returns an ActionableError for operation, a verb phrase such as
// "locate PAR package". The exit code defaults to ExitFailure.
func New(operation string, cause error) *ActionableError {
	return &ActionableError{Operation: operation, Code: ExitFailure, Cause: cause}
}

// At records the file or directory involved.
func (e *ActionableError) At(resource string) *ActionableError {
	e.Resource = resource
	return e
}

// Hint appends fixing hints, shown in order.
func (e *ActionableError) Hint(hints ...string) *ActionableError {
	e.Hints = append(e.Hints, hints...)
	return e
}

// Invalid marks the failure as caused by unusable input.
func (e *ActionableError) Invalid() *ActionableError {
	e.Code = ExitInvalidInput
	return e
}

// Error returns the single-line form "failed to <operation>: <resource>: <cause>".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the cause for errors.Is and errors.As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error followed by one bullet per hint. Verbose output
// appends the numbered cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Hints) > 0 {
		b.WriteByte('\n')
		for _, h := range e.Hints {
			b.WriteString("\n  • " + h)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for i, err := 1, e.Cause; err != nil; i, err = i+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", i, err)
		}
	}
	return b.String()
}

// Display renders any error for the terminal; ActionableErrors get their
// hints.
func Display(err error, verbose bool) string {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// CodeOf returns the exit code carried by the outermost ActionableError in
// err's chain, or ExitFailure.
func CodeOf(err error) ExitCode {
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ExitFailure
}
