// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// unknownFlags returns the flags in raw that fs does not define, in the order
// given. Parsing stops at "--". A known flag that takes a value consumes the
// following argument.
func unknownFlags(fs *pflag.FlagSet, raw []string) []string {
	var unknown []string

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		switch {
		case arg == "--":
			return unknown
		case strings.HasPrefix(arg, "--"):
			name, _, hasValue := strings.Cut(arg[2:], "=")
			f := fs.Lookup(name)
			if f == nil {
				unknown = append(unknown, "--"+name)
				continue
			}
			if !hasValue && f.NoOptDefVal == "" {
				i++
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			shorts := arg[1:]
			for j := 0; j < len(shorts); j++ {
				c := shorts[j]
				if c == '=' {
					break
				}
				f := fs.ShorthandLookup(string(c))
				if f == nil {
					unknown = append(unknown, "-"+string(c))
					continue
				}
				if f.NoOptDefVal != "" {
					continue
				}
				// the rest of the group, or the next argument, is the value
				if j == len(shorts)-1 {
					i++
				}
				break
			}
		}
	}

	return unknown
}

// warnIgnoredArgs reports flags and positional arguments the build ignores.
func warnIgnoredArgs(w io.Writer, flags, positional []string) {
	for _, f := range flags {
		fmt.Fprintf(w, "%s unrecognized option %s, ignoring\n", WarningStyle.Render("Warning:"), f)
	}
	if len(positional) > 0 {
		fmt.Fprintf(w, "%s unexpected argument(s) %s, ignoring\n", WarningStyle.Render("Warning:"), strings.Join(positional, " "))
	}
}
