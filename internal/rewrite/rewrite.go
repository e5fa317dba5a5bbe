// SPDX-License-Identifier: MPL-2.0

// Package rewrite relocates include paths inside source files copied into a PAR
// archive, so that references into the framework's core and plug-in headers
// resolve against the installed package names on the cluster.
package rewrite

import (
	"bytes"
	"fmt"
	"os"
)

// Token is a literal replacement applied to staged source files.
type Token struct {
	// From is the in-tree include path marker.
	From string
	// To is the package-relative include path visible on the cluster.
	To string
}

// tokens is applied in order. No From is a substring of another.
var tokens = [...]Token{
	{From: "core/include", To: "SFrameCore/include"},
	{From: "plug-ins/include", To: "SFramePlugIns/include"},
}

// Tokens returns the ordered replacement list.
func Tokens() []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens[:])
	return out
}

// Rewrite returns contents with every token replaced. Matching is plain
// substring matching; text outside of include directives is rewritten too.
// The input slice is not modified.
func Rewrite(contents []byte) []byte {
	out := bytes.Clone(contents)
	for _, tok := range tokens {
		out = bytes.ReplaceAll(out, []byte(tok.From), []byte(tok.To))
	}
	return out
}

// RewriteFile rewrites the file at path in place, keeping its permissions.
// It must only be called on staged copies.
func RewriteFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	rewritten := Rewrite(data)
	if bytes.Equal(rewritten, data) {
		return nil
	}

	if err := os.WriteFile(path, rewritten, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
