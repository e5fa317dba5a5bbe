// SPDX-License-Identifier: MPL-2.0

package buildfrag

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

const (
	// FragmentName is the file name of the generated fragment inside the package.
	FragmentName = "Makefile.proof"
	// FragmentVersion is bumped whenever the fragment's rules change.
	FragmentVersion = 2
	// SharedRulesInclude is the include target that gets redirected to FragmentName.
	SharedRulesInclude = "$(SFRAME_DIR)/Makefile.common"

	// linkObjects is the object list and output shared by every link variant.
	linkObjects = "-O2 $(addprefix $(OBJDIR)/,$(OLIST)) $(DICTOBJ) -o $(SHLIBFILE)"
)

const (
	// LinkShared links a conventional shared object.
	LinkShared LinkMode = iota + 1
	// LinkBundle links a dynamically loadable module whose unresolved symbols
	// are looked up at load time.
	LinkBundle
)

type (
	// LinkMode selects how the package library is linked.
	LinkMode int

	// LinkVariant binds a ROOT platform identifier, as set in $(PLATFORM) by
	// Makefile.arch, to a link mode.
	LinkVariant struct {
		Platform string
		Mode     LinkMode
	}

	fragmentData struct {
		Version  int
		LinkRule string
	}
)

//go:embed Makefile.proof.tmpl
var fragmentTemplate string

// linkVariants lists the platforms that do not use DefaultLinkMode.
var linkVariants = [...]LinkVariant{
	{Platform: "macosx", Mode: LinkBundle},
}

// DefaultLinkMode applies to every platform missing from LinkVariants.
const DefaultLinkMode = LinkShared

var renderFragment = sync.OnceValue(func() []byte {
	tmpl := template.Must(template.New(FragmentName).Parse(fragmentTemplate))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fragmentData{
		Version:  FragmentVersion,
		LinkRule: linkRule(linkVariants[:]),
	}); err != nil {
		panic(fmt.Sprintf("buildfrag: render %s: %v", FragmentName, err))
	}
	return buf.Bytes()
})

// String returns the link mode name.
func (m LinkMode) String() string {
	switch m {
	case LinkShared:
		return "shared"
	case LinkBundle:
		return "bundle"
	default:
		return fmt.Sprintf("LinkMode(%d)", int(m))
	}
}

// Flags returns the linker flags of the mode.
func (m LinkMode) Flags() string {
	switch m {
	case LinkBundle:
		return "$(LDFLAGS) -bundle -undefined dynamic_lookup"
	default:
		return "$(SOFLAGS)"
	}
}

// LinkVariants returns the platform link table.
func LinkVariants() []LinkVariant {
	out := make([]LinkVariant, len(linkVariants))
	copy(out, linkVariants[:])
	return out
}

// ModeFor returns the link mode used on platform.
func ModeFor(platform string) LinkMode {
	for _, v := range linkVariants {
		if v.Platform == platform {
			return v.Mode
		}
	}
	return DefaultLinkMode
}

// linkRule renders the recipe lines of the library target as a make
// conditional chain over $(PLATFORM).
func linkRule(variants []LinkVariant) string {
	var b strings.Builder
	for i, v := range variants {
		if i == 0 {
			fmt.Fprintf(&b, "ifeq ($(PLATFORM),%s)\n", v.Platform)
		} else {
			fmt.Fprintf(&b, "else ifeq ($(PLATFORM),%s)\n", v.Platform)
		}
		fmt.Fprintf(&b, "\t@$(LD) %s %s\n", v.Mode.Flags(), linkObjects)
	}
	if len(variants) > 0 {
		b.WriteString("else\n")
	}
	fmt.Fprintf(&b, "\t@$(LD) %s %s\n", DefaultLinkMode.Flags(), linkObjects)
	if len(variants) > 0 {
		b.WriteString("endif\n")
	}
	return b.String()
}

// Fragment returns the contents of Makefile.proof. The result is a fresh copy
// and may be modified by the caller.
func Fragment() []byte {
	return bytes.Clone(renderFragment())
}

// RedirectBuildInclude replaces the shared-rules include in a package Makefile
// with an include of FragmentName. Contents without the include are returned
// unchanged.
func RedirectBuildInclude(contents []byte) []byte {
	return bytes.ReplaceAll(contents, []byte(SharedRulesInclude), []byte(FragmentName))
}

// NeedsRedirect reports whether contents include the shared rules, i.e. whether
// RedirectBuildInclude would change them.
func NeedsRedirect(contents []byte) bool {
	return bytes.Contains(contents, []byte(SharedRulesInclude))
}
