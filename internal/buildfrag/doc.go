// SPDX-License-Identifier: MPL-2.0

// Package buildfrag synthesizes the build descriptor of a PAR package.
//
// A package's own Makefile normally includes the framework-wide rules from
// $(SFRAME_DIR)/Makefile.common, which do not exist on the cluster.
// [RedirectBuildInclude] points that include at Makefile.proof instead, and
// [Fragment] returns the Makefile.proof contents: toolchain discovery through
// ROOT's Makefile.arch, compile, dictionary and dependency rules, and a link
// rule selected per target platform from [LinkVariants].
package buildfrag
