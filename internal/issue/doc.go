// SPDX-License-Identifier: MPL-2.0

// Package issue turns parmaker failures into messages a user can act on.
//
// ActionableError carries the failed operation, the file involved, fixing
// hints and the exit code. The catalog functions (BuildFailed, LocateFailed,
// ConfigFailed, ...) map the sentinel errors of the build, lookup and
// configuration packages to the matching hints.
package issue
