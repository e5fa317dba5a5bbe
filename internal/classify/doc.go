// SPDX-License-Identifier: MPL-2.0

// Package classify selects the files of a package source tree that belong in a
// PAR archive.
//
// Each file is assigned one of three roles:
//   - [RoleHeader]: headers (.h) and inline implementations (.icc) from the include directory
//   - [RoleSource]: translation units (.cxx) from the source directory
//   - [RoleClusterSupport]: every regular, non-backup file from the cluster-support directory
//
// Generated dictionary files (names ending in _Dict.h or _Dict.cxx) are never
// classified as headers or sources; the cluster regenerates them during its own build.
package classify
