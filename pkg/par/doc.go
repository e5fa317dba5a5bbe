// SPDX-License-Identifier: MPL-2.0

// Package par builds PAR (PROOF ARchive) packages from package source trees.
//
// A package source tree follows the SFrame layout:
//
//	<srcdir>/Makefile
//	<srcdir>/include/   headers (.h, .icc)
//	<srcdir>/src/       translation units (.cxx)
//	<srcdir>/proof/     files for the cluster's package loader
//
// [Build] stages a copy of the tree with relocated include paths and a
// cluster-specific Makefile.proof, compresses it into a single .par file whose
// top-level directory is the package base name, and removes the staging
// directory on every exit path. [BuildAll] runs several builds concurrently.
//
// The source tree is only ever read.
package par
