// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include file and directory operations (MustMkdirAll,
// MustWriteFile, WriteTree, SnapshotTree) and a ready-made package source tree
// following the SFrame layout (NewSourceTree).
package testutil
