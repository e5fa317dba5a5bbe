// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// Contents of the files written by NewSourceTree.
const (
	FooHeader = `#ifndef Foo_H
#define Foo_H
#include "core/include/SCycleBase.h"
#include "plug-ins/include/SH1.h"
class Foo : public SCycleBase {};
#endif // Foo_H
`
	FooSource = `#include "../include/Foo.h"
#include "core/include/SLogger.h"
ClassImp( Foo );
`
	FooMakefile = `LIBRARY = Foo
OBJDIR  = obj
DEPDIR  = $(OBJDIR)/dep
SRCDIR  = src
INCDIR  = include

include $(SFRAME_DIR)/Makefile.common
`
	FooSetup = `int SETUP() {
   if( gSystem->Load( "libFoo" ) == -1 ) return -1;
   return 0;
}
`
)

// NewSourceTree writes a package source tree with the standard layout below a
// fresh temporary directory and returns its root:
//
//	Makefile
//	include/Foo.h  include/Foo_Dict.h  include/Foo_LinkDef.h
//	src/Foo.cxx    src/Foo_Dict.cxx
//	proof/SETUP.C  proof/run.C  proof/run.C~
func NewSourceTree(t testing.TB) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Foo")
	WriteTree(t, root, map[string]string{
		"Makefile":              FooMakefile,
		"include/Foo.h":         FooHeader,
		"include/Foo_Dict.h":    "// generated\n",
		"include/Foo_LinkDef.h": "#pragma link C++ class Foo+;\n",
		"src/Foo.cxx":           FooSource,
		"src/Foo_Dict.cxx":      "// generated\n",
		"proof/SETUP.C":         FooSetup,
		"proof/run.C":           "void run() {}\n",
		"proof/run.C~":          "void run() { old }\n",
		"proof/nested/":         "",
	})
	return root
}
