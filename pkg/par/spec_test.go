// SPDX-License-Identifier: MPL-2.0

package par

import (
	"errors"
	"testing"
)

func TestPackageSpec_BaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		output string
		want   string
	}{
		{"Foo.par", "Foo"},
		{"/tmp/out/SFrameUser.par", "SFrameUser"},
		{"dist/My.Pkg.par", "My.Pkg"},
	}
	for _, tt := range tests {
		spec := DefaultSpec()
		spec.Output = tt.output
		if got := spec.BaseName(); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestPackageSpec_ValidateChecksExtensionFirst(t *testing.T) {
	t.Parallel()

	spec := PackageSpec{Output: "Foo.zip"}
	err := spec.Validate()
	if !errors.Is(err, ErrInvalidExtension) {
		t.Fatalf("Validate() error = %v, want ErrInvalidExtension", err)
	}
	if errors.Is(err, ErrInvalidSpec) {
		t.Error("extension failure should be reported on its own")
	}
}

func TestDefaultSpec(t *testing.T) {
	t.Parallel()

	spec := DefaultSpec()
	if err := spec.Validate(); err != nil {
		t.Errorf("DefaultSpec().Validate() error = %v", err)
	}
	if spec.Output != "Test.par" || spec.SupportDir != "proof" {
		t.Errorf("DefaultSpec() = %+v", spec)
	}
}
