package libc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ExplicitChoices(t *testing.T) {
	tests := []struct {
		choice string
		want   Strategy
	}{
		{"glibc", Glibc},
		{"msvcrt", MingwMsvcrt},
		{"musl", Musl},
		{"ucrt", MingwUcrt},
		{"newlib-cygwin", CygwinNewlib},
		{"cygwin-newlib", CygwinNewlib},
	}

	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			got, err := Resolve(tt.choice, "x86_64-linux-gnu")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_UnknownChoice(t *testing.T) {
	_, err := Resolve("uclibc", "x86_64-linux-gnu")
	assert.ErrorContains(t, err, "unknown libc implementation")
}

func TestResolve_AutoDetection(t *testing.T) {
	tests := []struct {
		target string
		want   Strategy
	}{
		{"aarch64-linux-gnu", Glibc},
		{"arm-linux-gnueabihf", Glibc},
		{"x86_64-linux-musl", Musl},
		{"x86_64-w64-mingw32", MingwUcrt},
		{"i686-w64-mingw32", MingwUcrt},
		{"i686-pc-cygwin", CygwinNewlib},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := Resolve("auto", tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_EmptyChoiceDetects(t *testing.T) {
	got, err := Resolve("", "x86_64-linux-musl")
	require.NoError(t, err)
	assert.Equal(t, Musl, got)
}

func TestResolve_AutoDetectionFailsWithoutSilentDefault(t *testing.T) {
	_, err := Resolve("auto", "x86_64-unknown-elf")
	assert.ErrorContains(t, err, "cannot determine which libc implementation")
}

func TestStrategy_Predicates(t *testing.T) {
	assert.False(t, Glibc.RequiresMingwW64())
	assert.False(t, Musl.RequiresMingwW64())

	assert.True(t, MingwMsvcrt.RequiresMingwW64())
	assert.True(t, MingwMsvcrt.IsMingwW64())
	assert.False(t, MingwMsvcrt.IsCygwinNewlib())

	assert.True(t, MingwUcrt.IsMingwW64())

	assert.True(t, CygwinNewlib.RequiresMingwW64())
	assert.False(t, CygwinNewlib.IsMingwW64())
	assert.True(t, CygwinNewlib.IsCygwinNewlib())
}

func TestStrategy_Names(t *testing.T) {
	assert.Equal(t, "glibc", Glibc.Name())
	assert.Equal(t, "musl", Musl.Name())
	assert.Equal(t, "msvcrt", MingwMsvcrt.Name())
	assert.Equal(t, "ucrt", MingwUcrt.Name())
	assert.Equal(t, "newlib-cygwin", CygwinNewlib.Name())
}

func TestStrategy_VersionKeys(t *testing.T) {
	assert.Equal(t, "glibc", Glibc.VersionKey())
	assert.Equal(t, "musl", Musl.VersionKey())
	assert.Equal(t, "mingw_w64", MingwMsvcrt.VersionKey())
	assert.Equal(t, "mingw_w64", MingwUcrt.VersionKey())
	assert.Equal(t, "cygwin", CygwinNewlib.VersionKey())
}
