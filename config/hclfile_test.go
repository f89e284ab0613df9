package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toolchain.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_SetsOptions(t *testing.T) {
	path := writeConfigFile(t, `
target         = "x86_64-linux-musl"
cc_build       = "clang"
cxx_build      = "clang++"
enable_cache   = true
gcc_with_isl   = true
linux_headers  = "disabled"
binutils_flags = "--enable-gold"

versions {
  gcc  = "12.3.0"
  musl = "1.2.3"
}
`)

	opts := DefaultOptions()
	require.NoError(t, LoadFile(path, &opts))

	assert.Equal(t, "x86_64-linux-musl", opts.Target)
	assert.Equal(t, "clang", opts.CCBuild)
	assert.Equal(t, "clang++", opts.CXXBuild)
	assert.True(t, opts.EnableCache)
	assert.True(t, opts.WithISL)
	assert.Equal(t, LinuxHeadersDisabled, opts.LinuxHeaders)
	assert.Equal(t, "--enable-gold", opts.ExtraBinutilsFlags)
	assert.Equal(t, "12.3.0", opts.Versions.GCC)
	assert.Equal(t, "1.2.3", opts.Versions.Musl)
}

func TestLoadFile_AbsentAttributesKeepDefaults(t *testing.T) {
	path := writeConfigFile(t, `target = "aarch64-linux-gnu"`)

	opts := DefaultOptions()
	require.NoError(t, LoadFile(path, &opts))

	assert.Equal(t, "aarch64-linux-gnu", opts.Target)
	assert.Equal(t, "$host-gcc", opts.CC)
	assert.Equal(t, "gcc", opts.CCBuild)
	assert.Equal(t, "auto", opts.LibC)
	assert.Equal(t, "2.40", opts.Versions.Binutils)
}

func TestLoadFile_PatchDirAndJobs(t *testing.T) {
	path := writeConfigFile(t, `
target    = "x86_64-linux-musl"
patch_dir = "ports/patches"
jobs      = 12
`)

	opts := DefaultOptions()
	require.NoError(t, LoadFile(path, &opts))

	assert.Equal(t, "ports/patches", opts.PatchDir)
	assert.Equal(t, 12, opts.Jobs)
}

func TestLoadFile_FileTargetVisibleToExpressions(t *testing.T) {
	// cc appears before target on purpose; attribute order must not matter.
	path := writeConfigFile(t, `
cc     = "${target}-cc"
target = "aarch64-linux-gnu"
`)

	opts := DefaultOptions()
	require.NoError(t, LoadFile(path, &opts))

	assert.Equal(t, "aarch64-linux-gnu-cc", opts.CC)
}

func TestLoadFile_FlagTargetWinsOverFileTargetInExpressions(t *testing.T) {
	path := writeConfigFile(t, `
target = "aarch64-linux-gnu"
cc     = "${target}-cc"
`)

	opts := DefaultOptions()
	opts.Target = "riscv64-linux-musl"
	require.NoError(t, LoadFile(path, &opts))

	assert.Equal(t, "riscv64-linux-musl-cc", opts.CC)
}

func TestLoadFile_ExpressionsSeeTarget(t *testing.T) {
	path := writeConfigFile(t, `cc = "${target}-cc"`)

	opts := DefaultOptions()
	opts.Target = "riscv64-linux-musl"
	require.NoError(t, LoadFile(path, &opts))

	assert.Equal(t, "riscv64-linux-musl-cc", opts.CC)
}

func TestLoadFile_ParseErrors(t *testing.T) {
	path := writeConfigFile(t, `target = `)

	opts := DefaultOptions()
	err := LoadFile(path, &opts)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadFile_UnknownAttributeFails(t *testing.T) {
	path := writeConfigFile(t, `tarket = "aarch64-linux-gnu"`)

	opts := DefaultOptions()
	err := LoadFile(path, &opts)
	assert.ErrorContains(t, err, "failed to decode config file")
}

func TestLoadFile_MissingFile(t *testing.T) {
	opts := DefaultOptions()
	err := LoadFile(filepath.Join(t.TempDir(), "nope.hcl"), &opts)
	assert.Error(t, err)
}
