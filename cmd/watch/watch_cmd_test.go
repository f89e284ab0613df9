package watch

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

func TestLoadOptions_ConfigFileDecidesPatchDir(t *testing.T) {
	path := writeConfigFile(t, `
target    = "x86_64-linux-musl"
patch_dir = "ports/patches"
`)

	opts, err := loadOptions(path, "")
	require.NoError(t, err)
	assert.Equal(t, "ports/patches", opts.PatchDir)
	assert.Equal(t, "x86_64-linux-musl", opts.Target)
}

func TestLoadOptions_FlagOverridesConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
target    = "x86_64-linux-musl"
patch_dir = "ports/patches"
`)

	opts, err := loadOptions(path, "/custom/patches")
	require.NoError(t, err)
	assert.Equal(t, "/custom/patches", opts.PatchDir)
}

func TestLoadOptions_DefaultWhenFileIsSilent(t *testing.T) {
	path := writeConfigFile(t, `target = "aarch64-linux-gnu"`)

	opts, err := loadOptions(path, "")
	require.NoError(t, err)
	assert.Equal(t, "patches", opts.PatchDir)
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := loadOptions(filepath.Join(t.TempDir(), "nope.hcl"), "")
	assert.Error(t, err)
}
