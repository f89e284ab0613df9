package cygwin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossforge/buildchain/ninja"
	"github.com/crossforge/buildchain/plan"
)

func TestArch(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"x86_64-pc-cygwin", "x86_64"},
		{"amd64-pc-cygwin", "x86_64"},
		{"x64-pc-cygwin", "x86_64"},
		{"x86-pc-cygwin", "x86"},
		{"i386-pc-cygwin", "x86"},
		{"i686-pc-cygwin", "x86"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, Arch(tt.target))
		})
	}
}

func encodePlan(t *testing.T, target string) string {
	t.Helper()
	file, err := Plan(target, "3.4.7", "/work/cygwin")
	require.NoError(t, err)

	require.NoError(t, plan.Verify(file))

	var buf bytes.Buffer
	require.NoError(t, file.Encode(&buf))
	return buf.String()
}

func TestPlan_X8664(t *testing.T) {
	out := encodePlan(t, "x86_64-pc-cygwin")

	assert.Contains(t, out, "cygwin_mirror_site = https://mirrors.kernel.org/sourceware/cygwin\n")
	assert.Contains(t, out, "setup_file = $download_dir/setup-x86_64.exe")
	assert.Contains(t, out, "newlib_cygwin_tarball = $download_dir/cygwin-cygwin-3.4.7.tar.gz")
	assert.Contains(t, out, "https://cygwin.com/setup-x86_64.exe")
	assert.NotContains(t, out, "--allow-unsupported-windows")
}

func TestPlan_X86UsesArchiveMirror(t *testing.T) {
	out := encodePlan(t, "i686-pc-cygwin")

	assert.Contains(t, out, "cygwin_mirror_site = https://mirrors.kernel.org/sourceware/cygwin-archive/20221123\n")
	assert.Contains(t, out, "setup_file = $download_dir/setup-x86.exe")
	assert.Contains(t, out, "--allow-unsupported-windows")
}

func TestPlan_InstallsTripleSpecificMingwPackages(t *testing.T) {
	out := encodePlan(t, "i686-pc-cygwin")
	assert.Contains(t, out, "mingw64-i686-gcc-g++")
	assert.Contains(t, out, "mingw64-i686-zlib")
}

func TestPlan_RootDirIsSlashSeparated(t *testing.T) {
	file, err := Plan("x86_64-pc-cygwin", "3.4.7", `C:\work\cygwin`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, file.Encode(&buf))
	assert.Contains(t, buf.String(), "root_dir = C:/work/cygwin")
}

func TestPlan_InstallDependsOnSetup(t *testing.T) {
	file, err := Plan("x86_64-pc-cygwin", "3.4.7", "/work/cygwin")
	require.NoError(t, err)

	var install ninja.Edge
	for _, r := range file {
		if e, ok := r.(ninja.Edge); ok && e.Out == "$cygwin_install_dir" {
			install = e
		}
	}
	assert.Equal(t, []string{"$setup_file"}, install.Implicit)
}
