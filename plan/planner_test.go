package plan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossforge/buildchain/config"
	"github.com/crossforge/buildchain/ninja"
)

// resolveConfig resolves a configuration with deterministic root and job
// settings so plans can be compared byte for byte.
func resolveConfig(t *testing.T, over config.Options) *config.Config {
	t.Helper()

	opts := config.DefaultOptions()
	opts.Target = over.Target
	opts.Host = over.Host
	opts.NoDefaultConfigure = over.NoDefaultConfigure
	opts.WithISL = over.WithISL
	opts.NoPatches = over.NoPatches
	opts.ExtraBinutilsFlags = over.ExtraBinutilsFlags
	opts.ExtraGCCFlags = over.ExtraGCCFlags
	if over.LibC != "" {
		opts.LibC = over.LibC
	}
	if over.LinuxHeaders != "" {
		opts.LinuxHeaders = over.LinuxHeaders
	}
	if over.PatchDir != "" {
		opts.PatchDir = over.PatchDir
	}
	opts.RootDir = "/work"
	opts.Jobs = 8

	cfg, err := opts.Resolve()
	require.NoError(t, err)
	return cfg
}

func planFor(t *testing.T, over config.Options) ninja.File {
	t.Helper()
	file, err := Plan(resolveConfig(t, over))
	require.NoError(t, err)
	return file
}

func findEdge(t *testing.T, f ninja.File, out string) ninja.Edge {
	t.Helper()
	for _, r := range f {
		if e, ok := r.(ninja.Edge); ok && e.Out == out {
			return e
		}
	}
	t.Fatalf("no step %q in plan", out)
	return ninja.Edge{}
}

func hasEdge(f ninja.File, out string) bool {
	for _, r := range f {
		if e, ok := r.(ninja.Edge); ok && e.Out == out {
			return true
		}
	}
	return false
}

func findRule(t *testing.T, f ninja.File, name string) ninja.Rule {
	t.Helper()
	for _, r := range f {
		if rule, ok := r.(ninja.Rule); ok && rule.Name == name {
			return rule
		}
	}
	t.Fatalf("no rule %q in plan", name)
	return ninja.Rule{}
}

func findVariable(f ninja.File, name string) (string, bool) {
	for _, r := range f {
		if v, ok := r.(ninja.Variable); ok && v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

func findDefault(t *testing.T, f ninja.File) ninja.Default {
	t.Helper()
	for _, r := range f {
		if d, ok := r.(ninja.Default); ok {
			return d
		}
	}
	t.Fatal("no default statement in plan")
	return ninja.Default{}
}

func TestPlan_EveryConfigurationVerifies(t *testing.T) {
	tests := []config.Options{
		{Target: "aarch64-linux-gnu"},
		{Target: "arm-linux-gnueabihf"},
		{Target: "x86_64-linux-musl"},
		{Target: "riscv64-linux-musl", WithISL: true},
		{Target: "x86_64-linux-gnu", Host: "x86_64-w64-mingw32"},
		{Target: "x86_64-w64-mingw32"},
		{Target: "i686-w64-mingw32", LibC: "msvcrt"},
		{Target: "i686-pc-cygwin"},
		{Target: "x86_64-pc-cygwin"},
		{Target: "s390x-linux-gnu", NoDefaultConfigure: true},
	}

	for _, opts := range tests {
		t.Run(opts.Target, func(t *testing.T) {
			file := planFor(t, opts)
			assert.NoError(t, Verify(file))
		})
	}
}

func TestPlan_IsIdempotent(t *testing.T) {
	opts := config.Options{Target: "aarch64-linux-gnu"}

	var first, second bytes.Buffer
	require.NoError(t, planFor(t, opts).Encode(&first))
	require.NoError(t, planFor(t, opts).Encode(&second))

	assert.Equal(t, first.String(), second.String())
}

func TestPlan_GlibcMiddleStages(t *testing.T) {
	file := planFor(t, config.Options{Target: "aarch64-linux-gnu"})

	assert.True(t, hasEdge(file, step("extract-linux")))
	assert.True(t, hasEdge(file, step("build-glibc-csu")))
	assert.True(t, hasEdge(file, step("install-glibc-csu-sysroot")))
	assert.False(t, hasEdge(file, step("configure-mingw-w64-headers")))

	configure := findEdge(t, file, step("configure-glibc"))
	assert.Contains(t, configure.Implicit, step("install-linux-headers-sysroot"))
	assert.Contains(t, configure.Implicit, step("install-gcc-all-gcc"))

	libgcc := findEdge(t, file, step("build-gcc-all-target-libgcc"))
	assert.Contains(t, libgcc.Implicit, step("install-glibc-csu-sysroot"))

	buildLibc := findEdge(t, file, step("build-glibc"))
	assert.Contains(t, buildLibc.Implicit, step("install-gcc-all-target-libgcc"))

	buildGCC := findEdge(t, file, step("build-gcc"))
	assert.Equal(t, []string{step("install-glibc-sysroot")}, buildGCC.Implicit)

	arch, ok := findVariable(file, "arch")
	require.True(t, ok)
	assert.Equal(t, "arm64", arch)
}

func TestPlan_LinuxHeaderInstallsAreOrdered(t *testing.T) {
	file := planFor(t, config.Options{Target: "aarch64-linux-gnu"})

	install := findEdge(t, file, step("install-linux-headers"))
	assert.Contains(t, install.Implicit, step("install-linux-headers-sysroot"))
}

func TestPlan_MuslMiddleStages(t *testing.T) {
	file := planFor(t, config.Options{Target: "x86_64-linux-musl"})

	configure := findRule(t, file, "configure-musl")
	assert.Contains(t, configure.Command, `LIBCC="$root_dir/$gcc_build_dir/$target/libgcc/libgcc.a"`)

	libgcc := findRule(t, file, "build-gcc-all-target-libgcc")
	assert.Contains(t, libgcc.Command, "enable_shared=no")

	assert.False(t, hasEdge(file, step("build-glibc-csu")))

	// musl's full build waits only for libgcc to exist, not for it to be
	// installed.
	buildLibc := findEdge(t, file, step("build-musl"))
	assert.Equal(t, []string{step("build-gcc-all-target-libgcc")}, buildLibc.Implicit)
}

func TestPlan_MingwUcrtStages(t *testing.T) {
	file := planFor(t, config.Options{Target: "x86_64-w64-mingw32"})

	allGCC := findEdge(t, file, step("build-gcc-all-gcc"))
	assert.Contains(t, allGCC.Implicit, step("install-mingw-w64-headers-sysroot"))

	headers := findRule(t, file, "configure-mingw-w64-headers")
	assert.Contains(t, headers.Command, "--with-default-msvcrt=ucrt")

	crt := findEdge(t, file, step("configure-mingw-w64-crt"))
	assert.Contains(t, crt.Implicit, step("install-gcc-all-gcc"))
	assert.Contains(t, crt.Implicit, step("install-mingw-w64-headers-sysroot"))

	buildGCC := findEdge(t, file, step("build-gcc"))
	assert.Contains(t, buildGCC.Implicit, step("install-mingw-w64-crt-sysroot"))
	assert.Contains(t, buildGCC.Implicit, step("install-mingw-w64-threads-sysroot"))

	// No unix-style C library stages for a mingw target.
	assert.False(t, hasEdge(file, step("configure-glibc")))
	assert.False(t, hasEdge(file, step("configure-musl")))
	assert.False(t, hasEdge(file, step("extract-linux")))

	install := findEdge(t, file, "install")
	assert.Contains(t, install.Implicit, step("install-mingw-w64-headers"))
	assert.Contains(t, install.Implicit, step("install-mingw-w64-crt"))
	assert.Contains(t, install.Implicit, step("install-mingw-w64-threads"))
}

func TestPlan_CygwinSkipsWinpthreadsAndLinux(t *testing.T) {
	file := planFor(t, config.Options{Target: "i686-pc-cygwin"})

	assert.True(t, hasEdge(file, step("install-mingw-w64-crt-sysroot")))
	assert.False(t, hasEdge(file, step("configure-mingw-w64-threads")))
	assert.False(t, hasEdge(file, step("extract-linux")))

	headers := findRule(t, file, "configure-mingw-w64-headers")
	assert.Contains(t, headers.Command, "--enable-w32api")

	install := findEdge(t, file, "install")
	assert.NotContains(t, install.Implicit, step("install-mingw-w64-threads"))
}

func TestPlan_DefaultTargets(t *testing.T) {
	glibc := planFor(t, config.Options{Target: "aarch64-linux-gnu"})
	assert.Equal(t, []string{step("build-gcc"), step("build-linux-headers")}, findDefault(t, glibc).Targets)

	mingw := planFor(t, config.Options{Target: "x86_64-w64-mingw32"})
	assert.Equal(t, []string{step("build-gcc")}, findDefault(t, mingw).Targets)
}

func TestPlan_CleanTargets(t *testing.T) {
	file := planFor(t, config.Options{Target: "x86_64-linux-musl"})

	clean := findEdge(t, file, "clean")
	assert.Equal(t, []string{"clean-build", "clean-downloads", "clean-toolchain"}, clean.Implicit)
}

func TestPlan_CrossBuildVariables(t *testing.T) {
	native := planFor(t, config.Options{Target: "x86_64-linux-gnu"})
	_, ok := findVariable(native, "cc_build")
	assert.False(t, ok)

	cross := planFor(t, config.Options{Target: "x86_64-linux-gnu", Host: "x86_64-w64-mingw32"})
	ccBuild, ok := findVariable(cross, "cc_build")
	require.True(t, ok)
	assert.Equal(t, "gcc", ccBuild)

	envVars, ok := findVariable(cross, "env_vars")
	require.True(t, ok)
	assert.Contains(t, envVars, `CC_FOR_BUILD="$cc_build"`)
}

func TestPlan_ISLSelection(t *testing.T) {
	with := planFor(t, config.Options{Target: "aarch64-linux-gnu", WithISL: true})
	assert.True(t, hasEdge(with, step("extract-isl")))
	assert.Contains(t, findEdge(t, with, step("configure-gcc")).Implicit, step("move-isl"))

	without := planFor(t, config.Options{Target: "aarch64-linux-gnu"})
	assert.False(t, hasEdge(without, step("extract-isl")))
}

func TestPlan_PatchesAreSplicedInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	patchDir := filepath.Join(dir, "gcc-13.2.0")
	require.NoError(t, os.MkdirAll(patchDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(patchDir, "0002-b.patch"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(patchDir, "0001-a.patch"), nil, 0o644))

	file := planFor(t, config.Options{Target: "aarch64-linux-gnu", PatchDir: dir})

	extract := findEdge(t, file, step("extract-gcc"))
	var patchCommand string
	for _, v := range extract.Vars {
		if v.Name == "patch_command" {
			patchCommand = v.Value
		}
	}
	slashDir := filepath.ToSlash(patchDir)
	assert.Equal(t, "patch -p 1 -i ../../"+slashDir+"/0001-a.patch -i ../../"+slashDir+"/0002-b.patch", patchCommand)
}

func TestPlan_NoPatchesDisablesPatching(t *testing.T) {
	dir := t.TempDir()
	patchDir := filepath.Join(dir, "gcc-13.2.0")
	require.NoError(t, os.MkdirAll(patchDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(patchDir, "0001-a.patch"), nil, 0o644))

	file := planFor(t, config.Options{Target: "aarch64-linux-gnu", PatchDir: dir, NoPatches: true})

	extract := findEdge(t, file, step("extract-gcc"))
	for _, v := range extract.Vars {
		if v.Name == "patch_command" {
			assert.Equal(t, "true", v.Value)
		}
	}
}

func TestPlan_TarballNaming(t *testing.T) {
	file := planFor(t, config.Options{Target: "x86_64-linux-musl"})

	musl, ok := findVariable(file, "musl_tarball")
	require.True(t, ok)
	assert.Equal(t, "$download_dir/musl-$musl_version.tar.gz", musl)

	mingw := planFor(t, config.Options{Target: "x86_64-w64-mingw32"})
	tarball, ok := findVariable(mingw, "mingw_w64_tarball")
	require.True(t, ok)
	assert.Equal(t, "$download_dir/mingw-w64-$mingw_w64_version.tar.bz2", tarball)

	dir, ok := findVariable(mingw, "mingw_w64_dir")
	require.True(t, ok)
	assert.Equal(t, "$build_dir/mingw-w64-v$mingw_w64_version", dir)
}
