// Package plan turns a resolved toolchain configuration into the build
// graph that bootstraps a cross or native GCC toolchain: which steps
// exist, the command each runs, and the dependency edges between them.
//
// The bootstrap order is subtle. The sysroot must exist before headers
// and libraries populate it, the stage-1 compiler must exist before the
// C library can be configured, and the C library must be installed before
// the compiler can be finished. Every edge emitted here encodes one of
// those constraints; a topological execution of the result always builds
// a consistent toolchain.
package plan

import (
	"fmt"
	"strings"

	"github.com/crossforge/buildchain/config"
	"github.com/crossforge/buildchain/libc"
	"github.com/crossforge/buildchain/ninja"
	"github.com/crossforge/buildchain/patches"
)

// Plan constructs the full step ledger for cfg. It is a pure function of
// its input (plus the contents of the patch directory): planning the same
// configuration twice yields byte-identical ledgers. The ledger is
// verified before being returned; no partial graph ever escapes.
func Plan(cfg *config.Config) (ninja.File, error) {
	p := &planner{cfg: cfg, g: NewGraph()}

	p.variables()
	p.downloadExtract()
	p.binutils()
	p.sysroot()
	p.configureGCC()

	if cfg.LibC.RequiresMingwW64() {
		// The stage-1 compiler needs the target headers in the sysroot
		// before even its restricted all-gcc subset builds, so the
		// mingw-w64 headers come first.
		p.mingwHeaders()
		p.gccAllGCC()
		p.mingwCRT()
		if cfg.LibC.IsMingwW64() {
			p.mingwThreads()
		}
	} else {
		p.gccAllGCC()
		if cfg.LinuxHeaders {
			p.linuxHeaders()
		}
		p.configureLibC()
		p.libcHeaders()
		p.gccTargetLibgcc()
		p.buildLibC()
	}

	p.buildGCC()
	p.cleanTargets()
	p.installTargets()
	p.defaultTargets()

	if p.err != nil {
		return nil, p.err
	}
	file, err := p.g.Finish()
	if err != nil {
		return nil, err
	}
	if err := Verify(file); err != nil {
		return nil, err
	}
	return file, nil
}

type planner struct {
	cfg    *config.Config
	g      *Graph
	stepNo int
	err    error
}

// step returns the ledger name of a build step.
func step(name string) string {
	return "$build_targets_dir/" + name
}

func (p *planner) stageComment(what string) {
	p.stepNo++
	p.g.Comment(fmt.Sprintf("step %d - %s", p.stepNo, what))
	p.g.Blank()
}

// sourcePackage is one archive a plan downloads and extracts. The name
// uses underscores so it can double as a variable-name prefix.
type sourcePackage struct {
	name    string
	version string
}

func (s sourcePackage) dashName() string {
	return strings.ReplaceAll(s.name, "_", "-")
}

// tarCompression returns the extension of the release tarball.
func (s sourcePackage) tarCompression() string {
	switch s.name {
	case "mpc", "musl":
		return "gz"
	case "mingw_w64":
		return "bz2"
	}
	return "xz"
}

// tarFlag returns the tar flag used when extracting the tarball.
func (s sourcePackage) tarFlag() string {
	switch s.name {
	case "mpc", "musl":
		return "x"
	case "mingw_w64":
		return "j"
	}
	return "J"
}

// downloadURL returns the versioned URL of the tarball, in terms of the
// site variables declared by the variables stage.
func (s sourcePackage) downloadURL() string {
	switch s.name {
	case "binutils":
		return "$gnu_site/binutils/binutils-$binutils_version.tar.xz"
	case "gcc":
		return "$gnu_site/gcc/gcc-$gcc_version/gcc-$gcc_version.tar.xz"
	case "gmp":
		return "$gnu_site/gmp/gmp-$gmp_version.tar.xz"
	case "isl":
		return "$isl_site/isl-$isl_version.tar.xz"
	case "linux":
		return "$linux_site/linux-$linux_version.tar.xz"
	case "mpc":
		return "$gnu_site/mpc/mpc-$mpc_version.tar.gz"
	case "mpfr":
		return "$gnu_site/mpfr/mpfr-$mpfr_version.tar.xz"
	case "mingw_w64":
		return "$mingw_w64_site/mingw-w64-v$mingw_w64_version.tar.bz2"
	case "glibc":
		return "$gnu_site/glibc/glibc-$glibc_version.tar.xz"
	case "musl":
		return "$musl_site/releases/musl-$musl_version.tar.gz"
	}
	return ""
}

// sourcePackages lists every archive the configuration needs, in ledger
// order.
func (p *planner) sourcePackages() []sourcePackage {
	cfg := p.cfg
	pkgs := []sourcePackage{
		{"binutils", cfg.Versions.Binutils},
		{"gcc", cfg.Versions.GCC},
		{"gmp", cfg.Versions.GMP},
	}
	if cfg.WithISL {
		pkgs = append(pkgs, sourcePackage{"isl", cfg.Versions.ISL})
	}
	if cfg.LinuxHeaders {
		pkgs = append(pkgs, sourcePackage{"linux", cfg.Versions.Linux})
	}
	pkgs = append(pkgs,
		sourcePackage{"mpc", cfg.Versions.MPC},
		sourcePackage{"mpfr", cfg.Versions.MPFR},
	)
	if cfg.LibC.RequiresMingwW64() {
		pkgs = append(pkgs, sourcePackage{"mingw_w64", cfg.Versions.MingwW64})
	} else {
		pkgs = append(pkgs, sourcePackage{cfg.LibC.Name(), cfg.LibCVersion()})
	}
	return pkgs
}

func (p *planner) variables() {
	cfg := p.cfg
	g := p.g

	g.Comment("this file is generated by buildchain configure")
	g.Blank()
	g.Variable("target", cfg.Target)
	g.Variable("host", cfg.Host)
	g.Blank()

	g.Variable("cc", cfg.CC)
	g.Variable("cxx", cfg.CXX)
	if cfg.IsCross() {
		g.Variable("cc_build", cfg.CCBuild)
		g.Variable("cxx_build", cfg.CXXBuild)
	}
	g.Variable("cc_flags", cfg.CCFlags)
	g.Variable("cxx_flags", cfg.CXXFlags)
	g.Variable("ld_flags", cfg.LDFlags)
	g.Blank()

	g.Variable("binutils_version", cfg.Versions.Binutils)
	g.Variable("gcc_version", cfg.Versions.GCC)
	g.Variable("gmp_version", cfg.Versions.GMP)
	if cfg.WithISL {
		g.Variable("isl_version", cfg.Versions.ISL)
	}
	g.Variable("linux_version", cfg.Versions.Linux)
	g.Variable("mpc_version", cfg.Versions.MPC)
	g.Variable("mpfr_version", cfg.Versions.MPFR)
	if cfg.LibC.RequiresMingwW64() {
		g.Variable("mingw_w64_version", cfg.Versions.MingwW64)
	} else {
		g.Variable(cfg.LibC.Name()+"_version", cfg.LibCVersion())
	}
	g.Blank()

	g.Variable("gnu_site", "https://ftpmirror.gnu.org")
	if cfg.WithISL {
		g.Variable("isl_site", "https://libisl.sourceforge.io")
	}
	g.Variable("linux_site", "https://cdn.kernel.org/pub/linux/kernel/v6.x")
	if cfg.LibC.RequiresMingwW64() {
		g.Variable("mingw_w64_site", "https://sourceforge.net/projects/mingw-w64/files/mingw-w64/mingw-w64-release")
	} else if cfg.LibC == libc.Musl {
		g.Variable("musl_site", "https://www.musl-libc.org")
	}
	g.Blank()

	g.Variable("download_cmd", "curl -L -o")
	g.Variable("make_cmd", fmt.Sprintf("%s -j %d MULTILIB_OSDIRNAMES= ac_cv_prog_lex_root=lex.yy", cfg.Make, cfg.Jobs))
	g.Blank()
	g.Comment("edit below this line carefully")
	g.Blank()

	g.Variable("root_dir", cfg.RootDir)
	g.Variable("build_dir", "build")
	g.Variable("build_sysroot_dir", "$root_dir/$build_dir/sysroot")
	g.Variable("build_targets_dir", "$build_dir/targets")
	g.Variable("download_dir", "downloads")
	g.Variable("install_dir", "$root_dir/toolchain")
	g.Blank()

	envVars := `$env_path CC="$cc" CXX="$cxx" CFLAGS="$cc_flags" CXXFLAGS="$cxx_flags" LDFLAGS="$ld_flags"`
	if cfg.IsCross() {
		envVars += ` CC_FOR_BUILD="$cc_build" CXX_FOR_BUILD="$cxx_build"`
	}
	g.Variable("env_path", `PATH="$install_dir/bin:$$PATH"`)
	g.Variable("env_vars", envVars)
	g.Blank()
}

func (p *planner) downloadExtract() {
	cfg := p.cfg
	g := p.g
	pkgs := p.sourcePackages()

	p.stageComment("download, extract and patch archives")

	for _, pkg := range pkgs {
		g.Variable(pkg.name+"_tarball",
			fmt.Sprintf("$download_dir/%s-$%s_version.tar.%s", pkg.dashName(), pkg.name, pkg.tarCompression()))
	}
	g.Blank()

	for _, pkg := range pkgs {
		if pkg.name == "mingw_w64" {
			g.Variable("mingw_w64_dir", "$build_dir/mingw-w64-v$mingw_w64_version")
		} else {
			g.Variable(pkg.name+"_dir", fmt.Sprintf("$build_dir/%s-$%s_version", pkg.name, pkg.name))
		}
	}
	g.Blank()

	g.Rule("download-tarball",
		"$download_cmd $out $url",
		"Downloading $url")
	g.Blank()
	g.Rule("extract-tar",
		"rm -rf $extracted_dir && tar -C $build_dir -x -$compression -f $in && cd $extracted_dir && $patch_command && touch ../../$out",
		"Extracting $in")
	g.Blank()

	for _, pkg := range pkgs {
		g.Build(ninja.Edge{
			Out:  "$" + pkg.name + "_tarball",
			Rule: "download-tarball",
			Pool: ninja.PoolConsole,
			Vars: []ninja.Variable{{Name: "url", Value: pkg.downloadURL()}},
		})
		g.Blank()
	}

	for _, pkg := range pkgs {
		patchCommand := "patch -p 1"
		if !cfg.NoPatches {
			files, err := patches.Files(cfg.PatchDir, pkg.dashName(), pkg.version)
			if err != nil && p.err == nil {
				p.err = err
			}
			for _, file := range files {
				patchCommand += " -i ../../" + file
			}
		}
		if patchCommand == "patch -p 1" {
			patchCommand = "true"
		}

		g.Build(ninja.Edge{
			Out:    step("extract-" + pkg.name),
			Rule:   "extract-tar",
			Inputs: []string{"$" + pkg.name + "_tarball"},
			Vars: []ninja.Variable{
				{Name: "compression", Value: pkg.tarFlag()},
				{Name: "extracted_dir", Value: "$" + pkg.name + "_dir"},
				{Name: "patch_command", Value: patchCommand},
			},
		})
		g.Blank()
	}
}

func (p *planner) binutils() {
	g := p.g

	p.stageComment("build binutils")
	g.Variable("binutils_build_dir", "$build_dir/binutils-build")
	g.Blank()

	g.Rule("configure-binutils",
		fmt.Sprintf("rm -rf $binutils_build_dir && mkdir $binutils_build_dir && cd $binutils_build_dir && $env_vars ../binutils-$binutils_version/configure %s && touch ../../$out",
			strings.Join(binutilsFlags(p.cfg), " ")),
		"Configuring binutils $binutils_version")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("configure-binutils"),
		Rule:     "configure-binutils",
		Implicit: []string{step("extract-binutils")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("build-binutils",
		`cd $binutils_build_dir && $env_vars $make_cmd MAKE="$make_cmd" && touch ../../$out`,
		"Building binutils $binutils_version")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-binutils"),
		Rule:     "build-binutils",
		Implicit: []string{step("configure-binutils")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-binutils",
		`cd $binutils_build_dir && $env_vars $make_cmd install MAKE="$make_cmd" DESTDIR=$install_dir && touch ../../$out`,
		"Installing binutils $binutils_version")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-binutils"),
		Rule:     "install-binutils",
		Implicit: []string{step("build-binutils")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) sysroot() {
	g := p.g

	p.stageComment("create build sysroot dir")

	// The sysroot is rebuilt from scratch every time it runs so it is
	// always a faithful image of the current configuration. The symlink
	// farm collapses every lib/include spelling onto one directory.
	g.Rule("build-sysroot",
		"rm -rf $build_sysroot_dir && "+
			"mkdir -p $build_sysroot_dir/usr/include $build_sysroot_dir/usr/lib $build_sysroot_dir/mingw && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/usr/lib32 && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/usr/lib64 && "+
			"ln -sf $build_sysroot_dir/usr/include $build_sysroot_dir/include && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/lib && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/lib32 && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/lib64 && "+
			"ln -sf $build_sysroot_dir/usr/include $build_sysroot_dir/mingw/include && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/mingw/lib && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/mingw/lib32 && "+
			"ln -sf $build_sysroot_dir/usr/lib $build_sysroot_dir/mingw/lib64 && "+
			"touch $out",
		"Creating build sysroot dir at $build_sysroot_dir")
	g.Blank()
	g.Build(ninja.Edge{
		Out:  step("build-sysroot"),
		Rule: "build-sysroot",
	})
	g.Blank()
}

func (p *planner) linuxHeaders() {
	g := p.g

	p.stageComment("install linux-headers")

	g.Variable("arch", KernelArch(p.cfg.Target))
	g.Variable("linux_build_dir", "$build_dir/linux-build")
	g.Blank()

	g.Rule("build-linux-headers",
		"cd $linux_dir && $env_vars $make_cmd ARCH=$arch mrproper && touch ../../$out",
		"Building linux $linux_version (headers)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-linux-headers"),
		Rule:     "build-linux-headers",
		Implicit: []string{step("extract-linux")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-linux-headers-sysroot",
		"rm -rf $linux_build_dir && mkdir $linux_build_dir && cd $linux_dir && $env_vars $make_cmd O=$root_dir/$linux_build_dir ARCH=$arch INSTALL_HDR_PATH=$build_sysroot_dir/usr headers_install && touch ../../$out",
		"Installing linux $linux_version (headers) at $build_sysroot_dir/usr")
	g.Blank()
	g.Build(ninja.Edge{
		Out:  step("install-linux-headers-sysroot"),
		Rule: "install-linux-headers-sysroot",
		Implicit: []string{
			step("build-linux-headers"),
			step("build-sysroot"),
		},
		Pool: ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-linux-headers",
		"rm -rf $linux_build_dir && mkdir $linux_build_dir && cd $linux_dir && $env_vars $make_cmd O=$root_dir/$linux_build_dir ARCH=$arch INSTALL_HDR_PATH=$install_dir/$target headers_install && touch ../../$out",
		"Installing linux $linux_version (headers)")
	g.Blank()
	// Both header installs reset $linux_build_dir, so they must never be
	// parallel-eligible siblings.
	g.Build(ninja.Edge{
		Out:  step("install-linux-headers"),
		Rule: "install-linux-headers",
		Implicit: []string{
			step("build-linux-headers"),
			step("install-linux-headers-sysroot"),
		},
		Pool: ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) configureGCC() {
	cfg := p.cfg
	g := p.g

	p.stageComment("configure gcc")
	g.Variable("gcc_build_dir", "$build_dir/gcc-build")
	g.Blank()

	g.Rule("move-directory",
		"rm -rf $dst_dir && mv $src_dir $dst_dir && touch $out",
		"Moving $src_dir -> $dst_dir")
	g.Blank()

	// gmp/mpfr/mpc (and isl) build in-tree inside the gcc source.
	moveTargets := []string{"gmp"}
	if cfg.WithISL {
		moveTargets = append(moveTargets, "isl")
	}
	moveTargets = append(moveTargets, "mpc", "mpfr")

	moveSteps := make([]string, 0, len(moveTargets))
	for _, name := range moveTargets {
		g.Build(ninja.Edge{
			Out:      step("move-" + name),
			Rule:     "move-directory",
			Implicit: []string{step("extract-" + name)},
			Vars: []ninja.Variable{
				{Name: "src_dir", Value: "$" + name + "_dir"},
				{Name: "dst_dir", Value: "$gcc_dir/" + name},
			},
		})
		g.Blank()
		moveSteps = append(moveSteps, step("move-"+name))
	}

	g.Rule("configure-gcc",
		fmt.Sprintf("rm -rf $gcc_build_dir && mkdir $gcc_build_dir && cd $gcc_build_dir && $env_vars ../gcc-$gcc_version/configure %s && touch ../../$out",
			strings.Join(gccFlags(cfg), " ")),
		"Configuring gcc $gcc_version")
	g.Blank()

	deps := []string{step("extract-gcc")}
	deps = append(deps, moveSteps...)
	deps = append(deps, step("install-binutils"), step("build-sysroot"))

	g.Build(ninja.Edge{
		Out:      step("configure-gcc"),
		Rule:     "configure-gcc",
		Implicit: deps,
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) gccAllGCC() {
	g := p.g

	p.stageComment("build gcc (all-gcc)")

	deps := []string{step("configure-gcc")}
	if p.cfg.LibC.RequiresMingwW64() {
		// The compiler driver needs the target headers before its
		// restricted stage-1 subset builds.
		deps = append(deps, step("install-mingw-w64-headers-sysroot"))
	}

	g.Rule("build-gcc-all-gcc",
		`cd $gcc_build_dir && $env_vars $make_cmd all-gcc MAKE="$make_cmd" && touch ../../$out`,
		"Building gcc $gcc_version (all-gcc)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-gcc-all-gcc"),
		Rule:     "build-gcc-all-gcc",
		Implicit: deps,
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-gcc-all-gcc",
		`cd $gcc_build_dir && $env_vars $make_cmd install-gcc DESTDIR=$install_dir MAKE="$make_cmd" && touch ../../$out`,
		"Installing gcc $gcc_version (all-gcc)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-gcc-all-gcc"),
		Rule:     "install-gcc-all-gcc",
		Implicit: []string{step("build-gcc-all-gcc")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

// stage1CC is the compiler invocation the middle stages build against: the
// freshly installed stage-1 driver pointed at the build sysroot.
const stage1CC = `CC="${target}-gcc --sysroot=$build_sysroot_dir"`

func (p *planner) mingwHeaders() {
	g := p.g

	p.stageComment("mingw-w64-headers")
	g.Variable("mingw_w64_headers_build_dir", "$build_dir/mingw-w64-headers-build")
	g.Blank()

	g.Rule("configure-mingw-w64-headers",
		fmt.Sprintf("rm -rf $mingw_w64_headers_build_dir && "+
			"mkdir $mingw_w64_headers_build_dir && "+
			"cd $mingw_w64_headers_build_dir && "+
			"$env_vars ../mingw-w64-v$mingw_w64_version/mingw-w64-headers/configure %s && "+
			"touch ../../$out",
			strings.Join(mingwHeadersFlags(p.cfg), " ")),
		"Configuring mingw-w64 $mingw_w64_version (headers)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("configure-mingw-w64-headers"),
		Rule:     "configure-mingw-w64-headers",
		Implicit: []string{step("extract-mingw_w64")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-mingw-w64-headers-sysroot",
		"cd $mingw_w64_headers_build_dir && "+
			"$env_vars $make_cmd install DESTDIR=$build_sysroot_dir/usr && "+
			"touch ../../$out",
		"Installing mingw-w64 $mingw_w64_version (headers) at $build_sysroot_dir/usr")
	g.Blank()
	g.Build(ninja.Edge{
		Out:  step("install-mingw-w64-headers-sysroot"),
		Rule: "install-mingw-w64-headers-sysroot",
		Implicit: []string{
			step("configure-mingw-w64-headers"),
			step("build-sysroot"),
		},
		Pool: ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-mingw-w64-headers",
		"cd $mingw_w64_headers_build_dir && "+
			"$env_vars $make_cmd install DESTDIR=$install_dir/$target && "+
			"touch ../../$out",
		"Installing mingw-w64 $mingw_w64_version (headers)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-mingw-w64-headers"),
		Rule:     "install-mingw-w64-headers",
		Implicit: []string{step("configure-mingw-w64-headers")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) mingwCRT() {
	g := p.g

	p.stageComment("mingw-w64-crt")
	g.Variable("mingw_w64_crt_build_dir", "$build_dir/mingw-w64-crt-build")
	g.Blank()

	g.Rule("configure-mingw-w64-crt",
		fmt.Sprintf("rm -rf $mingw_w64_crt_build_dir && "+
			"mkdir $mingw_w64_crt_build_dir && "+
			"cd $mingw_w64_crt_build_dir && "+
			"$env_path %s ../mingw-w64-v$mingw_w64_version/mingw-w64-crt/configure %s && "+
			"touch ../../$out",
			stage1CC, strings.Join(mingwCRTFlags(p.cfg), " ")),
		"Configuring mingw-w64 $mingw_w64_version (crt)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:  step("configure-mingw-w64-crt"),
		Rule: "configure-mingw-w64-crt",
		Implicit: []string{
			step("install-gcc-all-gcc"),
			step("install-mingw-w64-headers-sysroot"),
		},
		Pool: ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("build-mingw-w64-crt",
		fmt.Sprintf(`cd $mingw_w64_crt_build_dir && $env_path %s $make_cmd MAKE="$make_cmd" && touch ../../$out`, stage1CC),
		"Building mingw-w64 $mingw_w64_version (crt)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-mingw-w64-crt"),
		Rule:     "build-mingw-w64-crt",
		Implicit: []string{step("configure-mingw-w64-crt")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-mingw-w64-crt-sysroot",
		fmt.Sprintf(`cd $mingw_w64_crt_build_dir && $env_path %s $make_cmd install DESTDIR=$build_sysroot_dir/usr MAKE="$make_cmd" && touch ../../$out`, stage1CC),
		"Installing mingw-w64 $mingw_w64_version (crt) at $build_sysroot_dir/usr")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-mingw-w64-crt-sysroot"),
		Rule:     "install-mingw-w64-crt-sysroot",
		Implicit: []string{step("build-mingw-w64-crt")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-mingw-w64-crt",
		fmt.Sprintf(`cd $mingw_w64_crt_build_dir && $env_path %s $make_cmd install DESTDIR=$install_dir/$target MAKE="$make_cmd" && touch ../../$out`, stage1CC),
		"Installing mingw-w64 $mingw_w64_version (crt)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-mingw-w64-crt"),
		Rule:     "install-mingw-w64-crt",
		Implicit: []string{step("build-mingw-w64-crt")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) mingwThreads() {
	g := p.g

	p.stageComment("mingw-w64-threads")
	g.Variable("mingw_w64_threads_build_dir", "$build_dir/mingw-w64-threads-build")
	g.Blank()

	flags := []string{
		"--prefix=",
		"--host=$target",
		"--with-sysroot=$build_sysroot_dir",
	}

	g.Rule("configure-mingw-w64-threads",
		fmt.Sprintf("rm -rf $mingw_w64_threads_build_dir && "+
			"mkdir $mingw_w64_threads_build_dir && "+
			"cd $mingw_w64_threads_build_dir && "+
			"$env_path %s ../mingw-w64-v$mingw_w64_version/mingw-w64-libraries/winpthreads/configure %s && "+
			"touch ../../$out",
			stage1CC, strings.Join(flags, " ")),
		"Configuring mingw-w64 $mingw_w64_version (winpthreads)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("configure-mingw-w64-threads"),
		Rule:     "configure-mingw-w64-threads",
		Implicit: []string{step("install-mingw-w64-crt-sysroot")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("build-mingw-w64-threads",
		fmt.Sprintf(`cd $mingw_w64_threads_build_dir && $env_path %s $make_cmd MAKE="$make_cmd" RC="${target}-windres -I$build_sysroot_dir/usr/include" && touch ../../$out`, stage1CC),
		"Building mingw-w64 $mingw_w64_version (winpthreads)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-mingw-w64-threads"),
		Rule:     "build-mingw-w64-threads",
		Implicit: []string{step("configure-mingw-w64-threads")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-mingw-w64-threads-sysroot",
		fmt.Sprintf(`cd $mingw_w64_threads_build_dir && $env_path %s $make_cmd install DESTDIR=$build_sysroot_dir/usr MAKE="$make_cmd" && touch ../../$out`, stage1CC),
		"Installing mingw-w64 $mingw_w64_version (winpthreads) at $build_sysroot_dir/usr")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-mingw-w64-threads-sysroot"),
		Rule:     "install-mingw-w64-threads-sysroot",
		Implicit: []string{step("build-mingw-w64-threads")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-mingw-w64-threads",
		fmt.Sprintf(`cd $mingw_w64_threads_build_dir && $env_path %s $make_cmd install DESTDIR=$install_dir/$target MAKE="$make_cmd" && touch ../../$out`, stage1CC),
		"Installing mingw-w64 $mingw_w64_version (winpthreads)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-mingw-w64-threads"),
		Rule:     "install-mingw-w64-threads",
		Implicit: []string{step("build-mingw-w64-threads")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) configureLibC() {
	cfg := p.cfg
	g := p.g
	name := cfg.LibC.Name()

	p.stageComment("configure " + name)
	g.Variable(name+"_build_dir", fmt.Sprintf("$build_dir/%s-build", name))
	g.Blank()

	deps := []string{
		step("extract-" + name),
		step("install-gcc-all-gcc"),
	}
	envVars := []string{
		"CROSS_COMPILE=${target}-",
		stage1CC,
	}
	flags := []string{
		"--prefix=",
		"--host=$target",
	}

	switch cfg.LibC {
	case libc.Glibc:
		flags = append(flags,
			"--disable-multilib",
			"--disable-werror",
			"--with-headers=$build_sysroot_dir/usr/include",
		)
		deps = append(deps, step("install-linux-headers-sysroot"))
	case libc.Musl:
		// musl links its shared library against the in-tree libgcc
		// archive instead of a full compiler runtime.
		envVars = append(envVars, `LIBCC="$root_dir/$gcc_build_dir/$target/libgcc/libgcc.a"`)
		if cfg.LinuxHeaders {
			deps = append(deps, step("install-linux-headers-sysroot"))
		}
	}

	g.Rule("configure-"+name,
		fmt.Sprintf("rm -rf $%[1]s_build_dir && mkdir $%[1]s_build_dir && cd $%[1]s_build_dir && $env_path %[2]s ../%[1]s-$%[1]s_version/configure %[3]s && touch ../../$out",
			name, strings.Join(envVars, " "), strings.Join(flags, " ")),
		fmt.Sprintf("Configuring %[1]s $%[1]s_version", name))
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("configure-" + name),
		Rule:     "configure-" + name,
		Implicit: deps,
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) libcHeaders() {
	g := p.g
	name := p.cfg.LibC.Name()

	p.stageComment(fmt.Sprintf("install %s (headers)", name))

	g.Rule("install-"+name+"-headers-sysroot",
		fmt.Sprintf("cd $%[1]s_build_dir && $env_path $make_cmd install-headers DESTDIR=$build_sysroot_dir/usr && touch ../../$out", name),
		fmt.Sprintf("Installing %[1]s $%[1]s_version (headers) at $build_sysroot_dir/usr", name))
	g.Blank()
	g.Build(ninja.Edge{
		Out:  step("install-" + name + "-headers-sysroot"),
		Rule: "install-" + name + "-headers-sysroot",
		Implicit: []string{
			step("configure-" + name),
			step("build-sysroot"),
		},
		Pool: ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) gccTargetLibgcc() {
	cfg := p.cfg
	g := p.g
	name := cfg.LibC.Name()

	p.stageComment("build gcc (all-target-libgcc)")

	deps := []string{step("install-" + name + "-headers-sysroot")}
	subMake := `MAKE="$make_cmd"`

	switch cfg.LibC {
	case libc.Glibc:
		// glibc needs its C startup objects, a dummy libc.so and an empty
		// stubs header in the sysroot before libgcc's configure checks
		// pass; the real libc does not exist yet.
		g.Rule("build-glibc-csu",
			"cd $glibc_build_dir && $env_path $make_cmd csu/subdir_lib && touch ../../$out",
			"Building glibc $glibc_version (csu)")
		g.Blank()
		g.Build(ninja.Edge{
			Out:      step("build-glibc-csu"),
			Rule:     "build-glibc-csu",
			Implicit: []string{step("install-glibc-headers-sysroot")},
			Pool:     ninja.PoolConsole,
		})
		g.Blank()

		g.Rule("install-glibc-csu-sysroot",
			"install $glibc_build_dir/csu/crti.o $glibc_build_dir/csu/crtn.o $build_sysroot_dir/usr/lib && $env_path ${target}-gcc -nostdlib -nostartfiles -shared -x c /dev/null -o $build_sysroot_dir/usr/lib/libc.so && touch $build_sysroot_dir/usr/include/gnu/stubs.h && touch $out",
			"Installing glibc $glibc_version (csu) at $build_sysroot_dir/usr")
		g.Blank()
		g.Build(ninja.Edge{
			Out:      step("install-glibc-csu-sysroot"),
			Rule:     "install-glibc-csu-sysroot",
			Implicit: []string{step("build-glibc-csu")},
			Pool:     ninja.PoolConsole,
		})
		g.Blank()

		deps = append(deps, step("install-glibc-csu-sysroot"))

	case libc.Musl:
		subMake = `MAKE="$make_cmd enable_shared=no"`
	}

	g.Rule("build-gcc-all-target-libgcc",
		fmt.Sprintf("cd $gcc_build_dir && $env_vars $make_cmd all-target-libgcc %s && touch ../../$out", subMake),
		"Building gcc $gcc_version (all-target-libgcc)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-gcc-all-target-libgcc"),
		Rule:     "build-gcc-all-target-libgcc",
		Implicit: deps,
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-gcc-all-target-libgcc",
		fmt.Sprintf("cd $gcc_build_dir && $env_vars $make_cmd install-target-libgcc DESTDIR=$install_dir %s && touch ../../$out", subMake),
		"Installing gcc $gcc_version (all-target-libgcc)")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-gcc-all-target-libgcc"),
		Rule:     "install-gcc-all-target-libgcc",
		Implicit: []string{step("build-gcc-all-target-libgcc")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) buildLibC() {
	cfg := p.cfg
	g := p.g
	name := cfg.LibC.Name()

	p.stageComment("build " + name)

	var deps []string
	switch cfg.LibC {
	case libc.Glibc:
		deps = append(deps, step("install-gcc-all-target-libgcc"))
	case libc.Musl:
		deps = append(deps, step("build-gcc-all-target-libgcc"))
	}

	g.Rule("build-"+name,
		fmt.Sprintf(`cd $%s_build_dir && $env_path $make_cmd MAKE="$make_cmd" && touch ../../$out`, name),
		fmt.Sprintf("Building %[1]s $%[1]s_version", name))
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-" + name),
		Rule:     "build-" + name,
		Implicit: deps,
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-"+name+"-sysroot",
		fmt.Sprintf(`cd $%s_build_dir && $env_path $make_cmd install DESTDIR=$build_sysroot_dir/usr MAKE="$make_cmd" && touch ../../$out`, name),
		fmt.Sprintf("Installing %[1]s $%[1]s_version at $build_sysroot_dir", name))
	g.Blank()
	g.Build(ninja.Edge{
		Out:  step("install-" + name + "-sysroot"),
		Rule: "install-" + name + "-sysroot",
		Implicit: []string{
			step("build-" + name),
			step("build-sysroot"),
		},
		Pool: ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-"+name,
		fmt.Sprintf(`cd $%s_build_dir && $env_path $make_cmd install DESTDIR=$install_dir/$target MAKE="$make_cmd" && touch ../../$out`, name),
		fmt.Sprintf("Installing %[1]s $%[1]s_version", name))
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-" + name),
		Rule:     "install-" + name,
		Implicit: []string{step("build-" + name)},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) buildGCC() {
	cfg := p.cfg
	g := p.g

	p.stageComment("build gcc")

	var deps []string
	if cfg.LibC.RequiresMingwW64() {
		deps = append(deps, step("install-mingw-w64-crt-sysroot"))
		if cfg.LibC.IsMingwW64() {
			deps = append(deps, step("install-mingw-w64-threads-sysroot"))
		}
	} else {
		deps = append(deps, step("install-"+cfg.LibC.Name()+"-sysroot"))
	}

	g.Rule("build-gcc",
		`cd $gcc_build_dir && $env_vars $make_cmd MAKE="$make_cmd" && touch ../../$out`,
		"Building gcc $gcc_version")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("build-gcc"),
		Rule:     "build-gcc",
		Implicit: deps,
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	g.Rule("install-gcc",
		`cd $gcc_build_dir && $env_vars $make_cmd install MAKE="$make_cmd" DESTDIR=$install_dir && touch ../../$out`,
		"Installing gcc $gcc_version")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      step("install-gcc"),
		Rule:     "install-gcc",
		Implicit: []string{step("build-gcc")},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()
}

func (p *planner) cleanTargets() {
	g := p.g

	g.Comment("clean targets")
	g.Blank()

	g.Rule("delete-directory",
		"rm -rf $in",
		"Deleting $in")
	g.Blank()

	g.Rule("clean-all", "true", "Cleaned everything")
	g.Blank()

	g.Build(ninja.Edge{
		Out:    "clean-build",
		Rule:   "delete-directory",
		Inputs: []string{"$build_dir"},
	})
	g.Build(ninja.Edge{
		Out:    "clean-downloads",
		Rule:   "delete-directory",
		Inputs: []string{"$download_dir"},
	})
	g.Build(ninja.Edge{
		Out:    "clean-toolchain",
		Rule:   "delete-directory",
		Inputs: []string{"$install_dir"},
	})
	g.Build(ninja.Edge{
		Out:      "clean",
		Rule:     "clean-all",
		Implicit: []string{"clean-build", "clean-downloads", "clean-toolchain"},
	})
	g.Blank()
}

func (p *planner) installTargets() {
	cfg := p.cfg
	g := p.g

	g.Comment("install targets")
	g.Blank()

	g.Rule("install-all", "true", "Installed toolchain at $install_dir")
	g.Blank()

	installSteps := []string{
		step("install-binutils"),
		step("install-gcc"),
	}

	if cfg.LibC.RequiresMingwW64() {
		installSteps = append(installSteps,
			step("install-mingw-w64-headers"),
			step("install-mingw-w64-crt"),
		)
		if cfg.LibC.IsMingwW64() {
			installSteps = append(installSteps, step("install-mingw-w64-threads"))
		}
	} else {
		if cfg.LinuxHeaders {
			installSteps = append(installSteps, step("install-linux-headers"))
		}
		installSteps = append(installSteps, step("install-"+cfg.LibC.Name()))
	}

	g.Build(ninja.Edge{
		Out:      "install",
		Rule:     "install-all",
		Implicit: installSteps,
	})
	g.Blank()
}

func (p *planner) defaultTargets() {
	g := p.g

	g.Comment("default targets")
	g.Blank()

	targets := []string{step("build-gcc")}
	if p.cfg.LinuxHeaders {
		targets = append(targets, step("build-linux-headers"))
	}

	g.Default(targets...)
	g.Blank()
}
