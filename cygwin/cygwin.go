// Package cygwin plans the preparation of a Cygwin build environment.
// Building the newlib-cygwin C library requires a working Cygwin
// installation with its documentation toolchain; this planner emits the
// build description that downloads setup.exe and installs the package
// set into a local directory.
package cygwin

import (
	"fmt"
	"strings"

	"github.com/crossforge/buildchain/ninja"
	"github.com/crossforge/buildchain/plan"
)

const (
	newlibCygwinSite = "https://github.com/cygwin/cygwin/archive/refs/tags"
	cygwinSite       = "https://cygwin.com"
	mirrorX86        = "https://mirrors.kernel.org/sourceware/cygwin-archive/20221123"
	mirrorX8664      = "https://mirrors.kernel.org/sourceware/cygwin"
)

// Arch normalizes the architecture of a target triple to the names the
// Cygwin installer uses.
func Arch(target string) string {
	arch, _, _ := strings.Cut(target, "-")
	switch {
	case arch == "x86_64" || arch == "amd64" || arch == "x64":
		return "x86_64"
	case arch == "x86" || (strings.HasPrefix(arch, "i") && strings.HasSuffix(arch, "86")):
		return "x86"
	}
	return arch
}

// packages is the Cygwin package set the newlib-cygwin build needs,
// including the documentation toolchain its configure insists on.
func packages(arch string) []string {
	return []string{
		"autoconf",
		"automake",
		"busybox",
		"cocom",
		"cygutils-extra",
		"dblatex",
		"dejagnu",
		"docbook-xml45",
		"docbook-xsl",
		"docbook2X",
		"gcc-g++",
		"gettext-devel",
		"libiconv",
		"libiconv-devel",
		"libzstd-devel",
		"make",
		fmt.Sprintf("mingw64-%s-gcc-g++", arch),
		fmt.Sprintf("mingw64-%s-zlib", arch),
		"patch",
		"perl",
		"python39-lxml",
		"python39-ply",
		"texlive-collection-fontsrecommended",
		"texlive-collection-latexrecommended",
		"texlive-collection-pictures",
		"xmlto",
		"zlib-devel",
	}
}

// Plan emits the ledger for the Cygwin preparation build description.
// rootDir is the absolute directory the description will run in.
func Plan(target, version, rootDir string) (ninja.File, error) {
	arch := Arch(target)
	tripleArch, _, _ := strings.Cut(target, "-")

	mirror := mirrorX8664
	if arch == "x86" {
		mirror = mirrorX86
	}

	g := plan.NewGraph()

	g.Comment("this file is generated by buildchain configure")
	g.Blank()
	g.Variable("cygwin_mirror_site", mirror)
	g.Blank()

	g.Variable("root_dir", strings.ReplaceAll(rootDir, "\\", "/"))
	g.Variable("download_dir", "downloads")
	g.Variable("cygwin_install_dir", "$download_dir/cygwin")
	g.Blank()

	g.Variable("setup_file", fmt.Sprintf("$download_dir/setup-%s.exe", arch))
	g.Variable("newlib_cygwin_tarball", fmt.Sprintf("$download_dir/cygwin-cygwin-%s.tar.gz", version))
	g.Blank()

	g.Rule("download-file",
		"curl -Lo $out $url",
		"Downloading $url")
	g.Blank()

	g.Build(ninja.Edge{
		Out:  "$setup_file",
		Rule: "download-file",
		Pool: ninja.PoolConsole,
		Vars: []ninja.Variable{{Name: "url", Value: fmt.Sprintf("%s/setup-%s.exe", cygwinSite, arch)}},
	})
	g.Blank()

	g.Build(ninja.Edge{
		Out:  "$newlib_cygwin_tarball",
		Rule: "download-file",
		Pool: ninja.PoolConsole,
		Vars: []ninja.Variable{{Name: "url", Value: fmt.Sprintf("%s/cygwin-%s.tar.gz", newlibCygwinSite, version)}},
	})
	g.Blank()

	installCmd := "$setup_file -qgNnO " +
		"-l $root_dir/$cygwin_install_dir/cache " +
		"-R $root_dir/$cygwin_install_dir " +
		"-s $cygwin_mirror_site " +
		"-P " + strings.Join(packages(tripleArch), ",")
	if arch == "x86" {
		installCmd += " --allow-unsupported-windows"
	}

	g.Rule("install-cygwin", installCmd, "Installing cygwin at $cygwin_install_dir")
	g.Blank()
	g.Build(ninja.Edge{
		Out:      "$cygwin_install_dir",
		Rule:     "install-cygwin",
		Implicit: []string{"$setup_file"},
		Pool:     ninja.PoolConsole,
	})
	g.Blank()

	return g.Finish()
}
