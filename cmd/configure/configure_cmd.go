// Package configure implements the primary subcommand: it resolves the
// toolchain configuration from flags and an optional HCL file, checks
// for the required external tools and writes build.ninja.
package configure

import (
	"github.com/spf13/cobra"

	"github.com/crossforge/buildchain/config"
	"github.com/crossforge/buildchain/generate"
)

var opts = config.DefaultOptions()
var configFile string

// Cmd represents the configure command.
var Cmd = &cobra.Command{
	Use:   "configure",
	Short: "Generate the build description for a binutils and gcc based toolchain",
	Long: `Resolves the toolchain configuration, verifies the external tools the
build needs, and writes a ninja build description that downloads,
patches, configures and installs the toolchain.

Options can also come from an HCL file passed with --config; flags given
on the command line take precedence over values from the file.

Example usage:
  buildchain configure --target x86_64-linux-musl
  buildchain configure --target aarch64-linux-gnu --host x86_64-w64-mingw32
  buildchain configure --config toolchain.hcl
  buildchain configure --config toolchain.hcl --gcc-version 12.3.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, err := resolveOptions(cmd)
		if err != nil {
			return err
		}
		return generate.Run(resolved, cmd.OutOrStdout())
	},
}

// resolveOptions merges the config file (when given) under the flag
// values: the file provides defaults, explicitly set flags win.
func resolveOptions(cmd *cobra.Command) (config.Options, error) {
	if configFile == "" {
		return opts, nil
	}

	merged := config.DefaultOptions()
	merged.Target = opts.Target
	if err := config.LoadFile(configFile, &merged); err != nil {
		return config.Options{}, err
	}
	applyExplicitFlags(cmd, &merged)
	return merged, nil
}

func applyExplicitFlags(cmd *cobra.Command, dst *config.Options) {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}

	set("host", func() { dst.Host = opts.Host })
	set("target", func() { dst.Target = opts.Target })
	set("cc", func() { dst.CC = opts.CC })
	set("cxx", func() { dst.CXX = opts.CXX })
	set("cc-build", func() { dst.CCBuild = opts.CCBuild })
	set("cxx-build", func() { dst.CXXBuild = opts.CXXBuild })
	set("cc-flags", func() { dst.CCFlags = opts.CCFlags })
	set("cxx-flags", func() { dst.CXXFlags = opts.CXXFlags })
	set("ld-flags", func() { dst.LDFlags = opts.LDFlags })
	set("enable-cache", func() { dst.EnableCache = opts.EnableCache })
	set("binutils-flags", func() { dst.ExtraBinutilsFlags = opts.ExtraBinutilsFlags })
	set("gcc-flags", func() { dst.ExtraGCCFlags = opts.ExtraGCCFlags })
	set("gcc-with-isl", func() { dst.WithISL = opts.WithISL })
	set("libc", func() { dst.LibC = opts.LibC })
	set("linux-headers", func() { dst.LinuxHeaders = opts.LinuxHeaders })
	set("no-default-configure", func() { dst.NoDefaultConfigure = opts.NoDefaultConfigure })
	set("no-patches", func() { dst.NoPatches = opts.NoPatches })
	set("patch-dir", func() { dst.PatchDir = opts.PatchDir })
	set("jobs", func() { dst.Jobs = opts.Jobs })

	set("binutils-version", func() { dst.Versions.Binutils = opts.Versions.Binutils })
	set("cygwin-version", func() { dst.Versions.Cygwin = opts.Versions.Cygwin })
	set("gcc-version", func() { dst.Versions.GCC = opts.Versions.GCC })
	set("glibc-version", func() { dst.Versions.Glibc = opts.Versions.Glibc })
	set("gmp-version", func() { dst.Versions.GMP = opts.Versions.GMP })
	set("isl-version", func() { dst.Versions.ISL = opts.Versions.ISL })
	set("linux-version", func() { dst.Versions.Linux = opts.Versions.Linux })
	set("mingw-w64-version", func() { dst.Versions.MingwW64 = opts.Versions.MingwW64 })
	set("mpc-version", func() { dst.Versions.MPC = opts.Versions.MPC })
	set("mpfr-version", func() { dst.Versions.MPFR = opts.Versions.MPFR })
	set("musl-version", func() { dst.Versions.Musl = opts.Versions.Musl })
}

func init() {
	flags := Cmd.Flags()

	flags.StringVar(&configFile, "config", "", "HCL configuration file (flags take precedence)")

	flags.StringVar(&opts.Host, "host", "", "Host triple for the toolchain. Only for cross native or canadian cross toolchains")
	flags.StringVar(&opts.Target, "target", "", "Target triple for the toolchain")

	flags.StringVar(&opts.CC, "cc", opts.CC, "C compiler for host")
	flags.StringVar(&opts.CXX, "cxx", opts.CXX, "C++ compiler for host")
	flags.StringVar(&opts.CCBuild, "cc-build", opts.CCBuild, "C compiler for build")
	flags.StringVar(&opts.CXXBuild, "cxx-build", opts.CXXBuild, "C++ compiler for build")
	flags.StringVar(&opts.CCFlags, "cc-flags", "", "Extra C compiler flags")
	flags.StringVar(&opts.CXXFlags, "cxx-flags", "", "Extra C++ compiler flags")
	flags.StringVar(&opts.LDFlags, "ld-flags", "", "Extra linker flags")
	flags.BoolVar(&opts.EnableCache, "enable-cache", false, "Use ccache or sccache (if available) as compiler wrapper")

	flags.StringVar(&opts.ExtraBinutilsFlags, "binutils-flags", "", "Add extra flags when configuring binutils")
	flags.StringVar(&opts.ExtraGCCFlags, "gcc-flags", "", "Add extra flags when configuring gcc")
	flags.BoolVar(&opts.WithISL, "gcc-with-isl", false, "Build gcc with isl library")
	flags.StringVar(&opts.LibC, "libc", opts.LibC, "Libc implementation for the target toolchain (auto, glibc, msvcrt, musl, newlib-cygwin, ucrt)")
	flags.StringVar(&opts.LinuxHeaders, "linux-headers", opts.LinuxHeaders, "Build and install linux kernel headers (auto, disabled, enabled)")
	flags.BoolVar(&opts.NoDefaultConfigure, "no-default-configure", false, "Do not configure binutils and gcc with default flags")
	flags.BoolVar(&opts.NoPatches, "no-patches", false, "Do not apply patches from patches directory")
	flags.StringVar(&opts.PatchDir, "patch-dir", opts.PatchDir, "Directory holding per-package patch sets")
	flags.IntVar(&opts.Jobs, "jobs", opts.Jobs, "Parallel jobs for the generated make invocations")

	flags.StringVar(&opts.Versions.Binutils, "binutils-version", opts.Versions.Binutils, "Binutils version to build")
	flags.StringVar(&opts.Versions.Cygwin, "cygwin-version", opts.Versions.Cygwin, "Cygwin version to build")
	flags.StringVar(&opts.Versions.GCC, "gcc-version", opts.Versions.GCC, "Gcc version to build")
	flags.StringVar(&opts.Versions.Glibc, "glibc-version", opts.Versions.Glibc, "Glibc version to build")
	flags.StringVar(&opts.Versions.GMP, "gmp-version", opts.Versions.GMP, "Gmp version to build")
	flags.StringVar(&opts.Versions.ISL, "isl-version", opts.Versions.ISL, "Isl version to build")
	flags.StringVar(&opts.Versions.Linux, "linux-version", opts.Versions.Linux, "Linux version to build")
	flags.StringVar(&opts.Versions.MingwW64, "mingw-w64-version", opts.Versions.MingwW64, "Mingw-w64 version to build")
	flags.StringVar(&opts.Versions.MPC, "mpc-version", opts.Versions.MPC, "Mpc version to build")
	flags.StringVar(&opts.Versions.MPFR, "mpfr-version", opts.Versions.MPFR, "Mpfr version to build")
	flags.StringVar(&opts.Versions.Musl, "musl-version", opts.Versions.Musl, "Musl version to build")
}
