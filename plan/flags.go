package plan

import (
	"strings"

	"github.com/crossforge/buildchain/config"
	"github.com/crossforge/buildchain/libc"
)

// conditionalFlag pairs a configure flag with the condition under which it
// applies. Flag lists are collected declaratively and folded once, so the
// order of flags is fixed by the table rather than by scattered appends.
type conditionalFlag struct {
	flag string
	when bool
}

func foldFlags(flags []conditionalFlag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.when {
			out = append(out, f.flag)
		}
	}
	return out
}

// binutilsFlags returns the configure flags for binutils.
func binutilsFlags(cfg *config.Config) []string {
	defaults := !cfg.NoDefaultConfigure
	musl := cfg.LibC == libc.Musl

	out := foldFlags([]conditionalFlag{
		{"--disable-multilib", true},
		{"--disable-werror", true},
		{"--libdir=/lib", true},
		{"--prefix=", true},
		{"--target=$target", true},
		{"--with-sysroot=/$target", true},
		{"--host=$host", cfg.IsCross()},
		{"--disable-separate-code", defaults && musl},
		{"--enable-deterministic-archives", defaults && musl},
	})
	return append(out, cfg.ExtraBinutilsFlags...)
}

// gccFlags returns the configure flags for gcc, including the per-triple
// ABI selections.
func gccFlags(cfg *config.Config) []string {
	defaults := !cfg.NoDefaultConfigure
	target := cfg.Target
	arch := archOf(target)
	mingwFamily := cfg.LibC.RequiresMingwW64()
	musl := cfg.LibC == libc.Musl

	mips64 := strings.Contains(target, "mips64") || strings.Contains(target, "mipsisa64")

	out := foldFlags([]conditionalFlag{
		{"--disable-bootstrap", true},
		// musl has no sanitizer runtime support.
		{"--disable-libsanitizer", true},
		{"--disable-multilib", true},
		{"--disable-werror", true},
		{"--enable-languages=c,c++", true},
		{"--libdir=/lib", true},
		{"--prefix=", true},
		{"--target=$target", true},
		{"--with-build-sysroot=$build_sysroot_dir", true},
		{"--with-sysroot=/$target", true},
		{"--host=$host", cfg.IsCross()},

		{"--enable-threads=posix", defaults && mingwFamily},
		// 32-bit Windows needs dwarf2 exceptions instead of sjlj.
		{"--disable-sjlj-exceptions", defaults && mingwFamily && isX86(arch)},
		{"--with-dwarf2", defaults && mingwFamily && isX86(arch)},

		{"--disable-assembly", defaults && musl},
		{"--disable-gnu-indirect-function", defaults && musl},
		{"--disable-libmpx", defaults && musl},
		{"--disable-libmudflap", defaults && musl},
		{"--enable-initfini-array", defaults && musl},
		{"--enable-libstdcxx-time=rt", defaults && musl},
		{"--enable-tls", defaults && musl},

		{"--enable-fdpic", defaults && strings.Contains(target, "fdpic")},
		{"--with-abi=x32", defaults && strings.HasPrefix(target, "x86_64") && strings.HasSuffix(target, "x32")},
		{"--with-abi=elfv2", defaults && strings.Contains(target, "powerpc64")},
		{"--with-abi=n32", defaults && mips64 && strings.Contains(target, "n32")},
		{"--with-abi=64", defaults && mips64 && !strings.Contains(target, "n32")},
		{"--with-long-double-128", defaults && strings.Contains(target, "s390x")},
		{"--with-float=soft", defaults && strings.HasSuffix(target, "sf")},
		{"--with-float=hard", defaults && !strings.HasSuffix(target, "sf") && strings.HasSuffix(target, "hf")},
	})
	return append(out, cfg.ExtraGCCFlags...)
}

// mingwHeadersFlags returns the configure flags for the mingw-w64 headers
// tree: the msvcrt selection and, for Cygwin, the w32api layer.
func mingwHeadersFlags(cfg *config.Config) []string {
	return foldFlags([]conditionalFlag{
		{"--prefix=", true},
		{"--host=$target", true},
		{"--enable-w32api", cfg.LibC.IsCygwinNewlib()},
		{"--with-default-msvcrt=ucrt", cfg.LibC.IsCygwinNewlib()},
		{"--with-default-msvcrt=" + cfg.LibC.Name(), cfg.LibC.IsMingwW64()},
	})
}

// mingwCRTFlags returns the configure flags for the mingw-w64 C runtime,
// including the lib32/lib64 selection for the target architecture.
func mingwCRTFlags(cfg *config.Config) []string {
	arch := archOf(cfg.Target)
	return foldFlags([]conditionalFlag{
		{"--prefix=", true},
		{"--host=$target", true},
		{"--with-sysroot=$build_sysroot_dir", true},
		{"--enable-w32api", cfg.LibC.IsCygwinNewlib()},
		{"--with-default-msvcrt=ucrt", cfg.LibC.IsCygwinNewlib()},
		{"--with-default-msvcrt=" + cfg.LibC.Name(), cfg.LibC.IsMingwW64()},
		{"--enable-lib64", arch == "x86_64"},
		{"--disable-lib32", arch == "x86_64"},
		{"--enable-lib32", isX86(arch)},
		{"--disable-lib64", isX86(arch)},
	})
}
