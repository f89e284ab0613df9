// Package libc enumerates the supported C library backends and resolves
// which one a toolchain configuration should use.
package libc

import (
	"fmt"
	"strings"
)

// Strategy identifies one C library backend together with the capability
// predicates that distinguish it during planning. The five values below are
// the only valid instances; a Strategy is resolved once from the
// configuration and is read-only afterwards.
type Strategy struct {
	name        string
	mingwFamily bool // needs mingw-w64 headers/crt installed into the sysroot
	cygwin      bool
	versionKey  string
}

var (
	// Glibc targets the GNU C library.
	Glibc = Strategy{name: "glibc", versionKey: "glibc"}

	// Musl targets musl libc.
	Musl = Strategy{name: "musl", versionKey: "musl"}

	// MingwMsvcrt targets Windows with msvcrt as the default C runtime.
	MingwMsvcrt = Strategy{name: "msvcrt", mingwFamily: true, versionKey: "mingw_w64"}

	// MingwUcrt targets Windows with ucrt as the default C runtime.
	MingwUcrt = Strategy{name: "ucrt", mingwFamily: true, versionKey: "mingw_w64"}

	// CygwinNewlib targets Cygwin, which builds newlib and the Cygwin DLL
	// on top of the mingw-w64 headers and runtime.
	CygwinNewlib = Strategy{name: "newlib-cygwin", mingwFamily: true, cygwin: true, versionKey: "cygwin"}
)

// Name returns the canonical package name of the backend, as used in
// download URLs and step names.
func (s Strategy) Name() string { return s.name }

func (s Strategy) String() string { return s.name }

// RequiresMingwW64 reports whether the backend needs the mingw-w64
// headers and C runtime installed before the compiler can be finished.
func (s Strategy) RequiresMingwW64() bool { return s.mingwFamily }

// IsMingwW64 reports whether the backend is one of the plain mingw-w64
// runtimes (msvcrt or ucrt), excluding Cygwin.
func (s Strategy) IsMingwW64() bool { return s.mingwFamily && !s.cygwin }

// IsCygwinNewlib reports whether the backend is the Cygwin/newlib family.
func (s Strategy) IsCygwinNewlib() bool { return s.cygwin }

// VersionKey returns the version-variable key used to look up the source
// version of the backend's package.
func (s Strategy) VersionKey() string { return s.versionKey }

// Resolve maps an explicit libc choice, or the target triple when the
// choice is "auto" or empty, to a Strategy. Auto detection inspects the
// triple for well-known substrings in a fixed priority order; if none
// match there is no silent default and an error is returned.
func Resolve(choice, target string) (Strategy, error) {
	switch choice {
	case "", "auto":
		return detect(target)
	case "cygwin-newlib", "newlib-cygwin":
		return CygwinNewlib, nil
	case "glibc":
		return Glibc, nil
	case "msvcrt":
		return MingwMsvcrt, nil
	case "musl":
		return Musl, nil
	case "ucrt":
		return MingwUcrt, nil
	}
	return Strategy{}, fmt.Errorf("unknown libc implementation %q", choice)
}

func detect(target string) (Strategy, error) {
	switch {
	case strings.Contains(target, "cygwin"):
		return CygwinNewlib, nil
	case strings.Contains(target, "gnu"):
		return Glibc, nil
	case strings.Contains(target, "mingw"):
		return MingwUcrt, nil
	case strings.Contains(target, "musl"):
		return Musl, nil
	}
	return Strategy{}, fmt.Errorf("cannot determine which libc implementation to use for target %q; use --libc to specify it explicitly", target)
}
