// Package config holds the toolchain configuration: the immutable record
// the planner consumes, the user-facing options it is resolved from, and
// the version defaults for every source package.
package config

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/crossforge/buildchain/libc"
)

// ConfigurationError reports ambiguous or contradictory input. It halts
// before any graph is emitted; the user must supply a disambiguating flag.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Versions carries the source version of every package a plan may build.
type Versions struct {
	Binutils string
	Cygwin   string
	GCC      string
	Glibc    string
	GMP      string
	ISL      string
	Linux    string
	MingwW64 string
	MPC      string
	MPFR     string
	Musl     string
}

// DefaultVersions returns the versions a configuration starts from.
func DefaultVersions() Versions {
	return Versions{
		Binutils: "2.40",
		Cygwin:   "3.4.7",
		GCC:      "13.2.0",
		Glibc:    "2.38",
		GMP:      "6.2.1",
		ISL:      "0.26",
		Linux:    "6.1.40",
		MingwW64: "11.0.1",
		MPC:      "1.3.1",
		MPFR:     "4.2.0",
		Musl:     "1.2.4",
	}
}

// LinuxHeaders tri-state selection, resolved against the libc strategy.
const (
	LinuxHeadersAuto     = "auto"
	LinuxHeadersEnabled  = "enabled"
	LinuxHeadersDisabled = "disabled"
)

// Options is the mutable pre-resolution form of a configuration, populated
// from flags and, optionally, an HCL config file. Resolve turns it into a
// Config or fails fast with a ConfigurationError.
type Options struct {
	Target string
	Host   string

	CC       string
	CXX      string
	CCBuild  string
	CXXBuild string
	CCFlags  string
	CXXFlags string
	LDFlags  string

	EnableCache bool

	ExtraBinutilsFlags string
	ExtraGCCFlags      string
	NoDefaultConfigure bool
	WithISL            bool
	LibC               string
	LinuxHeaders       string
	NoPatches          bool

	RootDir  string
	PatchDir string
	Jobs     int

	Versions Versions
}

// DefaultOptions mirrors the defaults of the command line surface.
func DefaultOptions() Options {
	return Options{
		CC:           "$host-gcc",
		CXX:          "$host-g++",
		CCBuild:      "gcc",
		CXXBuild:     "g++",
		LibC:         "auto",
		LinuxHeaders: LinuxHeadersAuto,
		PatchDir:     "patches",
		Jobs:         runtime.NumCPU(),
		Versions:     DefaultVersions(),
	}
}

// Config is the fully resolved, immutable toolchain configuration. Exactly
// one libc strategy is active and no tri-state values remain.
type Config struct {
	Target string
	Host   string

	CC       string
	CXX      string
	CCBuild  string
	CXXBuild string
	CCFlags  string
	CXXFlags string
	LDFlags  string

	EnableCache bool

	ExtraBinutilsFlags []string
	ExtraGCCFlags      []string
	NoDefaultConfigure bool
	WithISL            bool
	LibC               libc.Strategy
	LinuxHeaders       bool
	NoPatches          bool

	RootDir  string
	PatchDir string
	Jobs     int

	// Make is the make-compatible tool selected by tool discovery.
	Make string

	Versions Versions
}

// Resolve validates the options and produces the configuration the planner
// consumes. Contradictory combinations fail with a ConfigurationError
// before any planning happens.
func (o Options) Resolve() (*Config, error) {
	if o.Target == "" {
		return nil, &ConfigurationError{Reason: "a target triple is required"}
	}

	strategy, err := libc.Resolve(o.LibC, o.Target)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	linuxHeaders, err := resolveLinuxHeaders(o.LinuxHeaders, strategy)
	if err != nil {
		return nil, err
	}

	rootDir := o.RootDir
	if rootDir == "" {
		rootDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
	}

	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	patchDir := o.PatchDir
	if patchDir == "" {
		patchDir = "patches"
	}

	return &Config{
		Target:             o.Target,
		Host:               o.Host,
		CC:                 o.CC,
		CXX:                o.CXX,
		CCBuild:            o.CCBuild,
		CXXBuild:           o.CXXBuild,
		CCFlags:            o.CCFlags,
		CXXFlags:           o.CXXFlags,
		LDFlags:            o.LDFlags,
		EnableCache:        o.EnableCache,
		ExtraBinutilsFlags: splitFlags(o.ExtraBinutilsFlags),
		ExtraGCCFlags:      splitFlags(o.ExtraGCCFlags),
		NoDefaultConfigure: o.NoDefaultConfigure,
		WithISL:            o.WithISL,
		LibC:               strategy,
		LinuxHeaders:       linuxHeaders,
		NoPatches:          o.NoPatches,
		RootDir:            rootDir,
		PatchDir:           patchDir,
		Jobs:               jobs,
		Make:               "make",
		Versions:           o.Versions,
	}, nil
}

func resolveLinuxHeaders(choice string, strategy libc.Strategy) (bool, error) {
	switch choice {
	case "", LinuxHeadersAuto, LinuxHeadersEnabled:
		if strategy.IsCygwinNewlib() || strategy.IsMingwW64() {
			return false, nil
		}
		return true, nil
	case LinuxHeadersDisabled:
		if strategy == libc.Glibc {
			return false, &ConfigurationError{Reason: "linux headers cannot be disabled when building glibc"}
		}
		return false, nil
	}
	return false, &ConfigurationError{Reason: fmt.Sprintf("invalid linux-headers value %q", choice)}
}

func splitFlags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

// IsCross reports whether this is a cross-hosted build: a host triple was
// given, so the host compiler pair differs from the build pair.
func (c *Config) IsCross() bool {
	return c.Host != ""
}

// LibCVersion returns the source version of the selected libc package.
func (c *Config) LibCVersion() string {
	switch c.LibC.VersionKey() {
	case "cygwin":
		return c.Versions.Cygwin
	case "glibc":
		return c.Versions.Glibc
	case "mingw_w64":
		return c.Versions.MingwW64
	case "musl":
		return c.Versions.Musl
	}
	return ""
}

// WriteSummary prints the package versions this configuration will build.
func (c *Config) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "\nDependencies:")
	fmt.Fprintf(w, "  binutils %s\n", c.Versions.Binutils)
	fmt.Fprintf(w, "       gcc %s\n", c.Versions.GCC)
	fmt.Fprintf(w, "       gmp %s\n", c.Versions.GMP)

	if c.WithISL {
		fmt.Fprintf(w, "       isl %s\n", c.Versions.ISL)
	}
	if c.LinuxHeaders {
		fmt.Fprintf(w, "     linux %s\n", c.Versions.Linux)
	}

	fmt.Fprintf(w, "       mpc %s\n", c.Versions.MPC)
	fmt.Fprintf(w, "      mpfr %s\n", c.Versions.MPFR)

	switch {
	case c.LibC.IsCygwinNewlib():
		fmt.Fprintf(w, "    cygwin %s\n", c.Versions.Cygwin)
		fmt.Fprintf(w, " mingw-w64 %s\n\n", c.Versions.MingwW64)
	case c.LibC.IsMingwW64():
		fmt.Fprintf(w, " mingw-w64 %s\n\n", c.Versions.MingwW64)
	case c.LibC == libc.Glibc:
		fmt.Fprintf(w, "     glibc %s\n\n", c.Versions.Glibc)
	case c.LibC == libc.Musl:
		fmt.Fprintf(w, "      musl %s\n\n", c.Versions.Musl)
	}
}
