package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclOptionsFile mirrors the flag surface as HCL attributes. Every field is
// optional; absent attributes leave the current option values untouched.
type hclOptionsFile struct {
	Target *string `hcl:"target,optional"`
	Host   *string `hcl:"host,optional"`

	CC       *string `hcl:"cc,optional"`
	CXX      *string `hcl:"cxx,optional"`
	CCBuild  *string `hcl:"cc_build,optional"`
	CXXBuild *string `hcl:"cxx_build,optional"`
	CCFlags  *string `hcl:"cc_flags,optional"`
	CXXFlags *string `hcl:"cxx_flags,optional"`
	LDFlags  *string `hcl:"ld_flags,optional"`

	EnableCache *bool `hcl:"enable_cache,optional"`

	BinutilsFlags      *string `hcl:"binutils_flags,optional"`
	GCCFlags           *string `hcl:"gcc_flags,optional"`
	NoDefaultConfigure *bool   `hcl:"no_default_configure,optional"`
	WithISL            *bool   `hcl:"gcc_with_isl,optional"`
	LibC               *string `hcl:"libc,optional"`
	LinuxHeaders       *string `hcl:"linux_headers,optional"`
	NoPatches          *bool   `hcl:"no_patches,optional"`
	PatchDir           *string `hcl:"patch_dir,optional"`
	Jobs               *int    `hcl:"jobs,optional"`

	Versions *hclVersionsBlock `hcl:"versions,block"`
}

// hclTargetProbe reads the target attribute ahead of the full decode so
// other attributes can reference it as `target` even when no target is
// known from flags yet.
type hclTargetProbe struct {
	Target *string  `hcl:"target,optional"`
	Remain hcl.Body `hcl:",remain"`
}

type hclVersionsBlock struct {
	Binutils *string `hcl:"binutils,optional"`
	Cygwin   *string `hcl:"cygwin,optional"`
	GCC      *string `hcl:"gcc,optional"`
	Glibc    *string `hcl:"glibc,optional"`
	GMP      *string `hcl:"gmp,optional"`
	ISL      *string `hcl:"isl,optional"`
	Linux    *string `hcl:"linux,optional"`
	MingwW64 *string `hcl:"mingw_w64,optional"`
	MPC      *string `hcl:"mpc,optional"`
	MPFR     *string `hcl:"mpfr,optional"`
	Musl     *string `hcl:"musl,optional"`
}

// LoadFile merges an HCL configuration file into opts. Attribute
// expressions may reference the already-known target triple as `target`.
// Explicit command line flags are applied after the file and win over it.
func LoadFile(path string, opts *Options) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"target": cty.StringVal(opts.Target),
		},
	}

	// A target given on the command line wins; otherwise a target declared
	// in the file itself is bound before the full decode, so expressions
	// like "${target}-gcc" work the same in flag-driven and file-only runs.
	var probe hclTargetProbe
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &probe); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}
	if opts.Target == "" && probe.Target != nil {
		evalCtx.Variables["target"] = cty.StringVal(*probe.Target)
	}

	var decoded hclOptionsFile
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &decoded); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	setString(&opts.Target, decoded.Target)
	setString(&opts.Host, decoded.Host)
	setString(&opts.CC, decoded.CC)
	setString(&opts.CXX, decoded.CXX)
	setString(&opts.CCBuild, decoded.CCBuild)
	setString(&opts.CXXBuild, decoded.CXXBuild)
	setString(&opts.CCFlags, decoded.CCFlags)
	setString(&opts.CXXFlags, decoded.CXXFlags)
	setString(&opts.LDFlags, decoded.LDFlags)
	setBool(&opts.EnableCache, decoded.EnableCache)
	setString(&opts.ExtraBinutilsFlags, decoded.BinutilsFlags)
	setString(&opts.ExtraGCCFlags, decoded.GCCFlags)
	setBool(&opts.NoDefaultConfigure, decoded.NoDefaultConfigure)
	setBool(&opts.WithISL, decoded.WithISL)
	setString(&opts.LibC, decoded.LibC)
	setString(&opts.LinuxHeaders, decoded.LinuxHeaders)
	setBool(&opts.NoPatches, decoded.NoPatches)
	setString(&opts.PatchDir, decoded.PatchDir)
	setInt(&opts.Jobs, decoded.Jobs)

	if v := decoded.Versions; v != nil {
		setString(&opts.Versions.Binutils, v.Binutils)
		setString(&opts.Versions.Cygwin, v.Cygwin)
		setString(&opts.Versions.GCC, v.GCC)
		setString(&opts.Versions.Glibc, v.Glibc)
		setString(&opts.Versions.GMP, v.GMP)
		setString(&opts.Versions.ISL, v.ISL)
		setString(&opts.Versions.Linux, v.Linux)
		setString(&opts.Versions.MingwW64, v.MingwW64)
		setString(&opts.Versions.MPC, v.MPC)
		setString(&opts.Versions.MPFR, v.MPFR)
		setString(&opts.Versions.Musl, v.Musl)
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
