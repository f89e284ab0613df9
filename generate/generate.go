// Package generate drives the full pipeline from options to files on
// disk: resolve the configuration, discover tools, plan the build graph
// and serialize it.
package generate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/crossforge/buildchain/config"
	"github.com/crossforge/buildchain/cygwin"
	"github.com/crossforge/buildchain/plan"
	"github.com/crossforge/buildchain/tools"
)

// Run resolves opts, checks for the external tools the build needs, prints
// the dependency summary and writes build.ninja. Any configuration or
// missing-tool error aborts before a single byte of the build description
// is written.
func Run(opts config.Options, out io.Writer) error {
	cfg, err := opts.Resolve()
	if err != nil {
		return err
	}
	if err := tools.Check(cfg, out); err != nil {
		return err
	}
	cfg.WriteSummary(out)
	return Emit(cfg, out)
}

// Regenerate is Run with the tool-check and summary output suppressed.
// The watch command uses it on every regeneration.
func Regenerate(opts config.Options, out io.Writer) error {
	cfg, err := opts.Resolve()
	if err != nil {
		return err
	}
	if err := tools.Check(cfg, io.Discard); err != nil {
		return err
	}
	return Emit(cfg, out)
}

// Emit plans the graph for a fully resolved configuration and writes
// build.ninja. For Cygwin targets it first ensures the prepared Cygwin
// environment exists, emitting cygwin/build.ninja when it does not.
func Emit(cfg *config.Config, out io.Writer) error {
	if cfg.LibC.IsCygwinNewlib() {
		if err := ensureCygwinPrepared(cfg, out); err != nil {
			return err
		}
	}

	file, err := plan.Plan(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Writing build.ninja")
	return writeFile("build.ninja", file.Encode)
}

func ensureCygwinPrepared(cfg *config.Config, out io.Writer) error {
	tarball := fmt.Sprintf("prepare/cygwin-%s-%s.tar.xz", cfg.Versions.Cygwin, cfg.Target)
	if _, err := os.Stat(tarball); err == nil {
		return nil
	}

	rootDir, err := filepath.Abs("cygwin")
	if err != nil {
		return fmt.Errorf("failed to resolve cygwin directory: %w", err)
	}
	if err := os.MkdirAll("cygwin", 0o755); err != nil {
		return fmt.Errorf("failed to create cygwin directory: %w", err)
	}
	if err := os.MkdirAll("prepare", 0o755); err != nil {
		return fmt.Errorf("failed to create prepare directory: %w", err)
	}

	file, err := cygwin.Plan(cfg.Target, cfg.Versions.Cygwin, rootDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Writing cygwin/build.ninja")
	if err := writeFile(filepath.Join("cygwin", "build.ninja"), file.Encode); err != nil {
		return err
	}

	return fmt.Errorf("cygwin build environment is not prepared: run the build description in cygwin/ and place the result at %s", tarball)
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
