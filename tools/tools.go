// Package tools verifies that every external program a build needs is
// present before any graph is emitted, and finalizes the compiler
// commands (host substitution, cache wrapper, make flavor) the plan
// will reference.
package tools

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/crossforge/buildchain/config"
)

// MissingToolsError lists every required tool that could not be found.
// All of them are reported together so the user fixes their PATH once,
// not one failure at a time.
type MissingToolsError struct {
	Missing []string
}

func (e *MissingToolsError) Error() string {
	return "required tools not found: " + strings.Join(e.Missing, ", ")
}

// lookPath is swapped out by tests.
var lookPath = exec.LookPath

func exists(w io.Writer, cmd, msg string) bool {
	path, err := lookPath(cmd)
	if err != nil {
		fmt.Fprintf(w, "%s: %s (doesn't exist)\n", msg, cmd)
		return false
	}
	fmt.Fprintf(w, "%s: %s (%s)\n", msg, cmd, path)
	return true
}

// Check confirms the presence of the build/host compiler pair, a
// make-compatible tool, curl, patch and tar, and selects a compiler cache
// wrapper when requested. It finalizes cfg's compiler commands and make
// flavor in place. Progress is written to w; a MissingToolsError is
// returned once every check has run.
func Check(cfg *config.Config, w io.Writer) error {
	var missing []string

	if !exists(w, cfg.CCBuild, "Checking for build C compiler") {
		missing = append(missing, cfg.CCBuild)
	}
	if !exists(w, cfg.CXXBuild, "Checking for build C++ compiler") {
		missing = append(missing, cfg.CXXBuild)
	}

	if cfg.IsCross() {
		cfg.CC = strings.TrimLeft(strings.ReplaceAll(cfg.CC, "$host", cfg.Host), "-")
		cfg.CXX = strings.TrimLeft(strings.ReplaceAll(cfg.CXX, "$host", cfg.Host), "-")

		if !exists(w, cfg.CC, "Checking for host C compiler") {
			missing = append(missing, cfg.CC)
		}
		if !exists(w, cfg.CXX, "Checking for host C++ compiler") {
			missing = append(missing, cfg.CXX)
		}
	} else {
		cfg.CC = cfg.CCBuild
		cfg.CXX = cfg.CXXBuild
	}

	if cfg.EnableCache {
		wrapper := ""
		if exists(w, "ccache", "Checking for tool ccache") {
			wrapper = "ccache"
		} else if exists(w, "sccache", "Checking for tool sccache") {
			wrapper = "sccache"
		}
		if wrapper != "" {
			fmt.Fprintf(w, "Using %s as compiler wrapper\n", wrapper)
			cfg.CC = wrapper + " " + cfg.CC
			cfg.CXX = wrapper + " " + cfg.CXX
			cfg.CCBuild = wrapper + " " + cfg.CCBuild
			cfg.CXXBuild = wrapper + " " + cfg.CXXBuild
		}
	}

	switch {
	case exists(w, "make", "Checking for tool make"):
		cfg.Make = "make"
	case exists(w, "gmake", "Checking for tool gmake"):
		cfg.Make = "gmake"
	case exists(w, "mingw32-make", "Checking for tool mingw32-make"):
		cfg.Make = "mingw32-make"
	default:
		missing = append(missing, "make")
	}

	for _, tool := range []string{"curl", "patch", "tar"} {
		if !exists(w, tool, "Checking for tool "+tool) {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return &MissingToolsError{Missing: missing}
	}
	return nil
}
