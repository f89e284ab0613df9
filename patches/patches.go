// Package patches locates per-package patch files and fetches the
// musl-cross-make patch bundle they usually come from.
//
// A package's patches live in <dir>/<name>-<version>/; the directory is
// optional and its absence simply means nothing gets applied.
package patches

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// Files returns the patch files for a package at a version, in the order
// they must be applied. Paths are slash-separated and relative to the
// directory that contains dir, ready to be spliced into an extract
// command. A missing patch directory is not an error.
func Files(dir, name, version string) ([]string, error) {
	patchDir := filepath.Join(dir, fmt.Sprintf("%s-%s", name, version))

	entries, err := os.ReadDir(patchDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list patch directory %s: %w", patchDir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, path.Join(filepath.ToSlash(patchDir), entry.Name()))
	}

	// Patches apply in filename order so plans stay reproducible.
	sort.Strings(files)
	return files, nil
}
