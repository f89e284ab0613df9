package patches

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// muslCrossMakeCommit pins the musl-cross-make revision whose patch set
// is known to apply to the default package versions.
const muslCrossMakeCommit = "fe915821b652a7fa37b34a596f47d8e20bc72338"

// DownloadMuslCrossMake fetches the musl-cross-make patch bundle and
// copies its per-package patch directories into dir. A bundle that was
// already extracted is left alone. Progress is written to w.
func DownloadMuslCrossMake(dir string, w io.Writer) error {
	downloadDir := filepath.Join(dir, "downloads")
	extractedDir := filepath.Join(downloadDir, "musl-cross-make-"+muslCrossMakeCommit)

	if _, err := os.Stat(extractedDir); err == nil {
		fmt.Fprintf(w, "Patches are already downloaded at %s\n", extractedDir)
		return nil
	}

	url := fmt.Sprintf("https://github.com/richfelker/musl-cross-make/archive/%s.zip", muslCrossMakeCommit)
	fmt.Fprintf(w, "Downloading patches from %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download patch bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download patch bundle: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read patch bundle: %w", err)
	}

	fmt.Fprintf(w, "Extracting patches at %s\n", extractedDir)
	if err := extractZip(data, downloadDir); err != nil {
		return fmt.Errorf("failed to extract patch bundle: %w", err)
	}

	return copyTree(filepath.Join(extractedDir, "patches"), dir)
}

func extractZip(data []byte, dst string) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	for _, file := range reader.File {
		path := filepath.Join(dst, filepath.FromSlash(file.Name))
		if !strings.HasPrefix(path, filepath.Clean(dst)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := writeZipFile(file, path); err != nil {
			return err
		}
	}
	return nil
}

func writeZipFile(file *zip.File, path string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
