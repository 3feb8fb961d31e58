package langsync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// checkStagingDir rejects staging locations that must never be purged: the
// filesystem root and any directory equal to or above the working directory,
// the home directory or one of protected.
func checkStagingDir(dir string, protected []string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", &ConfigurationError{Field: "staging_dir", Reason: "is required for pull"}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &ConfigurationError{Field: "staging_dir", Reason: err.Error()}
	}
	if abs == filepath.VolumeName(abs)+string(filepath.Separator) {
		return "", &ConfigurationError{Field: "staging_dir", Reason: "refusing to purge the filesystem root"}
	}
	if wd, err := os.Getwd(); err == nil && contains(abs, wd) {
		return "", &ConfigurationError{Field: "staging_dir", Reason: "refusing to purge the working directory"}
	}
	if home, err := os.UserHomeDir(); err == nil && contains(abs, home) {
		return "", &ConfigurationError{Field: "staging_dir", Reason: "refusing to purge the home directory"}
	}
	for _, p := range protected {
		if strings.TrimSpace(p) == "" {
			continue
		}
		target, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if contains(abs, target) {
			return "", &ConfigurationError{Field: "staging_dir", Reason: fmt.Sprintf("refusing to purge %s, it contains %s", abs, target)}
		}
	}
	return abs, nil
}

// contains reports whether target is dir or lies below it.
func contains(dir, target string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel))
}

// purgeDir removes dir and everything in it, then recreates it empty.
func purgeDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("purge %s: %w", dir, err)
	}
	return os.MkdirAll(dir, 0o755)
}

// spool copies r into a temporary file so the archive can be read with
// random access. The caller removes the returned file.
func spool(r io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp("", "crowdinsync-*.zip")
	if err != nil {
		return "", 0, err
	}
	name := tmp.Name()
	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(name)
		return "", 0, err
	}
	return name, n, nil
}

// extractZip unpacks the archive at archivePath into dir and returns the
// slash-separated paths of the extracted files.
func extractZip(archivePath, dir string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	var files []string
	for _, f := range zr.File {
		target, err := stagedPath(dir, f.Name)
		if err != nil {
			return files, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return files, err
		}
		if err := extractFile(f, target); err != nil {
			return files, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		rel, _ := filepath.Rel(dir, target)
		files = append(files, filepath.ToSlash(rel))
	}
	return files, nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// stagedPath maps an archive entry name into dir, rejecting names that
// would land outside it.
func stagedPath(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(name, `/\`)))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("archive entry %q escapes the staging directory", name)
	}
	return filepath.Join(dir, clean), nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
