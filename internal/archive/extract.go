package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/legicorpus/internal/legis"
)

// Junk entries created by macOS archivers.
const (
	metadataDir  = "__MACOSX"
	hiddenSuffix = ".DS_Store"
)

// Extract unpacks the zip archive at archivePath into dest, creating dest if
// needed. An entry resolving outside dest aborts the extraction with a
// legis.CodeUnsafeArchiveEntry error; entries before it stay extracted.
func Extract(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	base, err := resolveExisting(dest)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}

	var files, skipped int
	for _, f := range r.File {
		if isJunk(f.Name) {
			skipped++
			continue
		}

		target, err := safeTarget(base, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
		files++
	}

	slog.Debug("archive extracted", "archive", archivePath, "dest", dest, "files", files, "skipped", skipped)
	return nil
}

// isJunk reports whether name is OS metadata rather than dataset content.
func isJunk(name string) bool {
	if strings.HasSuffix(name, hiddenSuffix) {
		return true
	}
	for _, part := range strings.Split(name, "/") {
		if part == metadataDir {
			return true
		}
	}
	return false
}

// safeTarget joins name onto base and checks that the resolved result stays
// under base.
func safeTarget(base, name string) (string, error) {
	unsafe := func() error {
		return legis.NewError(legis.CodeUnsafeArchiveEntry, name, "unsafe path detected in archive (zip-slip)")
	}

	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", unsafe()
	}

	target := filepath.Join(base, name)
	resolved, err := resolveExisting(target)
	if err != nil {
		return "", fmt.Errorf("resolve entry %s: %w", name, err)
	}
	if !within(base, resolved) {
		return "", unsafe()
	}
	return resolved, nil
}

// within reports whether target is base or below it.
func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting returns the absolute form of path with symlinks evaluated
// on the longest prefix that exists.
func resolveExisting(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	existing, rest := abs, ""
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}

	evaluated, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(evaluated, rest), nil
}

func extractFile(f *zip.File, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", target, closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
