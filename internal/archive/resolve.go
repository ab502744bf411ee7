package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/legicorpus/internal/legis"
)

// Suffix marks an archive path.
const Suffix = ".zip"

// Paths returns the archive and directory paths an input may refer to.
// "x.zip" pairs with directory "x"; "x" pairs with archive "x.zip".
func Paths(input string) (archivePath, dir string) {
	clean := filepath.Clean(input)
	if strings.EqualFold(filepath.Ext(clean), Suffix) {
		return clean, strings.TrimSuffix(clean, filepath.Ext(clean))
	}
	return clean + Suffix, clean
}

// DerivedName is the base name of input without the archive suffix.
func DerivedName(input string) string {
	_, dir := Paths(input)
	return filepath.Base(dir)
}

// Resolve returns the absolute directory root for input, extracting the
// archive when the directory is absent or older than the archive.
func Resolve(input string) (string, error) {
	archivePath, dir := Paths(input)

	archiveInfo, err := os.Stat(archivePath)
	archiveExists := err == nil && !archiveInfo.IsDir()
	dirInfo, err := os.Stat(dir)
	dirExists := err == nil && dirInfo.IsDir()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	// Directory walks do not descend a symlinked root.
	if dirExists {
		if abs, err = filepath.EvalSymlinks(abs); err != nil {
			return "", fmt.Errorf("resolve %s: %w", dir, err)
		}
	}

	switch {
	case !archiveExists && !dirExists:
		return "", legis.NewError(legis.CodeSourceNotFound, input, "no valid source found")

	case !archiveExists:
		slog.Debug("using existing directory", "dir", abs)
		return abs, nil

	case !dirExists:
		slog.Info("extracting archive", "archive", archivePath, "dest", abs)
		if err := extractFresh(archivePath, abs); err != nil {
			return "", err
		}
		return abs, nil

	case archiveInfo.ModTime().After(dirInfo.ModTime()):
		slog.Info("archive newer than directory, re-extracting", "archive", archivePath, "dest", abs)
		if err := os.RemoveAll(abs); err != nil {
			return "", fmt.Errorf("remove stale directory %s: %w", abs, err)
		}
		if err := extractFresh(archivePath, abs); err != nil {
			return "", err
		}
		return abs, nil

	default:
		slog.Debug("directory up to date", "dir", abs)
		return abs, nil
	}
}

func extractFresh(archivePath, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return Extract(archivePath, dir)
}
