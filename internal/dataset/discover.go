// Package dataset finds dataset directories: directories that directly
// contain all six required tables.
package dataset

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/legicorpus/internal/legis"
)

// Discover walks root, root included, and returns every dataset directory in
// lexicographic path order.
//
// A symlinked root is followed; links below it are not.
func Discover(root string) ([]string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	root = resolved

	var dirs []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		missing := Missing(path)
		switch {
		case len(missing) == 0:
			dirs = append(dirs, path)
		case len(missing) < len(legis.RequiredTables):
			slog.Debug("incomplete dataset", "path", path, "missing", missing)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// IsDataset reports whether dir directly contains every required table as a
// regular file.
func IsDataset(dir string) bool {
	return len(Missing(dir)) == 0
}

// Missing returns the required tables absent from dir, in load order.
func Missing(dir string) []string {
	var missing []string
	for _, name := range legis.RequiredTables {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, name)
		}
	}
	return missing
}

// Location is where a dataset sits in the bulk-archive layout
// <root>/<state>/<session>/<tables>/.
type Location struct {
	// State is the letters-only name of the directory two levels up.
	State string
	// Session is the name of the directory one level up.
	Session string
}

// Locate derives the state code and session folder of a dataset directory.
func Locate(dir string) Location {
	session := filepath.Dir(filepath.Clean(dir))
	return Location{
		State:   legis.StateCode(filepath.Base(filepath.Dir(session))),
		Session: filepath.Base(session),
	}
}

// OutputName is the per-dataset output file name, <STATE>_<session>.csv.
func (l Location) OutputName() string {
	return l.State + "_" + l.Session + ".csv"
}
