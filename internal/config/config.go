// Package config holds the explicit paths and names every pipeline entry
// point runs against.
//
// Precedence, lowest first: Default, YAML file, .env files, process
// environment. Command-line flags are applied by the caller afterwards.
// The merged result is validated against an embedded CUE schema.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the pipeline configuration.
type Config struct {
	// BulkRoot holds the downloaded bulk archives; its *.zip files are the
	// default inputs.
	BulkRoot string `yaml:"bulk_root" json:"bulk_root"`

	// CombinedDir receives one aggregated output per dataset.
	CombinedDir string `yaml:"combined_dir" json:"combined_dir"`

	// CorpusPath is the deduplicated corpus file.
	CorpusPath string `yaml:"corpus_path" json:"corpus_path"`

	// TableDir is the name of the directory holding a dataset's tables.
	TableDir string `yaml:"table_dir" json:"table_dir"`

	// RawTable is the table concatenated in raw streaming mode.
	RawTable string `yaml:"raw_table" json:"raw_table"`

	// Database is an optional SQLite ledger path. Empty disables it.
	Database string `yaml:"database" json:"database"`
}

// Environment variable names, one per field.
const (
	EnvBulkRoot    = "LEGICORPUS_BULK_ROOT"
	EnvCombinedDir = "LEGICORPUS_COMBINED_DIR"
	EnvCorpusPath  = "LEGICORPUS_CORPUS_PATH"
	EnvTableDir    = "LEGICORPUS_TABLE_DIR"
	EnvRawTable    = "LEGICORPUS_RAW_TABLE"
	EnvDatabase    = "LEGICORPUS_DATABASE"
)

// Default returns the conventional layout under ./datasources.
func Default() Config {
	return Config{
		BulkRoot:    filepath.Join("datasources", "legiscan-bulk-csv"),
		CombinedDir: filepath.Join("datasources", "legiscan-combined-by-state-year"),
		CorpusPath:  filepath.Join("datasources", "legiscan-combined", "all_bills.csv"),
		TableDir:    "csv",
		RawTable:    "bills.csv",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the given .env files (missing ones are ignored) and the
// process environment, then validates it.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return Config{}, err
		}
	}

	env, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(existing...)
	if err != nil {
		return nil, fmt.Errorf("read env files: %w", err)
	}
	return env, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	fields := []struct {
		key string
		dst *string
	}{
		{EnvBulkRoot, &c.BulkRoot},
		{EnvCombinedDir, &c.CombinedDir},
		{EnvCorpusPath, &c.CorpusPath},
		{EnvTableDir, &c.TableDir},
		{EnvRawTable, &c.RawTable},
		{EnvDatabase, &c.Database},
	}
	for _, f := range fields {
		if v, ok := lookup(f.key); ok && v != "" {
			*f.dst = v
		}
	}
}

// DefaultInputs returns the *.zip archives directly under BulkRoot, sorted.
func (c Config) DefaultInputs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.BulkRoot, "*.zip"))
	if err != nil {
		return nil, fmt.Errorf("list archives in %s: %w", c.BulkRoot, err)
	}
	return matches, nil
}
