package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/legicorpus/internal/config"
	"github.com/roach88/legicorpus/internal/testutil"
)

// testEnv writes a config file rooted in a temp dir and returns root options
// pointing at it.
func testEnv(t *testing.T, format string) (*RootOptions, config.Config) {
	t.Helper()
	testutil.SilenceLogs(t)
	for _, k := range []string{config.EnvBulkRoot, config.EnvCombinedDir, config.EnvCorpusPath,
		config.EnvTableDir, config.EnvRawTable, config.EnvDatabase} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	cfg := config.Default()
	cfg.BulkRoot = filepath.Join(dir, "bulk")
	cfg.CombinedDir = filepath.Join(dir, "combined")
	cfg.CorpusPath = filepath.Join(dir, "corpus", "all_bills.csv")

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "legicorpus.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return &RootOptions{Format: format, ConfigPath: path}, cfg
}

// execute runs cmd with args and stdin, returning stdout and stderr.
func execute(cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
