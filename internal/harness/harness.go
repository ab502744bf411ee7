package harness

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/legicorpus/internal/archive"
	"github.com/roach88/legicorpus/internal/config"
	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/pipeline"
	"github.com/roach88/legicorpus/internal/store"
	"github.com/roach88/legicorpus/internal/table"
	"github.com/roach88/legicorpus/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory against a fresh
// in-memory ledger. A returned error means the scenario could not be set up;
// pipeline failures are reported through the Result.
func Run(scenario *Scenario) (*Result, error) {
	work, err := os.MkdirTemp("", "legicorpus-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(work)

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfg := config.Default()
	cfg.BulkRoot = filepath.Join(work, "bulk")
	cfg.CombinedDir = filepath.Join(work, "combined")
	cfg.CorpusPath = filepath.Join(work, "corpus", "all_bills.csv")

	inputs, err := buildInputs(cfg.BulkRoot, scenario.Inputs)
	if err != nil {
		return nil, err
	}

	var runIDs *testutil.FixedRunIDs
	if scenario.RunID != "" {
		runIDs = testutil.NewFixedRunIDs(scenario.RunID)
	} else {
		runIDs = testutil.NewFixedRunIDs()
	}

	ctx := context.Background()
	result := NewResult()
	result.Summary, result.RunErr = pipeline.Run(ctx, cfg, inputs, pipeline.Options{
		SkipCombine: scenario.SkipCombine,
		Store:       st,
		RunIDs:      runIDs,
	})

	if err := collectOutputs(cfg, result); err != nil {
		return nil, err
	}
	result.Ledger, err = st.Datasets(ctx, result.Summary.RunID)
	if err != nil {
		return nil, err
	}

	checkExpect(scenario.Expect, result)
	for _, a := range scenario.Assertions {
		if err := evaluate(a, result); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

// buildInputs materializes each input under root and returns the paths to
// pass to the pipeline.
func buildInputs(root string, inputs []Input) ([]string, error) {
	paths := make([]string, 0, len(inputs))
	for _, in := range inputs {
		dir := filepath.Join(root, in.Name)
		switch {
		case in.Missing:
			paths = append(paths, dir)
		case in.Archive:
			path := dir + archive.Suffix
			if err := writeArchive(path, in.Datasets); err != nil {
				return nil, fmt.Errorf("input %s: %w", in.Name, err)
			}
			paths = append(paths, path)
		default:
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("input %s: %w", in.Name, err)
			}
			for _, ds := range in.Datasets {
				if err := writeDataset(dir, ds); err != nil {
					return nil, fmt.Errorf("input %s: %w", in.Name, err)
				}
			}
			paths = append(paths, dir)
		}
	}
	return paths, nil
}

// tablesFor resolves a dataset's fixture, overrides and omissions.
func tablesFor(ds DatasetSpec) testutil.Tables {
	tables := testutil.MinimalTables()
	if ds.Fixture == FixtureScenario {
		tables = testutil.ScenarioTables()
	}
	for name, content := range ds.Tables {
		tables[name] = content
	}
	for _, name := range ds.Omit {
		delete(tables, name)
	}
	return tables
}

func datasetPrefix(ds DatasetSpec) string {
	return ds.State + "/" + ds.Session + "/csv"
}

func writeDataset(root string, ds DatasetSpec) error {
	dir := filepath.Join(root, filepath.FromSlash(datasetPrefix(ds)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range tablesFor(ds) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeArchive(path string, datasets []DatasetSpec) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zw := zip.NewWriter(f)
	for _, ds := range datasets {
		tables := tablesFor(ds)
		names := make([]string, 0, len(tables))
		for name := range tables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			w, err := zw.Create(datasetPrefix(ds) + "/" + name)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, tables[name]); err != nil {
				return err
			}
		}
	}
	return zw.Close()
}

// collectOutputs reads every per-dataset output and the corpus, if written.
func collectOutputs(cfg config.Config, result *Result) error {
	paths, err := filepath.Glob(filepath.Join(cfg.CombinedDir, "*.csv"))
	if err != nil {
		return err
	}
	named := make(map[string]string, len(paths)+1)
	for _, p := range paths {
		named[filepath.Base(p)] = p
	}
	if _, err := os.Stat(cfg.CorpusPath); err == nil {
		named[CorpusFile] = cfg.CorpusPath
	}

	for name, path := range named {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		t, err := table.Read(path)
		if err != nil {
			return err
		}
		result.Raw[name] = raw
		result.Files[name] = t
	}
	return nil
}

func checkExpect(e Expect, result *Result) {
	switch {
	case e.Error == "" && result.RunErr != nil:
		result.AddError(fmt.Sprintf("unexpected run error: %v", result.RunErr))
	case e.Error != "" && !legis.IsCode(result.RunErr, legis.ErrorCode(e.Error)):
		result.AddError(fmt.Sprintf("expected run error %s, got %v", e.Error, result.RunErr))
	}

	sum := result.Summary
	removed := 0
	if sum.Corpus != nil {
		removed = sum.Corpus.Removed
	}
	counts := []struct {
		name   string
		want   *int
		actual int
	}{
		{"input_errors", e.InputErrors, sum.InputErrors},
		{"found", e.Found, sum.Found},
		{"processed", e.Processed, sum.Processed},
		{"skipped", e.Skipped, sum.Skipped},
		{"rows", e.Rows, sum.Rows},
		{"removed", e.Removed, removed},
	}
	for _, c := range counts {
		if c.want != nil && *c.want != c.actual {
			result.AddError(fmt.Sprintf("expect.%s: want %d, got %d", c.name, *c.want, c.actual))
		}
	}
}
