package harness

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders every written file, per-dataset outputs by name and then
// the corpus, as one deterministic text block.
func Snapshot(result *Result) []byte {
	names := make([]string, 0, len(result.Raw))
	for name := range result.Raw {
		if name != CorpusFile {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := result.Raw[CorpusFile]; ok {
		names = append(names, CorpusFile)
	}

	var buf bytes.Buffer
	for _, name := range names {
		fmt.Fprintf(&buf, "== %s ==\n", name)
		buf.Write(result.Raw[name])
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario, fails the test on any scenario error,
// and compares Snapshot against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(result))

	return result, nil
}
