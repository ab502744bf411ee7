package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/legicorpus/internal/legis"
)

// Scenario defines one pipeline run and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is the fixed ledger run ID. Empty uses the test default.
	RunID string `yaml:"run_id,omitempty"`

	// Inputs are passed to the pipeline in order.
	Inputs []Input `yaml:"inputs"`

	// SkipCombine stops after the per-dataset outputs.
	SkipCombine bool `yaml:"skip_combine,omitempty"`

	// Expect checks the run summary.
	Expect Expect `yaml:"expect"`

	// Assertions check the written files and the ledger.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Input is one pipeline input path.
type Input struct {
	// Name is the input's base name under the scenario's bulk root.
	Name string `yaml:"name"`

	// Archive packs the datasets into <name>.zip instead of a directory.
	Archive bool `yaml:"archive,omitempty"`

	// Missing passes a path that does not exist.
	Missing bool `yaml:"missing,omitempty"`

	Datasets []DatasetSpec `yaml:"datasets,omitempty"`
}

// DatasetSpec is one dataset directory at <state>/<session>/csv.
type DatasetSpec struct {
	State   string            `yaml:"state"`
	Session string            `yaml:"session"`
	Fixture string            `yaml:"fixture,omitempty"`
	Tables  map[string]string `yaml:"tables,omitempty"`
	Omit    []string          `yaml:"omit,omitempty"`
}

// Expect holds summary expectations. Nil counts are not checked.
type Expect struct {
	// Error is the legis error code the run must fail with.
	Error       string `yaml:"error,omitempty"`
	InputErrors *int   `yaml:"input_errors,omitempty"`
	Found       *int   `yaml:"found,omitempty"`
	Processed   *int   `yaml:"processed,omitempty"`
	Skipped     *int   `yaml:"skipped,omitempty"`
	Rows        *int   `yaml:"rows,omitempty"`
	Removed     *int   `yaml:"removed,omitempty"`
}

// Assertion checks an output file or a ledger record.
type Assertion struct {
	Type    string            `yaml:"type"`
	File    string            `yaml:"file,omitempty"`
	Count   int               `yaml:"count,omitempty"`
	Columns []string          `yaml:"columns,omitempty"`
	Where   map[string]string `yaml:"where,omitempty"`
	Expect  map[string]string `yaml:"expect,omitempty"`
	Dataset string            `yaml:"dataset,omitempty"`
	Status  string            `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount      = "row_count"
	AssertColumns       = "columns"
	AssertRow           = "row"
	AssertNoFile        = "no_file"
	AssertDatasetStatus = "dataset_status"
)

// Fixture names.
const (
	FixtureMinimal  = "minimal"
	FixtureScenario = "scenario"
)

// CorpusFile names the combined corpus in assertions.
const CorpusFile = "corpus"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("inputs list is required and must be non-empty")
	}

	for i, in := range s.Inputs {
		if in.Name == "" {
			return fmt.Errorf("inputs[%d]: name is required", i)
		}
		if in.Missing && len(in.Datasets) > 0 {
			return fmt.Errorf("inputs[%d]: a missing input cannot have datasets", i)
		}
		for j, ds := range in.Datasets {
			if ds.State == "" || ds.Session == "" {
				return fmt.Errorf("inputs[%d].datasets[%d]: state and session are required", i, j)
			}
			switch ds.Fixture {
			case "", FixtureMinimal, FixtureScenario:
			default:
				return fmt.Errorf("inputs[%d].datasets[%d]: unknown fixture %q", i, j, ds.Fixture)
			}
		}
	}

	if s.Expect.Error != "" {
		switch legis.ErrorCode(s.Expect.Error) {
		case legis.CodeSourceNotFound, legis.CodeUnsafeArchiveEntry, legis.CodeMissingRequiredTable,
			legis.CodeTableParse, legis.CodeAggregation, legis.CodeNoValidDatasets:
		default:
			return fmt.Errorf("expect.error: unknown error code %q", s.Expect.Error)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRowCount, AssertNoFile:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertColumns:
		if a.File == "" || len(a.Columns) == 0 {
			return fmt.Errorf("assertions[%d]: file and columns are required for columns", index)
		}
	case AssertRow:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for row", index)
		}
		if len(a.Where) == 0 || len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: where and expect are required for row", index)
		}
	case AssertDatasetStatus:
		if a.Dataset == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: dataset and status are required for dataset_status", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
