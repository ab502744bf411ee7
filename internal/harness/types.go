package harness

import (
	"github.com/roach88/legicorpus/internal/pipeline"
	"github.com/roach88/legicorpus/internal/store"
	"github.com/roach88/legicorpus/internal/table"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the summary matched and every assertion held.
	Pass bool `json:"pass"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Summary is what the pipeline returned.
	Summary pipeline.Summary `json:"summary"`

	// RunErr is the pipeline error, if any.
	RunErr error `json:"-"`

	// Files maps output names (and CorpusFile) to their parsed tables.
	Files map[string]*table.Table `json:"-"`

	// Raw maps the same names to the bytes written.
	Raw map[string][]byte `json:"-"`

	// Ledger is what the store recorded for the run's datasets.
	Ledger []store.DatasetRecord `json:"ledger"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Files:  make(map[string]*table.Table),
		Raw:    make(map[string][]byte),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
