package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

const schemaSource = `
#Config: {
	bulk_root:    string & !=""
	combined_dir: string & !=""
	corpus_path:  string & =~"\\.csv$"
	table_dir:    string & =~"^[^/]+$"
	raw_table:    string & =~"^[^/]+\\.csv$"
	database:     string
}
`

// Validate checks c against the #Config schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(c)
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range errors.Errors(err) {
			msgs = append(msgs, fmt.Sprintf("%s: %v", strings.Join(e.Path(), "."), e))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}
