package testutil

// FixedRunIDs returns predetermined run IDs in order.
//
// This enables deterministic ledger assertions: a test that records two runs
// with NewFixedRunIDs("run-1", "run-2") can query them back by name.
//
// Panics when all IDs are consumed, so a test that records more runs than it
// expects fails loudly.
type FixedRunIDs struct {
	ids []string
	idx int
}

// NewFixedRunIDs creates a generator returning ids in order.
// With no ids it always returns "test-run-default".
func NewFixedRunIDs(ids ...string) *FixedRunIDs {
	return &FixedRunIDs{ids: ids}
}

// Generate returns the next run ID.
func (g *FixedRunIDs) Generate() string {
	if len(g.ids) == 0 {
		return "test-run-default"
	}
	if g.idx >= len(g.ids) {
		panic("FixedRunIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
