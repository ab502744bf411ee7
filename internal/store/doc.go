// Package store provides the optional SQLite ledger for pipeline runs.
//
// The ledger holds three tables:
//   - runs: one row per join invocation, keyed by a UUIDv7 run ID
//   - datasets: one row per dataset a run attempted, with its outcome
//   - corpus_rows: the most recently loaded corpus, one JSON record per row
//
// Ordering never relies on wall time. Runs sort by ID (UUIDv7 is
// time-ordered), datasets by their sequence within a run and corpus rows by
// insertion order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
