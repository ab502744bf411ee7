// Package corpus merges per-dataset tables into one output file.
//
// Two independent modes:
//
//   - StreamConcat: raw bills tables, one header, every row tagged with its
//     state code. Streams one record at a time; nothing is aggregated.
//   - Combine: aggregated per-dataset outputs loaded into memory, aligned by
//     column name, with exact-duplicate rows removed.
//
// Both are idempotent for identical inputs.
package corpus
