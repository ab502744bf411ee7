// Package legis provides the shared vocabulary of the legislative bulk-data
// pipeline: required table names, column names, the aggregate column order,
// state-code derivation, and the error taxonomy.
//
// This package imports nothing internal. Every other package builds on it.
//
// Key constraints:
//   - Join keys (bill_id, people_id) are opaque strings, never parsed as numbers
//   - Joined text aggregates use Delimiter and never contain blank entries
//   - Count columns are always rendered as integers, 0 when there are no children
package legis
