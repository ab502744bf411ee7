// Package table provides string-celled CSV tables and the grouped reducer
// used to fold child tables onto a parent.
//
// Cells are kept exactly as read. Numeric interpretation happens only where
// an operation needs it: sort keys (see Compare) and sums (see Sum).
//
// The reducer model:
//
//	child --GroupBy(key, sort, fields)--> Grouped --LeftJoin--> parent + fields
//
// A GroupSpec is declarative: a grouping column, sort columns applied within
// each group, and a list of Fields, each folding a group into one cell.
package table
