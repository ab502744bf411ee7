// Package aggregate folds a dataset's five child tables onto its bills,
// producing one bill-centric record per bill.
//
// Each child table is described by a table.GroupSpec:
//
//	sponsors  (joined to people)  sort (position)         names, parties, primary, count
//	history                       sort (date, sequence)   count, last action
//	documents                     file order              count, distinct types, urls
//	rollcalls                     file order              count, yea sum, nay sum
//
// The grouped results are left-joined onto bills by bill_id, the state code
// is inserted first, and count columns default to 0.
package aggregate
