// Package harness runs declarative pipeline scenarios.
//
// A scenario lays out bulk-data inputs (directories or zip archives of
// datasets), runs the join pipeline over them against an in-memory ledger,
// then checks the run summary and the written CSV files.
//
// # Scenario Format
//
//	name: two_bills
//	description: "Primary sponsor and vote totals for one dataset"
//	run_id: run-two-bills
//	inputs:
//	  - name: 2021-2022
//	    archive: true
//	    datasets:
//	      - state: AK
//	        session: 2021-2022
//	        fixture: scenario
//	        tables:
//	          documents.csv: |
//	            bill_id,document_type,url
//	        omit: [rollcalls.csv]
//	expect:
//	  found: 1
//	  processed: 1
//	assertions:
//	  - type: row
//	    file: corpus
//	    where: { bill_id: "101" }
//	    expect: { primary_sponsor: "Ann Lee" }
//
// Dataset tables start from a fixture ("minimal", the default, or
// "scenario"), are overridden by tables and pruned by omit.
//
// # Assertion Types
//
//   - row_count: a file has exactly count data rows
//   - columns: a file's header equals columns
//   - row: the first row matching where has the expect values
//   - no_file: a file was not written
//   - dataset_status: the ledger recorded status for a dataset output name
//
// A file is an output name in the combined directory, or "corpus".
package harness
