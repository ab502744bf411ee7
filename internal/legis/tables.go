package legis

// Table file names. A directory is a dataset only if it directly contains
// all of RequiredTables.
const (
	BillsTable     = "bills.csv"
	PeopleTable    = "people.csv"
	SponsorsTable  = "sponsors.csv"
	HistoryTable   = "history.csv"
	DocumentsTable = "documents.csv"
	RollCallsTable = "rollcalls.csv"
)

// RequiredTables lists the six tables in load order.
var RequiredTables = []string{
	BillsTable,
	PeopleTable,
	SponsorsTable,
	HistoryTable,
	DocumentsTable,
	RollCallsTable,
}

// Input column names.
const (
	ColBillID       = "bill_id"
	ColPeopleID     = "people_id"
	ColName         = "name"
	ColParty        = "party"
	ColPosition     = "position"
	ColDate         = "date"
	ColSequence     = "sequence"
	ColAction       = "action"
	ColDocumentType = "document_type"
	ColURL          = "url"
	ColRollCallID   = "roll_call_id"
	ColYea          = "yea"
	ColNay          = "nay"
)

// RequiredColumns maps each table to the columns it must carry.
var RequiredColumns = map[string][]string{
	BillsTable:     {ColBillID},
	PeopleTable:    {ColPeopleID, ColName, ColParty},
	SponsorsTable:  {ColBillID, ColPeopleID, ColPosition},
	HistoryTable:   {ColBillID, ColDate, ColSequence, ColAction},
	DocumentsTable: {ColBillID, ColDocumentType, ColURL},
	RollCallsTable: {ColBillID, ColRollCallID, ColYea, ColNay},
}

// Output column names.
const (
	ColState = "state"

	ColSponsorNames   = "sponsor_names"
	ColSponsorParties = "sponsor_parties"
	ColPrimarySponsor = "primary_sponsor"
	ColSponsorCount   = "sponsor_count"

	ColActionCount       = "action_count"
	ColLastHistoryAction = "last_history_action"

	ColDocumentCount = "document_count"
	ColDocumentTypes = "document_types"
	ColDocumentURLs  = "document_urls"

	ColRollCallCount = "rollcall_count"
	ColTotalYea      = "total_yea"
	ColTotalNay      = "total_nay"
)

// Delimiter joins multi-valued text aggregates.
const Delimiter = " | "

// AggregateColumns is the fixed order of the appended aggregate columns:
// sponsors, history, documents, roll calls.
var AggregateColumns = []string{
	ColSponsorNames, ColSponsorParties, ColPrimarySponsor, ColSponsorCount,
	ColActionCount, ColLastHistoryAction,
	ColDocumentCount, ColDocumentTypes, ColDocumentURLs,
	ColRollCallCount, ColTotalYea, ColTotalNay,
}

// CountColumns are coerced to integers, with a missing value rendered as 0.
var CountColumns = []string{
	ColSponsorCount,
	ColActionCount,
	ColDocumentCount,
	ColRollCallCount,
	ColTotalYea,
	ColTotalNay,
}

// IsCountColumn reports whether name is one of CountColumns.
func IsCountColumn(name string) bool {
	for _, c := range CountColumns {
		if c == name {
			return true
		}
	}
	return false
}
