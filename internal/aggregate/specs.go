package aggregate

import (
	"strconv"
	"strings"

	"github.com/roach88/legicorpus/internal/legis"
	"github.com/roach88/legicorpus/internal/table"
)

// isPrimary matches a sponsorship position of 1.
func isPrimary(position string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(position), 64)
	return err == nil && f == 1
}

// sponsorSpec runs over sponsors already joined with people name and party.
var sponsorSpec = table.GroupSpec{
	Key:    legis.ColBillID,
	SortBy: []string{legis.ColPosition},
	Fields: []table.Field{
		table.Join(legis.ColSponsorNames, legis.ColName),
		table.Join(legis.ColSponsorParties, legis.ColParty),
		table.FirstWhere(legis.ColPrimarySponsor, legis.ColName, legis.ColPosition, isPrimary),
		table.Count(legis.ColSponsorCount),
	},
}

var historySpec = table.GroupSpec{
	Key:    legis.ColBillID,
	SortBy: []string{legis.ColDate, legis.ColSequence},
	Fields: []table.Field{
		table.Count(legis.ColActionCount),
		table.Last(legis.ColLastHistoryAction, legis.ColAction),
	},
}

var documentSpec = table.GroupSpec{
	Key: legis.ColBillID,
	Fields: []table.Field{
		table.Count(legis.ColDocumentCount),
		table.JoinDistinct(legis.ColDocumentTypes, legis.ColDocumentType),
		table.Join(legis.ColDocumentURLs, legis.ColURL),
	},
}

var rollCallSpec = table.GroupSpec{
	Key: legis.ColBillID,
	Fields: []table.Field{
		table.Count(legis.ColRollCallCount),
		table.Sum(legis.ColTotalYea, legis.ColYea),
		table.Sum(legis.ColTotalNay, legis.ColNay),
	},
}

// missingValue fills aggregate columns for bills without children.
func missingValue(col string) string {
	if legis.IsCountColumn(col) {
		return "0"
	}
	return ""
}
