package ledger

import (
	"strings"

	"github.com/trackwise/trackwise-go/internal/models"
)

// csvHeader is the fixed export header. Consumers of previous exports parse
// this exact layout.
const csvHeader = "Date,Type,Amount,Category,Source,Vendor"

// ExportCSV serializes the entire collection as a delimited table, one row
// per transaction. The export always covers the full collection regardless
// of the active filter and search; only the table view is filtered.
//
// Fields are joined with bare commas and not quoted, matching the format
// existing consumers already parse. A field value containing a comma will
// corrupt its row.
func ExportCSV(transactions []models.Transaction) string {
	rows := make([]string, 0, len(transactions)+1)
	rows = append(rows, csvHeader)

	for _, tx := range transactions {
		rows = append(rows, strings.Join([]string{
			tx.Date,
			tx.Type,
			tx.Amount.StringFixed(2),
			tx.Category,
			tx.Source,
			tx.DisplayVendor(),
		}, ","))
	}

	return strings.Join(rows, "\n") + "\n"
}

// ExportCSV serializes the view's full collection.
func (v *View) ExportCSV() string {
	return ExportCSV(v.transactions)
}
