package ledger

import "time"

// Row is a transaction as it is listed to the user. A transfer is
// collapsed into a single row built from its OUT leg
type Row struct {
	Transaction
	EditStatus EditStatus `json:"editStatus"`
}

// Rows builds list rows annotated with the edit status
func Rows(txs []Transaction, now time.Time) []Row {
	withDebit := map[string]bool{}
	for _, trx := range txs {
		if trx.IsTransfer() && trx.Leg == LegOut {
			withDebit[trx.TransferID] = true
		}
	}
	rows := make([]Row, 0, len(txs))
	for _, trx := range txs {
		if trx.IsTransfer() && trx.Leg == LegIn && withDebit[trx.TransferID] {
			continue
		}
		rows = append(rows, Row{Transaction: trx, EditStatus: EditStatusOf(trx, now)})
	}
	return rows
}
