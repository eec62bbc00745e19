package ledger

import "time"

// EditWindow is how long a transaction stays mutable after creation
const EditWindow = 12 * time.Hour

// EditStatus tells if a transaction can still be updated
type EditStatus string

// Edit statuses
const (
	Editable EditStatus = "EDITABLE"
	Locked   EditStatus = "LOCKED"
)

// LockedAt is a moment the transaction becomes locked
func (t Transaction) LockedAt() time.Time {
	return t.CreatedAt.Add(EditWindow)
}

// EditStatusOf returns Editable while less than EditWindow passed since
// creation. At exactly EditWindow the transaction is Locked
func EditStatusOf(trx Transaction, now time.Time) EditStatus {
	if now.Sub(trx.CreatedAt) < EditWindow {
		return Editable
	}
	return Locked
}
