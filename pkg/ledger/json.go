package ledger

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amounts are rendered as JSON numbers. decimal quotes them by default

func jsonAmount(amount decimal.Decimal) json.Number {
	return json.Number(amount.String())
}

type plainTransaction Transaction

type transactionJSON struct {
	plainTransaction
	Amount json.Number `json:"amount"`
}

func (t Transaction) toJSON() transactionJSON {
	return transactionJSON{plainTransaction: plainTransaction(t), Amount: jsonAmount(t.Amount)}
}

// MarshalJSON renders the transaction with a numeric amount
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON())
}

// MarshalJSON renders the row with a numeric amount
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		transactionJSON
		EditStatus EditStatus `json:"editStatus"`
	}{r.Transaction.toJSON(), r.EditStatus})
}

type aggregatesJSON struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Balance json.Number `json:"balance"`
}

func (a Aggregates) toJSON() aggregatesJSON {
	return aggregatesJSON{
		Income:  jsonAmount(a.Income),
		Expense: jsonAmount(a.Expense),
		Balance: jsonAmount(a.Balance),
	}
}

// MarshalJSON renders totals as numbers
func (a Aggregates) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.toJSON())
}

// MarshalJSON renders totals and division balances as numbers
func (s Summary) MarshalJSON() ([]byte, error) {
	divisions := make(map[string]json.Number, len(s.Divisions))
	for division, balance := range s.Divisions {
		divisions[division] = jsonAmount(balance)
	}
	return json.Marshal(struct {
		aggregatesJSON
		Divisions map[string]json.Number `json:"divisions"`
	}{s.Aggregates.toJSON(), divisions})
}
