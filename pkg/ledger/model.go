package ledger

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is a type of a transaction
type Type string

// Transaction types
const (
	TypeIncome   Type = "INCOME"
	TypeExpense  Type = "EXPENSE"
	TypeTransfer Type = "TRANSFER"
)

func (t Type) valid() bool {
	return t == TypeIncome || t == TypeExpense || t == TypeTransfer
}

// Leg identifies a side of a transfer
type Leg string

// Transfer legs
const (
	// LegOut is a debit of the source division
	LegOut Leg = "OUT"

	// LegIn is a credit of the destination division
	LegIn Leg = "IN"
)

// Defaults applied to new transactions
const (
	DefaultCategory = "General"
	DefaultDivision = "Personal"
)

// Transaction is a single ledger record
type Transaction struct {
	ID          string          `json:"id"`
	Owner       string          `json:"owner"`
	Type        Type            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Division    string          `json:"division"`
	ToDivision  string          `json:"toDivision,omitempty"`
	TransferID  string          `json:"transferId,omitempty"`
	Leg         Leg             `json:"leg,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// IsTransfer returns true for both legs of a transfer
func (t Transaction) IsTransfer() bool {
	return t.Type == TypeTransfer
}

// Transfer is a pair of records written for a single transfer
type Transfer struct {
	Debit  Transaction `json:"debit"`
	Credit Transaction `json:"credit"`
}

// RawAmount is an amount as it was submitted. Accepts a JSON number or a string
type RawAmount string

// UnmarshalJSON keeps the literal so a bad value is reported by validation
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*a = RawAmount(str)
		return nil
	}
	*a = RawAmount(strings.TrimSpace(string(data)))
	return nil
}

// NewRawAmount is a shortcut to build an amount from a literal
func NewRawAmount(value string) *RawAmount {
	amount := RawAmount(value)
	return &amount
}

// Input is a payload to create a transaction or a transfer
type Input struct {
	Type        Type       `json:"type"`
	Amount      *RawAmount `json:"amount"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Division    string     `json:"division"`
	ToDivision  string     `json:"toDivision"`
}

// Patch holds fields to change. Nil fields are left as is.
// ToDivision is rejected since transfers are immutable
type Patch struct {
	Type        *Type      `json:"type"`
	Amount      *RawAmount `json:"amount"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Division    *string    `json:"division"`
	ToDivision  *string    `json:"toDivision"`
}
