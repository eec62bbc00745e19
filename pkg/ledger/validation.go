package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

func parseAmount(raw *RawAmount) (decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(string(*raw)) == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "is required"}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(string(*raw)))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must be a number"}
	}
	if !amount.IsPositive() {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return amount, nil
}

func withDefault(value string, defaultValue string) string {
	if value = strings.TrimSpace(value); value == "" {
		return defaultValue
	}
	return value
}

// ValidateForCreate checks the input and returns a normalized transaction.
// Identity fields (id, owner, createdAt) are left empty
func ValidateForCreate(input Input) (Transaction, error) {
	trxType := Type(strings.ToUpper(strings.TrimSpace(string(input.Type))))
	if !trxType.valid() {
		return Transaction{}, &ValidationError{Field: "type", Reason: "must be one of INCOME, EXPENSE, TRANSFER"}
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return Transaction{}, err
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return Transaction{}, &ValidationError{Field: "description", Reason: "is required"}
	}

	trx := Transaction{
		Type:        trxType,
		Amount:      amount,
		Description: description,
		Category:    withDefault(input.Category, DefaultCategory),
		Division:    withDefault(input.Division, DefaultDivision),
	}

	if trxType == TypeTransfer {
		trx.ToDivision = strings.TrimSpace(input.ToDivision)
		if trx.ToDivision == "" {
			return Transaction{}, &ValidationError{Field: "toDivision", Reason: "is required"}
		}
		if trx.ToDivision == trx.Division {
			return Transaction{}, &ValidationError{Field: "toDivision", Reason: "must differ from division"}
		}
	}
	return trx, nil
}

// ValidateForUpdate merges the patch into the existing transaction and
// validates the result. Transfers can not be patched
func ValidateForUpdate(existing Transaction, patch Patch) (Transaction, error) {
	if existing.IsTransfer() {
		return Transaction{}, &ValidationError{Field: "type", Reason: "transfers can not be modified"}
	}
	if patch.ToDivision != nil {
		return Transaction{}, &ValidationError{Field: "toDivision", Reason: "applies to transfers only"}
	}

	input := Input{
		Type:        existing.Type,
		Amount:      NewRawAmount(existing.Amount.String()),
		Description: existing.Description,
		Category:    existing.Category,
		Division:    existing.Division,
	}
	if patch.Type != nil {
		input.Type = *patch.Type
		if Type(strings.ToUpper(strings.TrimSpace(string(input.Type)))) == TypeTransfer {
			return Transaction{}, &ValidationError{Field: "type", Reason: "can not be changed to TRANSFER"}
		}
	}
	if patch.Amount != nil {
		input.Amount = patch.Amount
	}
	if patch.Description != nil {
		input.Description = *patch.Description
	}
	if patch.Category != nil {
		input.Category = *patch.Category
	}
	if patch.Division != nil {
		input.Division = *patch.Division
	}

	merged, err := ValidateForCreate(input)
	if err != nil {
		return Transaction{}, err
	}
	merged.ID = existing.ID
	merged.Owner = existing.Owner
	merged.CreatedAt = existing.CreatedAt
	return merged, nil
}
