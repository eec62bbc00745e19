package ledger

import "github.com/shopspring/decimal"

// Aggregates are totals over a set of transactions
type Aggregates struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// ComputeAggregates sums income and expense. Transfers move money between
// divisions of the same owner so they do not contribute
func ComputeAggregates(txs []Transaction) Aggregates {
	income, expense := decimal.Zero, decimal.Zero
	for _, trx := range txs {
		switch trx.Type {
		case TypeIncome:
			income = income.Add(trx.Amount)
		case TypeExpense:
			expense = expense.Add(trx.Amount)
		}
	}
	return Aggregates{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// DivisionBalances returns balance per division. The OUT leg of a transfer
// debits its division and the IN leg credits the destination
func DivisionBalances(txs []Transaction) map[string]decimal.Decimal {
	balances := map[string]decimal.Decimal{}
	add := func(division string, amount decimal.Decimal) {
		balances[division] = balances[division].Add(amount)
	}
	for _, trx := range txs {
		switch {
		case trx.Type == TypeIncome:
			add(trx.Division, trx.Amount)
		case trx.Type == TypeExpense:
			add(trx.Division, trx.Amount.Neg())
		case trx.Type == TypeTransfer && trx.Leg == LegOut:
			add(trx.Division, trx.Amount.Neg())
		case trx.Type == TypeTransfer && trx.Leg == LegIn:
			add(trx.ToDivision, trx.Amount)
		}
	}
	return balances
}

// Summary is aggregates together with balances per division
type Summary struct {
	Aggregates
	Divisions map[string]decimal.Decimal `json:"divisions"`
}

// Summarize builds a summary of given transactions
func Summarize(txs []Transaction) Summary {
	return Summary{
		Aggregates: ComputeAggregates(txs),
		Divisions:  DivisionBalances(txs),
	}
}
