// Package ledger holds the pure computations behind the dashboards: balances,
// period budgets, recurring projections and goal reconciliation. Every function
// works on in-memory collections, has no side effects and returns zero values
// for empty input.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Totals is the income/expense flow of a transaction set.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// Balance sums income and expense. Transfers move money between the owner's
// own accounts and goals, so they count on neither side.
func Balance(txs []model.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Kind {
		case model.KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case model.KindExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// AccountBalance is an account with its derived current balance.
type AccountBalance struct {
	Name           string
	Type           string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
}

// Change is the movement since the initial balance.
func (a AccountBalance) Change() decimal.Decimal {
	return a.CurrentBalance.Sub(a.InitialBalance)
}

// AccountBalances derives the current balance of every account:
// initial + income into it + transfers into it - expenses and transfers out of it.
func AccountBalances(txs []model.Transaction, accounts []model.Account) []AccountBalance {
	if len(accounts) == 0 {
		return []AccountBalance{}
	}

	inflows := make(map[string]decimal.Decimal)
	outflows := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		switch tx.Kind {
		case model.KindIncome:
			inflows[tx.Account] = inflows[tx.Account].Add(tx.Amount)
		case model.KindExpense:
			outflows[tx.Account] = outflows[tx.Account].Add(tx.Amount)
		case model.KindTransfer:
			outflows[tx.Account] = outflows[tx.Account].Add(tx.Amount)
			inflows[tx.Destination] = inflows[tx.Destination].Add(tx.Amount)
		}
	}

	out := make([]AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, AccountBalance{
			Name:           acc.Name,
			Type:           acc.Type,
			InitialBalance: acc.InitialBalance,
			CurrentBalance: acc.InitialBalance.Add(inflows[acc.Name]).Sub(outflows[acc.Name]),
		})
	}
	return out
}
