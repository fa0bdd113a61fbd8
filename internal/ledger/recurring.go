package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

var monthlyMultiplier = map[model.Frequency]decimal.Decimal{
	model.FrequencyMonthly:   decimal.NewFromInt(1),
	model.FrequencyBiweekly:  decimal.NewFromInt(2),
	model.FrequencyWeekly:    decimal.NewFromInt(52).Div(decimal.NewFromInt(12)),
	model.FrequencyBimonthly: decimal.RequireFromString("0.5"),
	model.FrequencyQuarterly: decimal.NewFromInt(1).Div(decimal.NewFromInt(3)),
	model.FrequencyYearly:    decimal.NewFromInt(1).Div(decimal.NewFromInt(12)),
	model.FrequencyOneOff:    decimal.Zero,
}

// MonthlyMultiplier returns the factor that turns one occurrence at f into a
// monthly amount. Unknown frequencies contribute nothing.
func MonthlyMultiplier(f model.Frequency) decimal.Decimal {
	if m, ok := monthlyMultiplier[f]; ok {
		return m
	}
	return decimal.Zero
}

// Projection is the monthly-equivalent fixed income and expense.
type Projection struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Surplus decimal.Decimal
}

// RecurringProjection projects every recurring income and expense onto a month.
// Rows not flagged recurring are ignored whatever their frequency says.
func RecurringProjection(txs []model.Transaction) Projection {
	var p Projection
	for _, tx := range txs {
		if !tx.IsRecurring {
			continue
		}
		monthly := tx.Amount.Mul(MonthlyMultiplier(tx.Frequency))
		switch tx.Kind {
		case model.KindIncome:
			p.Income = p.Income.Add(monthly)
		case model.KindExpense:
			p.Expense = p.Expense.Add(monthly)
		}
	}
	p.Surplus = p.Income.Sub(p.Expense)
	return p
}
