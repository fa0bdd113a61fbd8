package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// BudgetStatus is the state of the global spending window on a given day.
type BudgetStatus struct {
	DailyRate decimal.Decimal
	DaysLeft  int
	Remaining decimal.Decimal
	Spent     decimal.Decimal
}

// PeriodBudget computes what is left of the window and how much can be spent
// per remaining day. Remaining may be negative when the window is overspent.
// A window without dates or with a negative amount yields the zero status.
func PeriodBudget(cfg model.BudgetConfig, txs []model.Transaction, today time.Time) BudgetStatus {
	if cfg.PeriodStart.IsZero() || cfg.PeriodEnd.IsZero() || cfg.Amount.Sign() < 0 {
		return BudgetStatus{}
	}
	start, end, now := model.Day(cfg.PeriodStart), model.Day(cfg.PeriodEnd), model.Day(today)

	spent := spentBetween(txs, start, end)
	remaining := cfg.Amount.Sub(spent)

	var daysLeft int
	switch {
	case now.After(end):
		daysLeft = 0
	case now.Before(start):
		daysLeft = daysBetween(start, end) + 1
	default:
		daysLeft = daysBetween(now, end) + 1
	}

	status := BudgetStatus{DaysLeft: daysLeft, Remaining: remaining, Spent: spent}
	if daysLeft > 0 {
		status.DailyRate = remaining.Div(decimal.NewFromInt(int64(daysLeft)))
	}
	return status
}

// CategoryUsage is the spend of one expense category against its cap.
type CategoryUsage struct {
	Category string
	Budget   decimal.Decimal
	Spent    decimal.Decimal
	Percent  decimal.Decimal
	Exceeded bool
}

// CategoryBudgetUsage compares each capped category with its spend inside the
// global window. Categories with a cap of zero or less are skipped. The result
// is ordered by spend, largest first.
func CategoryBudgetUsage(cfg model.BudgetConfig, budgets model.CategoryBudgets, txs []model.Transaction) []CategoryUsage {
	out := []CategoryUsage{}
	if len(budgets) == 0 || cfg.PeriodStart.IsZero() || cfg.PeriodEnd.IsZero() {
		return out
	}
	start, end := model.Day(cfg.PeriodStart), model.Day(cfg.PeriodEnd)

	spentBy := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Kind != model.KindExpense || !within(tx.Date, start, end) {
			continue
		}
		spentBy[tx.Category] = spentBy[tx.Category].Add(tx.Amount)
	}

	for category, limit := range budgets {
		if limit.Sign() <= 0 {
			continue
		}
		spent := spentBy[category]
		out = append(out, CategoryUsage{
			Category: category,
			Budget:   limit,
			Spent:    spent,
			Percent:  spent.Div(limit).Mul(decimal.NewFromInt(100)),
			Exceeded: spent.GreaterThan(limit),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Spent.Cmp(out[j].Spent); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func spentBetween(txs []model.Transaction, start, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind == model.KindExpense && within(tx.Date, start, end) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// within compares calendar dates, both bounds inclusive.
func within(t, start, end time.Time) bool {
	d := model.Day(t)
	return !d.Before(start) && !d.After(end)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
