package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Filter narrows the transactions shown in the detailed analysis. Zero fields
// do not filter.
type Filter struct {
	From   time.Time
	To     time.Time
	Kind   model.Kind
	Member string
}

// DefaultFilter covers the last thirty days of data, or everything when the
// ledger is younger than that.
func DefaultFilter(txs []model.Transaction, today time.Time) Filter {
	now := model.Day(today)
	if len(txs) == 0 {
		return Filter{From: now, To: now}
	}
	earliest, latest := model.Day(txs[0].Date), model.Day(txs[0].Date)
	for _, tx := range txs[1:] {
		d := model.Day(tx.Date)
		if d.Before(earliest) {
			earliest = d
		}
		if d.After(latest) {
			latest = d
		}
	}
	from := now.AddDate(0, 0, -30)
	if earliest.After(from) {
		from = earliest
	}
	return Filter{From: from, To: latest}
}

// Apply returns the transactions matching every set field of f.
func (f Filter) Apply(txs []model.Transaction) []model.Transaction {
	from, to := model.Day(f.From), model.Day(f.To)
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		d := model.Day(tx.Date)
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		if f.Kind != "" && tx.Kind != f.Kind {
			continue
		}
		if f.Member != "" && tx.Member != f.Member {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// CategoryTotal is the sum of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// CategoryDistribution totals txs of the given kind by category, largest first.
func CategoryDistribution(txs []model.Transaction, kind model.Kind) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Kind == kind {
			sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
		}
	}
	out := make([]CategoryTotal, 0, len(sums))
	for name, amount := range sums {
		out = append(out, CategoryTotal{Category: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopExpenseCategories returns the n categories with the highest expense.
func TopExpenseCategories(txs []model.Transaction, n int) []CategoryTotal {
	all := CategoryDistribution(txs, model.KindExpense)
	if n >= 0 && len(all) > n {
		return all[:n]
	}
	return all
}

// WeekdayNames are the weekday labels, Monday first.
var WeekdayNames = [7]string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// WeekdayAverage is the mean expense recorded on one weekday.
type WeekdayAverage struct {
	Day     string
	Average decimal.Decimal
	Count   int
}

// WeekdayExpensePattern returns the mean expense amount per weekday, Monday
// first. Weekdays without expenses are omitted.
func WeekdayExpensePattern(txs []model.Transaction) []WeekdayAverage {
	var sums [7]decimal.Decimal
	var counts [7]int
	for _, tx := range txs {
		if tx.Kind != model.KindExpense {
			continue
		}
		idx := (int(tx.Date.Weekday()) + 6) % 7
		sums[idx] = sums[idx].Add(tx.Amount)
		counts[idx]++
	}
	out := []WeekdayAverage{}
	for i := range sums {
		if counts[i] == 0 {
			continue
		}
		out = append(out, WeekdayAverage{
			Day:     WeekdayNames[i],
			Average: sums[i].Div(decimal.NewFromInt(int64(counts[i]))),
			Count:   counts[i],
		})
	}
	return out
}

// DailyFlow is the income and expense of one day plus the running balance.
type DailyFlow struct {
	Date       time.Time
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Net        decimal.Decimal
	Cumulative decimal.Decimal
}

// DailyCashFlow groups income and expense by day in chronological order.
// Transfers are left out.
func DailyCashFlow(txs []model.Transaction) []DailyFlow {
	byDay := make(map[time.Time]*DailyFlow)
	for _, tx := range txs {
		if tx.Kind != model.KindIncome && tx.Kind != model.KindExpense {
			continue
		}
		d := model.Day(tx.Date)
		flow, ok := byDay[d]
		if !ok {
			flow = &DailyFlow{Date: d}
			byDay[d] = flow
		}
		if tx.Kind == model.KindIncome {
			flow.Income = flow.Income.Add(tx.Amount)
		} else {
			flow.Expense = flow.Expense.Add(tx.Amount)
		}
	}

	out := make([]DailyFlow, 0, len(byDay))
	for _, flow := range byDay {
		out = append(out, *flow)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	running := decimal.Zero
	for i := range out {
		out[i].Net = out[i].Income.Sub(out[i].Expense)
		running = running.Add(out[i].Net)
		out[i].Cumulative = running
	}
	return out
}
