package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Dashboard is the household summary. KPIs, balances and budgets use the
// whole history; the detailed analysis uses the session filter.
type Dashboard struct {
	Today  time.Time
	Filter ledger.Filter

	Totals     ledger.Totals
	Projection ledger.Projection
	Budget     ledger.BudgetStatus
	BudgetCfg  model.BudgetConfig
	Accounts   []ledger.AccountBalance
	Goals      []model.Goal
	Usage      []ledger.CategoryUsage

	Filtered            ledger.Totals
	Previous            ledger.Totals
	SavingsRate         decimal.Decimal
	TopExpenses         []ledger.CategoryTotal
	ExpenseDistribution []ledger.CategoryTotal
	IncomeDistribution  []ledger.CategoryTotal
	Weekday             []ledger.WeekdayAverage
	Flow                []ledger.DailyFlow

	Text string
}

// Dashboard assembles the summary for the session as of today.
func (s *Tracker) Dashboard(sess *Session) Dashboard {
	today := s.Today()
	all := sess.Transactions
	filtered := sess.Filter.Apply(all)

	d := Dashboard{
		Today:      today,
		Filter:     sess.Filter,
		Totals:     ledger.Balance(all),
		Projection: ledger.RecurringProjection(all),
		Budget:     ledger.PeriodBudget(sess.Budget, all, today),
		BudgetCfg:  sess.Budget,
		Accounts:   ledger.AccountBalances(all, sess.Accounts),
		Goals:      ledger.ReconcileGoals(all, sess.Goals),
		Usage:      ledger.CategoryBudgetUsage(sess.Budget, sess.CategoryBudgets, all),

		Filtered:            ledger.Balance(filtered),
		TopExpenses:         ledger.TopExpenseCategories(filtered, 5),
		ExpenseDistribution: ledger.CategoryDistribution(filtered, model.KindExpense),
		IncomeDistribution:  ledger.CategoryDistribution(filtered, model.KindIncome),
		Weekday:             ledger.WeekdayExpensePattern(all),
		Flow:                ledger.DailyCashFlow(filtered),
	}
	if prev, ok := previousWindow(sess.Filter); ok {
		d.Previous = ledger.Balance(prev.Apply(all))
	}
	d.SavingsRate = savingsRate(d.Filtered)
	d.Text = formatDashboard(d)
	return d
}

// previousWindow is the window of the same length right before f. Open
// ended filters have none.
func previousWindow(f ledger.Filter) (ledger.Filter, bool) {
	if f.From.IsZero() || f.To.IsZero() {
		return ledger.Filter{}, false
	}
	days := int(model.Day(f.To).Sub(model.Day(f.From)).Hours()/24) + 1
	return ledger.Filter{
		From:   model.Day(f.From).AddDate(0, 0, -days),
		To:     model.Day(f.From).AddDate(0, 0, -1),
		Kind:   f.Kind,
		Member: f.Member,
	}, true
}

var hundred = decimal.NewFromInt(100)

func savingsRate(t ledger.Totals) decimal.Decimal {
	if t.Income.Sign() <= 0 {
		return decimal.Zero
	}
	return t.Net.Div(t.Income).Mul(hundred)
}

func formatDashboard(d Dashboard) string {
	var b strings.Builder

	balanceIcon := "💹"
	if d.Totals.Net.Sign() < 0 {
		balanceIcon = "📉"
	}
	surplusIcon := "⚠️"
	if d.Projection.Surplus.Sign() > 0 {
		surplusIcon = "🚀"
	}

	b.WriteString("📈 Métricas clave\n")
	fmt.Fprintf(&b, "%s Balance neto total: %s\n", balanceIcon, Money(d.Totals.Net))
	fmt.Fprintf(&b, "   Ingresos: %s | Gastos: %s\n", Money(d.Totals.Income), Money(d.Totals.Expense))
	fmt.Fprintf(&b, "💰 Presupuesto restante: %s (hasta %s)\n", Money(d.Budget.Remaining), d.BudgetCfg.PeriodEnd.Format("02/01/2006"))
	fmt.Fprintf(&b, "⏳ Presupuesto diario: %s (%d días)\n", Money(d.Budget.DailyRate), d.Budget.DaysLeft)
	fmt.Fprintf(&b, "%s Superávit fijo mensual: %s\n", surplusIcon, Money(d.Projection.Surplus))
	fmt.Fprintf(&b, "   Ingreso fijo: %s | Gasto fijo: %s\n", Money(d.Projection.Income), Money(d.Projection.Expense))

	if len(d.Accounts) > 0 {
		b.WriteString("\n🏦 Saldos\n")
		for _, a := range d.Accounts {
			fmt.Fprintf(&b, "• %s (%s): %s (%s vs. inicial)\n", a.Name, a.Type, Money(a.CurrentBalance), signedMoney(a.Change()))
		}
	}

	if len(d.Goals) > 0 {
		b.WriteString("\n🎯 Metas\n")
		for _, g := range d.Goals {
			fmt.Fprintf(&b, "• %s: %s / %s (%s%%)\n", g.Name, Money(g.Contributed), Money(g.TargetAmount), g.Progress().StringFixed(1))
		}
	}

	if len(d.Usage) > 0 {
		b.WriteString("\n🏷️ Presupuesto por categoría\n")
		for _, u := range d.Usage {
			icon := "✅"
			if u.Exceeded {
				icon = "🔴"
			}
			fmt.Fprintf(&b, "%s %s: %s / %s (%s%%)\n", icon, u.Category, Money(u.Spent), Money(u.Budget), u.Percent.StringFixed(0))
		}
	}

	fmt.Fprintf(&b, "\n🔍 Periodo %s al %s\n", d.Filter.From.Format("02/01"), d.Filter.To.Format("02/01/2006"))
	fmt.Fprintf(&b, "💰 Ingresos: %s%s\n", Money(d.Filtered.Income), formatChange(d.Filtered.Income, d.Previous.Income))
	fmt.Fprintf(&b, "💸 Gastos: %s%s\n", Money(d.Filtered.Expense), formatChange(d.Filtered.Expense, d.Previous.Expense))
	fmt.Fprintf(&b, "📊 Balance: %s%s\n", Money(d.Filtered.Net), formatChange(d.Filtered.Net, d.Previous.Net))
	fmt.Fprintf(&b, "💹 Tasa de ahorro: %s%%\n", d.SavingsRate.StringFixed(1))

	if len(d.TopExpenses) > 0 {
		b.WriteString("\n🏆 Top gastos\n")
		for i, c := range d.TopExpenses {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Category, Money(c.Amount))
		}
	}
	return b.String()
}

var changeLimit = decimal.NewFromInt(1000)

// formatChange renders the relative change against the previous window.
func formatChange(current, previous decimal.Decimal) string {
	if previous.IsZero() {
		return ""
	}
	change := current.Sub(previous).Div(previous.Abs()).Mul(hundred)
	if change.GreaterThan(changeLimit) {
		change = changeLimit
	} else if change.LessThan(changeLimit.Neg()) {
		change = changeLimit.Neg()
	}
	if change.Sign() > 0 {
		return fmt.Sprintf(" (+%s%%⬆️)", change.StringFixed(1))
	}
	return fmt.Sprintf(" (%s%%⬇️)", change.StringFixed(1))
}

// Money formats an amount as $1,234.56.
func Money(d decimal.Decimal) string {
	neg := d.Sign() < 0
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	out := "$" + grouped.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func signedMoney(d decimal.Decimal) string {
	if d.Sign() > 0 {
		return "+" + Money(d)
	}
	return Money(d)
}
