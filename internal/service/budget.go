package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// UpdateBudget replaces the global spending window.
func (s *Tracker) UpdateBudget(ctx context.Context, sess *Session, start, end time.Time, amount decimal.Decimal) error {
	start, end = model.Day(start), model.Day(end)
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidPeriod
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidAmount)
	}

	cfg := model.BudgetConfig{PeriodStart: start, PeriodEnd: end, Amount: amount}
	if err := s.repo.SaveConfig(ctx, sess.Owner, model.BudgetConfigKey, cfg); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	sess.Budget = cfg
	s.log.Info().
		Str("owner", sess.Owner).
		Str("start", start.Format(model.DateLayout)).
		Str("end", end.Format(model.DateLayout)).
		Str("amount", amount.StringFixed(2)).
		Msg("budget updated")
	return nil
}

// SetCategoryBudget caps spending of an expense category inside the budget
// window. A zero amount removes the cap.
func (s *Tracker) SetCategoryBudget(ctx context.Context, sess *Session, category string, amount decimal.Decimal) error {
	if !sess.Categories.Has(model.KindExpense, category) {
		return fmt.Errorf("%w: %q is not an expense category", ErrUnknownCategory, category)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: category budget must not be negative", ErrInvalidAmount)
	}

	next := sess.CategoryBudgets.Clone()
	if amount.IsZero() {
		delete(next, category)
	} else {
		next[category] = amount
	}
	if err := s.repo.SaveConfig(ctx, sess.Owner, model.CategoryBudgetsKey, next); err != nil {
		return fmt.Errorf("failed to save category budgets: %w", err)
	}
	sess.CategoryBudgets = next
	return nil
}

// SetFilter changes the window of the detailed analysis. It is session state
// only and is never stored.
func (s *Tracker) SetFilter(sess *Session, f ledger.Filter) error {
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return ErrInvalidPeriod
	}
	if f.Kind != "" && f.Kind != model.KindIncome && f.Kind != model.KindExpense && f.Kind != model.KindTransfer {
		return fmt.Errorf("%w: %q", ErrInvalidKind, f.Kind)
	}
	sess.Filter = f
	return nil
}

// ResetFilter restores the default last-thirty-days window.
func (s *Tracker) ResetFilter(sess *Session) {
	sess.Filter = ledger.DefaultFilter(sess.Transactions, s.Today())
}
