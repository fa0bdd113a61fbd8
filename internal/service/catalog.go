package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// AddAccount registers a new account. Names are shared with goals because
// both can be the destination of a transfer.
func (s *Tracker) AddAccount(ctx context.Context, sess *Session, name, accountType string, initial decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("account: %w", ErrEmptyName)
	}
	if hasAccount(sess.Accounts, name) || hasGoal(sess.Goals, name) {
		return fmt.Errorf("account %q: %w", name, ErrDuplicate)
	}

	next := append(slices.Clone(sess.Accounts), model.Account{
		Name:           name,
		Type:           strings.TrimSpace(accountType),
		InitialBalance: initial,
	})
	if err := s.repo.SaveAccounts(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	sess.Accounts = next
	sess.NeedsSetup = false
	s.log.Info().Str("owner", sess.Owner).Str("account", name).Msg("account added")
	return nil
}

// DeleteAccount removes an account nothing refers to.
func (s *Tracker) DeleteAccount(ctx context.Context, sess *Session, name string) error {
	if !hasAccount(sess.Accounts, name) {
		return fmt.Errorf("account %q: %w", name, ErrNotFound)
	}
	if slices.ContainsFunc(sess.Transactions, func(t model.Transaction) bool { return t.References(name) }) {
		return fmt.Errorf("account %q: %w", name, ErrAccountInUse)
	}

	next := slices.DeleteFunc(slices.Clone(sess.Accounts), func(a model.Account) bool { return a.Name == name })
	if err := s.repo.SaveAccounts(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	sess.Accounts = next
	s.log.Info().Str("owner", sess.Owner).Str("account", name).Msg("account deleted")
	return nil
}

// AddCategory registers name for an income or expense kind.
func (s *Tracker) AddCategory(ctx context.Context, sess *Session, kind model.Kind, name string) error {
	if kind != model.KindIncome && kind != model.KindExpense {
		return fmt.Errorf("%w: categories belong to %s or %s", ErrInvalidKind, model.KindIncome, model.KindExpense)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category: %w", ErrEmptyName)
	}

	next := sess.Categories.Clone()
	if !next.Add(kind, name) {
		return fmt.Errorf("category %q in %s: %w", name, kind, ErrDuplicate)
	}
	if err := s.repo.SaveCategories(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	sess.Categories = next
	return nil
}

// DeleteCategory removes a category no transaction uses. Removing an expense
// category also drops its spending cap.
func (s *Tracker) DeleteCategory(ctx context.Context, sess *Session, kind model.Kind, name string) error {
	if !sess.Categories.Has(kind, name) {
		return fmt.Errorf("category %q in %s: %w", name, kind, ErrNotFound)
	}
	if slices.ContainsFunc(sess.Transactions, func(t model.Transaction) bool { return t.Category == name }) {
		return fmt.Errorf("category %q: %w", name, ErrCategoryInUse)
	}

	next := sess.Categories.Clone()
	next.Remove(kind, name)

	if err := s.repo.SaveCategories(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	sess.Categories = next

	// A cap left behind only matters if the category comes back.
	if _, capped := sess.CategoryBudgets[name]; kind == model.KindExpense && capped {
		budgets := sess.CategoryBudgets.Clone()
		delete(budgets, name)
		if err := s.repo.SaveConfig(ctx, sess.Owner, model.CategoryBudgetsKey, budgets); err != nil {
			s.log.Warn().Err(err).Str("owner", sess.Owner).Str("category", name).Msg("failed to drop cap of deleted category")
			return nil
		}
		sess.CategoryBudgets = budgets
	}
	return nil
}

// AddMember registers a household member label.
func (s *Tracker) AddMember(ctx context.Context, sess *Session, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == model.NotApplicable {
		return fmt.Errorf("member: %w", ErrEmptyName)
	}
	if sess.Members.Has(name) {
		return fmt.Errorf("member %q: %w", name, ErrDuplicate)
	}

	next := sess.Members.With(name)
	if err := s.repo.SaveMembers(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save members: %w", err)
	}
	sess.Members = next
	return nil
}

// DeleteMember removes a member no transaction is attributed to.
func (s *Tracker) DeleteMember(ctx context.Context, sess *Session, name string) error {
	if !sess.Members.Has(name) {
		return fmt.Errorf("member %q: %w", name, ErrNotFound)
	}
	if slices.ContainsFunc(sess.Transactions, func(t model.Transaction) bool { return t.Member == name }) {
		return fmt.Errorf("member %q: %w", name, ErrMemberInUse)
	}

	next := sess.Members.Without(name)
	if err := s.repo.SaveMembers(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save members: %w", err)
	}
	sess.Members = next
	return nil
}

// AddGoal registers a savings goal. A zero target date means none.
func (s *Tracker) AddGoal(ctx context.Context, sess *Session, name string, target decimal.Decimal, targetDate time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("goal: %w", ErrEmptyName)
	}
	if target.Sign() <= 0 {
		return fmt.Errorf("%w: goal target must be greater than zero", ErrInvalidAmount)
	}
	if hasGoal(sess.Goals, name) || hasAccount(sess.Accounts, name) {
		return fmt.Errorf("goal %q: %w", name, ErrDuplicate)
	}

	goals := append(slices.Clone(sess.Goals), model.Goal{
		Name:         name,
		TargetAmount: target,
		TargetDate:   model.Day(targetDate),
	})
	next := ledger.ReconcileGoals(sess.Transactions, goals)
	if err := s.repo.SaveGoals(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}
	sess.Goals = next
	s.log.Info().Str("owner", sess.Owner).Str("goal", name).Msg("goal added")
	return nil
}

// DeleteGoal removes a goal that never received a transfer.
func (s *Tracker) DeleteGoal(ctx context.Context, sess *Session, name string) error {
	if !hasGoal(sess.Goals, name) {
		return fmt.Errorf("goal %q: %w", name, ErrNotFound)
	}
	if slices.ContainsFunc(sess.Transactions, func(t model.Transaction) bool { return t.Destination == name }) {
		return fmt.Errorf("goal %q: %w", name, ErrGoalInUse)
	}

	next := slices.DeleteFunc(slices.Clone(sess.Goals), func(g model.Goal) bool { return g.Name == name })
	if err := s.repo.SaveGoals(ctx, sess.Owner, next); err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}
	sess.Goals = next
	return nil
}
