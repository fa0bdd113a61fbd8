package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Repository is the persistence the tracker needs.
type Repository interface {
	LoadTransactions(ctx context.Context, owner string) ([]model.Transaction, error)
	SaveTransactions(ctx context.Context, owner string, txs []model.Transaction) error
	LoadAccounts(ctx context.Context, owner string) ([]model.Account, error)
	SaveAccounts(ctx context.Context, owner string, accounts []model.Account) error
	LoadGoals(ctx context.Context, owner string) ([]model.Goal, error)
	SaveGoals(ctx context.Context, owner string, goals []model.Goal) error
	LoadCategories(ctx context.Context, owner string) (model.CategoryRegistry, error)
	SaveCategories(ctx context.Context, owner string, categories model.CategoryRegistry) error
	LoadMembers(ctx context.Context, owner string) (model.Members, error)
	SaveMembers(ctx context.Context, owner string, members model.Members) error
	LoadConfig(ctx context.Context, owner, key string, dst any) (bool, error)
	SaveConfig(ctx context.Context, owner, key string, value any) error
}

// Tracker runs every household operation against an open Session.
type Tracker struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewTracker creates a tracker backed by repo.
func NewTracker(repo Repository, log zerolog.Logger) *Tracker {
	return &Tracker{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (s *Tracker) WithClock(now func() time.Time) *Tracker {
	s.now = now
	return s
}

// Today is the current day in the tracker's clock.
func (s *Tracker) Today() time.Time {
	return model.Day(s.now())
}

// Session is everything loaded for one owner between login and logout.
// Mutations go through the Tracker, which replaces fields only after the
// store accepted the write.
type Session struct {
	Owner           string
	Transactions    []model.Transaction
	Accounts        []model.Account
	Goals           []model.Goal
	Categories      model.CategoryRegistry
	Members         model.Members
	Budget          model.BudgetConfig
	CategoryBudgets model.CategoryBudgets
	Filter          ledger.Filter
	// NeedsSetup is set when the owner has neither accounts nor transactions.
	NeedsSetup bool
	OpenedAt   time.Time
}

// Open loads the owner's data and reconciles goal contributions.
func (s *Tracker) Open(ctx context.Context, owner string) (*Session, error) {
	txs, err := s.repo.LoadTransactions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	accounts, err := s.repo.LoadAccounts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	goals, err := s.repo.LoadGoals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	categories, err := s.repo.LoadCategories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	members, err := s.repo.LoadMembers(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	today := s.Today()
	budget := model.DefaultBudgetConfig(today)
	if _, err := s.repo.LoadConfig(ctx, owner, model.BudgetConfigKey, &budget); err != nil {
		s.log.Warn().Err(err).Str("owner", owner).Msg("using default budget window")
		budget = model.DefaultBudgetConfig(today)
	}
	catBudgets := model.CategoryBudgets{}
	if _, err := s.repo.LoadConfig(ctx, owner, model.CategoryBudgetsKey, &catBudgets); err != nil {
		s.log.Warn().Err(err).Str("owner", owner).Msg("ignoring stored category budgets")
		catBudgets = model.CategoryBudgets{}
	}

	sess := &Session{
		Owner:           owner,
		Transactions:    sortByDate(txs),
		Accounts:        accounts,
		Goals:           ledger.ReconcileGoals(txs, goals),
		Categories:      categories,
		Members:         members,
		Budget:          budget,
		CategoryBudgets: catBudgets,
		Filter:          ledger.DefaultFilter(txs, today),
		NeedsSetup:      len(accounts) == 0 && len(txs) == 0,
		OpenedAt:        s.now(),
	}
	if len(sess.Accounts) == 0 {
		sess.Accounts = model.DefaultAccounts()
	}
	if len(sess.Categories[model.KindIncome]) == 0 && len(sess.Categories[model.KindExpense]) == 0 {
		sess.Categories = model.DefaultCategories()
	}
	if sess.Members == nil {
		sess.Members = model.Members{}
	}

	if len(sess.Goals) > 0 {
		s.persistGoals(ctx, sess, sess.Goals)
	}

	s.log.Info().
		Str("owner", owner).
		Int("transactions", len(sess.Transactions)).
		Int("accounts", len(sess.Accounts)).
		Int("goals", len(sess.Goals)).
		Bool("needs_setup", sess.NeedsSetup).
		Msg("session opened")
	return sess, nil
}

// persistGoals writes the reconciled goals. The contribution column is
// derived, so a failed write is logged and the session keeps going.
func (s *Tracker) persistGoals(ctx context.Context, sess *Session, goals []model.Goal) {
	if err := s.repo.SaveGoals(ctx, sess.Owner, goals); err != nil {
		s.log.Warn().Err(err).Str("owner", sess.Owner).Msg("failed to store goal progress")
	}
}

// commitTransactions stores txs and then makes them, and the goals derived
// from them, the session's state.
func (s *Tracker) commitTransactions(ctx context.Context, sess *Session, txs []model.Transaction) error {
	txs = sortByDate(txs)
	if err := s.repo.SaveTransactions(ctx, sess.Owner, txs); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	sess.Transactions = txs
	if len(txs) > 0 {
		sess.NeedsSetup = false
	}
	sess.Goals = ledger.ReconcileGoals(txs, sess.Goals)
	s.persistGoals(ctx, sess, sess.Goals)
	return nil
}

// sortByDate orders newest first, keeping entry order for equal dates.
func sortByDate(txs []model.Transaction) []model.Transaction {
	out := slices.Clone(txs)
	if out == nil {
		out = []model.Transaction{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
