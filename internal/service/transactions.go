package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// AddTransaction validates tx against the session's catalog and stores it.
// A zero date means today.
func (s *Tracker) AddTransaction(ctx context.Context, sess *Session, tx model.Transaction) (model.Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = s.Today()
	}
	tx.ID = ""
	tx.GenerateID()
	tx.Normalize()
	if err := validateTransaction(sess, tx); err != nil {
		return model.Transaction{}, err
	}

	next := append(slices.Clone(sess.Transactions), tx)
	if err := s.commitTransactions(ctx, sess, next); err != nil {
		return model.Transaction{}, err
	}

	s.log.Info().
		Str("owner", sess.Owner).
		Str("kind", string(tx.Kind)).
		Str("amount", tx.Amount.StringFixed(2)).
		Msg("transaction added")
	return tx, nil
}

// UpdateTransaction replaces the stored transaction that has tx.ID.
func (s *Tracker) UpdateTransaction(ctx context.Context, sess *Session, tx model.Transaction) error {
	idx := slices.IndexFunc(sess.Transactions, func(t model.Transaction) bool { return t.ID == tx.ID })
	if tx.ID == "" || idx < 0 {
		return fmt.Errorf("transaction %q: %w", tx.ID, ErrNotFound)
	}
	tx.Normalize()
	if err := validateTransaction(sess, tx); err != nil {
		return err
	}

	next := slices.Clone(sess.Transactions)
	next[idx] = tx
	return s.commitTransactions(ctx, sess, next)
}

// DeleteTransactions removes every transaction whose id is listed. Unknown
// ids fail the whole call.
func (s *Tracker) DeleteTransactions(ctx context.Context, sess *Session, ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	next := make([]model.Transaction, 0, len(sess.Transactions))
	for _, t := range sess.Transactions {
		if drop[t.ID] {
			delete(drop, t.ID)
			continue
		}
		next = append(next, t)
	}
	if len(drop) > 0 {
		missing := make([]string, 0, len(drop))
		for id := range drop {
			missing = append(missing, id)
		}
		slices.Sort(missing)
		return fmt.Errorf("transactions %s: %w", strings.Join(missing, ", "), ErrNotFound)
	}
	if err := s.commitTransactions(ctx, sess, next); err != nil {
		return err
	}
	s.log.Info().Str("owner", sess.Owner).Int("deleted", len(ids)).Msg("transactions deleted")
	return nil
}

// Recent returns up to n transactions, newest first.
func (s *Tracker) Recent(sess *Session, n int) []model.Transaction {
	if n <= 0 || n > len(sess.Transactions) {
		n = len(sess.Transactions)
	}
	return slices.Clone(sess.Transactions[:n])
}

// DestinationOptions lists the goals and accounts a transfer from source may target.
func DestinationOptions(sess *Session, source string) []string {
	var out []string
	for _, g := range sess.Goals {
		out = append(out, g.Name)
	}
	for _, a := range sess.Accounts {
		if a.Name != source {
			out = append(out, a.Name)
		}
	}
	return out
}

func validateTransaction(sess *Session, tx model.Transaction) error {
	if tx.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, tx.Amount)
	}
	if !hasAccount(sess.Accounts, tx.Account) {
		return fmt.Errorf("%w: %q", ErrUnknownAccount, tx.Account)
	}
	if tx.Member != model.NotApplicable && !sess.Members.Has(tx.Member) {
		return fmt.Errorf("member %q: %w", tx.Member, ErrNotFound)
	}

	switch tx.Kind {
	case model.KindIncome, model.KindExpense:
		if !sess.Categories.Has(tx.Kind, tx.Category) {
			return fmt.Errorf("%w: %q is not a %s category", ErrUnknownCategory, tx.Category, strings.ToLower(string(tx.Kind)))
		}
	case model.KindTransfer:
		if tx.Destination == tx.Account {
			return ErrSameEndpoints
		}
		if !hasAccount(sess.Accounts, tx.Destination) && !hasGoal(sess.Goals, tx.Destination) {
			return fmt.Errorf("%w: %q", ErrUnknownDestination, tx.Destination)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, tx.Kind)
	}
	return nil
}

func hasAccount(accounts []model.Account, name string) bool {
	return slices.ContainsFunc(accounts, func(a model.Account) bool { return a.Name == name })
}

func hasGoal(goals []model.Goal, name string) bool {
	return slices.ContainsFunc(goals, func(g model.Goal) bool { return g.Name == name })
}
