package service

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/csvio"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// ImportSummary reports what an import changed.
type ImportSummary struct {
	Imported      int
	Skipped       int
	Total         int
	Replaced      bool
	NewMembers    []string
	NewAccounts   []string
	NewCategories []string
}

// ImportCSV reads a history file and appends it to, or with replace
// substitutes, the stored transactions. Members, accounts and categories
// that only appear in the file are registered first.
func (s *Tracker) ImportCSV(ctx context.Context, sess *Session, r io.Reader, replace bool) (ImportSummary, error) {
	res, err := csvio.Import(r)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to read file: %w", err)
	}
	for _, rowErr := range res.Errors {
		s.log.Debug().Err(rowErr).Str("owner", sess.Owner).Msg("skipping csv row")
	}
	if len(res.Transactions) == 0 {
		return ImportSummary{Skipped: res.Skipped}, ErrEmptyImport
	}

	summary := ImportSummary{
		Imported: len(res.Transactions),
		Skipped:  res.Skipped,
		Replaced: replace,
	}
	if err := s.syncMetadata(ctx, sess, res.Transactions, &summary); err != nil {
		return summary, err
	}

	next := res.Transactions
	if !replace {
		next = append(slices.Clone(sess.Transactions), res.Transactions...)
	}
	if err := s.commitTransactions(ctx, sess, next); err != nil {
		return summary, err
	}
	summary.Total = len(sess.Transactions)

	s.log.Info().
		Str("owner", sess.Owner).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Bool("replaced", replace).
		Msg("history imported")
	return summary, nil
}

// syncMetadata registers names referenced by imported rows. Destinations
// that are not goals become accounts.
func (s *Tracker) syncMetadata(ctx context.Context, sess *Session, txs []model.Transaction, summary *ImportSummary) error {
	members := sess.Members
	accounts := slices.Clone(sess.Accounts)
	categories := sess.Categories.Clone()

	addAccount := func(name string) {
		if name == "" || name == model.NotApplicable || hasAccount(accounts, name) || hasGoal(sess.Goals, name) {
			return
		}
		accounts = append(accounts, model.Account{Name: name, Type: model.ImportedAccountType, InitialBalance: decimal.Zero})
		summary.NewAccounts = append(summary.NewAccounts, name)
	}

	for _, t := range txs {
		if t.Member != model.NotApplicable && !members.Has(t.Member) {
			members = members.With(t.Member)
			summary.NewMembers = append(summary.NewMembers, t.Member)
		}
		addAccount(t.Account)
		if t.Kind == model.KindTransfer {
			addAccount(t.Destination)
		}
		if t.Kind != model.KindTransfer && t.Category != model.NotApplicable && categories.Add(t.Kind, t.Category) {
			summary.NewCategories = append(summary.NewCategories, t.Category)
		}
	}

	if len(summary.NewMembers) > 0 {
		if err := s.repo.SaveMembers(ctx, sess.Owner, members); err != nil {
			return fmt.Errorf("failed to save members: %w", err)
		}
		sess.Members = members
	}
	if len(summary.NewAccounts) > 0 {
		if err := s.repo.SaveAccounts(ctx, sess.Owner, accounts); err != nil {
			return fmt.Errorf("failed to save accounts: %w", err)
		}
		sess.Accounts = accounts
	}
	if len(summary.NewCategories) > 0 {
		if err := s.repo.SaveCategories(ctx, sess.Owner, categories); err != nil {
			return fmt.Errorf("failed to save categories: %w", err)
		}
		sess.Categories = categories
	}
	return nil
}

// ExportCSV writes the full history.
func (s *Tracker) ExportCSV(w io.Writer, sess *Session) error {
	return csvio.Export(w, sess.Transactions)
}

// ExportFileName names an export file after the day it was produced.
func ExportFileName(day time.Time) string {
	return "guardian_domestico_historial_" + day.Format("20060102") + ".csv"
}
