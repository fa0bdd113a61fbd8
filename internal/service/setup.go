package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Defaults applied by the first-run setup.
const (
	DefaultHolder         = "Titular Principal"
	DefaultMainAccount    = "Cuenta Principal"
	DefaultFirstGoal      = "Fondo de Emergencia"
	MainAccountType       = "Banco"
	MainIncomeCategory    = "Salario"
	MainIncomeDescription = "Ingreso Principal (Configuración Inicial)"
)

// SetupInput is what the first-run assistant collects.
type SetupInput struct {
	Members         []string
	IncomeAmount    decimal.Decimal
	IncomeFrequency model.Frequency
	IncomeMember    string
	AccountName     string
	AccountBalance  decimal.Decimal
	GoalName        string
	GoalTarget      decimal.Decimal
	GoalDays        int
}

// SetupResult tells the caller which member received the main income.
type SetupResult struct {
	IncomeMember string
	Reassigned   bool
}

// RunSetup seeds a new household: members, main account, the recurring main
// income, a first goal and the default categories and budgets.
func (s *Tracker) RunSetup(ctx context.Context, sess *Session, in SetupInput) (SetupResult, error) {
	if !sess.NeedsSetup {
		return SetupResult{}, ErrAlreadyConfigured
	}
	if in.IncomeAmount.Sign() <= 0 {
		return SetupResult{}, fmt.Errorf("%w: income must be greater than zero", ErrInvalidAmount)
	}
	if in.AccountBalance.Sign() < 0 {
		return SetupResult{}, fmt.Errorf("%w: initial balance must not be negative", ErrInvalidAmount)
	}
	if in.GoalTarget.Sign() <= 0 {
		return SetupResult{}, fmt.Errorf("%w: goal target must be greater than zero", ErrInvalidAmount)
	}
	if in.GoalDays < 1 {
		return SetupResult{}, ErrInvalidPeriod
	}
	if in.IncomeFrequency == model.FrequencyOneOff || !slices.Contains(model.Frequencies, in.IncomeFrequency) {
		return SetupResult{}, fmt.Errorf("invalid income frequency %q", in.IncomeFrequency)
	}

	members := model.Members{}
	for _, m := range in.Members {
		if m = strings.TrimSpace(m); m != "" && !members.Has(m) {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		members = model.Members{DefaultHolder}
	}
	result := SetupResult{IncomeMember: strings.TrimSpace(in.IncomeMember)}
	if !members.Has(result.IncomeMember) {
		result.IncomeMember = members[0]
		result.Reassigned = true
	}
	sort.Strings(members)

	accountName := strings.TrimSpace(in.AccountName)
	if accountName == "" {
		accountName = DefaultMainAccount
	}
	accounts := model.DefaultAccounts()
	if hasAccount(accounts, accountName) {
		accounts = nil
	}
	accounts = append(accounts, model.Account{Name: accountName, Type: MainAccountType, InitialBalance: in.AccountBalance})

	goalName := strings.TrimSpace(in.GoalName)
	if goalName == "" {
		goalName = DefaultFirstGoal
	}
	if hasAccount(accounts, goalName) {
		return SetupResult{}, fmt.Errorf("goal %q: %w", goalName, ErrDuplicate)
	}

	today := s.Today()
	income := model.Transaction{
		Date:        today,
		Kind:        model.KindIncome,
		Category:    MainIncomeCategory,
		Account:     accountName,
		Amount:      in.IncomeAmount,
		Description: MainIncomeDescription,
		Member:      result.IncomeMember,
		IsRecurring: true,
		Frequency:   in.IncomeFrequency,
	}
	income.GenerateID()
	income.Normalize()
	txs := []model.Transaction{income}

	goals := ledger.ReconcileGoals(txs, []model.Goal{{
		Name:         goalName,
		TargetAmount: in.GoalTarget,
		TargetDate:   today.AddDate(0, 0, in.GoalDays),
	}})
	categories := model.DefaultCategories()
	catBudgets := model.CategoryBudgets{}
	budget := model.DefaultBudgetConfig(today)

	if err := s.repo.SaveMembers(ctx, sess.Owner, members); err != nil {
		return result, fmt.Errorf("failed to save members: %w", err)
	}
	if err := s.repo.SaveAccounts(ctx, sess.Owner, accounts); err != nil {
		return result, fmt.Errorf("failed to save accounts: %w", err)
	}
	if err := s.repo.SaveTransactions(ctx, sess.Owner, txs); err != nil {
		return result, fmt.Errorf("failed to save transactions: %w", err)
	}
	if err := s.repo.SaveGoals(ctx, sess.Owner, goals); err != nil {
		return result, fmt.Errorf("failed to save goals: %w", err)
	}
	if err := s.repo.SaveCategories(ctx, sess.Owner, categories); err != nil {
		return result, fmt.Errorf("failed to save categories: %w", err)
	}
	if err := s.repo.SaveConfig(ctx, sess.Owner, model.CategoryBudgetsKey, catBudgets); err != nil {
		return result, fmt.Errorf("failed to save category budgets: %w", err)
	}
	if err := s.repo.SaveConfig(ctx, sess.Owner, model.BudgetConfigKey, budget); err != nil {
		return result, fmt.Errorf("failed to save budget: %w", err)
	}

	sess.Members = members
	sess.Accounts = accounts
	sess.Transactions = txs
	sess.Goals = goals
	sess.Categories = categories
	sess.CategoryBudgets = catBudgets
	sess.Budget = budget
	sess.Filter = ledger.DefaultFilter(txs, today)
	sess.NeedsSetup = false

	s.log.Info().
		Str("owner", sess.Owner).
		Int("members", len(members)).
		Str("account", accountName).
		Str("goal", goalName).
		Msg("household configured")
	return result, nil
}
