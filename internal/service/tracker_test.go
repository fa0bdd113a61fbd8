package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

func TestOpen_NewOwner(t *testing.T) {
	store := newMemStore()
	sess := openSession(t, newTestTracker(store))

	require.True(t, sess.NeedsSetup)
	require.Equal(t, model.DefaultAccounts(), sess.Accounts)
	require.Equal(t, model.DefaultCategories(), sess.Categories)
	require.Empty(t, sess.Transactions)
	require.Equal(t, day(2024, 1, 10), sess.Budget.PeriodStart)
	require.Equal(t, day(2024, 1, 25), sess.Budget.PeriodEnd)
	requireDecimal(t, "1000", sess.Budget.Amount)
	require.Equal(t, day(2024, 1, 10), sess.Filter.From)
	require.Equal(t, day(2024, 1, 10), sess.Filter.To)

	require.Empty(t, store.accounts[owner], "defaults are not stored until used")
}

func TestOpen_ReconcilesGoals(t *testing.T) {
	store := seededStore()
	store.txs[owner] = []model.Transaction{
		{ID: "a", Date: day(2023, 12, 1), Kind: model.KindTransfer, Account: "Banco", Destination: "Fondo de Emergencia",
			Amount: dec("150"), Category: model.NotApplicable, Member: model.NotApplicable, Frequency: model.FrequencyOneOff},
		{ID: "b", Date: day(2024, 1, 2), Kind: model.KindTransfer, Account: "Banco", Destination: "Fondo de Emergencia",
			Amount: dec("50"), Category: model.NotApplicable, Member: model.NotApplicable, Frequency: model.FrequencyOneOff},
	}
	store.config[owner+"/"+model.BudgetConfigKey] = []byte(`{"period_start":"2024-01-01","period_end":"2024-01-31","budget_amount":1000}`)

	sess := openSession(t, newTestTracker(store))

	require.False(t, sess.NeedsSetup)
	require.Len(t, sess.Goals, 1)
	requireDecimal(t, "200", sess.Goals[0].Contributed)
	requireDecimal(t, "200", store.goals[owner][0].Contributed)
	require.Equal(t, "b", sess.Transactions[0].ID, "newest first")
	require.Equal(t, day(2024, 1, 1), sess.Budget.PeriodStart)
	require.Equal(t, day(2023, 12, 11), sess.Filter.From)
	require.Equal(t, day(2024, 1, 2), sess.Filter.To)
}

func TestOpen_TransactionsWithoutAccountsSkipSetup(t *testing.T) {
	store := newMemStore()
	store.txs[owner] = []model.Transaction{{ID: "x", Date: day(2024, 1, 1), Kind: model.KindExpense, Category: "Comida",
		Account: "Efectivo", Amount: dec("5"), Member: model.NotApplicable, Destination: model.NotApplicable}}

	sess := openSession(t, newTestTracker(store))
	require.False(t, sess.NeedsSetup)
}

func TestAddTransaction_IncomeUpdatesBalance(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	tx, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind: model.KindIncome, Category: "Salario", Account: "Banco", Amount: dec("1000"), Member: "Ana",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tx.ID)
	require.Equal(t, day(2024, 1, 10), tx.Date)
	require.Len(t, store.txs[owner], 1)

	dash := tracker.Dashboard(sess)
	require.Len(t, dash.Accounts, 1)
	requireDecimal(t, "1000", dash.Accounts[0].CurrentBalance)
	requireDecimal(t, "1000", dash.Totals.Net)
}

func TestAddTransaction_TransferToGoal(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	_, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind: model.KindTransfer, Account: "Banco", Destination: "Fondo de Emergencia", Amount: dec("200"),
		Category: "Comida", IsRecurring: true, Frequency: model.FrequencyMonthly,
	})
	require.NoError(t, err)

	stored := store.txs[owner][0]
	require.Equal(t, model.NotApplicable, stored.Category)
	require.False(t, stored.IsRecurring)

	require.Len(t, sess.Goals, 1)
	requireDecimal(t, "200", sess.Goals[0].Contributed)
	requireDecimal(t, "4", sess.Goals[0].Progress())
	requireDecimal(t, "200", store.goals[owner][0].Contributed)

	dash := tracker.Dashboard(sess)
	requireDecimal(t, "-200", dash.Accounts[0].CurrentBalance)
	require.True(t, dash.Totals.Net.IsZero(), "transfers are not income or expense")
}

func TestAddTransaction_Validation(t *testing.T) {
	tests := []struct {
		name string
		tx   model.Transaction
		want error
	}{
		{
			name: "zero amount",
			tx:   model.Transaction{Kind: model.KindExpense, Category: "Comida", Account: "Banco"},
			want: ErrInvalidAmount,
		},
		{
			name: "unknown account",
			tx:   model.Transaction{Kind: model.KindExpense, Category: "Comida", Account: "Caja", Amount: dec("1")},
			want: ErrUnknownAccount,
		},
		{
			name: "income category used for expense",
			tx:   model.Transaction{Kind: model.KindExpense, Category: "Salario", Account: "Banco", Amount: dec("1")},
			want: ErrUnknownCategory,
		},
		{
			name: "transfer to itself",
			tx:   model.Transaction{Kind: model.KindTransfer, Account: "Banco", Destination: "Banco", Amount: dec("1")},
			want: ErrSameEndpoints,
		},
		{
			name: "transfer to nowhere",
			tx:   model.Transaction{Kind: model.KindTransfer, Account: "Banco", Destination: "Viaje", Amount: dec("1")},
			want: ErrUnknownDestination,
		},
		{
			name: "unknown member",
			tx:   model.Transaction{Kind: model.KindExpense, Category: "Comida", Account: "Banco", Amount: dec("1"), Member: "Pedro"},
			want: ErrNotFound,
		},
		{
			name: "unknown kind",
			tx:   model.Transaction{Kind: "Préstamo", Account: "Banco", Amount: dec("1")},
			want: ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			tracker := newTestTracker(store)
			sess := openSession(t, tracker)

			_, err := tracker.AddTransaction(context.Background(), sess, tt.tx)
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, sess.Transactions)
			require.Empty(t, store.txs[owner])
		})
	}
}

func TestAddTransaction_StoreFailureKeepsSession(t *testing.T) {
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)
	store.failSaves = true

	_, err := tracker.AddTransaction(context.Background(), sess, model.Transaction{
		Kind: model.KindExpense, Category: "Comida", Account: "Banco", Amount: dec("10"),
	})
	require.ErrorIs(t, err, errStoreDown)
	require.Empty(t, sess.Transactions)
}

func TestUpdateAndDeleteTransactions(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	first, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Date: day(2024, 1, 3), Kind: model.KindExpense, Category: "Comida", Account: "Banco", Amount: dec("10"),
	})
	require.NoError(t, err)
	second, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Date: day(2024, 1, 5), Kind: model.KindExpense, Category: "Transporte", Account: "Banco", Amount: dec("4"),
	})
	require.NoError(t, err)
	require.Equal(t, second.ID, tracker.Recent(sess, 1)[0].ID)

	first.Amount = dec("12.5")
	first.Description = "Mercado"
	require.NoError(t, tracker.UpdateTransaction(ctx, sess, first))
	requireDecimal(t, "12.5", sess.Transactions[1].Amount)
	require.Equal(t, "Mercado", store.txs[owner][1].Description)

	err = tracker.UpdateTransaction(ctx, sess, model.Transaction{ID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)

	err = tracker.DeleteTransactions(ctx, sess, second.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.Len(t, sess.Transactions, 2)

	require.NoError(t, tracker.DeleteTransactions(ctx, sess, second.ID))
	require.Len(t, sess.Transactions, 1)
	require.Equal(t, first.ID, store.txs[owner][0].ID)
}

func TestDestinationOptions(t *testing.T) {
	sess := &Session{
		Accounts: []model.Account{{Name: "Banco"}, {Name: "Efectivo"}},
		Goals:    []model.Goal{{Name: "Viaje", TargetAmount: decimal.NewFromInt(1)}},
	}
	require.Equal(t, []string{"Viaje", "Efectivo"}, DestinationOptions(sess, "Banco"))
}
