package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

func TestAddAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)
	require.True(t, sess.NeedsSetup)

	require.NoError(t, tracker.AddAccount(ctx, sess, " Tarjeta ", "Crédito", dec("-50")))
	require.False(t, sess.NeedsSetup)
	require.Len(t, store.accounts[owner], 2, "the default cash account is stored with the new one")
	require.Equal(t, "Tarjeta", store.accounts[owner][1].Name)

	require.ErrorIs(t, tracker.AddAccount(ctx, sess, "Tarjeta", "", decimal.Zero), ErrDuplicate)
	require.ErrorIs(t, tracker.AddAccount(ctx, sess, "  ", "", decimal.Zero), ErrEmptyName)
}

func TestAccountAndGoalShareNames(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(seededStore())
	sess := openSession(t, tracker)

	require.ErrorIs(t, tracker.AddAccount(ctx, sess, "Fondo de Emergencia", "", decimal.Zero), ErrDuplicate)
	require.ErrorIs(t, tracker.AddGoal(ctx, sess, "Banco", dec("10"), time.Time{}), ErrDuplicate)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	store.accounts[owner] = append(store.accounts[owner], model.Account{Name: "Ahorros", Type: "Banco"})
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	_, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind: model.KindTransfer, Account: "Banco", Destination: "Ahorros", Amount: dec("30"),
	})
	require.NoError(t, err)

	require.ErrorIs(t, tracker.DeleteAccount(ctx, sess, "Ahorros"), ErrAccountInUse)
	require.ErrorIs(t, tracker.DeleteAccount(ctx, sess, "Banco"), ErrAccountInUse)
	require.ErrorIs(t, tracker.DeleteAccount(ctx, sess, "Caja"), ErrNotFound)

	require.NoError(t, tracker.AddAccount(ctx, sess, "Caja", "Efectivo", decimal.Zero))
	require.NoError(t, tracker.DeleteAccount(ctx, sess, "Caja"))
	require.Len(t, store.accounts[owner], 2)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	require.NoError(t, tracker.AddCategory(ctx, sess, model.KindExpense, "Mascotas"))
	require.True(t, store.cats[owner].Has(model.KindExpense, "Mascotas"))
	require.ErrorIs(t, tracker.AddCategory(ctx, sess, model.KindExpense, "Mascotas"), ErrDuplicate)
	require.ErrorIs(t, tracker.AddCategory(ctx, sess, model.KindTransfer, "Otra"), ErrInvalidKind)

	require.NoError(t, tracker.SetCategoryBudget(ctx, sess, "Mascotas", dec("80")))
	require.NoError(t, tracker.DeleteCategory(ctx, sess, model.KindExpense, "Mascotas"))
	require.NotContains(t, sess.CategoryBudgets, "Mascotas")
	require.Contains(t, string(store.config[owner+"/"+model.CategoryBudgetsKey]), "{}")

	_, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind: model.KindExpense, Category: "Comida", Account: "Banco", Amount: dec("12"),
	})
	require.NoError(t, err)
	require.ErrorIs(t, tracker.DeleteCategory(ctx, sess, model.KindExpense, "Comida"), ErrCategoryInUse)
	require.ErrorIs(t, tracker.DeleteCategory(ctx, sess, model.KindIncome, "Comida"), ErrNotFound)
}

func TestDeleteCategory_FailedSaveKeepsCap(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)
	require.NoError(t, tracker.AddCategory(ctx, sess, model.KindExpense, "Mascotas"))
	require.NoError(t, tracker.SetCategoryBudget(ctx, sess, "Mascotas", dec("80")))
	savedCaps := string(store.config[owner+"/"+model.CategoryBudgetsKey])

	store.failCats = true
	require.ErrorIs(t, tracker.DeleteCategory(ctx, sess, model.KindExpense, "Mascotas"), errStoreDown)
	require.True(t, sess.Categories.Has(model.KindExpense, "Mascotas"))
	require.True(t, store.cats[owner].Has(model.KindExpense, "Mascotas"))
	requireDecimal(t, "80", sess.CategoryBudgets["Mascotas"])
	require.Equal(t, savedCaps, string(store.config[owner+"/"+model.CategoryBudgetsKey]))

	// The category goes even when its cap cannot be cleared.
	store.failCats = false
	store.failConfig = true
	require.NoError(t, tracker.DeleteCategory(ctx, sess, model.KindExpense, "Mascotas"))
	require.False(t, sess.Categories.Has(model.KindExpense, "Mascotas"))
	require.False(t, store.cats[owner].Has(model.KindExpense, "Mascotas"))
}

func TestMembers(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	require.NoError(t, tracker.AddMember(ctx, sess, "Berta"))
	require.Equal(t, model.Members{"Ana", "Berta", "Luis"}, store.members[owner])
	require.ErrorIs(t, tracker.AddMember(ctx, sess, "Ana"), ErrDuplicate)
	require.ErrorIs(t, tracker.AddMember(ctx, sess, model.NotApplicable), ErrEmptyName)

	_, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind: model.KindExpense, Category: "Comida", Account: "Banco", Amount: dec("12"), Member: "Ana",
	})
	require.NoError(t, err)
	require.ErrorIs(t, tracker.DeleteMember(ctx, sess, "Ana"), ErrMemberInUse)
	require.NoError(t, tracker.DeleteMember(ctx, sess, "Berta"))
	require.Equal(t, model.Members{"Ana", "Luis"}, sess.Members)
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	require.ErrorIs(t, tracker.AddGoal(ctx, sess, "Viaje", decimal.Zero, time.Time{}), ErrInvalidAmount)
	require.NoError(t, tracker.AddGoal(ctx, sess, "Viaje", dec("900"), day(2024, 6, 1)))
	require.Len(t, store.goals[owner], 2)

	_, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind: model.KindTransfer, Account: "Banco", Destination: "Viaje", Amount: dec("300"),
	})
	require.NoError(t, err)
	requireDecimal(t, "300", sess.Goals[1].Contributed)
	requireDecimal(t, "600", sess.Goals[1].Remaining())

	require.ErrorIs(t, tracker.DeleteGoal(ctx, sess, "Viaje"), ErrGoalInUse)
	require.NoError(t, tracker.DeleteGoal(ctx, sess, "Fondo de Emergencia"))
	require.Len(t, sess.Goals, 1)
	require.Equal(t, "Viaje", store.goals[owner][0].Name)
}

func TestGoalProgressStoredAfterTransfer(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	tracker := newTestTracker(store)
	sess := openSession(t, tracker)

	_, err := tracker.AddTransaction(ctx, sess, model.Transaction{
		Kind: model.KindTransfer, Account: "Banco", Destination: "Fondo de Emergencia", Amount: dec("10"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, store.goalSaves, "once on open, once after the transfer")
}
