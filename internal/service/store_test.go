package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

var errStoreDown = errors.New("store down")

// memStore keeps collections in maps keyed by owner.
type memStore struct {
	txs      map[string][]model.Transaction
	accounts map[string][]model.Account
	goals    map[string][]model.Goal
	cats     map[string]model.CategoryRegistry
	members  map[string]model.Members
	config   map[string][]byte

	failSaves  bool
	failConfig bool
	failCats   bool
	goalSaves  int
}

func newMemStore() *memStore {
	return &memStore{
		txs:      map[string][]model.Transaction{},
		accounts: map[string][]model.Account{},
		goals:    map[string][]model.Goal{},
		cats:     map[string]model.CategoryRegistry{},
		members:  map[string]model.Members{},
		config:   map[string][]byte{},
	}
}

func (m *memStore) LoadTransactions(_ context.Context, owner string) ([]model.Transaction, error) {
	return slices.Clone(m.txs[owner]), nil
}

func (m *memStore) SaveTransactions(_ context.Context, owner string, txs []model.Transaction) error {
	if m.failSaves {
		return errStoreDown
	}
	m.txs[owner] = slices.Clone(txs)
	return nil
}

func (m *memStore) LoadAccounts(_ context.Context, owner string) ([]model.Account, error) {
	return slices.Clone(m.accounts[owner]), nil
}

func (m *memStore) SaveAccounts(_ context.Context, owner string, accounts []model.Account) error {
	if m.failSaves {
		return errStoreDown
	}
	m.accounts[owner] = slices.Clone(accounts)
	return nil
}

func (m *memStore) LoadGoals(_ context.Context, owner string) ([]model.Goal, error) {
	goals := slices.Clone(m.goals[owner])
	for i := range goals {
		goals[i].Contributed = decimal.Zero
	}
	return goals, nil
}

func (m *memStore) SaveGoals(_ context.Context, owner string, goals []model.Goal) error {
	if m.failSaves {
		return errStoreDown
	}
	m.goalSaves++
	m.goals[owner] = slices.Clone(goals)
	return nil
}

func (m *memStore) LoadCategories(_ context.Context, owner string) (model.CategoryRegistry, error) {
	if reg, ok := m.cats[owner]; ok {
		return reg.Clone(), nil
	}
	return model.CategoryRegistry{}, nil
}

func (m *memStore) SaveCategories(_ context.Context, owner string, categories model.CategoryRegistry) error {
	if m.failSaves || m.failCats {
		return errStoreDown
	}
	m.cats[owner] = categories.Clone()
	return nil
}

func (m *memStore) LoadMembers(_ context.Context, owner string) (model.Members, error) {
	return slices.Clone(m.members[owner]), nil
}

func (m *memStore) SaveMembers(_ context.Context, owner string, members model.Members) error {
	if m.failSaves {
		return errStoreDown
	}
	m.members[owner] = slices.Clone(members)
	return nil
}

func (m *memStore) LoadConfig(_ context.Context, owner, key string, dst any) (bool, error) {
	raw, ok := m.config[owner+"/"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memStore) SaveConfig(_ context.Context, owner, key string, value any) error {
	if m.failSaves || m.failConfig {
		return errStoreDown
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.config[owner+"/"+key] = raw
	return nil
}

const owner = "42"

var testToday = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func newTestTracker(store *memStore) *Tracker {
	return NewTracker(store, zerolog.Nop()).WithClock(func() time.Time { return testToday })
}

// seededStore has one bank account, an emergency fund goal, two members and
// the default categories.
func seededStore() *memStore {
	store := newMemStore()
	store.accounts[owner] = []model.Account{{Name: "Banco", Type: "Banco", InitialBalance: decimal.Zero}}
	store.goals[owner] = []model.Goal{{Name: "Fondo de Emergencia", TargetAmount: decimal.NewFromInt(5000)}}
	store.members[owner] = model.Members{"Ana", "Luis"}
	store.cats[owner] = model.DefaultCategories()
	return store
}

func openSession(t *testing.T, tracker *Tracker) *Session {
	t.Helper()
	sess, err := tracker.Open(context.Background(), owner)
	require.NoError(t, err)
	return sess
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
