package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/victordebonilla/Guardian-domestico/internal/config"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// Table names shared by every backend.
const (
	TableTransactions = "transacciones"
	TableAccounts     = "cuentas"
	TableGoals        = "metas"
	TableCategories   = "categorias"
	TableMembers      = "miembros"
	TableConfig       = "configuracion"
)

// Store persists the collections of one owner. Save methods overwrite the
// whole collection; a reader never observes it half written.
type Store interface {
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

	// LoadConfig decodes the JSON value stored under key into dst. It reports
	// false when nothing is stored.
	LoadConfig(ctx context.Context, owner, key string, dst any) (bool, error)
	SaveConfig(ctx context.Context, owner, key string, value any) error

	Close() error
}

// Open connects to the backend selected in cfg.
func Open(cfg *config.Config, log zerolog.Logger) (Store, error) {
	switch cfg.DataBackend {
	case config.BackendSupabase:
		return NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey, log)
	case config.BackendSQLite:
		return NewSQLiteRepository(cfg.SQLiteDBPath, log)
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
