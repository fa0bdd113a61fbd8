package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victordebonilla/Guardian-domestico/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  config.BackendSQLite,
		SQLiteDBPath: filepath.Join(t.TempDir(), "guardian.db"),
	}

	store, err := Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &SQLiteRepository{}, store)
	txs, err := store.LoadTransactions(context.Background(), "42")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(&config.Config{DataBackend: "mongo"}, zerolog.Nop())
	assert.ErrorContains(t, err, `unknown data backend "mongo"`)
}
