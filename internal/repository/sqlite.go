package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// SQLiteRepository is the local backend. Whole-collection writes run as a
// single transaction.
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSQLiteRepository(dbPath string, log zerolog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, log: log}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// replace deletes the owner's rows of table and inserts new ones in one transaction.
func (r *SQLiteRepository) replace(ctx context.Context, table, owner string, insert func(tx *sql.Tx) (int, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s write: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ?`, owner); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	n, err := insert(tx)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}

	r.log.Debug().Str("table", table).Str("owner", owner).Int("rows", n).Msg("collection saved")
	return nil
}

func (r *SQLiteRepository) LoadTransactions(ctx context.Context, owner string) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, "Fecha", "Tipo", "Categoría", "Cuenta", "Monto",
		       "Descripción", "Miembro", "Destino", "Recurrente", "Frecuencia"
		FROM transacciones WHERE user_id = ? ORDER BY "Fecha", id`, owner)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var stored []transactionRow
	for rows.Next() {
		var row transactionRow
		var amt string
		if err := rows.Scan(&row.ID, &row.UserID, &row.Date, &row.Kind, &row.Category, &row.Account,
			&amt, &row.Description, &row.Member, &row.Destination, &row.Recurring, &row.Frequency); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		row.Amount = amount{parseAmount(amt)}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	txs, dropped := rowsToTransactions(stored)
	for _, err := range dropped {
		r.log.Warn().Err(err).Str("owner", owner).Msg("dropping unreadable transaction")
	}
	return txs, nil
}

func (r *SQLiteRepository) SaveTransactions(ctx context.Context, owner string, txs []model.Transaction) error {
	rows, _ := transactionRows(owner, txs)
	return r.replace(ctx, TableTransactions, owner, func(tx *sql.Tx) (int, error) {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transacciones (id, user_id, "Fecha", "Tipo", "Categoría", "Cuenta", "Monto",
			                           "Descripción", "Miembro", "Destino", "Recurrente", "Frecuencia")
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row.ID, row.UserID, row.Date, row.Kind, row.Category, row.Account,
				row.Amount.String(), row.Description, row.Member, row.Destination, row.Recurring, row.Frequency); err != nil {
				return 0, err
			}
		}
		return len(rows), nil
	})
}

func (r *SQLiteRepository) LoadAccounts(ctx context.Context, owner string) ([]model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, "Nombre", "Tipo", "Saldo Inicial" FROM cuentas WHERE user_id = ? ORDER BY "Nombre"`, owner)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var stored []accountRow
	for rows.Next() {
		var row accountRow
		var balance string
		if err := rows.Scan(&row.ID, &row.UserID, &row.Name, &row.Type, &balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		row.InitialBalance = amount{parseAmount(balance)}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return rowsToAccounts(stored), nil
}

func (r *SQLiteRepository) SaveAccounts(ctx context.Context, owner string, accounts []model.Account) error {
	rows, _ := accountRows(owner, accounts)
	return r.replace(ctx, TableAccounts, owner, func(tx *sql.Tx) (int, error) {
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cuentas (id, user_id, "Nombre", "Tipo", "Saldo Inicial") VALUES (?, ?, ?, ?, ?)`,
				row.ID, row.UserID, row.Name, row.Type, row.InitialBalance.String()); err != nil {
				return 0, err
			}
		}
		return len(rows), nil
	})
}

func (r *SQLiteRepository) LoadGoals(ctx context.Context, owner string) ([]model.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, "Nombre", "Monto Objetivo", "Monto Aportado", "Fecha Objetivo"
		FROM metas WHERE user_id = ? ORDER BY "Nombre"`, owner)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var stored []goalRow
	for rows.Next() {
		var row goalRow
		var target, contributed string
		var date sql.NullString
		if err := rows.Scan(&row.ID, &row.UserID, &row.Name, &target, &contributed, &date); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		row.Target = amount{parseAmount(target)}
		row.Contributed = amount{parseAmount(contributed)}
		if date.Valid {
			row.TargetDate = &date.String
		}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return rowsToGoals(stored), nil
}

func (r *SQLiteRepository) SaveGoals(ctx context.Context, owner string, goals []model.Goal) error {
	rows, _ := goalRows(owner, goals)
	return r.replace(ctx, TableGoals, owner, func(tx *sql.Tx) (int, error) {
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO metas (id, user_id, "Nombre", "Monto Objetivo", "Monto Aportado", "Fecha Objetivo")
				VALUES (?, ?, ?, ?, ?, ?)`,
				row.ID, row.UserID, row.Name, row.Target.String(), row.Contributed.String(), row.TargetDate); err != nil {
				return 0, err
			}
		}
		return len(rows), nil
	})
}

func (r *SQLiteRepository) LoadCategories(ctx context.Context, owner string) (model.CategoryRegistry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, tipo, nombre FROM categorias WHERE user_id = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var stored []categoryRow
	for rows.Next() {
		var row categoryRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Kind, &row.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return rowsToCategories(stored), nil
}

func (r *SQLiteRepository) SaveCategories(ctx context.Context, owner string, categories model.CategoryRegistry) error {
	rows, _ := categoryRows(owner, categories)
	return r.replace(ctx, TableCategories, owner, func(tx *sql.Tx) (int, error) {
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categorias (id, user_id, tipo, nombre) VALUES (?, ?, ?, ?)`,
				row.ID, row.UserID, row.Kind, row.Name); err != nil {
				return 0, err
			}
		}
		return len(rows), nil
	})
}

func (r *SQLiteRepository) LoadMembers(ctx context.Context, owner string) (model.Members, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, nombre FROM miembros WHERE user_id = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var stored []memberRow
	for rows.Next() {
		var row memberRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return rowsToMembers(stored), nil
}

func (r *SQLiteRepository) SaveMembers(ctx context.Context, owner string, members model.Members) error {
	rows, _ := memberRows(owner, members)
	return r.replace(ctx, TableMembers, owner, func(tx *sql.Tx) (int, error) {
		for _, row := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO miembros (id, user_id, nombre) VALUES (?, ?, ?)`,
				row.ID, row.UserID, row.Name); err != nil {
				return 0, err
			}
		}
		return len(rows), nil
	})
}

func (r *SQLiteRepository) LoadConfig(ctx context.Context, owner, key string, dst any) (bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT valor FROM configuracion WHERE user_id = ? AND clave = ?`, owner, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load config %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode config %s: %w", key, err)
	}
	return true, nil
}

func (r *SQLiteRepository) SaveConfig(ctx context.Context, owner, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", key, err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO configuracion (user_id, clave, valor) VALUES (?, ?, ?)
		ON CONFLICT (user_id, clave) DO UPDATE SET valor = excluded.valor`,
		owner, key, string(raw)); err != nil {
		return fmt.Errorf("save config %s: %w", key, err)
	}
	return nil
}
