package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/supabase-community/supabase-go"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

type SupabaseRepository struct {
	client *supabase.Client
	log    zerolog.Logger
}

func NewSupabaseRepository(url, key string, log zerolog.Logger) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseRepository{
		client: client,
		log:    log,
	}, nil
}

func (r *SupabaseRepository) Close() error { return nil }

func (r *SupabaseRepository) selectRows(table, owner string, dst any) error {
	data, _, err := r.client.From(table).
		Select("*", "", false).
		Eq("user_id", owner).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", table, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", table, err)
	}
	return nil
}

// deleteChunk bounds how many ids go into one delete filter, keeping the
// request URL short.
const deleteChunk = 100

// replaceRows upserts rows by id and then removes the owner's rows that are
// no longer present, so the collection is never observed empty mid-write.
func (r *SupabaseRepository) replaceRows(table, owner string, rows any, ids []string) error {
	if len(ids) > 0 {
		if _, _, err := r.client.From(table).Upsert(rows, "id", "minimal", "").Execute(); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", table, err)
		}
	}

	var existing []struct {
		ID rowKey `json:"id"`
	}
	data, _, err := r.client.From(table).Select("id", "", false).Eq("user_id", owner).Execute()
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", table, err)
	}
	if err := json.Unmarshal(data, &existing); err != nil {
		return fmt.Errorf("failed to parse %s ids: %w", table, err)
	}
	stored := make([]string, len(existing))
	for i, e := range existing {
		stored[i] = string(e.ID)
	}

	stale := staleIDs(stored, ids)
	for _, batch := range chunk(stale, deleteChunk) {
		_, _, err := r.client.From(table).Delete("minimal", "").
			Eq("user_id", owner).
			In("id", batch).
			Execute()
		if err != nil {
			return fmt.Errorf("failed to prune %s: %w", table, err)
		}
	}

	r.log.Debug().Str("table", table).Str("owner", owner).Int("rows", len(ids)).Int("pruned", len(stale)).Msg("collection saved")
	return nil
}

// staleIDs returns the stored ids that are not kept, in stored order.
func staleIDs(stored, keep []string) []string {
	kept := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		kept[id] = struct{}{}
	}
	var stale []string
	for _, id := range stored {
		if _, ok := kept[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func (r *SupabaseRepository) LoadTransactions(ctx context.Context, owner string) ([]model.Transaction, error) {
	var rows []transactionRow
	if err := r.selectRows(TableTransactions, owner, &rows); err != nil {
		return nil, err
	}
	txs, dropped := rowsToTransactions(rows)
	for _, err := range dropped {
		r.log.Warn().Err(err).Str("owner", owner).Msg("dropping unreadable transaction")
	}
	return txs, nil
}

func (r *SupabaseRepository) SaveTransactions(ctx context.Context, owner string, txs []model.Transaction) error {
	rows, ids := transactionRows(owner, txs)
	return r.replaceRows(TableTransactions, owner, rows, ids)
}

func (r *SupabaseRepository) LoadAccounts(ctx context.Context, owner string) ([]model.Account, error) {
	var rows []accountRow
	if err := r.selectRows(TableAccounts, owner, &rows); err != nil {
		return nil, err
	}
	return rowsToAccounts(rows), nil
}

func (r *SupabaseRepository) SaveAccounts(ctx context.Context, owner string, accounts []model.Account) error {
	rows, ids := accountRows(owner, accounts)
	return r.replaceRows(TableAccounts, owner, rows, ids)
}

func (r *SupabaseRepository) LoadGoals(ctx context.Context, owner string) ([]model.Goal, error) {
	var rows []goalRow
	if err := r.selectRows(TableGoals, owner, &rows); err != nil {
		return nil, err
	}
	return rowsToGoals(rows), nil
}

func (r *SupabaseRepository) SaveGoals(ctx context.Context, owner string, goals []model.Goal) error {
	rows, ids := goalRows(owner, goals)
	return r.replaceRows(TableGoals, owner, rows, ids)
}

func (r *SupabaseRepository) LoadCategories(ctx context.Context, owner string) (model.CategoryRegistry, error) {
	var rows []categoryRow
	if err := r.selectRows(TableCategories, owner, &rows); err != nil {
		return nil, err
	}
	return rowsToCategories(rows), nil
}

func (r *SupabaseRepository) SaveCategories(ctx context.Context, owner string, categories model.CategoryRegistry) error {
	rows, ids := categoryRows(owner, categories)
	return r.replaceRows(TableCategories, owner, rows, ids)
}

func (r *SupabaseRepository) LoadMembers(ctx context.Context, owner string) (model.Members, error) {
	var rows []memberRow
	if err := r.selectRows(TableMembers, owner, &rows); err != nil {
		return nil, err
	}
	return rowsToMembers(rows), nil
}

func (r *SupabaseRepository) SaveMembers(ctx context.Context, owner string, members model.Members) error {
	rows, ids := memberRows(owner, members)
	return r.replaceRows(TableMembers, owner, rows, ids)
}

func (r *SupabaseRepository) LoadConfig(ctx context.Context, owner, key string, dst any) (bool, error) {
	var rows []configRow
	data, _, err := r.client.From(TableConfig).
		Select("valor", "", false).
		Eq("user_id", owner).
		Eq("clave", key).
		Limit(1, "").
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to load config %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", key, err)
	}
	if len(rows) == 0 || len(rows[0].Value) == 0 || string(rows[0].Value) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(rows[0].Value, dst); err != nil {
		return false, fmt.Errorf("failed to decode config %s: %w", key, err)
	}
	return true, nil
}

func (r *SupabaseRepository) SaveConfig(ctx context.Context, owner, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode config %s: %w", key, err)
	}
	row := configRow{UserID: owner, Key: key, Value: raw}
	if _, _, err := r.client.From(TableConfig).Upsert(row, "user_id,clave", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to save config %s: %w", key, err)
	}
	return nil
}
