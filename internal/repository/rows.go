package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// rowTimeLayout is how transaction dates are written back.
const rowTimeLayout = "2006-01-02T15:04:05"

// amount decodes leniently: anything that is not a number becomes zero.
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *amount) UnmarshalJSON(data []byte) error {
	a.Decimal = parseAmount(strings.Trim(string(data), `"`))
	return nil
}

// rowKey is a row or owner identifier. Tables created from the dashboard
// often carry bigint keys, so numbers are accepted alongside strings.
type rowKey string

func (k *rowKey) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = rowKey(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid row key %s", data)
	}
	*k = rowKey(n.String())
	return nil
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

type transactionRow struct {
	ID          rowKey `json:"id"`
	UserID      rowKey `json:"user_id"`
	Date        string `json:"Fecha"`
	Kind        string `json:"Tipo"`
	Category    string `json:"Categoría"`
	Account     string `json:"Cuenta"`
	Amount      amount `json:"Monto"`
	Description string `json:"Descripción"`
	Member      string `json:"Miembro"`
	Destination string `json:"Destino"`
	Recurring   bool   `json:"Recurrente"`
	Frequency   string `json:"Frecuencia"`
}

func newTransactionRow(owner string, t model.Transaction) transactionRow {
	return transactionRow{
		ID:          rowKey(t.ID),
		UserID:      rowKey(owner),
		Date:        rowDate(t.Date),
		Kind:        string(t.Kind),
		Category:    t.Category,
		Account:     t.Account,
		Amount:      amount{t.Amount},
		Description: t.Description,
		Member:      t.Member,
		Destination: t.Destination,
		Recurring:   t.IsRecurring,
		Frequency:   string(t.Frequency),
	}
}

func (r transactionRow) transaction() (model.Transaction, error) {
	kind, err := model.ParseKind(r.Kind)
	if err != nil {
		return model.Transaction{}, err
	}
	date, err := model.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return model.Transaction{}, err
	}
	freq, err := model.ParseFrequency(r.Frequency)
	if err != nil {
		freq = model.FrequencyOneOff
	}

	t := model.Transaction{
		ID:          string(r.ID),
		Date:        date,
		Kind:        kind,
		Category:    r.Category,
		Account:     r.Account,
		Amount:      r.Amount.Decimal,
		Description: r.Description,
		Member:      r.Member,
		Destination: r.Destination,
		IsRecurring: r.Recurring,
		Frequency:   freq,
	}
	if t.ID == "" {
		t.GenerateID()
	}
	t.Normalize()
	return t, nil
}

func transactionRows(owner string, txs []model.Transaction) ([]transactionRow, []string) {
	rows := make([]transactionRow, 0, len(txs))
	ids := make([]string, 0, len(txs))
	for _, t := range txs {
		if t.ID == "" {
			t.GenerateID()
		}
		rows = append(rows, newTransactionRow(owner, t))
		ids = append(ids, t.ID)
	}
	return rows, ids
}

// rowsToTransactions converts stored rows, returning the reasons for every
// row that had to be dropped.
func rowsToTransactions(rows []transactionRow) ([]model.Transaction, []error) {
	txs := make([]model.Transaction, 0, len(rows))
	var dropped []error
	for _, r := range rows {
		t, err := r.transaction()
		if err != nil {
			dropped = append(dropped, fmt.Errorf("row %s: %w", r.ID, err))
			continue
		}
		txs = append(txs, t)
	}
	return txs, dropped
}

type accountRow struct {
	ID             rowKey `json:"id"`
	UserID         rowKey `json:"user_id"`
	Name           string `json:"Nombre"`
	Type           string `json:"Tipo"`
	InitialBalance amount `json:"Saldo Inicial"`
}

func accountRows(owner string, accounts []model.Account) ([]accountRow, []string) {
	rows := make([]accountRow, 0, len(accounts))
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		id := rowID(TableAccounts, owner, a.Name)
		rows = append(rows, accountRow{
			ID:             rowKey(id),
			UserID:         rowKey(owner),
			Name:           a.Name,
			Type:           a.Type,
			InitialBalance: amount{a.InitialBalance},
		})
		ids = append(ids, id)
	}
	return rows, ids
}

func rowsToAccounts(rows []accountRow) []model.Account {
	accounts := make([]model.Account, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		accounts = append(accounts, model.Account{
			Name:           r.Name,
			Type:           r.Type,
			InitialBalance: r.InitialBalance.Decimal,
		})
	}
	return accounts
}

type goalRow struct {
	ID          rowKey  `json:"id"`
	UserID      rowKey  `json:"user_id"`
	Name        string  `json:"Nombre"`
	Target      amount  `json:"Monto Objetivo"`
	Contributed amount  `json:"Monto Aportado"`
	TargetDate  *string `json:"Fecha Objetivo"`
}

func goalRows(owner string, goals []model.Goal) ([]goalRow, []string) {
	rows := make([]goalRow, 0, len(goals))
	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		id := rowID(TableGoals, owner, g.Name)
		row := goalRow{
			ID:          rowKey(id),
			UserID:      rowKey(owner),
			Name:        g.Name,
			Target:      amount{g.TargetAmount},
			Contributed: amount{g.Contributed},
		}
		if !g.TargetDate.IsZero() {
			d := g.TargetDate.Format(model.DateLayout)
			row.TargetDate = &d
		}
		rows = append(rows, row)
		ids = append(ids, id)
	}
	return rows, ids
}

// rowsToGoals ignores the stored contribution; it is always recomputed.
func rowsToGoals(rows []goalRow) []model.Goal {
	goals := make([]model.Goal, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		g := model.Goal{
			Name:         r.Name,
			TargetAmount: r.Target.Decimal,
			Contributed:  decimal.Zero,
		}
		if r.TargetDate != nil {
			if d, err := model.ParseDate(*r.TargetDate); err == nil {
				g.TargetDate = model.Day(d)
			}
		}
		goals = append(goals, g)
	}
	return goals
}

type categoryRow struct {
	ID     rowKey `json:"id"`
	UserID rowKey `json:"user_id"`
	Kind   string `json:"tipo"`
	Name   string `json:"nombre"`
}

func categoryRows(owner string, categories model.CategoryRegistry) ([]categoryRow, []string) {
	var rows []categoryRow
	var ids []string
	for _, kind := range []model.Kind{model.KindIncome, model.KindExpense} {
		for _, name := range categories[kind] {
			id := rowID(TableCategories, owner, string(kind)+"/"+name)
			rows = append(rows, categoryRow{ID: rowKey(id), UserID: rowKey(owner), Kind: string(kind), Name: name})
			ids = append(ids, id)
		}
	}
	return rows, ids
}

func rowsToCategories(rows []categoryRow) model.CategoryRegistry {
	reg := model.CategoryRegistry{}
	for _, r := range rows {
		kind, err := model.ParseKind(r.Kind)
		if err != nil || kind == model.KindTransfer || strings.TrimSpace(r.Name) == "" {
			continue
		}
		reg.Add(kind, r.Name)
	}
	return reg
}

type memberRow struct {
	ID     rowKey `json:"id"`
	UserID rowKey `json:"user_id"`
	Name   string `json:"nombre"`
}

func memberRows(owner string, members model.Members) ([]memberRow, []string) {
	rows := make([]memberRow, 0, len(members))
	ids := make([]string, 0, len(members))
	for _, name := range members {
		id := rowID(TableMembers, owner, name)
		rows = append(rows, memberRow{ID: rowKey(id), UserID: rowKey(owner), Name: name})
		ids = append(ids, id)
	}
	return rows, ids
}

func rowsToMembers(rows []memberRow) model.Members {
	members := model.Members{}
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		if name == "" || members.Has(name) {
			continue
		}
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}

type configRow struct {
	UserID string          `json:"user_id"`
	Key    string          `json:"clave"`
	Value  json.RawMessage `json:"valor"`
}

// rowID derives a stable identity for rows keyed by name, so repeated saves
// upsert the same row instead of piling up duplicates.
func rowID(table, owner, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(table+"/"+owner+"/"+name)).String()
}

// rowDate formats stored dates the same way on every backend.
func rowDate(t time.Time) string {
	return t.Format(rowTimeLayout)
}
