package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

var (
	_ Store = (*SupabaseRepository)(nil)
	_ Store = (*SQLiteRepository)(nil)
)

func TestTransactionRow_WireShape(t *testing.T) {
	tx := model.Transaction{
		ID:          "b3a7f0a2-0000-4000-8000-000000000001",
		Date:        mustDate(t, "2024-03-05"),
		Kind:        model.KindExpense,
		Category:    "Comida",
		Account:     "Banco",
		Amount:      decimal.RequireFromString("12.50"),
		Description: "Mercado",
		Member:      "Ana",
		Destination: model.NotApplicable,
		Frequency:   model.FrequencyOneOff,
	}

	data, err := json.Marshal(newTransactionRow("42", tx))
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	require.Equal(t, "42", wire["user_id"])
	require.Equal(t, "2024-03-05T00:00:00", wire["Fecha"])
	require.Equal(t, "Gasto", wire["Tipo"])
	require.Equal(t, "Comida", wire["Categoría"])
	require.Equal(t, 12.5, wire["Monto"])
	require.Equal(t, "Mercado", wire["Descripción"])
	require.Equal(t, false, wire["Recurrente"])
	require.Equal(t, "Única/N/A", wire["Frecuencia"])
}

func TestRowsToTransactions_Lenient(t *testing.T) {
	payload := `[
		{"id":"a","user_id":"42","Fecha":"2024-01-05T00:00:00","Tipo":"Ingreso","Categoría":"Salario","Cuenta":"Banco","Monto":1000,"Recurrente":true,"Frecuencia":"Mensual"},
		{"id":"b","user_id":"42","Fecha":"2024-01-06","Tipo":"Gasto","Categoría":"Comida","Cuenta":"Banco","Monto":"abc","Descripción":null},
		{"id":"c","user_id":"42","Fecha":"2024-01-07","Tipo":"Préstamo","Cuenta":"Banco","Monto":5},
		{"id":"d","user_id":"42","Fecha":"yesterday","Tipo":"Gasto","Cuenta":"Banco","Monto":5},
		{"id":"e","user_id":"42","Fecha":"2024-01-08","Tipo":"Transferencia","Categoría":"Comida","Cuenta":"Banco","Destino":"Viaje","Monto":"50.25","Recurrente":true,"Frecuencia":"Semanal"}
	]`

	var rows []transactionRow
	require.NoError(t, json.Unmarshal([]byte(payload), &rows))

	txs, dropped := rowsToTransactions(rows)
	require.Len(t, txs, 3)
	require.Len(t, dropped, 2)

	require.Equal(t, model.FrequencyMonthly, txs[0].Frequency)
	require.True(t, txs[0].IsRecurring)
	require.True(t, txs[0].Amount.Equal(decimal.NewFromInt(1000)))

	require.True(t, txs[1].Amount.IsZero())
	require.Equal(t, model.NotApplicable, txs[1].Member)
	require.Equal(t, model.NotApplicable, txs[1].Destination)

	transfer := txs[2]
	require.Equal(t, model.NotApplicable, transfer.Category)
	require.False(t, transfer.IsRecurring)
	require.Equal(t, model.FrequencyOneOff, transfer.Frequency)
	require.True(t, transfer.Amount.Equal(decimal.RequireFromString("50.25")))
}

func TestRows_NumericKeys(t *testing.T) {
	var txRows []transactionRow
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":17,"user_id":42,"Fecha":"2024-01-05","Tipo":"Gasto","Categoría":"Comida","Cuenta":"Banco","Monto":12},
		{"id":null,"user_id":"42","Fecha":"2024-01-06","Tipo":"Gasto","Categoría":"Comida","Cuenta":"Banco","Monto":3}
	]`), &txRows))

	txs, dropped := rowsToTransactions(txRows)
	require.Empty(t, dropped)
	require.Len(t, txs, 2)
	require.Equal(t, "17", txs[0].ID)
	require.Equal(t, rowKey("42"), txRows[0].UserID)
	require.NotEmpty(t, txs[1].ID)

	var accRows []accountRow
	require.NoError(t, json.Unmarshal([]byte(`[{"id":3,"user_id":42,"Nombre":"Banco","Tipo":"Banco","Saldo Inicial":100}]`), &accRows))
	accounts := rowsToAccounts(accRows)
	require.Len(t, accounts, 1)
	require.Equal(t, "Banco", accounts[0].Name)

	var bad []memberRow
	require.Error(t, json.Unmarshal([]byte(`[{"id":{"x":1},"nombre":"Ana"}]`), &bad))

	// Written keys are always strings.
	rows, _ := memberRows("42", model.Members{"Ana"})
	raw, err := json.Marshal(rows[0])
	require.NoError(t, err)
	require.Contains(t, string(raw), `"user_id":"42"`)
}

func TestGoalRows_ContributionRecomputed(t *testing.T) {
	goals := []model.Goal{{
		Name:         "Viaje",
		TargetAmount: decimal.NewFromInt(5000),
		Contributed:  decimal.NewFromInt(700),
		TargetDate:   mustDate(t, "2025-06-30"),
	}}

	rows, ids := goalRows("42", goals)
	require.Len(t, ids, 1)
	require.Equal(t, "2025-06-30", *rows[0].TargetDate)

	loaded := rowsToGoals(rows)
	require.Len(t, loaded, 1)
	require.True(t, loaded[0].Contributed.IsZero())
	require.True(t, loaded[0].TargetAmount.Equal(decimal.NewFromInt(5000)))
	require.Equal(t, goals[0].TargetDate, loaded[0].TargetDate)
}

func TestRowID_Stable(t *testing.T) {
	require.Equal(t, rowID(TableAccounts, "42", "Banco"), rowID(TableAccounts, "42", "Banco"))
	require.NotEqual(t, rowID(TableAccounts, "42", "Banco"), rowID(TableAccounts, "43", "Banco"))
	require.NotEqual(t, rowID(TableAccounts, "42", "Banco"), rowID(TableGoals, "42", "Banco"))
}

func TestRowsToCategories_SkipsTransfers(t *testing.T) {
	reg := rowsToCategories([]categoryRow{
		{Kind: "Gasto", Name: "Comida"},
		{Kind: "Gasto", Name: "Alquiler"},
		{Kind: "Ingreso", Name: "Salario"},
		{Kind: "Transferencia", Name: "Ahorro"},
		{Kind: "Gasto", Name: " "},
	})
	require.Equal(t, []string{"Alquiler", "Comida"}, reg[model.KindExpense])
	require.Equal(t, []string{"Salario"}, reg[model.KindIncome])
	require.Empty(t, reg[model.KindTransfer])
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := model.ParseDate(s)
	require.NoError(t, err)
	return parsed
}
