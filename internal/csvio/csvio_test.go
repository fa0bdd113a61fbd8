package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

func TestExportImport_RoundTrip(t *testing.T) {
	txs := []model.Transaction{
		{
			ID: "a", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Kind: model.KindIncome,
			Category: "Salario", Account: "Banco", Amount: decimal.NewFromInt(2000),
			Description: "Nómina, enero", Member: "Ana", Destination: model.NotApplicable,
			IsRecurring: true, Frequency: model.FrequencyBiweekly,
		},
		{
			ID: "b", Date: time.Date(2024, 1, 6, 18, 30, 0, 0, time.UTC), Kind: model.KindTransfer,
			Category: model.NotApplicable, Account: "Banco", Amount: decimal.RequireFromString("200.75"),
			Description: `Ahorro "extra"`, Member: model.NotApplicable, Destination: "Fondo de Emergencia",
			Frequency: model.FrequencyOneOff,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, txs))
	require.True(t, strings.HasPrefix(buf.String(), bom+"Fecha,Tipo,"))

	res, err := Import(&buf)
	require.NoError(t, err)
	require.Zero(t, res.Skipped)
	require.Len(t, res.Transactions, 2)

	for i, got := range res.Transactions {
		want := txs[i]
		require.NotEmpty(t, got.ID)
		require.NotEqual(t, want.ID, got.ID)
		got.ID = want.ID
		require.True(t, want.Amount.Equal(got.Amount))
		got.Amount = want.Amount
		require.Equal(t, want, got)
	}
}

func TestImport_OptionalColumnsAndExtras(t *testing.T) {
	input := " Fecha , Tipo,Categoría,Cuenta,Monto,Seleccionar\n" +
		"2024-02-01,Gasto,Comida,Efectivo,35.5,True\n" +
		"2024-02-02T10:00:00Z,Ingreso,Freelance,Banco,300,False\n"

	res, err := Import(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	first := res.Transactions[0]
	require.Equal(t, model.KindExpense, first.Kind)
	require.Equal(t, "", first.Description)
	require.Equal(t, model.NotApplicable, first.Member)
	require.Equal(t, model.NotApplicable, first.Destination)
	require.False(t, first.IsRecurring)
	require.Equal(t, model.FrequencyOneOff, first.Frequency)
	require.True(t, first.Amount.Equal(decimal.RequireFromString("35.5")))

	require.Equal(t, 2, res.Transactions[1].Date.Day())
}

func TestImport_DropsBadRows(t *testing.T) {
	input := "Fecha,Tipo,Categoría,Cuenta,Monto,Recurrente,Frecuencia,Destino\n" +
		"2024-02-01,Gasto,Comida,Efectivo,10,Sí,Mensual,\n" +
		"not-a-date,Gasto,Comida,Efectivo,10,,,\n" +
		"2024-02-01,Regalo,Comida,Efectivo,10,,,\n" +
		"2024-02-01,Gasto,Comida,Efectivo,diez,,,\n" +
		"2024-02-01,Gasto,Comida,Efectivo,-4,,,\n" +
		"2024-02-01,Gasto,Comida,Efectivo,10,True,Cada tanto,\n" +
		"2024-01-02,Transferencia,N/A,Banco,50,,,Banco\n" +
		"2024-01-02,Transferencia,N/A,Banco,50,,,N/A\n" +
		"2024-01-02,Transferencia,N/A,Banco,50,,,\n" +
		"2024-01-02,Transferencia,N/A,Banco,50,,,Viaje\n"

	res, err := Import(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	require.Equal(t, 8, res.Skipped)
	require.Len(t, res.Errors, 8)
	require.True(t, res.Transactions[0].IsRecurring)
	require.Equal(t, model.FrequencyMonthly, res.Transactions[0].Frequency)
	require.Equal(t, model.KindTransfer, res.Transactions[1].Kind)
	require.Equal(t, "Viaje", res.Transactions[1].Destination)
}

func TestImport_MissingColumns(t *testing.T) {
	_, err := Import(strings.NewReader("Fecha,Tipo,Monto\n2024-01-01,Gasto,5\n"))
	require.ErrorIs(t, err, ErrMissingColumns)
	require.Contains(t, err.Error(), "Categoría, Cuenta")

	_, err = Import(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingColumns)
}
