package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "Ingreso", want: KindIncome},
		{in: " Gasto ", want: KindExpense},
		{in: "Transferencia", want: KindTransfer},
		{in: "gasto", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestParseFrequency(t *testing.T) {
	got, err := ParseFrequency("")
	require.NoError(t, err)
	require.Equal(t, FrequencyOneOff, got)

	got, err = ParseFrequency("Quincenal")
	require.NoError(t, err)
	require.Equal(t, FrequencyBiweekly, got)

	_, err = ParseFrequency("Diario")
	require.Error(t, err)
}

func TestTransactionNormalize(t *testing.T) {
	tr := Transaction{Kind: KindTransfer, Category: "Comida", Account: "Banco", Destination: "Meta", IsRecurring: true, Frequency: FrequencyMonthly}
	tr.Normalize()
	require.Equal(t, NotApplicable, tr.Category)
	require.Equal(t, NotApplicable, tr.Member)
	require.False(t, tr.IsRecurring)
	require.Equal(t, FrequencyOneOff, tr.Frequency)
	require.Equal(t, "Meta", tr.Destination)

	exp := Transaction{Kind: KindExpense, Category: "Comida", Destination: "Banco", IsRecurring: true, Frequency: FrequencyWeekly}
	exp.Normalize()
	require.Equal(t, NotApplicable, exp.Destination)
	require.Equal(t, FrequencyWeekly, exp.Frequency)
}

func TestGoalProgress(t *testing.T) {
	g := Goal{TargetAmount: decimal.NewFromInt(5000), Contributed: decimal.NewFromInt(200)}
	require.True(t, g.Progress().Equal(decimal.NewFromInt(4)))
	require.True(t, g.Remaining().Equal(decimal.NewFromInt(4800)))

	zero := Goal{Contributed: decimal.NewFromInt(10)}
	require.True(t, zero.Progress().IsZero())
	require.True(t, zero.Remaining().IsZero())
}

func TestCategoryRegistry(t *testing.T) {
	r := DefaultCategories()
	require.True(t, r.Has(KindExpense, "Comida"))
	require.False(t, r.Add(KindExpense, "Comida"))
	require.True(t, r.Add(KindExpense, "Mascotas"))
	require.Contains(t, r[KindExpense], "Mascotas")
	require.IsIncreasing(t, r[KindExpense])

	clone := r.Clone()
	require.True(t, clone.Remove(KindExpense, "Mascotas"))
	require.True(t, r.Has(KindExpense, "Mascotas"))
	require.False(t, clone.Remove(KindExpense, "Mascotas"))
}

func TestMembers(t *testing.T) {
	m := Members{"Luis"}.With("Ana")
	require.Equal(t, Members{"Ana", "Luis"}, m)
	require.Equal(t, Members{"Luis"}, m.Without("Ana"))
	require.True(t, m.Has("Ana"))
}

func TestBudgetConfigJSON(t *testing.T) {
	cfg := BudgetConfig{
		PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(1000),
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.JSONEq(t, `{"period_start":"2024-01-01","period_end":"2024-01-31","budget_amount":1000}`, string(data))

	var back BudgetConfig
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, back.PeriodStart.Equal(cfg.PeriodStart))
	require.True(t, back.PeriodEnd.Equal(cfg.PeriodEnd))
	require.True(t, back.Amount.Equal(cfg.Amount))

	require.Error(t, json.Unmarshal([]byte(`{"period_start":"ayer","period_end":"2024-01-31"}`), &back))
}

func TestCategoryBudgetsJSON(t *testing.T) {
	var b CategoryBudgets
	require.NoError(t, json.Unmarshal([]byte(`{"Comida":300.5,"Ocio":0}`), &b))
	require.True(t, b["Comida"].Equal(decimal.RequireFromString("300.5")))

	data, err := json.Marshal(b)
	require.NoError(t, err)
	require.JSONEq(t, `{"Comida":300.5,"Ocio":0}`, string(data))
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-03-05", "2024-03-05T10:20:00", "2024-03-05T10:20:00Z", "2024-03-05 10:20:00"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		require.Equal(t, 5, d.Day())
	}
	_, err := ParseDate("05/03/2024")
	require.Error(t, err)
}
