package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used in stored config values.
const DateLayout = "2006-01-02"

// Config keys stored per owner.
const (
	BudgetConfigKey    = "budget_config"
	CategoryBudgetsKey = "category_budgets"
)

// BudgetConfig is the single active global spending window of an owner.
type BudgetConfig struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Amount      decimal.Decimal
}

// DefaultBudgetConfig is the window used when the owner never saved one.
func DefaultBudgetConfig(today time.Time) BudgetConfig {
	start := Day(today)
	return BudgetConfig{
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 0, 15),
		Amount:      decimal.NewFromInt(1000),
	}
}

type budgetConfigJSON struct {
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	BudgetAmount float64 `json:"budget_amount"`
}

func (c BudgetConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(budgetConfigJSON{
		PeriodStart:  c.PeriodStart.Format(DateLayout),
		PeriodEnd:    c.PeriodEnd.Format(DateLayout),
		BudgetAmount: c.Amount.InexactFloat64(),
	})
}

func (c *BudgetConfig) UnmarshalJSON(data []byte) error {
	var raw budgetConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := ParseDate(raw.PeriodStart)
	if err != nil {
		return fmt.Errorf("period_start: %w", err)
	}
	end, err := ParseDate(raw.PeriodEnd)
	if err != nil {
		return fmt.Errorf("period_end: %w", err)
	}
	c.PeriodStart = start
	c.PeriodEnd = end
	c.Amount = decimal.NewFromFloat(raw.BudgetAmount)
	return nil
}

// CategoryBudgets maps an expense category to its spending cap.
type CategoryBudgets map[string]decimal.Decimal

func (b CategoryBudgets) MarshalJSON() ([]byte, error) {
	raw := make(map[string]float64, len(b))
	for name, amount := range b {
		raw[name] = amount.InexactFloat64()
	}
	return json.Marshal(raw)
}

func (b *CategoryBudgets) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(CategoryBudgets, len(raw))
	for name, amount := range raw {
		out[name] = decimal.NewFromFloat(amount)
	}
	*b = out
	return nil
}

// Clone returns a copy that can be mutated independently.
func (b CategoryBudgets) Clone() CategoryBudgets {
	out := make(CategoryBudgets, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate accepts the date and datetime shapes found in stored rows and CSV files.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
