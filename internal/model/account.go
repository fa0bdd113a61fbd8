package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a place money lives in. Its current balance is always derived.
type Account struct {
	Name           string
	Type           string
	InitialBalance decimal.Decimal
}

// DefaultAccounts is offered to owners that have no accounts stored yet.
func DefaultAccounts() []Account {
	return []Account{{Name: "Efectivo", Type: "Efectivo", InitialBalance: decimal.Zero}}
}

// ImportedAccountType tags accounts created from names found in an imported file.
const ImportedAccountType = "Importada"

// Goal is a savings target fed by transfers. Contributed is derived from the
// transaction log on every load and is never trusted from storage.
type Goal struct {
	Name         string
	TargetAmount decimal.Decimal
	Contributed  decimal.Decimal
	TargetDate   time.Time
}

var hundred = decimal.NewFromInt(100)

// Progress returns the contributed share of the target as a percentage.
func (g Goal) Progress() decimal.Decimal {
	if g.TargetAmount.Sign() <= 0 {
		return decimal.Zero
	}
	return g.Contributed.Div(g.TargetAmount).Mul(hundred)
}

// Remaining returns how much is still missing to reach the target, never negative.
func (g Goal) Remaining() decimal.Decimal {
	left := g.TargetAmount.Sub(g.Contributed)
	if left.Sign() < 0 {
		return decimal.Zero
	}
	return left
}
