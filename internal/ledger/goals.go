package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/model"
)

// ReconcileGoals returns a copy of goals whose Contributed equals the sum of
// every transfer targeting the goal. Whatever Contributed held before is
// discarded, so calling it repeatedly always yields the same amounts.
func ReconcileGoals(txs []model.Transaction, goals []model.Goal) []model.Goal {
	out := make([]model.Goal, len(goals))
	if len(goals) == 0 {
		return out
	}

	names := make(map[string]struct{}, len(goals))
	for _, g := range goals {
		names[g.Name] = struct{}{}
	}

	contributed := make(map[string]decimal.Decimal, len(goals))
	for _, tx := range txs {
		if tx.Kind != model.KindTransfer {
			continue
		}
		if _, ok := names[tx.Destination]; !ok {
			continue
		}
		contributed[tx.Destination] = contributed[tx.Destination].Add(tx.Amount)
	}

	for i, g := range goals {
		g.Contributed = decimal.Zero
		if sum, ok := contributed[g.Name]; ok {
			g.Contributed = sum
		}
		out[i] = g
	}
	return out
}
