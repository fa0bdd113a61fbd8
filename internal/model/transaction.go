package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NotApplicable fills category, member and destination when they do not apply.
const NotApplicable = "N/A"

// Kind is the direction of a transaction.
type Kind string

const (
	KindIncome   Kind = "Ingreso"
	KindExpense  Kind = "Gasto"
	KindTransfer Kind = "Transferencia"
)

// Kinds lists every transaction kind in display order.
var Kinds = []Kind{KindExpense, KindIncome, KindTransfer}

// ParseKind maps a stored or typed label to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(s)); k {
	case KindIncome, KindExpense, KindTransfer:
		return k, nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// Frequency is the cadence of a recurring transaction.
type Frequency string

const (
	FrequencyMonthly   Frequency = "Mensual"
	FrequencyBiweekly  Frequency = "Quincenal"
	FrequencyWeekly    Frequency = "Semanal"
	FrequencyBimonthly Frequency = "Bimensual"
	FrequencyQuarterly Frequency = "Trimestral"
	FrequencyYearly    Frequency = "Anual"
	FrequencyOneOff    Frequency = "Única/N/A"
)

// Frequencies lists every cadence in the order the forms offer them.
var Frequencies = []Frequency{
	FrequencyMonthly,
	FrequencyBiweekly,
	FrequencyWeekly,
	FrequencyBimonthly,
	FrequencyQuarterly,
	FrequencyYearly,
	FrequencyOneOff,
}

// IncomeFrequencies are the cadences offered for the main income in the setup wizard.
var IncomeFrequencies = []Frequency{
	FrequencyBiweekly,
	FrequencyMonthly,
	FrequencyWeekly,
	FrequencyBimonthly,
	FrequencyYearly,
}

// ParseFrequency maps a label to a Frequency. A blank label means one-off.
func ParseFrequency(s string) (Frequency, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == NotApplicable {
		return FrequencyOneOff, nil
	}
	for _, f := range Frequencies {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

func (f Frequency) String() string {
	return string(f)
}

// Transaction is a single ledger movement owned by one user.
type Transaction struct {
	ID          string
	Date        time.Time
	Kind        Kind
	Category    string
	Account     string
	Amount      decimal.Decimal
	Description string
	Member      string
	Destination string
	IsRecurring bool
	Frequency   Frequency
}

// GenerateID assigns a new UUID if the transaction does not have one yet.
func (t *Transaction) GenerateID() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}

// Normalize fills the placeholders a transaction of its kind must carry.
func (t *Transaction) Normalize() {
	t.Category = orNotApplicable(t.Category)
	t.Member = orNotApplicable(t.Member)
	t.Destination = orNotApplicable(t.Destination)
	if t.Frequency == "" {
		t.Frequency = FrequencyOneOff
	}
	if t.Kind == KindTransfer {
		t.Category = NotApplicable
		t.IsRecurring = false
		t.Frequency = FrequencyOneOff
	} else {
		t.Destination = NotApplicable
	}
	if !t.IsRecurring {
		t.Frequency = FrequencyOneOff
	}
}

// References reports whether the transaction mentions name as its source or destination.
func (t Transaction) References(name string) bool {
	return t.Account == name || t.Destination == name
}

func orNotApplicable(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotApplicable
	}
	return s
}
