package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/victordebonilla/Guardian-domestico/internal/csvio"
	"github.com/victordebonilla/Guardian-domestico/internal/ledger"
	"github.com/victordebonilla/Guardian-domestico/internal/model"
	"github.com/victordebonilla/Guardian-domestico/internal/service"
)

const (
	shortIDLen    = 8
	historyLength = 10
	dayLayout     = "02/01/2006"
)

var errInvalidFrequency = errors.New("invalid frequency")

var errorMessages = []struct {
	err  error
	text string
}{
	{service.ErrAccountInUse, "La cuenta tiene transacciones asociadas y no se puede borrar."},
	{service.ErrCategoryInUse, "La categoría está en uso y no se puede borrar."},
	{service.ErrMemberInUse, "El miembro tiene transacciones asociadas y no se puede borrar."},
	{service.ErrGoalInUse, "La meta ya recibió aportes y no se puede borrar."},
	{service.ErrDuplicate, "Ese nombre ya existe."},
	{service.ErrNotFound, "No se encontró lo que buscas."},
	{service.ErrEmptyName, "El nombre no puede estar vacío."},
	{service.ErrSameEndpoints, "La cuenta de origen y el destino deben ser distintos."},
	{service.ErrInvalidPeriod, "El periodo no es válido: el inicio debe ser anterior al fin."},
	{service.ErrInvalidAmount, "El monto no es válido."},
	{service.ErrInvalidKind, "El tipo debe ser Ingreso, Gasto o Transferencia."},
	{service.ErrUnknownAccount, "La cuenta no existe."},
	{service.ErrUnknownCategory, "La categoría no existe para ese tipo."},
	{service.ErrUnknownDestination, "El destino no es una cuenta ni una meta."},
	{service.ErrEmptyImport, "El archivo no contiene filas válidas."},
	{service.ErrAlreadyConfigured, "Tu hogar ya está configurado."},
	{errInvalidFrequency, "La frecuencia no es válida. Usa Quincenal, Mensual, Semanal, Bimensual o Anual."},
	{csvio.ErrMissingColumns, "Faltan columnas obligatorias: Fecha, Tipo, Categoría, Cuenta, Monto."},
}

// describeError turns a service error into a message for the user.
func describeError(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return "No se pudieron guardar los datos. Inténtalo de nuevo."
}

// splitArgs splits command arguments separated by semicolons.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseAmount accepts 1234.5, 1,234.50, 1234,5 and a leading $.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", service.ErrInvalidAmount, s)
	}
	return d, nil
}

// parseDay accepts 2006-01-02 and 02/01/2006.
func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{model.DateLayout, dayLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: fecha %q", service.ErrInvalidPeriod, s)
}

// parseEntry reads "150.50 Supermercado" into an amount and a description.
func parseEntry(text string) (decimal.Decimal, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return decimal.Zero, "", service.ErrInvalidAmount
	}
	amount, err := parseAmount(fields[0])
	if err != nil {
		return decimal.Zero, "", err
	}
	return amount, strings.Join(fields[1:], " "), nil
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func kindIcon(k model.Kind) string {
	switch k {
	case model.KindIncome:
		return "💰"
	case model.KindExpense:
		return "💸"
	default:
		return "🔁"
	}
}

func formatTransaction(t model.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s ", shortID(t.ID), t.Date.Format("02/01"), kindIcon(t.Kind))
	if t.Kind == model.KindTransfer {
		fmt.Fprintf(&b, "%s → %s", t.Account, t.Destination)
	} else {
		fmt.Fprintf(&b, "%s · %s", t.Category, t.Account)
	}
	fmt.Fprintf(&b, " · %s", service.Money(t.Amount))
	if t.IsRecurring {
		fmt.Fprintf(&b, " · 🔄 %s", t.Frequency)
	}
	if t.Member != model.NotApplicable {
		fmt.Fprintf(&b, " · %s", t.Member)
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "\n   %s", t.Description)
	}
	return b.String()
}

func formatHistory(txs []model.Transaction, total int) string {
	if len(txs) == 0 {
		return "📜 Aún no hay transacciones."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📜 Últimas %d de %d transacciones\n\n", len(txs), total)
	for _, t := range txs {
		b.WriteString(formatTransaction(t))
		b.WriteString("\n")
	}
	b.WriteString("\nPara borrar: /borrar <id>")
	return b.String()
}

func formatAccounts(balances []ledger.AccountBalance) string {
	var b strings.Builder
	b.WriteString("🏦 Cuentas\n\n")
	for _, a := range balances {
		fmt.Fprintf(&b, "• %s (%s)\n   Inicial: %s | Actual: %s\n", a.Name, a.Type, service.Money(a.InitialBalance), service.Money(a.CurrentBalance))
	}
	b.WriteString("\nNueva: /nueva_cuenta Nombre; Tipo; Saldo inicial\nBorrar: /borrar_cuenta Nombre")
	return b.String()
}

func formatCategories(reg model.CategoryRegistry, budgets model.CategoryBudgets) string {
	var b strings.Builder
	b.WriteString("🏷️ Categorías\n\n💰 Ingresos:\n")
	for _, name := range reg[model.KindIncome] {
		fmt.Fprintf(&b, "• %s\n", name)
	}
	b.WriteString("\n💸 Gastos:\n")
	for _, name := range reg[model.KindExpense] {
		if limit, ok := budgets[name]; ok {
			fmt.Fprintf(&b, "• %s (tope %s)\n", name, service.Money(limit))
			continue
		}
		fmt.Fprintf(&b, "• %s\n", name)
	}
	b.WriteString("\nNueva: /nueva_categoria Gasto; Nombre\nBorrar: /borrar_categoria Gasto; Nombre\nTope: /presupuesto_cat Nombre; Monto")
	return b.String()
}

func formatMembers(members model.Members) string {
	var b strings.Builder
	b.WriteString("👪 Miembros\n\n")
	if len(members) == 0 {
		b.WriteString("Sin miembros registrados.\n")
	}
	for _, m := range members {
		fmt.Fprintf(&b, "• %s\n", m)
	}
	b.WriteString("\nNuevo: /nuevo_miembro Nombre\nBorrar: /borrar_miembro Nombre")
	return b.String()
}

func formatGoals(goals []model.Goal) string {
	var b strings.Builder
	b.WriteString("🎯 Metas\n\n")
	if len(goals) == 0 {
		b.WriteString("Sin metas registradas.\n")
	}
	for _, g := range goals {
		fmt.Fprintf(&b, "• %s: %s / %s (%s%%)\n", g.Name, service.Money(g.Contributed), service.Money(g.TargetAmount), g.Progress().StringFixed(1))
		if !g.TargetDate.IsZero() {
			fmt.Fprintf(&b, "   Fecha objetivo: %s | Falta: %s\n", g.TargetDate.Format(dayLayout), service.Money(g.Remaining()))
		}
	}
	b.WriteString("\nNueva: /nueva_meta Nombre; Objetivo; AAAA-MM-DD\nBorrar: /borrar_meta Nombre\nAportar: /transferencia")
	return b.String()
}

func formatBudget(cfg model.BudgetConfig, status ledger.BudgetStatus) string {
	return fmt.Sprintf(
		"💰 Presupuesto del %s al %s\n\n"+
			"Monto: %s\n"+
			"Gastado: %s\n"+
			"Restante: %s\n"+
			"Diario: %s (%d días)\n\n"+
			"Cambiar: /presupuesto AAAA-MM-DD; AAAA-MM-DD; Monto",
		cfg.PeriodStart.Format(dayLayout), cfg.PeriodEnd.Format(dayLayout),
		service.Money(cfg.Amount),
		service.Money(status.Spent),
		service.Money(status.Remaining),
		service.Money(status.DailyRate), status.DaysLeft,
	)
}

func formatFilter(f ledger.Filter) string {
	kind, member := "Todos", "Todos"
	if f.Kind != "" {
		kind = string(f.Kind)
	}
	if f.Member != "" {
		member = f.Member
	}
	from, to := "inicio", "hoy"
	if !f.From.IsZero() {
		from = f.From.Format(dayLayout)
	}
	if !f.To.IsZero() {
		to = f.To.Format(dayLayout)
	}
	return fmt.Sprintf(
		"🔍 Filtro del análisis\n\nDesde: %s\nHasta: %s\nTipo: %s\nMiembro: %s\n\n"+
			"Cambiar: /filtro AAAA-MM-DD; AAAA-MM-DD; Tipo; Miembro\nRestablecer: /filtro reset",
		from, to, kind, member,
	)
}

func formatImport(s service.ImportSummary) string {
	var b strings.Builder
	action := "añadidas"
	if s.Replaced {
		action = "cargadas (historial reemplazado)"
	}
	fmt.Fprintf(&b, "✅ %d transacciones %s.\n", s.Imported, action)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "⚠️ %d filas ignoradas por datos no válidos.\n", s.Skipped)
	}
	if len(s.NewMembers) > 0 {
		fmt.Fprintf(&b, "👪 Nuevos miembros: %s\n", strings.Join(s.NewMembers, ", "))
	}
	if len(s.NewAccounts) > 0 {
		fmt.Fprintf(&b, "🏦 Nuevas cuentas: %s\n", strings.Join(s.NewAccounts, ", "))
	}
	if len(s.NewCategories) > 0 {
		fmt.Fprintf(&b, "🏷️ Nuevas categorías: %s\n", strings.Join(s.NewCategories, ", "))
	}
	fmt.Fprintf(&b, "Total en el historial: %d", s.Total)
	return b.String()
}
